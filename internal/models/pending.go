package models

import "encoding/json"

// OperationKind тип мутации, ожидающей подтверждения сервером.
type OperationKind string

const (
	OperationCreate OperationKind = "create"
	OperationUpdate OperationKind = "update"
	OperationDelete OperationKind = "delete"
)

// OperationStatus состояние операции в очереди.
type OperationStatus string

const (
	// OperationQueued операция участвует в replay.
	OperationQueued OperationStatus = "queued"
	// OperationParked операция превысила лимит повторов и ждет решения пользователя.
	OperationParked OperationStatus = "parked"
)

// Target указывает, к какой сущности относится операция.
type Target struct {
	Kind     DataKind `json:"kind"`
	EntityID string   `json:"entity_id"`
}

// PendingOperation представляет мутацию, сохраненную локально до подтверждения сервером.
// Для одного household операции должны воспроизводиться в порядке создания.
type PendingOperation struct {
	ID          string          `json:"id"`                // ID уникальный идентификатор операции
	Kind        OperationKind   `json:"kind"`              // Kind create/update/delete
	Status      OperationStatus `json:"status"`            // Status queued/parked
	HouseholdID string          `json:"householdId"`       // HouseholdID household операции
	LastError   string          `json:"lastError"`         // LastError текст последней ошибки replay
	Target      Target          `json:"target"`            // Target ссылка на сущность
	Payload     json.RawMessage `json:"payload,omitempty"` // Payload данные сущности (нет для delete)
	CreatedAt   int64           `json:"createdAt"`         // CreatedAt epoch-ms
	RetryCount  int             `json:"retryCount"`        // RetryCount количество неудачных replay
}

// IsParked сообщает, исключена ли операция из replay.
func (op *PendingOperation) IsParked() bool {
	return op.Status == OperationParked
}

// PendingOperationPatch описывает частичное обновление операции.
// nil поля не изменяются.
type PendingOperationPatch struct {
	RetryCount *int
	Status     *OperationStatus
	LastError  *string
	Payload    json.RawMessage
	EntityID   *string
}

// Apply применяет patch к операции.
func (p PendingOperationPatch) Apply(op *PendingOperation) {
	if p.RetryCount != nil {
		op.RetryCount = *p.RetryCount
	}
	if p.Status != nil {
		op.Status = *p.Status
	}
	if p.LastError != nil {
		op.LastError = *p.LastError
	}
	if p.Payload != nil {
		op.Payload = p.Payload
	}
	if p.EntityID != nil {
		op.Target.EntityID = *p.EntityID
	}
}
