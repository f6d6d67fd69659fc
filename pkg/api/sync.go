package api

import (
	"encoding/json"
	"time"

	"github.com/iudanet/homesync/internal/models"
)

// Entity представляет одну сущность household при передаче по HTTP
type Entity struct {
	UpdatedAt   time.Time       `json:"updated_at"`
	ID          string          `json:"id"`
	HouseholdID string          `json:"household_id"`
	Kind        string          `json:"kind"`
	Data        json.RawMessage `json:"data"`
	Version     int64           `json:"version"`
	Deleted     bool            `json:"deleted"`
}

// EntityFromRecord converts a record into its wire form.
func EntityFromRecord(r *models.Record) Entity {
	return Entity{
		UpdatedAt:   r.UpdatedAt,
		ID:          r.ID,
		HouseholdID: r.HouseholdID,
		Kind:        string(r.Kind),
		Data:        r.Data,
		Version:     r.Version,
		Deleted:     r.Deleted,
	}
}

// Record converts the wire form back into a record.
func (e *Entity) Record() models.Record {
	return models.Record{
		UpdatedAt:   e.UpdatedAt,
		ID:          e.ID,
		HouseholdID: e.HouseholdID,
		Kind:        models.DataKind(e.Kind),
		Data:        e.Data,
		Version:     e.Version,
		Deleted:     e.Deleted,
	}
}

// EntitiesResponse представляет серверный снимок одного вида данных
type EntitiesResponse struct {
	HouseholdID string   `json:"household_id"`
	Kind        string   `json:"kind"`
	Entities    []Entity `json:"entities"`
	ServerTime  int64    `json:"server_time"` // epoch-ms момента формирования снимка
}

// OperationRequest представляет одну pending операцию, воспроизводимую на сервере
type OperationRequest struct {
	OperationID string          `json:"operation_id"` // ID операции в локальной очереди (для логов)
	Kind        string          `json:"kind"`         // create/update/delete
	EntityKind  string          `json:"entity_kind"`  // вид данных
	EntityID    string          `json:"entity_id"`    // server id или optimistic temp_ id для create
	Payload     json.RawMessage `json:"payload,omitempty"`
	CreatedAt   int64           `json:"created_at"`
}

// OperationResponse представляет результат применения операции
type OperationResponse struct {
	Entity Entity `json:"entity"`
	TempID string `json:"temp_id,omitempty"` // optimistic id, замененный серверным
}

// BulkShoppingRequest представляет групповую операцию над списком покупок
type BulkShoppingRequest struct {
	Operation string   `json:"operation"` // complete/uncomplete/delete
	ItemIDs   []string `json:"item_ids"`
}

// BulkShoppingResponse представляет результат групповой операции
type BulkShoppingResponse struct {
	Operation string   `json:"operation"`
	ItemIDs   []string `json:"item_ids"` // фактически затронутые позиции
}

// StatsResponse представляет статистику realtime hub
type StatsResponse struct {
	Households  map[string]int `json:"households"`
	Connections int            `json:"connections"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}

// Household представляет членство пользователя в household
type Household struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// HouseholdsResponse список household текущего пользователя
type HouseholdsResponse struct {
	Households []Household `json:"households"`
}
