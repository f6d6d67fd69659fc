package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/homesync/internal/models"
)

// MessageType тип сообщения realtime канала
type MessageType string

// Сообщения клиента
const (
	MessageSubscribe   MessageType = "subscribe-household"
	MessageUnsubscribe MessageType = "unsubscribe-household"
	MessagePing        MessageType = "ping"
)

// Сообщения сервера
const (
	MessageConnected    MessageType = "connected"
	MessageSubscribed   MessageType = "subscribed"
	MessageUnsubscribed MessageType = "unsubscribed"
	MessagePong         MessageType = "pong"
	MessageError        MessageType = "error"
)

// Envelope is the frame of every realtime message in both directions.
type Envelope struct {
	Type        MessageType     `json:"type"`
	HouseholdID string          `json:"householdId,omitempty"`
	Message     string          `json:"message,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrInvalidMessage = errors.New("invalid message")
)

// DecodeClientMessage parses and validates a frame sent by a device.
func DecodeClientMessage(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	switch env.Type {
	case MessageSubscribe, MessageUnsubscribe:
		if env.HouseholdID == "" {
			return nil, fmt.Errorf("%w: %s requires householdId", ErrInvalidMessage, env.Type)
		}
	case MessagePing:
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrInvalidMessage)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}
	return &env, nil
}

// EventType имя доменного события
type EventType = MessageType

const (
	EventInventoryUpdated      EventType = "inventory-updated"
	EventInventoryDeleted      EventType = "inventory-deleted"
	EventShoppingItemAdded     EventType = "shopping-item-added"
	EventShoppingItemUpdated   EventType = "shopping-item-updated"
	EventShoppingItemDeleted   EventType = "shopping-item-deleted"
	EventShoppingItemCompleted EventType = "shopping-item-completed"
	EventShoppingBulkOperation EventType = "shopping-bulk-operation"
	EventMealPlanUpdated       EventType = "meal-plan-updated"
	EventRecipeUpdated         EventType = "recipe-updated"
)

var ErrUnknownEvent = errors.New("unknown event type")

// Event is a domain event announced to the subscribers of a household.
// The set of events is closed: only types declared in this package implement it.
type Event interface {
	Type() EventType
	Household() string
	validate() error
}

// InventoryUpdated отправляется при создании или изменении позиции запасов
type InventoryUpdated struct {
	HouseholdID string               `json:"householdId"`
	Item        models.InventoryItem `json:"item"`
	Version     int64                `json:"version"`
}

// InventoryDeleted отправляется при удалении позиции запасов
type InventoryDeleted struct {
	HouseholdID string `json:"householdId"`
	ItemID      string `json:"itemId"`
}

// ShoppingItemAdded отправляется при добавлении позиции в список покупок
type ShoppingItemAdded struct {
	HouseholdID string                  `json:"householdId"`
	Item        models.ShoppingListItem `json:"item"`
	Version     int64                   `json:"version"`
}

// ShoppingItemUpdated отправляется при изменении позиции списка покупок
type ShoppingItemUpdated struct {
	HouseholdID string                  `json:"householdId"`
	Item        models.ShoppingListItem `json:"item"`
	Version     int64                   `json:"version"`
}

// ShoppingItemDeleted отправляется при удалении позиции списка покупок
type ShoppingItemDeleted struct {
	HouseholdID string `json:"householdId"`
	ItemID      string `json:"itemId"`
}

// ShoppingItemCompleted отправляется при отметке позиции купленной (или снятии отметки)
type ShoppingItemCompleted struct {
	HouseholdID string                  `json:"householdId"`
	Item        models.ShoppingListItem `json:"item"`
	Version     int64                   `json:"version"`
}

// ShoppingBulkOperation отправляется после групповой операции над списком
type ShoppingBulkOperation struct {
	HouseholdID string   `json:"householdId"`
	Operation   string   `json:"operation"`
	ItemIDs     []string `json:"itemIds"`
}

// MealPlanUpdated отправляется при изменении или удалении записи плана питания
type MealPlanUpdated struct {
	HouseholdID string               `json:"householdId"`
	Entry       models.MealPlanEntry `json:"entry"`
	Version     int64                `json:"version"`
	Deleted     bool                 `json:"deleted"`
}

// RecipeUpdated отправляется при изменении или удалении рецепта
type RecipeUpdated struct {
	HouseholdID string        `json:"householdId"`
	Recipe      models.Recipe `json:"recipe"`
	Version     int64         `json:"version"`
	Deleted     bool          `json:"deleted"`
}

// Операции ShoppingBulkOperation
const (
	BulkComplete   = "complete"
	BulkUncomplete = "uncomplete"
	BulkDelete     = "delete"
)

func (e *InventoryUpdated) Type() EventType      { return EventInventoryUpdated }
func (e *InventoryDeleted) Type() EventType      { return EventInventoryDeleted }
func (e *ShoppingItemAdded) Type() EventType     { return EventShoppingItemAdded }
func (e *ShoppingItemUpdated) Type() EventType   { return EventShoppingItemUpdated }
func (e *ShoppingItemDeleted) Type() EventType   { return EventShoppingItemDeleted }
func (e *ShoppingItemCompleted) Type() EventType { return EventShoppingItemCompleted }
func (e *ShoppingBulkOperation) Type() EventType { return EventShoppingBulkOperation }
func (e *MealPlanUpdated) Type() EventType       { return EventMealPlanUpdated }
func (e *RecipeUpdated) Type() EventType         { return EventRecipeUpdated }

func (e *InventoryUpdated) Household() string      { return e.HouseholdID }
func (e *InventoryDeleted) Household() string      { return e.HouseholdID }
func (e *ShoppingItemAdded) Household() string     { return e.HouseholdID }
func (e *ShoppingItemUpdated) Household() string   { return e.HouseholdID }
func (e *ShoppingItemDeleted) Household() string   { return e.HouseholdID }
func (e *ShoppingItemCompleted) Household() string { return e.HouseholdID }
func (e *ShoppingBulkOperation) Household() string { return e.HouseholdID }
func (e *MealPlanUpdated) Household() string       { return e.HouseholdID }
func (e *RecipeUpdated) Household() string         { return e.HouseholdID }

func (e *InventoryUpdated) validate() error      { return requireIDs(e.HouseholdID, e.Item.ID) }
func (e *InventoryDeleted) validate() error      { return requireIDs(e.HouseholdID, e.ItemID) }
func (e *ShoppingItemAdded) validate() error     { return requireIDs(e.HouseholdID, e.Item.ID) }
func (e *ShoppingItemUpdated) validate() error   { return requireIDs(e.HouseholdID, e.Item.ID) }
func (e *ShoppingItemDeleted) validate() error   { return requireIDs(e.HouseholdID, e.ItemID) }
func (e *ShoppingItemCompleted) validate() error { return requireIDs(e.HouseholdID, e.Item.ID) }
func (e *MealPlanUpdated) validate() error       { return requireIDs(e.HouseholdID, e.Entry.ID) }
func (e *RecipeUpdated) validate() error         { return requireIDs(e.HouseholdID, e.Recipe.ID) }

func (e *ShoppingBulkOperation) validate() error {
	if e.HouseholdID == "" {
		return errors.New("householdId is required")
	}
	switch e.Operation {
	case BulkComplete, BulkUncomplete, BulkDelete:
	default:
		return fmt.Errorf("unknown bulk operation %q", e.Operation)
	}
	if len(e.ItemIDs) == 0 {
		return errors.New("itemIds must not be empty")
	}
	return nil
}

func requireIDs(householdID, entityID string) error {
	if householdID == "" {
		return errors.New("householdId is required")
	}
	if entityID == "" {
		return errors.New("entity id is required")
	}
	return nil
}

var eventRegistry = map[EventType]func() Event{
	EventInventoryUpdated:      func() Event { return &InventoryUpdated{} },
	EventInventoryDeleted:      func() Event { return &InventoryDeleted{} },
	EventShoppingItemAdded:     func() Event { return &ShoppingItemAdded{} },
	EventShoppingItemUpdated:   func() Event { return &ShoppingItemUpdated{} },
	EventShoppingItemDeleted:   func() Event { return &ShoppingItemDeleted{} },
	EventShoppingItemCompleted: func() Event { return &ShoppingItemCompleted{} },
	EventShoppingBulkOperation: func() Event { return &ShoppingBulkOperation{} },
	EventMealPlanUpdated:       func() Event { return &MealPlanUpdated{} },
	EventRecipeUpdated:         func() Event { return &RecipeUpdated{} },
}

// IsEventType сообщает, является ли t доменным событием.
func IsEventType(t MessageType) bool {
	_, ok := eventRegistry[t]
	return ok
}

// EncodeEvent validates e and serializes it into an envelope frame.
func EncodeEvent(e Event) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil event", ErrInvalidMessage)
	}
	if err := e.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMessage, e.Type(), err)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", e.Type(), err)
	}

	return json.Marshal(Envelope{
		Type:        e.Type(),
		HouseholdID: e.Household(),
		Data:        data,
	})
}

// DecodeEvent parses the payload of a domain event envelope.
func DecodeEvent(env *Envelope) (Event, error) {
	newEvent, ok := eventRegistry[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}

	e := newEvent()
	if err := json.Unmarshal(env.Data, e); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMessage, env.Type, err)
	}
	if err := e.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMessage, env.Type, err)
	}
	if env.HouseholdID != "" && env.HouseholdID != e.Household() {
		return nil, fmt.Errorf("%w: envelope household %s does not match payload %s",
			ErrInvalidMessage, env.HouseholdID, e.Household())
	}
	return e, nil
}
