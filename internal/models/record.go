package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DataKind тип разделяемого списка внутри household.
type DataKind string

const (
	KindInventory    DataKind = "inventory"
	KindShoppingList DataKind = "shopping_list"
	KindMealPlan     DataKind = "meal_plan"
	KindRecipes      DataKind = "recipes"
)

// AllKinds перечисляет все поддерживаемые виды данных в порядке синхронизации.
var AllKinds = []DataKind{KindInventory, KindShoppingList, KindMealPlan, KindRecipes}

// ParseDataKind проверяет строку и возвращает DataKind.
func ParseDataKind(s string) (DataKind, error) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown data kind %q", s)
}

// Record представляет одну сущность household в доменно-независимом виде.
// Детектор конфликтов работает только с ID и UpdatedAt, остальное - полезная нагрузка.
type Record struct {
	UpdatedAt   time.Time       `json:"updated_at"`   // UpdatedAt время последнего изменения (источник для watermark сравнения)
	ID          string          `json:"id"`           // ID идентификатор сущности (серверный UUID или optimistic temp_ id)
	HouseholdID string          `json:"household_id"` // HouseholdID household, к которому относится запись
	Kind        DataKind        `json:"kind"`         // Kind вид данных
	Data        json.RawMessage `json:"data"`         // Data JSON доменной сущности (InventoryItem, Recipe, ...)
	Version     int64           `json:"version"`      // Version серверная версия записи
	Deleted     bool            `json:"deleted"`      // Deleted soft delete
}

// UpdatedAtMillis возвращает UpdatedAt в epoch-ms.
func (r *Record) UpdatedAtMillis() int64 {
	return r.UpdatedAt.UnixMilli()
}

// IsNewerThan сообщает, изменялась ли запись позже other.
func (r *Record) IsNewerThan(other *Record) bool {
	return r.UpdatedAt.After(other.UpdatedAt)
}

// Clone возвращает копию записи с собственным буфером Data.
func (r *Record) Clone() *Record {
	c := *r
	if r.Data != nil {
		c.Data = append(json.RawMessage(nil), r.Data...)
	}
	return &c
}

// DecodeData декодирует Data в доменную структуру.
func DecodeData[T any](r *Record) (*T, error) {
	var v T
	if len(r.Data) == 0 {
		return &v, nil
	}
	if err := json.Unmarshal(r.Data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s record %s: %w", r.Kind, r.ID, err)
	}
	return &v, nil
}

// EncodeData сериализует доменную структуру в Data записи.
func EncodeData[T any](r *Record, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s record %s: %w", r.Kind, r.ID, err)
	}
	r.Data = data
	return nil
}

// Stamp записывает ID и UpdatedAt записи внутрь Data, чтобы полезная нагрузка
// не расходилась с метаданными после серверного применения.
func (r *Record) Stamp() error {
	data, err := setDataFields(r.Data, map[string]any{"id": r.ID, "updated_at": r.UpdatedAt})
	if err != nil {
		return fmt.Errorf("failed to stamp %s record %s: %w", r.Kind, r.ID, err)
	}
	r.Data = data
	return nil
}

// ReplaceDataID заменяет поле id в JSON полезной нагрузки.
func ReplaceDataID(data json.RawMessage, id string) (json.RawMessage, error) {
	return setDataFields(data, map[string]any{"id": id})
}

// PatchData записывает значения полей поверх JSON объекта data.
func PatchData(data json.RawMessage, values map[string]any) (json.RawMessage, error) {
	return setDataFields(data, values)
}

func setDataFields(data json.RawMessage, values map[string]any) (json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, err
		}
	}
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		fields[k] = raw
	}
	return json.Marshal(fields)
}
