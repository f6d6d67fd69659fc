// Package validation checks identifiers that cross the client/server boundary.
package validation

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/iudanet/homesync/internal/models"
)

// UsernamePattern определяет допустимый формат username
// Только латинские буквы (a-z, A-Z), цифры (0-9), нижнее подчеркивание (_)
// Длина: 3-32 символа
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

// SlugPattern допустимый формат household id и клиентских id сущностей
var SlugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 32
)

// ValidateUsername проверяет, что username соответствует требованиям
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)")
	}

	return nil
}

// ValidateHouseholdID проверяет идентификатор household
func ValidateHouseholdID(id string) error {
	if id == "" {
		return fmt.Errorf("household id cannot be empty")
	}
	if !SlugPattern.MatchString(id) {
		return fmt.Errorf("household id %q can only contain letters, numbers, '-' and '_' (max 64)", id)
	}
	return nil
}

// ValidateEntityID проверяет идентификатор сущности: UUID, optimistic id или slug
func ValidateEntityID(id string) error {
	if id == "" {
		return fmt.Errorf("entity id cannot be empty")
	}
	if models.IsOptimisticID(id) || SlugPattern.MatchString(id) {
		return nil
	}
	if _, err := uuid.Parse(id); err == nil {
		return nil
	}
	return fmt.Errorf("invalid entity id %q", id)
}

// ValidateOperation проверяет форму операции до применения.
// create допускает пустой id, update/delete требуют id, create/update требуют payload
func ValidateOperation(kind models.OperationKind, entityID string, payload []byte) error {
	switch kind {
	case models.OperationCreate:
		if entityID != "" {
			if err := ValidateEntityID(entityID); err != nil {
				return err
			}
		}
	case models.OperationUpdate, models.OperationDelete:
		if err := ValidateEntityID(entityID); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown operation kind %q", kind)
	}

	if kind != models.OperationDelete && len(payload) == 0 {
		return fmt.Errorf("%s operation requires payload", kind)
	}
	return nil
}
