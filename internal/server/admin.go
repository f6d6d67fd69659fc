package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/internal/server/auth"
	"github.com/iudanet/homesync/internal/server/storage"
	"github.com/iudanet/homesync/internal/validation"
)

// Admin выполняет административные операции: пользователи, household, токены.
// Регистрация и логин не входят в API сервера, учетные записи создает оператор
type Admin struct {
	users      storage.UserStorage
	households storage.HouseholdStorage
	validator  *auth.Validator
	now        func() time.Time
}

// NewAdmin создает Admin
func NewAdmin(users storage.UserStorage, households storage.HouseholdStorage, validator *auth.Validator) *Admin {
	return &Admin{users: users, households: households, validator: validator, now: time.Now}
}

// CreateUser создает пользователя с новым UUID
func (a *Admin) CreateUser(ctx context.Context, username string) (*models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	user := &models.User{ID: uuid.New().String(), Username: username, CreatedAt: a.now().UTC()}
	if err := a.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateHousehold создает household и делает owner его владельцем
func (a *Admin) CreateHousehold(ctx context.Context, id, name, ownerUsername string) (*models.Household, error) {
	if err := validation.ValidateHouseholdID(id); err != nil {
		return nil, err
	}
	owner, err := a.users.GetUserByUsername(ctx, ownerUsername)
	if err != nil {
		return nil, fmt.Errorf("owner %s: %w", ownerUsername, err)
	}

	household := &models.Household{ID: id, Name: name, CreatedAt: a.now().UTC()}
	if err := a.households.CreateHousehold(ctx, household); err != nil {
		return nil, err
	}
	if err := a.households.AddMember(ctx, &models.Membership{
		HouseholdID: id,
		UserID:      owner.ID,
		Role:        models.RoleOwner,
		JoinedAt:    household.CreatedAt,
	}); err != nil {
		return nil, err
	}
	return household, nil
}

// AddMember добавляет пользователя в household или меняет его роль
func (a *Admin) AddMember(ctx context.Context, householdID, username, role string) error {
	if role != models.RoleOwner && role != models.RoleMember {
		return fmt.Errorf("unknown role %q", role)
	}
	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("user %s: %w", username, err)
	}
	return a.households.AddMember(ctx, &models.Membership{
		HouseholdID: householdID,
		UserID:      user.ID,
		Role:        role,
		JoinedAt:    a.now().UTC(),
	})
}

// RemoveMember удаляет пользователя из household
func (a *Admin) RemoveMember(ctx context.Context, householdID, username string) error {
	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("user %s: %w", username, err)
	}
	return a.households.RemoveMember(ctx, householdID, user.ID)
}

// IssueToken выпускает access token пользователю
func (a *Admin) IssueToken(ctx context.Context, username string) (string, time.Time, error) {
	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("user %s: %w", username, err)
	}
	issuedAt := a.now()
	token, expiresIn, err := a.validator.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, issuedAt.Add(time.Duration(expiresIn) * time.Second), nil
}
