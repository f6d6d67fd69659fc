package models

import "time"

// User представляет аутентифицированного пользователя, полученного от session validator
type User struct {
	CreatedAt time.Time `json:"created_at"` // время регистрации
	ID        string    `json:"id"`         // UUID пользователя
	Username  string    `json:"username"`   // username из токена
}

// Household представляет группу совместного доступа
type Household struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
}

// Membership представляет членство пользователя в household
type Membership struct {
	JoinedAt    time.Time `json:"joined_at"`    // время вступления
	HouseholdID string    `json:"household_id"` // ID household
	UserID      string    `json:"user_id"`      // ID пользователя
	Role        string    `json:"role"`         // роль: "owner" или "member"
}

// Роли участников household
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)
