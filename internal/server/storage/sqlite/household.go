package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/internal/server/storage"
)

// CreateHousehold creates a household
func (s *Storage) CreateHousehold(ctx context.Context, household *models.Household) error {
	query := `INSERT INTO households (id, name, created_at) VALUES (?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query, household.ID, household.Name, household.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert household: %w", err)
	}
	return nil
}

// AddMember adds user to household or updates role of an existing member
func (s *Storage) AddMember(ctx context.Context, m *models.Membership) error {
	query := `
		INSERT INTO household_members (household_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(household_id, user_id) DO UPDATE SET role = excluded.role
	`

	_, err := s.db.ExecContext(ctx, query, m.HouseholdID, m.UserID, m.Role, m.JoinedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return s.missingMemberSide(ctx, m)
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// missingMemberSide определяет, какой стороны членства не существует
func (s *Storage) missingMemberSide(ctx context.Context, m *models.Membership) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM households WHERE id = ?`, m.HouseholdID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrHouseholdNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check household: %w", err)
	}
	return storage.ErrUserNotFound
}

// RemoveMember removes user from household
func (s *Storage) RemoveMember(ctx context.Context, householdID, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM household_members WHERE household_id = ? AND user_id = ?`, householdID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrMembershipNotFound
	}

	return nil
}

// GetMembership returns membership of user in household
func (s *Storage) GetMembership(ctx context.Context, userID, householdID string) (*models.Membership, error) {
	query := `
		SELECT household_id, user_id, role, joined_at
		FROM household_members
		WHERE user_id = ? AND household_id = ?
	`

	m := &models.Membership{}
	err := s.db.QueryRowContext(ctx, query, userID, householdID).Scan(
		&m.HouseholdID,
		&m.UserID,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return m, nil
}

// ListUserHouseholds returns memberships of user ordered by household id
func (s *Storage) ListUserHouseholds(ctx context.Context, userID string) ([]*models.Membership, error) {
	query := `
		SELECT household_id, user_id, role, joined_at
		FROM household_members
		WHERE user_id = ?
		ORDER BY household_id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		if err := rows.Scan(&m.HouseholdID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return memberships, nil
}
