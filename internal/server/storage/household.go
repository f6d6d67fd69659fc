package storage

import (
	"context"

	"github.com/iudanet/homesync/internal/models"
)

// HouseholdStorage defines interface for households and their members
type HouseholdStorage interface {
	// CreateHousehold creates a household
	CreateHousehold(ctx context.Context, household *models.Household) error

	// AddMember adds user to household or updates the role of an existing member
	// Returns ErrHouseholdNotFound / ErrUserNotFound if either side is missing
	AddMember(ctx context.Context, membership *models.Membership) error

	// RemoveMember removes user from household
	// Returns ErrMembershipNotFound if user is not a member
	RemoveMember(ctx context.Context, householdID, userID string) error

	// GetMembership returns membership of user in household
	// Returns ErrMembershipNotFound if user is not a member
	GetMembership(ctx context.Context, userID, householdID string) (*models.Membership, error)

	// ListUserHouseholds returns memberships of user ordered by household id
	ListUserHouseholds(ctx context.Context, userID string) ([]*models.Membership, error)
}
