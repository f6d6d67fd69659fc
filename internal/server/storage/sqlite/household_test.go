package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/internal/server/storage"
)

func TestHouseholdStorage_Membership(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	createTestHousehold(t, ctx, s, "h1")
	createTestHousehold(t, ctx, s, "h2")

	_, err := s.GetMembership(ctx, userID, "h1")
	assert.ErrorIs(t, err, storage.ErrMembershipNotFound)

	require.NoError(t, s.AddMember(ctx, &models.Membership{
		HouseholdID: "h2", UserID: userID, Role: models.RoleMember, JoinedAt: time.Now(),
	}))
	require.NoError(t, s.AddMember(ctx, &models.Membership{
		HouseholdID: "h1", UserID: userID, Role: models.RoleMember, JoinedAt: time.Now(),
	}))

	// повторное добавление обновляет роль
	require.NoError(t, s.AddMember(ctx, &models.Membership{
		HouseholdID: "h1", UserID: userID, Role: models.RoleOwner, JoinedAt: time.Now(),
	}))

	m, err := s.GetMembership(ctx, userID, "h1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, m.Role)
	assert.Equal(t, "h1", m.HouseholdID)

	list, err := s.ListUserHouseholds(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "h1", list[0].HouseholdID)
	assert.Equal(t, "h2", list[1].HouseholdID)

	require.NoError(t, s.RemoveMember(ctx, "h1", userID))
	_, err = s.GetMembership(ctx, userID, "h1")
	assert.ErrorIs(t, err, storage.ErrMembershipNotFound)

	err = s.RemoveMember(ctx, "h1", userID)
	assert.ErrorIs(t, err, storage.ErrMembershipNotFound)
}

func TestHouseholdStorage_AddMember_MissingSide(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	createTestHousehold(t, ctx, s, "h1")

	err := s.AddMember(ctx, &models.Membership{HouseholdID: "nope", UserID: userID, Role: models.RoleMember, JoinedAt: time.Now()})
	assert.ErrorIs(t, err, storage.ErrHouseholdNotFound)

	err = s.AddMember(ctx, &models.Membership{HouseholdID: "h1", UserID: "ghost", Role: models.RoleMember, JoinedAt: time.Now()})
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
