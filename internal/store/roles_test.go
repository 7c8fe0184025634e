package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authcore/internal/models"
)

func TestRoleSeedIdempotent(t *testing.T) {
	db := newTestDB(t)
	s := NewRoleStore(db, nopLg())
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx))
	require.NoError(t, s.Seed(ctx))

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.RoleUser, all[0].Name)
}

func TestRoleGrantAndMembership(t *testing.T) {
	db := newTestDB(t)
	s := NewRoleStore(db, nopLg())
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))
	u := seedUser(t, db, "alice@example.com")

	assert.False(t, s.HasRole(ctx, u.ID, models.RoleAdmin))
	require.NoError(t, s.Grant(ctx, u.ID, models.RoleAdmin))
	assert.True(t, s.HasRole(ctx, u.ID, models.RoleAdmin))

	// Granting twice is a no-op, not an error.
	require.NoError(t, s.Grant(ctx, u.ID, models.RoleAdmin))

	roles, err := s.RolesOfUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, models.RoleAdmin, roles[0].Name)
}

func TestRoleRevoke(t *testing.T) {
	db := newTestDB(t)
	s := NewRoleStore(db, nopLg())
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))
	u := seedUser(t, db, "alice@example.com")

	require.NoError(t, s.Grant(ctx, u.ID, models.RoleModerator))
	require.NoError(t, s.Revoke(ctx, u.ID, models.RoleModerator))
	assert.False(t, s.HasRole(ctx, u.ID, models.RoleModerator))
}

func TestRoleUnknownName(t *testing.T) {
	db := newTestDB(t)
	s := NewRoleStore(db, nopLg())
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))
	u := seedUser(t, db, "alice@example.com")

	assert.ErrorIs(t, s.Grant(ctx, u.ID, "superuser"), ErrRoleUnknown)
	assert.ErrorIs(t, s.Revoke(ctx, u.ID, "superuser"), ErrRoleUnknown)
	assert.False(t, s.HasRole(ctx, u.ID, "superuser"))
}
