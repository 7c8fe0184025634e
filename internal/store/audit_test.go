package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authcore/internal/models"
)

func TestAuditRecordAndQuery(t *testing.T) {
	db := newTestDB(t)
	s := NewAuditStore(db, nopLg())
	ctx := context.Background()
	u := seedUser(t, db, "alice@example.com")

	require.True(t, s.Record(ctx, u.ID, ActionLogin, "10.0.0.1", nil))
	require.True(t, s.Record(ctx, u.ID, ActionLogin, "10.0.0.1", nil))
	require.True(t, s.Record(ctx, u.ID, ActionLogout, "10.0.0.1", nil))

	all := s.ForUser(ctx, u.ID, "", 0)
	assert.Len(t, all, 3)

	logins := s.ForUser(ctx, u.ID, ActionLogin, 0)
	assert.Len(t, logins, 2)

	// Another user's entries stay invisible.
	other := seedUser(t, db, "bob@example.com")
	assert.Empty(t, s.ForUser(ctx, other.ID, "", 0))
}

func TestAuditRecent(t *testing.T) {
	db := newTestDB(t)
	s := NewAuditStore(db, nopLg())
	ctx := context.Background()
	a := seedUser(t, db, "alice@example.com")
	b := seedUser(t, db, "bob@example.com")

	s.Record(ctx, a.ID, ActionLogin, "10.0.0.1", nil)
	s.Record(ctx, b.ID, ActionRegister, "10.0.0.2", nil)

	assert.Len(t, s.Recent(ctx, "", 0), 2)
	assert.Len(t, s.Recent(ctx, ActionRegister, 0), 1)
}

func TestAuditStats(t *testing.T) {
	db := newTestDB(t)
	s := NewAuditStore(db, nopLg())
	ctx := context.Background()
	u := seedUser(t, db, "alice@example.com")

	s.Record(ctx, u.ID, ActionLogin, "10.0.0.1", nil)
	s.Record(ctx, u.ID, ActionLogin, "10.0.0.1", nil)
	s.Record(ctx, u.ID, ActionPasswordChange, "10.0.0.1", nil)

	stats := s.Stats(ctx, u.ID)
	require.Len(t, stats, 2)
	assert.Equal(t, ActionLogin, stats[0].Action)
	assert.EqualValues(t, 2, stats[0].Count)
	assert.NotEmpty(t, stats[0].LastAt)
}

func TestAuditPurgeIdempotent(t *testing.T) {
	db := newTestDB(t)
	s := NewAuditStore(db, nopLg())
	ctx := context.Background()
	u := seedUser(t, db, "alice@example.com")

	s.Record(ctx, u.ID, ActionLogin, "10.0.0.1", nil)
	s.Record(ctx, u.ID, ActionLogout, "10.0.0.1", nil)
	require.NoError(t, db.Model(&models.AuditEntry{}).Where("action = ?", ActionLogin).
		Update("created_at", time.Now().Add(-91*24*time.Hour)).Error)

	n, err := s.PurgeOlderThan(ctx, 90*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.PurgeOlderThan(ctx, 90*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
