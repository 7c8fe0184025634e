package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisAttemptStore(t *testing.T) (*RedisAttemptStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisAttemptStore(rdb, nopLg(), 5, 15*time.Minute, 15*time.Minute), mr
}

func TestRedisAttemptLockAfterThreshold(t *testing.T) {
	s, _ := newRedisAttemptStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.True(t, s.Record(ctx, "a@example.com", "10.0.0.1", false))
	}
	assert.False(t, s.IsLocked(ctx, "a@example.com", "10.0.0.1").Locked)

	s.Record(ctx, "a@example.com", "10.0.0.1", false)
	st := s.IsLocked(ctx, "a@example.com", "10.0.0.1")
	assert.True(t, st.Locked)
	assert.Equal(t, 5, st.Count)
	assert.Greater(t, st.RetryAfter, time.Duration(0))
}

func TestRedisAttemptDisjunction(t *testing.T) {
	s, _ := newRedisAttemptStore(t)
	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.5"} {
		s.Record(ctx, "victim@example.com", ip, false)
	}
	assert.True(t, s.IsLocked(ctx, "victim@example.com", "10.9.9.9").Locked)
}

func TestRedisAttemptClear(t *testing.T) {
	s, _ := newRedisAttemptStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.Record(ctx, "a@example.com", "10.0.0.1", false)
	}
	require.True(t, s.IsLocked(ctx, "a@example.com", "10.0.0.1").Locked)

	s.Clear(ctx, "a@example.com", "10.0.0.1")
	st := s.IsLocked(ctx, "a@example.com", "10.0.0.1")
	assert.False(t, st.Locked)
	assert.Equal(t, 0, st.Count)
}

func TestRedisAttemptWindowExpiry(t *testing.T) {
	s, mr := newRedisAttemptStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.Record(ctx, "a@example.com", "10.0.0.1", false)
	}
	mr.FastForward(16 * time.Minute)

	assert.False(t, s.IsLocked(ctx, "a@example.com", "10.0.0.1").Locked)
}

func TestRedisAttemptSuccessIsNoop(t *testing.T) {
	s, _ := newRedisAttemptStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.True(t, s.Record(ctx, "a@example.com", "10.0.0.1", true))
	}
	assert.Equal(t, 0, s.IsLocked(ctx, "a@example.com", "10.0.0.1").Count)
}

// The lock check fails open when redis is unreachable.
func TestRedisAttemptFailOpen(t *testing.T) {
	s, mr := newRedisAttemptStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.Record(ctx, "a@example.com", "10.0.0.1", false)
	}
	mr.Close()

	st := s.IsLocked(ctx, "a@example.com", "10.0.0.1")
	assert.False(t, st.Locked)
	assert.False(t, s.Record(ctx, "a@example.com", "10.0.0.1", false))
}
