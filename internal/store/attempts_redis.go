package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisAttemptStore is the counter-based AttemptLedger for deployments
// that keep lockout state out of the primary database. Failures bump
// fixed-window counters keyed per email and per ip; retention is handled
// by key TTLs, so PurgeOlderThan has nothing to do.
type RedisAttemptStore struct {
	rdb       *redis.Client
	lg        *zap.SugaredLogger
	threshold int
	window    time.Duration
	lockout   time.Duration
}

func NewRedisAttemptStore(rdb *redis.Client, lg *zap.SugaredLogger, threshold int, window, lockout time.Duration) *RedisAttemptStore {
	return &RedisAttemptStore{rdb: rdb, lg: lg, threshold: threshold, window: window, lockout: lockout}
}

func failKey(axis, v string) string { return "la:" + axis + ":" + v }
func lastKey(axis, v string) string { return "lat:" + axis + ":" + v }

func (s *RedisAttemptStore) Record(ctx context.Context, email, ip string, success bool) bool {
	if success {
		return true
	}
	now := strconv.FormatInt(time.Now().Unix(), 10)
	for _, k := range []string{failKey("e", email), failKey("ip", ip)} {
		n, err := s.rdb.Incr(ctx, k).Result()
		if err != nil {
			s.lg.Errorw("record login attempt", "error", err, "ip", ip)
			return false
		}
		if n == 1 {
			if err := s.rdb.Expire(ctx, k, s.window).Err(); err != nil {
				s.lg.Errorw("record login attempt", "error", err, "ip", ip)
				return false
			}
		}
	}
	for _, k := range []string{lastKey("e", email), lastKey("ip", ip)} {
		if err := s.rdb.Set(ctx, k, now, s.window).Err(); err != nil {
			s.lg.Errorw("record login attempt", "error", err, "ip", ip)
			return false
		}
	}
	return true
}

func (s *RedisAttemptStore) IsLocked(ctx context.Context, email, ip string) LockState {
	vals, err := s.rdb.MGet(ctx, failKey("e", email), failKey("ip", ip),
		lastKey("e", email), lastKey("ip", ip)).Result()
	if err != nil {
		s.lg.Errorw("lockout check", "error", err, "ip", ip)
		return LockState{}
	}
	count := maxCounter(vals[0], vals[1])
	state := LockState{Count: count, Locked: count >= s.threshold}
	if !state.Locked {
		return state
	}
	if last := maxCounter(vals[2], vals[3]); last > 0 {
		elapsed := time.Since(time.Unix(int64(last), 0))
		if remaining := s.lockout - elapsed; remaining > 0 {
			state.RetryAfter = remaining
		}
	}
	return state
}

func (s *RedisAttemptStore) Clear(ctx context.Context, email, ip string) {
	err := s.rdb.Del(ctx,
		failKey("e", email), failKey("ip", ip),
		lastKey("e", email), lastKey("ip", ip)).Err()
	if err != nil {
		s.lg.Errorw("clear login attempts", "error", err, "ip", ip)
	}
}

func (s *RedisAttemptStore) PurgeOlderThan(ctx context.Context, horizon time.Duration) (int64, error) {
	return 0, nil
}

func maxCounter(vals ...interface{}) int {
	max := 0
	for _, v := range vals {
		sv, ok := v.(string)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(sv); err == nil && n > max {
			max = n
		}
	}
	return max
}
