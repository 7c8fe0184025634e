package store

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"authcore/internal/models"
)

// LockState is a point-in-time lockout snapshot. Slight staleness near
// the threshold is tolerated; the counters are pure appends.
type LockState struct {
	Locked     bool
	Count      int
	RetryAfter time.Duration
}

// AttemptLedger records login attempts and computes lockout state. Two
// implementations exist: the relational AttemptStore and the counter-based
// RedisAttemptStore.
type AttemptLedger interface {
	// Record appends an attempt. Storage errors never fail the caller's
	// flow; they are logged and reported as false.
	Record(ctx context.Context, email, ip string, success bool) bool
	// IsLocked counts failures for EITHER the email OR the ip within the
	// trailing window, so neither rotating IPs against one email nor
	// spraying one IP across many emails slips past the threshold. Fails
	// OPEN on storage error to preserve availability.
	IsLocked(ctx context.Context, email, ip string) LockState
	// Clear drops recent failures for the pair after a successful
	// primary-factor authentication.
	Clear(ctx context.Context, email, ip string)
	// PurgeOlderThan removes attempts past the retention horizon.
	PurgeOlderThan(ctx context.Context, horizon time.Duration) (int64, error)
}

// AttemptStore is the relational AttemptLedger over login_attempts.
type AttemptStore struct {
	db        *gorm.DB
	lg        *zap.SugaredLogger
	threshold int
	window    time.Duration
	lockout   time.Duration
}

func NewAttemptStore(db *gorm.DB, lg *zap.SugaredLogger, threshold int, window, lockout time.Duration) *AttemptStore {
	return &AttemptStore{db: db, lg: lg, threshold: threshold, window: window, lockout: lockout}
}

func (s *AttemptStore) Record(ctx context.Context, email, ip string, success bool) bool {
	att := models.LoginAttempt{Email: email, IP: ip, Success: success}
	if err := s.db.WithContext(ctx).Create(&att).Error; err != nil {
		s.lg.Errorw("record login attempt", "error", err, "ip", ip)
		return false
	}
	return true
}

func (s *AttemptStore) IsLocked(ctx context.Context, email, ip string) LockState {
	since := time.Now().Add(-s.window)
	var n int64
	err := s.db.WithContext(ctx).Model(&models.LoginAttempt{}).
		Where("(email = ? OR ip = ?) AND success = ? AND created_at > ?", email, ip, false, since).
		Count(&n).Error
	if err != nil {
		s.lg.Errorw("lockout check", "error", err, "ip", ip)
		return LockState{}
	}
	state := LockState{Count: int(n), Locked: int(n) >= s.threshold}
	if !state.Locked {
		return state
	}
	var last models.LoginAttempt
	err = s.db.WithContext(ctx).
		Where("(email = ? OR ip = ?) AND success = ? AND created_at > ?", email, ip, false, since).
		Order("created_at desc").First(&last).Error
	if err != nil {
		s.lg.Errorw("lockout last-failure lookup", "error", err, "ip", ip)
		return LockState{}
	}
	if remaining := s.lockout - time.Since(last.CreatedAt); remaining > 0 {
		state.RetryAfter = remaining
	}
	return state
}

func (s *AttemptStore) Clear(ctx context.Context, email, ip string) {
	since := time.Now().Add(-s.window)
	err := s.db.WithContext(ctx).
		Where("(email = ? OR ip = ?) AND success = ? AND created_at > ?", email, ip, false, since).
		Delete(&models.LoginAttempt{}).Error
	if err != nil {
		s.lg.Errorw("clear login attempts", "error", err, "ip", ip)
	}
}

func (s *AttemptStore) PurgeOlderThan(ctx context.Context, horizon time.Duration) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("created_at < ?", time.Now().Add(-horizon)).
		Delete(&models.LoginAttempt{})
	return res.RowsAffected, res.Error
}

// History returns recent attempts for an email and/or ip, newest first.
func (s *AttemptStore) History(ctx context.Context, email, ip string, limit int) ([]models.LoginAttempt, error) {
	if limit <= 0 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Model(&models.LoginAttempt{})
	switch {
	case email != "" && ip != "":
		q = q.Where("email = ? OR ip = ?", email, ip)
	case email != "":
		q = q.Where("email = ?", email)
	case ip != "":
		q = q.Where("ip = ?", ip)
	}
	var out []models.LoginAttempt
	err := q.Order("created_at desc").Limit(limit).Find(&out).Error
	return out, err
}
