package store

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"authcore/internal/models"
)

// Audit action vocabulary. Entries outside this set indicate a bug.
const (
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionRegister       = "register"
	ActionPasswordChange = "password_change"
	ActionTwoFAEnable    = "2fa_enable"
	ActionTwoFADisable   = "2fa_disable"
	ActionTwoFAVerify    = "2fa_verify"
	ActionProfileUpdate  = "profile_update"
	ActionEmailChange    = "email_change"
	ActionSessionRevoke  = "session_revoke"
)

// ActionStat is a per-action aggregate for one user. LastAt stays a raw
// string: max() results only scan portably as text across drivers.
type ActionStat struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
	LastAt string `json:"last_at"`
}

// AuditStore owns the append-only audit_log table.
type AuditStore struct {
	db *gorm.DB
	lg *zap.SugaredLogger
}

func NewAuditStore(db *gorm.DB, lg *zap.SugaredLogger) *AuditStore {
	return &AuditStore{db: db, lg: lg}
}

// Record appends an entry. Audit failures never fail the caller's flow.
func (s *AuditStore) Record(ctx context.Context, userID uint, action, ip string, metadata models.JSONB) bool {
	e := models.AuditEntry{UserID: userID, Action: action, IP: ip, Metadata: metadata}
	if err := s.db.WithContext(ctx).Create(&e).Error; err != nil {
		s.lg.Errorw("audit record", "error", err, "action", action, "user_id", userID)
		return false
	}
	return true
}

// ForUser returns a user's entries newest first, optionally filtered by
// action. Storage errors degrade to an empty slice.
func (s *AuditStore) ForUser(ctx context.Context, userID uint, action string, limit int) []models.AuditEntry {
	if limit <= 0 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if action != "" {
		q = q.Where("action = ?", action)
	}
	var out []models.AuditEntry
	if err := q.Order("created_at desc").Limit(limit).Find(&out).Error; err != nil {
		s.lg.Errorw("audit query", "error", err, "user_id", userID)
		return nil
	}
	return out
}

// Recent returns the newest entries across all users, for administrators.
func (s *AuditStore) Recent(ctx context.Context, action string, limit int) []models.AuditEntry {
	if limit <= 0 {
		limit = 100
	}
	q := s.db.WithContext(ctx).Model(&models.AuditEntry{})
	if action != "" {
		q = q.Where("action = ?", action)
	}
	var out []models.AuditEntry
	if err := q.Order("created_at desc").Limit(limit).Find(&out).Error; err != nil {
		s.lg.Errorw("audit query", "error", err)
		return nil
	}
	return out
}

// Stats aggregates a user's entries per action with the last occurrence.
func (s *AuditStore) Stats(ctx context.Context, userID uint) []ActionStat {
	var out []ActionStat
	err := s.db.WithContext(ctx).Model(&models.AuditEntry{}).
		Select("action, count(*) as count, max(created_at) as last_at").
		Where("user_id = ?", userID).
		Group("action").Order("count desc").
		Scan(&out).Error
	if err != nil {
		s.lg.Errorw("audit stats", "error", err, "user_id", userID)
		return nil
	}
	return out
}

func (s *AuditStore) PurgeOlderThan(ctx context.Context, horizon time.Duration) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", time.Now().Add(-horizon)).
		Delete(&models.AuditEntry{})
	return res.RowsAffected, res.Error
}
