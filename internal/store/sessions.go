package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"authcore/internal/models"
	"authcore/internal/util"
)

var ErrSessionInvalid = errors.New("session invalid")

// SessionStore owns the durable multi-device session rows.
type SessionStore struct {
	db         *gorm.DB
	lg         *zap.SugaredLogger
	lifetime   time.Duration
	tokenBytes int
}

func NewSessionStore(db *gorm.DB, lg *zap.SugaredLogger, lifetime time.Duration, tokenBytes int) *SessionStore {
	return &SessionStore{db: db, lg: lg, lifetime: lifetime, tokenBytes: tokenBytes}
}

func (s *SessionStore) Lifetime() time.Duration { return s.lifetime }

// Create mints a fresh token and inserts the session row. A new row per
// login keeps one grant per device and makes fixation a non-issue.
func (s *SessionStore) Create(ctx context.Context, userID uint, ip, userAgent string) (string, error) {
	token, err := util.RandomToken(s.tokenBytes)
	if err != nil {
		return "", err
	}
	sess := models.Session{
		UserID:    userID,
		Token:     token,
		IP:        ip,
		UserAgent: userAgent,
		ExpiresAt: time.Now().Add(s.lifetime),
	}
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return "", err
	}
	return token, nil
}

// Validate resolves a token to its session and owning user. Expired
// sessions and inactive owners are invalid; so is any storage failure
// (an unreadable session is treated as no session).
func (s *SessionStore) Validate(ctx context.Context, token string) (*models.Session, *models.User, error) {
	var sess models.Session
	err := s.db.WithContext(ctx).First(&sess, "token = ?", token).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.lg.Errorw("session lookup", "error", err)
		}
		return nil, nil, ErrSessionInvalid
	}
	if time.Now().After(sess.ExpiresAt) {
		return nil, nil, ErrSessionInvalid
	}
	var u models.User
	err = s.db.WithContext(ctx).First(&u, "id = ? AND active = ?", sess.UserID, true).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.lg.Errorw("session user lookup", "error", err)
		}
		return nil, nil, ErrSessionInvalid
	}
	return &sess, &u, nil
}

// Renew pushes the expiry out to now + lifetime.
func (s *SessionStore) Renew(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Model(&models.Session{}).Where("token = ?", token).
		Update("expires_at", time.Now().Add(s.lifetime)).Error
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Delete(&models.Session{}, "token = ?", token).Error
}

// DeleteForUser removes every session of a user, optionally sparing one
// token ("log out other devices"). Returns the number removed.
func (s *SessionStore) DeleteForUser(ctx context.Context, userID uint, exceptToken string) (int64, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if exceptToken != "" {
		q = q.Where("token <> ?", exceptToken)
	}
	res := q.Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

func (s *SessionStore) ActiveForUser(ctx context.Context, userID uint) ([]models.Session, error) {
	var out []models.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Order("created_at desc").Find(&out).Error
	return out, err
}

func (s *SessionStore) CountActive(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Count(&n).Error
	return n, err
}

// PurgeExpired deletes lapsed sessions; safe to run concurrently with
// live traffic and idempotent.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
