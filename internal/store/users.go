package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"authcore/internal/models"
)

// UserStore owns the users table. Lookups only ever return active users;
// soft-deactivation is the sole removal path.
type UserStore struct {
	db *gorm.DB
	lg *zap.SugaredLogger
}

func NewUserStore(db *gorm.DB, lg *zap.SugaredLogger) *UserStore {
	return &UserStore{db: db, lg: lg}
}

// FindByEmail returns (nil, nil) when no active user matches.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "email = ? AND active = ?", email, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Preload("Roles").First(&u, "id = ? AND active = ?", id, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

// Create inserts the row. The unique indexes on email and username are
// the real duplicate guard; callers map gorm.ErrDuplicatedKey.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *UserStore) UpdateLastLogin(ctx context.Context, id uint) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("last_login_at", &now).Error
}

func (s *UserStore) UpdateUsername(ctx context.Context, id uint, username string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("username", username).Error
}

func (s *UserStore) SetPassword(ctx context.Context, id uint, hash string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("password_hash", hash).Error
}

// Deactivate flips the active flag. Sessions become invalid on the next
// validation; rows are never physically deleted.
func (s *UserStore) Deactivate(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("active", false).Error
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Preload("Roles").Order("created_at desc").Find(&users).Error
	return users, err
}
