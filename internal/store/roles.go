package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"authcore/internal/models"
)

var ErrRoleUnknown = errors.New("unknown role")

// RoleStore owns the static role set and the user_roles join rows; a
// join row's presence is the sole authorization fact.
type RoleStore struct {
	db *gorm.DB
	lg *zap.SugaredLogger
}

func NewRoleStore(db *gorm.DB, lg *zap.SugaredLogger) *RoleStore {
	return &RoleStore{db: db, lg: lg}
}

// Seed inserts the static role set if absent. Run once at startup.
func (s *RoleStore) Seed(ctx context.Context) error {
	seed := []models.Role{
		{Name: models.RoleUser, Description: "Default role for every registered account"},
		{Name: models.RoleModerator, Description: "Content moderation privileges"},
		{Name: models.RoleAdmin, Description: "Full administrative access"},
	}
	for _, r := range seed {
		var existing models.Role
		err := s.db.WithContext(ctx).
			Where(models.Role{Name: r.Name}).
			Attrs(models.Role{Description: r.Description}).
			FirstOrCreate(&existing).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *RoleStore) All(ctx context.Context) ([]models.Role, error) {
	var out []models.Role
	err := s.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (s *RoleStore) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var r models.Role
	err := s.db.WithContext(ctx).First(&r, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleUnknown
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Grant adds the membership row; granting an already-held role is a no-op.
func (s *RoleStore) Grant(ctx context.Context, userID uint, roleName string) error {
	role, err := s.FindByName(ctx, roleName)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Exec(
		"INSERT INTO user_roles (user_id, role_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		userID, role.ID).Error
}

func (s *RoleStore) Revoke(ctx context.Context, userID uint, roleName string) error {
	role, err := s.FindByName(ctx, roleName)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Exec(
		"DELETE FROM user_roles WHERE user_id = ? AND role_id = ?",
		userID, role.ID).Error
}

// HasRole fails closed: a storage error reads as "not a member".
func (s *RoleStore) HasRole(ctx context.Context, userID uint, roleName string) bool {
	var n int64
	err := s.db.WithContext(ctx).Table("user_roles").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND roles.name = ?", userID, roleName).
		Count(&n).Error
	if err != nil {
		s.lg.Errorw("role membership check", "error", err, "user_id", userID, "role", roleName)
		return false
	}
	return n > 0
}

func (s *RoleStore) RolesOfUser(ctx context.Context, userID uint) ([]models.Role, error) {
	var out []models.Role
	err := s.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.id").Find(&out).Error
	return out, err
}
