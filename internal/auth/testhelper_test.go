package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"authcore/internal/models"
	"authcore/internal/store"
)

type testEnv struct {
	db       *gorm.DB
	users    *store.UserStore
	attempts *store.AttemptStore
	roles    *store.RoleStore
	audit    *store.AuditStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Role{}, &models.User{},
		&models.LoginAttempt{}, &models.Session{}, &models.AuditEntry{}))

	lg := zap.NewNop().Sugar()
	env := &testEnv{
		db:       db,
		users:    store.NewUserStore(db, lg),
		attempts: store.NewAttemptStore(db, lg, 5, 15*time.Minute, 15*time.Minute),
		roles:    store.NewRoleStore(db, lg),
		audit:    store.NewAuditStore(db, lg),
	}
	require.NoError(t, env.roles.Seed(context.Background()))
	return env
}

func (e *testEnv) createUser(t *testing.T, email, password string, twoFA bool) *models.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	u := &models.User{
		Email:        email,
		Username:     DeriveUsername(email),
		PasswordHash: hash,
		TwoFAEnabled: twoFA,
		Active:       true,
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}
