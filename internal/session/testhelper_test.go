package session

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
	sessions *store.SessionStore
	roles    *store.RoleStore
	audit    *store.AuditStore
	users    *store.UserStore
	orch     *Orchestrator
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
		sessions: store.NewSessionStore(db, lg, 24*time.Hour, 32),
		roles:    store.NewRoleStore(db, lg),
		audit:    store.NewAuditStore(db, lg),
		users:    store.NewUserStore(db, lg),
	}
	env.orch = NewOrchestrator(env.sessions, env.roles, env.audit, env.users, lg)
	require.NoError(t, env.roles.Seed(context.Background()))
	return env
}

func (e *testEnv) createUser(t *testing.T, email string, twoFA bool) *models.User {
	t.Helper()
	u := &models.User{
		Email:        email,
		Username:     uuid.NewString()[:8],
		PasswordHash: "x",
		TwoFAEnabled: twoFA,
		Active:       true,
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}
