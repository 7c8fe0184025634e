package store

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"authcore/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Role{}, &models.User{},
		&models.LoginAttempt{}, &models.Session{}, &models.AuditEntry{}))
	return db
}

func nopLg() *zap.SugaredLogger { return zap.NewNop().Sugar() }

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{
		Email:        email,
		Username:     uuid.NewString()[:8],
		PasswordHash: "x",
		Active:       true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}
