package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testIP = "203.0.113.7"

func newService(env *testEnv) *Service {
	return NewService(env.users, env.attempts, zap.NewNop().Sugar())
}

func TestLoginOK(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com", "Abcdef12", false)
	svc := newService(env)

	res := svc.Login(context.Background(), "alice@example.com", "Abcdef12", testIP)
	require.Equal(t, LoginOK, res.Status)
	require.NotNil(t, res.User)
	assert.Equal(t, "alice@example.com", res.User.Email)
}

func TestLoginNormalizesEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com", "Abcdef12", false)
	svc := newService(env)

	res := svc.Login(context.Background(), "  ALICE@Example.COM ", "Abcdef12", testIP)
	assert.Equal(t, LoginOK, res.Status)
}

func TestLoginTwoFARequired(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "bob@example.com", "Abcdef12", true)
	svc := newService(env)

	res := svc.Login(context.Background(), "bob@example.com", "Abcdef12", testIP)
	require.Equal(t, LoginTwoFARequired, res.Status)
	require.NotNil(t, res.User)
}

// Unknown email and wrong password must be indistinguishable.
func TestLoginEnumerationResistance(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com", "Abcdef12", false)
	svc := newService(env)

	missing := svc.Login(context.Background(), "ghost@example.com", "Abcdef12", testIP)
	wrong := svc.Login(context.Background(), "alice@example.com", "WrongPass1", testIP)

	assert.Equal(t, LoginInvalidCredentials, missing.Status)
	assert.Equal(t, LoginInvalidCredentials, wrong.Status)
	assert.Equal(t, missing.Message, wrong.Message)
	assert.Nil(t, missing.User)
	assert.Nil(t, wrong.User)
}

func TestLoginMalformedEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := newService(env)

	res := svc.Login(context.Background(), "not-an-email", "Abcdef12", testIP)
	assert.Equal(t, LoginInvalidEmail, res.Status)

	// The malformed submission still lands in the ledger.
	st := env.attempts.IsLocked(context.Background(), "not-an-email", testIP)
	assert.Equal(t, 1, st.Count)
}

func TestLoginEmptyInputRecordsAttempt(t *testing.T) {
	env := newTestEnv(t)
	svc := newService(env)

	res := svc.Login(context.Background(), "", "", testIP)
	assert.Equal(t, LoginInvalidCredentials, res.Status)

	st := env.attempts.IsLocked(context.Background(), "", testIP)
	assert.Equal(t, 1, st.Count)
}

func TestLoginLockoutAfterThreshold(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com", "Abcdef12", false)
	svc := newService(env)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res := svc.Login(ctx, "alice@example.com", "WrongPass1", testIP)
		assert.Equal(t, LoginInvalidCredentials, res.Status)
	}

	// Correct credentials no longer help.
	res := svc.Login(ctx, "alice@example.com", "Abcdef12", testIP)
	require.Equal(t, LoginBlocked, res.Status)
	assert.Greater(t, res.RetryAfter.Seconds(), 0.0)
	assert.Nil(t, res.User)
}

func TestLoginSuccessClearsCounter(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com", "Abcdef12", false)
	svc := newService(env)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		svc.Login(ctx, "alice@example.com", "WrongPass1", testIP)
	}
	res := svc.Login(ctx, "alice@example.com", "Abcdef12", testIP)
	require.Equal(t, LoginOK, res.Status)

	st := env.attempts.IsLocked(ctx, "alice@example.com", testIP)
	assert.False(t, st.Locked)
	assert.Equal(t, 0, st.Count)
}

func TestLoginInactiveUser(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "gone@example.com", "Abcdef12", false)
	require.NoError(t, env.users.Deactivate(context.Background(), u.ID))
	svc := newService(env)

	res := svc.Login(context.Background(), "gone@example.com", "Abcdef12", testIP)
	assert.Equal(t, LoginInvalidCredentials, res.Status)
}
