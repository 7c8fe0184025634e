package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"authcore/internal/models"
	"authcore/internal/store"
)

type LoginStatus int

const (
	LoginOK LoginStatus = iota
	LoginTwoFARequired
	LoginInvalidCredentials
	LoginInvalidEmail
	LoginBlocked
	LoginError
)

// LoginResult is the tagged outcome of a login decision. User is set
// only for OK and TwoFARequired; RetryAfter only for Blocked.
type LoginResult struct {
	Status     LoginStatus
	User       *models.User
	Message    string
	RetryAfter time.Duration
}

// One message for unknown email and wrong password; any divergence
// would let a caller enumerate registered addresses.
const msgInvalidCredentials = "invalid email or password"

// Service decides login outcomes. It consults the attempt ledger before
// touching credentials and owns no session state.
type Service struct {
	users    *store.UserStore
	attempts store.AttemptLedger
	lg       *zap.SugaredLogger
}

func NewService(users *store.UserStore, attempts store.AttemptLedger, lg *zap.SugaredLogger) *Service {
	return &Service{users: users, attempts: attempts, lg: lg}
}

// Login runs the primary-factor decision. The caller resolves ip from
// the transport. Granting a session is the orchestrator's job and only
// appropriate on LoginOK.
func (s *Service) Login(ctx context.Context, email, password, ip string) LoginResult {
	email = strings.ToLower(strings.TrimSpace(email))

	// Lockout first: no hash work for locked callers, and no timing
	// difference between "locked" and "about to be locked".
	if st := s.attempts.IsLocked(ctx, email, ip); st.Locked {
		minutes := int(st.RetryAfter.Minutes()) + 1
		return LoginResult{
			Status:     LoginBlocked,
			Message:    fmt.Sprintf("too many failed attempts, try again in %d minutes", minutes),
			RetryAfter: st.RetryAfter,
		}
	}

	// Empty submissions still count as attempts, otherwise they would
	// bypass the ledger entirely.
	if email == "" || password == "" {
		s.attempts.Record(ctx, email, ip, false)
		return LoginResult{Status: LoginInvalidCredentials, Message: msgInvalidCredentials}
	}

	if !ValidEmail(email) {
		s.attempts.Record(ctx, email, ip, false)
		return LoginResult{Status: LoginInvalidEmail, Message: "malformed email address"}
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.lg.Errorw("login user lookup", "error", err, "ip", ip)
		return LoginResult{Status: LoginError, Message: "login failed"}
	}
	if u == nil {
		s.attempts.Record(ctx, email, ip, false)
		return LoginResult{Status: LoginInvalidCredentials, Message: msgInvalidCredentials}
	}

	if err := CheckPassword(u.PasswordHash, password); err != nil {
		s.attempts.Record(ctx, email, ip, false)
		return LoginResult{Status: LoginInvalidCredentials, Message: msgInvalidCredentials}
	}

	s.attempts.Record(ctx, email, ip, true)
	s.attempts.Clear(ctx, email, ip)

	if u.TwoFAEnabled {
		return LoginResult{Status: LoginTwoFARequired, User: u, Message: "second factor required"}
	}
	return LoginResult{Status: LoginOK, User: u, Message: "login ok"}
}
