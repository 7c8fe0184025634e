package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"authcore/internal/models"
	"authcore/internal/store"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")
)

// SessionInfo is one durable session as shown to its owner.
type SessionInfo struct {
	Token     string    `json:"token"`
	Device    string    `json:"device"`
	IP        string    `json:"ip"`
	Current   bool      `json:"current"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Orchestrator turns an authentication decision into a live session and
// answers every authorization query the rest of the application asks.
type Orchestrator struct {
	sessions *store.SessionStore
	roles    *store.RoleStore
	audit    *store.AuditStore
	users    *store.UserStore
	lg       *zap.SugaredLogger
}

func NewOrchestrator(sessions *store.SessionStore, roles *store.RoleStore,
	audit *store.AuditStore, users *store.UserStore, lg *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{sessions: sessions, roles: roles, audit: audit, users: users, lg: lg}
}

// Login binds u into sc and creates the durable session row. The token
// is always freshly minted, so a pre-login identifier can never carry
// over (fixation). Callers invoke this only on a primary-factor OK; a
// pending second factor grants nothing.
func (o *Orchestrator) Login(ctx context.Context, sc *Context, u *models.User, ip, userAgent string) (string, error) {
	token, err := o.sessions.Create(ctx, u.ID, ip, userAgent)
	if err != nil {
		return "", err
	}
	sc.UserID = u.ID
	sc.Email = u.Email
	sc.Username = u.Username
	sc.LoginTime = time.Now()
	sc.Token = token
	sc.TwoFAVerified = !u.TwoFAEnabled

	o.audit.Record(ctx, u.ID, store.ActionLogin, ip, nil)
	if err := o.users.UpdateLastLogin(ctx, u.ID); err != nil {
		o.lg.Errorw("update last login", "error", err, "user_id", u.ID)
	}
	return token, nil
}

// Logout deletes the durable row and returns sc to Anonymous. Cookie
// invalidation is the transport layer's half of the job.
func (o *Orchestrator) Logout(ctx context.Context, sc *Context, ip string) {
	if sc.IsAuthenticated() {
		o.audit.Record(ctx, sc.UserID, store.ActionLogout, ip, nil)
		if sc.Token != "" {
			if err := o.sessions.Delete(ctx, sc.Token); err != nil {
				o.lg.Errorw("logout session delete", "error", err, "user_id", sc.UserID)
			}
		}
	}
	sc.Reset()
}

func (o *Orchestrator) RequireAuth(sc *Context) error {
	if !sc.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

func (o *Orchestrator) RequireRole(ctx context.Context, sc *Context, role string) error {
	if err := o.RequireAuth(sc); err != nil {
		return err
	}
	if !o.roles.HasRole(ctx, sc.UserID, role) {
		return ErrForbidden
	}
	return nil
}

func (o *Orchestrator) HasRole(ctx context.Context, sc *Context, role string) bool {
	return sc.IsAuthenticated() && o.roles.HasRole(ctx, sc.UserID, role)
}

// ActiveSessions lists the bound user's durable sessions, flagging the
// caller's own. Storage errors degrade to an empty list; callers cannot
// tell "no sessions" from "store down".
func (o *Orchestrator) ActiveSessions(ctx context.Context, sc *Context) []SessionInfo {
	if !sc.IsAuthenticated() {
		return nil
	}
	rows, err := o.sessions.ActiveForUser(ctx, sc.UserID)
	if err != nil {
		o.lg.Errorw("active sessions", "error", err, "user_id", sc.UserID)
		return nil
	}
	out := make([]SessionInfo, 0, len(rows))
	for _, s := range rows {
		out = append(out, SessionInfo{
			Token:     s.Token,
			Device:    DescribeDevice(s.UserAgent),
			IP:        s.IP,
			Current:   s.Token == sc.Token,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
		})
	}
	return out
}

// RevokeSession deletes one durable session, but only if it belongs to
// the bound user. The ownership check stops cross-account revocation.
func (o *Orchestrator) RevokeSession(ctx context.Context, sc *Context, token string, ip string) bool {
	if !sc.IsAuthenticated() || token == "" {
		return false
	}
	rows, err := o.sessions.ActiveForUser(ctx, sc.UserID)
	if err != nil {
		o.lg.Errorw("revoke ownership check", "error", err, "user_id", sc.UserID)
		return false
	}
	owned := false
	for _, s := range rows {
		if s.Token == token {
			owned = true
			break
		}
	}
	if !owned {
		return false
	}
	if err := o.sessions.Delete(ctx, token); err != nil {
		o.lg.Errorw("revoke session", "error", err, "user_id", sc.UserID)
		return false
	}
	o.audit.Record(ctx, sc.UserID, store.ActionSessionRevoke, ip, nil)
	return true
}

// RevokeOtherSessions logs the bound user out of every device except the
// current one and returns how many grants were removed.
func (o *Orchestrator) RevokeOtherSessions(ctx context.Context, sc *Context, ip string) int64 {
	if !sc.IsAuthenticated() {
		return 0
	}
	n, err := o.sessions.DeleteForUser(ctx, sc.UserID, sc.Token)
	if err != nil {
		o.lg.Errorw("revoke other sessions", "error", err, "user_id", sc.UserID)
		return 0
	}
	if n > 0 {
		o.audit.Record(ctx, sc.UserID, store.ActionSessionRevoke, ip, nil)
	}
	return n
}
