package session

import (
	"context"
	"net/http"
	"time"
)

// Context is the per-request authentication state, threaded explicitly
// instead of living in any ambient global. Zero value is Anonymous;
// UserID set with TwoFAVerified false is Authenticated-Pending2FA; with
// TwoFAVerified true, Authenticated-Full.
type Context struct {
	UserID        uint
	Email         string
	Username      string
	LoginTime     time.Time
	Token         string
	TwoFAVerified bool
}

func (c *Context) IsAuthenticated() bool {
	return c != nil && c.UserID != 0
}

func (c *Context) Is2FAVerified() bool {
	return c != nil && c.TwoFAVerified
}

// Mark2FAVerified is the Pending2FA → Full transition point. The code
// verification protocol itself lives outside this package.
func (c *Context) Mark2FAVerified() {
	if c.IsAuthenticated() {
		c.TwoFAVerified = true
	}
}

// Reset returns the context to Anonymous.
func (c *Context) Reset() {
	*c = Context{}
}

type ctxKey struct{}

func With(ctx context.Context, sc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, sc)
}

// FromRequest never returns nil; absent state reads as Anonymous.
func FromRequest(r *http.Request) *Context {
	if sc, ok := r.Context().Value(ctxKey{}).(*Context); ok && sc != nil {
		return sc
	}
	return &Context{}
}
