package session

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"authcore/internal/auth"
	"authcore/internal/store"
)

// Loader resolves the session cookie into a Context for every request.
// Any failure along the way (missing cookie, bad signature, expired or
// revoked session, inactive user, store error) silently falls through
// to Anonymous: an unreadable session is no session.
func Loader(codec *auth.CookieCodec, sessions *store.SessionStore, cookieName string, cookieSecure bool, lg *zap.SugaredLogger) func(http.Handler) http.Handler {
	load := func(w http.ResponseWriter, r *http.Request) *Context {
		sc := &Context{}
		cookie, err := r.Cookie(cookieName)
		if err != nil {
			return sc
		}
		token, err := codec.Verify(cookie.Value)
		if err != nil {
			return sc
		}
		sess, u, err := sessions.Validate(r.Context(), token)
		if err != nil {
			return sc
		}
		// Sliding renewal: extend once less than half the lifetime
		// remains, instead of a write per request. The cookie is
		// re-signed alongside so its signature expiry tracks the row.
		if time.Until(sess.ExpiresAt) < sessions.Lifetime()/2 {
			if err := sessions.Renew(r.Context(), token); err != nil {
				lg.Errorw("session renew", "error", err, "user_id", u.ID)
			} else {
				expires := time.Now().Add(sessions.Lifetime())
				if value, err := codec.Sign(token, expires); err == nil {
					http.SetCookie(w, &http.Cookie{
						Name:     cookieName,
						Value:    value,
						Path:     "/",
						Expires:  expires,
						HttpOnly: true,
						Secure:   cookieSecure,
						SameSite: http.SameSiteLaxMode,
					})
				}
			}
		}
		// A durable session is only ever granted after full
		// verification, so a validated token implies Full here; the
		// Pending2FA state exists only within the login request.
		sc.UserID = u.ID
		sc.Email = u.Email
		sc.Username = u.Username
		sc.LoginTime = sess.CreatedAt
		sc.Token = token
		sc.TwoFAVerified = true
		return sc
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := load(w, r)
			next.ServeHTTP(w, r.WithContext(With(r.Context(), sc)))
		})
	}
}

// RequireAuth rejects anonymous requests; the boundary's translation of
// the orchestrator's ErrNotAuthenticated condition.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromRequest(r).IsAuthenticated() {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole layers a role membership check on RequireAuth.
func RequireRole(o *Orchestrator, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := FromRequest(r)
			switch err := o.RequireRole(r.Context(), sc, role); err {
			case nil:
				next.ServeHTTP(w, r)
			case ErrNotAuthenticated:
				http.Error(w, "authentication required", http.StatusUnauthorized)
			default:
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
