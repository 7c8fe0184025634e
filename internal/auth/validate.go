package auth

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

const (
	usernameMinLength = 2
	usernameMaxLength = 20
)

// ValidEmail reports whether s is a structurally valid address: RFC
// 5322 parse plus a dotted host. Anything stricter belongs to an
// email-verification flow, not here.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// SanitizeUsername strips everything outside [A-Za-z0-9_] and truncates
// to the maximum length. Returns "" when nothing usable remains.
func SanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > usernameMaxLength {
		out = out[:usernameMaxLength]
	}
	if len(out) < usernameMinLength {
		return ""
	}
	return out
}

// DeriveUsername builds a default username from the email's local part,
// falling back to a generated placeholder when sanitization empties it.
func DeriveUsername(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	if u := SanitizeUsername(local); u != "" {
		return u
	}
	return PlaceholderUsername()
}

// PlaceholderUsername generates a unique fallback username. Also used to
// resolve collisions when the derived name is already taken.
func PlaceholderUsername() string {
	return "user_" + strings.ReplaceAll(uuid.NewString()[:13], "-", "")
}
