package util

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the caller address: first X-Forwarded-For segment,
// then X-Client-IP, then the transport peer address, in that priority.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if cip := strings.TrimSpace(r.Header.Get("X-Client-IP")); cip != "" {
		return cip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
