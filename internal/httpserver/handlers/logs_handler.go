package handlers

import (
	"net/http"
	"strconv"

	"authcore/internal/session"
	"authcore/internal/store"
)

// MyLogs returns the caller's own audit entries, newest first; ?action=
// filters by action tag.
func MyLogs(audit *store.AuditStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := session.FromRequest(r)
		action := r.URL.Query().Get("action")
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries := audit.ForUser(r.Context(), sc.UserID, action, limit)
		respondJSON(w, map[string]any{"entries": entries, "count": len(entries)})
	}
}

func MyLogStats(audit *store.AuditStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := session.FromRequest(r)
		respondJSON(w, map[string]any{"stats": audit.Stats(r.Context(), sc.UserID)})
	}
}
