package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"authcore/internal/session"
	"authcore/internal/util"
)

func ListSessions(orch *session.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions := orch.ActiveSessions(r.Context(), session.FromRequest(r))
		respondJSON(w, map[string]any{"sessions": sessions, "count": len(sessions)})
	}
}

func RevokeSession(orch *session.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		if orch.RevokeSession(r.Context(), session.FromRequest(r), token, util.ClientIP(r)) {
			respondJSON(w, map[string]any{"revoked": true})
			return
		}
		respondStatus(w, http.StatusNotFound, map[string]any{"error": "session not found"})
	}
}

func RevokeOtherSessions(orch *session.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := orch.RevokeOtherSessions(r.Context(), session.FromRequest(r), util.ClientIP(r))
		respondJSON(w, map[string]any{"revoked": n})
	}
}
