package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"authcore/internal/store"
)

func ListUsers(users *store.UserStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.List(r.Context())
		if err != nil {
			lg.Errorw("list users", "error", err)
			respondStatus(w, http.StatusInternalServerError, map[string]any{"error": "query failed"})
			return
		}
		respondJSON(w, list)
	}
}

func GrantRole(roles *store.RoleStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}
		role := chi.URLParam(r, "role")
		if err := roles.Grant(r.Context(), uint(userID), role); err != nil {
			if err == store.ErrRoleUnknown {
				respondStatus(w, http.StatusNotFound, map[string]any{"error": "unknown role"})
				return
			}
			lg.Errorw("grant role", "error", err, "user_id", userID, "role", role)
			respondStatus(w, http.StatusInternalServerError, map[string]any{"error": "grant failed"})
			return
		}
		respondJSON(w, map[string]any{"granted": role})
	}
}

func RevokeRole(roles *store.RoleStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}
		role := chi.URLParam(r, "role")
		if err := roles.Revoke(r.Context(), uint(userID), role); err != nil {
			if err == store.ErrRoleUnknown {
				respondStatus(w, http.StatusNotFound, map[string]any{"error": "unknown role"})
				return
			}
			lg.Errorw("revoke role", "error", err, "user_id", userID, "role", role)
			respondStatus(w, http.StatusInternalServerError, map[string]any{"error": "revoke failed"})
			return
		}
		respondJSON(w, map[string]any{"revoked": role})
	}
}

// DeactivateUser soft-removes an account. Every durable session of the
// user becomes invalid on its next validation; rows stay for audit.
func DeactivateUser(users *store.UserStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}
		if err := users.Deactivate(r.Context(), uint(userID)); err != nil {
			lg.Errorw("deactivate user", "error", err, "user_id", userID)
			respondStatus(w, http.StatusInternalServerError, map[string]any{"error": "deactivate failed"})
			return
		}
		respondJSON(w, map[string]any{"deactivated": true})
	}
}

func RecentLogs(audit *store.AuditStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := r.URL.Query().Get("action")
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries := audit.Recent(r.Context(), action, limit)
		respondJSON(w, map[string]any{"entries": entries, "count": len(entries)})
	}
}

// AttemptHistory exposes the raw attempt ledger for one email and/or ip.
// Only available on the relational backend; the Redis ledger keeps
// counters, not rows.
func AttemptHistory(attempts *store.AttemptStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if attempts == nil {
			respondStatus(w, http.StatusNotImplemented, map[string]any{"error": "attempt history requires the db ledger"})
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		list, err := attempts.History(r.Context(),
			r.URL.Query().Get("email"), r.URL.Query().Get("ip"), limit)
		if err != nil {
			lg.Errorw("attempt history", "error", err)
			respondStatus(w, http.StatusInternalServerError, map[string]any{"error": "query failed"})
			return
		}
		respondJSON(w, map[string]any{"attempts": list, "count": len(list)})
	}
}

func RunSweep(sweeper *store.Sweeper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, sweeper.Run(r.Context()))
	}
}
