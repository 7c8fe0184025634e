package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"authcore/internal/auth"
	"authcore/internal/config"
	"authcore/internal/session"
	"authcore/internal/store"
	"authcore/internal/util"
)

func Me(users *store.UserStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := session.FromRequest(r)
		u, err := users.FindByID(r.Context(), sc.UserID)
		if err != nil || u == nil {
			respondStatus(w, http.StatusNotFound, map[string]any{"error": "not found"})
			return
		}
		respondJSON(w, u)
	}
}

func ChangePassword(users *store.UserStore, audit *store.AuditStore, cfg config.Config, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Current string `json:"current_password"`
			New     string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		sc := session.FromRequest(r)
		u, err := users.FindByID(r.Context(), sc.UserID)
		if err != nil || u == nil {
			respondStatus(w, http.StatusNotFound, map[string]any{"error": "not found"})
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, req.Current); err != nil {
			respondStatus(w, http.StatusUnauthorized, map[string]any{"error": "current password incorrect"})
			return
		}
		if violations := auth.ValidatePassword(req.New, cfg.PasswordMinLength); len(violations) > 0 {
			respondStatus(w, http.StatusBadRequest, map[string]any{
				"error":      "password does not meet policy",
				"violations": violations,
			})
			return
		}
		hash, err := auth.HashPassword(req.New)
		if err != nil {
			respondStatus(w, http.StatusInternalServerError, map[string]any{"error": "password change failed"})
			return
		}
		if err := users.SetPassword(r.Context(), u.ID, hash); err != nil {
			lg.Errorw("set password", "error", err, "user_id", u.ID)
			respondStatus(w, http.StatusInternalServerError, map[string]any{"error": "password change failed"})
			return
		}
		audit.Record(r.Context(), u.ID, store.ActionPasswordChange, util.ClientIP(r), nil)
		respondJSON(w, map[string]any{"status": "ok"})
	}
}

func ChangeUsername(users *store.UserStore, audit *store.AuditStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		username := auth.SanitizeUsername(req.Username)
		if username == "" {
			respondStatus(w, http.StatusBadRequest, map[string]any{
				"error": "username must be 2-20 characters of letters, digits, or underscore",
			})
			return
		}
		sc := session.FromRequest(r)
		if err := users.UpdateUsername(r.Context(), sc.UserID, username); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				respondStatus(w, http.StatusConflict, map[string]any{"error": "username already taken"})
				return
			}
			lg.Errorw("update username", "error", err, "user_id", sc.UserID)
			respondStatus(w, http.StatusInternalServerError, map[string]any{"error": "username change failed"})
			return
		}
		audit.Record(r.Context(), sc.UserID, store.ActionProfileUpdate, util.ClientIP(r), nil)
		respondJSON(w, map[string]any{"username": username})
	}
}
