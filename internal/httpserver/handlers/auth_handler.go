package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"authcore/internal/auth"
	"authcore/internal/config"
	"authcore/internal/session"
	"authcore/internal/util"
)

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Register(reg *auth.Registrar, cfg config.Config, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if !auth.ValidEmail(req.Email) {
			respondStatus(w, http.StatusBadRequest, map[string]any{"error": "malformed email address"})
			return
		}
		if violations := auth.ValidatePassword(req.Password, cfg.PasswordMinLength); len(violations) > 0 {
			respondStatus(w, http.StatusBadRequest, map[string]any{
				"error":      "password does not meet policy",
				"violations": violations,
			})
			return
		}
		res := reg.Register(r.Context(), req.Email, req.Password, util.ClientIP(r))
		switch res.Status {
		case auth.RegisterOK:
			respondStatus(w, http.StatusCreated, map[string]any{
				"id": res.User.ID, "email": res.User.Email, "username": res.User.Username,
			})
		case auth.RegisterEmailExists:
			respondStatus(w, http.StatusConflict, map[string]any{"error": res.Message})
		default:
			respondStatus(w, http.StatusInternalServerError, map[string]any{"error": res.Message})
		}
	}
}

func Login(svc *auth.Service, orch *session.Orchestrator, codec *auth.CookieCodec,
	cfg config.Config, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		ip := util.ClientIP(r)
		res := svc.Login(r.Context(), req.Email, req.Password, ip)
		switch res.Status {
		case auth.LoginOK:
			sc := session.FromRequest(r)
			token, err := orch.Login(r.Context(), sc, res.User, ip, r.UserAgent())
			if err != nil {
				lg.Errorw("session create", "error", err, "user_id", res.User.ID)
				respondStatus(w, http.StatusInternalServerError, map[string]any{"error": "login failed"})
				return
			}
			setSessionCookie(w, cfg, codec, token, lg)
			respondJSON(w, map[string]any{
				"status": "ok", "username": res.User.Username, "email": res.User.Email,
			})
		case auth.LoginTwoFARequired:
			// No session and no cookie until the second factor clears.
			respondJSON(w, map[string]any{"status": "2fa_required", "user_id": res.User.ID})
		case auth.LoginBlocked:
			w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
			respondStatus(w, http.StatusTooManyRequests, map[string]any{"error": res.Message})
		case auth.LoginInvalidEmail:
			respondStatus(w, http.StatusBadRequest, map[string]any{"error": res.Message})
		case auth.LoginInvalidCredentials:
			respondStatus(w, http.StatusUnauthorized, map[string]any{"error": res.Message})
		default:
			respondStatus(w, http.StatusInternalServerError, map[string]any{"error": res.Message})
		}
	}
}

func Logout(orch *session.Orchestrator, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orch.Logout(r.Context(), session.FromRequest(r), util.ClientIP(r))
		clearSessionCookie(w, cfg)
		respondJSON(w, map[string]any{"status": "ok"})
	}
}

func setSessionCookie(w http.ResponseWriter, cfg config.Config, codec *auth.CookieCodec, token string, lg *zap.SugaredLogger) {
	expires := time.Now().Add(cfg.SessionLifetime)
	value, err := codec.Sign(token, expires)
	if err != nil {
		lg.Errorw("cookie sign", "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, cfg config.Config) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
