package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"authcore/internal/models"
	"authcore/internal/store"
)

type RegisterStatus int

const (
	RegisterOK RegisterStatus = iota
	RegisterEmailExists
	RegisterError
)

type RegisterResult struct {
	Status  RegisterStatus
	User    *models.User
	Message string
}

// Registrar creates accounts. Input validation (email format, password
// policy) happens at the boundary; the registrar assumes vetted input.
type Registrar struct {
	users *store.UserStore
	roles *store.RoleStore
	audit *store.AuditStore
	lg    *zap.SugaredLogger
}

func NewRegistrar(users *store.UserStore, roles *store.RoleStore, audit *store.AuditStore, lg *zap.SugaredLogger) *Registrar {
	return &Registrar{users: users, roles: roles, audit: audit, lg: lg}
}

func (r *Registrar) Register(ctx context.Context, email, password, ip string) RegisterResult {
	email = strings.ToLower(strings.TrimSpace(email))

	// Pre-check for a friendly answer; the unique index is the real
	// guard under concurrent registration.
	exists, err := r.users.EmailExists(ctx, email)
	if err != nil {
		r.lg.Errorw("register email check", "error", err)
		return RegisterResult{Status: RegisterError, Message: "registration failed"}
	}
	if exists {
		return RegisterResult{Status: RegisterEmailExists, Message: "email already registered"}
	}

	hash, err := HashPassword(password)
	if err != nil {
		r.lg.Errorw("register hash", "error", err)
		return RegisterResult{Status: RegisterError, Message: "registration failed"}
	}

	u := &models.User{
		Email:        email,
		Username:     DeriveUsername(email),
		PasswordHash: hash,
		Active:       true,
	}
	if err := r.users.Create(ctx, u); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			r.lg.Errorw("register create", "error", err)
			return RegisterResult{Status: RegisterError, Message: "registration failed"}
		}
		// Duplicate key: either the email lost a race, or the derived
		// username is taken. Re-check the email and retry once with a
		// generated name.
		if exists, _ := r.users.EmailExists(ctx, email); exists {
			return RegisterResult{Status: RegisterEmailExists, Message: "email already registered"}
		}
		u.Username = PlaceholderUsername()
		if err := r.users.Create(ctx, u); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return RegisterResult{Status: RegisterEmailExists, Message: "email already registered"}
			}
			r.lg.Errorw("register create retry", "error", err)
			return RegisterResult{Status: RegisterError, Message: "registration failed"}
		}
	}

	// A failed grant or audit write leaves the account usable; logged,
	// accepted, not wrapped in a transaction.
	if err := r.roles.Grant(ctx, u.ID, models.RoleUser); err != nil {
		r.lg.Errorw("register role grant", "error", err, "user_id", u.ID)
	}
	r.audit.Record(ctx, u.ID, store.ActionRegister, ip, nil)

	return RegisterResult{Status: RegisterOK, User: u, Message: "account created"}
}
