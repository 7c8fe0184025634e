package models

import "time"

// Role is a named permission bucket. The set is static and seeded at startup.
type Role struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"uniqueIndex;not null;size:32" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Username     string     `gorm:"uniqueIndex;not null;size:32" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	TwoFAEnabled bool       `gorm:"not null;default:false" json:"two_fa_enabled"`
	Active       bool       `gorm:"not null;default:true" json:"active"`
	Roles        []Role     `gorm:"many2many:user_roles" json:"roles,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// LoginAttempt is an append-only fact; rows are never updated, only
// removed by the post-success clear or the retention sweep.
type LoginAttempt struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"index;not null" json:"email"`
	IP        string    `gorm:"index;not null;size:45" json:"ip"`
	Success   bool      `gorm:"not null" json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a durable, revocable login grant. A user holds one row per
// device/browser. It is valid iff ExpiresAt is in the future and the
// owning user is still active.
type Session struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null;size:64" json:"token"`
	IP        string    `gorm:"size:45" json:"ip"`
	UserAgent string    `gorm:"size:512" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}

type AuditEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Action    string    `gorm:"index;not null;size:32" json:"action"`
	IP        string    `gorm:"size:45" json:"ip"`
	Metadata  JSONB     `gorm:"type:jsonb;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (AuditEntry) TableName() string { return "audit_log" }
