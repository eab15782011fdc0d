package models

import (
	"strings"
	"time"
)

// Role is a named permission group in the identity store.
type Role struct {
	ID             string `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	NormalizedName string `db:"normalized_name" json:"-"`
}

// User is an identity principal. Events reference it as organizer.
type User struct {
	ID              string    `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	NormalizedEmail string    `db:"normalized_email" json:"-"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	EmailConfirmed  bool      `db:"email_confirmed" json:"email_confirmed"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// UserRole assigns a role to a user.
type UserRole struct {
	UserID string `db:"user_id" json:"user_id"`
	RoleID string `db:"role_id" json:"role_id"`
}

// Normalize produces the lookup form used for emails and role names.
func Normalize(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// IdentitySummary reports what a reconciliation pass changed.
type IdentitySummary struct {
	RolesCreated  []string `json:"roles_created"`
	UsersCreated  []string `json:"users_created"`
	RolesAssigned int      `json:"roles_assigned"`
}
