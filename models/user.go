package models

import (
	"time"
)

type UserRole string

const (
	UserRoleDriver UserRole = "driver"
	UserRoleOwner  UserRole = "owner"
	UserRoleAdmin  UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleDriver, UserRoleOwner, UserRoleAdmin:
		return true
	}
	return false
}

// User is an agent (driver), observer (owner) or admin. OwnerID is set only for drivers.
type User struct {
	ID             string    `db:"id"               json:"id"`
	Name           string    `db:"name"             json:"name"`
	Email          string    `db:"email"            json:"email"`
	PasswordHash   string    `db:"password_hash"    json:"-"`
	Role           UserRole  `db:"role"             json:"role"`
	OwnerID        *string   `db:"owner_id"         json:"owner_id"`
	AuthProvider   *string   `db:"auth_provider"    json:"-"`
	AuthProviderID *string   `db:"auth_provider_id" json:"-"`
	CreatedAt      time.Time `db:"created_at"       json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"       json:"updated_at"`
}
