package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	HashedPassword string    `db:"hashed_password" json:"-"` // Не отдаем хеш пароля
	FullName       *string   `db:"full_name" json:"full_name"`
	Role           string    `db:"role" json:"role"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Identity is the caller resolved from a bearer token.
// It is always built from the current user row, never from token claims.
type Identity struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName *string   `json:"full_name"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
}

// IdentityFromUser snapshots the fields of u that downstream handlers may see.
func IdentityFromUser(u *User) *Identity {
	return &Identity{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// UserUpdate is a storage-level sparse patch. Nil fields are left untouched.
type UserUpdate struct {
	FullName       *string
	HashedPassword *string
	Role           *string
	IsActive       *bool
}

// IsEmpty reports whether the patch changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.FullName == nil && u.HashedPassword == nil && u.Role == nil && u.IsActive == nil
}

// ProfileUpdate is what an owner may change about their own account.
type ProfileUpdate struct {
	FullName *string
	Password *string
}

// AdminUserUpdate is the administrative path for role and activation changes.
type AdminUserUpdate struct {
	Role     *string
	IsActive *bool
}

// AccessToken is returned by a successful login.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
