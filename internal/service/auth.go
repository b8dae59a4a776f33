package service

import (
	"context"

	"primetrade-server/internal/models"
)

// AuthService defines registration and login.
type AuthService interface {
	Register(ctx context.Context, email, password string, fullName *string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.AccessToken, error)
	SeedAdmin(ctx context.Context, email, password string) (*models.User, error)
}

// AccessGuard resolves bearer tokens to live identities and enforces roles.
type AccessGuard interface {
	Resolve(ctx context.Context, tokenString string) (*models.Identity, error)
	RequireRole(identity *models.Identity, role string) (*models.Identity, error)
}

// PasswordHasher is the one-way hash used for stored credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenCodec encodes and decodes bearer tokens.
type TokenCodec interface {
	Encode(claims models.TokenClaims) (string, error)
	Decode(tokenString string) (*models.TokenClaims, error)
}
