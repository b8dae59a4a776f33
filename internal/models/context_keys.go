package models

import "context"

// contextKey - приватный тип для ключей контекста, чтобы избежать коллизий.
type contextKey string

const (
	// IdentityContextKey хранит *Identity текущего пользователя в контексте запроса.
	IdentityContextKey contextKey = "identity"
	// GinIdentityKey is the gin.Context key for the same value.
	GinIdentityKey = "identity"
)

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, id)
}

// GetIdentityFromContext извлекает Identity из контекста.
func GetIdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(IdentityContextKey).(*Identity)
	return id, ok && id != nil
}
