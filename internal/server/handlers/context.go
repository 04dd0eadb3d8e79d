package handlers

import "context"

// contextKey тип для ключей контекста
type contextKey string

// identityKey ключ для identity в контексте
const identityKey contextKey = "identity"

// Identity владелец запроса, извлеченный из access token
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// WithIdentity добавляет identity в контекст
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext извлекает identity из контекста
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

// GetUserID извлекает user_id из контекста
func GetUserID(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	return id.UserID, ok
}
