package models

import "context"

type identityContextKey struct{}

// Identity is the resolved caller of a request: the identity provider's
// subject joined with the caller's profile.
type Identity struct {
	UserId   string
	Email    string
	Role     Role
	Currency string
}

// WithIdentity attaches the resolved caller to a context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// GetIdentity retrieves the caller from context, or nil if the request is anonymous.
func GetIdentity(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
