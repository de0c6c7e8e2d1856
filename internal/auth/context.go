package auth

import (
	"context"

	"spendwise/internal/core"
)

type contextKey struct{}

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFrom returns the authenticated user, if any.
func UserFrom(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(contextKey{}).(core.User)
	return u, ok && u.ID != ""
}

// UserID returns the authenticated user's id or "".
func UserID(ctx context.Context) string {
	u, _ := UserFrom(ctx)
	return u.ID
}
