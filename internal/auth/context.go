// Package auth provides password hashing and session identity helpers.
package auth

import (
	"context"

	"github.com/quillpost/quillpost/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// userContextKey is the context key for the authenticated session user.
	userContextKey contextKey = "session_user"
)

// ContextWithUser adds the authenticated session user to the context.
func ContextWithUser(ctx context.Context, user *model.SessionUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated session user from the context.
// Returns nil if the request is unauthenticated.
func UserFromContext(ctx context.Context) *model.SessionUser {
	user, ok := ctx.Value(userContextKey).(*model.SessionUser)
	if !ok {
		return nil
	}
	return user
}
