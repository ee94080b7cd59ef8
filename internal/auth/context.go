package auth

import (
	"context"

	"example.com/notes-api/internal/model"
)

type contextKey int

const userKey contextKey = iota

func WithUser(ctx context.Context, u model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user, or the zero user.
func UserFrom(ctx context.Context) model.User {
	u, _ := ctx.Value(userKey).(model.User)
	return u
}
