package user

import (
	"context"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const UserKey contextKey = "user"

// CurrentId retrieves the current user's ID from the context. Returns ErrUserNotFound if no user is present.
func CurrentId(ctx context.Context) (int, error) {
	u, err := CurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	return u.Id, nil
}

func CurrentUser(ctx context.Context) (User, error) {
	u, ok := ctx.Value(UserKey).(User)
	if !ok {
		log.Trace("user not found in context")
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}
