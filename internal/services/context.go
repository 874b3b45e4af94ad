package services

import (
	"context"

	"pollstream/internal/domain/user"
	"pollstream/pkg/logger"
)

type ctxKey string

const userCtxKey ctxKey = "auth_user"

// WithUserContext attaches the authenticated account to the request context,
// and its UUID to the logging context.
func WithUserContext(ctx context.Context, u user.User) context.Context {
	ctx = context.WithValue(ctx, userCtxKey, u)
	return context.WithValue(ctx, logger.UserIdKey, u.UUID.String())
}

// UserFromContext returns the authenticated account, if any.
func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userCtxKey).(user.User)
	return u, ok
}
