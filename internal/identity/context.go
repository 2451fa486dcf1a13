package identity

import "context"

type ctxKey string

const userKey ctxKey = "slotwise.user_id"

// WithUserID stores the authenticated user id in context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// UserIDFromContext extracts the authenticated user id if present.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	val := ctx.Value(userKey)
	if val == nil {
		return 0, false
	}
	userID, ok := val.(int64)
	return userID, ok && userID > 0
}
