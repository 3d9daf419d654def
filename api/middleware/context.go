package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/skumawat/bidkart-backend/pkg/enums"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// Identity is the authenticated caller seeded by the Auth middleware.
type Identity struct {
	UserID   uuid.UUID
	Role     enums.Role
	VendorID *uuid.UUID
}

// WithIdentity injects the authenticated identity into the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(ctxIdentity).(Identity)
	return identity, ok
}
