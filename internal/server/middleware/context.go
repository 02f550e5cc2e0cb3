package middleware

import (
	"context"

	"github.com/gosuda/safeplate/internal/domain"
)

type contextKey string

const ContextKeyIdentity contextKey = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, id)
}

// IdentityFromContext returns the authenticated caller. ok is false when the
// request was not authenticated.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	v, ok := ctx.Value(ContextKeyIdentity).(domain.Identity)
	if !ok || !v.Valid() {
		return domain.Identity{}, false
	}
	return v, true
}
