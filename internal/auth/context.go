package auth

import (
	"context"

	"quiz-attempt-service/internal/domain"
)

type authContextKey string

const (
	principalContextKey authContextKey = "principal"
)

// WithPrincipal adds the caller to the context.
//
// Handlers read it back with PrincipalFrom and pass it explicitly to the use cases.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFrom returns the caller stored in the context.
//
// It returns the zero (anonymous) principal and false when nobody is signed in.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(domain.Principal)
	return p, ok
}
