package auth

import (
	"context"
)

type claimsContextKey struct{}

// WithClaims returns a context carrying the validated claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// GetClaims extracts validated claims from the context, if present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*Claims)
	return claims, ok
}

// UserIDFromContext returns the acting user's ID. Falls back to
// AnonymousUser when no claims are present, so attribution never ends up
// empty.
func UserIDFromContext(ctx context.Context) string {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil || claims.Subject == "" {
		return AnonymousUser
	}
	return claims.Subject
}
