package auth

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{ name string }

var (
	tokenContextKey  = &contextKey{name: "auth_token"}
	claimsContextKey = &contextKey{name: "auth_claims"}
)

// SetToken stores the raw bearer token in the context. Downstream code needs
// the original token to forward it as a correlation token in payment
// metadata.
func SetToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// Token returns the raw bearer token from the context.
func Token(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok
}

// SetClaims stores verified claims in the context.
func SetClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the verified claims from the context.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(Claims)
	return claims, ok
}

// UserID returns the authenticated subject from the context, or empty when
// the request was not authenticated.
func UserID(ctx context.Context) string {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return ""
	}
	return claims.Subject
}
