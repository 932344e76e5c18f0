package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware resolves the acting user for each request.
type Middleware struct {
	validator          TokenValidator
	enableVerification bool
	logger             *zap.Logger
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(validator TokenValidator, enableVerification bool, logger *zap.Logger) *Middleware {
	return &Middleware{
		validator:          validator,
		enableVerification: enableVerification,
		logger:             logger,
	}
}

// ResolveUser validates the bearer token, if any, and puts its claims in
// the request context. With verification disabled a missing token is
// allowed and the request proceeds as the anonymous user; with it enabled
// a missing or invalid token is rejected.
func (m *Middleware) ResolveUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)

		if tokenString == "" {
			if m.enableVerification {
				m.unauthorized(w, "Authentication required")
				return
			}
			next(w, r)
			return
		}

		claims, err := m.validator.ValidateToken(tokenString)
		if err != nil {
			m.logger.Warn("Rejected bearer token",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			m.unauthorized(w, "Invalid token")
			return
		}

		next(w, r.WithContext(WithClaims(r.Context(), claims)))
	}
}

// bearerToken extracts the token from the Authorization header, or returns
// empty string.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}
