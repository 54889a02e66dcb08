package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/Lokii-git/vrpa-manager/internal/models"
)

type ctxKey string

const claimsKey ctxKey = "auth_claims"

// Middleware rejects requests without a valid bearer token.
func (t *Tokens) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			models.WriteProblem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token", nil)
			return
		}
		claims, err := t.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			models.WriteProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// ClaimsFrom returns the validated claims stored by Middleware, or nil.
func ClaimsFrom(r *http.Request) *Claims {
	claims, _ := r.Context().Value(claimsKey).(*Claims)
	return claims
}
