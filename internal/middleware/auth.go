package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	model "github.com/rishika105/CodeShield-AI/internal/models"
	"github.com/rishika105/CodeShield-AI/internal/token"
	"github.com/rishika105/CodeShield-AI/internal/utils"
)

type contextKey string

const identityContextKey = contextKey("identity")

// Auth validates the Bearer token and injects the caller's identity into
// the request context.
func Auth(tokens *token.Manager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				utils.Error(w, http.StatusUnauthorized, "not authorized, no token")
				return
			}

			claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				utils.Error(w, http.StatusUnauthorized, "not authorized, invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role is not in the allowed set. Must
// run after Auth.
func RequireRole(roles ...string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := Identity(r)
			if !ok {
				utils.Error(w, http.StatusUnauthorized, "not authorized")
				return
			}
			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.Error(w, http.StatusForbidden, "not authorized to access this route")
		})
	}
}

// Identity returns the authenticated caller from the request context.
func Identity(r *http.Request) (token.Claims, bool) {
	claims, ok := r.Context().Value(identityContextKey).(token.Claims)
	return claims, ok
}

// IsOwnerOrAdmin reports whether the caller is the user in question or an
// admin.
func IsOwnerOrAdmin(r *http.Request, userID string) bool {
	identity, ok := Identity(r)
	if !ok {
		return false
	}
	return identity.UserID == userID || identity.Role == model.RoleAdmin
}
