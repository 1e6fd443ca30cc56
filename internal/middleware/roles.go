package middleware

import (
	"net/http"
	"slices"

	"github.com/adoptly/adoptly/internal/auth"
	"github.com/adoptly/adoptly/internal/model"
)

// RequireRole returns middleware that enforces role requirements.
// Must be applied after Auth middleware.
// If multiple roles are provided, having ANY of them is sufficient.
func RequireRole(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.IdentityFromContext(r.Context())
			if identity == nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			if slices.Contains(required, identity.Role) {
				next.ServeHTTP(w, r)
				return
			}

			writeError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only routes.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}

// RequireUser is a convenience middleware for routes any authenticated
// account may use, regardless of role.
func RequireUser() func(http.Handler) http.Handler {
	return RequireRole(model.RoleUser, model.RoleAdmin)
}
