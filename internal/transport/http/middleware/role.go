package middleware

import (
	"net/http"
)

// RequireRole returns middleware that allows access only to users carrying at
// least one of the given role tags (e.g. domain.RoleAdmin).
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			for _, allowed := range allowedRoles {
				for _, role := range claims.Roles {
					if role == allowed {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			writeJSONError(w, http.StatusForbidden, "forbidden")
		})
	}
}
