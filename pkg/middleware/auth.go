package middleware

import (
	"context"
	"net/http"

	"github.com/utafrali/FurnitureStore/pkg/httputil"
)

// RoleFunc reports the caller's role and whether the caller is authenticated.
type RoleFunc func(ctx context.Context) (role string, authenticated bool)

// RequireRole rejects unauthenticated callers with 401 and callers whose role
// is not listed with 403.
func RequireRole(roleOf RoleFunc, roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := roleOf(r.Context())
			if !ok {
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
				})
				return
			}
			if _, allowed := roleSet[role]; !allowed {
				httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "FORBIDDEN", Message: "insufficient permissions"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
