package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/FurnitureStore/internal/identity"
	"github.com/utafrali/FurnitureStore/pkg/httputil"
	"github.com/utafrali/FurnitureStore/pkg/logger"
	"github.com/utafrali/FurnitureStore/pkg/middleware"
)

// Identify resolves the caller once per request and stores the identity in
// the context. A bearer token that fails verification is rejected with 401;
// missing credentials are not an error.
func Identify(resolver *identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolver.Resolve(r)
			if err != nil {
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:      "UNAUTHORIZED",
						Message:   "invalid or expired token",
						RequestID: logger.CorrelationIDFromContext(r.Context()),
					},
				})
				return
			}

			ctx := identity.NewContext(r.Context(), id)
			middleware.AnnotateOwner(ctx, id.Kind.String(), id.OwnerKey())
			if owner := id.OwnerKey(); owner != "" {
				ctx = logger.WithOwner(ctx, owner)
				ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("owner", owner)))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
