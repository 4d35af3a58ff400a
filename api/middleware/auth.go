package middleware

import (
	"net/http"
	"strings"

	"github.com/quickshop/quickshop-backend/api/responses"
	pkgauth "github.com/quickshop/quickshop-backend/pkg/auth"
	"github.com/quickshop/quickshop-backend/pkg/config"
	pkgerrors "github.com/quickshop/quickshop-backend/pkg/errors"
	"github.com/quickshop/quickshop-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
// Merchant tokens contribute a store id; storefront session tokens contribute
// a customer id plus the store the session is scoped to.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if !claims.Role.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown actor role"))
				return
			}

			ctx := WithRole(r.Context(), claims.Role.String())
			if claims.StoreID != nil {
				ctx = WithStoreID(ctx, claims.StoreID.String())
			}
			if claims.CustomerID != "" {
				ctx = WithCustomerID(ctx, claims.CustomerID)
			}

			if logg != nil {
				fields := map[string]any{"actor_role": claims.Role.String()}
				if claims.StoreID != nil {
					fields["store_id"] = claims.StoreID.String()
				}
				if claims.CustomerID != "" {
					fields["customer_id"] = claims.CustomerID
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
