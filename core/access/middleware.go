package access

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/restylabs/resty/core/httperr"
	"github.com/restylabs/resty/core/logger"
)

// MiddlewareBuilder is a helper builder for the authentication middleware.
type MiddlewareBuilder struct {
	// Tokens validates bearer tokens. This is mandatory.
	Tokens *TokenAuthority
	// Clients maps configured client ids to their secrets.
	Clients map[string]string
	// Development enables verbose error bodies.
	Development bool
}

// NewMiddleware returns a middleware handler that authenticates every
// request from its Authorization header.
//
// "Basic base64(id:secret)" validates an API client; "Bearer <token>"
// validates a user token and stores its claims in the request context. An
// absent header or an unsupported scheme terminates the request with 401.
// An expired token yields 403, any other token defect 401.
func NewMiddleware(mb *MiddlewareBuilder) mux.MiddlewareFunc {
	if mb.Tokens == nil {
		panic("Tokens is missing")
	}
	claimsCache := NewClaimsCache()

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				httperr.Write(w, r, httperr.Unauthorized("empty auth header"), mb.Development)
				return
			}

			scheme, credentials := splitAuthHeader(header)
			switch scheme {
			case "basic":
				client, err := ValidateClient(mb.Clients, credentials)
				if err != nil {
					httperr.Write(w, r, httperr.Unauthorized(err.Error()), mb.Development)
					return
				}
				ctx := ContextWithClient(r.Context(), client)
				ctx, _ = logger.ContextWithLoggerIdentity(ctx, "client:"+client.ID)
				h.ServeHTTP(w, r.WithContext(ctx))

			case "bearer":
				claims := claimsCache.Read(credentials)
				if claims == nil {
					var err error
					claims, err = mb.Tokens.Validate(credentials)
					if errors.Is(err, ErrTokenExpired) {
						httperr.Write(w, r, httperr.Forbidden("token expired"), mb.Development)
						return
					}
					if err != nil {
						httperr.Write(w, r, httperr.Unauthorized("invalid token"), mb.Development)
						return
					}
					claimsCache.Write(credentials, claims)
				}
				ctx := claims.ContextWithClaims(r.Context())
				ctx, _ = logger.ContextWithLoggerIdentity(ctx, fmt.Sprintf("user:%d", claims.UserID))
				h.ServeHTTP(w, r.WithContext(ctx))

			default:
				httperr.Write(w, r, httperr.Unauthorized("unsupported auth header"), mb.Development)
			}
		})
	}
}

func splitAuthHeader(header string) (scheme, credentials string) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", header
	}
	return strings.ToLower(parts[0]), parts[1]
}
