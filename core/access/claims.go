/*Package access provides authentication and authorization for the
framework: bearer token issuance and validation, Basic client credentials,
and the claim helpers the controllers base their access decisions on.
*/
package access

import (
	"context"

	"github.com/golang-jwt/jwt/v4"
)

// contextKey is the type for context keys. Go linter does not like plain strings
type contextKey string

const (
	contextKeyClaims contextKey = "_claims_"
	contextKeyClient contextKey = "_client_"
)

// recognized user roles
const (
	RoleNormal = "normal"
	RoleAdmin  = "admin"
)

// Claims is the claim set embedded in a bearer token. It carries the
// authorization facts for one authenticated user.
type Claims struct {
	UserID   int64  `json:"user_id"`
	UserRole string `json:"user_role"`
	jwt.RegisteredClaims
}

// IsAdmin returns true if the claims carry the admin role. A nil receiver
// stands for an unauthenticated request and has no role.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.UserRole == RoleAdmin
}

// CanAccess implements the self-or-admin rule: the operation on a resource
// owned by ownerID is permitted for the owner themselves and for any admin.
func (c *Claims) CanAccess(ownerID int64) bool {
	if c == nil {
		return false
	}
	return c.UserID == ownerID || c.IsAdmin()
}

// ContextWithClaims returns a new context with these claims added to it.
func (c *Claims) ContextWithClaims(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKeyClaims, c)
}

// ClaimsFromContext retrieves the bearer claims from the context, or nil
// when the request was not bearer-authenticated.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, ok := ctx.Value(contextKeyClaims).(*Claims)
	if ok {
		return c
	}
	return nil
}

// ContextWithClient returns a new context with the validated API client.
func ContextWithClient(ctx context.Context, client *Client) context.Context {
	return context.WithValue(ctx, contextKeyClient, client)
}

// ClientFromContext retrieves the API client from the context, or nil.
func ClientFromContext(ctx context.Context) *Client {
	c, ok := ctx.Value(contextKeyClient).(*Client)
	if ok {
		return c
	}
	return nil
}
