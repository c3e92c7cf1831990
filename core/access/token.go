package access

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrTokenExpired is returned by Validate for a well-formed, correctly
// signed token whose expiration has passed.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenInvalid is returned by Validate for malformed input or a
// signature that does not verify.
var ErrTokenInvalid = errors.New("invalid token")

// TokenAuthority issues and validates signed bearer tokens. Signing is
// symmetric HS256 with a configured secret; every token carries issued-at
// and expiration timestamps next to the user claims.
type TokenAuthority struct {
	secret []byte
	expiry time.Duration
}

// NewTokenAuthority creates a token authority with the given signing
// secret and expiration offset.
func NewTokenAuthority(secret string, expiry time.Duration) *TokenAuthority {
	return &TokenAuthority{secret: []byte(secret), expiry: expiry}
}

// Issue produces a signed token embedding the user's id and role.
func (t *TokenAuthority) Issue(userID int64, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		UserRole: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Validate deserializes and verifies a token and returns its claims.
// Expiration reports ErrTokenExpired; any other failure, including an
// unexpected signing method, reports ErrTokenInvalid.
func (t *TokenAuthority) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
