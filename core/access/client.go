package access

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidClient is returned when Basic credentials do not match any
// configured API client.
var ErrInvalidClient = errors.New("invalid client credentials")

// Client is a validated API client, identified by the id/secret pair from
// the clients configuration.
type Client struct {
	ID     string
	Secret string
}

// ValidateClient checks base64(id:secret) Basic credentials against the
// configured clients and returns the matching client.
func ValidateClient(clients map[string]string, credentials string) (*Client, error) {
	decoded, err := base64.StdEncoding.DecodeString(credentials)
	if err != nil {
		return nil, ErrInvalidClient
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidClient
	}
	id, secret := parts[0], parts[1]

	configured, ok := clients[id]
	if !ok || subtle.ConstantTimeCompare([]byte(configured), []byte(secret)) != 1 {
		return nil, ErrInvalidClient
	}
	return &Client{ID: id, Secret: secret}, nil
}
