package access

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, authority *TokenAuthority) *mux.Router {
	t.Helper()
	router := mux.NewRouter()
	router.Use(NewMiddleware(&MiddlewareBuilder{
		Tokens:  authority,
		Clients: map[string]string{"web": "s3cret"},
	}))
	router.HandleFunc("/probe", func(w http.ResponseWriter, r *http.Request) {
		if claims := ClaimsFromContext(r.Context()); claims != nil {
			w.Write([]byte(claims.UserRole))
			return
		}
		if client := ClientFromContext(r.Context()); client != nil {
			w.Write([]byte("client:" + client.ID))
			return
		}
		w.Write([]byte("anonymous"))
	})
	return router
}

func probe(router *mux.Router, authorization string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	return rec
}

func TestMiddlewareEmptyHeader(t *testing.T) {
	router := newTestRouter(t, NewTokenAuthority("secret", time.Hour))
	rec := probe(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty auth header")
}

func TestMiddlewareUnsupportedScheme(t *testing.T) {
	router := newTestRouter(t, NewTokenAuthority("secret", time.Hour))
	rec := probe(router, "Digest abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported auth header")
}

func TestMiddlewareBasicClient(t *testing.T) {
	router := newTestRouter(t, NewTokenAuthority("secret", time.Hour))
	rec := probe(router, "Basic "+base64.StdEncoding.EncodeToString([]byte("web:s3cret")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "client:web", rec.Body.String())
}

func TestMiddlewareBasicBadSecret(t *testing.T) {
	router := newTestRouter(t, NewTokenAuthority("secret", time.Hour))
	rec := probe(router, "Basic "+base64.StdEncoding.EncodeToString([]byte("web:nope")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareBearer(t *testing.T) {
	authority := NewTokenAuthority("secret", time.Hour)
	router := newTestRouter(t, authority)

	token, err := authority.Issue(7, RoleAdmin)
	require.NoError(t, err)

	rec := probe(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, RoleAdmin, rec.Body.String())

	// second request is served from the claims cache
	rec = probe(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareBearerExpired(t *testing.T) {
	authority := NewTokenAuthority("secret", -time.Minute)
	router := newTestRouter(t, authority)

	token, err := authority.Issue(7, RoleNormal)
	require.NoError(t, err)

	rec := probe(router, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "token expired")
}

func TestMiddlewareBearerGarbage(t *testing.T) {
	router := newTestRouter(t, NewTokenAuthority("secret", time.Hour))
	rec := probe(router, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}
