package ctrl

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restylabs/resty/core/access"
	"github.com/restylabs/resty/core/httperr"
	"github.com/restylabs/resty/core/rest"
)

func newContext(method, body string, claims *access.Claims) *rest.Context {
	return &rest.Context{
		Request:  httptest.NewRequest(method, "/", strings.NewReader(body)),
		Response: httptest.NewRecorder(),
		Claims:   claims,
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var herr *httperr.Error
	require.ErrorAs(t, err, &herr)
	return herr.Status
}

func TestUsersPostRejectsID(t *testing.T) {
	id := int64(5)
	err := (&Users{}).Post(newContext(http.MethodPost, "{}", nil), &id)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestUsersPostRejectsQuery(t *testing.T) {
	ctx := newContext(http.MethodPost, "{}", nil)
	ctx.Query = map[string]string{"q": "joe"}
	err := (&Users{}).Post(ctx, nil)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestUsersPostAdminCreationGate(t *testing.T) {
	body := `{"username": "joe", "password": "hunter2", "role": "admin",
		"first_name": "Joe", "last_name": "Doe"}`

	// unauthenticated requests may not create admins
	err := (&Users{}).Post(newContext(http.MethodPost, body, nil), nil)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	// neither may normal users
	normal := &access.Claims{UserID: 1, UserRole: access.RoleNormal}
	err = (&Users{}).Post(newContext(http.MethodPost, body, normal), nil)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}

func TestUsersPostReportsBadBody(t *testing.T) {
	err := (&Users{}).Post(newContext(http.MethodPost, `{"username": "joe"}`, nil), nil)
	var herr *httperr.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusBadRequest, herr.Status)
	assert.Contains(t, herr.Details, "missing attribute 'password'")
	assert.Contains(t, herr.Details, "missing attribute 'role'")
}

func TestUsersGetRequiresAuthentication(t *testing.T) {
	err := (&Users{}).Get(newContext(http.MethodGet, "", nil), nil)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}

func TestUsersGetRejectsChain(t *testing.T) {
	ctx := newContext(http.MethodGet, "", &access.Claims{UserID: 1, UserRole: access.RoleAdmin})
	parent := int64(5)
	ctx.Chain = []rest.ChainLink{{Resource: "flats", ID: &parent}}
	err := (&Users{}).Get(ctx, nil)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestUsersGetSelfOrAdmin(t *testing.T) {
	other := int64(9)
	normal := &access.Claims{UserID: 1, UserRole: access.RoleNormal}
	err := (&Users{}).Get(newContext(http.MethodGet, "", normal), &other)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}

func TestUsersPatchSelfOrAdmin(t *testing.T) {
	other := int64(9)
	normal := &access.Claims{UserID: 1, UserRole: access.RoleNormal}
	err := (&Users{}).Patch(newContext(http.MethodPatch, "{}", normal), &other)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}

func TestUsersPatchRequiresID(t *testing.T) {
	err := (&Users{}).Patch(newContext(http.MethodPatch, "{}", nil), nil)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestUsersDeleteSelfOrAdmin(t *testing.T) {
	other := int64(9)
	err := (&Users{}).Delete(newContext(http.MethodDelete, "", nil), &other)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}

func TestFlatsPostRequiresAuthentication(t *testing.T) {
	err := (&Flats{}).Post(newContext(http.MethodPost, "{}", nil), nil)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}

func TestFlatsPostReportsBadBody(t *testing.T) {
	claims := &access.Claims{UserID: 1, UserRole: access.RoleNormal}
	err := (&Flats{}).Post(newContext(http.MethodPost, `{"max_tenants": 0, "color": "red"}`, claims), nil)

	var herr *httperr.Error
	require.ErrorAs(t, err, &herr)
	assert.ElementsMatch(t, []string{
		"missing attribute 'address'",
		"wrong value '0' for attribute 'max_tenants'",
		"no such attribute 'color'",
	}, herr.Details)
}

func TestMessageListQueryKeepsVisibilityColumns(t *testing.T) {
	normal := &access.Claims{UserID: 1, UserRole: access.RoleNormal}
	ctx := newContext(http.MethodGet, "", normal)
	ctx.Query = map[string]string{"fields": "message"}
	assert.Equal(t, "message,from_id,to_id", messageListQuery(ctx).Fields)

	// admins skip the visibility filter, their projection stays untouched
	admin := &access.Claims{UserID: 1, UserRole: access.RoleAdmin}
	ctx = newContext(http.MethodGet, "", admin)
	ctx.Query = map[string]string{"fields": "message"}
	assert.Equal(t, "message", messageListQuery(ctx).Fields)

	// no projection, nothing to widen
	ctx = newContext(http.MethodGet, "", normal)
	assert.Empty(t, messageListQuery(ctx).Fields)
}

func TestMessagesPostRequiresAuthentication(t *testing.T) {
	err := (&Messages{}).Post(newContext(http.MethodPost, "{}", nil), nil)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}

func TestTokenPostReportsBadBody(t *testing.T) {
	err := (&Token{}).Post(newContext(http.MethodPost, `{"username": "joe", "remember": true}`, nil), nil)

	var herr *httperr.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusBadRequest, herr.Status)
	assert.ElementsMatch(t, []string{
		"missing attribute 'password'",
		"no such attribute 'remember'",
	}, herr.Details)
}
