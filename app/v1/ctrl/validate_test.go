package ctrl

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeUserBody(t *testing.T, body string) (*createUserBody, *Violations) {
	t.Helper()
	r := httptest.NewRequest("POST", "/", strings.NewReader(body))
	violations := &Violations{}
	dst := &createUserBody{}
	require.NoError(t, decodeBody(r, dst, violations))
	return dst, violations
}

func TestDecodeBodyComplete(t *testing.T) {
	dst, violations := decodeUserBody(t, `{
		"username": "joe", "password": "hunter2", "role": "normal",
		"first_name": "Joe", "last_name": "Doe"
	}`)

	assert.True(t, violations.OK())
	assert.Equal(t, "joe", *dst.Username)
	assert.Nil(t, dst.MiddleName)
}

// every problem of the body is reported at once, not just the first
func TestDecodeBodyAccumulates(t *testing.T) {
	_, violations := decodeUserBody(t, `{"username": "joe", "nickname": "jj"}`)

	require.False(t, violations.OK())
	assert.ElementsMatch(t, []string{
		"no such attribute 'nickname'",
		"missing attribute 'password'",
		"missing attribute 'role'",
		"missing attribute 'first_name'",
		"missing attribute 'last_name'",
	}, violations.details)
}

func TestDecodeBodyWrongValue(t *testing.T) {
	_, violations := decodeUserBody(t, `{
		"username": "joe", "password": "hunter2", "role": "manager",
		"first_name": "Joe", "last_name": "Doe"
	}`)

	require.False(t, violations.OK())
	assert.Contains(t, violations.details, "wrong value 'manager' for attribute 'role'")
}

func TestDecodeBodyEmbeddedAttributesKnown(t *testing.T) {
	r := httptest.NewRequest("PATCH", "/", strings.NewReader(`{
		"username": "joe", "password": "hunter2", "role": "normal",
		"first_name": "Joe", "last_name": "Doe", "lives_flat_id": 3
	}`))
	violations := &Violations{}
	dst := &updateUserBody{}
	require.NoError(t, decodeBody(r, dst, violations))

	assert.True(t, violations.OK(), "%v", violations.details)
	require.NotNil(t, dst.LivesFlatID)
	assert.Equal(t, int64(3), *dst.LivesFlatID)
}

func TestDecodeBodyNotJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader("not json"))
	err := decodeBody(r, &createUserBody{}, &Violations{})
	if err == nil {
		t.Fatal("expected an error for a malformed body")
	}
}

func TestViolationsErr(t *testing.T) {
	violations := &Violations{}
	violations.MissingAttribute("address")
	violations.WrongValue(0, "max_tenants")

	err := violations.Err()
	assert.EqualError(t, err, "invalid request body")
}
