package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE", "resty:resty@tcp(localhost:3306)/resty")
	t.Setenv("TOKEN_SECRET", "secret")
	t.Setenv("CLIENTS", `{"web":"s3cret","mobile":"abc"}`)
	t.Setenv("ENVIRONMENT", "development")

	service, err := Load()
	require.NoError(t, err)
	assert.True(t, service.Development())
	assert.Equal(t, "3000", service.Port)

	clients, err := service.Clients()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"web": "s3cret", "mobile": "abc"}, clients)
}

func TestLoadMissingDatabase(t *testing.T) {
	t.Setenv("DATABASE", "")
	t.Setenv("TOKEN_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a missing DATABASE")
	}
}

func TestClientsRejectsBadDocuments(t *testing.T) {
	for name, doc := range map[string]string{
		"not json":       "nope",
		"not an object":  `["web"]`,
		"empty secret":   `{"web":""}`,
		"numeric secret": `{"web":42}`,
	} {
		service := &Service{ClientsJSON: doc}
		_, err := service.Clients()
		assert.Error(t, err, name)
	}
}

func TestClientsDefaultEmpty(t *testing.T) {
	service := &Service{ClientsJSON: "{}"}
	clients, err := service.Clients()
	require.NoError(t, err)
	assert.Empty(t, clients)
}
