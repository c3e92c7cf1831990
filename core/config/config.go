// Package config decodes the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/joeshaw/envdecode"
	"github.com/xeipuuv/gojsonschema"
)

// Service holds the configuration for the REST service.
//
// use DATABASE="resty:resty@tcp(localhost:3306)/resty"
type Service struct {
	Database    string        `env:"DATABASE,required" description:"the connection string for the MySQL database"`
	TokenSecret string        `env:"TOKEN_SECRET,required" description:"the HMAC secret for bearer tokens"`
	TokenExpiry time.Duration `env:"TOKEN_EXPIRY,default=24h" description:"bearer token lifetime"`
	Environment string        `env:"ENVIRONMENT,default=production" description:"'development' enables error detail in responses"`
	Port        string        `env:"PORT,default=3000" description:"the port to listen on"`
	AMQPURL     string        `env:"AMQP_URL" description:"optional RabbitMQ URL for change notifications"`
	ClientsJSON string        `env:"CLIENTS,default={}" description:"API clients as a JSON object of id to secret"`
}

// clientsSchema constrains the CLIENTS document to a flat object of
// non-empty string secrets keyed by client id.
const clientsSchema = `{
	"$id": "clients",
	"type": "object",
	"propertyNames": { "minLength": 1 },
	"additionalProperties": { "type": "string", "minLength": 1 }
}`

// Load decodes the service configuration from the environment.
func Load() (*Service, error) {
	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		return nil, err
	}
	if _, err := service.Clients(); err != nil {
		return nil, err
	}
	return service, nil
}

// Development reports whether the service runs in development mode.
func (s *Service) Development() bool {
	return s.Environment == "development"
}

// Clients validates and parses the configured API clients.
func (s *Service) Clients() (map[string]string, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(clientsSchema))
	if err != nil {
		return nil, fmt.Errorf("cannot compile clients schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(s.ClientsJSON))
	if err != nil {
		return nil, fmt.Errorf("invalid CLIENTS document: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("invalid CLIENTS document: %v", result.Errors())
	}
	clients := map[string]string{}
	if err := json.Unmarshal([]byte(s.ClientsJSON), &clients); err != nil {
		return nil, fmt.Errorf("invalid CLIENTS document: %w", err)
	}
	return clients, nil
}
