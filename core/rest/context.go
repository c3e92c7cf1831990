/*Package rest dispatches HTTP requests to resource controllers.

A URI below the /api mount is an API version followed by an alternating
resource-name / resource-id chain. The router resolves every resource
segment against the controller registry, hands the parent chain and the
parsed query parameters to the target controller, and invokes the method
matching the HTTP verb.
*/
package rest

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/restylabs/resty/core/access"
)

// ChainLink is one resolved parent resource in a nested URI.
type ChainLink struct {
	Resource string
	ID       *int64
}

// Context carries the per-call request state into a controller method. All
// fields are set once by the router and treated as immutable.
type Context struct {
	Request  *http.Request
	Response http.ResponseWriter
	// Query holds the parsed query parameters, nil when the request has none.
	Query map[string]string
	// Chain holds the parent resources preceding the target, nil for
	// non-GET requests and for top-level resources.
	Chain []ChainLink
	// Claims are the bearer claims of the authenticated user, nil for
	// client-authenticated requests.
	Claims *access.Claims
	// Client is the validated API client, nil for bearer requests.
	Client *access.Client
	Log    *logrus.Entry
}

// WriteJSON marshals v and emits it with the given status code.
func (c *Context) WriteJSON(status int, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.Response.Header().Set("Content-Type", "application/json")
	c.Response.WriteHeader(status)
	c.Response.Write(data)
	return nil
}

// WriteRaw emits pre-marshaled JSON with the given status code.
func (c *Context) WriteRaw(status int, data []byte) {
	c.Response.Header().Set("Content-Type", "application/json")
	c.Response.WriteHeader(status)
	c.Response.Write(data)
}

// Getter handles GET on a resource.
type Getter interface {
	Get(ctx *Context, id *int64) error
}

// Poster handles POST on a resource.
type Poster interface {
	Post(ctx *Context, id *int64) error
}

// Patcher handles PATCH on a resource.
type Patcher interface {
	Patch(ctx *Context, id *int64) error
}

// Deleter handles DELETE on a resource.
type Deleter interface {
	Delete(ctx *Context, id *int64) error
}
