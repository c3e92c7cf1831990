package rest

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/restylabs/resty/core/access"
	"github.com/restylabs/resty/core/httperr"
	"github.com/restylabs/resty/core/logger"
	"github.com/restylabs/resty/core/query"
)

// Router resolves URI paths to registered controllers and dispatches HTTP
// verbs to their capability methods. It implements http.Handler and is
// mounted below the /api prefix.
type Router struct {
	registry    map[string]map[string]interface{}
	development bool
}

// NewRouter creates an empty router. In development mode error responses
// carry internal detail.
func NewRouter(development bool) *Router {
	return &Router{
		registry:    make(map[string]map[string]interface{}),
		development: development,
	}
}

// Register adds a controller for a resource below a version namespace.
// Controllers are stateless; the same instance serves all requests and
// receives the per-call state as a Context argument.
func (router *Router) Register(version, resource string, controller interface{}) {
	resources, ok := router.registry[version]
	if !ok {
		resources = make(map[string]interface{})
		router.registry[version] = resources
	}
	resources[resource] = controller
}

func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := router.route(w, r); err != nil {
		var qerr *query.Error
		if errors.As(err, &qerr) {
			err = httperr.BadRequest(qerr.Message)
		}
		httperr.Write(w, r, err, router.development)
	}
}

func (router *Router) route(w http.ResponseWriter, r *http.Request) error {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api"), "/")
	segments := []string{}
	if path != "" {
		segments = strings.Split(path, "/")
	}

	if len(segments) == 0 {
		return httperr.NotFound("invalid API version ''")
	}
	version := segments[0]
	resources, ok := router.registry[version]
	if !ok {
		return httperr.NotFound("invalid API version '" + version + "'")
	}

	chain, err := resolveChain(resources, segments[1:])
	if err != nil {
		return err
	}

	ctx := &Context{
		Request:  r,
		Response: w,
		Claims:   access.ClaimsFromContext(r.Context()),
		Client:   access.ClientFromContext(r.Context()),
		Log:      logger.FromContext(r.Context()),
	}

	if len(chain) == 0 {
		// API root greeting, no controller dispatch
		return ctx.WriteJSON(http.StatusOK, map[string]string{"Hello": "World!"})
	}

	target := chain[len(chain)-1]
	// nested-resource semantics are only defined for reads
	if parents := chain[:len(chain)-1]; len(parents) > 0 && r.Method == http.MethodGet {
		ctx.Chain = parents
	}
	if q := parseQuery(r.URL.RawQuery); len(q) > 0 {
		ctx.Query = q
	}

	controller := resources[target.Resource]
	switch r.Method {
	case http.MethodGet:
		if h, ok := controller.(Getter); ok {
			return h.Get(ctx, target.ID)
		}
	case http.MethodPost:
		if h, ok := controller.(Poster); ok {
			return h.Post(ctx, target.ID)
		}
	case http.MethodPatch:
		if h, ok := controller.(Patcher); ok {
			return h.Patch(ctx, target.ID)
		}
	case http.MethodDelete:
		if h, ok := controller.(Deleter); ok {
			return h.Delete(ctx, target.ID)
		}
	}
	return httperr.NotFound("method " + strings.ToLower(r.Method) +
		" not found on resource '" + target.Resource + "'")
}

// resolveChain walks the alternating resource-name / resource-id segments
// and resolves each resource against the registry. An id segment attaches
// to the immediately preceding link; a path ending on a resource name
// leaves that link's id nil.
func resolveChain(resources map[string]interface{}, segments []string) ([]ChainLink, error) {
	var chain []ChainLink
	for i, segment := range segments {
		if i%2 == 0 {
			if _, ok := resources[segment]; !ok {
				return nil, httperr.NotFound("unknown resource '" + segment + "'")
			}
			chain = append(chain, ChainLink{Resource: segment})
		} else {
			id, err := strconv.ParseInt(segment, 10, 64)
			if err != nil {
				return nil, httperr.BadRequest("invalid resource id '" + segment + "'")
			}
			chain[len(chain)-1].ID = &id
		}
	}
	return chain, nil
}

// parseQuery splits the raw query string into a key to value mapping. A
// filter=(...) parameter has its surrounding parentheses stripped;
// malformed pairs without '=' are dropped silently.
func parseQuery(rawQuery string) map[string]string {
	queries := map[string]string{}
	if rawQuery == "" {
		return queries
	}
	for _, pair := range strings.Split(rawQuery, "&") {
		keyValue := strings.SplitN(pair, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key, value := unescape(keyValue[0]), unescape(keyValue[1])
		if key == "filter" {
			value = strings.TrimPrefix(value, "(")
			value = strings.TrimSuffix(value, ")")
		}
		queries[key] = value
	}
	return queries
}

func unescape(s string) string {
	unescaped, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return unescaped
}
