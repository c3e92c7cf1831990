/*Package ctrl implements the v1 resource controllers.

Each controller is a stateless struct holding its data-access handles and
is registered with the REST router under its resource name. Access rules
follow the claims of the authenticated user: self-or-admin for accounts,
owner-or-admin for flats, and a flat relationship gate for messages.
*/
package ctrl

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/restylabs/resty/core/dal"
	"github.com/restylabs/resty/core/entity"
	"github.com/restylabs/resty/core/httperr"
	"github.com/restylabs/resty/core/rest"
)

// serializable is satisfied by every model type.
type serializable interface {
	Serialize(included []string) ([]byte, error)
}

func noID(id *int64) error {
	if id != nil {
		return httperr.BadRequest("no resource id allowed")
	}
	return nil
}

func requireID(id *int64) error {
	if id == nil {
		return httperr.BadRequest("resource id required")
	}
	return nil
}

func noChain(ctx *rest.Context) error {
	if len(ctx.Chain) > 0 {
		return httperr.BadRequest("invalid resource chain")
	}
	return nil
}

func noQuery(ctx *rest.Context) error {
	if len(ctx.Query) > 0 {
		return httperr.BadRequest("no query parameters allowed")
	}
	return nil
}

// errUnauthorized is the uniform denial; it does not reveal whether the
// resource exists.
func errUnauthorized() error {
	return httperr.Forbidden("unauthorized access")
}

func errNotFound() error {
	return httperr.NotFound("resource not found")
}

// listQuery maps the parsed query parameters onto the collection query.
func listQuery(ctx *rest.Context) dal.ListQuery {
	return dal.ListQuery{
		Search: ctx.Query["q"],
		Filter: ctx.Query["filter"],
		Fields: ctx.Query["fields"],
		Sort:   ctx.Query["sort"],
	}
}

// includedFields returns the serialization filter matching the fields
// projection, nil when no projection was requested.
func includedFields(ctx *rest.Context) []string {
	fields := ctx.Query["fields"]
	if fields == "" {
		return nil
	}
	return strings.Split(fields, ",")
}

func writeEntity(ctx *rest.Context, e serializable, included []string) error {
	data, err := e.Serialize(included)
	if err != nil {
		return err
	}
	ctx.WriteRaw(http.StatusOK, data)
	return nil
}

func writeList(ctx *rest.Context, list []entity.Entity, included []string) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := e.(serializable).Serialize(included)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	ctx.WriteRaw(http.StatusOK, buf.Bytes())
	return nil
}
