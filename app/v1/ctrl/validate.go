package ctrl

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/restylabs/resty/core/httperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report violations under the wire name, not the Go field name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Violations accumulates request-body problems so that one response can
// report all of them together instead of failing on the first.
type Violations struct {
	details []string
}

func (v *Violations) Add(detail string) {
	v.details = append(v.details, detail)
}

func (v *Violations) MissingAttribute(name string) {
	v.Add(fmt.Sprintf("missing attribute '%s'", name))
}

func (v *Violations) UnknownAttribute(name string) {
	v.Add(fmt.Sprintf("no such attribute '%s'", name))
}

func (v *Violations) WrongValue(value interface{}, name string) {
	v.Add(fmt.Sprintf("wrong value '%v' for attribute '%s'", value, name))
}

// OK reports whether no violation has been recorded.
func (v *Violations) OK() bool {
	return len(v.details) == 0
}

// Err converts the accumulated violations into the error response.
func (v *Violations) Err() error {
	return httperr.BadRequest("invalid request body", v.details...)
}

// decodeBody unmarshals the request body into dst and records every
// violation: unknown attributes, missing required attributes and values
// failing the dst validation tags. Body fields are pointers so that
// absence is distinguishable from a zero value.
func decodeBody(r *http.Request, dst interface{}, v *Violations) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return httperr.BadRequest("cannot read request body")
	}

	attributes := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &attributes); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	known := knownAttributes(dst)
	for name := range attributes {
		if _, ok := known[name]; !ok {
			v.UnknownAttribute(name)
		}
	}

	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			v.Add(fmt.Sprintf("wrong value for attribute '%s'", typeErr.Field))
		} else {
			return httperr.BadRequest("invalid request body")
		}
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				v.MissingAttribute(fe.Field())
			} else {
				v.WrongValue(fe.Value(), fe.Field())
			}
		}
	}
	return nil
}

// knownAttributes collects the wire names dst can absorb, descending into
// embedded structs.
func knownAttributes(dst interface{}) map[string]struct{} {
	attributes := map[string]struct{}{}
	collectAttributes(reflect.TypeOf(dst).Elem(), attributes)
	return attributes
}

func collectAttributes(t reflect.Type, attributes map[string]struct{}) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectAttributes(field.Type, attributes)
			continue
		}
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name != "" && name != "-" {
			attributes[name] = struct{}{}
		}
	}
}
