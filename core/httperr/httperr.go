/*Package httperr defines the error taxonomy of the framework and the single
writer that converts any error into the canonical JSON error body.

All error responses share the shape {code, message, errors}. In development
mode a 500 response additionally carries the internal message and a stack
trace under "dev"; outside development mode no internal detail ever leaks.
*/
package httperr

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/goccy/go-json"

	"github.com/restylabs/resty/core/logger"
)

// Error is an HTTP-taxonomy error with a machine-checkable status code, a
// human-readable message and an optional per-field detail list.
type Error struct {
	Status  int
	Message string
	Details []string

	cause error
	stack []byte
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the internal cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// BadRequest returns a 400 error for malformed input: bad bodies, unknown
// attributes, invalid query syntax.
func BadRequest(message string, details ...string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message, Details: details}
}

// Unauthorized returns a 401 error for missing or unusable credentials.
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Forbidden returns a 403 error for insufficient role or ownership.
func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// NotFound returns a 404 error for unknown versions, resources, verb
// handlers and missing rows.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Conflict returns the error for a unique-constraint violation. It surfaces
// as a 400 with a message naming the conflicting value.
func Conflict(message string, details ...string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message, Details: details}
}

// Internal wraps an unanticipated failure. The client-facing message is
// generic; the cause and a stack trace are kept for the development view.
func Internal(cause error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
		cause:   cause,
		stack:   debug.Stack(),
	}
}

type errorBody struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
	Dev     *devBody `json:"dev,omitempty"`
}

type devBody struct {
	Message string `json:"message"`
	Stack   string `json:"stack"`
}

// Write converts err into an error response and emits it. Errors that are
// not *Error are treated as internal. This is the single point that
// guarantees a response body for every failed request.
func Write(w http.ResponseWriter, r *http.Request, err error, development bool) {
	var herr *Error
	if !errors.As(err, &herr) {
		herr = Internal(err)
	}

	rlog := logger.FromContext(r.Context())
	if herr.Status >= http.StatusInternalServerError {
		rlog.WithError(err).Errorf("request failed: %s %s", r.Method, r.URL.Path)
	} else {
		rlog.Debugf("request rejected with %d: %s", herr.Status, herr.Message)
	}

	body := errorBody{
		Code:    herr.Status,
		Message: herr.Message,
		Errors:  herr.Details,
	}
	if body.Errors == nil {
		body.Errors = []string{}
	}
	if development && herr.Status >= http.StatusInternalServerError {
		dev := &devBody{Stack: string(herr.stack)}
		if herr.cause != nil {
			dev.Message = herr.cause.Error()
		}
		body.Dev = dev
	}

	data, merr := json.Marshal(body)
	if merr != nil {
		http.Error(w, herr.Message, herr.Status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(herr.Status)
	w.Write(data)
}
