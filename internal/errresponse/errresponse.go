// Package errresponse holds the render.Renderer error payloads shared
// by every handler. All error bodies have the shape {"detail": "..."}.
package errresponse

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	Detail string `json:"detail"` // user-level message
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)

	return nil
}

// MissingField reports a required request field that was not provided.
func MissingField(field string) render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusUnprocessableEntity,
		Detail:         fmt.Sprintf("Field '%s' not provided.", field),
	}
}

// Invalid reports a malformed request body or field value.
func Invalid(detail string) render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusUnprocessableEntity,
		Detail:         detail,
	}
}

// Conflict reports a duplicate unique key (username, email, topic name,
// article title).
func Conflict(detail string) render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusConflict,
		Detail:         detail,
	}
}

// NotFound reports an absent entity with a resource-specific message.
func NotFound(detail string) render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusNotFound,
		Detail:         detail,
	}
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(detail string) render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusUnauthorized,
		Detail:         detail,
	}
}

// Forbidden reports insufficient ownership or role.
func Forbidden(detail string) render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusForbidden,
		Detail:         detail,
	}
}

// NotAcceptable reports an unservable query parameter.
func NotAcceptable(detail string) render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusNotAcceptable,
		Detail:         detail,
	}
}

// Internal surfaces an unexpected persistence error.
func Internal(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		Detail:         err.Error(),
	}
}

// ErrNotFound is the generic fallback for unresolvable lookups.
// nolint
var ErrNotFound = &ErrResponse{HTTPStatusCode: 404, Detail: "Not found."}
