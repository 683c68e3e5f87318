package upstream

import (
	"errors"
	"fmt"
	"net/http"

	"camisfut-storefront/internal/domain"
)

// ErrUnexpectedShape is returned when a list endpoint answers with a body
// that is neither an array nor a known envelope.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// StatusError is a non-2xx answer from the upstream API. It unwraps to the
// domain sentinel matching its status.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
	kind   error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("upstream %s %s: status %d", e.Method, e.Path, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Unwrap() error { return e.kind }

// classify maps an HTTP status to a domain error. authed tells whether the
// request carried a bearer token; a 401 on an anonymous call means the
// credentials themselves were rejected.
func classify(status int, authed bool) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if authed {
			return domain.ErrSessionExpired
		}
		return domain.ErrInvalidCredentials
	case status == http.StatusBadRequest:
		return domain.ErrValidation
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status == http.StatusConflict:
		return domain.ErrAlreadyExists
	case status >= 500:
		return domain.ErrUpstreamUnavailable
	default:
		return domain.ErrValidation
	}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
