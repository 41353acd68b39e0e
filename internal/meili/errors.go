package meili

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error from the Meilisearch API or the transport
// underneath it.
type Kind string

const (
	// KindInvalidArgument means the engine rejected the request
	// (bad filter, unknown sort attribute, malformed hybrid params).
	KindInvalidArgument Kind = "invalid_argument"
	// KindNotFound means the addressed index, document, task or key
	// does not exist.
	KindNotFound Kind = "not_found"
	// KindUnavailable means the engine could not be reached or answered
	// with a server-side failure.
	KindUnavailable Kind = "upstream_unavailable"
	// KindTimeout means the request exceeded its deadline.
	KindTimeout Kind = "timeout"
)

// APIError is a decoded Meilisearch error response.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
	Link    string `json:"link,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("meilisearch: %s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("meilisearch: %s (%d)", e.Message, e.Status)
}

// Kind maps the HTTP status to an error kind.
func (e *APIError) Kind() Kind {
	switch e.Status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindInvalidArgument
	default:
		return KindUnavailable
	}
}

// KindOf classifies an arbitrary error returned by a client method.
// Transport failures count as upstream unavailability unless the context
// deadline was exceeded.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnavailable
}

// IsNotFound reports whether err is a Meilisearch not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsInvalidArgument reports whether the engine rejected the request.
func IsInvalidArgument(err error) bool { return KindOf(err) == KindInvalidArgument }

// IsUnavailable reports whether the engine could not be reached or failed
// server-side.
func IsUnavailable(err error) bool { return KindOf(err) == KindUnavailable }
