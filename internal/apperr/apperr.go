// Package apperr classifies errors from the external collaborators so
// the batch layer can decide what is retryable and what is fatal.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// APIError describes a failed call to one of the external
// collaborators (order source, carrier, fulfillment API).
type APIError struct {
	Service string // "shopify" | "carrier"
	Op      string // "list_orders", "update_tags", "tracking", ...
	Status  int    // HTTP status, 0 for transport-level failures
	Err     error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Service, e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Transient reports whether the error is worth retrying on the next
// scheduled run: transport failures, HTTP 5xx, and rate limiting.
// The engine is re-entrant and idempotent, so no in-process retry
// loop sits behind this.
func Transient(err error) bool {
	var api *APIError
	if errors.As(err, &api) {
		return api.Status == 0 || api.Status >= 500 || api.Status == 429
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Kind returns a short classification string for logs and summaries.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	var api *APIError
	if errors.As(err, &api) {
		return api.Service + "_" + api.Op
	}

	return "internal"
}
