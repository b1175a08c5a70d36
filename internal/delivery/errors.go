package delivery

import (
	"errors"
	"fmt"
)

// Sentinel errors for the transport failure taxonomy. Adapters wrap these so
// the orchestrator and retry controller can branch with errors.Is without
// inspecting response bodies.
var (
	// ErrTransportUnreachable means a tier's endpoint could not be contacted
	// at all (network, DNS, timeout).
	ErrTransportUnreachable = errors.New("transport unreachable")

	// ErrTransportRejected means the endpoint was reachable but returned a
	// non-success status or an application-level error payload. Rejection
	// does not trigger tier fallback, only in-tier retries.
	ErrTransportRejected = errors.New("transport rejected request")

	// ErrMalformedResponse means the response body was not parseable JSON or
	// lacked the expected answer field. Retryable within the webhook tier.
	ErrMalformedResponse = errors.New("malformed transport response")
)

// UnavailableError is the terminal failure returned when the webhook tier
// exhausts its retries and simulation is disabled. It carries the last
// underlying cause.
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("delivery unavailable: %v", e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}
