package delivery

import (
	"context"
	"errors"
	"net"
	"strings"
)

// FailureClass categorizes a webhook-tier failure for retry decisions and for
// the prefix attached to the final surfaced error.
type FailureClass int

const (
	ClassUnclassified FailureClass = iota
	ClassEmptyResponse
	ClassTimeout
	ClassNetwork
	ClassConnectionReset
	ClassDuplicate
)

// String returns the prefix used when assembling the final error message.
func (c FailureClass) String() string {
	switch c {
	case ClassEmptyResponse:
		return "empty-response"
	case ClassTimeout:
		return "timeout"
	case ClassNetwork:
		return "network"
	case ClassConnectionReset:
		return "connection-reset"
	case ClassDuplicate:
		return "duplicate"
	default:
		return "unclassified"
	}
}

// RotatesChatID reports whether the next attempt must use a fresh
// idempotency key. A timeout may mean the prior request was received and
// partially processed server-side, so resubmitting the same id risks a false
// "already exists" response; a duplicate failure means the id has already
// collided. Both rotate. Every other class reuses the id.
func (c FailureClass) RotatesChatID() bool {
	return c == ClassTimeout || c == ClassDuplicate
}

// Classify inspects a failure and assigns it a class. Structured checks
// (context deadline, net.Error) run first; the rest falls back to substring
// matching on the error text, because the webhook endpoint returns
// unstructured text on failure.
func Classify(err error) FailureClass {
	if err == nil {
		return ClassUnclassified
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "duplicate", "unique constraint", "uniqueness", "already exists"):
		return ClassDuplicate
	case containsAny(msg, "timeout", "timed out", "deadline exceeded", "aborted", "abort"):
		return ClassTimeout
	case containsAny(msg, "connection reset", "broken pipe", "econnreset"):
		return ClassConnectionReset
	case containsAny(msg, "empty response", "empty body", "no response body"):
		return ClassEmptyResponse
	case containsAny(msg, "no such host", "connection refused", "network", "dns", "unreachable"):
		return ClassNetwork
	default:
		return ClassUnclassified
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
