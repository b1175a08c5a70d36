// Package delivery implements the tiered message delivery pipeline: transport
// adapters for the primary backend, the tenant webhook, and the offline
// simulator; a bounded retry controller with idempotency-key rotation; and a
// normalizer that presents every tier as one incremental event stream.
package delivery

import "chatdesk/internal/model"

// EventKind discriminates the entries of a delivery event stream.
type EventKind string

const (
	// EventDelta carries one incremental fragment of the reply text.
	EventDelta EventKind = "delta"
	// EventFinal carries the stable message id and parsed citations. It is
	// emitted exactly once, last, on success.
	EventFinal EventKind = "final"
	// EventError replaces the final event on failure. Nothing follows it.
	EventError EventKind = "error"
)

// Event is one unit of the normalized delivery stream.
type Event struct {
	Kind      EventKind        `json:"kind"`
	Text      string           `json:"text,omitempty"`
	MessageID string           `json:"message_id,omitempty"`
	Citations []model.Citation `json:"citations,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// Request describes one send attempt through the pipeline. It is ephemeral:
// nothing here is persisted, and the ChatID may be regenerated between
// webhook attempts.
type Request struct {
	SessionID string
	// ChatID is the idempotency key for the webhook tier. The retry
	// controller rotates it on timeout and duplicate-key failures.
	ChatID        string
	UserID        string
	GroupID       string
	Content       string
	TopK          int
	VectorStoreID string
	Stream        bool
}

// Reply is the single-shot response shape shared by the webhook and
// simulation tiers before the normalizer fabricates a stream from it.
type Reply struct {
	Answer    string
	MessageID string
	Citations []model.Citation
}
