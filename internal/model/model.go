package model

import (
	"encoding/json"
	"time"
)

// SessionStatus enumerates the lifecycle states of a conversation.
type SessionStatus string

const (
	SessionOpen     SessionStatus = "open"
	SessionClosed   SessionStatus = "closed"
	SessionArchived SessionStatus = "archived"
)

// Session stores metadata about one conversation thread within a tenant group.
type Session struct {
	ID          string        `json:"id"`
	GroupID     string        `json:"group_id"`
	UserID      string        `json:"user_id"`
	Title       string        `json:"title"`
	Status      SessionStatus `json:"status"`
	LastMessage string        `json:"last_message,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Message stores a single exchange turn in a session.
//
// A message id is stable only once it has been persisted. While an assistant
// reply is still streaming, callers see a temporary pipeline-local id that
// must never reach the repository.
type Message struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Citations []Citation      `json:"citations,omitempty"`
}

// SourceKind enumerates where a citation's backing material lives.
type SourceKind string

const (
	SourceWeb           SourceKind = "web"
	SourceDocument      SourceKind = "document"
	SourceKnowledgeBase SourceKind = "knowledge-base"
	SourceBlob          SourceKind = "blob"
)

// Citation is a structured reference backing part of an assistant reply.
// Citations are derived, not authored: they are decoded from the delimited
// title/content strings the external responder returns.
type Citation struct {
	ID         string          `json:"id"`
	MessageID  string          `json:"message_id,omitempty"`
	SourceKind SourceKind      `json:"source_kind"`
	Title      string          `json:"title"`
	Snippet    string          `json:"snippet"`
	SourceRef  string          `json:"source_ref,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// Feedback is an append-only rating a user leaves on a message.
type Feedback struct {
	ID        string    `json:"id"`
	MessageID string    `json:"message_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TenantSettings holds the per-group UI customization and delivery
// configuration rows the admin console edits.
type TenantSettings struct {
	GroupID            string   `json:"group_id"`
	Title              string   `json:"title"`
	Subtitle           string   `json:"subtitle"`
	AvatarURL          string   `json:"avatar_url"`
	SuggestedQuestions []string `json:"suggested_questions"`
	WebhookURL         string   `json:"webhook_url"`
	SimulationEnabled  bool     `json:"simulation_enabled"`
}

// FullSession includes the session metadata and all its messages.
type FullSession struct {
	Session
	Messages []Message `json:"messages"`
}

// GroupAnalytics is the usage summary the admin console renders per group.
type GroupAnalytics struct {
	GroupID           string         `json:"group_id"`
	SessionCount      int            `json:"session_count"`
	MessageCount      int            `json:"message_count"`
	MessagesByRole    map[string]int `json:"messages_by_role"`
	MessagesByDay     []DailyCount   `json:"messages_by_day"`
	FeedbackUpvotes   int            `json:"feedback_upvotes"`
	FeedbackDownvotes int            `json:"feedback_downvotes"`
}

// DailyCount is one point in a per-day usage series.
type DailyCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}
