package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"chatdesk/internal/kv"
	"chatdesk/internal/model"
)

// Simulator is the offline tier: a deterministic canned-response generator
// keyed by keyword matching on the input. It never fails; unrecognized input
// gets the catch-all phrasing. It is used only when simulation is explicitly
// enabled and the network tiers are out.
type Simulator struct {
	store kv.Store
}

// NewSimulator creates a simulator that logs simulated exchanges through the
// given store.
func NewSimulator(store kv.Store) *Simulator {
	return &Simulator{store: store}
}

const helpReply = "It sounds like you need help. Here is what I can do for you:\n" +
	"- Answer questions about your knowledge base\n" +
	"- Summarize previous conversations\n" +
	"- Route you to a human agent\n" +
	"Ask me anything, or type one of the suggested questions to get started."

// Send produces the canned reply for the request. The same input always
// yields the same reply and citations.
func (s *Simulator) Send(ctx context.Context, req *Request) (*Reply, error) {
	input := strings.ToLower(req.Content)

	var answer string
	var citations []model.Citation
	messageID := simulatedMessageID(req)

	switch {
	case strings.Contains(input, "help"):
		answer = helpReply
		citations = []model.Citation{{
			ID:         messageID + "-c0",
			SourceKind: model.SourceKnowledgeBase,
			Title:      "Getting started",
			Snippet:    "Overview of the assistant's capabilities and how to ask for help.",
		}}
	case strings.Contains(input, "hello"), strings.Contains(input, "hi "), input == "hi":
		answer = "Hello! I am the offline assistant. How can I support you today?"
	case strings.Contains(input, "price"), strings.Contains(input, "pricing"), strings.Contains(input, "cost"):
		answer = "Pricing depends on your plan. Your administrator can share the current rate card for your organization."
	case strings.Contains(input, "thank"):
		answer = "You are welcome! Let me know if there is anything else I can do."
	default:
		answer = "I could not reach the response service, so this is a simulated reply. " +
			"Please try again later, or rephrase your question and I will do my best to assist."
	}

	reply := &Reply{Answer: answer, MessageID: messageID, Citations: citations}
	s.appendToLog(ctx, req, reply)
	return reply, nil
}

// simulatedMessageID derives a stable id from the request so repeated
// simulations of the same exchange produce the same identifiers.
func simulatedMessageID(req *Request) string {
	return fmt.Sprintf("sim-%s-%s", req.SessionID, req.ChatID)
}

// appendToLog records the simulated exchange in the key-value store, which
// serves as the message log when operating offline. Failures are logged and
// otherwise ignored; the simulator itself never fails.
func (s *Simulator) appendToLog(ctx context.Context, req *Request, reply *Reply) {
	if s.store == nil {
		return
	}
	key := kv.Key("sim", "sessions", req.SessionID, "log")

	var log []simulatedEntry
	if raw, err := s.store.Get(ctx, key); err == nil {
		_ = json.Unmarshal([]byte(raw), &log)
	}
	log = append(log, simulatedEntry{
		ChatID: req.ChatID,
		Input:  req.Content,
		Answer: reply.Answer,
	})

	raw, err := json.Marshal(log)
	if err != nil {
		slog.Warn("Could not marshal simulated message log", "session_id", req.SessionID, "error", err)
		return
	}
	if err := s.store.Set(ctx, key, string(raw)); err != nil {
		slog.Warn("Could not persist simulated message log", "session_id", req.SessionID, "error", err)
	}
}

type simulatedEntry struct {
	ChatID string `json:"chat_id"`
	Input  string `json:"input"`
	Answer string `json:"answer"`
}
