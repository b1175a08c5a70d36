package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"

	"chatdesk/internal/delivery"
	app_errors "chatdesk/internal/errors"
	"chatdesk/internal/kv"
	"chatdesk/internal/model"
	"chatdesk/internal/repository"
)

// Deliverer is the slice of the delivery pipeline the chat service needs.
type Deliverer interface {
	Send(ctx context.Context, req *delivery.Request, tenant delivery.TenantConfig) <-chan delivery.Event
}

// ChatService owns session lifecycle and the send-message orchestration: it
// persists the user turn, runs the delivery pipeline, forwards the event
// stream, and persists the assistant turn once the stable id arrives.
type ChatService struct {
	repo    repository.Repository
	deliver Deliverer
	tenants *TenantService
	cache   kv.Store
}

// SendMessageRequest is the payload for a new message from the client.
type SendMessageRequest struct {
	SessionID     string `json:"session_id"`
	GroupID       string `json:"group_id"`
	UserID        string `json:"user_id"`
	Content       string `json:"content" validate:"required,min=1"`
	TopK          int    `json:"top_k,omitempty"`
	VectorStoreID string `json:"vector_store_id,omitempty"`
	Stream        bool   `json:"stream"`
}

// CreateSessionRequest is the payload for explicitly opening a session.
type CreateSessionRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
}

func NewChatService(repo repository.Repository, deliver Deliverer, tenants *TenantService, cache kv.Store) *ChatService {
	return &ChatService{repo: repo, deliver: deliver, tenants: tenants, cache: cache}
}

// CreateSession opens a new conversation for a tenant group.
func (s *ChatService) CreateSession(ctx context.Context, req *CreateSessionRequest) (*model.Session, error) {
	now := time.Now().UTC()
	session := &model.Session{
		ID:        uuid.NewString(),
		GroupID:   req.GroupID,
		UserID:    req.UserID,
		Title:     req.Title,
		Status:    model.SessionOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if session.Title == "" {
		session.Title = "New conversation"
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("could not create session: %w", err)
	}
	s.invalidateSessionCache(ctx, req.GroupID)
	return session, nil
}

// ListSessions returns the group's sessions, read through the key-value
// cache. Cache failures fall back to the database silently.
func (s *ChatService) ListSessions(ctx context.Context, groupID string) ([]*model.Session, error) {
	cacheKey := kv.Key("sessions", groupID)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
			var sessions []*model.Session
			if err := json.Unmarshal([]byte(raw), &sessions); err == nil {
				return sessions, nil
			}
		}
	}

	sessions, err := s.repo.GetSessions(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(sessions); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(raw)); err != nil {
				slog.Debug("Could not cache session list", "group_id", groupID, "error", err)
			}
		}
	}
	return sessions, nil
}

// GetFullSession retrieves a session's metadata and all its messages with
// their citations.
func (s *ChatService) GetFullSession(ctx context.Context, sessionID string) (*model.FullSession, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	messages, err := s.repo.GetMessagesBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("could not get messages: %w", err)
	}
	for i := range messages {
		if messages[i].Role != "assistant" {
			continue
		}
		citations, err := s.repo.GetCitationsByMessageID(ctx, messages[i].ID)
		if err != nil {
			return nil, fmt.Errorf("could not get citations: %w", err)
		}
		messages[i].Citations = citations
	}
	return &model.FullSession{Session: *session, Messages: messages}, nil
}

// UpdateSessionTitle handles the logic for manually renaming a session.
func (s *ChatService) UpdateSessionTitle(ctx context.Context, sessionID, newTitle string) error {
	if newTitle == "" {
		return fmt.Errorf("%w: title cannot be empty", app_errors.ErrValidation)
	}
	if err := s.repo.UpdateSessionTitle(ctx, sessionID, newTitle); err != nil {
		return s.mapRepoError(err)
	}
	s.invalidateSessionCacheForSession(ctx, sessionID)
	return nil
}

// CloseSession transitions an open session to closed.
func (s *ChatService) CloseSession(ctx context.Context, sessionID string) error {
	return s.setStatus(ctx, sessionID, model.SessionClosed)
}

// ReopenSession transitions a closed or archived session back to open.
func (s *ChatService) ReopenSession(ctx context.Context, sessionID string) error {
	return s.setStatus(ctx, sessionID, model.SessionOpen)
}

// ArchiveSession transitions a session to archived.
func (s *ChatService) ArchiveSession(ctx context.Context, sessionID string) error {
	return s.setStatus(ctx, sessionID, model.SessionArchived)
}

// DeleteSession removes a session and cascades to its messages and
// citations. Sessions are never hard-deleted except through this explicit
// action.
func (s *ChatService) DeleteSession(ctx context.Context, sessionID string) error {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return s.mapRepoError(err)
	}
	if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		return s.mapRepoError(err)
	}
	s.invalidateSessionCache(ctx, session.GroupID)
	return nil
}

// HandleSendMessage processes a new user message end to end: it resolves or
// creates the session, persists the user turn, runs the delivery pipeline,
// and forwards the normalized event stream to streamChan.
//
// The assistant message is persisted only after the pipeline's final event,
// under the stable id that event carries. If the stream ends in an error, no
// assistant row is written; the caller drops its placeholder.
func (s *ChatService) HandleSendMessage(ctx context.Context, req *SendMessageRequest, streamChan chan<- delivery.Event) {
	defer close(streamChan)

	session, err := s.resolveSession(ctx, req)
	if err != nil {
		s.emitError(ctx, streamChan, err)
		return
	}
	if session.Status != model.SessionOpen {
		s.emitError(ctx, streamChan, fmt.Errorf("%w: session is %s", app_errors.ErrConflict, session.Status))
		return
	}

	userMessage := &model.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      "user",
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AddMessage(ctx, userMessage); err != nil {
		s.emitError(ctx, streamChan, fmt.Errorf("could not save user message: %w", err))
		return
	}

	tenant := s.resolveTenantConfig(ctx, session.GroupID)

	deliveryReq := &delivery.Request{
		SessionID:     session.ID,
		ChatID:        shortuuid.New(),
		UserID:        req.UserID,
		GroupID:       session.GroupID,
		Content:       req.Content,
		TopK:          req.TopK,
		VectorStoreID: req.VectorStoreID,
		Stream:        req.Stream,
	}

	var fullReply strings.Builder
	var final *delivery.Event

	for event := range s.deliver.Send(ctx, deliveryReq, tenant) {
		select {
		case streamChan <- event:
		case <-ctx.Done():
			return
		}

		switch event.Kind {
		case delivery.EventDelta:
			fullReply.WriteString(event.Text)
		case delivery.EventFinal:
			ev := event
			final = &ev
		case delivery.EventError:
			slog.Warn("Delivery failed", "session_id", session.ID, "error", event.Message)
			return
		}
	}

	if final == nil {
		slog.Warn("Delivery stream ended without a terminal event", "session_id", session.ID)
		return
	}

	s.persistAssistantTurn(ctx, session, final, fullReply.String())
}

// persistAssistantTurn writes the assistant message and its citations under
// the stable id from the terminal event, then refreshes the session's cached
// last-message summary.
func (s *ChatService) persistAssistantTurn(ctx context.Context, session *model.Session, final *delivery.Event, content string) {
	assistantMessage := &model.Message{
		ID:        final.MessageID,
		SessionID: session.ID,
		Role:      "assistant",
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AddMessage(ctx, assistantMessage); err != nil {
		slog.Error("Failed to save assistant message", "session_id", session.ID, "message_id", final.MessageID, "error", err)
		return
	}
	if err := s.repo.AddCitations(ctx, final.MessageID, final.Citations); err != nil {
		slog.Error("Failed to save citations", "message_id", final.MessageID, "error", err)
	}
	if err := s.repo.UpdateSessionLastMessage(ctx, session.ID, truncate(content, 120)); err != nil {
		slog.Warn("Failed to update session summary", "session_id", session.ID, "error", err)
	}
	s.invalidateSessionCache(ctx, session.GroupID)
}

// resolveSession loads the target session, creating one on first interaction
// when the request names none.
func (s *ChatService) resolveSession(ctx context.Context, req *SendMessageRequest) (*model.Session, error) {
	if req.SessionID != "" {
		session, err := s.repo.GetSession(ctx, req.SessionID)
		if err != nil {
			return nil, s.mapRepoError(err)
		}
		return session, nil
	}
	return s.CreateSession(ctx, &CreateSessionRequest{
		GroupID: req.GroupID,
		UserID:  req.UserID,
		Title:   truncate(req.Content, 50),
	})
}

// resolveTenantConfig reads the group's delivery overrides. A missing or
// unreadable settings row means no overrides.
func (s *ChatService) resolveTenantConfig(ctx context.Context, groupID string) delivery.TenantConfig {
	if s.tenants == nil {
		return delivery.TenantConfig{}
	}
	settings, err := s.tenants.Get(ctx, groupID)
	if err != nil {
		if !errors.Is(err, app_errors.ErrNotFound) {
			slog.Warn("Could not load tenant settings, using defaults", "group_id", groupID, "error", err)
		}
		return delivery.TenantConfig{}
	}
	return delivery.TenantConfig{
		WebhookURL:        settings.WebhookURL,
		SimulationEnabled: settings.SimulationEnabled,
	}
}

func (s *ChatService) setStatus(ctx context.Context, sessionID string, status model.SessionStatus) error {
	if err := s.repo.UpdateSessionStatus(ctx, sessionID, status); err != nil {
		return s.mapRepoError(err)
	}
	s.invalidateSessionCacheForSession(ctx, sessionID)
	return nil
}

func (s *ChatService) emitError(ctx context.Context, ch chan<- delivery.Event, err error) {
	select {
	case ch <- delivery.Event{Kind: delivery.EventError, Message: err.Error()}:
	case <-ctx.Done():
	}
}

func (s *ChatService) mapRepoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return app_errors.ErrNotFound
	}
	return err
}

func (s *ChatService) invalidateSessionCache(ctx context.Context, groupID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, kv.Key("sessions", groupID)); err != nil {
		slog.Debug("Could not invalidate session cache", "group_id", groupID, "error", err)
	}
}

func (s *ChatService) invalidateSessionCacheForSession(ctx context.Context, sessionID string) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return
	}
	s.invalidateSessionCache(ctx, session.GroupID)
}

// truncate shortens a string to a specified number of runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
