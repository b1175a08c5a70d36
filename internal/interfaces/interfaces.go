package interfaces

import (
	"context"

	"chatdesk/internal/delivery"
	"chatdesk/internal/model"
	"chatdesk/internal/service"
)

// This file defines the interfaces for our core services.
// Depending on these interfaces, instead of concrete implementations, allows for
// decoupling (e.g., API layer from Service layer) and easier testing via mocking.

// ChatService defines the contract for session and message delivery logic.
type ChatService interface {
	CreateSession(ctx context.Context, req *service.CreateSessionRequest) (*model.Session, error)
	ListSessions(ctx context.Context, groupID string) ([]*model.Session, error)
	GetFullSession(ctx context.Context, sessionID string) (*model.FullSession, error)
	UpdateSessionTitle(ctx context.Context, sessionID, newTitle string) error
	CloseSession(ctx context.Context, sessionID string) error
	ReopenSession(ctx context.Context, sessionID string) error
	ArchiveSession(ctx context.Context, sessionID string) error
	DeleteSession(ctx context.Context, sessionID string) error
	HandleSendMessage(ctx context.Context, req *service.SendMessageRequest, streamChan chan<- delivery.Event)
}

// FeedbackService defines the contract for append-only message feedback.
type FeedbackService interface {
	Create(ctx context.Context, req *service.CreateFeedbackRequest) (*model.Feedback, error)
	ListByMessage(ctx context.Context, messageID string) ([]model.Feedback, error)
}

// TenantService defines the contract for per-group settings management.
type TenantService interface {
	Get(ctx context.Context, groupID string) (*model.TenantSettings, error)
	GetOrDefault(ctx context.Context, groupID string) (*model.TenantSettings, error)
	Save(ctx context.Context, settings *model.TenantSettings) error
}

// AnalyticsService defines the contract for the admin usage view.
type AnalyticsService interface {
	GroupUsage(ctx context.Context, groupID string) (*model.GroupAnalytics, error)
}
