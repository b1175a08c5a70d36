package repository

import (
	"context"

	"chatdesk/internal/model"
)

// Repository defines the interface for data storage operations.
// This interface makes it easy to switch database implementations.
type Repository interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	GetSessions(ctx context.Context, groupID string) ([]*model.Session, error)
	UpdateSessionTitle(ctx context.Context, sessionID, newTitle string) error
	UpdateSessionStatus(ctx context.Context, sessionID string, status model.SessionStatus) error
	UpdateSessionLastMessage(ctx context.Context, sessionID, summary string) error
	DeleteSession(ctx context.Context, sessionID string) error

	AddMessage(ctx context.Context, message *model.Message) error
	GetMessagesBySessionID(ctx context.Context, sessionID string) ([]model.Message, error)

	AddCitations(ctx context.Context, messageID string, citations []model.Citation) error
	GetCitationsByMessageID(ctx context.Context, messageID string) ([]model.Citation, error)

	AddFeedback(ctx context.Context, feedback *model.Feedback) error
	GetFeedbackByMessageID(ctx context.Context, messageID string) ([]model.Feedback, error)

	GetTenantSettings(ctx context.Context, groupID string) (*model.TenantSettings, error)
	SaveTenantSettings(ctx context.Context, settings *model.TenantSettings) error

	GetGroupAnalytics(ctx context.Context, groupID string) (*model.GroupAnalytics, error)
}
