package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	app_errors "chatdesk/internal/errors"
	"chatdesk/internal/model"
	"chatdesk/internal/repository"
)

// FeedbackService records user ratings on assistant messages. Feedback is
// append-only: rows are created and read, never mutated.
type FeedbackService struct {
	repo repository.Repository
}

// CreateFeedbackRequest is the payload for leaving feedback on a message.
type CreateFeedbackRequest struct {
	MessageID string `json:"message_id" validate:"required"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating" validate:"required,oneof=1 -1"`
	Note      string `json:"note" validate:"max=2000"`
}

func NewFeedbackService(repo repository.Repository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

// Create appends one feedback row for the target message.
func (s *FeedbackService) Create(ctx context.Context, req *CreateFeedbackRequest) (*model.Feedback, error) {
	if req.Rating != 1 && req.Rating != -1 {
		return nil, fmt.Errorf("%w: rating must be +1 or -1", app_errors.ErrValidation)
	}

	feedback := &model.Feedback{
		ID:        uuid.NewString(),
		MessageID: req.MessageID,
		UserID:    req.UserID,
		Rating:    req.Rating,
		Note:      req.Note,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AddFeedback(ctx, feedback); err != nil {
		return nil, fmt.Errorf("could not save feedback: %w", err)
	}
	return feedback, nil
}

// ListByMessage returns all feedback left on a message, oldest first.
func (s *FeedbackService) ListByMessage(ctx context.Context, messageID string) ([]model.Feedback, error) {
	return s.repo.GetFeedbackByMessageID(ctx, messageID)
}
