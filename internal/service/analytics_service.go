package service

import (
	"context"

	"chatdesk/internal/model"
	"chatdesk/internal/repository"
)

// AnalyticsService backs the admin console's usage view with per-group
// aggregates computed by the repository.
type AnalyticsService struct {
	repo repository.Repository
}

func NewAnalyticsService(repo repository.Repository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// GroupUsage returns session, message, and feedback aggregates for a group.
func (s *AnalyticsService) GroupUsage(ctx context.Context, groupID string) (*model.GroupAnalytics, error) {
	return s.repo.GetGroupAnalytics(ctx, groupID)
}
