package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	app_errors "chatdesk/internal/errors"
	"chatdesk/internal/kv"
	"chatdesk/internal/model"
	"chatdesk/internal/repository"
)

// TenantService manages per-group settings: the UI customization fields the
// admin console edits plus the delivery overrides (webhook URL, simulation
// toggle). Reads go through the key-value cache.
type TenantService struct {
	repo  repository.Repository
	cache kv.Store
}

func NewTenantService(repo repository.Repository, cache kv.Store) *TenantService {
	return &TenantService{repo: repo, cache: cache}
}

// Get returns the group's settings, reading through the cache.
func (s *TenantService) Get(ctx context.Context, groupID string) (*model.TenantSettings, error) {
	cacheKey := kv.Key("tenant", groupID, "settings")
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
			var settings model.TenantSettings
			if err := json.Unmarshal([]byte(raw), &settings); err == nil {
				return &settings, nil
			}
		}
	}

	settings, err := s.repo.GetTenantSettings(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("settings for group %s: %w", groupID, app_errors.ErrNotFound)
		}
		return nil, err
	}

	s.cacheSettings(ctx, cacheKey, settings)
	return settings, nil
}

// GetOrDefault returns the group's settings, substituting an empty default
// row when none has been saved yet. The chat UI boots from this.
func (s *TenantService) GetOrDefault(ctx context.Context, groupID string) (*model.TenantSettings, error) {
	settings, err := s.Get(ctx, groupID)
	if err == nil {
		return settings, nil
	}
	if errors.Is(err, app_errors.ErrNotFound) {
		return &model.TenantSettings{
			GroupID:            groupID,
			SuggestedQuestions: []string{},
		}, nil
	}
	return nil, err
}

// Save upserts the group's settings and refreshes the cache.
func (s *TenantService) Save(ctx context.Context, settings *model.TenantSettings) error {
	if settings.GroupID == "" {
		return fmt.Errorf("%w: group id is required", app_errors.ErrValidation)
	}
	if settings.SuggestedQuestions == nil {
		settings.SuggestedQuestions = []string{}
	}
	if err := s.repo.SaveTenantSettings(ctx, settings); err != nil {
		return fmt.Errorf("could not save tenant settings: %w", err)
	}
	s.cacheSettings(ctx, kv.Key("tenant", settings.GroupID, "settings"), settings)
	return nil
}

func (s *TenantService) cacheSettings(ctx context.Context, key string, settings *model.TenantSettings) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw)); err != nil {
		slog.Debug("Could not cache tenant settings", "group_id", settings.GroupID, "error", err)
	}
}
