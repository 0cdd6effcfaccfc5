package services

import (
	"context"
	"errors"
	"fmt"

	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/ratelimit"
	"todo-manager/backend/internal/repositories"

	"gorm.io/gorm"
)

type PreferencesService interface {
	Get(ctx context.Context, userID string) (*models.UserPreferences, error)
	Update(ctx context.Context, userID string, input UpdatePreferencesInput) (*models.UserPreferences, error)
}

type UpdatePreferencesInput struct {
	Theme         *models.Theme     `json:"theme"`
	DefaultView   *models.View      `json:"default_view"`
	SortBy        *models.SortField `json:"sort_by"`
	SortOrder     *models.SortOrder `json:"sort_order"`
	ShowCompleted *bool             `json:"show_completed"`
	EnableAI      *bool             `json:"enable_ai"`
}

type PreferencesServiceImpl struct {
	guard
}

func NewPreferencesService(repos *repositories.Repositories, limiter ratelimit.Limiter) PreferencesService {
	return &PreferencesServiceImpl{guard: newGuard(repos, limiter)}
}

// Get returns stored preferences, or unsaved defaults when there are none.
func (s *PreferencesServiceImpl) Get(ctx context.Context, userID string) (*models.UserPreferences, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	prefs, err := s.repos.Preferences.GetByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := models.DefaultPreferences(userID)
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return prefs, nil
}

func (s *PreferencesServiceImpl) Update(ctx context.Context, userID string, input UpdatePreferencesInput) (*models.UserPreferences, error) {
	if err := s.admit(ctx, ratelimit.OpPreferencesUpdate, userID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Theme != nil {
		if !input.Theme.IsValid() {
			return nil, invalidArgument("invalid theme %q", *input.Theme)
		}
		updates["theme"] = *input.Theme
	}
	if input.DefaultView != nil {
		if !input.DefaultView.IsValid() {
			return nil, invalidArgument("invalid default view %q", *input.DefaultView)
		}
		updates["default_view"] = *input.DefaultView
	}
	if input.SortBy != nil {
		if !input.SortBy.IsValid() {
			return nil, invalidArgument("invalid sort field %q", *input.SortBy)
		}
		updates["sort_by"] = *input.SortBy
	}
	if input.SortOrder != nil {
		if !input.SortOrder.IsValid() {
			return nil, invalidArgument("invalid sort order %q", *input.SortOrder)
		}
		updates["sort_order"] = *input.SortOrder
	}
	if input.ShowCompleted != nil {
		updates["show_completed"] = *input.ShowCompleted
	}
	if input.EnableAI != nil {
		updates["enable_ai"] = *input.EnableAI
	}

	prefs, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return prefs, nil
	}

	if err := s.repos.Preferences.Update(ctx, prefs.ID, updates); err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return s.repos.Preferences.GetByUser(ctx, userID)
}

func (s *PreferencesServiceImpl) getOrCreate(ctx context.Context, userID string) (*models.UserPreferences, error) {
	prefs, err := s.repos.Preferences.GetByUser(ctx, userID)
	if err == nil {
		return prefs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	defaults := models.DefaultPreferences(userID)
	if err := s.repos.Preferences.Create(ctx, &defaults); err != nil {
		// a concurrent update may have created the row first
		if existing, getErr := s.repos.Preferences.GetByUser(ctx, userID); getErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create preferences: %w", err)
	}
	return &defaults, nil
}
