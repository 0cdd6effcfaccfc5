package services

import (
	"context"
	"errors"
	"fmt"

	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/repositories"
	"todo-manager/backend/internal/utils"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type ActivityService interface {
	GetByTask(ctx context.Context, userID string, taskID uuid.UUID) ([]models.TaskActivity, error)
	GetRecent(ctx context.Context, userID string, limit int) ([]models.TaskActivity, error)
	GetAll(ctx context.Context, userID string) ([]models.TaskActivity, error)
}

type ActivityServiceImpl struct {
	repos *repositories.Repositories
}

func NewActivityService(repos *repositories.Repositories) ActivityService {
	return &ActivityServiceImpl{repos: repos}
}

// GetByTask returns the history of a task, newest first. The task may have
// been deleted; its history stays readable by the owner.
func (s *ActivityServiceImpl) GetByTask(ctx context.Context, userID string, taskID uuid.UUID) ([]models.TaskActivity, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	task, err := s.repos.Tasks.GetByID(ctx, taskID)
	switch {
	case err == nil:
		if task.UserID != userID {
			return nil, forbidden("task")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	return s.repos.Activity.ListByTask(ctx, userID, taskID)
}

func (s *ActivityServiceImpl) GetRecent(ctx context.Context, userID string, limit int) ([]models.TaskActivity, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	limit = utils.ClampLimit(limit, utils.DefaultActivityLimit, utils.MaxActivityLimit)
	return s.repos.Activity.ListRecent(ctx, userID, limit)
}

func (s *ActivityServiceImpl) GetAll(ctx context.Context, userID string) ([]models.TaskActivity, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.repos.Activity.ListByUser(ctx, userID)
}
