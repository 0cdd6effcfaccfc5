package services

import (
	"context"
	"fmt"
	"strings"

	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/ratelimit"
	"todo-manager/backend/internal/repositories"
	"todo-manager/backend/internal/utils"

	"github.com/gofrs/uuid"
)

type CommentService interface {
	ListByTask(ctx context.Context, userID string, taskID uuid.UUID) ([]models.TaskComment, error)
	Create(ctx context.Context, userID string, taskID uuid.UUID, input CreateCommentInput) (*models.TaskComment, error)
	Remove(ctx context.Context, userID string, id uuid.UUID) (uuid.UUID, error)
}

type CreateCommentInput struct {
	Content string             `json:"content"`
	Type    models.CommentType `json:"type"`
}

type CommentServiceImpl struct {
	guard
}

func NewCommentService(repos *repositories.Repositories, limiter ratelimit.Limiter) CommentService {
	return &CommentServiceImpl{guard: newGuard(repos, limiter)}
}

func (s *CommentServiceImpl) ListByTask(ctx context.Context, userID string, taskID uuid.UUID) ([]models.TaskComment, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.repos.Comments.ListByTask(ctx, taskID)
}

func (s *CommentServiceImpl) Create(ctx context.Context, userID string, taskID uuid.UUID, input CreateCommentInput) (*models.TaskComment, error) {
	if err := s.admit(ctx, ratelimit.OpCommentCreate, userID); err != nil {
		return nil, err
	}

	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}

	if input.Type == "" {
		input.Type = models.CommentUserNote
	}
	if !input.Type.IsValid() {
		return nil, invalidArgument("invalid comment type %q", input.Type)
	}
	if !utils.IsLengthBetween(input.Content, 1, utils.MaxCommentLength) {
		return nil, invalidArgument("comment must be between 1 and %d characters", utils.MaxCommentLength)
	}

	comment := &models.TaskComment{
		TaskID:  taskID,
		UserID:  userID,
		Content: strings.TrimSpace(input.Content),
		Type:    input.Type,
	}
	if err := s.repos.Comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

func (s *CommentServiceImpl) Remove(ctx context.Context, userID string, id uuid.UUID) (uuid.UUID, error) {
	if err := s.admit(ctx, ratelimit.OpCommentDelete, userID); err != nil {
		return uuid.Nil, err
	}

	if _, err := s.ownedComment(ctx, userID, id); err != nil {
		return uuid.Nil, err
	}
	if err := s.repos.Comments.Delete(ctx, id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to delete comment: %w", err)
	}
	return id, nil
}
