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

// ThreadService manages AI conversation threads. SendMessage stores the
// user's message only; no assistant reply is generated.
type ThreadService interface {
	ListThreads(ctx context.Context, userID string) ([]models.Thread, error)
	GetThread(ctx context.Context, userID string, id uuid.UUID) (*models.ThreadWithMessages, error)
	CreateThread(ctx context.Context, userID string, input CreateThreadInput) (*models.Thread, error)
	SendMessage(ctx context.Context, userID string, threadID uuid.UUID, input SendMessageInput) (*models.Message, error)
	UpdateThread(ctx context.Context, userID string, id uuid.UUID, input UpdateThreadInput) (*models.Thread, error)
	DeleteThread(ctx context.Context, userID string, id uuid.UUID) (uuid.UUID, error)
}

type CreateThreadInput struct {
	Title string `json:"title"`
}

type SendMessageInput struct {
	Content string `json:"content"`
}

type UpdateThreadInput struct {
	Title  *string              `json:"title"`
	Status *models.ThreadStatus `json:"status"`
}

type ThreadServiceImpl struct {
	guard
}

func NewThreadService(repos *repositories.Repositories, limiter ratelimit.Limiter) ThreadService {
	return &ThreadServiceImpl{guard: newGuard(repos, limiter)}
}

func (s *ThreadServiceImpl) ListThreads(ctx context.Context, userID string) ([]models.Thread, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.repos.Threads.ListByUser(ctx, userID)
}

func (s *ThreadServiceImpl) GetThread(ctx context.Context, userID string, id uuid.UUID) (*models.ThreadWithMessages, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	thread, err := s.ownedThread(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	messages, err := s.repos.Messages.ListByThread(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return &models.ThreadWithMessages{Thread: *thread, Messages: messages}, nil
}

func (s *ThreadServiceImpl) CreateThread(ctx context.Context, userID string, input CreateThreadInput) (*models.Thread, error) {
	if err := s.admit(ctx, ratelimit.OpThreadCreate, userID); err != nil {
		return nil, err
	}

	if err := validateThreadTitle(input.Title); err != nil {
		return nil, err
	}

	thread := &models.Thread{
		UserID: userID,
		Title:  strings.TrimSpace(input.Title),
		Status: models.ThreadStatusActive,
	}
	if err := s.repos.Threads.Create(ctx, thread); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	return thread, nil
}

func (s *ThreadServiceImpl) SendMessage(ctx context.Context, userID string, threadID uuid.UUID, input SendMessageInput) (*models.Message, error) {
	if err := s.admit(ctx, ratelimit.OpMessageSend, userID); err != nil {
		return nil, err
	}

	thread, err := s.ownedThread(ctx, userID, threadID)
	if err != nil {
		return nil, err
	}
	if thread.Status == models.ThreadStatusArchived {
		return nil, invalidArgument("cannot send messages to an archived thread")
	}
	if !utils.IsLengthBetween(input.Content, 1, utils.MaxMessageLength) {
		return nil, invalidArgument("message must be between 1 and %d characters", utils.MaxMessageLength)
	}

	message := &models.Message{
		ThreadID: threadID,
		UserID:   userID,
		Role:     models.MessageRoleUser,
		Content:  strings.TrimSpace(input.Content),
	}
	if err := s.repos.Messages.Append(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	if err := s.repos.Threads.Touch(ctx, threadID); err != nil {
		return nil, lookupError("thread", err)
	}
	return message, nil
}

func (s *ThreadServiceImpl) UpdateThread(ctx context.Context, userID string, id uuid.UUID, input UpdateThreadInput) (*models.Thread, error) {
	if err := s.admit(ctx, ratelimit.OpThreadUpdate, userID); err != nil {
		return nil, err
	}

	thread, err := s.ownedThread(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		if err := validateThreadTitle(*input.Title); err != nil {
			return nil, err
		}
		if title := strings.TrimSpace(*input.Title); title != thread.Title {
			updates["title"] = title
		}
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, invalidArgument("invalid thread status %q", *input.Status)
		}
		if *input.Status != thread.Status {
			updates["status"] = *input.Status
		}
	}

	if len(updates) == 0 {
		return thread, nil
	}
	if err := s.repos.Threads.Update(ctx, id, updates); err != nil {
		return nil, lookupError("thread", err)
	}
	return s.repos.Threads.GetByID(ctx, id)
}

// DeleteThread removes the messages first, then the thread.
func (s *ThreadServiceImpl) DeleteThread(ctx context.Context, userID string, id uuid.UUID) (uuid.UUID, error) {
	if err := s.admit(ctx, ratelimit.OpThreadDelete, userID); err != nil {
		return uuid.Nil, err
	}

	if _, err := s.ownedThread(ctx, userID, id); err != nil {
		return uuid.Nil, err
	}

	if err := s.repos.Messages.DeleteByThread(ctx, id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to delete thread messages: %w", err)
	}
	if err := s.repos.Threads.Delete(ctx, id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to delete thread: %w", err)
	}
	return id, nil
}

func validateThreadTitle(title string) error {
	if utils.TrimmedLength(title) > utils.MaxThreadTitleLength {
		return invalidArgument("thread title must be at most %d characters", utils.MaxThreadTitleLength)
	}
	return nil
}
