package services

import (
	"context"
	"fmt"
	"strings"

	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/ratelimit"
	"todo-manager/backend/internal/repositories"

	"github.com/gofrs/uuid"
)

// guard holds the checks shared by every service: caller identity, rate
// limiting and ownership of referenced rows.
type guard struct {
	repos   *repositories.Repositories
	limiter ratelimit.Limiter
}

func newGuard(repos *repositories.Repositories, limiter ratelimit.Limiter) guard {
	if limiter == nil {
		limiter = ratelimit.NoopLimiter{}
	}
	return guard{repos: repos, limiter: limiter}
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthenticated
	}
	return nil
}

// admit runs the first two steps of every mutation: authenticate, then take
// a token from the (op, user) bucket.
func (g guard) admit(ctx context.Context, op ratelimit.Operation, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}

	decision, err := g.limiter.Allow(ctx, op, userID)
	if err != nil {
		return fmt.Errorf("rate limiter unavailable: %w", err)
	}
	if !decision.Allowed {
		return rateLimited(decision.RetryAfter)
	}
	return nil
}

func (g guard) ownedTask(ctx context.Context, userID string, id uuid.UUID) (*models.Task, error) {
	task, err := g.repos.Tasks.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("task", err)
	}
	if task.UserID != userID {
		return nil, forbidden("task")
	}
	return task, nil
}

func (g guard) ownedLabel(ctx context.Context, userID string, id uuid.UUID) (*models.Label, error) {
	label, err := g.repos.Labels.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("label", err)
	}
	if label.UserID != userID {
		return nil, forbidden("label")
	}
	return label, nil
}

func (g guard) ownedComment(ctx context.Context, userID string, id uuid.UUID) (*models.TaskComment, error) {
	comment, err := g.repos.Comments.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("comment", err)
	}
	if comment.UserID != userID {
		return nil, forbidden("comment")
	}
	return comment, nil
}

func (g guard) ownedThread(ctx context.Context, userID string, id uuid.UUID) (*models.Thread, error) {
	thread, err := g.repos.Threads.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("thread", err)
	}
	if thread.UserID != userID {
		return nil, forbidden("thread")
	}
	return thread, nil
}

func (g guard) appendActivity(ctx context.Context, activity *models.TaskActivity) error {
	if err := g.repos.Activity.Append(ctx, activity); err != nil {
		return fmt.Errorf("failed to record task activity: %w", err)
	}
	return nil
}
