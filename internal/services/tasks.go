package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/ratelimit"
	"todo-manager/backend/internal/repositories"
	"todo-manager/backend/internal/utils"

	"github.com/gofrs/uuid"
	"golang.org/x/sync/errgroup"
)

type TaskService interface {
	List(ctx context.Context, userID string) ([]models.Task, error)
	ListByStatus(ctx context.Context, userID string, status models.TaskStatus) ([]models.Task, error)
	ListByLabel(ctx context.Context, userID string, labelID uuid.UUID) ([]models.Task, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*models.Task, error)
	GetCounts(ctx context.Context, userID string) (models.TaskCounts, error)
	Create(ctx context.Context, userID string, input CreateTaskInput) (*models.Task, error)
	Update(ctx context.Context, userID string, id uuid.UUID, input UpdateTaskInput) (*models.Task, error)
	Reorder(ctx context.Context, userID string, id uuid.UUID, order float64) (*models.Task, error)
	Remove(ctx context.Context, userID string, id uuid.UUID) (uuid.UUID, error)
}

type CreateTaskInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
}

// UpdateTaskInput patches only the non-nil fields. ClearDueDate removes an
// existing due date.
type UpdateTaskInput struct {
	Title        *string              `json:"title"`
	Description  *string              `json:"description"`
	Status       *models.TaskStatus   `json:"status"`
	Priority     *models.TaskPriority `json:"priority"`
	DueDate      *time.Time           `json:"due_date"`
	ClearDueDate bool                 `json:"clear_due_date"`
}

type TaskServiceImpl struct {
	guard
	summaries *SummaryCache
	now       func() time.Time
}

func NewTaskService(repos *repositories.Repositories, limiter ratelimit.Limiter, summaries *SummaryCache) TaskService {
	return &TaskServiceImpl{
		guard:     newGuard(repos, limiter),
		summaries: summaries,
		now:       time.Now,
	}
}

func (s *TaskServiceImpl) List(ctx context.Context, userID string) ([]models.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.repos.Tasks.ListByUser(ctx, userID)
}

func (s *TaskServiceImpl) ListByStatus(ctx context.Context, userID string, status models.TaskStatus) ([]models.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, invalidArgument("invalid status %q", status)
	}
	return s.repos.Tasks.ListByUserAndStatus(ctx, userID, status)
}

func (s *TaskServiceImpl) ListByLabel(ctx context.Context, userID string, labelID uuid.UUID) ([]models.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.ownedLabel(ctx, userID, labelID); err != nil {
		return nil, err
	}

	links, err := s.repos.TaskLabels.ListByLabel(ctx, labelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list label tasks: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.TaskID)
	}
	return s.repos.Tasks.ListByIDs(ctx, userID, ids)
}

func (s *TaskServiceImpl) Get(ctx context.Context, userID string, id uuid.UUID) (*models.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.ownedTask(ctx, userID, id)
}

func (s *TaskServiceImpl) GetCounts(ctx context.Context, userID string) (models.TaskCounts, error) {
	if err := requireUser(userID); err != nil {
		return models.TaskCounts{}, err
	}
	return countTasks(ctx, s.repos.Tasks, userID)
}

// countTasks runs one indexed count per status concurrently.
func countTasks(ctx context.Context, tasks *repositories.TaskRepository, userID string) (models.TaskCounts, error) {
	var counts models.TaskCounts
	g, gctx := errgroup.WithContext(ctx)

	targets := map[models.TaskStatus]*int64{
		models.TaskStatusTodo:       &counts.Todo,
		models.TaskStatusInProgress: &counts.InProgress,
		models.TaskStatusCompleted:  &counts.Completed,
	}
	for status, target := range targets {
		status, target := status, target
		g.Go(func() error {
			n, err := tasks.CountByStatus(gctx, userID, status)
			if err != nil {
				return fmt.Errorf("failed to count %s tasks: %w", status, err)
			}
			*target = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return models.TaskCounts{}, err
	}
	counts.Total = counts.Todo + counts.InProgress + counts.Completed
	return counts, nil
}

func (s *TaskServiceImpl) Create(ctx context.Context, userID string, input CreateTaskInput) (*models.Task, error) {
	if err := s.admit(ctx, ratelimit.OpTaskCreate, userID); err != nil {
		return nil, err
	}

	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}
	if !input.Priority.IsValid() {
		return nil, invalidArgument("invalid priority %q", input.Priority)
	}
	if input.DueDate != nil && !utils.IsFutureDate(*input.DueDate, s.now()) {
		return nil, invalidArgument("due date must be in the future")
	}

	maxOrder, ok, err := s.repos.Tasks.MaxOrder(ctx, userID, models.TaskStatusTodo)
	if err != nil {
		return nil, fmt.Errorf("failed to read task order: %w", err)
	}
	order := 0.0
	if ok {
		order = maxOrder + 1
	}

	task := &models.Task{
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      models.TaskStatusTodo,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		Order:       order,
	}
	if err := s.repos.Tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.appendActivity(ctx, models.NewTaskActivity(userID, task.ID, models.ActivityCreated,
		models.ActivityValue{}, models.TaskSummaryValue(task))); err != nil {
		return nil, err
	}
	s.summaries.Invalidate(ctx, userID)

	return task, nil
}

func (s *TaskServiceImpl) Update(ctx context.Context, userID string, id uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	if err := s.admit(ctx, ratelimit.OpTaskUpdate, userID); err != nil {
		return nil, err
	}

	task, err := s.ownedTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	var fields []string

	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			return nil, err
		}
		if title := strings.TrimSpace(*input.Title); title != task.Title {
			updates["title"] = title
			fields = append(fields, "title")
		}
	}

	if input.Description != nil {
		if err := validateDescription(*input.Description); err != nil {
			return nil, err
		}
		if description := strings.TrimSpace(*input.Description); description != task.Description {
			updates["description"] = description
			fields = append(fields, "description")
		}
	}

	statusChanged := false
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, invalidArgument("invalid status %q", *input.Status)
		}
		if *input.Status != task.Status {
			statusChanged = true
			updates["status"] = *input.Status
			if *input.Status == models.TaskStatusCompleted {
				updates["completed_at"] = s.now()
			} else {
				updates["completed_at"] = nil
			}
		}
	}

	priorityChanged := false
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, invalidArgument("invalid priority %q", *input.Priority)
		}
		if *input.Priority != task.Priority {
			priorityChanged = true
			updates["priority"] = *input.Priority
		}
	}

	switch {
	case input.ClearDueDate:
		if task.DueDate != nil {
			updates["due_date"] = nil
			fields = append(fields, "due_date")
		}
	case input.DueDate != nil:
		if !utils.IsFutureDate(*input.DueDate, s.now()) {
			return nil, invalidArgument("due date must be in the future")
		}
		if task.DueDate == nil || !task.DueDate.Equal(*input.DueDate) {
			updates["due_date"] = *input.DueDate
			fields = append(fields, "due_date")
		}
	}

	if len(updates) == 0 {
		return task, nil
	}

	if err := s.repos.Tasks.Update(ctx, id, updates); err != nil {
		return nil, lookupError("task", err)
	}

	// one record per changed category; "updated" only when neither status
	// nor priority moved
	var activities []*models.TaskActivity
	if statusChanged {
		action := models.ActivityStatusChanged
		if *input.Status == models.TaskStatusCompleted {
			action = models.ActivityCompleted
		}
		activities = append(activities, models.NewTaskActivity(userID, id, action,
			models.StatusValue(task.Status), models.StatusValue(*input.Status)))
	}
	if priorityChanged {
		activities = append(activities, models.NewTaskActivity(userID, id, models.ActivityPriorityChanged,
			models.PriorityValue(task.Priority), models.PriorityValue(*input.Priority)))
	}
	if !statusChanged && !priorityChanged {
		activities = append(activities, models.NewTaskActivity(userID, id, models.ActivityUpdated,
			models.ActivityValue{}, models.FieldsValue(fields...)))
	}
	for _, activity := range activities {
		if err := s.appendActivity(ctx, activity); err != nil {
			return nil, err
		}
	}

	if statusChanged {
		s.summaries.Invalidate(ctx, userID)
	}

	return s.repos.Tasks.GetByID(ctx, id)
}

func (s *TaskServiceImpl) Reorder(ctx context.Context, userID string, id uuid.UUID, order float64) (*models.Task, error) {
	if err := s.admit(ctx, ratelimit.OpTaskUpdate, userID); err != nil {
		return nil, err
	}

	if _, err := s.ownedTask(ctx, userID, id); err != nil {
		return nil, err
	}
	if math.IsNaN(order) || math.IsInf(order, 0) {
		return nil, invalidArgument("order must be a finite number")
	}

	if err := s.repos.Tasks.Update(ctx, id, map[string]interface{}{"sort_order": order}); err != nil {
		return nil, lookupError("task", err)
	}
	return s.repos.Tasks.GetByID(ctx, id)
}

// Remove deletes a task with its label links and comments. Activity rows are
// kept and keep pointing at the deleted id.
func (s *TaskServiceImpl) Remove(ctx context.Context, userID string, id uuid.UUID) (uuid.UUID, error) {
	if err := s.admit(ctx, ratelimit.OpTaskDelete, userID); err != nil {
		return uuid.Nil, err
	}

	task, err := s.ownedTask(ctx, userID, id)
	if err != nil {
		return uuid.Nil, err
	}

	commentIDs, err := s.repos.Comments.ListIDsByTask(ctx, id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to list task comments: %w", err)
	}

	// siblings have no ordering dependency; every delete runs to completion
	var g errgroup.Group
	g.Go(func() error { return s.repos.TaskLabels.DeleteByTask(ctx, id) })
	for _, commentID := range commentIDs {
		commentID := commentID
		g.Go(func() error { return s.repos.Comments.Delete(ctx, commentID) })
	}
	if err := g.Wait(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to delete task dependents: %w", err)
	}

	if err := s.repos.Tasks.Delete(ctx, id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to delete task: %w", err)
	}

	if err := s.appendActivity(ctx, models.NewTaskActivity(userID, id, models.ActivityDeleted,
		models.TaskSummaryValue(task), models.ActivityValue{})); err != nil {
		return uuid.Nil, err
	}
	s.summaries.Invalidate(ctx, userID)

	return id, nil
}

func validateTitle(title string) error {
	if !utils.IsLengthBetween(title, 1, utils.MaxTaskTitleLength) {
		return invalidArgument("title must be between 1 and %d characters", utils.MaxTaskTitleLength)
	}
	return nil
}

func validateDescription(description string) error {
	if utils.TrimmedLength(description) > utils.MaxTaskDescriptionLength {
		return invalidArgument("description must be at most %d characters", utils.MaxTaskDescriptionLength)
	}
	return nil
}
