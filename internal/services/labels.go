package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/ratelimit"
	"todo-manager/backend/internal/repositories"
	"todo-manager/backend/internal/utils"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const DefaultLabelColor = "#6366f1"

type LabelService interface {
	List(ctx context.Context, userID string) ([]models.Label, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*models.Label, error)
	ListByTask(ctx context.Context, userID string, taskID uuid.UUID) ([]models.Label, error)
	Create(ctx context.Context, userID string, input CreateLabelInput) (*models.Label, error)
	Update(ctx context.Context, userID string, id uuid.UUID, input UpdateLabelInput) (*models.Label, error)
	Remove(ctx context.Context, userID string, id uuid.UUID) (uuid.UUID, error)
	AddToTask(ctx context.Context, userID string, taskID, labelID uuid.UUID) (*models.TaskLabel, error)
	RemoveFromTask(ctx context.Context, userID string, taskID, labelID uuid.UUID) error
}

type CreateLabelInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type UpdateLabelInput struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type LabelServiceImpl struct {
	guard
	summaries *SummaryCache
}

func NewLabelService(repos *repositories.Repositories, limiter ratelimit.Limiter, summaries *SummaryCache) LabelService {
	return &LabelServiceImpl{guard: newGuard(repos, limiter), summaries: summaries}
}

func (s *LabelServiceImpl) List(ctx context.Context, userID string) ([]models.Label, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.repos.Labels.ListByUser(ctx, userID)
}

func (s *LabelServiceImpl) Get(ctx context.Context, userID string, id uuid.UUID) (*models.Label, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.ownedLabel(ctx, userID, id)
}

func (s *LabelServiceImpl) ListByTask(ctx context.Context, userID string, taskID uuid.UUID) ([]models.Label, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}

	links, err := s.repos.TaskLabels.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task labels: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.LabelID)
	}
	return s.repos.Labels.ListByIDs(ctx, userID, ids)
}

func (s *LabelServiceImpl) Create(ctx context.Context, userID string, input CreateLabelInput) (*models.Label, error) {
	if err := s.admit(ctx, ratelimit.OpLabelCreate, userID); err != nil {
		return nil, err
	}

	if input.Color == "" {
		input.Color = DefaultLabelColor
	}
	if err := validateLabelName(input.Name); err != nil {
		return nil, err
	}
	if !utils.IsValidHexColor(input.Color) {
		return nil, invalidArgument("color must be a hex color like #6366f1")
	}
	if err := s.ensureUniqueName(ctx, userID, input.Name, uuid.Nil); err != nil {
		return nil, err
	}

	label := &models.Label{
		UserID: userID,
		Name:   strings.TrimSpace(input.Name),
		Color:  input.Color,
	}
	if err := s.repos.Labels.Create(ctx, label); err != nil {
		return nil, fmt.Errorf("failed to create label: %w", err)
	}

	s.summaries.Invalidate(ctx, userID)
	return label, nil
}

func (s *LabelServiceImpl) Update(ctx context.Context, userID string, id uuid.UUID, input UpdateLabelInput) (*models.Label, error) {
	if err := s.admit(ctx, ratelimit.OpLabelUpdate, userID); err != nil {
		return nil, err
	}

	label, err := s.ownedLabel(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		if err := validateLabelName(*input.Name); err != nil {
			return nil, err
		}
		if name := strings.TrimSpace(*input.Name); name != label.Name {
			if err := s.ensureUniqueName(ctx, userID, name, id); err != nil {
				return nil, err
			}
			updates["name"] = name
		}
	}
	if input.Color != nil {
		if !utils.IsValidHexColor(*input.Color) {
			return nil, invalidArgument("color must be a hex color like #6366f1")
		}
		if *input.Color != label.Color {
			updates["color"] = *input.Color
		}
	}

	if len(updates) == 0 {
		return label, nil
	}
	if err := s.repos.Labels.Update(ctx, id, updates); err != nil {
		return nil, lookupError("label", err)
	}
	return s.repos.Labels.GetByID(ctx, id)
}

// Remove deletes a label and every task association pointing at it.
func (s *LabelServiceImpl) Remove(ctx context.Context, userID string, id uuid.UUID) (uuid.UUID, error) {
	if err := s.admit(ctx, ratelimit.OpLabelDelete, userID); err != nil {
		return uuid.Nil, err
	}

	if _, err := s.ownedLabel(ctx, userID, id); err != nil {
		return uuid.Nil, err
	}

	if err := s.repos.TaskLabels.DeleteByLabel(ctx, id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to delete label associations: %w", err)
	}

	if err := s.repos.Labels.Delete(ctx, id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to delete label: %w", err)
	}

	s.summaries.Invalidate(ctx, userID)
	return id, nil
}

func (s *LabelServiceImpl) AddToTask(ctx context.Context, userID string, taskID, labelID uuid.UUID) (*models.TaskLabel, error) {
	if err := s.admit(ctx, ratelimit.OpLabelAssociate, userID); err != nil {
		return nil, err
	}

	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	if _, err := s.ownedLabel(ctx, userID, labelID); err != nil {
		return nil, err
	}

	exists, err := s.repos.TaskLabels.Exists(ctx, taskID, labelID)
	if err != nil {
		return nil, fmt.Errorf("failed to check task label: %w", err)
	}
	if exists {
		return nil, invalidArgument("label is already applied to this task")
	}

	link := &models.TaskLabel{TaskID: taskID, LabelID: labelID, UserID: userID}
	if err := s.repos.TaskLabels.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to add label to task: %w", err)
	}
	return link, nil
}

func (s *LabelServiceImpl) RemoveFromTask(ctx context.Context, userID string, taskID, labelID uuid.UUID) error {
	if err := s.admit(ctx, ratelimit.OpLabelDisassociate, userID); err != nil {
		return err
	}

	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return err
	}
	if _, err := s.ownedLabel(ctx, userID, labelID); err != nil {
		return err
	}

	link, err := s.repos.TaskLabels.Find(ctx, taskID, labelID)
	if err != nil {
		return lookupError("task label", err)
	}
	if err := s.repos.TaskLabels.Delete(ctx, link.ID); err != nil {
		return fmt.Errorf("failed to remove label from task: %w", err)
	}
	return nil
}

func (s *LabelServiceImpl) ensureUniqueName(ctx context.Context, userID, name string, self uuid.UUID) error {
	existing, err := s.repos.Labels.FindByName(ctx, userID, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check label name: %w", err)
	}
	if existing.ID != self {
		return invalidArgument("a label named %q already exists", strings.TrimSpace(name))
	}
	return nil
}

func validateLabelName(name string) error {
	if !utils.IsLengthBetween(name, 1, utils.MaxLabelNameLength) {
		return invalidArgument("label name must be between 1 and %d characters", utils.MaxLabelNameLength)
	}
	return nil
}
