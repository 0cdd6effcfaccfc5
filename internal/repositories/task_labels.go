package repositories

import (
	"context"
	"errors"

	"todo-manager/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskLabelRepository struct {
	db *gorm.DB
}

func NewTaskLabelRepository(db *gorm.DB) *TaskLabelRepository {
	return &TaskLabelRepository{db: db}
}

func (r *TaskLabelRepository) Create(ctx context.Context, taskLabel *models.TaskLabel) error {
	return r.db.WithContext(ctx).Create(taskLabel).Error
}

func (r *TaskLabelRepository) Find(ctx context.Context, taskID, labelID uuid.UUID) (*models.TaskLabel, error) {
	var taskLabel models.TaskLabel
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND label_id = ?", taskID, labelID).
		First(&taskLabel).Error
	if err != nil {
		return nil, err
	}
	return &taskLabel, nil
}

func (r *TaskLabelRepository) Exists(ctx context.Context, taskID, labelID uuid.UUID) (bool, error) {
	_, err := r.Find(ctx, taskID, labelID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *TaskLabelRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]models.TaskLabel, error) {
	taskLabels := []models.TaskLabel{}
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("created_at ASC").Find(&taskLabels).Error
	return taskLabels, err
}

func (r *TaskLabelRepository) ListByLabel(ctx context.Context, labelID uuid.UUID) ([]models.TaskLabel, error) {
	taskLabels := []models.TaskLabel{}
	err := r.db.WithContext(ctx).Where("label_id = ?", labelID).Order("created_at ASC").Find(&taskLabels).Error
	return taskLabels, err
}

func (r *TaskLabelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.TaskLabel{}).Error
}

func (r *TaskLabelRepository) DeleteByTask(ctx context.Context, taskID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&models.TaskLabel{}).Error
}

func (r *TaskLabelRepository) DeleteByLabel(ctx context.Context, labelID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("label_id = ?", labelID).Delete(&models.TaskLabel{}).Error
}

func (r *TaskLabelRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TaskLabel{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
