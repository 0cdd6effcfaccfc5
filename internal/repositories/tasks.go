package repositories

import (
	"context"
	"time"

	"todo-manager/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByUser returns the user's tasks newest first.
func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&tasks).Error
	return tasks, err
}

// ListByUserAndStatus returns tasks in sort order. Equal order values fall
// back to creation time.
func (r *TaskRepository) ListByUserAndStatus(ctx context.Context, userID string, status models.TaskStatus) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("sort_order ASC").Order("created_at ASC").Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListByIDs(ctx context.Context, userID string, ids []uuid.UUID) ([]models.Task, error) {
	tasks := []models.Task{}
	if len(ids) == 0 {
		return tasks, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Order("sort_order ASC").Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListRecentlyUpdated(ctx context.Context, userID string, limit int) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").Order("id DESC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

// MaxOrder reports the highest order value in (userID, status); ok is false
// when there are no tasks in that column.
func (r *TaskRepository) MaxOrder(ctx context.Context, userID string, status models.TaskStatus) (max float64, ok bool, err error) {
	var result struct {
		Max *float64
	}
	err = r.db.WithContext(ctx).
		Model(&models.Task{}).
		Select("MAX(sort_order) AS max").
		Where("user_id = ? AND status = ?", userID, status).
		Scan(&result).Error
	if err != nil || result.Max == nil {
		return 0, false, err
	}
	return *result.Max, true, nil
}

// Update patches only the given columns and always refreshes updated_at.
func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{}).Error
}

func (r *TaskRepository) CountByStatus(ctx context.Context, userID string, status models.TaskStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

func (r *TaskRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
