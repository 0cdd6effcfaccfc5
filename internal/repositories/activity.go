package repositories

import (
	"context"

	"todo-manager/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// ActivityRepository is append-only: activity rows are never updated and
// outlive the tasks they describe.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Append(ctx context.Context, activity *models.TaskActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *ActivityRepository) ListByTask(ctx context.Context, userID string, taskID uuid.UUID) ([]models.TaskActivity, error) {
	activities := []models.TaskActivity{}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Order("created_at DESC").
		Find(&activities).Error
	return activities, err
}

func (r *ActivityRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.TaskActivity, error) {
	activities := []models.TaskActivity{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID string) ([]models.TaskActivity, error) {
	activities := []models.TaskActivity{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&activities).Error
	return activities, err
}

func (r *ActivityRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TaskActivity{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
