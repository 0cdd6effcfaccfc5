package repositories

import (
	"context"

	"todo-manager/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type LabelRepository struct {
	db *gorm.DB
}

func NewLabelRepository(db *gorm.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

func (r *LabelRepository) Create(ctx context.Context, label *models.Label) error {
	return r.db.WithContext(ctx).Create(label).Error
}

func (r *LabelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Label, error) {
	var label models.Label
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

func (r *LabelRepository) ListByUser(ctx context.Context, userID string) ([]models.Label, error) {
	labels := []models.Label{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&labels).Error
	return labels, err
}

func (r *LabelRepository) ListByIDs(ctx context.Context, userID string, ids []uuid.UUID) ([]models.Label, error) {
	labels := []models.Label{}
	if len(ids) == 0 {
		return labels, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Order("name ASC").
		Find(&labels).Error
	return labels, err
}

// FindByName matches case-insensitively, Unicode included, within one
// user's labels.
func (r *LabelRepository) FindByName(ctx context.Context, userID, name string) (*models.Label, error) {
	var label models.Label
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name_key = ?", userID, models.LabelNameKey(name)).
		First(&label).Error
	if err != nil {
		return nil, err
	}
	return &label, nil
}

func (r *LabelRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if name, ok := updates["name"].(string); ok {
		updates["name_key"] = models.LabelNameKey(name)
	}
	result := r.db.WithContext(ctx).Model(&models.Label{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LabelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Label{}).Error
}

func (r *LabelRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Label{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
