package repositories

import (
	"context"
	"time"

	"todo-manager/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type PreferencesRepository struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// GetByUser returns gorm.ErrRecordNotFound when the user has never saved
// preferences.
func (r *PreferencesRepository) GetByUser(ctx context.Context, userID string) (*models.UserPreferences, error) {
	var prefs models.UserPreferences
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error; err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *PreferencesRepository) Create(ctx context.Context, prefs *models.UserPreferences) error {
	return r.db.WithContext(ctx).Create(prefs).Error
}

func (r *PreferencesRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&models.UserPreferences{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PreferencesRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserPreferences{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
