package repositories

import (
	"context"

	"todo-manager/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Append(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *MessageRepository) ListByThread(ctx context.Context, threadID uuid.UUID) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.db.WithContext(ctx).Where("thread_id = ?", threadID).Order("created_at ASC").Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) DeleteByThread(ctx context.Context, threadID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("thread_id = ?", threadID).Delete(&models.Message{}).Error
}

func (r *MessageRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
