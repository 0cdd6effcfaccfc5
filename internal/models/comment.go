package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type CommentType string

const (
	CommentUserNote     CommentType = "user_note"
	CommentAISuggestion CommentType = "ai_suggestion"
	CommentAIInsight    CommentType = "ai_insight"
)

func (t CommentType) IsValid() bool {
	switch t {
	case CommentUserNote, CommentAISuggestion, CommentAIInsight:
		return true
	}
	return false
}

type TaskComment struct {
	ID        uuid.UUID   `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID    uuid.UUID   `json:"task_id" gorm:"type:uuid;not null;index"`
	UserID    string      `json:"user_id" gorm:"not null;index"`
	Content   string      `json:"content" gorm:"not null"`
	Type      CommentType `json:"type" gorm:"not null"`
	CreatedAt time.Time   `json:"created_at"`
}

func (c *TaskComment) BeforeCreate(tx *gorm.DB) error {
	return assignID(&c.ID)
}

// AllModels lists every table owned by the service, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&Task{},
		&Label{},
		&TaskLabel{},
		&TaskComment{},
		&TaskActivity{},
		&UserPreferences{},
		&Thread{},
		&Message{},
	}
}
