package models

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type Label struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    string    `json:"user_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	NameKey   string    `json:"-" gorm:"index"`
	Color     string    `json:"color" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *Label) BeforeCreate(tx *gorm.DB) error {
	l.NameKey = LabelNameKey(l.Name)
	return assignID(&l.ID)
}

// LabelNameKey folds a label name for uniqueness checks. The database's own
// LOWER is not used because SQLite folds ASCII only.
func LabelNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// TaskLabel links a task to a label. The (TaskID, LabelID) pair is kept
// unique by the service layer, not by the schema.
type TaskLabel struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID    uuid.UUID `json:"task_id" gorm:"type:uuid;not null;index:idx_task_labels_pair,priority:1"`
	LabelID   uuid.UUID `json:"label_id" gorm:"type:uuid;not null;index:idx_task_labels_pair,priority:2;index"`
	UserID    string    `json:"user_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (tl *TaskLabel) BeforeCreate(tx *gorm.DB) error {
	return assignID(&tl.ID)
}
