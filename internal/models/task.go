package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted}

func (s TaskStatus) IsValid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task is a single to-do item. Order is an opaque sort key within
// (UserID, Status); it is neither dense nor unique.
type Task struct {
	ID          uuid.UUID    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      string       `json:"user_id" gorm:"not null;index:idx_tasks_user_status,priority:1;index:idx_tasks_user_updated,priority:1"`
	Title       string       `json:"title" gorm:"not null"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status" gorm:"not null;index:idx_tasks_user_status,priority:2"`
	Priority    TaskPriority `json:"priority" gorm:"not null"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Order       float64      `json:"order" gorm:"column:sort_order;not null"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"index:idx_tasks_user_updated,priority:2"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	return assignID(&t.ID)
}

func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

type TaskCounts struct {
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Total      int64 `json:"total"`
}

func assignID(id *uuid.UUID) error {
	if *id != uuid.Nil {
		return nil
	}
	newID, err := uuid.NewV4()
	if err != nil {
		return err
	}
	*id = newID
	return nil
}
