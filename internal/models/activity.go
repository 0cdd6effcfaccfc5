package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActivityAction string

const (
	ActivityCreated         ActivityAction = "created"
	ActivityUpdated         ActivityAction = "updated"
	ActivityCompleted       ActivityAction = "completed"
	ActivityDeleted         ActivityAction = "deleted"
	ActivityStatusChanged   ActivityAction = "status_changed"
	ActivityPriorityChanged ActivityAction = "priority_changed"
)

// ActivityValue is the payload recorded on either side of an activity
// entry. Which fields are populated depends on the action:
//
//	status_changed, completed  Status
//	priority_changed           Priority
//	created, deleted           Title, Status, Priority
//	updated                    Fields
type ActivityValue struct {
	Status   TaskStatus   `json:"status,omitempty"`
	Priority TaskPriority `json:"priority,omitempty"`
	Title    string       `json:"title,omitempty"`
	Fields   []string     `json:"fields,omitempty"`
}

func (v ActivityValue) IsZero() bool {
	return v.Status == "" && v.Priority == "" && v.Title == "" && len(v.Fields) == 0
}

func StatusValue(status TaskStatus) ActivityValue {
	return ActivityValue{Status: status}
}

func PriorityValue(priority TaskPriority) ActivityValue {
	return ActivityValue{Priority: priority}
}

func TaskSummaryValue(task *Task) ActivityValue {
	return ActivityValue{Title: task.Title, Status: task.Status, Priority: task.Priority}
}

func FieldsValue(fields ...string) ActivityValue {
	return ActivityValue{Fields: fields}
}

// TaskActivity is an append-only history row. TaskID may reference a task
// that has since been deleted.
type TaskActivity struct {
	ID        uuid.UUID                         `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    string                            `json:"user_id" gorm:"not null;index:idx_activity_user_created,priority:1"`
	TaskID    uuid.UUID                         `json:"task_id" gorm:"type:uuid;not null;index"`
	Action    ActivityAction                    `json:"action" gorm:"not null"`
	OldValue  datatypes.JSONType[ActivityValue] `json:"old_value"`
	NewValue  datatypes.JSONType[ActivityValue] `json:"new_value"`
	CreatedAt time.Time                         `json:"created_at" gorm:"index:idx_activity_user_created,priority:2"`
}

func (a *TaskActivity) BeforeCreate(tx *gorm.DB) error {
	return assignID(&a.ID)
}

func NewTaskActivity(userID string, taskID uuid.UUID, action ActivityAction, oldValue, newValue ActivityValue) *TaskActivity {
	return &TaskActivity{
		UserID:   userID,
		TaskID:   taskID,
		Action:   action,
		OldValue: datatypes.NewJSONType(oldValue),
		NewValue: datatypes.NewJSONType(newValue),
	}
}

func (TaskActivity) TableName() string {
	return "task_activities"
}
