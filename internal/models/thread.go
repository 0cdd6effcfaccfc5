package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type ThreadStatus string

const (
	ThreadStatusActive   ThreadStatus = "active"
	ThreadStatusArchived ThreadStatus = "archived"
)

func (s ThreadStatus) IsValid() bool {
	return s == ThreadStatusActive || s == ThreadStatusArchived
}

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

func (r MessageRole) IsValid() bool {
	return r == MessageRoleUser || r == MessageRoleAssistant
}

type Thread struct {
	ID        uuid.UUID    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    string       `json:"user_id" gorm:"not null;index"`
	Title     string       `json:"title,omitempty"`
	Status    ThreadStatus `json:"status" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (t *Thread) BeforeCreate(tx *gorm.DB) error {
	return assignID(&t.ID)
}

// Message is append-only; a thread's messages are read in CreatedAt order.
type Message struct {
	ID        uuid.UUID   `json:"id" gorm:"primaryKey;type:uuid"`
	ThreadID  uuid.UUID   `json:"thread_id" gorm:"type:uuid;not null;index"`
	UserID    string      `json:"user_id" gorm:"not null;index"`
	Role      MessageRole `json:"role" gorm:"not null"`
	Content   string      `json:"content" gorm:"not null"`
	CreatedAt time.Time   `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	return assignID(&m.ID)
}

type ThreadWithMessages struct {
	Thread
	Messages []Message `json:"messages"`
}
