package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

type View string

const (
	ViewList     View = "list"
	ViewBoard    View = "board"
	ViewCalendar View = "calendar"
)

func (v View) IsValid() bool {
	return v == ViewList || v == ViewBoard || v == ViewCalendar
}

type SortField string

const (
	SortByOrder     SortField = "order"
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
	SortByDueDate   SortField = "due_date"
	SortByPriority  SortField = "priority"
	SortByTitle     SortField = "title"
)

func (f SortField) IsValid() bool {
	switch f {
	case SortByOrder, SortByCreatedAt, SortByUpdatedAt, SortByDueDate, SortByPriority, SortByTitle:
		return true
	}
	return false
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

// UserPreferences is a per-user singleton. Rows are created lazily on the
// first update; reads before that see DefaultPreferences.
type UserPreferences struct {
	ID            uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID        string    `json:"user_id" gorm:"not null;uniqueIndex"`
	Theme         Theme     `json:"theme" gorm:"not null"`
	DefaultView   View      `json:"default_view" gorm:"not null"`
	SortBy        SortField `json:"sort_by" gorm:"not null"`
	SortOrder     SortOrder `json:"sort_order" gorm:"not null"`
	ShowCompleted bool      `json:"show_completed" gorm:"not null"`
	EnableAI      bool      `json:"enable_ai" gorm:"column:enable_ai;not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *UserPreferences) BeforeCreate(tx *gorm.DB) error {
	return assignID(&p.ID)
}

// DefaultPreferences returns a fresh, unsaved preferences value for userID.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:        userID,
		Theme:         ThemeSystem,
		DefaultView:   ViewList,
		SortBy:        SortByOrder,
		SortOrder:     SortAsc,
		ShowCompleted: true,
		EnableAI:      true,
	}
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}
