package repositories

import "gorm.io/gorm"

// Repositories bundles the data-access objects that share one connection.
type Repositories struct {
	Tasks       *TaskRepository
	Labels      *LabelRepository
	TaskLabels  *TaskLabelRepository
	Comments    *CommentRepository
	Activity    *ActivityRepository
	Threads     *ThreadRepository
	Messages    *MessageRepository
	Preferences *PreferencesRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Tasks:       NewTaskRepository(db),
		Labels:      NewLabelRepository(db),
		TaskLabels:  NewTaskLabelRepository(db),
		Comments:    NewCommentRepository(db),
		Activity:    NewActivityRepository(db),
		Threads:     NewThreadRepository(db),
		Messages:    NewMessageRepository(db),
		Preferences: NewPreferencesRepository(db),
	}
}
