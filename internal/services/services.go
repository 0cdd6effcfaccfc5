package services

import (
	"todo-manager/backend/internal/ratelimit"
	"todo-manager/backend/internal/repositories"
)

// Services bundles one implementation of every endpoint group over a shared
// set of repositories, limiter and summary cache.
type Services struct {
	Tasks       TaskService
	Labels      LabelService
	Comments    CommentService
	Activity    ActivityService
	Preferences PreferencesService
	Threads     ThreadService
	Dashboard   DashboardService
}

func New(repos *repositories.Repositories, limiter ratelimit.Limiter, summaries *SummaryCache) *Services {
	return &Services{
		Tasks:       NewTaskService(repos, limiter, summaries),
		Labels:      NewLabelService(repos, limiter, summaries),
		Comments:    NewCommentService(repos, limiter),
		Activity:    NewActivityService(repos),
		Preferences: NewPreferencesService(repos, limiter),
		Threads:     NewThreadService(repos, limiter),
		Dashboard:   NewDashboardService(repos, summaries),
	}
}
