package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"todo-manager/backend/internal/cache"
	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/repositories"
	"todo-manager/backend/internal/utils"

	"github.com/gofrs/uuid"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	Summary(ctx context.Context, userID string) (*DashboardSummary, error)
	Recent(ctx context.Context, userID string) ([]models.Task, error)
	RecentActivity(ctx context.Context, userID string, limit int) ([]models.TaskActivity, error)
	Totals(ctx context.Context, userID string) (*DashboardTotals, error)
}

type DashboardSummary struct {
	Tasks  models.TaskCounts `json:"tasks"`
	Labels int64             `json:"labels"`
}

// DashboardTotals holds one row count per table owned by the user.
type DashboardTotals struct {
	Tasks       int64 `json:"tasks"`
	Labels      int64 `json:"labels"`
	TaskLabels  int64 `json:"task_labels"`
	Comments    int64 `json:"comments"`
	Activities  int64 `json:"activities"`
	Threads     int64 `json:"threads"`
	Messages    int64 `json:"messages"`
	Preferences int64 `json:"preferences"`
}

// SummaryCache stores dashboard summaries per user. A nil *SummaryCache is a
// valid cache that never hits.
//
// Keys carry a per-process epoch and a per-user generation. Invalidate bumps
// the generation, so an entry whose delete failed, or one written by a read
// that raced a mutation, is never read again and simply expires.
type SummaryCache struct {
	cache cache.Cache
	ttl   time.Duration
	epoch string

	mu          sync.Mutex
	generations map[string]uint64
}

func NewSummaryCache(c cache.Cache, ttl time.Duration) *SummaryCache {
	if c == nil {
		return nil
	}
	return &SummaryCache{
		cache:       c,
		ttl:         ttl,
		epoch:       uuid.Must(uuid.NewV4()).String()[:8],
		generations: make(map[string]uint64),
	}
}

func (c *SummaryCache) key(userID string, generation uint64) string {
	return fmt.Sprintf("dashboard:summary:%s:%s:%d", c.epoch, userID, generation)
}

// Generation returns the user's current cache generation. Callers read it
// before computing a summary and hand it back to Set.
func (c *SummaryCache) Generation(userID string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[userID]
}

func (c *SummaryCache) Get(ctx context.Context, userID string) (*DashboardSummary, bool) {
	if c == nil {
		return nil, false
	}

	var summary DashboardSummary
	if err := c.cache.Get(ctx, c.key(userID, c.Generation(userID)), &summary); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("Dashboard cache read failed for %s: %v", userID, err)
		}
		return nil, false
	}
	return &summary, true
}

// Set stores summary under generation unless the user was invalidated since.
func (c *SummaryCache) Set(ctx context.Context, userID string, generation uint64, summary *DashboardSummary) {
	if c == nil || c.Generation(userID) != generation {
		return
	}
	if err := c.cache.Set(ctx, c.key(userID, generation), summary, c.ttl); err != nil {
		log.Printf("Dashboard cache write failed for %s: %v", userID, err)
	}
}

func (c *SummaryCache) Invalidate(ctx context.Context, userID string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	previous := c.generations[userID]
	c.generations[userID] = previous + 1
	c.mu.Unlock()

	if err := c.cache.Delete(ctx, c.key(userID, previous)); err != nil {
		log.Printf("Dashboard cache cleanup failed for %s: %v", userID, err)
	}
}

type DashboardServiceImpl struct {
	repos     *repositories.Repositories
	summaries *SummaryCache
}

func NewDashboardService(repos *repositories.Repositories, summaries *SummaryCache) DashboardService {
	return &DashboardServiceImpl{repos: repos, summaries: summaries}
}

func (s *DashboardServiceImpl) Summary(ctx context.Context, userID string) (*DashboardSummary, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	generation := s.summaries.Generation(userID)
	if summary, ok := s.summaries.Get(ctx, userID); ok {
		return summary, nil
	}

	summary := &DashboardSummary{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := countTasks(gctx, s.repos.Tasks, userID)
		summary.Tasks = counts
		return err
	})
	g.Go(func() error {
		n, err := s.repos.Labels.CountByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count labels: %w", err)
		}
		summary.Labels = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.summaries.Set(ctx, userID, generation, summary)
	return summary, nil
}

func (s *DashboardServiceImpl) Recent(ctx context.Context, userID string) ([]models.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.repos.Tasks.ListRecentlyUpdated(ctx, userID, utils.DashboardRecentLimit)
}

func (s *DashboardServiceImpl) RecentActivity(ctx context.Context, userID string, limit int) ([]models.TaskActivity, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	limit = utils.ClampLimit(limit, utils.DefaultActivityLimit, utils.MaxActivityLimit)
	return s.repos.Activity.ListRecent(ctx, userID, limit)
}

// Totals counts every table for the user with one indexed query each.
func (s *DashboardServiceImpl) Totals(ctx context.Context, userID string) (*DashboardTotals, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	totals := &DashboardTotals{}
	counters := []struct {
		name  string
		count func(context.Context, string) (int64, error)
		into  *int64
	}{
		{"tasks", s.repos.Tasks.CountByUser, &totals.Tasks},
		{"labels", s.repos.Labels.CountByUser, &totals.Labels},
		{"task_labels", s.repos.TaskLabels.CountByUser, &totals.TaskLabels},
		{"comments", s.repos.Comments.CountByUser, &totals.Comments},
		{"activities", s.repos.Activity.CountByUser, &totals.Activities},
		{"threads", s.repos.Threads.CountByUser, &totals.Threads},
		{"messages", s.repos.Messages.CountByUser, &totals.Messages},
		{"preferences", s.repos.Preferences.CountByUser, &totals.Preferences},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counters {
		c := c
		g.Go(func() error {
			n, err := c.count(gctx, userID)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", c.name, err)
			}
			*c.into = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return totals, nil
}
