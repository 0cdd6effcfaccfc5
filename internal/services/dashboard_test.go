package services_test

import (
	"context"
	"testing"
	"time"

	"todo-manager/backend/internal/cache"
	"todo-manager/backend/internal/database"
	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/ratelimit"
	"todo-manager/backend/internal/repositories"
	"todo-manager/backend/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisSummaries(t *testing.T) (*services.SummaryCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	multiLevel := cache.NewMultiLevelCache(cache.NewRedisCache(client), &cache.CircuitBreakerConfig{
		MaxFailures:      10,
		Timeout:          time.Minute,
		HalfOpenMaxCalls: 1,
	}, time.Minute)
	return services.NewSummaryCache(multiLevel, time.Minute), mr
}

func TestDashboardSummary_RedisOutageDuringMutation(t *testing.T) {
	pool, err := database.OpenInMemory()
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	repos := repositories.New(pool.DB)
	summaries, mr := newRedisSummaries(t)
	tasks := services.NewTaskService(repos, ratelimit.NoopLimiter{}, summaries)
	dashboard := services.NewDashboardService(repos, summaries)

	summary, err := dashboard.Summary(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, summary.Tasks.Total)

	// the invalidation delete fails while redis is down
	mr.SetError("LOADING")
	_, err = tasks.Create(ctx, alice, services.CreateTaskInput{Title: "during outage", Priority: models.TaskPriorityHigh})
	require.NoError(t, err)
	mr.SetError("")

	summary, err = dashboard.Summary(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Tasks.Total)
}

func TestSummaryCache_SetAfterInvalidateIsDropped(t *testing.T) {
	ctx := context.Background()
	summaries, _ := newRedisSummaries(t)

	// a reader captured the generation, then a mutation invalidated
	generation := summaries.Generation(alice)
	summaries.Invalidate(ctx, alice)
	summaries.Set(ctx, alice, generation, &services.DashboardSummary{Labels: 7})

	_, ok := summaries.Get(ctx, alice)
	assert.False(t, ok)

	summaries.Set(ctx, alice, summaries.Generation(alice), &services.DashboardSummary{Labels: 2})
	cached, ok := summaries.Get(ctx, alice)
	require.True(t, ok)
	assert.Equal(t, int64(2), cached.Labels)
}

func TestSummaryCache_NilIsSafe(t *testing.T) {
	var summaries *services.SummaryCache
	ctx := context.Background()

	summaries.Set(ctx, alice, summaries.Generation(alice), &services.DashboardSummary{})
	summaries.Invalidate(ctx, alice)
	_, ok := summaries.Get(ctx, alice)
	assert.False(t, ok)
	assert.Nil(t, services.NewSummaryCache(nil, time.Minute))
}
