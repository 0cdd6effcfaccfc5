package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Operation string

const (
	OpTaskCreate        Operation = "task_create"
	OpTaskUpdate        Operation = "task_update"
	OpTaskDelete        Operation = "task_delete"
	OpLabelCreate       Operation = "label_create"
	OpLabelUpdate       Operation = "label_update"
	OpLabelDelete       Operation = "label_delete"
	OpLabelAssociate    Operation = "label_associate"
	OpLabelDisassociate Operation = "label_disassociate"
	OpCommentCreate     Operation = "comment_create"
	OpCommentDelete     Operation = "comment_delete"
	OpPreferencesUpdate Operation = "preferences_update"
	OpThreadCreate      Operation = "thread_create"
	OpThreadUpdate      Operation = "thread_update"
	OpThreadDelete      Operation = "thread_delete"
	OpMessageSend       Operation = "message_send"
)

// Rule is a token bucket: Rate tokens are added every Period, up to Burst.
type Rule struct {
	Rate   int
	Period time.Duration
	Burst  int
}

// Interval is the time needed to refill a single token.
func (r Rule) Interval() time.Duration {
	return r.Period / time.Duration(r.Rate)
}

var Rules = map[Operation]Rule{
	OpTaskCreate:        {Rate: 30, Period: time.Minute, Burst: 5},
	OpTaskUpdate:        {Rate: 60, Period: time.Minute, Burst: 10},
	OpTaskDelete:        {Rate: 30, Period: time.Minute, Burst: 5},
	OpLabelCreate:       {Rate: 20, Period: time.Minute, Burst: 3},
	OpLabelUpdate:       {Rate: 30, Period: time.Minute, Burst: 5},
	OpLabelDelete:       {Rate: 20, Period: time.Minute, Burst: 3},
	OpLabelAssociate:    {Rate: 50, Period: time.Minute, Burst: 10},
	OpLabelDisassociate: {Rate: 50, Period: time.Minute, Burst: 10},
	OpCommentCreate:     {Rate: 30, Period: time.Minute, Burst: 5},
	OpCommentDelete:     {Rate: 30, Period: time.Minute, Burst: 5},
	OpPreferencesUpdate: {Rate: 20, Period: time.Minute, Burst: 5},
	OpThreadCreate:      {Rate: 10, Period: time.Hour, Burst: 2},
	OpThreadUpdate:      {Rate: 30, Period: time.Minute, Burst: 5},
	OpThreadDelete:      {Rate: 20, Period: time.Minute, Burst: 3},
	OpMessageSend:       {Rate: 30, Period: time.Hour, Burst: 5},
}

func ruleFor(op Operation) (Rule, error) {
	rule, ok := Rules[op]
	if !ok {
		return Rule{}, fmt.Errorf("no rate limit rule for operation %q", op)
	}
	return rule, nil
}

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, op Operation, userID string) (Decision, error)
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Enabled         bool
	Backend         string
	CleanupInterval time.Duration
}

// New picks a limiter for cfg. The redis backend requires client.
func New(cfg Config, client *redis.Client) (Limiter, error) {
	if !cfg.Enabled {
		return NoopLimiter{}, nil
	}

	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryLimiter(cfg.CleanupInterval), nil
	case BackendRedis:
		if client == nil {
			return nil, fmt.Errorf("redis rate limit backend requires a redis client")
		}
		return NewRedisLimiter(client), nil
	default:
		return nil, fmt.Errorf("unsupported rate limit backend: %s", cfg.Backend)
	}
}

type NoopLimiter struct{}

func (NoopLimiter) Allow(ctx context.Context, op Operation, userID string) (Decision, error) {
	return Decision{Allowed: true}, nil
}

func key(op Operation, userID string) string {
	return fmt.Sprintf("ratelimit:%s:%s", op, userID)
}
