package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills and takes one token atomically.
// KEYS[1] bucket key; ARGV now_ms, interval_ms, burst, ttl_ms.
// Returns {allowed, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local interval = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
  tokens = burst
  ts = now
end

if now > ts then
  tokens = math.min(burst, tokens + (now - ts) / interval)
  ts = now
end

local allowed = 0
local retry = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
else
  retry = math.ceil((1 - tokens) * interval)
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'ts', tostring(ts))
redis.call('PEXPIRE', KEYS[1], ttl)
return {allowed, retry}
`)

// RedisLimiter shares buckets between instances through redis.
type RedisLimiter struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, op Operation, userID string) (Decision, error) {
	rule, err := ruleFor(op)
	if err != nil {
		return Decision{}, err
	}

	interval := rule.Interval().Milliseconds()
	ttl := interval * int64(rule.Burst)
	if ttl < 1000 {
		ttl = 1000
	}

	res, err := tokenBucketScript.Run(ctx, l.client, []string{key(op, userID)},
		l.now().UnixMilli(), interval, rule.Burst, ttl).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("unexpected rate limit reply: %v", res)
	}

	if res[0] == 1 {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: false, RetryAfter: time.Duration(res[1]) * time.Millisecond}, nil
}
