package adapter

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pedro-fs-garcia/filmmash-api/internal/config"
	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
)

// tokenBucketScript refills the bucket stored at KEYS[1] by whole intervals,
// then takes one token if any is left. It returns {allowed, tokens, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + (intervals * refill_tokens))
		last_refill = last_refill + (intervals * interval_ms)
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	local until_next = interval_ms - (now_ms - last_refill)
	if until_next < 0 then until_next = 0 end
	retry_after_ms = until_next
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

const (
	defaultRateLimitPrefix = "filmmash:ratelimit"
	minBucketTTL           = time.Minute
)

type redisRateLimiter struct {
	client *redis.Client
	cfg    config.RateLimit
	ttl    time.Duration
	now    func() time.Time
	logger *logger.Logger
}

// NewRateLimiter connects to Redis and returns a token bucket limiter.
// An empty address, a non-positive capacity or an unreachable server yields
// a limiter that allows every request.
func NewRateLimiter(ctx context.Context, redisCfg config.Redis, limitCfg config.RateLimit, log *logger.Logger) RateLimiter {
	if redisCfg.Address == "" || limitCfg.Capacity <= 0 {
		log.Info().Str("func", "NewRateLimiter").Msg("rate limiting is disabled")
		return NewNoopRateLimiter(limitCfg.Capacity)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Address,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("func", "NewRateLimiter").Str("address", redisCfg.Address).Msg("redis is unreachable, rate limiting is disabled")
		_ = client.Close()
		return NewNoopRateLimiter(limitCfg.Capacity)
	}

	return newRedisRateLimiter(client, limitCfg, log)
}

func newRedisRateLimiter(client *redis.Client, cfg config.RateLimit, log *logger.Logger) *redisRateLimiter {
	if cfg.Prefix == "" {
		cfg.Prefix = defaultRateLimitPrefix
	}
	return &redisRateLimiter{
		client: client,
		cfg:    cfg,
		ttl:    bucketTTL(cfg),
		now:    time.Now,
		logger: log,
	}
}

func (l *redisRateLimiter) Allow(ctx context.Context, key string) (RateDecision, error) {
	args := []any{
		l.now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillTokens,
		l.cfg.RefillInterval.Milliseconds(),
		int64(l.ttl / time.Second),
	}

	res, err := tokenBucketScript.Run(ctx, l.client, []string{l.cfg.Prefix + ":" + key}, args...).Result()
	if err != nil {
		return RateDecision{}, fmt.Errorf("rate limiter script: %w", err)
	}

	decision, err := parseDecision(res)
	if err != nil {
		return RateDecision{}, err
	}
	decision.Limit = l.cfg.Capacity
	return decision, nil
}

func (l *redisRateLimiter) Close() error {
	return l.client.Close()
}

// bucketTTL is the time a full refill takes, doubled, and at least one minute.
func bucketTTL(cfg config.RateLimit) time.Duration {
	ttl := minBucketTTL
	if cfg.RefillTokens > 0 && cfg.RefillInterval > 0 {
		intervals := math.Ceil(float64(cfg.Capacity) / float64(cfg.RefillTokens))
		if full := 2 * time.Duration(intervals) * cfg.RefillInterval; full > ttl {
			ttl = full
		}
	}
	return ttl
}

func parseDecision(res any) (RateDecision, error) {
	arr, ok := res.([]any)
	if !ok || len(arr) != 3 {
		return RateDecision{}, fmt.Errorf("%w: %#v", ErrUnexpectedScriptResult, res)
	}
	return RateDecision{
		Allowed:    asInt64(arr[0]) == 1,
		Remaining:  asInt64(arr[1]),
		RetryAfter: time.Duration(asInt64(arr[2])) * time.Millisecond,
	}, nil
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

type noopRateLimiter struct {
	limit int
}

// NewNoopRateLimiter returns a limiter that allows every request.
func NewNoopRateLimiter(limit int) RateLimiter {
	return noopRateLimiter{limit: limit}
}

func (l noopRateLimiter) Allow(context.Context, string) (RateDecision, error) {
	return RateDecision{Allowed: true, Limit: l.limit, Remaining: int64(l.limit)}, nil
}

func (noopRateLimiter) Close() error {
	return nil
}
