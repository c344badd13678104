package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// El contador y su vencimiento se leen en la misma ejecucion del script.
// Una clave sin TTL (PTTL -1) recupera la ventana para no quedar bloqueada.
const redisAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`

const (
	defaultRateLimitPrefix  = "auth:rl:"
	defaultRateLimitTimeout = 500 * time.Millisecond
)

// RedisRateLimiterOptions ajusta el limiter compartido; los ceros toman
// valores por defecto.
type RedisRateLimiterOptions struct {
	Prefix    string
	Timeout   time.Duration
	Normalize KeyNormalizer
	Logger    *zap.Logger
}

type redisRateLimiter struct {
	client    redisEvaler
	window    time.Duration
	max       int
	prefix    string
	timeout   time.Duration
	normalize KeyNormalizer
	logger    *zap.Logger
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisRateLimiter comparte el contador entre replicas con ventana fija.
func NewRedisRateLimiter(client *redis.Client, window time.Duration, max int, opts RedisRateLimiterOptions) RateLimiter {
	if client == nil {
		return nil
	}
	return newRedisRateLimiter(client, window, max, opts)
}

func newRedisRateLimiter(client redisEvaler, window time.Duration, max int, opts RedisRateLimiterOptions) *redisRateLimiter {
	if window < time.Millisecond {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultRateLimitPrefix
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRateLimitTimeout
	}
	if opts.Normalize == nil {
		opts.Normalize = IPKeyNormalizer(64)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &redisRateLimiter{
		client:    client,
		window:    window,
		max:       max,
		prefix:    opts.Prefix,
		timeout:   opts.Timeout,
		normalize: opts.Normalize,
		logger:    opts.Logger,
	}
}

func (l *redisRateLimiter) Allow(ctx context.Context, key string) RateDecision {
	if l == nil || l.client == nil {
		return RateDecision{Allowed: true}
	}
	key = l.normalize(key)
	if key == "" {
		return RateDecision{RetryAfter: l.window}
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	res, err := l.client.Eval(ctx, redisAllowScript, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil || len(res) != 2 {
		// fail-open: redis caido no debe tumbar el login
		l.logger.Warn("rate limiter unavailable, allowing request", zap.Error(err), zap.Int("reply_len", len(res)))
		return RateDecision{Allowed: true}
	}
	if res[0] <= int64(l.max) {
		return RateDecision{Allowed: true}
	}
	return RateDecision{RetryAfter: time.Duration(res[1]) * time.Millisecond}
}
