package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/thuee/info-system-backend/internal/http/response"
	"github.com/thuee/info-system-backend/internal/platform/ctxutil"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter is a fixed-window counter per key. A nil limiter or an
// unreachable Redis admits every request.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	script *redis.Script
	log    *logger.Logger
}

func NewRedisLimiter(log *logger.Logger, client *redis.Client, limit int, window time.Duration, prefix string) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
		script: redis.NewScript(rateLimitScript),
		log:    log.With("middleware", "RedisLimiter"),
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	if l.limit <= 0 || l.window <= 0 || key == "" {
		return true
	}
	redisKey := key
	if l.prefix != "" {
		redisKey = l.prefix + ":" + key
	}
	ttl := l.window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{redisKey}, ttl, l.limit).Int64()
	if err != nil {
		l.log.Warn("Rate limit check failed, allowing request", "error", err)
		return true
	}
	return allowed == 1
}

// RateLimit keys on the caller id, falling back to the client IP.
func RateLimit(l *RedisLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ctxutil.CallerID(c.Request.Context())
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !l.Allow(c.Request.Context(), key) {
			response.AbortText(c, http.StatusTooManyRequests, response.TextTooManyRequests)
			return
		}
		c.Next()
	}
}
