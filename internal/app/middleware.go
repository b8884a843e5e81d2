package app

import (
	goredis "github.com/redis/go-redis/v9"

	httpMW "github.com/thuee/info-system-backend/internal/http/middleware"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

type Middleware struct {
	Auth          *httpMW.AuthMiddleware
	ExportLimiter *httpMW.RedisLimiter
}

func wireMiddleware(log *logger.Logger, cfg Config, serviceSet Services, rdb *goredis.Client) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:          httpMW.NewAuthMiddleware(log, serviceSet.Auth, serviceSet.Access),
		ExportLimiter: httpMW.NewRedisLimiter(log, rdb, cfg.ExportRateLimit, cfg.ExportRateWindow, "ratelimit:exports:"),
	}
}
