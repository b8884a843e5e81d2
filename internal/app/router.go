package app

import (
	apphttp "github.com/thuee/info-system-backend/internal/http"
	"github.com/thuee/info-system-backend/internal/observability"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *apphttp.Server {
	log.Info("Wiring router...")
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:         log,
		Metrics:     metrics,
		ServiceName: cfg.ServiceName,
		CORSOrigins: cfg.CORSOrigins,

		AuthMiddleware: middleware.Auth,
		ExportLimiter:  middleware.ExportLimiter,

		ApplicationHandler: handlers.Application,
		DocumentHandler:    handlers.Document,
		HealthHandler:      handlers.Health,
	})
}
