package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/thuee/info-system-backend/internal/http/handlers"
	httpMW "github.com/thuee/info-system-backend/internal/http/middleware"
	"github.com/thuee/info-system-backend/internal/observability"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware
	ExportLimiter  *httpMW.RedisLimiter

	ApplicationHandler *httpH.ApplicationHandler
	DocumentHandler    *httpH.DocumentHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	protected := r.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.ReadWrite())
	}

	// Applications
	if cfg.ApplicationHandler != nil {
		protected.POST("/applications", cfg.ApplicationHandler.Create)
		protected.GET("/applications", cfg.ApplicationHandler.List)
		protected.GET("/applications/:id", cfg.ApplicationHandler.Get)
		protected.PUT("/applications/:id", cfg.ApplicationHandler.Update)
		protected.DELETE("/applications/:id", cfg.ApplicationHandler.Delete)
	}

	// Exports
	if cfg.DocumentHandler != nil {
		exports := protected.Group("/", httpMW.RateLimit(cfg.ExportLimiter))
		exports.GET("/thank-letters", cfg.DocumentHandler.ThankLetters)
		exports.GET("/e-forms", cfg.DocumentHandler.EForms)
	}

	return r
}
