package app

import (
	"strings"
	"time"

	"github.com/thuee/info-system-backend/internal/data/db"
	"github.com/thuee/info-system-backend/internal/modules/documents"
	"github.com/thuee/info-system-backend/internal/platform/envutil"
	"github.com/thuee/info-system-backend/internal/platform/logger"
	"github.com/thuee/info-system-backend/internal/services"
)

type Config struct {
	Port         string
	Environment  string
	ServiceName  string
	JWTSecretKey string
	AmendPolicy  services.AmendMissingPolicy
	SiteURL      string
	CORSOrigins  []string

	DB        db.Config
	Documents documents.Config

	AttachmentsDir       string
	AttachmentsGCSBucket string
	AttachmentsGCSPrefix string

	RedisAddr        string
	ExportRateLimit  int
	ExportRateWindow time.Duration
	MetricsAddr      string
	ShutdownTimeout  time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	policyRaw := strings.ToLower(envutil.String("AMEND_MISSING_POLICY", string(services.AmendMissingUpsert), log))
	policy, ok := services.ParseAmendMissingPolicy(policyRaw)
	if !ok {
		log.Warn("Unknown AMEND_MISSING_POLICY, using upsert", "value", policyRaw)
		policy = services.AmendMissingUpsert
	}
	return Config{
		Port:         envutil.String("PORT", "8080", log),
		Environment:  envutil.String("APP_ENV", "development", log),
		ServiceName:  envutil.String("OTEL_SERVICE_NAME", "info-system-backend", log),
		JWTSecretKey: envutil.String("JWT_SECRET_KEY", "defaultsecret", log),
		AmendPolicy:  policy,
		SiteURL:      envutil.String("APP_SITE_URL", "", log),
		CORSOrigins:  splitList(envutil.String("CORS_ORIGINS", "", log)),

		DB:        db.ConfigFromEnv(log),
		Documents: documents.ConfigFromEnv(log),

		AttachmentsDir:       envutil.String("ATTACHMENTS_DIR", "uploads", log),
		AttachmentsGCSBucket: envutil.String("ATTACHMENTS_GCS_BUCKET", "", log),
		AttachmentsGCSPrefix: envutil.String("ATTACHMENTS_GCS_PREFIX", "", log),

		RedisAddr:        envutil.String("REDIS_ADDR", "", log),
		ExportRateLimit:  envutil.Int("EXPORT_RATE_LIMIT", 30, log),
		ExportRateWindow: envutil.Duration("EXPORT_RATE_WINDOW", time.Minute, log),
		MetricsAddr:      envutil.String("METRICS_ADDR", ":9090", log),
		ShutdownTimeout:  envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second, log),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
