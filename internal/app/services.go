package app

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/thuee/info-system-backend/internal/data/aggregates"
	domainagg "github.com/thuee/info-system-backend/internal/domain/aggregates"
	"github.com/thuee/info-system-backend/internal/jobs/worker"
	"github.com/thuee/info-system-backend/internal/modules/documents"
	"github.com/thuee/info-system-backend/internal/observability"
	"github.com/thuee/info-system-backend/internal/platform/filestore"
	"github.com/thuee/info-system-backend/internal/platform/logger"
	"github.com/thuee/info-system-backend/internal/platform/mailer"
	"github.com/thuee/info-system-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Access       services.AccessService
	Dispatcher   services.NotificationDispatcher
	Aggregate    domainagg.ApplicationAggregate
	Applications services.ApplicationService
	Documents    *documents.Pipeline
	Worker       *worker.Worker
}

func wireServices(ctx context.Context, db *gorm.DB, log *logger.Logger, cfg Config, repoSet Repos, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	authService := services.NewAuthService(log, cfg.JWTSecretKey)
	accessService := services.NewAccessService(log, repoSet.Reviewers, repoSet.Teachers)

	dispatcher, err := services.NewNotificationDispatcher(
		db,
		log,
		repoSet.Students,
		repoSet.Teachers,
		mailer.NewFromEnv(log),
		metrics,
		cfg.SiteURL,
	)
	if err != nil {
		return Services{}, err
	}

	jobWorker := worker.NewWorker(db, log, repoSet.NotificationJobs, dispatcher, metrics)

	aggregate := aggregates.NewApplicationAggregate(aggregates.ApplicationAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: aggregates.NewObservabilityHooks(metrics),
		},
		Applications: repoSet.Applications,
		Teachers:     repoSet.Teachers,
		Jobs:         repoSet.NotificationJobs,
	})

	applicationService := services.NewApplicationService(
		db,
		log,
		aggregate,
		repoSet.Applications,
		repoSet.Students,
		jobWorker,
		cfg.AmendPolicy,
	)

	files, err := wireFileStore(ctx, log, cfg)
	if err != nil {
		return Services{}, err
	}
	renderers, err := documents.NewRenderers(log, cfg.Documents)
	if err != nil {
		return Services{}, fmt.Errorf("init letter renderers: %w", err)
	}
	pipeline := documents.NewPipeline(documents.PipelineDeps{
		Log:          log,
		Applications: repoSet.Applications,
		Students:     repoSet.Students,
		Files:        files,
		Renderers:    renderers,
		Metrics:      metrics,
		Config:       cfg.Documents,
	})

	return Services{
		Auth:         authService,
		Access:       accessService,
		Dispatcher:   dispatcher,
		Aggregate:    aggregate,
		Applications: applicationService,
		Documents:    pipeline,
		Worker:       jobWorker,
	}, nil
}

// wireFileStore prefers the GCS bucket when one is configured.
func wireFileStore(ctx context.Context, log *logger.Logger, cfg Config) (filestore.Store, error) {
	if bucket := strings.TrimSpace(cfg.AttachmentsGCSBucket); bucket != "" {
		store, err := filestore.NewGCSStore(ctx, log, bucket, cfg.AttachmentsGCSPrefix)
		if err != nil {
			return nil, fmt.Errorf("init attachment bucket: %w", err)
		}
		return store, nil
	}
	return filestore.NewLocalStore(log, cfg.AttachmentsDir), nil
}
