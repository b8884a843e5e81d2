package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/thuee/info-system-backend/internal/data/repos"
	"github.com/thuee/info-system-backend/internal/domain/notifications"
	"github.com/thuee/info-system-backend/internal/observability"
	"github.com/thuee/info-system-backend/internal/platform/dbctx"
	"github.com/thuee/info-system-backend/internal/platform/envutil"
	"github.com/thuee/info-system-backend/internal/platform/logger"
	"github.com/thuee/info-system-backend/internal/services"
)

// Worker drains the notification outbox. Jobs are attempted once; a failed
// dispatch is recorded on the row and never retried.
type Worker struct {
	db         *gorm.DB
	log        *logger.Logger
	repo       repos.NotificationJobRepo
	dispatcher services.NotificationDispatcher
	metrics    *observability.Metrics

	concurrency int
	interval    time.Duration
	wake        chan struct{}
	wg          sync.WaitGroup
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.NotificationJobRepo, dispatcher services.NotificationDispatcher, metrics *observability.Metrics) *Worker {
	log := baseLog.With("component", "NotificationWorker")
	return &Worker{
		db:          db,
		log:         log,
		repo:        repo,
		dispatcher:  dispatcher,
		metrics:     metrics,
		concurrency: envutil.Int("NOTIFY_WORKER_CONCURRENCY", 2, log),
		interval:    envutil.Duration("NOTIFY_POLL_INTERVAL", time.Second, log),
		wake:        make(chan struct{}, 1),
	}
}

// Kick wakes one idle loop without waiting for the next tick.
func (w *Worker) Kick() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) Start(ctx context.Context) {
	concurrency := w.concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if w.interval <= 0 {
		w.interval = time.Second
	}
	w.log.Info("Starting notification worker pool", "concurrency", concurrency, "poll_interval", w.interval)

	for i := 0; i < concurrency; i++ {
		workerID := i + 1
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.runLoop(ctx, workerID)
		}()
	}
}

// Wait blocks until every loop started by Start has returned.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
		case <-w.wake:
		}
		// Drain the backlog before sleeping again.
		for ctx.Err() == nil {
			processed, err := w.ProcessNext(ctx)
			if err != nil {
				w.log.Warn("Notification job failed", "worker_id", workerID, "error", err)
			}
			if !processed {
				break
			}
		}
	}
}

// ProcessNext claims and dispatches one queued job. It reports whether a job
// was claimed; the error describes the dispatch outcome of that job.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	dbc := dbctx.Context{Ctx: ctx}
	job, err := w.repo.ClaimNext(dbc)
	if err != nil {
		return false, fmt.Errorf("claim: %w", err)
	}
	if job == nil {
		return false, nil
	}

	runErr := w.run(ctx, job)
	if runErr != nil {
		w.metrics.IncWorkerJob(notifications.StatusFailed)
		if err := w.repo.MarkFailed(dbc, job.ID, runErr.Error()); err != nil {
			w.log.Error("MarkFailed failed", "job_id", job.ID, "error", err)
		}
		return true, fmt.Errorf("job %d: %w", job.ID, runErr)
	}
	w.metrics.IncWorkerJob(notifications.StatusSucceeded)
	if err := w.repo.MarkSucceeded(dbc, job.ID); err != nil {
		w.log.Error("MarkSucceeded failed", "job_id", job.ID, "error", err)
		return true, err
	}
	return true, nil
}

func (w *Worker) run(ctx context.Context, job *notifications.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Notification dispatch panic",
				"job_id", job.ID,
				"application_id", job.ApplicationID,
				"panic", r,
			)
			err = &panicError{Val: r}
		}
	}()
	payload, err := job.DecodePayload()
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return w.dispatcher.Dispatch(ctx, payload)
}

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
