package notifications

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thuee/info-system-backend/internal/domain/notifications"
	"github.com/thuee/info-system-backend/internal/platform/dbctx"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

type JobRepo interface {
	Enqueue(dbc dbctx.Context, job *notifications.Job) error
	ClaimNext(dbc dbctx.Context) (*notifications.Job, error)
	MarkSucceeded(dbc dbctx.Context, id uint) error
	MarkFailed(dbc dbctx.Context, id uint, cause string) error
	GetByID(dbc dbctx.Context, id uint) (*notifications.Job, error)
	CountByStatus(dbc dbctx.Context, status string) (int64, error)
}

type jobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRepo(db *gorm.DB, baseLog *logger.Logger) JobRepo {
	return &jobRepo{
		db:  db,
		log: baseLog.With("repo", "NotificationJobRepo"),
	}
}

func (r *jobRepo) Enqueue(dbc dbctx.Context, job *notifications.Job) error {
	if job == nil {
		return nil
	}
	if job.Status == "" {
		job.Status = notifications.StatusQueued
	}
	return dbc.DB(r.db).Create(job).Error
}

// ClaimNext moves the oldest queued job to running and returns it, or nil
// when the queue is empty or another worker won the row.
func (r *jobRepo) ClaimNext(dbc dbctx.Context) (*notifications.Job, error) {
	now := time.Now()
	var claimed *notifications.Job
	err := dbc.DB(r.db).Transaction(func(txx *gorm.DB) error {
		var job notifications.Job
		qErr := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", notifications.StatusQueued).
			Order("created_at ASC, id ASC").
			First(&job).Error
		if errors.Is(qErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if qErr != nil {
			return qErr
		}
		res := txx.Model(&notifications.Job{}).
			Where("id = ? AND status = ?", job.ID, notifications.StatusQueued).
			Updates(map[string]interface{}{
				"status":     notifications.StatusRunning,
				"attempts":   gorm.Expr("attempts + 1"),
				"locked_at":  now,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		job.Status = notifications.StatusRunning
		job.Attempts++
		job.LockedAt = &now
		claimed = &job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *jobRepo) MarkSucceeded(dbc dbctx.Context, id uint) error {
	return r.finish(dbc, id, notifications.StatusSucceeded, "")
}

func (r *jobRepo) MarkFailed(dbc dbctx.Context, id uint, cause string) error {
	return r.finish(dbc, id, notifications.StatusFailed, strings.TrimSpace(cause))
}

func (r *jobRepo) finish(dbc dbctx.Context, id uint, status, cause string) error {
	if id == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&notifications.Job{}).
		Where("id = ? AND status = ?", id, notifications.StatusRunning).
		Updates(map[string]interface{}{
			"status":     status,
			"error":      cause,
			"updated_at": time.Now(),
		}).Error
}

func (r *jobRepo) GetByID(dbc dbctx.Context, id uint) (*notifications.Job, error) {
	var job notifications.Job
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&job).Error; err != nil {
		return nil, err
	}
	if job.ID == 0 {
		return nil, nil
	}
	return &job, nil
}

func (r *jobRepo) CountByStatus(dbc dbctx.Context, status string) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&notifications.Job{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
