package applications

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/thuee/info-system-backend/internal/domain/application"
	"github.com/thuee/info-system-backend/internal/platform/dbctx"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

// Filter holds the equality filters applied at the store. Zero values are
// ignored.
type Filter struct {
	ApplicantID   *int64
	ApplicantName string
	Year          *int
}

type ApplicationRepo interface {
	Create(dbc dbctx.Context, app *application.Application) error
	Save(dbc dbctx.Context, app *application.Application) error
	FindByID(dbc dbctx.Context, id uint) (*application.Application, error)
	FindByApplicantYear(dbc dbctx.Context, applicantID int64, year int) (*application.Application, error)
	Find(dbc dbctx.Context, filter Filter, offset, limit int) ([]*application.Application, error)
	DeleteByID(dbc dbctx.Context, id uint) (bool, error)
}

type applicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return &applicationRepo{
		db:  db,
		log: baseLog.With("repo", "ApplicationRepo"),
	}
}

func (r *applicationRepo) Create(dbc dbctx.Context, app *application.Application) error {
	if app == nil {
		return nil
	}
	return dbc.DB(r.db).Create(app).Error
}

// Save writes every column of an existing record. Audit stamps are set by
// the caller.
func (r *applicationRepo) Save(dbc dbctx.Context, app *application.Application) error {
	if app == nil || app.ID == 0 {
		return nil
	}
	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = time.Now()
	}
	return dbc.DB(r.db).Save(app).Error
}

func (r *applicationRepo) FindByID(dbc dbctx.Context, id uint) (*application.Application, error) {
	if id == 0 {
		return nil, nil
	}
	var app application.Application
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&app).Error; err != nil {
		return nil, err
	}
	if app.ID == 0 {
		return nil, nil
	}
	return &app, nil
}

func (r *applicationRepo) FindByApplicantYear(dbc dbctx.Context, applicantID int64, year int) (*application.Application, error) {
	var app application.Application
	err := dbc.DB(r.db).
		Where("applicant_id = ? AND year = ?", applicantID, year).
		Limit(1).
		Find(&app).Error
	if err != nil {
		return nil, err
	}
	if app.ID == 0 {
		return nil, nil
	}
	return &app, nil
}

// Find returns records in id order. A non-positive limit means no limit.
func (r *applicationRepo) Find(dbc dbctx.Context, filter Filter, offset, limit int) ([]*application.Application, error) {
	q := dbc.DB(r.db).Model(&application.Application{})
	if filter.ApplicantID != nil {
		q = q.Where("applicant_id = ?", *filter.ApplicantID)
	}
	if name := strings.TrimSpace(filter.ApplicantName); name != "" {
		q = q.Where("applicant_name = ?", name)
	}
	if filter.Year != nil {
		q = q.Where("year = ?", *filter.Year)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*application.Application
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *applicationRepo) DeleteByID(dbc dbctx.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&application.Application{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
