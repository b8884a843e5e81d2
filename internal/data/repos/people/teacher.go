package people

import (
	"strings"

	"gorm.io/gorm"

	"github.com/thuee/info-system-backend/internal/domain/people"
	"github.com/thuee/info-system-backend/internal/platform/dbctx"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

type TeacherRepo interface {
	FindByExternalID(dbc dbctx.Context, id int64) (*people.Teacher, error)
	FindByName(dbc dbctx.Context, name string) (*people.Teacher, error)
	IncrementTotalApplications(dbc dbctx.Context, id uint) error
}

type teacherRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeacherRepo(db *gorm.DB, baseLog *logger.Logger) TeacherRepo {
	return &teacherRepo{
		db:  db,
		log: baseLog.With("repo", "TeacherRepo"),
	}
}

func (r *teacherRepo) FindByExternalID(dbc dbctx.Context, id int64) (*people.Teacher, error) {
	var t people.Teacher
	if err := dbc.DB(r.db).Where("external_id = ?", id).Limit(1).Find(&t).Error; err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

// FindByName returns the first teacher with that display name.
func (r *teacherRepo) FindByName(dbc dbctx.Context, name string) (*people.Teacher, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var t people.Teacher
	if err := dbc.DB(r.db).Where("name = ?", name).Order("id ASC").Limit(1).Find(&t).Error; err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *teacherRepo) IncrementTotalApplications(dbc dbctx.Context, id uint) error {
	if id == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&people.Teacher{}).
		Where("id = ?", id).
		UpdateColumn("total_applications", gorm.Expr("total_applications + ?", 1)).Error
}
