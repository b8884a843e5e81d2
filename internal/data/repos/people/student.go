package people

import (
	"gorm.io/gorm"

	"github.com/thuee/info-system-backend/internal/domain/people"
	"github.com/thuee/info-system-backend/internal/platform/dbctx"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

type StudentRepo interface {
	FindByExternalID(dbc dbctx.Context, id int64) (*people.Student, error)
	FindByExternalIDs(dbc dbctx.Context, ids []int64) (map[int64]*people.Student, error)
}

type studentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	return &studentRepo{
		db:  db,
		log: baseLog.With("repo", "StudentRepo"),
	}
}

func (r *studentRepo) FindByExternalID(dbc dbctx.Context, id int64) (*people.Student, error) {
	var s people.Student
	if err := dbc.DB(r.db).Where("external_id = ?", id).Limit(1).Find(&s).Error; err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}

// FindByExternalIDs returns the students found, keyed by external id.
func (r *studentRepo) FindByExternalIDs(dbc dbctx.Context, ids []int64) (map[int64]*people.Student, error) {
	out := make(map[int64]*people.Student, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []*people.Student
	if err := dbc.DB(r.db).Where("external_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, s := range rows {
		out[s.ExternalID] = s
	}
	return out, nil
}
