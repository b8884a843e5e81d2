package people

import (
	"gorm.io/gorm"

	"github.com/thuee/info-system-backend/internal/domain/people"
	"github.com/thuee/info-system-backend/internal/platform/dbctx"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

type ReviewerRepo interface {
	FindByExternalID(dbc dbctx.Context, id int64) (*people.Reviewer, error)
}

type reviewerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewerRepo(db *gorm.DB, baseLog *logger.Logger) ReviewerRepo {
	return &reviewerRepo{
		db:  db,
		log: baseLog.With("repo", "ReviewerRepo"),
	}
}

func (r *reviewerRepo) FindByExternalID(dbc dbctx.Context, id int64) (*people.Reviewer, error) {
	var rv people.Reviewer
	if err := dbc.DB(r.db).Where("external_id = ?", id).Limit(1).Find(&rv).Error; err != nil {
		return nil, err
	}
	if rv.ID == 0 {
		return nil, nil
	}
	return &rv, nil
}
