package app

import (
	"gorm.io/gorm"

	"github.com/thuee/info-system-backend/internal/data/repos"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

type Repos struct {
	Applications     repos.ApplicationRepo
	Students         repos.StudentRepo
	Teachers         repos.TeacherRepo
	Reviewers        repos.ReviewerRepo
	NotificationJobs repos.NotificationJobRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Applications:     repos.NewApplicationRepo(db, log),
		Students:         repos.NewStudentRepo(db, log),
		Teachers:         repos.NewTeacherRepo(db, log),
		Reviewers:        repos.NewReviewerRepo(db, log),
		NotificationJobs: repos.NewNotificationJobRepo(db, log),
	}
}
