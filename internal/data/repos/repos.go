package repos

import (
	"gorm.io/gorm"

	"github.com/thuee/info-system-backend/internal/data/repos/applications"
	"github.com/thuee/info-system-backend/internal/data/repos/notifications"
	"github.com/thuee/info-system-backend/internal/data/repos/people"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

type ApplicationRepo = applications.ApplicationRepo
type ApplicationFilter = applications.Filter

type StudentRepo = people.StudentRepo
type TeacherRepo = people.TeacherRepo
type ReviewerRepo = people.ReviewerRepo

type NotificationJobRepo = notifications.JobRepo

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return applications.NewApplicationRepo(db, baseLog)
}

func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	return people.NewStudentRepo(db, baseLog)
}
func NewTeacherRepo(db *gorm.DB, baseLog *logger.Logger) TeacherRepo {
	return people.NewTeacherRepo(db, baseLog)
}
func NewReviewerRepo(db *gorm.DB, baseLog *logger.Logger) ReviewerRepo {
	return people.NewReviewerRepo(db, baseLog)
}

func NewNotificationJobRepo(db *gorm.DB, baseLog *logger.Logger) NotificationJobRepo {
	return notifications.NewJobRepo(db, baseLog)
}
