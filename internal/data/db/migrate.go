package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/thuee/info-system-backend/internal/domain/application"
	"github.com/thuee/info-system-backend/internal/domain/notifications"
	"github.com/thuee/info-system-backend/internal/domain/people"
)

// Models lists every table owned by the service.
func Models() []any {
	return []any{
		&application.Application{},

		&people.Student{},
		&people.Teacher{},
		&people.Reviewer{},

		&notifications.Job{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
