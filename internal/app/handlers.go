package app

import (
	"gorm.io/gorm"

	httpH "github.com/thuee/info-system-backend/internal/http/handlers"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

type Handlers struct {
	Application *httpH.ApplicationHandler
	Document    *httpH.DocumentHandler
	Health      *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, serviceSet Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Application: httpH.NewApplicationHandler(serviceSet.Applications),
		Document:    httpH.NewDocumentHandler(serviceSet.Documents),
		Health:      httpH.NewHealthHandler(db),
	}
}
