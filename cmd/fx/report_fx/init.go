package report_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"clubfees/internal/repositories"
	"clubfees/internal/services"
)

var Module = fx.Provide(provideReportRepo, services.NewReportService)

func provideReportRepo(db *gorm.DB) repositories.IReportRepository {
	return repositories.NewReportRepository(db)
}
