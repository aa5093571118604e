package fee_plan_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"clubfees/internal/repositories"
	"clubfees/internal/services"
)

var Module = fx.Provide(
	provideFeePlanRepo, services.NewFeePlanService)

func provideFeePlanRepo(db *gorm.DB) repositories.IFeePlanRepository {
	return repositories.NewFeePlanRepository(db)
}
