package plan_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"clubfees/internal/repositories"
	"clubfees/internal/services"
)

var Module = fx.Provide(
	providePlanRepo, providePlanService)

func providePlanRepo(db *gorm.DB) repositories.IPlanRepository {
	return repositories.NewPlanRepository(db)
}

func providePlanService(planRepo repositories.IPlanRepository, currencies services.CurrencyRegistry, log *zap.Logger) services.PlanServiceInterface {
	return services.NewPlanService(planRepo, currencies, log)
}
