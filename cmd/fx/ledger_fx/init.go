package ledger_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"clubfees/internal/repositories"
	"clubfees/internal/services"
)

var Module = fx.Provide(
	provideFeeLedgerRepo, provideFeeTypeRepo, services.NewLedgerService)

func provideFeeLedgerRepo(db *gorm.DB) repositories.IFeeLedgerRepository {
	return repositories.NewFeeLedgerRepository(db)
}

func provideFeeTypeRepo(db *gorm.DB) repositories.IFeeTypeRepository {
	return repositories.NewFeeTypeRepository(db)
}
