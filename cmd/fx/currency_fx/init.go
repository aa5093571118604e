package currency_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"clubfees/internal/repositories"
	"clubfees/internal/services"
)

var Module = fx.Options(
	fx.Provide(provideCurrencyRepo, provideOwnerRepo, services.NewCurrencyRegistry),
	fx.Invoke(loadCurrencies),
)

func provideCurrencyRepo(db *gorm.DB) repositories.ICurrencyRepository {
	return repositories.NewCurrencyRepository(db)
}

func provideOwnerRepo(db *gorm.DB) repositories.IOwnerRepository {
	return repositories.NewOwnerRepository(db)
}

// loadCurrencies seeds the built-in currencies on an empty table and resolves the
// default before anything is billed.
func loadCurrencies(lc fx.Lifecycle, registry services.CurrencyRegistry, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			seeded, err := registry.SeedDefaults(ctx)
			if err != nil {
				return err
			}
			if seeded > 0 {
				log.Info("seeded currencies", zap.Int64("count", seeded))
			}
			return registry.Load(ctx)
		},
	})
}
