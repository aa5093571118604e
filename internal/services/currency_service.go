package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"clubfees/internal/billing"
	"clubfees/internal/config"
	"clubfees/internal/models/db_models"
	"clubfees/internal/repositories"
	mem "clubfees/pkg/memcache"
)

// CurrencyRegistry maps currency codes to display symbol and precision.
type CurrencyRegistry interface {
	// Load resolves the default currency once; call it at startup after seeding.
	Load(ctx context.Context) error
	Resolve(ctx context.Context, code string) (billing.CurrencyInfo, error)
	DefaultCurrency(ctx context.Context) (billing.CurrencyInfo, error)
	Format(ctx context.Context, code string, amount decimal.Decimal) (string, error)
	List(ctx context.Context) ([]billing.CurrencyInfo, error)
	SeedDefaults(ctx context.Context) (int64, error)
}

type CurrencyParams struct {
	fx.In

	Repo   repositories.ICurrencyRepository
	Cache  mem.Store[string, billing.CurrencyInfo]
	Config *config.Config
	Log    *zap.Logger
}

type currencyRegistry struct {
	repo     repositories.ICurrencyRepository
	cache    mem.Store[string, billing.CurrencyInfo]
	cfg      *config.Config
	log      *zap.Logger
	mu       sync.RWMutex
	fallback *billing.CurrencyInfo
}

func NewCurrencyRegistry(p CurrencyParams) CurrencyRegistry {
	return &currencyRegistry{
		repo:  p.Repo,
		cache: p.Cache,
		cfg:   p.Config,
		log:   p.Log.Named("currency.registry"),
	}
}

var defaultCurrencies = []db_models.Currency{
	{Code: "MYR", Symbol: "RM", DecimalPlaces: 2, IsActive: true, IsDefault: true},
	{Code: "USD", Symbol: "$", DecimalPlaces: 2, IsActive: true},
	{Code: "EUR", Symbol: "€", DecimalPlaces: 2, IsActive: true},
	{Code: "SGD", Symbol: "S$", DecimalPlaces: 2, IsActive: true},
	{Code: "IDR", Symbol: "Rp", DecimalPlaces: 0, IsActive: true},
}

func (r *currencyRegistry) SeedDefaults(ctx context.Context) (int64, error) {
	existing, err := r.repo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list currencies: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	seed := make([]db_models.Currency, len(defaultCurrencies))
	copy(seed, defaultCurrencies)
	n, err := r.repo.Seed(ctx, seed)
	if err != nil {
		return 0, fmt.Errorf("seed currencies: %w", err)
	}
	r.log.Info("seeded currencies", zap.Int64("inserted", n))
	return n, nil
}

func (r *currencyRegistry) Load(ctx context.Context) error {
	const op = "CurrencyRegistry.Load"

	var def billing.CurrencyInfo
	if r.cfg.DefaultCurrency != "" {
		info, err := r.Resolve(ctx, r.cfg.DefaultCurrency)
		if err != nil {
			return err
		}
		def = info
	} else {
		rows, err := r.repo.FindDefaults(ctx)
		if err != nil {
			return fmt.Errorf("find default currency: %w", err)
		}
		switch len(rows) {
		case 0:
			r.log.Warn("no default currency configured; resolution without an owner or plan currency will fail")
			return nil
		case 1:
			def = rows[0].Info()
		default:
			return billing.NewError(op, billing.ErrAmbiguousDefault)
		}
	}

	r.mu.Lock()
	r.fallback = &def
	r.mu.Unlock()
	r.log.Info("default currency loaded", zap.String("code", def.Code))
	return nil
}

func (r *currencyRegistry) Resolve(ctx context.Context, code string) (billing.CurrencyInfo, error) {
	const op = "CurrencyRegistry.Resolve"
	code = billing.NormalizeCurrencyCode(code)
	if info, ok := r.cache.Get(code); ok {
		return info, nil
	}

	currency, err := r.repo.GetByCode(ctx, code)
	if err != nil {
		return billing.CurrencyInfo{}, fmt.Errorf("get currency %s: %w", code, err)
	}
	if currency == nil || !currency.IsActive {
		return billing.CurrencyInfo{}, billing.NewFieldError(op, "currency_code", billing.ErrUnknownCurrency)
	}

	info := currency.Info()
	r.cache.Set(code, info, r.cfg.CurrencyCacheTTL)
	return info, nil
}

func (r *currencyRegistry) DefaultCurrency(ctx context.Context) (billing.CurrencyInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.fallback == nil {
		return billing.CurrencyInfo{}, billing.NewError("CurrencyRegistry.DefaultCurrency", billing.ErrNoDefaultConfigured)
	}
	return *r.fallback, nil
}

func (r *currencyRegistry) Format(ctx context.Context, code string, amount decimal.Decimal) (string, error) {
	info, err := r.Resolve(ctx, code)
	if err != nil {
		return "", err
	}
	return info.Format(amount), nil
}

func (r *currencyRegistry) List(ctx context.Context) ([]billing.CurrencyInfo, error) {
	rows, err := r.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	return lo.Map(rows, func(c db_models.Currency, _ int) billing.CurrencyInfo {
		return c.Info()
	}), nil
}

// defaultCode is the global fallback for resolution, "" when none is loaded.
func defaultCode(ctx context.Context, r CurrencyRegistry) string {
	info, err := r.DefaultCurrency(ctx)
	if err != nil {
		return ""
	}
	return info.Code
}
