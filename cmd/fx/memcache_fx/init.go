package memcache_fx

import (
	"go.uber.org/fx"

	"clubfees/internal/billing"
	mem "clubfees/pkg/memcache"
)

var Module = fx.Provide(provideCurrencyCache)

func provideCurrencyCache() mem.Store[string, billing.CurrencyInfo] {
	return mem.NewTTLCache[string, billing.CurrencyInfo]()
}
