package config_fx

import (
	"go.uber.org/fx"

	"clubfees/internal/config"
)

var Module = fx.Provide(config.Load)
