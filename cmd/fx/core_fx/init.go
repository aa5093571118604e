package core_fx

import (
	"go.uber.org/fx"

	"clubfees/cmd/fx/billing_fx"
	"clubfees/cmd/fx/config_fx"
	"clubfees/cmd/fx/currency_fx"
	"clubfees/cmd/fx/db_fx"
	"clubfees/cmd/fx/fee_plan_fx"
	"clubfees/cmd/fx/ledger_fx"
	"clubfees/cmd/fx/logger_fx"
	"clubfees/cmd/fx/memcache_fx"
	"clubfees/cmd/fx/payment_service_fx"
	"clubfees/cmd/fx/plan_fx"
	"clubfees/cmd/fx/report_fx"
)

// Module is the service graph shared by the HTTP server and the CLI.
var Module = fx.Options(
	config_fx.Module,
	logger_fx.Module,
	db_fx.Module,
	memcache_fx.Module,
	currency_fx.Module,
	plan_fx.Module,
	ledger_fx.Module,
	fee_plan_fx.Module,
	billing_fx.Module,
	payment_service_fx.Module,
	report_fx.Module,
)
