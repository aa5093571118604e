package billing_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"clubfees/internal/config"
	"clubfees/internal/services"
)

var Module = fx.Provide(services.NewBillingService)

// JobModule runs the periodic billing pass for the lifetime of the app. The CLI leaves
// it out.
var JobModule = fx.Options(
	fx.Provide(provideBillingJob),
	fx.Invoke(startBillingJob),
)

func provideBillingJob(svc services.BillingServiceInterface, cfg *config.Config, log *zap.Logger) *services.BillingJob {
	return services.NewBillingJob(svc, cfg.Billing.JobInterval, log)
}

func startBillingJob(lc fx.Lifecycle, job *services.BillingJob) {
	lc.Append(fx.StartStopHook(job.Start, job.Stop))
}
