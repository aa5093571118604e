package controllers_fx

import (
	"go.uber.org/fx"

	"clubfees/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewCurrencyController),
	fx.Provide(controllers.NewPlanController),
	fx.Provide(controllers.NewFeePlanController),
	fx.Provide(controllers.NewBillingController),
	fx.Provide(controllers.NewReportController),
	fx.Provide(provideControllers))

func provideControllers(
	currency *controllers.CurrencyController,
	plan *controllers.PlanController,
	feePlan *controllers.FeePlanController,
	billing *controllers.BillingController,
	payment *controllers.PaymentController,
	report *controllers.ReportController,
) controllers.Controllers {
	return controllers.Controllers{
		Currency: currency,
		Plan:     plan,
		FeePlan:  feePlan,
		Billing:  billing,
		Payment:  payment,
		Report:   report,
	}
}
