package controllers

import "github.com/gin-gonic/gin"

// Controllers groups every HTTP handler set so the router can be built in one call.
type Controllers struct {
	Currency *CurrencyController
	Plan     *PlanController
	FeePlan  *FeePlanController
	Billing  *BillingController
	Payment  *PaymentController
	Report   *ReportController
}

func RegisterRoutes(r gin.IRouter, cs Controllers) {
	currencies := r.Group("/currencies")
	currencies.GET("", cs.Currency.ListCurrencies)
	currencies.GET("/default", cs.Currency.GetDefaultCurrency)
	currencies.GET("/:code", cs.Currency.GetCurrency)

	plans := r.Group("/plans")
	plans.POST("", cs.Plan.CreatePlan)
	plans.GET("/:id", cs.Plan.GetPlan)
	plans.PUT("/:id", cs.Plan.UpdatePlan)
	plans.DELETE("/:id", cs.Plan.DeletePlan)

	owners := r.Group("/owners/:kind/:id")
	owners.GET("/plans", cs.Plan.ListOwnerPlans)
	owners.GET("/settings", cs.FeePlan.GetOwnerSettings)
	owners.PUT("/settings", cs.FeePlan.PutOwnerSettings)

	students := r.Group("/students/:id")
	students.PUT("/fee-plan", cs.FeePlan.UpsertAssignment)
	students.GET("/fee-plan", cs.FeePlan.GetAssignment)
	students.GET("/billing-policy", cs.FeePlan.GetBillingPolicy)
	students.POST("/charges", cs.Billing.GenerateCharge)
	students.POST("/charges/backfill", cs.Billing.Backfill)
	students.GET("/fees", cs.Billing.ListFees)
	students.GET("/outstanding", cs.Billing.Outstanding)
	students.POST("/payments", cs.Payment.RecordPayment)
	students.GET("/payments", cs.Payment.ListPayments)

	billingGroup := r.Group("/billing")
	billingGroup.POST("/runs", cs.Billing.RunPeriod)
	billingGroup.POST("/hints/reconcile", cs.Billing.ReconcileHints)
	billingGroup.GET("/reports/collections", cs.Report.Collections)

	r.POST("/fees/:id/fines", cs.Billing.RecordFine)

	payments := r.Group("/payments/:id")
	payments.GET("", cs.Payment.GetPayment)
	payments.POST("/mark-paid", cs.Payment.MarkPaid)
	payments.PUT("/amount", cs.Payment.AmendAmount)
	payments.POST("/compensate", cs.Payment.Compensate)
	payments.PUT("/attachment", cs.Payment.AttachProof)
	payments.GET("/invoice-context", cs.Payment.InvoiceContext)
}
