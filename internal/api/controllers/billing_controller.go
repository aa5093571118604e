package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"clubfees/internal/billing"
	"clubfees/internal/models/request_models"
	"clubfees/internal/models/response_models"
	"clubfees/internal/services"
	"clubfees/pkg/utils"
)

type BillingController struct {
	billingService services.BillingServiceInterface
	ledgerService  services.LedgerServiceInterface
}

func NewBillingController(billingService services.BillingServiceInterface, ledgerService services.LedgerServiceInterface) *BillingController {
	return &BillingController{
		billingService: billingService,
		ledgerService:  ledgerService,
	}
}

// RunPeriod generates one period for every active assignment. Per-student failures are
// part of the report, not an error response.
func (bc *BillingController) RunPeriod(c *gin.Context) {
	var req request_models.PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	period, err := billing.ParsePeriod(req.Period)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	report, err := bc.billingService.RunPeriod(c.Request.Context(), period)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, report, "Billing run finished")
}

func (bc *BillingController) GenerateCharge(c *gin.Context) {
	studentID, err := utils.ParseID("student_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	var req request_models.PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	period, err := billing.ParsePeriod(req.Period)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	result, err := bc.billingService.GenerateForStudent(c.Request.Context(), studentID, period)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, generated(*result), "Charge generated")
}

func (bc *BillingController) Backfill(c *gin.Context) {
	studentID, err := utils.ParseID("student_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	var req request_models.BackfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	from, err := billing.ParsePeriod(req.From)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	to, err := billing.ParsePeriod(req.To)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	results, err := bc.billingService.Backfill(c.Request.Context(), studentID, from, to)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, lo.Map(results, func(r services.GenerateResult, _ int) response_models.GenerateResponse {
		return generated(r)
	}), "Backfill finished")
}

func (bc *BillingController) ReconcileHints(c *gin.Context) {
	report, err := bc.billingService.ReconcileHints(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, report, "Hints reconciled")
}

// ListFees returns a student's ledger rows, optionally bounded by ?from=YYYY-MM&to=YYYY-MM.
func (bc *BillingController) ListFees(c *gin.Context) {
	studentID, err := utils.ParseID("student_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	from, err := utils.ParseOptionalPeriod(c.Query("from"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	to, err := utils.ParseOptionalPeriod(c.Query("to"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	fees, err := bc.ledgerService.ListStudentFees(c.Request.Context(), studentID, from, to)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromFees(fees), "Fetched fees successfully")
}

func (bc *BillingController) Outstanding(c *gin.Context) {
	studentID, err := utils.ParseID("student_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	out, err := bc.ledgerService.Outstanding(c.Request.Context(), studentID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.OutstandingResponse{
		StudentID: out.StudentID.String(),
		Totals:    out.Totals,
		Formatted: out.Formatted,
		Fees:      response_models.FromFees(out.Fees),
	}, "Fetched outstanding balance successfully")
}

func (bc *BillingController) RecordFine(c *gin.Context) {
	feeID, err := utils.ParseID("fee_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	var req request_models.FineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	fee, err := bc.ledgerService.RecordFine(c.Request.Context(), feeID, req.Amount)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromFee(*fee), "Fine recorded")
}

func generated(r services.GenerateResult) response_models.GenerateResponse {
	return response_models.FromGenerated(r.StudentID.String(), r.Period, string(r.Outcome), r.Fee)
}
