package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"clubfees/internal/models/response_models"
	"clubfees/internal/services"
	"clubfees/pkg/utils"
)

type ReportController struct {
	reportService services.ReportService
}

func NewReportController(reportService services.ReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

// Collections godoc
// @Summary Billed, collected and outstanding totals per period and currency
// @Tags Reports
// @Produce json
// @Param from query string false "First period (YYYY-MM), defaults to eleven months before to"
// @Param to query string false "Last period (YYYY-MM), defaults to the current month"
// @Success 200 {object} utils.APIResponse
// @Router /billing/reports/collections [get]
func (rc *ReportController) Collections(c *gin.Context) {
	var rng services.ReportRange
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
	if from != nil {
		rng.From = *from
	}
	if to != nil {
		rng.To = *to
	}

	report, err := rc.reportService.BuildCollections(c.Request.Context(), rng)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	periods := lo.Map(report.Periods, func(p services.PeriodSummary, _ int) response_models.PeriodSummaryResponse {
		return response_models.PeriodSummaryResponse(p)
	})
	utils.RespondSuccess(c, response_models.FromCollections(report.From, report.To, periods,
		report.Billed, report.Collected, report.Outstanding, report.Formatted, report.RecentPayments),
		"Collections report built")
}
