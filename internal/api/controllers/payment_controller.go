package controllers

import (
	"github.com/gin-gonic/gin"

	"clubfees/internal/models/request_models"
	"clubfees/internal/models/response_models"
	"clubfees/internal/services"
	"clubfees/pkg/utils"
)

type PaymentController struct {
	paymentService services.PaymentService
}

func NewPaymentController(paymentService services.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

// RecordPayment godoc
// @Summary Record a payment for a student, linked to a ledger row or standalone
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param request body request_models.RecordPaymentRequest true "Record Payment Request"
// @Success 201 {object} utils.APIResponse
// @Router /students/{id}/payments [post]
func (p *PaymentController) RecordPayment(c *gin.Context) {
	studentID, err := utils.ParseID("student_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	var request request_models.RecordPaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	in, err := recordPaymentInput(request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	result, err := p.paymentService.RecordPayment(c.Request.Context(), studentID, in)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, recorded(result), "Payment recorded successfully")
}

func (p *PaymentController) ListPayments(c *gin.Context) {
	studentID, err := utils.ParseID("student_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	payments, err := p.paymentService.ListPayments(c.Request.Context(), studentID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromPayments(payments), "Fetched payments successfully")
}

func (p *PaymentController) GetPayment(c *gin.Context) {
	paymentID, err := utils.ParseID("payment_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	payment, err := p.paymentService.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromPayment(*payment), "Fetched payment successfully")
}

func (p *PaymentController) MarkPaid(c *gin.Context) {
	paymentID, err := utils.ParseID("payment_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	var request request_models.MarkPaidRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	payDate, err := utils.ParseOptionalDate("pay_date", request.PayDate)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	result, err := p.paymentService.MarkPaid(c.Request.Context(), paymentID, services.MarkPaidInput{
		PayDate:       payDate,
		TransactionID: request.TransactionID,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, recorded(result), "Payment marked as paid")
}

func (p *PaymentController) AmendAmount(c *gin.Context) {
	paymentID, err := utils.ParseID("payment_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	var request request_models.AmendAmountRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	payment, err := p.paymentService.AmendAmount(c.Request.Context(), paymentID, request.Amount)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromPayment(*payment), "Payment amount updated")
}

func (p *PaymentController) Compensate(c *gin.Context) {
	paymentID, err := utils.ParseID("payment_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	var request request_models.CompensateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			utils.RespondBindError(c, err)
			return
		}
	}

	payment, err := p.paymentService.Compensate(c.Request.Context(), paymentID, request.Note)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, response_models.FromPayment(*payment), "Compensating payment recorded")
}

func (p *PaymentController) AttachProof(c *gin.Context) {
	paymentID, err := utils.ParseID("payment_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	var request request_models.AttachmentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	attachment, err := p.paymentService.AttachProof(c.Request.Context(), paymentID, services.FileMetadata{
		FileRef:      request.FileRef,
		OriginalName: request.OriginalName,
		ContentType:  request.ContentType,
		SizeBytes:    request.SizeBytes,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.FromAttachment(attachment), "Attachment saved")
}

func (p *PaymentController) InvoiceContext(c *gin.Context) {
	paymentID, err := utils.ParseID("payment_id", c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	ic, err := p.paymentService.InvoiceContext(c.Request.Context(), paymentID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	resp := response_models.InvoiceContextResponse{
		Payment:    response_models.FromPayment(*ic.Payment),
		Attachment: response_models.FromAttachment(ic.Attachment),
		Currency:   response_models.FromCurrency(ic.Currency),
		Amounts:    ic.Amounts,
	}
	if ic.Fee != nil {
		fee := response_models.FromFee(*ic.Fee)
		resp.Fee = &fee
	}
	utils.RespondSuccess(c, resp, "Fetched invoice context successfully")
}

func recorded(r *services.PaymentResult) response_models.RecordedPaymentResponse {
	return response_models.RecordedPaymentResponse{
		Payment:    response_models.FromPayment(*r.Payment),
		Settlement: response_models.FromSettlement(r.Settlement),
	}
}
