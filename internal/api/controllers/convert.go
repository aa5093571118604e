package controllers

import (
	"time"

	"github.com/shopspring/decimal"

	"clubfees/internal/billing"
	"clubfees/internal/models/db_models"
	"clubfees/internal/models/request_models"
	"clubfees/internal/services"
	"clubfees/pkg/utils"
)

func discountOf(d *request_models.DiscountRequest) *billing.Discount {
	if d == nil {
		return nil
	}
	return &billing.Discount{Type: billing.DiscountType(d.Type), Value: d.Value}
}

func activeOrDefault(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}

func planInput(owner billing.Owner, name string, description *string, base decimal.Decimal, currency,
	interval string, count int, discount *request_models.DiscountRequest, effectiveFrom string, active *bool) (services.PlanInput, error) {
	iv, err := billing.ParseInterval(interval)
	if err != nil {
		return services.PlanInput{}, billing.NewFieldError("parse", "interval", err)
	}
	from, err := utils.ParseDate("effective_from", effectiveFrom)
	if err != nil {
		return services.PlanInput{}, err
	}
	return services.PlanInput{
		Owner:         owner,
		Name:          name,
		Description:   description,
		BaseAmount:    base,
		CurrencyCode:  currency,
		Interval:      iv,
		IntervalCount: count,
		Discount:      discountOf(discount),
		EffectiveFrom: from,
		IsActive:      activeOrDefault(active),
	}, nil
}

func assignmentInput(req request_models.AssignmentRequest) (services.AssignmentInput, error) {
	owner, err := billing.ParseOwner(req.OwnerKind, req.OwnerID)
	if err != nil {
		return services.AssignmentInput{}, err
	}
	planID, err := utils.ParseOptionalID("plan_id", req.PlanID)
	if err != nil {
		return services.AssignmentInput{}, err
	}
	feeTypeID, err := utils.ParseOptionalID("fee_type_id", req.FeeTypeID)
	if err != nil {
		return services.AssignmentInput{}, err
	}
	var from time.Time
	if req.EffectiveFrom != "" {
		if from, err = utils.ParseDate("effective_from", req.EffectiveFrom); err != nil {
			return services.AssignmentInput{}, err
		}
	}
	return services.AssignmentInput{
		Owner:         owner,
		PlanID:        planID,
		FeeTypeID:     feeTypeID,
		CustomAmount:  req.CustomAmount,
		CurrencyCode:  req.CurrencyCode,
		Interval:      billing.Interval(req.Interval),
		IntervalCount: req.IntervalCount,
		Discount:      discountOf(req.Discount),
		EffectiveFrom: from,
		IsActive:      activeOrDefault(req.IsActive),
	}, nil
}

func recordPaymentInput(req request_models.RecordPaymentRequest) (services.RecordPaymentInput, error) {
	feeID, err := utils.ParseOptionalID("student_fee_id", req.StudentFeeID)
	if err != nil {
		return services.RecordPaymentInput{}, err
	}
	feeTypeID, err := utils.ParseOptionalID("fee_type_id", req.FeeTypeID)
	if err != nil {
		return services.RecordPaymentInput{}, err
	}
	payDate, err := utils.ParseOptionalDate("pay_date", req.PayDate)
	if err != nil {
		return services.RecordPaymentInput{}, err
	}
	dueDate, err := utils.ParseOptionalDate("due_date", req.DueDate)
	if err != nil {
		return services.RecordPaymentInput{}, err
	}
	return services.RecordPaymentInput{
		StudentFeeID:  feeID,
		FeeTypeID:     feeTypeID,
		Period:        req.Period,
		Amount:        req.Amount,
		Method:        db_models.PaymentMethod(req.Method),
		Status:        db_models.PaymentStatus(req.Status),
		TransactionID: req.TransactionID,
		PayDate:       payDate,
		DueDate:       dueDate,
		CurrencyCode:  req.CurrencyCode,
		BankTransfer:  req.BankTransfer,
		Note:          req.Note,
	}, nil
}
