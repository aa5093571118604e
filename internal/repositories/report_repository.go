package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"clubfees/internal/billing"
	"clubfees/internal/infra"
	"clubfees/internal/models/db_models"
)

// IReportRepository aggregates the ledger and payments per billing period. Period
// bounds are inclusive YYYY-MM strings.
type IReportRepository interface {
	LedgerByPeriod(ctx context.Context, from, to string) ([]PeriodLedgerRow, error)
	CollectionsByPeriod(ctx context.Context, from, to string) ([]PeriodCollectionRow, error)
	RecentPaidPayments(ctx context.Context, limit int) ([]db_models.Payment, error)
}

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) IReportRepository {
	return &ReportRepository{db: db}
}

type PeriodLedgerRow struct {
	Period       string          `gorm:"column:period"`
	CurrencyCode string          `gorm:"column:currency_code"`
	Billed       decimal.Decimal `gorm:"column:billed"`
	Paid         decimal.Decimal `gorm:"column:paid"`
	Charges      int64           `gorm:"column:charges"`
	Settled      int64           `gorm:"column:settled"`
}

type PeriodCollectionRow struct {
	Period       string          `gorm:"column:period"`
	CurrencyCode string          `gorm:"column:currency_code"`
	Collected    decimal.Decimal `gorm:"column:collected"`
	Payments     int64           `gorm:"column:payments"`
}

func (r *ReportRepository) LedgerByPeriod(ctx context.Context, from, to string) ([]PeriodLedgerRow, error) {
	var rows []PeriodLedgerRow
	err := infra.Conn(ctx, r.db).
		Table("student_fees").
		Select(`
			period,
			currency_code,
			SUM(amount + fine - discount) AS billed,
			SUM(paid_amount) AS paid,
			COUNT(*) AS charges,
			COUNT(*) FILTER (WHERE status = ?) AS settled`, string(billing.FeePaid)).
		Where("deleted_at IS NULL").
		Where("period BETWEEN ? AND ?", from, to).
		Group("period, currency_code").
		Order("period ASC, currency_code ASC").
		Find(&rows).Error
	return rows, err
}

// CollectionsByPeriod sums paid payments, compensations included, by the period they
// were recorded against.
func (r *ReportRepository) CollectionsByPeriod(ctx context.Context, from, to string) ([]PeriodCollectionRow, error) {
	var rows []PeriodCollectionRow
	err := infra.Conn(ctx, r.db).
		Table("payments").
		Select("period, currency_code, SUM(amount) AS collected, COUNT(*) AS payments").
		Where("status = ?", db_models.PaymentPaid).
		Where("deleted_at IS NULL").
		Where("period BETWEEN ? AND ?", from, to).
		Group("period, currency_code").
		Order("period ASC, currency_code ASC").
		Find(&rows).Error
	return rows, err
}

func (r *ReportRepository) RecentPaidPayments(ctx context.Context, limit int) ([]db_models.Payment, error) {
	var payments []db_models.Payment
	err := infra.Conn(ctx, r.db).
		Where("status = ?", db_models.PaymentPaid).
		Order("pay_date DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}
