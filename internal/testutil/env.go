package testutil

import (
	"context"
	"maps"
	"time"

	"clubfees/internal/billing"
	"clubfees/internal/config"
	"clubfees/internal/infra"
)

// Config returns the settings the services run with by default.
func Config() *config.Config {
	return &config.Config{
		Port:             "8080",
		LogLevel:         "debug",
		LogFormat:        "console",
		CurrencyCacheTTL: time.Minute,
		Billing: config.BillingConfig{
			FeeTypeCode:       "monthly_tuition",
			GraceDays:         0,
			NonMonthlyMode:    billing.LedgerMonthlyRows,
			OverpaymentPolicy: billing.OverpaymentCap,
			Workers:           4,
			PageSize:          2,
		},
		Payment: config.PaymentConfig{LockAttachmentsWhenPaid: true},
	}
}

// Transactor snapshots the store and restores it when fn fails, which is enough to
// observe rollback in single-writer tests.
func (s *Store) Transactor() infra.Transactor {
	return storeTx{s}
}

type storeTx struct{ s *Store }

func (t storeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s := t.s
	s.mu.Lock()
	fees := maps.Clone(s.fees)
	payments := maps.Clone(s.payments)
	attachments := maps.Clone(s.attachments)
	assignments := maps.Clone(s.assignments)
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.fees, s.payments, s.attachments, s.assignments = fees, payments, attachments, assignments
		s.mu.Unlock()
		return err
	}
	return nil
}
