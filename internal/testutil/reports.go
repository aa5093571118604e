package testutil

import (
	"context"
	"sort"

	"clubfees/internal/billing"
	"clubfees/internal/models/db_models"
	"clubfees/internal/repositories"
)

func (s *Store) Reports() repositories.IReportRepository { return &reportRepo{s} }

type reportRepo struct{ s *Store }

type periodKey struct{ period, currency string }

func (r *reportRepo) LedgerByPeriod(ctx context.Context, from, to string) ([]repositories.PeriodLedgerRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sums := map[periodKey]*repositories.PeriodLedgerRow{}
	for _, f := range r.s.fees {
		if f.Period < from || f.Period > to {
			continue
		}
		k := periodKey{f.Period, f.CurrencyCode}
		row, ok := sums[k]
		if !ok {
			row = &repositories.PeriodLedgerRow{Period: f.Period, CurrencyCode: f.CurrencyCode}
			sums[k] = row
		}
		row.Billed = row.Billed.Add(f.AmountDue())
		row.Paid = row.Paid.Add(f.PaidAmount)
		row.Charges++
		if f.Status == string(billing.FeePaid) {
			row.Settled++
		}
	}
	out := make([]repositories.PeriodLedgerRow, 0, len(sums))
	for _, row := range sums {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		return periodKey{out[i].Period, out[i].CurrencyCode}.less(periodKey{out[j].Period, out[j].CurrencyCode})
	})
	return out, nil
}

func (r *reportRepo) CollectionsByPeriod(ctx context.Context, from, to string) ([]repositories.PeriodCollectionRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sums := map[periodKey]*repositories.PeriodCollectionRow{}
	for _, p := range r.s.payments {
		if p.Status != db_models.PaymentPaid || p.Period < from || p.Period > to {
			continue
		}
		k := periodKey{p.Period, p.CurrencyCode}
		row, ok := sums[k]
		if !ok {
			row = &repositories.PeriodCollectionRow{Period: p.Period, CurrencyCode: p.CurrencyCode}
			sums[k] = row
		}
		row.Collected = row.Collected.Add(p.Amount)
		row.Payments++
	}
	out := make([]repositories.PeriodCollectionRow, 0, len(sums))
	for _, row := range sums {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		return periodKey{out[i].Period, out[i].CurrencyCode}.less(periodKey{out[j].Period, out[j].CurrencyCode})
	})
	return out, nil
}

func (r *reportRepo) RecentPaidPayments(ctx context.Context, limit int) ([]db_models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []db_models.Payment
	for _, p := range r.s.payments {
		if p.Status == db_models.PaymentPaid {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PayDate.Equal(*out[j].PayDate) {
			return out[i].PayDate.After(*out[j].PayDate)
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (k periodKey) less(o periodKey) bool {
	if k.period != o.period {
		return k.period < o.period
	}
	return k.currency < o.currency
}
