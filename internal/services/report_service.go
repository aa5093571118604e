package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"clubfees/internal/billing"
	"clubfees/internal/models/db_models"
	"clubfees/internal/repositories"
)

const (
	defaultReportMonths = 12
	recentPaymentsLimit = 10
)

// ReportRange bounds a collections report. Zero periods take defaults.
type ReportRange struct {
	From billing.Period
	To   billing.Period
}

// PeriodSummary is one (period, currency) bucket of a collections report.
type PeriodSummary struct {
	Period       string          `json:"period"`
	CurrencyCode string          `json:"currency_code"`
	Billed       decimal.Decimal `json:"billed"`
	Collected    decimal.Decimal `json:"collected"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	Charges      int64           `json:"charges"`
	Settled      int64           `json:"settled"`
	Payments     int64           `json:"payments"`
}

type CollectionsReport struct {
	From           string
	To             string
	Periods        []PeriodSummary
	Billed         map[string]decimal.Decimal
	Collected      map[string]decimal.Decimal
	Outstanding    map[string]decimal.Decimal
	Formatted      map[string]map[string]string
	RecentPayments []db_models.Payment
}

type ReportService interface {
	BuildCollections(ctx context.Context, rng ReportRange) (*CollectionsReport, error)
}

type reportService struct {
	repo       repositories.IReportRepository
	currencies CurrencyRegistry
	now        func() time.Time
	log        *zap.Logger
}

func NewReportService(repo repositories.IReportRepository, currencies CurrencyRegistry, log *zap.Logger) ReportService {
	return &reportService{
		repo:       repo,
		currencies: currencies,
		now:        time.Now,
		log:        log.Named("report.service"),
	}
}

// normalizeRange fills missing bounds with the twelve periods ending now and puts them in order.
func (s *reportService) normalizeRange(r ReportRange) ReportRange {
	out := r
	if out.To.IsZero() {
		out.To = billing.PeriodOf(s.now())
	}
	if out.From.IsZero() {
		out.From = out.To.AddMonths(-(defaultReportMonths - 1))
	}
	if out.To.Before(out.From) {
		out.From, out.To = out.To, out.From
	}
	return out
}

func (s *reportService) BuildCollections(ctx context.Context, rng ReportRange) (*CollectionsReport, error) {
	rng = s.normalizeRange(rng)
	from, to := rng.From.String(), rng.To.String()

	ledgerRows, err := s.repo.LedgerByPeriod(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("ledger totals: %w", err)
	}
	collectionRows, err := s.repo.CollectionsByPeriod(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("collection totals: %w", err)
	}

	type key struct{ period, currency string }
	buckets := map[key]*PeriodSummary{}
	bucket := func(period, currency string) *PeriodSummary {
		k := key{period, currency}
		b, ok := buckets[k]
		if !ok {
			b = &PeriodSummary{Period: period, CurrencyCode: currency}
			buckets[k] = b
		}
		return b
	}
	for _, r := range ledgerRows {
		b := bucket(r.Period, r.CurrencyCode)
		b.Billed = r.Billed
		b.Outstanding = decimal.Max(r.Billed.Sub(r.Paid), decimal.Zero)
		b.Charges = r.Charges
		b.Settled = r.Settled
	}
	for _, r := range collectionRows {
		b := bucket(r.Period, r.CurrencyCode)
		b.Collected = r.Collected
		b.Payments = r.Payments
	}

	report := &CollectionsReport{
		From:        from,
		To:          to,
		Periods:     make([]PeriodSummary, 0, len(buckets)),
		Billed:      map[string]decimal.Decimal{},
		Collected:   map[string]decimal.Decimal{},
		Outstanding: map[string]decimal.Decimal{},
		Formatted:   map[string]map[string]string{},
	}
	for _, b := range buckets {
		report.Periods = append(report.Periods, *b)
		report.Billed[b.CurrencyCode] = report.Billed[b.CurrencyCode].Add(b.Billed)
		report.Collected[b.CurrencyCode] = report.Collected[b.CurrencyCode].Add(b.Collected)
		report.Outstanding[b.CurrencyCode] = report.Outstanding[b.CurrencyCode].Add(b.Outstanding)
	}
	sort.Slice(report.Periods, func(i, j int) bool {
		if report.Periods[i].Period != report.Periods[j].Period {
			return report.Periods[i].Period < report.Periods[j].Period
		}
		return report.Periods[i].CurrencyCode < report.Periods[j].CurrencyCode
	})

	for code := range report.Billed {
		info, err := s.currencies.Resolve(ctx, code)
		if err != nil {
			// a retired currency still reports raw totals
			s.log.Warn("currency not resolvable for report", zap.String("currency", code), zap.Error(err))
			continue
		}
		report.Formatted[code] = map[string]string{
			"billed":      info.Format(report.Billed[code]),
			"collected":   info.Format(report.Collected[code]),
			"outstanding": info.Format(report.Outstanding[code]),
		}
	}

	recent, err := s.repo.RecentPaidPayments(ctx, recentPaymentsLimit)
	if err != nil {
		return nil, fmt.Errorf("recent payments: %w", err)
	}
	report.RecentPayments = recent
	return report, nil
}
