// Package testutil holds in-memory implementations of the repository interfaces for
// service and controller tests. They keep the uniqueness and compare-and-set rules of
// the PostgreSQL schema so concurrency tests exercise the same outcomes.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"clubfees/internal/billing"
	"clubfees/internal/models/db_models"
	"clubfees/internal/repositories"
)

// Store is one in-memory database shared by every fake repository built from it.
type Store struct {
	mu sync.Mutex

	currencies  map[string]db_models.Currency
	owners      map[billing.Owner]string
	plans       map[uuid.UUID]db_models.FeePlan
	assignments map[uuid.UUID]db_models.StudentFeePlan
	feeTypes    map[uuid.UUID]db_models.FeeType
	fees        map[uuid.UUID]db_models.StudentFee
	payments    map[uuid.UUID]db_models.Payment
	attachments map[uuid.UUID]db_models.PaymentAttachment

	// BeforeCompareAndSet runs under the store lock before the check, letting a test
	// change the stored row to simulate a concurrent writer.
	BeforeCompareAndSet func(stored *db_models.StudentFee)
	// FailInsertFee makes InsertIfAbsent fail for the matching student.
	FailInsertFee func(fee *db_models.StudentFee) error
}

func NewStore() *Store {
	return &Store{
		currencies:  map[string]db_models.Currency{},
		owners:      map[billing.Owner]string{},
		plans:       map[uuid.UUID]db_models.FeePlan{},
		assignments: map[uuid.UUID]db_models.StudentFeePlan{},
		feeTypes:    map[uuid.UUID]db_models.FeeType{},
		fees:        map[uuid.UUID]db_models.StudentFee{},
		payments:    map[uuid.UUID]db_models.Payment{},
		attachments: map[uuid.UUID]db_models.PaymentAttachment{},
	}
}

func (s *Store) Currencies() repositories.ICurrencyRepository { return &currencyRepo{s} }
func (s *Store) Owners() repositories.IOwnerRepository        { return &ownerRepo{s} }
func (s *Store) Plans() repositories.IPlanRepository          { return &planRepo{s} }
func (s *Store) Assignments() repositories.IFeePlanRepository { return &assignmentRepo{s} }
func (s *Store) FeeTypes() repositories.IFeeTypeRepository    { return &feeTypeRepo{s} }
func (s *Store) Fees() repositories.IFeeLedgerRepository      { return &ledgerRepo{s} }
func (s *Store) Payments() repositories.IPaymentRepository    { return &paymentRepo{s} }

func stamp(b *db_models.BaseModel) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now().Unix()
	if b.CreatedAt == 0 {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// PutAssignment stores an assignment as is, skipping service validation.
func (s *Store) PutAssignment(a db_models.StudentFeePlan) db_models.StudentFeePlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&a.BaseModel)
	a.Plan = nil
	s.assignments[a.StudentID] = a
	return a
}

// Fee returns the stored ledger row for id.
func (s *Store) Fee(id uuid.UUID) (db_models.StudentFee, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fees[id]
	return f, ok
}

// FeeCount counts ledger rows for a student.
func (s *Store) FeeCount(studentID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.fees {
		if f.StudentID == studentID {
			n++
		}
	}
	return n
}

type currencyRepo struct{ s *Store }

func (r *currencyRepo) GetByCode(ctx context.Context, code string) (*db_models.Currency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.currencies[strings.ToUpper(code)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *currencyRepo) ListActive(ctx context.Context) ([]db_models.Currency, error) {
	return r.filter(func(c db_models.Currency) bool { return c.IsActive }), nil
}

func (r *currencyRepo) FindDefaults(ctx context.Context) ([]db_models.Currency, error) {
	return r.filter(func(c db_models.Currency) bool { return c.IsActive && c.IsDefault }), nil
}

func (r *currencyRepo) filter(keep func(db_models.Currency) bool) []db_models.Currency {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []db_models.Currency
	for _, c := range r.s.currencies {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (r *currencyRepo) Seed(ctx context.Context, currencies []db_models.Currency) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range currencies {
		if _, ok := r.s.currencies[c.Code]; ok {
			continue
		}
		stamp(&c.BaseModel)
		r.s.currencies[c.Code] = c
		n++
	}
	return n, nil
}

type ownerRepo struct{ s *Store }

func (r *ownerRepo) GetDefaultCurrency(ctx context.Context, owner billing.Owner) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.owners[owner], nil
}

func (r *ownerRepo) SetDefaultCurrency(ctx context.Context, owner billing.Owner, code string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.owners[owner] = code
	return nil
}

type planRepo struct{ s *Store }

func (r *planRepo) nameTaken(p *db_models.FeePlan) bool {
	for _, other := range r.s.plans {
		if other.ID != p.ID && other.OwnerKind == p.OwnerKind && other.OwnerID == p.OwnerID && other.Name == p.Name {
			return true
		}
	}
	return false
}

func (r *planRepo) Create(ctx context.Context, plan *db_models.FeePlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(plan) {
		return billing.NewFieldError("PlanRepository.Create", "name", billing.ErrDuplicateName)
	}
	stamp(&plan.BaseModel)
	r.s.plans[plan.ID] = *plan
	return nil
}

func (r *planRepo) Update(ctx context.Context, plan *db_models.FeePlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(plan) {
		return billing.NewFieldError("PlanRepository.Update", "name", billing.ErrDuplicateName)
	}
	stamp(&plan.BaseModel)
	r.s.plans[plan.ID] = *plan
	return nil
}

func (r *planRepo) GetByID(ctx context.Context, id uuid.UUID) (*db_models.FeePlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *planRepo) ListByOwner(ctx context.Context, owner billing.Owner, activeOnly bool) ([]db_models.FeePlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []db_models.FeePlan
	for _, p := range r.s.plans {
		if p.Owner() != owner || (activeOnly && !p.IsActive) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *planRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[id]; !ok {
		return billing.NewError("PlanRepository.Delete", billing.ErrNotFound)
	}
	for k, a := range r.s.assignments {
		if a.PlanID != nil && *a.PlanID == id {
			a.PlanID = nil
			r.s.assignments[k] = a
		}
	}
	delete(r.s.plans, id)
	return nil
}

type assignmentRepo struct{ s *Store }

func (r *assignmentRepo) withPlan(a db_models.StudentFeePlan) db_models.StudentFeePlan {
	if a.PlanID != nil {
		if p, ok := r.s.plans[*a.PlanID]; ok {
			a.Plan = &p
		}
	}
	return a
}

func (r *assignmentRepo) GetByStudent(ctx context.Context, studentID uuid.UUID) (*db_models.StudentFeePlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[studentID]
	if !ok {
		return nil, nil
	}
	a = r.withPlan(a)
	return &a, nil
}

func (r *assignmentRepo) Save(ctx context.Context, assignment *db_models.StudentFeePlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.assignments[assignment.StudentID]; ok && existing.ID != assignment.ID {
		return billing.NewError("FeePlanRepository.Save", billing.ErrConcurrentUpdate)
	}
	stamp(&assignment.BaseModel)
	stored := *assignment
	stored.Plan = nil
	r.s.assignments[assignment.StudentID] = stored
	return nil
}

func (r *assignmentRepo) ListActive(ctx context.Context, after uuid.UUID, limit int) ([]db_models.StudentFeePlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []db_models.StudentFeePlan
	for _, a := range r.s.assignments {
		if a.IsActive && strings.Compare(a.StudentID.String(), after.String()) > 0 {
			out = append(out, r.withPlan(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID.String() < out[j].StudentID.String() })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *assignmentRepo) UpdateHints(ctx context.Context, studentID uuid.UUID, hints billing.Hints) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[studentID]
	if !ok {
		return nil
	}
	start, due := hints.NextPeriodStart, hints.NextDueDate
	a.NextPeriodStart, a.NextDueDate = &start, &due
	r.s.assignments[studentID] = a
	return nil
}

type feeTypeRepo struct{ s *Store }

func (r *feeTypeRepo) GetByID(ctx context.Context, id uuid.UUID) (*db_models.FeeType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ft, ok := r.s.feeTypes[id]
	if !ok {
		return nil, nil
	}
	return &ft, nil
}

func (r *feeTypeRepo) GetByCode(ctx context.Context, code string) (*db_models.FeeType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.byCode(code), nil
}

func (r *feeTypeRepo) byCode(code string) *db_models.FeeType {
	for _, ft := range r.s.feeTypes {
		if ft.Code == code {
			return &ft
		}
	}
	return nil
}

func (r *feeTypeRepo) EnsureByCode(ctx context.Context, code, name string, recurring bool) (*db_models.FeeType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ft := r.byCode(code); ft != nil {
		return ft, nil
	}
	ft := db_models.FeeType{Code: code, Name: name, IsRecurring: recurring}
	stamp(&ft.BaseModel)
	r.s.feeTypes[ft.ID] = ft
	return &ft, nil
}

type ledgerRepo struct{ s *Store }

func (r *ledgerRepo) withFeeType(f db_models.StudentFee) db_models.StudentFee {
	if ft, ok := r.s.feeTypes[f.FeeTypeID]; ok {
		f.FeeType = &ft
	}
	return f
}

func (r *ledgerRepo) InsertIfAbsent(ctx context.Context, fee *db_models.StudentFee) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailInsertFee != nil {
		if err := r.s.FailInsertFee(fee); err != nil {
			return false, err
		}
	}
	for _, f := range r.s.fees {
		if f.StudentID == fee.StudentID && f.FeeTypeID == fee.FeeTypeID && f.Period == fee.Period {
			return false, nil
		}
	}
	stamp(&fee.BaseModel)
	stored := *fee
	stored.FeeType = nil
	r.s.fees[fee.ID] = stored
	return true, nil
}

func (r *ledgerRepo) GetByKey(ctx context.Context, studentID, feeTypeID uuid.UUID, period string) (*db_models.StudentFee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range r.s.fees {
		if f.StudentID == studentID && f.FeeTypeID == feeTypeID && f.Period == period {
			return &f, nil
		}
	}
	return nil, nil
}

func (r *ledgerRepo) GetByID(ctx context.Context, id uuid.UUID) (*db_models.StudentFee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.fees[id]
	if !ok {
		return nil, nil
	}
	f = r.withFeeType(f)
	return &f, nil
}

func (r *ledgerRepo) ListByStudent(ctx context.Context, studentID uuid.UUID, from, to string) ([]db_models.StudentFee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []db_models.StudentFee
	for _, f := range r.s.fees {
		if f.StudentID != studentID || (from != "" && f.Period < from) || (to != "" && f.Period > to) {
			continue
		}
		out = append(out, r.withFeeType(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

func (r *ledgerRepo) LatestBillingPeriod(ctx context.Context, studentID, feeTypeID uuid.UUID) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	latest := ""
	for _, f := range r.s.fees {
		if f.StudentID == studentID && f.FeeTypeID == feeTypeID && f.IsBillingMonth && f.Period > latest {
			latest = f.Period
		}
	}
	return latest, nil
}

func (r *ledgerRepo) CompareAndSet(ctx context.Context, expected *db_models.StudentFee, paid, fine decimal.Decimal, status billing.FeeStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.fees[expected.ID]
	if ok && r.s.BeforeCompareAndSet != nil {
		r.s.BeforeCompareAndSet(&stored)
		r.s.fees[expected.ID] = stored
	}
	if !ok || !stored.PaidAmount.Equal(expected.PaidAmount) || !stored.Fine.Equal(expected.Fine) {
		return billing.NewError("FeeLedgerRepository.CompareAndSet", billing.ErrConcurrentUpdate)
	}
	stored.PaidAmount, stored.Fine, stored.Status = paid, fine, string(status)
	r.s.fees[expected.ID] = stored
	return nil
}

type paymentRepo struct{ s *Store }

func (r *paymentRepo) hydrate(p db_models.Payment) db_models.Payment {
	if a, ok := r.s.attachments[p.ID]; ok {
		p.Attachment = &a
	}
	if p.StudentFeeID != nil {
		if f, ok := r.s.fees[*p.StudentFeeID]; ok {
			p.StudentFee = &f
		}
	}
	return p
}

func (r *paymentRepo) Create(ctx context.Context, payment *db_models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if payment.CompensatesPaymentID != nil {
		for _, p := range r.s.payments {
			if p.CompensatesPaymentID != nil && *p.CompensatesPaymentID == *payment.CompensatesPaymentID {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	stamp(&payment.BaseModel)
	stored := *payment
	stored.StudentFee, stored.Attachment = nil, nil
	r.s.payments[payment.ID] = stored
	return nil
}

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*db_models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	p = r.hydrate(p)
	return &p, nil
}

func (r *paymentRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]db_models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []db_models.Payment
	for _, p := range r.s.payments {
		if p.StudentID == studentID {
			out = append(out, r.hydrate(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period > out[j].Period
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out, nil
}

func (r *paymentRepo) MarkPaid(ctx context.Context, id uuid.UUID, payDate time.Time, transactionID *string) error {
	return r.updateUnpaid("PaymentRepository.MarkPaid", id, func(p *db_models.Payment) {
		p.Status = db_models.PaymentPaid
		p.PayDate = &payDate
		if transactionID != nil {
			p.TransactionID = transactionID
		}
	})
}

func (r *paymentRepo) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.updateUnpaid("PaymentRepository.UpdateAmount", id, func(p *db_models.Payment) {
		p.Amount = amount
	})
}

func (r *paymentRepo) updateUnpaid(op string, id uuid.UUID, apply func(p *db_models.Payment)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok || p.Status != db_models.PaymentUnpaid {
		return billing.NewError(op, billing.ErrPaymentFinal)
	}
	apply(&p)
	r.s.payments[id] = p
	return nil
}

func (r *paymentRepo) UpsertAttachment(ctx context.Context, attachment *db_models.PaymentAttachment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.attachments[attachment.PaymentID]; ok {
		attachment.ID = existing.ID
		attachment.CreatedAt = existing.CreatedAt
	}
	stamp(&attachment.BaseModel)
	r.s.attachments[attachment.PaymentID] = *attachment
	return nil
}

func (r *paymentRepo) FindCompensation(ctx context.Context, paymentID uuid.UUID) (*db_models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.CompensatesPaymentID != nil && *p.CompensatesPaymentID == paymentID {
			return &p, nil
		}
	}
	return nil, nil
}
