package billing

import (
	"errors"
	"fmt"
)

// Kind classifies billing failures so callers can decide whether to skip, retry or
// surface them.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfiguration is fatal for one student's run; the batch continues.
	KindConfiguration
	// KindValidation is rejected at write time and never reaches the scheduler.
	KindValidation
	// KindConflict is retried once with fresh reads.
	KindConflict
	// KindPolicy is rejected; the caller must resubmit.
	KindPolicy
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindPolicy:
		return "policy"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownCurrency      = errors.New("unknown or inactive currency")
	ErrNoDefaultConfigured  = errors.New("no default currency configured")
	ErrNoAmountConfigured   = errors.New("no amount configured")
	ErrNoEffectiveDate      = errors.New("no effective_from date configured")
	ErrInvalidDiscountValue = errors.New("invalid discount value")
	ErrInvalidInterval      = errors.New("invalid billing interval")
	ErrMissingIntervalCount = errors.New("custom interval requires a positive interval_count")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidPeriod        = errors.New("invalid billing period")
	ErrInvalidOwner         = errors.New("invalid owner reference")
	ErrRequired             = errors.New("value is required")
	ErrInvalidCurrencyCode  = errors.New("currency code must be three letters")
	ErrDuplicatePeriod      = errors.New("period already billed with a different amount")
	ErrConcurrentUpdate     = errors.New("concurrent update")
	ErrOverpayment          = errors.New("payment exceeds amount due")
	ErrChargeSettled        = errors.New("charge already settled")
	ErrPaymentFinal         = errors.New("payment already marked paid")
	ErrAttachmentFinal      = errors.New("attachment is final for a paid payment")
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateName        = errors.New("name already used by this owner")
	ErrAmbiguousDefault     = errors.New("more than one default currency flagged")
	ErrPlanOwnerMismatch    = errors.New("plan belongs to another owner")
	ErrCurrencyMismatch     = errors.New("currency differs from the charge currency")
	ErrPeriodMismatch       = errors.New("period differs from the charge period")
	ErrAlreadyCompensated   = errors.New("payment already compensated")
	ErrPaymentNotPaid       = errors.New("payment is not paid")
	ErrInvalidValue         = errors.New("invalid value")
)

var sentinelKinds = map[error]Kind{
	ErrUnknownCurrency:      KindConfiguration,
	ErrNoDefaultConfigured:  KindConfiguration,
	ErrNoAmountConfigured:   KindConfiguration,
	ErrNoEffectiveDate:      KindConfiguration,
	ErrInvalidDiscountValue: KindValidation,
	ErrInvalidInterval:      KindValidation,
	ErrMissingIntervalCount: KindValidation,
	ErrInvalidAmount:        KindValidation,
	ErrInvalidPeriod:        KindValidation,
	ErrInvalidOwner:         KindValidation,
	ErrRequired:             KindValidation,
	ErrInvalidCurrencyCode:  KindValidation,
	ErrDuplicatePeriod:      KindConflict,
	ErrConcurrentUpdate:     KindConflict,
	ErrOverpayment:          KindPolicy,
	ErrChargeSettled:        KindPolicy,
	ErrPaymentFinal:         KindPolicy,
	ErrAttachmentFinal:      KindPolicy,
	ErrNotFound:             KindNotFound,
	ErrDuplicateName:        KindConflict,
	ErrAmbiguousDefault:     KindConfiguration,
	ErrPlanOwnerMismatch:    KindValidation,
	ErrCurrencyMismatch:     KindValidation,
	ErrPeriodMismatch:       KindValidation,
	ErrAlreadyCompensated:   KindConflict,
	ErrPaymentNotPaid:       KindPolicy,
	ErrInvalidValue:         KindValidation,
}

// Error wraps a billing failure with the operation and, for validation failures, the
// offending field.
type Error struct {
	Kind  Kind
	Op    string
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("billing: %s: %s: %v", e.Op, e.Field, e.Err)
	}
	return fmt.Sprintf("billing: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error whose kind is taken from the wrapped sentinel.
func NewError(op string, err error) *Error {
	return &Error{Kind: KindOf(err), Op: op, Err: err}
}

// NewFieldError builds a validation Error naming the rejected field.
func NewFieldError(op, field string, err error) *Error {
	k := KindOf(err)
	if k == KindUnknown {
		k = KindValidation
	}
	return &Error{Kind: k, Op: op, Field: field, Err: err}
}

// NewValidationError builds a validation Error whatever the sentinel's own kind.
func NewValidationError(op, field string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Field: field, Err: err}
}

// KindOf reports the kind of err, looking through wrapping.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var be *Error
	if errors.As(err, &be) && be.Kind != KindUnknown {
		return be.Kind
	}
	for sentinel, k := range sentinelKinds {
		if errors.Is(err, sentinel) {
			return k
		}
	}
	return KindUnknown
}

// IsConflict reports whether err should be retried with fresh reads.
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}
