package billing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfLooksThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("run student: %w", NewError("Resolve", ErrNoAmountConfigured))

	assert.Equal(t, KindConfiguration, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, ErrNoAmountConfigured)
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("x: %w", ErrDuplicatePeriod)))
	assert.True(t, IsConflict(ErrConcurrentUpdate))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestFieldErrorMessage(t *testing.T) {
	err := NewFieldError("ValidateAssignment", "interval_count", ErrMissingIntervalCount)
	assert.Equal(t, "billing: ValidateAssignment: interval_count: custom interval requires a positive interval_count", err.Error())
	assert.Equal(t, "validation", err.Kind.String())
}

func TestParseOwner(t *testing.T) {
	id := uuid.New()

	o, err := ParseOwner("Club", id.String())
	require.NoError(t, err)
	assert.Equal(t, Owner{Kind: OwnerClub, ID: id}, o)

	o, err = ParseOwner("org", id.String())
	require.NoError(t, err)
	assert.Equal(t, OwnerOrganization, o.Kind)

	_, err = ParseOwner("school", id.String())
	assert.ErrorIs(t, err, ErrInvalidOwner)
	_, err = ParseOwner("club", "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidOwner)
}

func TestValidateAssignment(t *testing.T) {
	assert.NoError(t, ValidateAssignment(Assignment{}))
	assert.ErrorIs(t, ValidateAssignment(Assignment{Interval: IntervalCustom}), ErrMissingIntervalCount)
	assert.ErrorIs(t, ValidateAssignment(Assignment{Interval: "weekly"}), ErrInvalidInterval)
	assert.ErrorIs(t, ValidateAssignment(Assignment{CustomAmount: ptrDec("-1")}), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateAssignment(Assignment{CurrencyCode: "RM"}), ErrInvalidCurrencyCode)
	assert.ErrorIs(t, ValidateAssignment(Assignment{
		Discount: &Discount{Type: DiscountPercent, Value: dec("101")},
	}), ErrInvalidDiscountValue)
}
