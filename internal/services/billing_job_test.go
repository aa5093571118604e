package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBillingJobTickRunsCurrentPeriod(t *testing.T) {
	h := newHarness(t)
	studentID := h.assignCustom(t, club(), "100", "2025-01-01", nil)

	job := NewBillingJob(h.billing, time.Hour, zap.NewNop())
	job.now = func() time.Time { return date("2025-03-05") }
	job.Tick(context.Background())
	job.Tick(context.Background())

	assert.Equal(t, 1, h.store.FeeCount(studentID))
	fees, err := h.ledger.ListStudentFees(context.Background(), studentID, nil, nil)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, "2025-03", fees[0].Period)
}

func TestBillingJobTickUsesUTCPeriod(t *testing.T) {
	h := newHarness(t)
	studentID := h.assignCustom(t, club(), "100", "2025-01-01", nil)

	job := NewBillingJob(h.billing, time.Hour, zap.NewNop())
	kl := time.FixedZone("MYT", 8*60*60)
	job.now = func() time.Time { return time.Date(2025, time.April, 1, 2, 0, 0, 0, kl) }
	job.Tick(context.Background())

	fees, err := h.ledger.ListStudentFees(context.Background(), studentID, nil, nil)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, "2025-03", fees[0].Period)
}

func TestBillingJobDisabled(t *testing.T) {
	h := newHarness(t)
	job := NewBillingJob(h.billing, 0, zap.NewNop())
	job.Start()
	assert.NoError(t, job.Stop(context.Background()))
}

func TestBillingJobStopsLoop(t *testing.T) {
	h := newHarness(t)
	job := NewBillingJob(h.billing, time.Hour, zap.NewNop())
	job.now = func() time.Time { return date("2025-03-05") }
	job.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, job.Stop(ctx))
}
