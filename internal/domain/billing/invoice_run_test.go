package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingRun(t *testing.T) *InvoiceRun {
	t.Helper()
	run, err := NewInvoiceRun(uuid.New(), date(2026, 3, 1), date(2026, 4, 1))
	require.NoError(t, err)
	return run
}

func TestInvoiceRunLifecycle(t *testing.T) {
	t.Run("per lease failures do not fail the run", func(t *testing.T) {
		run := pendingRun(t)
		require.NoError(t, run.Start(3, date(2026, 3, 1)))

		require.NoError(t, run.RecordSuccess(uuid.New(), uuid.New()))
		require.NoError(t, run.RecordFailure(uuid.New(), "no term covers billing period"))
		require.NoError(t, run.RecordSuccess(uuid.New(), uuid.New()))
		require.NoError(t, run.Complete(date(2026, 3, 1)))

		assert.Equal(t, InvoiceRunStatusCompleted, run.Status)
		assert.Equal(t, 2, run.SuccessCount)
		assert.Equal(t, 1, run.FailureCount)
		assert.Len(t, run.Items, 3)
	})

	t.Run("skipped leases are counted separately", func(t *testing.T) {
		run := pendingRun(t)
		require.NoError(t, run.Start(2, date(2026, 3, 1)))

		require.NoError(t, run.RecordSkipped(uuid.New(), "invoice already exists for period"))
		require.NoError(t, run.RecordSuccess(uuid.New(), uuid.New()))
		require.NoError(t, run.Complete(date(2026, 3, 1)))

		assert.Equal(t, 1, run.SkippedCount)
		assert.Equal(t, 1, run.SuccessCount)
		assert.Equal(t, 0, run.FailureCount)
	})

	t.Run("batch level failure", func(t *testing.T) {
		run := pendingRun(t)
		require.NoError(t, run.Start(5, date(2026, 3, 1)))

		require.NoError(t, run.Fail("database unavailable", date(2026, 3, 1)))

		assert.Equal(t, InvoiceRunStatusFailed, run.Status)
		assert.Equal(t, "database unavailable", run.FailReason)
		assert.True(t, run.Status.IsTerminal())
	})

	t.Run("cancel pending run", func(t *testing.T) {
		run := pendingRun(t)

		require.NoError(t, run.Cancel("requested by operator", date(2026, 3, 1)))

		assert.Equal(t, InvoiceRunStatusCancelled, run.Status)
	})

	t.Run("cancel running run", func(t *testing.T) {
		run := pendingRun(t)
		require.NoError(t, run.Start(10, date(2026, 3, 1)))
		require.NoError(t, run.RecordSuccess(uuid.New(), uuid.New()))

		require.NoError(t, run.Cancel("shutdown", date(2026, 3, 1)))

		assert.Equal(t, InvoiceRunStatusCancelled, run.Status)
		// Work already recorded stays on the run.
		assert.Equal(t, 1, run.SuccessCount)
	})

	t.Run("items rejected outside running state", func(t *testing.T) {
		run := pendingRun(t)

		err := run.RecordSuccess(uuid.New(), uuid.New())
		assert.ErrorIs(t, err, ErrInvalidRunState)

		require.NoError(t, run.Start(1, date(2026, 3, 1)))
		require.NoError(t, run.Complete(date(2026, 3, 1)))

		err = run.RecordFailure(uuid.New(), "late")
		assert.ErrorIs(t, err, ErrInvalidRunState)
	})

	t.Run("terminal states reject transitions", func(t *testing.T) {
		run := pendingRun(t)
		require.NoError(t, run.Start(0, date(2026, 3, 1)))
		require.NoError(t, run.Complete(date(2026, 3, 1)))

		assert.ErrorIs(t, run.Fail("x", date(2026, 3, 2)), ErrInvalidRunState)
		assert.ErrorIs(t, run.Cancel("x", date(2026, 3, 2)), ErrInvalidRunState)
		assert.ErrorIs(t, run.Start(1, date(2026, 3, 2)), ErrInvalidRunState)
	})

	t.Run("rejects inverted period", func(t *testing.T) {
		_, err := NewInvoiceRun(uuid.New(), date(2026, 4, 1), date(2026, 3, 1))
		require.Error(t, err)
	})
}

func TestInvoiceRunStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    InvoiceRunStatus
		to      InvoiceRunStatus
		allowed bool
	}{
		{InvoiceRunStatusPending, InvoiceRunStatusRunning, true},
		{InvoiceRunStatusPending, InvoiceRunStatusCancelled, true},
		{InvoiceRunStatusPending, InvoiceRunStatusCompleted, false},
		{InvoiceRunStatusRunning, InvoiceRunStatusCompleted, true},
		{InvoiceRunStatusRunning, InvoiceRunStatusFailed, true},
		{InvoiceRunStatusRunning, InvoiceRunStatusCancelled, true},
		{InvoiceRunStatusCompleted, InvoiceRunStatusRunning, false},
		{InvoiceRunStatusFailed, InvoiceRunStatusRunning, false},
		{InvoiceRunStatusCancelled, InvoiceRunStatusRunning, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}
