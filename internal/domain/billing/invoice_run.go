package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
)

// InvoiceRunStatus represents the lifecycle state of a batch invoice run
type InvoiceRunStatus string

const (
	InvoiceRunStatusPending   InvoiceRunStatus = "PENDING"
	InvoiceRunStatusRunning   InvoiceRunStatus = "RUNNING"
	InvoiceRunStatusCompleted InvoiceRunStatus = "COMPLETED"
	InvoiceRunStatusFailed    InvoiceRunStatus = "FAILED"
	InvoiceRunStatusCancelled InvoiceRunStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceRunStatus
func (s InvoiceRunStatus) IsValid() bool {
	switch s {
	case InvoiceRunStatusPending, InvoiceRunStatusRunning, InvoiceRunStatusCompleted, InvoiceRunStatusFailed, InvoiceRunStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceRunStatus
func (s InvoiceRunStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceRunStatus) CanTransitionTo(target InvoiceRunStatus) bool {
	switch s {
	case InvoiceRunStatusPending:
		return target == InvoiceRunStatusRunning || target == InvoiceRunStatusCancelled
	case InvoiceRunStatusRunning:
		return target == InvoiceRunStatusCompleted || target == InvoiceRunStatusFailed || target == InvoiceRunStatusCancelled
	case InvoiceRunStatusCompleted, InvoiceRunStatusFailed, InvoiceRunStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal reports whether the status is final
func (s InvoiceRunStatus) IsTerminal() bool {
	switch s {
	case InvoiceRunStatusCompleted, InvoiceRunStatusFailed, InvoiceRunStatusCancelled:
		return true
	}
	return false
}

// RunItemOutcome classifies the result for one lease within a run
type RunItemOutcome string

const (
	RunItemSuccess RunItemOutcome = "SUCCESS"
	RunItemFailed  RunItemOutcome = "FAILED"
	RunItemSkipped RunItemOutcome = "SKIPPED"
)

// InvoiceRunItem records the outcome for a single lease within a run
type InvoiceRunItem struct {
	ID           uuid.UUID
	RunID        uuid.UUID
	LeaseID      uuid.UUID
	Outcome      RunItemOutcome
	InvoiceID    *uuid.UUID
	ErrorMessage string
	CreatedAt    time.Time
}

// InvoiceRun is the aggregate root for one batch invoice generation pass
// over a tenant's active leases for a billing period. A failure on one lease
// never aborts the run; the run fails only when the batch itself cannot
// proceed.
type InvoiceRun struct {
	shared.TenantAggregateRoot
	Status       InvoiceRunStatus
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Items        []InvoiceRunItem `gorm:"foreignKey:RunID"`
	TotalCount   int
	SuccessCount int
	FailureCount int
	SkippedCount int
	FailReason   string
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// NewInvoiceRun creates a pending run for a billing period
func NewInvoiceRun(tenantID uuid.UUID, periodStart, periodEnd time.Time) (*InvoiceRun, error) {
	if !periodEnd.After(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Run period end must be after period start")
	}

	return &InvoiceRun{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Status:              InvoiceRunStatusPending,
		PeriodStart:         periodStart,
		PeriodEnd:           periodEnd,
		Items:               make([]InvoiceRunItem, 0),
	}, nil
}

// Start moves the run to RUNNING with the number of leases it will process
func (r *InvoiceRun) Start(leaseCount int, now time.Time) error {
	if !r.Status.CanTransitionTo(InvoiceRunStatusRunning) {
		return ErrInvalidRunState
	}

	r.Status = InvoiceRunStatusRunning
	r.TotalCount = leaseCount
	r.StartedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewInvoiceRunStartedEvent(r))

	return nil
}

// RecordSuccess records a generated invoice for a lease
func (r *InvoiceRun) RecordSuccess(leaseID, invoiceID uuid.UUID) error {
	return r.recordItem(leaseID, RunItemSuccess, &invoiceID, "")
}

// RecordFailure records a per-lease failure without aborting the run
func (r *InvoiceRun) RecordFailure(leaseID uuid.UUID, message string) error {
	return r.recordItem(leaseID, RunItemFailed, nil, message)
}

// RecordSkipped records a lease bypassed by the idempotency guard
func (r *InvoiceRun) RecordSkipped(leaseID uuid.UUID, reason string) error {
	return r.recordItem(leaseID, RunItemSkipped, nil, reason)
}

func (r *InvoiceRun) recordItem(leaseID uuid.UUID, outcome RunItemOutcome, invoiceID *uuid.UUID, message string) error {
	if r.Status != InvoiceRunStatusRunning {
		return ErrInvalidRunState
	}

	r.Items = append(r.Items, InvoiceRunItem{
		ID:           uuid.New(),
		RunID:        r.ID,
		LeaseID:      leaseID,
		Outcome:      outcome,
		InvoiceID:    invoiceID,
		ErrorMessage: message,
		CreatedAt:    time.Now(),
	})

	switch outcome {
	case RunItemSuccess:
		r.SuccessCount++
	case RunItemFailed:
		r.FailureCount++
	case RunItemSkipped:
		r.SkippedCount++
	}

	return nil
}

// Complete finishes the run. Per-lease failures recorded along the way do
// not prevent completion.
func (r *InvoiceRun) Complete(now time.Time) error {
	if !r.Status.CanTransitionTo(InvoiceRunStatusCompleted) {
		return ErrInvalidRunState
	}

	r.Status = InvoiceRunStatusCompleted
	r.FinishedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewInvoiceRunFinishedEvent(r))

	return nil
}

// Fail marks the run as failed at the batch level
func (r *InvoiceRun) Fail(reason string, now time.Time) error {
	if !r.Status.CanTransitionTo(InvoiceRunStatusFailed) {
		return ErrInvalidRunState
	}

	r.Status = InvoiceRunStatusFailed
	r.FailReason = reason
	r.FinishedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewInvoiceRunFinishedEvent(r))

	return nil
}

// Cancel aborts a pending or running run
func (r *InvoiceRun) Cancel(reason string, now time.Time) error {
	if !r.Status.CanTransitionTo(InvoiceRunStatusCancelled) {
		return ErrInvalidRunState
	}

	r.Status = InvoiceRunStatusCancelled
	r.FailReason = reason
	r.FinishedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewInvoiceRunFinishedEvent(r))

	return nil
}
