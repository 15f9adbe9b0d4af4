package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UtilityStatement records one billing period of utility usage for a lease,
// either as meter readings priced against a rate plan or as a direct
// provider amount. Statements are versioned: corrections append a new row
// with a higher Revision instead of editing the old one, and at most one
// revision per (lease, period, utility kind) may be finalized. Only a
// finalized statement can be billed, and it is billed exactly once.
type UtilityStatement struct {
	shared.TenantAggregateRoot
	LeaseID         uuid.UUID
	RatePlanID      *uuid.UUID
	UtilityKind     UtilityKind
	PeriodStart     time.Time
	PeriodEnd       time.Time
	PreviousReading *decimal.Decimal
	CurrentReading  *decimal.Decimal
	Consumption     decimal.Decimal
	Charge          decimal.Decimal
	Revision        int
	IsFinal         bool
	FinalizedAt     *time.Time
	Billed          bool
	BilledAt        *time.Time
	InvoiceID       *uuid.UUID
}

func newStatement(tenantID, leaseID uuid.UUID, kind UtilityKind, periodStart, periodEnd time.Time) (*UtilityStatement, error) {
	if leaseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEASE", "Lease ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_UTILITY_KIND", "Unknown utility kind")
	}
	if !periodEnd.After(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Statement period end must be after period start")
	}
	return &UtilityStatement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		LeaseID:             leaseID,
		UtilityKind:         kind,
		PeriodStart:         periodStart,
		PeriodEnd:           periodEnd,
		Revision:            1,
	}, nil
}

// NewMeteredStatement records meter readings for a lease period and prices
// the consumed units against the given plan
func NewMeteredStatement(tenantID, leaseID uuid.UUID, plan *UtilityRatePlan, periodStart, periodEnd time.Time, previous, current decimal.Decimal) (*UtilityStatement, error) {
	if plan == nil || !plan.Active {
		return nil, ErrInvalidRatePlan
	}
	if previous.IsNegative() || current.LessThan(previous) {
		return nil, shared.NewDomainError("INVALID_READINGS", "Current meter reading must not precede the previous reading")
	}

	stmt, err := newStatement(tenantID, leaseID, plan.UtilityKind, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	consumption := current.Sub(previous)
	charge, err := plan.ChargeFor(consumption)
	if err != nil {
		return nil, err
	}

	planID := plan.ID
	stmt.RatePlanID = &planID
	stmt.PreviousReading = &previous
	stmt.CurrentReading = &current
	stmt.Consumption = consumption
	stmt.Charge = charge
	return stmt, nil
}

// NewAmountStatement records a provider-billed amount directly, with no
// meter readings and no rate plan
func NewAmountStatement(tenantID, leaseID uuid.UUID, kind UtilityKind, periodStart, periodEnd time.Time, amount decimal.Decimal) (*UtilityStatement, error) {
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Statement amount cannot be negative")
	}

	stmt, err := newStatement(tenantID, leaseID, kind, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	stmt.Charge = amount
	return stmt, nil
}

// IsMetered reports whether the charge was derived from meter readings
func (s *UtilityStatement) IsMetered() bool {
	return s.RatePlanID != nil
}

// Finalize locks the statement as the billable revision for its period.
// The caller is responsible for ensuring no other revision of the same
// (lease, period, utility kind) is already final.
func (s *UtilityStatement) Finalize(at time.Time) error {
	if s.IsFinal {
		return shared.NewDomainError("STATEMENT_ALREADY_FINAL", "Utility statement has already been finalized")
	}
	s.IsFinal = true
	s.FinalizedAt = &at
	s.UpdatedAt = at
	return nil
}

// MarkBilled ties the statement to the invoice that charged it
func (s *UtilityStatement) MarkBilled(invoiceID uuid.UUID, at time.Time) error {
	if !s.IsFinal {
		return ErrStatementNotFinal
	}
	if s.Billed {
		return shared.NewDomainError("STATEMENT_ALREADY_BILLED", "Utility statement has already been invoiced")
	}
	s.Billed = true
	s.BilledAt = &at
	s.InvoiceID = &invoiceID
	s.UpdatedAt = at
	return nil
}

// ReleaseBilling detaches the statement from a voided invoice so a later
// invoice for the period can pick it up again
func (s *UtilityStatement) ReleaseBilling(at time.Time) error {
	if !s.Billed {
		return shared.NewDomainError("STATEMENT_NOT_BILLED", "Utility statement is not attached to an invoice")
	}
	s.Billed = false
	s.BilledAt = nil
	s.InvoiceID = nil
	s.UpdatedAt = at
	return nil
}
