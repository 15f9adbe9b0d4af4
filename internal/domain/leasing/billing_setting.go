package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
)

// ProrationMethod selects how partial billing periods are charged
type ProrationMethod string

const (
	// ProrationActualDays divides by the actual number of days in the month
	ProrationActualDays ProrationMethod = "ACTUAL_DAYS_IN_MONTH"
	// ProrationFixedThirty always divides by 30
	ProrationFixedThirty ProrationMethod = "FIXED_THIRTY_DAYS"
)

// IsValid checks if the proration method is known
func (m ProrationMethod) IsValid() bool {
	switch m {
	case ProrationActualDays, ProrationFixedThirty:
		return true
	}
	return false
}

// String returns the string representation of ProrationMethod
func (m ProrationMethod) String() string {
	return string(m)
}

// LeaseBillingSetting holds per-lease invoicing configuration
type LeaseBillingSetting struct {
	ID                    uuid.UUID
	LeaseID               uuid.UUID
	BillingDay            int
	PaymentTermDays       int
	GenerateAutomatically bool
	ProrationMethod       ProrationMethod
	InvoiceNumberPrefix   string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewLeaseBillingSetting creates a new billing setting for a lease.
// BillingDay is capped at 28 so it exists in every month.
func NewLeaseBillingSetting(leaseID uuid.UUID, billingDay, paymentTermDays int, autoGenerate bool, method ProrationMethod) (*LeaseBillingSetting, error) {
	if leaseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEASE", "Lease ID cannot be empty")
	}
	if billingDay < 1 || billingDay > 28 {
		return nil, shared.NewDomainError("INVALID_BILLING_DAY", "Billing day must be between 1 and 28")
	}
	if paymentTermDays < 0 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TERM", "Payment term days cannot be negative")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRORATION_METHOD", "Unknown proration method")
	}

	now := time.Now()
	return &LeaseBillingSetting{
		ID:                    uuid.New(),
		LeaseID:               leaseID,
		BillingDay:            billingDay,
		PaymentTermDays:       paymentTermDays,
		GenerateAutomatically: autoGenerate,
		ProrationMethod:       method,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}
