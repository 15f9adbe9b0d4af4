package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EscalationType represents how rent escalates over time
type EscalationType string

const (
	EscalationNone       EscalationType = "NONE"
	EscalationPercentage EscalationType = "PERCENTAGE"
	EscalationFixed      EscalationType = "FIXED_INCREMENT"
)

// IsValid checks if the escalation type is known
func (t EscalationType) IsValid() bool {
	switch t {
	case EscalationNone, EscalationPercentage, EscalationFixed:
		return true
	}
	return false
}

// LeaseTerm is one time-versioned row of financial parameters for a lease.
// Terms are append-only: superseded rows keep their closed [EffectiveFrom,
// EffectiveTo) interval and are never edited.
type LeaseTerm struct {
	ID                       uuid.UUID
	LeaseID                  uuid.UUID
	EffectiveFrom            time.Time
	EffectiveTo              *time.Time
	MonthlyRent              decimal.Decimal
	SecurityDeposit          decimal.Decimal
	MaintenanceCharge        decimal.Decimal
	OtherFixedCharge         decimal.Decimal
	EscalationType           EscalationType
	EscalationValue          decimal.Decimal
	EscalationIntervalMonths int
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// NewLeaseTerm creates a new lease term
func NewLeaseTerm(leaseID uuid.UUID, effectiveFrom time.Time, effectiveTo *time.Time, monthlyRent, securityDeposit decimal.Decimal) (*LeaseTerm, error) {
	if leaseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEASE", "Lease ID cannot be empty")
	}
	if monthlyRent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RENT", "Monthly rent cannot be negative")
	}
	if securityDeposit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DEPOSIT", "Security deposit cannot be negative")
	}
	if effectiveTo != nil && !effectiveTo.After(effectiveFrom) {
		return nil, ErrInvalidDateRange
	}

	now := time.Now()
	return &LeaseTerm{
		ID:              uuid.New(),
		LeaseID:         leaseID,
		EffectiveFrom:   effectiveFrom,
		EffectiveTo:     effectiveTo,
		MonthlyRent:     monthlyRent,
		SecurityDeposit: securityDeposit,
		EscalationType:  EscalationNone,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// WithFixedCharges sets the recurring fixed charges on the term
func (t *LeaseTerm) WithFixedCharges(maintenance, other decimal.Decimal) (*LeaseTerm, error) {
	if maintenance.IsNegative() || other.IsNegative() {
		return nil, shared.NewDomainError("INVALID_CHARGE", "Fixed charges cannot be negative")
	}
	t.MaintenanceCharge = maintenance
	t.OtherFixedCharge = other
	return t, nil
}

// WithEscalation configures rent escalation on the term
func (t *LeaseTerm) WithEscalation(escType EscalationType, value decimal.Decimal, intervalMonths int) (*LeaseTerm, error) {
	if !escType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ESCALATION", "Unknown escalation type")
	}
	if escType != EscalationNone {
		if value.IsNegative() {
			return nil, shared.NewDomainError("INVALID_ESCALATION", "Escalation value cannot be negative")
		}
		if intervalMonths <= 0 {
			return nil, shared.NewDomainError("INVALID_ESCALATION", "Escalation interval must be a positive number of months")
		}
	}
	t.EscalationType = escType
	t.EscalationValue = value
	t.EscalationIntervalMonths = intervalMonths
	return t, nil
}

// Contains reports whether the term's half-open [EffectiveFrom, EffectiveTo)
// interval contains the given date
func (t *LeaseTerm) Contains(date time.Time) bool {
	if date.Before(t.EffectiveFrom) {
		return false
	}
	if t.EffectiveTo != nil && !date.Before(*t.EffectiveTo) {
		return false
	}
	return true
}

// Overlaps reports whether two term intervals overlap
func (t *LeaseTerm) Overlaps(other *LeaseTerm) bool {
	// [a, b) and [c, d) overlap iff a < d and c < b
	if other.EffectiveTo != nil && !t.EffectiveFrom.Before(*other.EffectiveTo) {
		return false
	}
	if t.EffectiveTo != nil && !other.EffectiveFrom.Before(*t.EffectiveTo) {
		return false
	}
	return true
}

// IsOpenEnded reports whether the term has no effective-to bound
func (t *LeaseTerm) IsOpenEnded() bool {
	return t.EffectiveTo == nil
}
