package leasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LeaseStatus represents the lifecycle state of a lease
type LeaseStatus string

const (
	LeaseStatusDraft       LeaseStatus = "DRAFT"
	LeaseStatusActive      LeaseStatus = "ACTIVE"
	LeaseStatusNoticeGiven LeaseStatus = "NOTICE_GIVEN"
	LeaseStatusEnded       LeaseStatus = "ENDED"
	LeaseStatusCancelled   LeaseStatus = "CANCELLED"
)

// IsValid checks if the status is a valid LeaseStatus
func (s LeaseStatus) IsValid() bool {
	switch s {
	case LeaseStatusDraft, LeaseStatusActive, LeaseStatusNoticeGiven, LeaseStatusEnded, LeaseStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of LeaseStatus
func (s LeaseStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s LeaseStatus) CanTransitionTo(target LeaseStatus) bool {
	switch s {
	case LeaseStatusDraft:
		return target == LeaseStatusActive || target == LeaseStatusCancelled
	case LeaseStatusActive:
		return target == LeaseStatusNoticeGiven || target == LeaseStatusEnded
	case LeaseStatusNoticeGiven:
		return target == LeaseStatusEnded
	case LeaseStatusEnded, LeaseStatusCancelled:
		return false // Terminal states
	}
	return false
}

// LateFeeType represents how late fees are assessed after the grace period
type LateFeeType string

const (
	LateFeeNone       LateFeeType = "NONE"
	LateFeeFixed      LateFeeType = "FIXED"
	LateFeePercentage LateFeeType = "PERCENTAGE"
)

// IsValid checks if the late fee type is known
func (t LateFeeType) IsValid() bool {
	switch t {
	case LateFeeNone, LateFeeFixed, LateFeePercentage:
		return true
	}
	return false
}

// Lease is the aggregate root for a tenancy contract on a unit.
// It is created in DRAFT, becomes ACTIVE only through Activate, and moves to
// NOTICE_GIVEN/ENDED/CANCELLED through the explicit transition methods below.
type Lease struct {
	shared.TenantAggregateRoot
	LeaseNumber  string
	UnitID       uuid.UUID
	Status       LeaseStatus
	StartDate    time.Time
	EndDate      *time.Time
	RentDueDay   int
	GraceDays    int
	LateFeeType  LateFeeType
	LateFeeValue decimal.Decimal
	AutoRenew    bool
	Parties      []LeaseParty         `gorm:"foreignKey:LeaseID"`
	Terms        []LeaseTerm          `gorm:"foreignKey:LeaseID"`
	Setting      *LeaseBillingSetting `gorm:"foreignKey:LeaseID"`
	ActivatedAt  *time.Time
	NoticeAt     *time.Time
	EndedAt      *time.Time
	CancelledAt  *time.Time
	CancelReason string
}

// NewLease creates a new lease in DRAFT status
func NewLease(tenantID uuid.UUID, leaseNumber string, unitID uuid.UUID, startDate time.Time, endDate *time.Time, rentDueDay int) (*Lease, error) {
	if leaseNumber == "" {
		return nil, shared.NewDomainError("INVALID_LEASE_NUMBER", "Lease number cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if endDate != nil && !endDate.After(startDate) {
		return nil, ErrInvalidDateRange
	}

	lease := &Lease{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		LeaseNumber:         leaseNumber,
		UnitID:              unitID,
		Status:              LeaseStatusDraft,
		StartDate:           startDate,
		EndDate:             endDate,
		RentDueDay:          rentDueDay,
		LateFeeType:         LateFeeNone,
		LateFeeValue:        decimal.Zero,
		Parties:             make([]LeaseParty, 0),
		Terms:               make([]LeaseTerm, 0),
	}

	lease.AddDomainEvent(NewLeaseCreatedEvent(lease))

	return lease, nil
}

// SetLateFeePolicy configures the late fee assessed after GraceDays
func (l *Lease) SetLateFeePolicy(feeType LateFeeType, value decimal.Decimal, graceDays int) error {
	if !feeType.IsValid() {
		return shared.NewDomainError("INVALID_LATE_FEE", "Unknown late fee type")
	}
	if feeType != LateFeeNone && value.IsNegative() {
		return shared.NewDomainError("INVALID_LATE_FEE", "Late fee value cannot be negative")
	}
	if graceDays < 0 {
		return shared.NewDomainError("INVALID_GRACE_DAYS", "Grace days cannot be negative")
	}

	l.LateFeeType = feeType
	l.LateFeeValue = value
	l.GraceDays = graceDays
	l.UpdatedAt = time.Now()

	return nil
}

// AddParty adds a party to the lease.
// Only allowed in DRAFT status.
func (l *Lease) AddParty(tenantPartyID uuid.UUID, name string, role PartyRole, paymentResponsible bool) (*LeaseParty, error) {
	if l.Status != LeaseStatusDraft {
		return nil, ErrInvalidLeaseState
	}

	for _, p := range l.Parties {
		if p.TenantPartyID == tenantPartyID {
			return nil, shared.NewDomainError("DUPLICATE_PARTY", "Party already present on lease")
		}
	}

	party, err := NewLeaseParty(l.ID, tenantPartyID, name, role, paymentResponsible)
	if err != nil {
		return nil, err
	}

	l.Parties = append(l.Parties, *party)
	l.UpdatedAt = time.Now()

	return party, nil
}

// RemoveParty removes a party from the lease.
// Only allowed in DRAFT status.
func (l *Lease) RemoveParty(partyID uuid.UUID) error {
	if l.Status != LeaseStatusDraft {
		return ErrInvalidLeaseState
	}

	for idx, p := range l.Parties {
		if p.ID == partyID {
			l.Parties = append(l.Parties[:idx], l.Parties[idx+1:]...)
			l.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("PARTY_NOT_FOUND", "Lease party not found")
}

// AppendTerm appends a new term row to the lease's term history. Terms are
// append-only: existing closed intervals are never edited, and the only
// adjustment made here is closing the open end of the current term at the new
// term's effective-from.
func (l *Lease) AppendTerm(term *LeaseTerm) error {
	if l.Status == LeaseStatusEnded || l.Status == LeaseStatusCancelled {
		return ErrInvalidLeaseState
	}

	for idx := range l.Terms {
		existing := &l.Terms[idx]
		if existing.IsOpenEnded() && existing.EffectiveFrom.Before(term.EffectiveFrom) {
			// Supersede the current open-ended term at the new boundary.
			cutoff := term.EffectiveFrom
			existing.EffectiveTo = &cutoff
			existing.UpdatedAt = time.Now()
			continue
		}
		if existing.Overlaps(term) {
			return ErrTermOverlap
		}
	}

	term.LeaseID = l.ID
	l.Terms = append(l.Terms, *term)
	l.UpdatedAt = time.Now()

	l.AddDomainEvent(NewLeaseTermAppendedEvent(l, term))

	return nil
}

// SetBillingSetting attaches or replaces the lease's billing configuration
func (l *Lease) SetBillingSetting(setting *LeaseBillingSetting) error {
	if l.Status == LeaseStatusEnded || l.Status == LeaseStatusCancelled {
		return ErrInvalidLeaseState
	}
	setting.LeaseID = l.ID
	if l.Setting != nil {
		setting.ID = l.Setting.ID
		setting.CreatedAt = l.Setting.CreatedAt
	}
	l.Setting = setting
	l.UpdatedAt = time.Now()
	return nil
}

// Activate transitions the lease from DRAFT to ACTIVE. unitOccupied answers
// "does this unit already have another active lease overlapping the start
// date" and must be resolved by the caller before invoking. Checks run in a
// fixed order; the first failure aborts the transition.
func (l *Lease) Activate(unitOccupied bool, now time.Time) error {
	if l.Status != LeaseStatusDraft {
		return ErrInvalidLeaseState
	}
	if unitOccupied {
		return ErrUnitAlreadyOccupied
	}
	if !l.hasPartyWithRole(PartyRolePrimaryTenant) {
		return ErrMissingPrimaryTenant
	}
	if !l.hasPaymentResponsibleParty() {
		return ErrNoPayerDesignated
	}
	if l.termCovering(l.StartDate) == nil {
		return ErrNoTermForStartDate
	}
	// 28 is the upper bound so the due day exists in all months, February
	// included.
	if l.RentDueDay < 1 || l.RentDueDay > 28 {
		return ErrInvalidRentDueDay
	}
	if l.EndDate != nil && !l.EndDate.After(l.StartDate) {
		return ErrInvalidDateRange
	}

	l.Status = LeaseStatusActive
	l.ActivatedAt = &now
	l.UpdatedAt = now

	l.AddDomainEvent(NewLeaseActivatedEvent(l))

	return nil
}

// GiveNotice records that notice to vacate has been given
func (l *Lease) GiveNotice(noticeDate time.Time) error {
	if !l.Status.CanTransitionTo(LeaseStatusNoticeGiven) {
		return ErrInvalidLeaseState
	}

	l.Status = LeaseStatusNoticeGiven
	l.NoticeAt = &noticeDate
	l.UpdatedAt = time.Now()

	l.AddDomainEvent(NewLeaseNoticeGivenEvent(l))

	return nil
}

// End closes the lease
func (l *Lease) End(endDate time.Time) error {
	if !l.Status.CanTransitionTo(LeaseStatusEnded) {
		return ErrInvalidLeaseState
	}
	if endDate.Before(l.StartDate) {
		return ErrInvalidDateRange
	}

	l.Status = LeaseStatusEnded
	l.EndedAt = &endDate
	l.UpdatedAt = time.Now()

	l.AddDomainEvent(NewLeaseEndedEvent(l))

	return nil
}

// Cancel cancels a draft lease before activation
func (l *Lease) Cancel(reason string) error {
	if !l.Status.CanTransitionTo(LeaseStatusCancelled) {
		return ErrInvalidLeaseState
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	l.Status = LeaseStatusCancelled
	l.CancelledAt = &now
	l.CancelReason = reason
	l.UpdatedAt = now

	l.AddDomainEvent(NewLeaseCancelledEvent(l))

	return nil
}

// IsActive returns true if the lease is active
func (l *Lease) IsActive() bool {
	return l.Status == LeaseStatusActive
}

// IsDraft returns true if the lease is a draft
func (l *Lease) IsDraft() bool {
	return l.Status == LeaseStatusDraft
}

// IsTerminal returns true if the lease is ended or cancelled
func (l *Lease) IsTerminal() bool {
	return l.Status == LeaseStatusEnded || l.Status == LeaseStatusCancelled
}

// TermEffectiveOn returns the term covering the given date, or nil
func (l *Lease) TermEffectiveOn(date time.Time) *LeaseTerm {
	return l.termCovering(date)
}

func (l *Lease) hasPartyWithRole(role PartyRole) bool {
	for _, p := range l.Parties {
		if p.Role == role {
			return true
		}
	}
	return false
}

func (l *Lease) hasPaymentResponsibleParty() bool {
	for _, p := range l.Parties {
		if p.PaymentResponsible {
			return true
		}
	}
	return false
}

func (l *Lease) termCovering(date time.Time) *LeaseTerm {
	for idx := range l.Terms {
		if l.Terms[idx].Contains(date) {
			return &l.Terms[idx]
		}
	}
	return nil
}

// GetParty returns a party by its ID
func (l *Lease) GetParty(partyID uuid.UUID) *LeaseParty {
	for idx := range l.Parties {
		if l.Parties[idx].ID == partyID {
			return &l.Parties[idx]
		}
	}
	return nil
}

// Describe returns a short human-readable identifier for logs
func (l *Lease) Describe() string {
	return fmt.Sprintf("%s (%s)", l.LeaseNumber, l.Status)
}
