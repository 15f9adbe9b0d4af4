package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeLease = "Lease"

// Event type constants
const (
	EventTypeLeaseCreated      = "LeaseCreated"
	EventTypeLeaseActivated    = "LeaseActivated"
	EventTypeLeaseNoticeGiven  = "LeaseNoticeGiven"
	EventTypeLeaseEnded        = "LeaseEnded"
	EventTypeLeaseCancelled    = "LeaseCancelled"
	EventTypeLeaseTermAppended = "LeaseTermAppended"
)

// LeaseCreatedEvent is raised when a new lease is created
type LeaseCreatedEvent struct {
	shared.BaseDomainEvent
	LeaseID     uuid.UUID `json:"lease_id"`
	LeaseNumber string    `json:"lease_number"`
	UnitID      uuid.UUID `json:"unit_id"`
	StartDate   time.Time `json:"start_date"`
}

// NewLeaseCreatedEvent creates a new LeaseCreatedEvent
func NewLeaseCreatedEvent(lease *Lease) *LeaseCreatedEvent {
	return &LeaseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseCreated, AggregateTypeLease, lease.ID, lease.TenantID),
		LeaseID:         lease.ID,
		LeaseNumber:     lease.LeaseNumber,
		UnitID:          lease.UnitID,
		StartDate:       lease.StartDate,
	}
}

// EventType returns the event type name
func (e *LeaseCreatedEvent) EventType() string {
	return EventTypeLeaseCreated
}

// LeaseActivatedEvent is raised when a lease becomes active.
// Only active leases are selected for recurring billing.
type LeaseActivatedEvent struct {
	shared.BaseDomainEvent
	LeaseID     uuid.UUID  `json:"lease_id"`
	LeaseNumber string     `json:"lease_number"`
	UnitID      uuid.UUID  `json:"unit_id"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// NewLeaseActivatedEvent creates a new LeaseActivatedEvent
func NewLeaseActivatedEvent(lease *Lease) *LeaseActivatedEvent {
	return &LeaseActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseActivated, AggregateTypeLease, lease.ID, lease.TenantID),
		LeaseID:         lease.ID,
		LeaseNumber:     lease.LeaseNumber,
		UnitID:          lease.UnitID,
		StartDate:       lease.StartDate,
		EndDate:         lease.EndDate,
	}
}

// EventType returns the event type name
func (e *LeaseActivatedEvent) EventType() string {
	return EventTypeLeaseActivated
}

// LeaseNoticeGivenEvent is raised when notice to vacate is recorded
type LeaseNoticeGivenEvent struct {
	shared.BaseDomainEvent
	LeaseID  uuid.UUID  `json:"lease_id"`
	NoticeAt *time.Time `json:"notice_at,omitempty"`
}

// NewLeaseNoticeGivenEvent creates a new LeaseNoticeGivenEvent
func NewLeaseNoticeGivenEvent(lease *Lease) *LeaseNoticeGivenEvent {
	return &LeaseNoticeGivenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseNoticeGiven, AggregateTypeLease, lease.ID, lease.TenantID),
		LeaseID:         lease.ID,
		NoticeAt:        lease.NoticeAt,
	}
}

// EventType returns the event type name
func (e *LeaseNoticeGivenEvent) EventType() string {
	return EventTypeLeaseNoticeGiven
}

// LeaseEndedEvent is raised when a lease is closed
type LeaseEndedEvent struct {
	shared.BaseDomainEvent
	LeaseID uuid.UUID  `json:"lease_id"`
	EndedAt *time.Time `json:"ended_at,omitempty"`
}

// NewLeaseEndedEvent creates a new LeaseEndedEvent
func NewLeaseEndedEvent(lease *Lease) *LeaseEndedEvent {
	return &LeaseEndedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseEnded, AggregateTypeLease, lease.ID, lease.TenantID),
		LeaseID:         lease.ID,
		EndedAt:         lease.EndedAt,
	}
}

// EventType returns the event type name
func (e *LeaseEndedEvent) EventType() string {
	return EventTypeLeaseEnded
}

// LeaseCancelledEvent is raised when a draft lease is cancelled
type LeaseCancelledEvent struct {
	shared.BaseDomainEvent
	LeaseID uuid.UUID `json:"lease_id"`
	Reason  string    `json:"reason"`
}

// NewLeaseCancelledEvent creates a new LeaseCancelledEvent
func NewLeaseCancelledEvent(lease *Lease) *LeaseCancelledEvent {
	return &LeaseCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseCancelled, AggregateTypeLease, lease.ID, lease.TenantID),
		LeaseID:         lease.ID,
		Reason:          lease.CancelReason,
	}
}

// EventType returns the event type name
func (e *LeaseCancelledEvent) EventType() string {
	return EventTypeLeaseCancelled
}

// LeaseTermAppendedEvent is raised when a new term row is appended
type LeaseTermAppendedEvent struct {
	shared.BaseDomainEvent
	LeaseID       uuid.UUID  `json:"lease_id"`
	TermID        uuid.UUID  `json:"term_id"`
	EffectiveFrom time.Time  `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`
}

// NewLeaseTermAppendedEvent creates a new LeaseTermAppendedEvent
func NewLeaseTermAppendedEvent(lease *Lease, term *LeaseTerm) *LeaseTermAppendedEvent {
	return &LeaseTermAppendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseTermAppended, AggregateTypeLease, lease.ID, lease.TenantID),
		LeaseID:         lease.ID,
		TermID:          term.ID,
		EffectiveFrom:   term.EffectiveFrom,
		EffectiveTo:     term.EffectiveTo,
	}
}

// EventType returns the event type name
func (e *LeaseTermAppendedEvent) EventType() string {
	return EventTypeLeaseTermAppended
}
