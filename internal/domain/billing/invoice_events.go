package billing

import (
	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// Aggregate type constants
const (
	AggregateTypeInvoice    = "Invoice"
	AggregateTypeInvoiceRun = "InvoiceRun"
)

// Event type constants
const (
	EventTypeInvoiceCreated         = "InvoiceCreated"
	EventTypeInvoiceIssued          = "InvoiceIssued"
	EventTypeInvoicePaymentRecorded = "InvoicePaymentRecorded"
	EventTypeInvoicePaid            = "InvoicePaid"
	EventTypeInvoiceVoided          = "InvoiceVoided"
	EventTypeInvoiceRunStarted      = "InvoiceRunStarted"
	EventTypeInvoiceRunFinished     = "InvoiceRunFinished"
)

// InvoiceCreatedEvent is raised when a draft invoice is assembled
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	LeaseID       uuid.UUID `json:"lease_id"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(invoice *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, invoice.ID, invoice.TenantID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		LeaseID:         invoice.LeaseID,
	}
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return EventTypeInvoiceCreated
}

// InvoiceIssuedEvent is raised when an invoice is issued to the payer
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID         `json:"invoice_id"`
	InvoiceNumber string            `json:"invoice_number"`
	PayerPartyID  uuid.UUID         `json:"payer_party_id"`
	TotalAmount   valueobject.Money `json:"total_amount"`
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(invoice *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, AggregateTypeInvoice, invoice.ID, invoice.TenantID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		PayerPartyID:    invoice.PayerPartyID,
		TotalAmount:     invoice.TotalAmount,
	}
}

// EventType returns the event type name
func (e *InvoiceIssuedEvent) EventType() string {
	return EventTypeInvoiceIssued
}

// InvoicePaymentRecordedEvent is raised for every payment applied
type InvoicePaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID         `json:"invoice_id"`
	Amount    valueobject.Money `json:"amount"`
}

// NewInvoicePaymentRecordedEvent creates a new InvoicePaymentRecordedEvent
func NewInvoicePaymentRecordedEvent(invoice *Invoice, amount valueobject.Money) *InvoicePaymentRecordedEvent {
	return &InvoicePaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentRecorded, AggregateTypeInvoice, invoice.ID, invoice.TenantID),
		InvoiceID:       invoice.ID,
		Amount:          amount,
	}
}

// EventType returns the event type name
func (e *InvoicePaymentRecordedEvent) EventType() string {
	return EventTypeInvoicePaymentRecorded
}

// InvoicePaidEvent is raised when the balance reaches zero
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(invoice *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, invoice.ID, invoice.TenantID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
	}
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return EventTypeInvoicePaid
}

// InvoiceVoidedEvent is raised when an invoice is voided
type InvoiceVoidedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
	Reason    string    `json:"reason"`
}

// NewInvoiceVoidedEvent creates a new InvoiceVoidedEvent
func NewInvoiceVoidedEvent(invoice *Invoice) *InvoiceVoidedEvent {
	return &InvoiceVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceVoided, AggregateTypeInvoice, invoice.ID, invoice.TenantID),
		InvoiceID:       invoice.ID,
		Reason:          invoice.VoidReason,
	}
}

// EventType returns the event type name
func (e *InvoiceVoidedEvent) EventType() string {
	return EventTypeInvoiceVoided
}

// InvoiceRunStartedEvent is raised when a batch run begins executing
type InvoiceRunStartedEvent struct {
	shared.BaseDomainEvent
	RunID      uuid.UUID `json:"run_id"`
	LeaseCount int       `json:"lease_count"`
}

// NewInvoiceRunStartedEvent creates a new InvoiceRunStartedEvent
func NewInvoiceRunStartedEvent(run *InvoiceRun) *InvoiceRunStartedEvent {
	return &InvoiceRunStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceRunStarted, AggregateTypeInvoiceRun, run.ID, run.TenantID),
		RunID:           run.ID,
		LeaseCount:      run.TotalCount,
	}
}

// EventType returns the event type name
func (e *InvoiceRunStartedEvent) EventType() string {
	return EventTypeInvoiceRunStarted
}

// InvoiceRunFinishedEvent is raised when a batch run reaches a terminal state
type InvoiceRunFinishedEvent struct {
	shared.BaseDomainEvent
	RunID        uuid.UUID        `json:"run_id"`
	Status       InvoiceRunStatus `json:"status"`
	SuccessCount int              `json:"success_count"`
	FailureCount int              `json:"failure_count"`
	SkippedCount int              `json:"skipped_count"`
}

// NewInvoiceRunFinishedEvent creates a new InvoiceRunFinishedEvent
func NewInvoiceRunFinishedEvent(run *InvoiceRun) *InvoiceRunFinishedEvent {
	return &InvoiceRunFinishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceRunFinished, AggregateTypeInvoiceRun, run.ID, run.TenantID),
		RunID:           run.ID,
		Status:          run.Status,
		SuccessCount:    run.SuccessCount,
		FailureCount:    run.FailureCount,
		SkippedCount:    run.SkippedCount,
	}
}

// EventType returns the event type name
func (e *InvoiceRunFinishedEvent) EventType() string {
	return EventTypeInvoiceRunFinished
}
