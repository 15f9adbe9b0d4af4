package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusVoid          InvoiceStatus = "VOID"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusIssued || target == InvoiceStatusVoid
	case InvoiceStatusIssued:
		return target == InvoiceStatusPartiallyPaid || target == InvoiceStatusPaid || target == InvoiceStatusVoid
	case InvoiceStatusPartiallyPaid:
		return target == InvoiceStatusPaid
	case InvoiceStatusPaid, InvoiceStatusVoid:
		return false // Terminal states
	}
	return false
}

// InvoiceLine is one charge on an invoice. Amount is the net line charge;
// TaxAmount is derived from the charge type's configured rate.
type InvoiceLine struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	ChargeCode  ChargeCode
	Description string
	Quantity    decimal.Decimal
	UnitPrice   valueobject.Money
	Amount      valueobject.Money
	TaxRate     decimal.Decimal
	TaxAmount   valueobject.Money
	// StatementID links a utility line back to its source statement
	StatementID *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Invoice is the aggregate root for a billing document raised against a
// lease. It is assembled in DRAFT with all of its lines; a draft either
// persists whole or not at all.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber  string
	LeaseID        uuid.UUID
	PayerPartyID   uuid.UUID
	Status         InvoiceStatus
	PeriodStart    time.Time
	PeriodEnd      time.Time
	Currency       valueobject.Currency
	Lines          []InvoiceLine `gorm:"foreignKey:InvoiceID"`
	SubTotalAmount valueobject.Money
	TaxAmount      valueobject.Money
	TotalAmount    valueobject.Money
	AmountPaid     valueobject.Money
	IssuedAt       *time.Time
	DueDate        *time.Time
	PaidAt         *time.Time
	VoidedAt       *time.Time
	VoidReason     string
}

// NewInvoice creates a draft invoice for a lease billing period
func NewInvoice(tenantID uuid.UUID, invoiceNumber string, leaseID, payerPartyID uuid.UUID, periodStart, periodEnd time.Time, currency valueobject.Currency) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if leaseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEASE", "Lease ID cannot be empty")
	}
	if payerPartyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYER", "Payer party ID cannot be empty")
	}
	if !periodEnd.After(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Billing period end must be after period start")
	}

	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	zero := valueobject.Zero(currency)

	invoice := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		LeaseID:             leaseID,
		PayerPartyID:        payerPartyID,
		Status:              InvoiceStatusDraft,
		PeriodStart:         periodStart,
		PeriodEnd:           periodEnd,
		Currency:            currency,
		Lines:               make([]InvoiceLine, 0),
		SubTotalAmount:      zero,
		TaxAmount:           zero,
		TotalAmount:         zero,
		AmountPaid:          zero,
	}

	invoice.AddDomainEvent(NewInvoiceCreatedEvent(invoice))

	return invoice, nil
}

// AddLine appends a charge line to a draft invoice and recomputes the
// totals. The tax rate is the charge type's configured rate, applied to the
// net line amount.
func (i *Invoice) AddLine(code ChargeCode, description string, quantity decimal.Decimal, unitPrice valueobject.Money, taxRate decimal.Decimal, statementID *uuid.UUID) error {
	if i.Status != InvoiceStatusDraft {
		return ErrInvalidInvoiceState
	}
	if !code.IsValid() {
		return shared.NewDomainError("INVALID_CHARGE_CODE", "Unknown charge code")
	}
	if description == "" {
		return shared.NewDomainError("INVALID_LINE", "Line description cannot be empty")
	}
	if quantity.IsNegative() || quantity.IsZero() {
		return shared.NewDomainError("INVALID_LINE", "Line quantity must be positive")
	}
	if taxRate.IsNegative() {
		return shared.NewDomainError("INVALID_LINE", "Line tax rate cannot be negative")
	}

	amount := unitPrice.Multiply(quantity).Round(2)
	tax := amount.Multiply(taxRate).Round(2)

	now := time.Now()
	i.Lines = append(i.Lines, InvoiceLine{
		ID:          uuid.New(),
		InvoiceID:   i.ID,
		ChargeCode:  code,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      amount,
		TaxRate:     taxRate,
		TaxAmount:   tax,
		StatementID: statementID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	return i.recalculateTotals()
}

func (i *Invoice) recalculateTotals() error {
	subTotal := valueobject.Zero(i.Currency)
	tax := valueobject.Zero(i.Currency)
	var err error
	for _, line := range i.Lines {
		subTotal, err = subTotal.Add(line.Amount)
		if err != nil {
			return err
		}
		tax, err = tax.Add(line.TaxAmount)
		if err != nil {
			return err
		}
	}
	i.SubTotalAmount = subTotal
	i.TaxAmount = tax
	total, err := subTotal.Add(tax)
	if err != nil {
		return err
	}
	i.TotalAmount = total
	i.UpdatedAt = time.Now()
	return nil
}

// Issue finalizes a draft invoice and opens it for payment
func (i *Invoice) Issue(issuedAt time.Time, dueDate time.Time) error {
	if !i.Status.CanTransitionTo(InvoiceStatusIssued) {
		return ErrInvalidInvoiceState
	}
	if len(i.Lines) == 0 {
		return ErrEmptyInvoice
	}
	if dueDate.Before(issuedAt) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot precede the issue date")
	}

	i.Status = InvoiceStatusIssued
	i.IssuedAt = &issuedAt
	i.DueDate = &dueDate
	i.UpdatedAt = issuedAt

	i.AddDomainEvent(NewInvoiceIssuedEvent(i))

	return nil
}

// RecordPayment applies a payment against the invoice balance
func (i *Invoice) RecordPayment(amount valueobject.Money, at time.Time) error {
	if i.Status != InvoiceStatusIssued && i.Status != InvoiceStatusPartiallyPaid {
		return ErrInvalidInvoiceState
	}
	if amount.IsNegative() || amount.IsZero() {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment amount must be positive")
	}

	outstanding, err := i.Outstanding()
	if err != nil {
		return err
	}
	if amount.Amount().GreaterThan(outstanding.Amount()) {
		return ErrOverpayment
	}

	paid, err := i.AmountPaid.Add(amount)
	if err != nil {
		return err
	}
	i.AmountPaid = paid
	i.UpdatedAt = at

	i.AddDomainEvent(NewInvoicePaymentRecordedEvent(i, amount))

	if i.AmountPaid.Equals(i.TotalAmount) {
		i.Status = InvoiceStatusPaid
		i.PaidAt = &at
		i.AddDomainEvent(NewInvoicePaidEvent(i))
	} else {
		i.Status = InvoiceStatusPartiallyPaid
	}

	return nil
}

// Void cancels an invoice that has received no payments
func (i *Invoice) Void(reason string, at time.Time) error {
	if !i.Status.CanTransitionTo(InvoiceStatusVoid) {
		return ErrInvalidInvoiceState
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}

	i.Status = InvoiceStatusVoid
	i.VoidedAt = &at
	i.VoidReason = reason
	i.UpdatedAt = at

	i.AddDomainEvent(NewInvoiceVoidedEvent(i))

	return nil
}

// LineByID returns the invoice line with the given ID, or nil
func (i *Invoice) LineByID(lineID uuid.UUID) *InvoiceLine {
	for idx := range i.Lines {
		if i.Lines[idx].ID == lineID {
			return &i.Lines[idx]
		}
	}
	return nil
}

// Outstanding returns the unpaid balance
func (i *Invoice) Outstanding() (valueobject.Money, error) {
	return i.TotalAmount.Subtract(i.AmountPaid)
}

// IsDraft returns true if the invoice has not been issued
func (i *Invoice) IsDraft() bool {
	return i.Status == InvoiceStatusDraft
}

// IsSettled returns true if the invoice is fully paid or voided
func (i *Invoice) IsSettled() bool {
	return i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusVoid
}
