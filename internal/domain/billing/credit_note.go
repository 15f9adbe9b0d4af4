package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// CreditNoteStatus represents the lifecycle state of a credit note
type CreditNoteStatus string

const (
	CreditNoteStatusIssued  CreditNoteStatus = "ISSUED"
	CreditNoteStatusApplied CreditNoteStatus = "APPLIED"
)

// CreditNoteLine credits part of one invoice line. The source line is
// never edited; the credit references it and is capped by its total.
type CreditNoteLine struct {
	ID            uuid.UUID
	CreditNoteID  uuid.UUID
	InvoiceLineID uuid.UUID
	Description   string
	Amount        valueobject.Money
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreditNoteLineInput describes one line credit when raising a note
type CreditNoteLineInput struct {
	InvoiceLineID uuid.UUID
	Amount        valueobject.Money
	Description   string
}

// CreditNote reverses specific lines of an issued invoice. Issued invoices
// are never edited in place; corrections happen through credit notes.
type CreditNote struct {
	shared.TenantAggregateRoot
	CreditNoteNumber string
	InvoiceID        uuid.UUID
	Status           CreditNoteStatus
	Lines            []CreditNoteLine `gorm:"foreignKey:CreditNoteID"`
	Amount           valueobject.Money
	Reason           string
	AppliedAt        *time.Time
}

// NewCreditNote issues a credit against specific lines of an invoice. The
// invoice must be issued (possibly partially paid); each credited amount is
// capped by its source line's total (net plus tax), and the note's total
// cannot exceed the invoice's outstanding balance.
func NewCreditNote(tenantID uuid.UUID, number string, invoice *Invoice, lines []CreditNoteLineInput, reason string) (*CreditNote, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_CREDIT_NOTE_NUMBER", "Credit note number cannot be empty")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Credit reason is required")
	}
	if invoice.Status != InvoiceStatusIssued && invoice.Status != InvoiceStatusPartiallyPaid {
		return nil, ErrInvalidInvoiceState
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_CREDIT_NOTE", "Credit note must credit at least one invoice line")
	}

	note := &CreditNote{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CreditNoteNumber:    number,
		InvoiceID:           invoice.ID,
		Status:              CreditNoteStatusIssued,
		Lines:               make([]CreditNoteLine, 0, len(lines)),
		Amount:              valueobject.Zero(invoice.Currency),
		Reason:              reason,
	}

	now := time.Now()
	for _, in := range lines {
		source := invoice.LineByID(in.InvoiceLineID)
		if source == nil {
			return nil, shared.NewDomainError("UNKNOWN_INVOICE_LINE", "Credited line does not belong to this invoice")
		}
		if in.Amount.IsNegative() || in.Amount.IsZero() {
			return nil, shared.NewDomainError("INVALID_CREDIT_AMOUNT", "Credit amount must be positive")
		}

		lineTotal, err := source.Amount.Add(source.TaxAmount)
		if err != nil {
			return nil, err
		}
		if in.Amount.Amount().GreaterThan(lineTotal.Amount()) {
			return nil, shared.NewDomainError("CREDIT_EXCEEDS_LINE", "Credit exceeds the invoice line total")
		}

		description := in.Description
		if description == "" {
			description = "Credit: " + source.Description
		}

		note.Lines = append(note.Lines, CreditNoteLine{
			ID:            uuid.New(),
			CreditNoteID:  note.ID,
			InvoiceLineID: source.ID,
			Description:   description,
			Amount:        in.Amount,
			CreatedAt:     now,
			UpdatedAt:     now,
		})

		total, err := note.Amount.Add(in.Amount)
		if err != nil {
			return nil, err
		}
		note.Amount = total
	}

	outstanding, err := invoice.Outstanding()
	if err != nil {
		return nil, err
	}
	if note.Amount.Amount().GreaterThan(outstanding.Amount()) {
		return nil, shared.NewDomainError("CREDIT_EXCEEDS_BALANCE", "Credit exceeds the invoice outstanding balance")
	}

	return note, nil
}

// Apply settles the credit against the invoice balance as if a payment of
// the credited amount had been received
func (c *CreditNote) Apply(invoice *Invoice, at time.Time) error {
	if c.Status != CreditNoteStatusIssued {
		return shared.NewDomainError("CREDIT_ALREADY_APPLIED", "Credit note has already been applied")
	}
	if invoice.ID != c.InvoiceID {
		return shared.NewDomainError("INVOICE_MISMATCH", "Credit note does not belong to this invoice")
	}

	if err := invoice.RecordPayment(c.Amount, at); err != nil {
		return err
	}

	c.Status = CreditNoteStatusApplied
	c.AppliedAt = &at
	c.UpdatedAt = at

	return nil
}
