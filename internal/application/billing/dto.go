package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// GenerateInvoiceRequest asks for a draft invoice for one lease and month
type GenerateInvoiceRequest struct {
	LeaseID     uuid.UUID `json:"lease_id" binding:"required"`
	PeriodStart time.Time `json:"period_start" binding:"required"`
}

// IssueInvoiceRequest finalizes a draft invoice
type IssueInvoiceRequest struct {
	ExpectedVersion int `json:"expected_version" binding:"required,min=1"`
}

// RecordPaymentRequest applies a payment to an invoice
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// VoidInvoiceRequest voids an invoice
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreditNoteLineRequest credits part of one invoice line
type CreditNoteLineRequest struct {
	InvoiceLineID string          `json:"invoice_line_id" binding:"required,uuid"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Description   string          `json:"description"`
}

// CreateCreditNoteRequest raises a credit against specific lines of an
// issued invoice
type CreateCreditNoteRequest struct {
	Lines  []CreditNoteLineRequest `json:"lines" binding:"required,min=1,dive"`
	Reason string                  `json:"reason" binding:"required"`
}

// StartRunRequest launches a batch invoice run for a billing month
type StartRunRequest struct {
	PeriodStart time.Time `json:"period_start" binding:"required"`
}

// CreateRatePlanRequest creates a tiered utility rate plan
type CreateRatePlanRequest struct {
	Name        string            `json:"name" binding:"required"`
	UtilityKind string            `json:"utility_kind" binding:"required"`
	UnitLabel   string            `json:"unit_label"`
	Slabs       []RateSlabRequest `json:"slabs" binding:"required,min=1,dive"`
}

// RateSlabRequest is one tier of a rate plan request
type RateSlabRequest struct {
	UpperBound  *decimal.Decimal `json:"upper_bound"`
	UnitRate    decimal.Decimal  `json:"unit_rate" binding:"required"`
	FixedCharge decimal.Decimal  `json:"fixed_charge"`
}

// RecordStatementRequest records one utility statement for a lease period.
// Metered statements carry a rate plan and both readings; direct statements
// carry the provider-billed amount and a utility kind instead.
type RecordStatementRequest struct {
	LeaseID         uuid.UUID        `json:"lease_id" binding:"required"`
	RatePlanID      *uuid.UUID       `json:"rate_plan_id"`
	UtilityKind     string           `json:"utility_kind"`
	PeriodStart     time.Time        `json:"period_start" binding:"required"`
	PeriodEnd       time.Time        `json:"period_end" binding:"required"`
	PreviousReading *decimal.Decimal `json:"previous_reading"`
	CurrentReading  *decimal.Decimal `json:"current_reading"`
	Amount          *decimal.Decimal `json:"amount"`
}

// InvoiceListFilter carries invoice list query options
type InvoiceListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Status   string `form:"status"`
	LeaseID  string `form:"lease_id"`
}

// InvoiceLineResponse is the API representation of an invoice line
type InvoiceLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ChargeCode  string          `json:"charge_code"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// InvoiceResponse is the API representation of an invoice
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	LeaseID       uuid.UUID             `json:"lease_id"`
	PayerPartyID  uuid.UUID             `json:"payer_party_id"`
	Status        string                `json:"status"`
	PeriodStart   time.Time             `json:"period_start"`
	PeriodEnd     time.Time             `json:"period_end"`
	Currency      string                `json:"currency"`
	Lines         []InvoiceLineResponse `json:"lines"`
	SubTotal      decimal.Decimal       `json:"sub_total"`
	TaxTotal      decimal.Decimal       `json:"tax_total"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	AmountPaid    decimal.Decimal       `json:"amount_paid"`
	Outstanding   decimal.Decimal       `json:"outstanding"`
	Version       int                   `json:"version"`
	IssuedAt      *time.Time            `json:"issued_at,omitempty"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	VoidedAt      *time.Time            `json:"voided_at,omitempty"`
	VoidReason    string                `json:"void_reason,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// InvoiceListItemResponse is the compact list representation of an invoice
type InvoiceListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	LeaseID       uuid.UUID       `json:"lease_id"`
	Status        string          `json:"status"`
	PeriodStart   time.Time       `json:"period_start"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RunItemResponse is the API representation of one run item
type RunItemResponse struct {
	LeaseID      uuid.UUID  `json:"lease_id"`
	Outcome      string     `json:"outcome"`
	InvoiceID    *uuid.UUID `json:"invoice_id,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// InvoiceRunResponse is the API representation of a batch run
type InvoiceRunResponse struct {
	ID           uuid.UUID         `json:"id"`
	Status       string            `json:"status"`
	PeriodStart  time.Time         `json:"period_start"`
	PeriodEnd    time.Time         `json:"period_end"`
	TotalCount   int               `json:"total_count"`
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	SkippedCount int               `json:"skipped_count"`
	FailReason   string            `json:"fail_reason,omitempty"`
	Items        []RunItemResponse `json:"items"`
	StartedAt    *time.Time        `json:"started_at,omitempty"`
	FinishedAt   *time.Time        `json:"finished_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// RateSlabResponse is the API representation of a rate slab
type RateSlabResponse struct {
	UpperBound  *decimal.Decimal `json:"upper_bound,omitempty"`
	UnitRate    decimal.Decimal  `json:"unit_rate"`
	FixedCharge decimal.Decimal  `json:"fixed_charge"`
}

// RatePlanResponse is the API representation of a utility rate plan
type RatePlanResponse struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	UtilityKind string             `json:"utility_kind"`
	UnitLabel   string             `json:"unit_label"`
	Active      bool               `json:"active"`
	Slabs       []RateSlabResponse `json:"slabs"`
	CreatedAt   time.Time          `json:"created_at"`
}

// StatementResponse is the API representation of a utility statement
type StatementResponse struct {
	ID              uuid.UUID        `json:"id"`
	LeaseID         uuid.UUID        `json:"lease_id"`
	RatePlanID      *uuid.UUID       `json:"rate_plan_id,omitempty"`
	UtilityKind     string           `json:"utility_kind"`
	PeriodStart     time.Time        `json:"period_start"`
	PeriodEnd       time.Time        `json:"period_end"`
	PreviousReading *decimal.Decimal `json:"previous_reading,omitempty"`
	CurrentReading  *decimal.Decimal `json:"current_reading,omitempty"`
	Consumption     decimal.Decimal  `json:"consumption"`
	Charge          decimal.Decimal  `json:"charge"`
	Revision        int              `json:"revision"`
	IsFinal         bool             `json:"is_final"`
	FinalizedAt     *time.Time       `json:"finalized_at,omitempty"`
	Billed          bool             `json:"billed"`
	InvoiceID       *uuid.UUID       `json:"invoice_id,omitempty"`
}

// CreditNoteLineResponse is the API representation of one credited line
type CreditNoteLineResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceLineID uuid.UUID       `json:"invoice_line_id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
}

// CreditNoteResponse is the API representation of a credit note
type CreditNoteResponse struct {
	ID               uuid.UUID                `json:"id"`
	CreditNoteNumber string                   `json:"credit_note_number"`
	InvoiceID        uuid.UUID                `json:"invoice_id"`
	Status           string                   `json:"status"`
	Lines            []CreditNoteLineResponse `json:"lines"`
	Amount           decimal.Decimal          `json:"amount"`
	Reason           string                   `json:"reason"`
	AppliedAt        *time.Time               `json:"applied_at,omitempty"`
}

// ToInvoiceResponse converts an invoice aggregate to its API representation
func ToInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(invoice.Lines))
	for _, line := range invoice.Lines {
		lines = append(lines, InvoiceLineResponse{
			ID:          line.ID,
			ChargeCode:  line.ChargeCode.String(),
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.Amount(),
			Amount:      line.Amount.Amount(),
			TaxRate:     line.TaxRate,
			TaxAmount:   line.TaxAmount.Amount(),
		})
	}

	outstanding := invoice.TotalAmount.Amount().Sub(invoice.AmountPaid.Amount())

	return InvoiceResponse{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		LeaseID:       invoice.LeaseID,
		PayerPartyID:  invoice.PayerPartyID,
		Status:        invoice.Status.String(),
		PeriodStart:   invoice.PeriodStart,
		PeriodEnd:     invoice.PeriodEnd,
		Currency:      string(invoice.Currency),
		Lines:         lines,
		SubTotal:      invoice.SubTotalAmount.Amount(),
		TaxTotal:      invoice.TaxAmount.Amount(),
		TotalAmount:   invoice.TotalAmount.Amount(),
		AmountPaid:    invoice.AmountPaid.Amount(),
		Outstanding:   outstanding,
		Version:       invoice.Version,
		IssuedAt:      invoice.IssuedAt,
		DueDate:       invoice.DueDate,
		PaidAt:        invoice.PaidAt,
		VoidedAt:      invoice.VoidedAt,
		VoidReason:    invoice.VoidReason,
		CreatedAt:     invoice.CreatedAt,
	}
}

// ToInvoiceListItemResponses converts invoices to their list representation
func ToInvoiceListItemResponses(invoices []*billing.Invoice) []InvoiceListItemResponse {
	items := make([]InvoiceListItemResponse, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, InvoiceListItemResponse{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			LeaseID:       inv.LeaseID,
			Status:        inv.Status.String(),
			PeriodStart:   inv.PeriodStart,
			TotalAmount:   inv.TotalAmount.Amount(),
			AmountPaid:    inv.AmountPaid.Amount(),
			CreatedAt:     inv.CreatedAt,
		})
	}
	return items
}

// ToInvoiceRunResponse converts a run aggregate to its API representation
func ToInvoiceRunResponse(run *billing.InvoiceRun) InvoiceRunResponse {
	items := make([]RunItemResponse, 0, len(run.Items))
	for _, item := range run.Items {
		items = append(items, RunItemResponse{
			LeaseID:      item.LeaseID,
			Outcome:      string(item.Outcome),
			InvoiceID:    item.InvoiceID,
			ErrorMessage: item.ErrorMessage,
		})
	}

	return InvoiceRunResponse{
		ID:           run.ID,
		Status:       run.Status.String(),
		PeriodStart:  run.PeriodStart,
		PeriodEnd:    run.PeriodEnd,
		TotalCount:   run.TotalCount,
		SuccessCount: run.SuccessCount,
		FailureCount: run.FailureCount,
		SkippedCount: run.SkippedCount,
		FailReason:   run.FailReason,
		Items:        items,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		CreatedAt:    run.CreatedAt,
	}
}

// ToRatePlanResponse converts a rate plan to its API representation
func ToRatePlanResponse(plan *billing.UtilityRatePlan) RatePlanResponse {
	slabs := make([]RateSlabResponse, 0, len(plan.Slabs))
	for _, s := range plan.Slabs {
		slabs = append(slabs, RateSlabResponse{
			UpperBound:  s.UpperBound,
			UnitRate:    s.UnitRate,
			FixedCharge: s.FixedCharge,
		})
	}

	return RatePlanResponse{
		ID:          plan.ID,
		Name:        plan.Name,
		UtilityKind: plan.UtilityKind.String(),
		UnitLabel:   plan.UnitLabel,
		Active:      plan.Active,
		Slabs:       slabs,
		CreatedAt:   plan.CreatedAt,
	}
}

// ToStatementResponse converts a statement to its API representation
func ToStatementResponse(stmt *billing.UtilityStatement) StatementResponse {
	return StatementResponse{
		ID:              stmt.ID,
		LeaseID:         stmt.LeaseID,
		RatePlanID:      stmt.RatePlanID,
		UtilityKind:     stmt.UtilityKind.String(),
		PeriodStart:     stmt.PeriodStart,
		PeriodEnd:       stmt.PeriodEnd,
		PreviousReading: stmt.PreviousReading,
		CurrentReading:  stmt.CurrentReading,
		Consumption:     stmt.Consumption,
		Charge:          stmt.Charge,
		Revision:        stmt.Revision,
		IsFinal:         stmt.IsFinal,
		FinalizedAt:     stmt.FinalizedAt,
		Billed:          stmt.Billed,
		InvoiceID:       stmt.InvoiceID,
	}
}

// ToCreditNoteResponse converts a credit note to its API representation
func ToCreditNoteResponse(note *billing.CreditNote) CreditNoteResponse {
	lines := make([]CreditNoteLineResponse, 0, len(note.Lines))
	for _, line := range note.Lines {
		lines = append(lines, CreditNoteLineResponse{
			ID:            line.ID,
			InvoiceLineID: line.InvoiceLineID,
			Description:   line.Description,
			Amount:        line.Amount.Amount(),
		})
	}

	return CreditNoteResponse{
		ID:               note.ID,
		CreditNoteNumber: note.CreditNoteNumber,
		InvoiceID:        note.InvoiceID,
		Status:           string(note.Status),
		Lines:            lines,
		Amount:           note.Amount.Amount(),
		Reason:           note.Reason,
		AppliedAt:        note.AppliedAt,
	}
}
