package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceService assembles and manages invoices for leases
type InvoiceService struct {
	invoiceRepo    billing.InvoiceRepository
	leaseRepo      leasing.LeaseRepository
	statementRepo  billing.UtilityStatementRepository
	creditNoteRepo billing.CreditNoteRepository
	clock          shared.Clock
	currency       valueobject.Currency
	taxRates       billing.ChargeTypeLookup
	eventPublisher shared.EventPublisher
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	leaseRepo leasing.LeaseRepository,
	statementRepo billing.UtilityStatementRepository,
	creditNoteRepo billing.CreditNoteRepository,
	clock shared.Clock,
	currency valueobject.Currency,
	taxRates billing.ChargeTypeLookup,
) *InvoiceService {
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if taxRates == nil {
		taxRates = billing.StaticTaxRates{}
	}
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		leaseRepo:      leaseRepo,
		statementRepo:  statementRepo,
		creditNoteRepo: creditNoteRepo,
		clock:          clock,
		currency:       currency,
		taxRates:       taxRates,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GenerateForLease assembles a draft invoice for one lease and the calendar
// month starting at periodStart. The draft carries every line it will ever
// have: prorated or full rent, fixed charges, and any unbilled utility
// statements. It is saved in a single repository call, so a failed assembly
// leaves nothing behind.
func (s *InvoiceService) GenerateForLease(ctx context.Context, tenantID, leaseID uuid.UUID, periodStart time.Time) (*InvoiceResponse, error) {
	periodStart = time.Date(periodStart.Year(), periodStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0)

	lease, err := s.leaseRepo.FindByIDForTenant(ctx, tenantID, leaseID)
	if err != nil {
		return nil, err
	}
	if lease.Status != leasing.LeaseStatusActive && lease.Status != leasing.LeaseStatusNoticeGiven {
		return nil, leasing.ErrInvalidLeaseState
	}

	exists, err := s.invoiceRepo.ExistsForLeasePeriod(ctx, tenantID, leaseID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, billing.ErrInvoiceExists
	}

	payer := paymentResponsibleParty(lease)
	if payer == nil {
		return nil, leasing.ErrNoPayerDesignated
	}

	windowStart, windowEnd, err := billableWindow(lease, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	term, err := leasing.ResolveTerm(lease.Terms, windowStart)
	if err != nil {
		return nil, err
	}

	method := leasing.ProrationActualDays
	if lease.Setting != nil {
		method = lease.Setting.ProrationMethod
	}

	number, err := s.invoiceRepo.GenerateInvoiceNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(tenantID, number, lease.ID, payer.ID, periodStart, periodEnd, s.currency)
	if err != nil {
		return nil, err
	}

	monthLabel := periodStart.Format("January 2006")

	rent, err := billing.Prorate(leasing.EscalatedRent(term, windowStart), windowStart, windowEnd, method)
	if err != nil {
		return nil, err
	}
	if rent.IsPositive() {
		if err := invoice.AddLine(billing.ChargeRent, "Rent for "+monthLabel, decimal.NewFromInt(1), s.money(rent), s.taxRates.TaxRate(billing.ChargeRent), nil); err != nil {
			return nil, err
		}
	}

	if term.MaintenanceCharge.IsPositive() {
		maintenance, err := billing.Prorate(term.MaintenanceCharge, windowStart, windowEnd, method)
		if err != nil {
			return nil, err
		}
		if err := invoice.AddLine(billing.ChargeMaintenance, "Maintenance for "+monthLabel, decimal.NewFromInt(1), s.money(maintenance), s.taxRates.TaxRate(billing.ChargeMaintenance), nil); err != nil {
			return nil, err
		}
	}

	if term.OtherFixedCharge.IsPositive() {
		other, err := billing.Prorate(term.OtherFixedCharge, windowStart, windowEnd, method)
		if err != nil {
			return nil, err
		}
		if err := invoice.AddLine(billing.ChargeOther, "Fixed charges for "+monthLabel, decimal.NewFromInt(1), s.money(other), s.taxRates.TaxRate(billing.ChargeOther), nil); err != nil {
			return nil, err
		}
	}

	statements, err := s.statementRepo.FindBillableForLease(ctx, tenantID, leaseID, periodEnd)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	for _, stmt := range statements {
		if !stmt.Charge.IsZero() {
			desc := fmt.Sprintf("%s %s to %s", stmt.UtilityKind, stmt.PeriodStart.Format("2006-01-02"), stmt.PeriodEnd.Format("2006-01-02"))
			stmtID := stmt.ID
			if err := invoice.AddLine(billing.ChargeUtility, desc, decimal.NewFromInt(1), s.money(stmt.Charge), s.taxRates.TaxRate(billing.ChargeUtility), &stmtID); err != nil {
				return nil, err
			}
		}
		// Zero-charge statements get no line but are still consumed, so
		// they stop matching future billable lookups.
		if err := stmt.MarkBilled(invoice.ID, now); err != nil {
			return nil, err
		}
	}

	if len(invoice.Lines) == 0 {
		return nil, billing.ErrNothingToBill
	}

	if err := s.invoiceRepo.SaveWithStatements(ctx, invoice, statements); err != nil {
		return nil, err
	}

	s.publishEvents(invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) (*shared.Paginated[InvoiceListItemResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.LeaseID != "" {
		domainFilter.Filters["lease_id"] = filter.LeaseID
	}

	page, err := s.invoiceRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToInvoiceListItemResponses(page.Items), page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Issue finalizes a draft invoice and sets its due date from the lease's
// payment terms
func (s *InvoiceService) Issue(ctx context.Context, tenantID, invoiceID uuid.UUID, expectedVersion int) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	lease, err := s.leaseRepo.FindByIDForTenant(ctx, tenantID, invoice.LeaseID)
	if err != nil {
		return nil, err
	}
	termDays := 7
	if lease.Setting != nil {
		termDays = lease.Setting.PaymentTermDays
	}

	now := s.clock.Now()
	if err := invoice.Issue(now, now.AddDate(0, 0, termDays)); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice, expectedVersion); err != nil {
		return nil, err
	}

	s.publishEvents(invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// RecordPayment applies a payment to an issued invoice
func (s *InvoiceService) RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.RecordPayment(s.money(req.Amount), s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.publishEvents(invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Void voids an invoice that has received no payments. Utility statements
// the invoice billed are released so a replacement invoice can pick them up.
func (s *InvoiceService) Void(ctx context.Context, tenantID, invoiceID uuid.UUID, req VoidInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := invoice.Void(req.Reason, now); err != nil {
		return nil, err
	}

	statements, err := s.statementRepo.FindByInvoice(ctx, tenantID, invoice.ID)
	if err != nil {
		return nil, err
	}
	for _, stmt := range statements {
		if err := stmt.ReleaseBilling(now); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.SaveWithStatements(ctx, invoice, statements); err != nil {
		return nil, err
	}

	s.publishEvents(invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// CreateCreditNote raises and immediately applies a credit against specific
// lines of an issued invoice
func (s *InvoiceService) CreateCreditNote(ctx context.Context, tenantID, invoiceID uuid.UUID, req CreateCreditNoteRequest) (*CreditNoteResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	number, err := s.creditNoteRepo.GenerateCreditNoteNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	lines := make([]billing.CreditNoteLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lineID, err := uuid.Parse(line.InvoiceLineID)
		if err != nil {
			return nil, shared.NewDomainError("UNKNOWN_INVOICE_LINE", "Credited line does not belong to this invoice")
		}
		lines = append(lines, billing.CreditNoteLineInput{
			InvoiceLineID: lineID,
			Amount:        s.money(line.Amount),
			Description:   line.Description,
		})
	}

	note, err := billing.NewCreditNote(tenantID, number, invoice, lines, req.Reason)
	if err != nil {
		return nil, err
	}

	if err := note.Apply(invoice, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	if err := s.creditNoteRepo.Save(ctx, note); err != nil {
		return nil, err
	}

	s.publishEvents(invoice)

	response := ToCreditNoteResponse(note)
	return &response, nil
}

func (s *InvoiceService) money(amount decimal.Decimal) valueobject.Money {
	m, _ := valueobject.NewMoney(amount, s.currency)
	return m
}

func (s *InvoiceService) publishEvents(invoice *billing.Invoice) {
	if s.eventPublisher == nil {
		invoice.ClearDomainEvents()
		return
	}
	for _, event := range invoice.GetDomainEvents() {
		_ = s.eventPublisher.Publish(event)
	}
	invoice.ClearDomainEvents()
}

// paymentResponsibleParty returns the first party flagged as responsible
// for payment
func paymentResponsibleParty(lease *leasing.Lease) *leasing.LeaseParty {
	for idx := range lease.Parties {
		if lease.Parties[idx].PaymentResponsible {
			return &lease.Parties[idx]
		}
	}
	return nil
}

// billableWindow intersects the billing month with the lease's coverage and
// returns the inclusive day range to charge for. The month is [periodStart,
// periodEnd); the returned window ends on the last occupied day.
func billableWindow(lease *leasing.Lease, periodStart, periodEnd time.Time) (time.Time, time.Time, error) {
	windowStart := periodStart
	if lease.StartDate.After(windowStart) {
		windowStart = lease.StartDate
	}

	windowEnd := periodEnd.AddDate(0, 0, -1)
	if lease.EndedAt != nil && lease.EndedAt.Before(windowEnd) {
		windowEnd = *lease.EndedAt
	} else if lease.EndDate != nil && lease.EndDate.Before(windowEnd) {
		windowEnd = *lease.EndDate
	}

	if windowEnd.Before(windowStart) {
		return time.Time{}, time.Time{}, billing.ErrNothingToBill
	}
	return windowStart, windowEnd, nil
}
