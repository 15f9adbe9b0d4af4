package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	domain "github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithStatements(ctx context.Context, invoice *domain.Invoice, statements []*domain.UtilityStatement) error {
	args := m.Called(ctx, invoice, statements)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *domain.Invoice, expectedVersion int) error {
	args := m.Called(ctx, invoice, expectedVersion)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ExistsForLeasePeriod(ctx context.Context, tenantID, leaseID uuid.UUID, periodStart, periodEnd time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, leaseID, periodStart, periodEnd)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) FindByLease(ctx context.Context, tenantID, leaseID uuid.UUID, filter shared.Filter) (*shared.Paginated[*domain.Invoice], error) {
	args := m.Called(ctx, tenantID, leaseID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*domain.Invoice]), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*domain.Invoice], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*domain.Invoice]), args.Error(1)
}

func (m *MockInvoiceRepository) GenerateInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLeaseRepository is a mock implementation of leasing.LeaseRepository
type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*leasing.Lease, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindByLeaseNumber(ctx context.Context, tenantID uuid.UUID, leaseNumber string) (*leasing.Lease, error) {
	args := m.Called(ctx, tenantID, leaseNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) Save(ctx context.Context, lease *leasing.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) SaveWithLock(ctx context.Context, lease *leasing.Lease, expectedVersion int) error {
	args := m.Called(ctx, lease, expectedVersion)
	return args.Error(0)
}

func (m *MockLeaseRepository) HasActiveLease(ctx context.Context, tenantID, unitID uuid.UUID, asOf time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, unitID, asOf)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeaseRepository) FindDueForBilling(ctx context.Context, tenantID uuid.UUID, periodStart, periodEnd time.Time) ([]*leasing.Lease, error) {
	args := m.Called(ctx, tenantID, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*leasing.Lease], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*leasing.Lease]), args.Error(1)
}

func (m *MockLeaseRepository) GenerateLeaseNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockLeaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStatementRepository is a mock implementation of billing.UtilityStatementRepository
type MockStatementRepository struct {
	mock.Mock
}

func (m *MockStatementRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.UtilityStatement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UtilityStatement), args.Error(1)
}

func (m *MockStatementRepository) Save(ctx context.Context, statement *domain.UtilityStatement) error {
	args := m.Called(ctx, statement)
	return args.Error(0)
}

func (m *MockStatementRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*domain.UtilityStatement, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UtilityStatement), args.Error(1)
}

func (m *MockStatementRepository) FindBillableForLease(ctx context.Context, tenantID, leaseID uuid.UUID, cutoff time.Time) ([]*domain.UtilityStatement, error) {
	args := m.Called(ctx, tenantID, leaseID, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UtilityStatement), args.Error(1)
}

func (m *MockStatementRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*domain.UtilityStatement, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UtilityStatement), args.Error(1)
}

func (m *MockStatementRepository) HasFinalForPeriod(ctx context.Context, tenantID, leaseID uuid.UUID, kind domain.UtilityKind, periodStart time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, leaseID, kind, periodStart)
	return args.Bool(0), args.Error(1)
}

func (m *MockStatementRepository) LatestRevision(ctx context.Context, tenantID, leaseID uuid.UUID, kind domain.UtilityKind, periodStart time.Time) (int, error) {
	args := m.Called(ctx, tenantID, leaseID, kind, periodStart)
	return args.Int(0), args.Error(1)
}

func (m *MockStatementRepository) FindByLease(ctx context.Context, tenantID, leaseID uuid.UUID, filter shared.Filter) (*shared.Paginated[*domain.UtilityStatement], error) {
	args := m.Called(ctx, tenantID, leaseID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*domain.UtilityStatement]), args.Error(1)
}

// MockCreditNoteRepository is a mock implementation of billing.CreditNoteRepository
type MockCreditNoteRepository struct {
	mock.Mock
}

func (m *MockCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.CreditNote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) Save(ctx context.Context, note *domain.CreditNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*domain.CreditNote, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) GenerateCreditNoteNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func testClock() shared.Clock {
	return shared.FixedClock{Instant: time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)}
}

func utc(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// billableLease builds an active lease with a payer, a term of 15000 rent
// and 1200 maintenance, starting at the given date.
func billableLease(t *testing.T, tenantID uuid.UUID, start time.Time) *leasing.Lease {
	t.Helper()
	lease, err := leasing.NewLease(tenantID, "LSE-2026-00001", uuid.New(), start, nil, 5)
	require.NoError(t, err)
	_, err = lease.AddParty(uuid.New(), "Asha Nair", leasing.PartyRolePrimaryTenant, true)
	require.NoError(t, err)

	term, err := leasing.NewLeaseTerm(lease.ID, start, nil, decimal.NewFromInt(15000), decimal.NewFromInt(30000))
	require.NoError(t, err)
	_, err = term.WithFixedCharges(decimal.NewFromInt(1200), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, lease.AppendTerm(term))

	setting, err := leasing.NewLeaseBillingSetting(lease.ID, 1, 7, true, leasing.ProrationFixedThirty)
	require.NoError(t, err)
	require.NoError(t, lease.SetBillingSetting(setting))

	require.NoError(t, lease.Activate(false, start))
	lease.ClearDomainEvents()
	return lease
}

func newInvoiceService(invoiceRepo *MockInvoiceRepository, leaseRepo *MockLeaseRepository, stmtRepo *MockStatementRepository, noteRepo *MockCreditNoteRepository) *InvoiceService {
	return NewInvoiceService(invoiceRepo, leaseRepo, stmtRepo, noteRepo, testClock(), valueobject.INR, nil)
}

func TestInvoiceServiceGenerateForLease(t *testing.T) {
	tenantID := uuid.New()
	ctx := context.Background()
	march := utc(2026, 3, 1)
	april := utc(2026, 4, 1)

	t.Run("full month rent and maintenance", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		leaseRepo := new(MockLeaseRepository)
		stmtRepo := new(MockStatementRepository)
		noteRepo := new(MockCreditNoteRepository)
		service := newInvoiceService(invoiceRepo, leaseRepo, stmtRepo, noteRepo)

		lease := billableLease(t, tenantID, utc(2026, 1, 1))

		leaseRepo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(lease, nil)
		invoiceRepo.On("ExistsForLeasePeriod", ctx, tenantID, lease.ID, march, april).Return(false, nil)
		invoiceRepo.On("GenerateInvoiceNumber", ctx, tenantID).Return("INV-2026-00007", nil)
		stmtRepo.On("FindBillableForLease", ctx, tenantID, lease.ID, april).Return([]*domain.UtilityStatement{}, nil)
		invoiceRepo.On("SaveWithStatements", ctx, mock.AnythingOfType("*billing.Invoice"), mock.AnythingOfType("[]*billing.UtilityStatement")).Return(nil)

		response, err := service.GenerateForLease(ctx, tenantID, lease.ID, march)

		require.NoError(t, err)
		assert.Equal(t, "INV-2026-00007", response.InvoiceNumber)
		assert.Equal(t, domain.InvoiceStatusDraft.String(), response.Status)
		require.Len(t, response.Lines, 2)
		assert.True(t, response.TotalAmount.Equal(decimal.NewFromInt(16200)))
	})

	t.Run("mid month start prorates under fixed thirty", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		leaseRepo := new(MockLeaseRepository)
		stmtRepo := new(MockStatementRepository)
		noteRepo := new(MockCreditNoteRepository)
		service := newInvoiceService(invoiceRepo, leaseRepo, stmtRepo, noteRepo)

		// Moves in on March 22: ten billable days of a 31-day month.
		lease := billableLease(t, tenantID, utc(2026, 3, 22))

		leaseRepo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(lease, nil)
		invoiceRepo.On("ExistsForLeasePeriod", ctx, tenantID, lease.ID, march, april).Return(false, nil)
		invoiceRepo.On("GenerateInvoiceNumber", ctx, tenantID).Return("INV-2026-00008", nil)
		stmtRepo.On("FindBillableForLease", ctx, tenantID, lease.ID, april).Return([]*domain.UtilityStatement{}, nil)
		invoiceRepo.On("SaveWithStatements", ctx, mock.AnythingOfType("*billing.Invoice"), mock.AnythingOfType("[]*billing.UtilityStatement")).Return(nil)

		response, err := service.GenerateForLease(ctx, tenantID, lease.ID, march)

		require.NoError(t, err)
		// Rent 15000 * 10/30 = 5000, maintenance 1200 * 10/30 = 400.
		assert.True(t, response.TotalAmount.Equal(decimal.NewFromInt(5400)), "total %s", response.TotalAmount)
	})

	t.Run("finalized utility statements become lines and are saved with the invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		leaseRepo := new(MockLeaseRepository)
		stmtRepo := new(MockStatementRepository)
		noteRepo := new(MockCreditNoteRepository)
		service := newInvoiceService(invoiceRepo, leaseRepo, stmtRepo, noteRepo)

		lease := billableLease(t, tenantID, utc(2026, 1, 1))
		stmt := finalStatement(t, tenantID, lease.ID, march, april, "250")

		leaseRepo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(lease, nil)
		invoiceRepo.On("ExistsForLeasePeriod", ctx, tenantID, lease.ID, march, april).Return(false, nil)
		invoiceRepo.On("GenerateInvoiceNumber", ctx, tenantID).Return("INV-2026-00009", nil)
		stmtRepo.On("FindBillableForLease", ctx, tenantID, lease.ID, april).Return([]*domain.UtilityStatement{stmt}, nil)
		invoiceRepo.On("SaveWithStatements", ctx, mock.AnythingOfType("*billing.Invoice"), []*domain.UtilityStatement{stmt}).Return(nil)

		response, err := service.GenerateForLease(ctx, tenantID, lease.ID, march)

		require.NoError(t, err)
		require.Len(t, response.Lines, 3)
		assert.True(t, response.TotalAmount.Equal(decimal.RequireFromString("16217.50")), "total %s", response.TotalAmount)
		assert.True(t, stmt.Billed, "statement flips to billed in the same save as the invoice")
		invoiceRepo.AssertExpectations(t)
		stmtRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("existing invoice blocks generation", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		leaseRepo := new(MockLeaseRepository)
		stmtRepo := new(MockStatementRepository)
		noteRepo := new(MockCreditNoteRepository)
		service := newInvoiceService(invoiceRepo, leaseRepo, stmtRepo, noteRepo)

		lease := billableLease(t, tenantID, utc(2026, 1, 1))

		leaseRepo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(lease, nil)
		invoiceRepo.On("ExistsForLeasePeriod", ctx, tenantID, lease.ID, march, april).Return(true, nil)

		_, err := service.GenerateForLease(ctx, tenantID, lease.ID, march)

		assert.ErrorIs(t, err, domain.ErrInvoiceExists)
		invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("draft lease cannot be billed", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		leaseRepo := new(MockLeaseRepository)
		stmtRepo := new(MockStatementRepository)
		noteRepo := new(MockCreditNoteRepository)
		service := newInvoiceService(invoiceRepo, leaseRepo, stmtRepo, noteRepo)

		draft, err := leasing.NewLease(tenantID, "LSE-2026-00002", uuid.New(), utc(2026, 1, 1), nil, 5)
		require.NoError(t, err)

		leaseRepo.On("FindByIDForTenant", ctx, tenantID, draft.ID).Return(draft, nil)

		_, err = service.GenerateForLease(ctx, tenantID, draft.ID, march)

		assert.ErrorIs(t, err, leasing.ErrInvalidLeaseState)
	})

	t.Run("no term for billing window", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		leaseRepo := new(MockLeaseRepository)
		stmtRepo := new(MockStatementRepository)
		noteRepo := new(MockCreditNoteRepository)
		service := newInvoiceService(invoiceRepo, leaseRepo, stmtRepo, noteRepo)

		// Term history ends before March.
		lease := billableLease(t, tenantID, utc(2025, 1, 1))
		cut := utc(2026, 2, 1)
		lease.Terms[0].EffectiveTo = &cut

		leaseRepo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(lease, nil)
		invoiceRepo.On("ExistsForLeasePeriod", ctx, tenantID, lease.ID, march, april).Return(false, nil)

		_, err := service.GenerateForLease(ctx, tenantID, lease.ID, march)

		assert.ErrorIs(t, err, leasing.ErrNoTermFound)
		invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := decimal.RequireFromString(s)
	return &d
}

// finalStatement builds a finalized metered statement priced on the standard
// three-tier electricity plan for the given consumption.
func finalStatement(t *testing.T, tenantID, leaseID uuid.UUID, periodStart, periodEnd time.Time, consumption string) *domain.UtilityStatement {
	t.Helper()
	plan, err := domain.NewUtilityRatePlan(tenantID, "Electricity", domain.UtilityElectricity, "kWh", []domain.SlabInput{
		{UpperBound: decPtr(t, "100"), UnitRate: decimal.RequireFromString("0.05")},
		{UpperBound: decPtr(t, "200"), UnitRate: decimal.RequireFromString("0.075")},
		{UpperBound: nil, UnitRate: decimal.RequireFromString("0.10")},
	})
	require.NoError(t, err)
	stmt, err := domain.NewMeteredStatement(tenantID, leaseID, plan, periodStart, periodEnd, decimal.Zero, decimal.RequireFromString(consumption))
	require.NoError(t, err)
	require.NoError(t, stmt.Finalize(periodEnd))
	return stmt
}

func TestInvoiceServiceIssue(t *testing.T) {
	tenantID := uuid.New()
	ctx := context.Background()

	t.Run("issues with due date from payment terms", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		leaseRepo := new(MockLeaseRepository)
		stmtRepo := new(MockStatementRepository)
		noteRepo := new(MockCreditNoteRepository)
		service := newInvoiceService(invoiceRepo, leaseRepo, stmtRepo, noteRepo)

		lease := billableLease(t, tenantID, utc(2026, 1, 1))
		invoice, err := domain.NewInvoice(tenantID, "INV-2026-00010", lease.ID, lease.Parties[0].ID, utc(2026, 3, 1), utc(2026, 4, 1), valueobject.INR)
		require.NoError(t, err)
		unit, err := valueobject.NewMoney(decimal.NewFromInt(15000), valueobject.INR)
		require.NoError(t, err)
		require.NoError(t, invoice.AddLine(domain.ChargeRent, "Rent for March 2026", decimal.NewFromInt(1), unit, decimal.Zero, nil))

		invoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)
		leaseRepo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(lease, nil)
		invoiceRepo.On("SaveWithLock", ctx, invoice, 1).Return(nil)

		response, err := service.Issue(ctx, tenantID, invoice.ID, 1)

		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusIssued.String(), response.Status)
		require.NotNil(t, response.DueDate)
		assert.Equal(t, testClock().Now().AddDate(0, 0, 7), *response.DueDate)
	})

	t.Run("lease lookup failure aborts the issue", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		leaseRepo := new(MockLeaseRepository)
		stmtRepo := new(MockStatementRepository)
		noteRepo := new(MockCreditNoteRepository)
		service := newInvoiceService(invoiceRepo, leaseRepo, stmtRepo, noteRepo)

		lease := billableLease(t, tenantID, utc(2026, 1, 1))
		invoice, err := domain.NewInvoice(tenantID, "INV-2026-00011", lease.ID, lease.Parties[0].ID, utc(2026, 3, 1), utc(2026, 4, 1), valueobject.INR)
		require.NoError(t, err)

		invoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)
		leaseRepo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(nil, assert.AnError)

		_, err = service.Issue(ctx, tenantID, invoice.ID, 1)

		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
		invoiceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestInvoiceServiceVoid(t *testing.T) {
	tenantID := uuid.New()
	ctx := context.Background()
	march := utc(2026, 3, 1)
	april := utc(2026, 4, 1)

	// issuedForLease assembles an issued invoice carrying a billed statement.
	issuedForLease := func(t *testing.T, lease *leasing.Lease, stmt *domain.UtilityStatement) *domain.Invoice {
		t.Helper()
		invoice, err := domain.NewInvoice(tenantID, "INV-2026-00012", lease.ID, lease.Parties[0].ID, march, april, valueobject.INR)
		require.NoError(t, err)
		unit, err := valueobject.NewMoney(decimal.NewFromInt(15000), valueobject.INR)
		require.NoError(t, err)
		require.NoError(t, invoice.AddLine(domain.ChargeRent, "Rent for March 2026", decimal.NewFromInt(1), unit, decimal.Zero, nil))
		require.NoError(t, invoice.Issue(utc(2026, 3, 1), utc(2026, 3, 8)))
		require.NoError(t, stmt.MarkBilled(invoice.ID, utc(2026, 3, 1)))
		invoice.ClearDomainEvents()
		return invoice
	}

	t.Run("voiding releases the billed statements", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		leaseRepo := new(MockLeaseRepository)
		stmtRepo := new(MockStatementRepository)
		noteRepo := new(MockCreditNoteRepository)
		service := newInvoiceService(invoiceRepo, leaseRepo, stmtRepo, noteRepo)

		lease := billableLease(t, tenantID, utc(2026, 1, 1))
		stmt := finalStatement(t, tenantID, lease.ID, march, april, "250")
		invoice := issuedForLease(t, lease, stmt)

		invoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)
		stmtRepo.On("FindByInvoice", ctx, tenantID, invoice.ID).Return([]*domain.UtilityStatement{stmt}, nil)
		invoiceRepo.On("SaveWithStatements", ctx, invoice, []*domain.UtilityStatement{stmt}).Return(nil)

		response, err := service.Void(ctx, tenantID, invoice.ID, VoidInvoiceRequest{Reason: "duplicate billing"})

		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusVoid.String(), response.Status)
		assert.False(t, stmt.Billed, "statement is free for the replacement invoice")
		assert.Nil(t, stmt.InvoiceID)
		assert.True(t, stmt.IsFinal)
		invoiceRepo.AssertExpectations(t)
	})

	t.Run("payment blocks the void before statements are touched", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		leaseRepo := new(MockLeaseRepository)
		stmtRepo := new(MockStatementRepository)
		noteRepo := new(MockCreditNoteRepository)
		service := newInvoiceService(invoiceRepo, leaseRepo, stmtRepo, noteRepo)

		lease := billableLease(t, tenantID, utc(2026, 1, 1))
		stmt := finalStatement(t, tenantID, lease.ID, march, april, "250")
		invoice := issuedForLease(t, lease, stmt)
		paid, err := valueobject.NewMoney(decimal.NewFromInt(5000), valueobject.INR)
		require.NoError(t, err)
		require.NoError(t, invoice.RecordPayment(paid, utc(2026, 3, 5)))

		invoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)

		_, err = service.Void(ctx, tenantID, invoice.ID, VoidInvoiceRequest{Reason: "too late"})

		assert.ErrorIs(t, err, domain.ErrInvalidInvoiceState)
		assert.True(t, stmt.Billed)
		stmtRepo.AssertNotCalled(t, "FindByInvoice", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestInvoiceServiceCreateCreditNote(t *testing.T) {
	tenantID := uuid.New()
	ctx := context.Background()

	t.Run("credits a named line and settles it against the balance", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		leaseRepo := new(MockLeaseRepository)
		stmtRepo := new(MockStatementRepository)
		noteRepo := new(MockCreditNoteRepository)
		service := newInvoiceService(invoiceRepo, leaseRepo, stmtRepo, noteRepo)

		lease := billableLease(t, tenantID, utc(2026, 1, 1))
		invoice, err := domain.NewInvoice(tenantID, "INV-2026-00013", lease.ID, lease.Parties[0].ID, utc(2026, 3, 1), utc(2026, 4, 1), valueobject.INR)
		require.NoError(t, err)
		unit, err := valueobject.NewMoney(decimal.NewFromInt(15000), valueobject.INR)
		require.NoError(t, err)
		require.NoError(t, invoice.AddLine(domain.ChargeRent, "Rent for March 2026", decimal.NewFromInt(1), unit, decimal.Zero, nil))
		require.NoError(t, invoice.Issue(utc(2026, 3, 1), utc(2026, 3, 8)))
		invoice.ClearDomainEvents()

		invoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)
		noteRepo.On("GenerateCreditNoteNumber", ctx, tenantID).Return("CN-2026-00001", nil)
		invoiceRepo.On("Save", ctx, invoice).Return(nil)
		noteRepo.On("Save", ctx, mock.AnythingOfType("*billing.CreditNote")).Return(nil)

		response, err := service.CreateCreditNote(ctx, tenantID, invoice.ID, CreateCreditNoteRequest{
			Lines: []CreditNoteLineRequest{
				{InvoiceLineID: invoice.Lines[0].ID.String(), Amount: decimal.NewFromInt(500)},
			},
			Reason: "billing dispute",
		})

		require.NoError(t, err)
		assert.Equal(t, "CN-2026-00001", response.CreditNoteNumber)
		require.Len(t, response.Lines, 1)
		assert.Equal(t, invoice.Lines[0].ID, response.Lines[0].InvoiceLineID)
		assert.True(t, response.Amount.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, domain.InvoiceStatusPartiallyPaid, invoice.Status)
	})

	t.Run("rejects a credit above the line total", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		leaseRepo := new(MockLeaseRepository)
		stmtRepo := new(MockStatementRepository)
		noteRepo := new(MockCreditNoteRepository)
		service := newInvoiceService(invoiceRepo, leaseRepo, stmtRepo, noteRepo)

		lease := billableLease(t, tenantID, utc(2026, 1, 1))
		invoice, err := domain.NewInvoice(tenantID, "INV-2026-00014", lease.ID, lease.Parties[0].ID, utc(2026, 3, 1), utc(2026, 4, 1), valueobject.INR)
		require.NoError(t, err)
		unit, err := valueobject.NewMoney(decimal.NewFromInt(15000), valueobject.INR)
		require.NoError(t, err)
		require.NoError(t, invoice.AddLine(domain.ChargeRent, "Rent for March 2026", decimal.NewFromInt(1), unit, decimal.Zero, nil))
		require.NoError(t, invoice.Issue(utc(2026, 3, 1), utc(2026, 3, 8)))
		invoice.ClearDomainEvents()

		invoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)
		noteRepo.On("GenerateCreditNoteNumber", ctx, tenantID).Return("CN-2026-00002", nil)

		_, err = service.CreateCreditNote(ctx, tenantID, invoice.ID, CreateCreditNoteRequest{
			Lines: []CreditNoteLineRequest{
				{InvoiceLineID: invoice.Lines[0].ID.String(), Amount: decimal.NewFromInt(15001)},
			},
			Reason: "typo fix",
		})

		require.Error(t, err)
		invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
