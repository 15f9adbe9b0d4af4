package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
)

// InvoiceRepository defines the persistence interface for invoices
type InvoiceRepository interface {
	// FindByID finds an invoice by ID with its lines loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForTenant finds an invoice by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// Save persists the invoice and all of its lines atomically. A draft
	// either lands whole or not at all.
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithStatements persists the invoice together with the utility
	// statements it billed (or released) in one transaction, so an invoice
	// never lands without its statements flipping, or vice versa
	SaveWithStatements(ctx context.Context, invoice *Invoice, statements []*UtilityStatement) error

	// SaveWithLock persists with optimistic lock checking
	SaveWithLock(ctx context.Context, invoice *Invoice, expectedVersion int) error

	// ExistsForLeasePeriod reports whether a non-void invoice already covers
	// the lease and billing period. The idempotency guard for batch runs.
	ExistsForLeasePeriod(ctx context.Context, tenantID, leaseID uuid.UUID, periodStart, periodEnd time.Time) (bool, error)

	// FindByLease returns invoices for a lease, newest first
	FindByLease(ctx context.Context, tenantID, leaseID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Invoice], error)

	// FindAll returns invoices for a tenant with pagination
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Invoice], error)

	// GenerateInvoiceNumber generates the next invoice number for the year
	GenerateInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error)

	// Delete removes a draft invoice
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceRunRepository defines the persistence interface for batch runs
type InvoiceRunRepository interface {
	// FindByID finds a run by ID with its items loaded
	FindByID(ctx context.Context, id uuid.UUID) (*InvoiceRun, error)

	// FindByIDForTenant finds a run by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceRun, error)

	// Save persists the run and its items
	Save(ctx context.Context, run *InvoiceRun) error

	// HasActiveRun reports whether a pending or running run overlaps the
	// period for the tenant
	HasActiveRun(ctx context.Context, tenantID uuid.UUID, periodStart, periodEnd time.Time) (bool, error)

	// FindAll returns runs for a tenant with pagination, newest first
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*InvoiceRun], error)
}

// UtilityRatePlanRepository defines the persistence interface for rate plans
type UtilityRatePlanRepository interface {
	// FindByID finds a plan by ID with its slabs loaded
	FindByID(ctx context.Context, id uuid.UUID) (*UtilityRatePlan, error)

	// FindByIDForTenant finds a plan by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*UtilityRatePlan, error)

	// Save persists the plan and its slabs
	Save(ctx context.Context, plan *UtilityRatePlan) error

	// FindActiveByKind returns active plans of a utility kind for a tenant
	FindActiveByKind(ctx context.Context, tenantID uuid.UUID, kind UtilityKind) ([]*UtilityRatePlan, error)

	// FindAll returns plans for a tenant with pagination
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*UtilityRatePlan], error)
}

// UtilityStatementRepository defines the persistence interface for statements
type UtilityStatementRepository interface {
	// FindByID finds a statement by ID
	FindByID(ctx context.Context, id uuid.UUID) (*UtilityStatement, error)

	// FindByIDForTenant finds a statement by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*UtilityStatement, error)

	// Save persists a statement
	Save(ctx context.Context, statement *UtilityStatement) error

	// FindBillableForLease returns finalized, unbilled statements whose
	// period ends on or before the cutoff date
	FindBillableForLease(ctx context.Context, tenantID, leaseID uuid.UUID, cutoff time.Time) ([]*UtilityStatement, error)

	// FindByInvoice returns the statements billed on an invoice
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*UtilityStatement, error)

	// HasFinalForPeriod reports whether a finalized statement already covers
	// the lease, period start and utility kind
	HasFinalForPeriod(ctx context.Context, tenantID, leaseID uuid.UUID, kind UtilityKind, periodStart time.Time) (bool, error)

	// LatestRevision returns the highest revision recorded for the lease,
	// period start and utility kind, or 0 when none exists
	LatestRevision(ctx context.Context, tenantID, leaseID uuid.UUID, kind UtilityKind, periodStart time.Time) (int, error)

	// FindByLease returns statements for a lease with pagination
	FindByLease(ctx context.Context, tenantID, leaseID uuid.UUID, filter shared.Filter) (*shared.Paginated[*UtilityStatement], error)
}

// CreditNoteRepository defines the persistence interface for credit notes
type CreditNoteRepository interface {
	// FindByID finds a credit note by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CreditNote, error)

	// Save persists a credit note
	Save(ctx context.Context, note *CreditNote) error

	// FindByInvoice returns credit notes raised against an invoice
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*CreditNote, error)

	// GenerateCreditNoteNumber generates the next credit note number
	GenerateCreditNoteNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
