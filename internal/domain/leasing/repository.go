package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
)

// LeaseRepository defines the persistence interface for lease aggregates
type LeaseRepository interface {
	// FindByID finds a lease by ID with its parties, terms and billing setting loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Lease, error)

	// FindByIDForTenant finds a lease by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Lease, error)

	// FindByLeaseNumber finds a lease by its human-readable number
	FindByLeaseNumber(ctx context.Context, tenantID uuid.UUID, leaseNumber string) (*Lease, error)

	// Save persists a lease aggregate with all child rows
	Save(ctx context.Context, lease *Lease) error

	// SaveWithLock persists a lease with optimistic lock checking.
	// Returns shared.ErrConcurrencyConflict when the stored version
	// does not match expectedVersion.
	SaveWithLock(ctx context.Context, lease *Lease, expectedVersion int) error

	// HasActiveLease reports whether the unit has a lease in a non-terminal,
	// non-draft state whose coverage includes the given date. A lease ending
	// exactly on that date does not count as overlapping.
	HasActiveLease(ctx context.Context, tenantID, unitID uuid.UUID, asOf time.Time) (bool, error)

	// FindDueForBilling returns leases to include in an invoice run for the
	// period: active or under notice, automatic generation enabled, and
	// coverage overlapping [periodStart, periodEnd)
	FindDueForBilling(ctx context.Context, tenantID uuid.UUID, periodStart, periodEnd time.Time) ([]*Lease, error)

	// FindAll returns leases for a tenant with pagination
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Lease], error)

	// GenerateLeaseNumber generates the next lease number for the year
	GenerateLeaseNumber(ctx context.Context, tenantID uuid.UUID) (string, error)

	// Delete removes a lease (drafts only, enforced by the service layer)
	Delete(ctx context.Context, id uuid.UUID) error
}
