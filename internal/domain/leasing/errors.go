package leasing

import "github.com/propman/backend/internal/domain/shared"

// Activation and lifecycle errors. Activation checks are evaluated in a fixed
// order and the first failure aborts the transition.
var (
	ErrInvalidLeaseState   = shared.NewDomainError("INVALID_LEASE_STATE", "Lease is not in a state that allows this operation")
	ErrUnitAlreadyOccupied = shared.NewDomainError("UNIT_ALREADY_OCCUPIED", "Unit already has an active lease overlapping the start date")
	ErrMissingPrimaryTenant = shared.NewDomainError("MISSING_PRIMARY_TENANT", "Lease must have at least one party with the Primary Tenant role")
	ErrNoPayerDesignated   = shared.NewDomainError("NO_PAYER_DESIGNATED", "Lease must have at least one payment-responsible party")
	ErrNoTermForStartDate  = shared.NewDomainError("NO_TERM_FOR_START_DATE", "No lease term covers the lease start date")
	ErrInvalidRentDueDay   = shared.NewDomainError("INVALID_RENT_DUE_DAY", "Rent due day must be between 1 and 28")
	ErrInvalidDateRange    = shared.NewDomainError("INVALID_DATE_RANGE", "Lease end date must be after the start date")
	ErrNoTermFound         = shared.NewDomainError("NO_TERM_FOUND", "No lease term is effective on the requested date")
	ErrTermOverlap         = shared.NewDomainError("TERM_OVERLAP", "Lease term effective ranges must not overlap")
)
