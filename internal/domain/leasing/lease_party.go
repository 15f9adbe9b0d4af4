package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
)

// PartyRole represents the role a tenant plays on a lease
type PartyRole string

const (
	PartyRolePrimaryTenant PartyRole = "PRIMARY_TENANT"
	PartyRoleCoTenant      PartyRole = "CO_TENANT"
	PartyRoleGuarantor     PartyRole = "GUARANTOR"
	PartyRoleOccupant      PartyRole = "OCCUPANT"
)

// IsValid checks if the role is a valid PartyRole
func (r PartyRole) IsValid() bool {
	switch r {
	case PartyRolePrimaryTenant, PartyRoleCoTenant, PartyRoleGuarantor, PartyRoleOccupant:
		return true
	}
	return false
}

// String returns the string representation of PartyRole
func (r PartyRole) String() string {
	return string(r)
}

// LeaseParty joins a tenant to a lease with a role and a
// payment-responsibility flag
type LeaseParty struct {
	ID                 uuid.UUID
	LeaseID            uuid.UUID
	TenantPartyID      uuid.UUID
	Name               string
	Role               PartyRole
	PaymentResponsible bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewLeaseParty creates a new lease party
func NewLeaseParty(leaseID, tenantPartyID uuid.UUID, name string, role PartyRole, paymentResponsible bool) (*LeaseParty, error) {
	if tenantPartyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Tenant party ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PARTY_NAME", "Party name cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_PARTY_ROLE", "Unknown lease party role")
	}

	now := time.Now()
	return &LeaseParty{
		ID:                 uuid.New(),
		LeaseID:            leaseID,
		TenantPartyID:      tenantPartyID,
		Name:               name,
		Role:               role,
		PaymentResponsible: paymentResponsible,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}
