package leasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
)

// LeaseService handles lease lifecycle operations
type LeaseService struct {
	leaseRepo      leasing.LeaseRepository
	clock          shared.Clock
	eventPublisher shared.EventPublisher
}

// NewLeaseService creates a new LeaseService
func NewLeaseService(leaseRepo leasing.LeaseRepository, clock shared.Clock) *LeaseService {
	return &LeaseService{
		leaseRepo: leaseRepo,
		clock:     clock,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *LeaseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new draft lease
func (s *LeaseService) Create(ctx context.Context, tenantID uuid.UUID, req CreateLeaseRequest) (*LeaseResponse, error) {
	leaseNumber, err := s.leaseRepo.GenerateLeaseNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	lease, err := leasing.NewLease(tenantID, leaseNumber, req.UnitID, req.StartDate, req.EndDate, req.RentDueDay)
	if err != nil {
		return nil, err
	}
	lease.AutoRenew = req.AutoRenew

	if err := s.leaseRepo.Save(ctx, lease); err != nil {
		return nil, err
	}

	s.publishEvents(lease)

	response := ToLeaseResponse(lease)
	return &response, nil
}

// GetByID retrieves a lease by ID
func (s *LeaseService) GetByID(ctx context.Context, tenantID, leaseID uuid.UUID) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByIDForTenant(ctx, tenantID, leaseID)
	if err != nil {
		return nil, err
	}
	response := ToLeaseResponse(lease)
	return &response, nil
}

// List retrieves leases with filtering and pagination
func (s *LeaseService) List(ctx context.Context, tenantID uuid.UUID, filter LeaseListFilter) (*shared.Paginated[LeaseListItemResponse], error) {
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
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.UnitID != "" {
		domainFilter.Filters["unit_id"] = filter.UnitID
	}

	page, err := s.leaseRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToLeaseListItemResponses(page.Items), page.Total, page.Page, page.PageSize)
	return &result, nil
}

// AddParty adds a party to a draft lease
func (s *LeaseService) AddParty(ctx context.Context, tenantID, leaseID uuid.UUID, req AddPartyRequest) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByIDForTenant(ctx, tenantID, leaseID)
	if err != nil {
		return nil, err
	}

	if _, err := lease.AddParty(req.TenantPartyID, req.Name, leasing.PartyRole(req.Role), req.PaymentResponsible); err != nil {
		return nil, err
	}

	if err := s.leaseRepo.Save(ctx, lease); err != nil {
		return nil, err
	}

	response := ToLeaseResponse(lease)
	return &response, nil
}

// RemoveParty removes a party from a draft lease
func (s *LeaseService) RemoveParty(ctx context.Context, tenantID, leaseID, partyID uuid.UUID) error {
	lease, err := s.leaseRepo.FindByIDForTenant(ctx, tenantID, leaseID)
	if err != nil {
		return err
	}

	if err := lease.RemoveParty(partyID); err != nil {
		return err
	}

	return s.leaseRepo.Save(ctx, lease)
}

// AppendTerm appends a new financial term to the lease's history
func (s *LeaseService) AppendTerm(ctx context.Context, tenantID, leaseID uuid.UUID, req AppendTermRequest) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByIDForTenant(ctx, tenantID, leaseID)
	if err != nil {
		return nil, err
	}

	term, err := leasing.NewLeaseTerm(lease.ID, req.EffectiveFrom, req.EffectiveTo, req.MonthlyRent, req.SecurityDeposit)
	if err != nil {
		return nil, err
	}
	if _, err := term.WithFixedCharges(req.MaintenanceCharge, req.OtherFixedCharge); err != nil {
		return nil, err
	}
	if req.EscalationType != "" {
		if _, err := term.WithEscalation(leasing.EscalationType(req.EscalationType), req.EscalationValue, req.EscalationIntervalMonths); err != nil {
			return nil, err
		}
	}

	if err := lease.AppendTerm(term); err != nil {
		return nil, err
	}

	if err := s.leaseRepo.Save(ctx, lease); err != nil {
		return nil, err
	}

	s.publishEvents(lease)

	response := ToLeaseResponse(lease)
	return &response, nil
}

// SetBillingSetting attaches or replaces the lease billing configuration
func (s *LeaseService) SetBillingSetting(ctx context.Context, tenantID, leaseID uuid.UUID, req BillingSettingRequest) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByIDForTenant(ctx, tenantID, leaseID)
	if err != nil {
		return nil, err
	}

	setting, err := leasing.NewLeaseBillingSetting(lease.ID, req.BillingDay, req.PaymentTermDays, req.GenerateAutomatically, leasing.ProrationMethod(req.ProrationMethod))
	if err != nil {
		return nil, err
	}
	setting.InvoiceNumberPrefix = req.InvoiceNumberPrefix

	if err := lease.SetBillingSetting(setting); err != nil {
		return nil, err
	}

	if err := s.leaseRepo.Save(ctx, lease); err != nil {
		return nil, err
	}

	response := ToLeaseResponse(lease)
	return &response, nil
}

// Activate transitions a draft lease to active. The unit occupancy answer is
// resolved against other leases on the same unit as of this lease's start
// date, so a lease moving in after the sitting one vacates is not blocked.
// expectedVersion guards against concurrent activation.
func (s *LeaseService) Activate(ctx context.Context, tenantID, leaseID uuid.UUID, expectedVersion int) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByIDForTenant(ctx, tenantID, leaseID)
	if err != nil {
		return nil, err
	}

	occupied, err := s.leaseRepo.HasActiveLease(ctx, tenantID, lease.UnitID, lease.StartDate)
	if err != nil {
		return nil, err
	}

	if err := lease.Activate(occupied, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.leaseRepo.SaveWithLock(ctx, lease, expectedVersion); err != nil {
		return nil, err
	}

	s.publishEvents(lease)

	response := ToLeaseResponse(lease)
	return &response, nil
}

// GiveNotice records notice to vacate on an active lease
func (s *LeaseService) GiveNotice(ctx context.Context, tenantID, leaseID uuid.UUID, req GiveNoticeRequest) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByIDForTenant(ctx, tenantID, leaseID)
	if err != nil {
		return nil, err
	}

	if err := lease.GiveNotice(req.NoticeDate); err != nil {
		return nil, err
	}

	if err := s.leaseRepo.Save(ctx, lease); err != nil {
		return nil, err
	}

	s.publishEvents(lease)

	response := ToLeaseResponse(lease)
	return &response, nil
}

// End closes an active or notice-given lease
func (s *LeaseService) End(ctx context.Context, tenantID, leaseID uuid.UUID, req EndLeaseRequest) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByIDForTenant(ctx, tenantID, leaseID)
	if err != nil {
		return nil, err
	}

	if err := lease.End(req.EndDate); err != nil {
		return nil, err
	}

	if err := s.leaseRepo.Save(ctx, lease); err != nil {
		return nil, err
	}

	s.publishEvents(lease)

	response := ToLeaseResponse(lease)
	return &response, nil
}

// Cancel cancels a draft lease
func (s *LeaseService) Cancel(ctx context.Context, tenantID, leaseID uuid.UUID, req CancelLeaseRequest) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByIDForTenant(ctx, tenantID, leaseID)
	if err != nil {
		return nil, err
	}

	if err := lease.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.leaseRepo.Save(ctx, lease); err != nil {
		return nil, err
	}

	s.publishEvents(lease)

	response := ToLeaseResponse(lease)
	return &response, nil
}

func (s *LeaseService) publishEvents(lease *leasing.Lease) {
	if s.eventPublisher == nil {
		lease.ClearDomainEvents()
		return
	}
	for _, event := range lease.GetDomainEvents() {
		// Publish failures are not fatal to the command.
		_ = s.eventPublisher.Publish(event)
	}
	lease.ClearDomainEvents()
}
