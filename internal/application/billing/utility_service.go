package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
)

// UtilityService manages rate plans and consumption statements
type UtilityService struct {
	planRepo      billing.UtilityRatePlanRepository
	statementRepo billing.UtilityStatementRepository
	leaseRepo     leasing.LeaseRepository
	clock         shared.Clock
}

// NewUtilityService creates a new UtilityService
func NewUtilityService(
	planRepo billing.UtilityRatePlanRepository,
	statementRepo billing.UtilityStatementRepository,
	leaseRepo leasing.LeaseRepository,
	clock shared.Clock,
) *UtilityService {
	return &UtilityService{
		planRepo:      planRepo,
		statementRepo: statementRepo,
		leaseRepo:     leaseRepo,
		clock:         clock,
	}
}

// CreateRatePlan creates a validated tiered rate plan
func (s *UtilityService) CreateRatePlan(ctx context.Context, tenantID uuid.UUID, req CreateRatePlanRequest) (*RatePlanResponse, error) {
	slabs := make([]billing.SlabInput, 0, len(req.Slabs))
	for _, in := range req.Slabs {
		slabs = append(slabs, billing.SlabInput{
			UpperBound:  in.UpperBound,
			UnitRate:    in.UnitRate,
			FixedCharge: in.FixedCharge,
		})
	}

	plan, err := billing.NewUtilityRatePlan(tenantID, req.Name, billing.UtilityKind(req.UtilityKind), req.UnitLabel, slabs)
	if err != nil {
		return nil, err
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	response := ToRatePlanResponse(plan)
	return &response, nil
}

// GetRatePlan retrieves a rate plan by ID
func (s *UtilityService) GetRatePlan(ctx context.Context, tenantID, planID uuid.UUID) (*RatePlanResponse, error) {
	plan, err := s.planRepo.FindByIDForTenant(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	response := ToRatePlanResponse(plan)
	return &response, nil
}

// ListRatePlans retrieves rate plans for a tenant
func (s *UtilityService) ListRatePlans(ctx context.Context, tenantID uuid.UUID, page, pageSize int) (*shared.Paginated[RatePlanResponse], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	result, err := s.planRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]RatePlanResponse, 0, len(result.Items))
	for _, plan := range result.Items {
		items = append(items, ToRatePlanResponse(plan))
	}

	paginated := shared.NewPaginated(items, result.Total, result.Page, result.PageSize)
	return &paginated, nil
}

// DeactivateRatePlan retires a plan from further statement pricing
func (s *UtilityService) DeactivateRatePlan(ctx context.Context, tenantID, planID uuid.UUID) (*RatePlanResponse, error) {
	plan, err := s.planRepo.FindByIDForTenant(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}

	plan.Deactivate()

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	response := ToRatePlanResponse(plan)
	return &response, nil
}

// RecordStatement records one utility statement for a lease period, either
// priced from meter readings against a rate plan or carrying a provider
// amount directly. A repeat recording for the same lease, period and kind
// lands as the next revision; it never edits the earlier one.
func (s *UtilityService) RecordStatement(ctx context.Context, tenantID uuid.UUID, req RecordStatementRequest) (*StatementResponse, error) {
	lease, err := s.leaseRepo.FindByIDForTenant(ctx, tenantID, req.LeaseID)
	if err != nil {
		return nil, err
	}

	var stmt *billing.UtilityStatement
	switch {
	case req.RatePlanID != nil:
		if req.PreviousReading == nil || req.CurrentReading == nil {
			return nil, shared.NewDomainError("INVALID_READINGS", "Metered statements require previous and current readings")
		}
		plan, err := s.planRepo.FindByIDForTenant(ctx, tenantID, *req.RatePlanID)
		if err != nil {
			return nil, err
		}
		stmt, err = billing.NewMeteredStatement(tenantID, lease.ID, plan, req.PeriodStart, req.PeriodEnd, *req.PreviousReading, *req.CurrentReading)
		if err != nil {
			return nil, err
		}
	case req.Amount != nil:
		stmt, err = billing.NewAmountStatement(tenantID, lease.ID, billing.UtilityKind(req.UtilityKind), req.PeriodStart, req.PeriodEnd, *req.Amount)
		if err != nil {
			return nil, err
		}
	default:
		return nil, shared.NewDomainError("INVALID_STATEMENT", "Statement requires either a rate plan with readings or a direct amount")
	}

	latest, err := s.statementRepo.LatestRevision(ctx, tenantID, lease.ID, stmt.UtilityKind, stmt.PeriodStart)
	if err != nil {
		return nil, err
	}
	stmt.Revision = latest + 1

	if err := s.statementRepo.Save(ctx, stmt); err != nil {
		return nil, err
	}

	response := ToStatementResponse(stmt)
	return &response, nil
}

// FinalizeStatement marks one revision as the billable statement for its
// lease, period and utility kind. At most one revision per period may be
// final; only finalized statements are picked up by invoice assembly.
func (s *UtilityService) FinalizeStatement(ctx context.Context, tenantID, statementID uuid.UUID) (*StatementResponse, error) {
	stmt, err := s.statementRepo.FindByIDForTenant(ctx, tenantID, statementID)
	if err != nil {
		return nil, err
	}

	final, err := s.statementRepo.HasFinalForPeriod(ctx, tenantID, stmt.LeaseID, stmt.UtilityKind, stmt.PeriodStart)
	if err != nil {
		return nil, err
	}
	if final {
		return nil, billing.ErrStatementFinalExists
	}

	if err := stmt.Finalize(s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.statementRepo.Save(ctx, stmt); err != nil {
		return nil, err
	}

	response := ToStatementResponse(stmt)
	return &response, nil
}

// ListStatements retrieves statements for a lease
func (s *UtilityService) ListStatements(ctx context.Context, tenantID, leaseID uuid.UUID, page, pageSize int) (*shared.Paginated[StatementResponse], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	result, err := s.statementRepo.FindByLease(ctx, tenantID, leaseID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]StatementResponse, 0, len(result.Items))
	for _, stmt := range result.Items {
		items = append(items, ToStatementResponse(stmt))
	}

	paginated := shared.NewPaginated(items, result.Total, result.Page, result.PageSize)
	return &paginated, nil
}
