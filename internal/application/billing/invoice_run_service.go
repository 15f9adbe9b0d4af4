package billing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InvoiceGenerator assembles a draft invoice for one lease and month
type InvoiceGenerator interface {
	GenerateForLease(ctx context.Context, tenantID, leaseID uuid.UUID, periodStart time.Time) (*InvoiceResponse, error)
}

// InvoiceRunService executes batch invoice generation over the leases a
// tenant has opted in to automatic billing
type InvoiceRunService struct {
	runRepo   billing.InvoiceRunRepository
	leaseRepo leasing.LeaseRepository
	generator InvoiceGenerator
	clock     shared.Clock
	logger    *zap.Logger
	workers   int
}

// NewInvoiceRunService creates a new InvoiceRunService. workers bounds the
// number of leases processed concurrently.
func NewInvoiceRunService(
	runRepo billing.InvoiceRunRepository,
	leaseRepo leasing.LeaseRepository,
	generator InvoiceGenerator,
	clock shared.Clock,
	logger *zap.Logger,
	workers int,
) *InvoiceRunService {
	if workers < 1 {
		workers = 1
	}
	return &InvoiceRunService{
		runRepo:   runRepo,
		leaseRepo: leaseRepo,
		generator: generator,
		clock:     clock,
		logger:    logger,
		workers:   workers,
	}
}

// runOutcome carries one worker result back to the orchestrator
type runOutcome struct {
	leaseID   uuid.UUID
	invoiceID *uuid.UUID
	err       error
}

// Start launches a batch run for the calendar month starting at the request
// period. Only leases opted in to automatic generation with coverage in the
// period are selected. Leases are processed by a bounded worker pool; a failure on one
// lease is recorded on its run item and never aborts the rest. Leases
// already invoiced for the period are skipped. Context cancellation stops
// dispatch and leaves the run CANCELLED with the work recorded so far.
func (s *InvoiceRunService) Start(ctx context.Context, tenantID uuid.UUID, req StartRunRequest) (*InvoiceRunResponse, error) {
	periodStart := time.Date(req.PeriodStart.Year(), req.PeriodStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0)

	active, err := s.runRepo.HasActiveRun(ctx, tenantID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, billing.ErrDuplicateRun
	}

	run, err := billing.NewInvoiceRun(tenantID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, err
	}

	leases, err := s.leaseRepo.FindDueForBilling(ctx, tenantID, periodStart, periodEnd)
	if err != nil {
		now := s.clock.Now()
		if failErr := run.Fail(err.Error(), now); failErr == nil {
			_ = s.runRepo.Save(ctx, run)
		}
		return nil, err
	}

	now := s.clock.Now()
	if err := run.Start(len(leases), now); err != nil {
		return nil, err
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice run started",
		zap.String("run_id", run.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.Time("period_start", periodStart),
		zap.Int("lease_count", len(leases)),
		zap.Int("workers", s.workers),
	)

	// Each lease lands in its own slot, so workers never contend and the
	// item order matches the lease order.
	outcomes := make([]*runOutcome, len(leases))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				lease := leases[idx]
				response, genErr := s.generator.GenerateForLease(ctx, tenantID, lease.ID, periodStart)
				outcome := &runOutcome{leaseID: lease.ID, err: genErr}
				if genErr == nil {
					outcome.invoiceID = &response.ID
				}
				outcomes[idx] = outcome
			}
		}()
	}

dispatch:
	for idx := range leases {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	for _, outcome := range outcomes {
		if outcome == nil {
			continue // never dispatched before cancellation
		}
		switch {
		case outcome.err == nil:
			_ = run.RecordSuccess(outcome.leaseID, *outcome.invoiceID)
		case errors.Is(outcome.err, billing.ErrInvoiceExists):
			_ = run.RecordSkipped(outcome.leaseID, outcome.err.Error())
		default:
			_ = run.RecordFailure(outcome.leaseID, outcome.err.Error())
			s.logger.Warn("Invoice generation failed for lease",
				zap.String("run_id", run.ID.String()),
				zap.String("lease_id", outcome.leaseID.String()),
				zap.Error(outcome.err),
			)
		}
	}

	finished := s.clock.Now()
	if ctx.Err() != nil {
		if err := run.Cancel("context cancelled", finished); err != nil {
			return nil, err
		}
	} else {
		if err := run.Complete(finished); err != nil {
			return nil, err
		}
	}

	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice run finished",
		zap.String("run_id", run.ID.String()),
		zap.String("status", run.Status.String()),
		zap.Int("success", run.SuccessCount),
		zap.Int("failed", run.FailureCount),
		zap.Int("skipped", run.SkippedCount),
	)

	response := ToInvoiceRunResponse(run)
	return &response, nil
}

// GetByID retrieves a run with its items
func (s *InvoiceRunService) GetByID(ctx context.Context, tenantID, runID uuid.UUID) (*InvoiceRunResponse, error) {
	run, err := s.runRepo.FindByIDForTenant(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceRunResponse(run)
	return &response, nil
}

// List retrieves runs for a tenant, newest first
func (s *InvoiceRunService) List(ctx context.Context, tenantID uuid.UUID, page, pageSize int) (*shared.Paginated[InvoiceRunResponse], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	result, err := s.runRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]InvoiceRunResponse, 0, len(result.Items))
	for _, run := range result.Items {
		items = append(items, ToInvoiceRunResponse(run))
	}

	paginated := shared.NewPaginated(items, result.Total, result.Page, result.PageSize)
	return &paginated, nil
}

// Cancel aborts a pending run before it starts processing
func (s *InvoiceRunService) Cancel(ctx context.Context, tenantID, runID uuid.UUID, reason string) (*InvoiceRunResponse, error) {
	run, err := s.runRepo.FindByIDForTenant(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}

	if err := run.Cancel(reason, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, err
	}

	response := ToInvoiceRunResponse(run)
	return &response, nil
}
