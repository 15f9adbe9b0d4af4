package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormInvoiceRunRepository implements InvoiceRunRepository using GORM
type GormInvoiceRunRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRunRepository creates a new GormInvoiceRunRepository
func NewGormInvoiceRunRepository(db *gorm.DB) *GormInvoiceRunRepository {
	return &GormInvoiceRunRepository{db: db}
}

// FindByID finds a run by its ID
func (r *GormInvoiceRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.InvoiceRun, error) {
	var run billing.InvoiceRun
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindByIDForTenant finds a run by ID within a tenant
func (r *GormInvoiceRunRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.InvoiceRun, error) {
	var run billing.InvoiceRun
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// Save creates or updates a run with its items. Items are append-only, so
// only inserts and upserts happen here.
func (r *GormInvoiceRunRepository) Save(ctx context.Context, run *billing.InvoiceRun) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(run).Error; err != nil {
			return err
		}

		for i := range run.Items {
			run.Items[i].RunID = run.ID
			if err := tx.Save(&run.Items[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// HasActiveRun checks whether a pending or running run overlaps the period
func (r *GormInvoiceRunRepository) HasActiveRun(ctx context.Context, tenantID uuid.UUID, periodStart, periodEnd time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.InvoiceRun{}).
		Where("tenant_id = ? AND status IN ? AND period_start < ? AND period_end > ?",
			tenantID,
			[]billing.InvoiceRunStatus{billing.InvoiceRunStatusPending, billing.InvoiceRunStatusRunning},
			periodEnd, periodStart).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll finds all runs for a tenant with pagination, newest first
func (r *GormInvoiceRunRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.InvoiceRun], error) {
	var total int64
	countQuery := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&billing.InvoiceRun{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	var runs []*billing.InvoiceRun
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&billing.InvoiceRun{}).
			Preload("Items").
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}

	paginated := shared.NewPaginated(runs, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRunRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRunRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "period_start":
			if t, ok := value.(time.Time); ok {
				query = query.Where("period_start >= ?", t)
			}
		case "period_end":
			if t, ok := value.(time.Time); ok {
				query = query.Where("period_end <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormInvoiceRunRepository implements InvoiceRunRepository
var _ billing.InvoiceRunRepository = (*GormInvoiceRunRepository)(nil)
