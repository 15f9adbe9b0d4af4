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

// GormUtilityStatementRepository implements UtilityStatementRepository using GORM
type GormUtilityStatementRepository struct {
	db *gorm.DB
}

// NewGormUtilityStatementRepository creates a new GormUtilityStatementRepository
func NewGormUtilityStatementRepository(db *gorm.DB) *GormUtilityStatementRepository {
	return &GormUtilityStatementRepository{db: db}
}

// FindByID finds a statement by its ID
func (r *GormUtilityStatementRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.UtilityStatement, error) {
	var statement billing.UtilityStatement
	if err := r.db.WithContext(ctx).
		First(&statement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &statement, nil
}

// FindByIDForTenant finds a statement by ID within a tenant
func (r *GormUtilityStatementRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.UtilityStatement, error) {
	var statement billing.UtilityStatement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&statement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &statement, nil
}

// Save creates or updates a statement
func (r *GormUtilityStatementRepository) Save(ctx context.Context, statement *billing.UtilityStatement) error {
	return r.db.WithContext(ctx).Save(statement).Error
}

// FindBillableForLease finds finalized, unbilled statements whose period
// ends on or before the cutoff date, oldest first
func (r *GormUtilityStatementRepository) FindBillableForLease(ctx context.Context, tenantID, leaseID uuid.UUID, cutoff time.Time) ([]*billing.UtilityStatement, error) {
	var statements []*billing.UtilityStatement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND lease_id = ? AND is_final = ? AND billed = ? AND period_end <= ?",
			tenantID, leaseID, true, false, cutoff).
		Order("period_start ASC").
		Find(&statements).Error; err != nil {
		return nil, err
	}
	return statements, nil
}

// FindByInvoice finds the statements billed on an invoice
func (r *GormUtilityStatementRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*billing.UtilityStatement, error) {
	var statements []*billing.UtilityStatement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("period_start ASC").
		Find(&statements).Error; err != nil {
		return nil, err
	}
	return statements, nil
}

// HasFinalForPeriod checks whether a finalized statement already covers the
// lease, period start and utility kind
func (r *GormUtilityStatementRepository) HasFinalForPeriod(ctx context.Context, tenantID, leaseID uuid.UUID, kind billing.UtilityKind, periodStart time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.UtilityStatement{}).
		Where("tenant_id = ? AND lease_id = ? AND utility_kind = ? AND period_start = ? AND is_final = ?",
			tenantID, leaseID, kind, periodStart, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatestRevision returns the highest revision recorded for the lease, period
// start and utility kind, or 0 when none exists
func (r *GormUtilityStatementRepository) LatestRevision(ctx context.Context, tenantID, leaseID uuid.UUID, kind billing.UtilityKind, periodStart time.Time) (int, error) {
	var latest struct{ Revision int }
	err := r.db.WithContext(ctx).
		Model(&billing.UtilityStatement{}).
		Select("COALESCE(MAX(revision), 0) AS revision").
		Where("tenant_id = ? AND lease_id = ? AND utility_kind = ? AND period_start = ?",
			tenantID, leaseID, kind, periodStart).
		Scan(&latest).Error
	if err != nil {
		return 0, err
	}
	return latest.Revision, nil
}

// FindByLease finds statements for a lease with pagination
func (r *GormUtilityStatementRepository) FindByLease(ctx context.Context, tenantID, leaseID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.UtilityStatement], error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&billing.UtilityStatement{}).
			Where("tenant_id = ? AND lease_id = ?", tenantID, leaseID)
	}

	var total int64
	if err := r.applyFilterWithoutPagination(base(), filter).Count(&total).Error; err != nil {
		return nil, err
	}

	var statements []*billing.UtilityStatement
	if err := r.applyFilter(base(), filter).Find(&statements).Error; err != nil {
		return nil, err
	}

	paginated := shared.NewPaginated(statements, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// applyFilter applies filter options to the query
func (r *GormUtilityStatementRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
		query = query.Order("period_start DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormUtilityStatementRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "utility_kind":
			query = query.Where("utility_kind = ?", value)
		case "billed":
			query = query.Where("billed = ?", value)
		case "is_final":
			query = query.Where("is_final = ?", value)
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

// Ensure GormUtilityStatementRepository implements UtilityStatementRepository
var _ billing.UtilityStatementRepository = (*GormUtilityStatementRepository)(nil)
