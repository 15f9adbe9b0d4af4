package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormUtilityRatePlanRepository implements UtilityRatePlanRepository using GORM
type GormUtilityRatePlanRepository struct {
	db *gorm.DB
}

// NewGormUtilityRatePlanRepository creates a new GormUtilityRatePlanRepository
func NewGormUtilityRatePlanRepository(db *gorm.DB) *GormUtilityRatePlanRepository {
	return &GormUtilityRatePlanRepository{db: db}
}

// FindByID finds a rate plan by its ID
func (r *GormUtilityRatePlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.UtilityRatePlan, error) {
	var plan billing.UtilityRatePlan
	if err := r.db.WithContext(ctx).
		Preload("Slabs").
		First(&plan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FindByIDForTenant finds a rate plan by ID within a tenant
func (r *GormUtilityRatePlanRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.UtilityRatePlan, error) {
	var plan billing.UtilityRatePlan
	if err := r.db.WithContext(ctx).
		Preload("Slabs").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// Save creates or updates a rate plan with its slabs
func (r *GormUtilityRatePlanRepository) Save(ctx context.Context, plan *billing.UtilityRatePlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(plan).Error; err != nil {
			return err
		}

		if plan.ID != uuid.Nil {
			currentSlabIDs := make([]uuid.UUID, len(plan.Slabs))
			for i, slab := range plan.Slabs {
				currentSlabIDs[i] = slab.ID
			}

			if len(currentSlabIDs) > 0 {
				if err := tx.Where("rate_plan_id = ? AND id NOT IN ?", plan.ID, currentSlabIDs).
					Delete(&billing.RateSlab{}).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Where("rate_plan_id = ?", plan.ID).
					Delete(&billing.RateSlab{}).Error; err != nil {
					return err
				}
			}

			for i := range plan.Slabs {
				plan.Slabs[i].RatePlanID = plan.ID
				if err := tx.Save(&plan.Slabs[i]).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// FindActiveByKind finds active rate plans of a utility kind for a tenant
func (r *GormUtilityRatePlanRepository) FindActiveByKind(ctx context.Context, tenantID uuid.UUID, kind billing.UtilityKind) ([]*billing.UtilityRatePlan, error) {
	var plans []*billing.UtilityRatePlan
	if err := r.db.WithContext(ctx).
		Preload("Slabs").
		Where("tenant_id = ? AND utility_kind = ? AND active = ?", tenantID, kind, true).
		Order("name ASC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// FindAll finds all rate plans for a tenant with pagination
func (r *GormUtilityRatePlanRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.UtilityRatePlan], error) {
	var total int64
	countQuery := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&billing.UtilityRatePlan{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	var plans []*billing.UtilityRatePlan
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&billing.UtilityRatePlan{}).
			Preload("Slabs").
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}

	paginated := shared.NewPaginated(plans, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// applyFilter applies filter options to the query
func (r *GormUtilityRatePlanRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
func (r *GormUtilityRatePlanRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "utility_kind":
			query = query.Where("utility_kind = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}

	return query
}

// Ensure GormUtilityRatePlanRepository implements UtilityRatePlanRepository
var _ billing.UtilityRatePlanRepository = (*GormUtilityRatePlanRepository)(nil)
