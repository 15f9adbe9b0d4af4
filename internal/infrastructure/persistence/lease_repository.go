package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormLeaseRepository implements LeaseRepository using GORM
type GormLeaseRepository struct {
	db *gorm.DB
}

// NewGormLeaseRepository creates a new GormLeaseRepository
func NewGormLeaseRepository(db *gorm.DB) *GormLeaseRepository {
	return &GormLeaseRepository{db: db}
}

// FindByID finds a lease by its ID
func (r *GormLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Lease, error) {
	var lease leasing.Lease
	if err := r.db.WithContext(ctx).
		Preload("Parties").
		Preload("Terms").
		Preload("Setting").
		First(&lease, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lease, nil
}

// FindByIDForTenant finds a lease by ID within a tenant
func (r *GormLeaseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*leasing.Lease, error) {
	var lease leasing.Lease
	if err := r.db.WithContext(ctx).
		Preload("Parties").
		Preload("Terms").
		Preload("Setting").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&lease).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lease, nil
}

// FindByLeaseNumber finds a lease by lease number for a tenant
func (r *GormLeaseRepository) FindByLeaseNumber(ctx context.Context, tenantID uuid.UUID, leaseNumber string) (*leasing.Lease, error) {
	var lease leasing.Lease
	if err := r.db.WithContext(ctx).
		Preload("Parties").
		Preload("Terms").
		Preload("Setting").
		Where("tenant_id = ? AND lease_number = ?", tenantID, leaseNumber).
		First(&lease).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lease, nil
}

// Save creates or updates a lease with its parties, terms and billing setting
func (r *GormLeaseRepository) Save(ctx context.Context, lease *leasing.Lease) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(lease).Error; err != nil {
			return err
		}

		if lease.ID != uuid.Nil {
			if err := r.saveChildren(tx, lease); err != nil {
				return err
			}
		}

		return nil
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormLeaseRepository) SaveWithLock(ctx context.Context, lease *leasing.Lease, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current struct{ Version int }
		if err := tx.Model(&leasing.Lease{}).
			Select("version").
			Where("id = ?", lease.ID).
			First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if current.Version != expectedVersion {
			return shared.ErrConcurrencyConflict
		}

		lease.Version = expectedVersion + 1
		lease.UpdatedAt = time.Now()

		result := tx.Model(&leasing.Lease{}).
			Where("id = ? AND version = ?", lease.ID, expectedVersion).
			Updates(map[string]interface{}{
				"status":         lease.Status,
				"start_date":     lease.StartDate,
				"end_date":       lease.EndDate,
				"rent_due_day":   lease.RentDueDay,
				"grace_days":     lease.GraceDays,
				"late_fee_type":  lease.LateFeeType,
				"late_fee_value": lease.LateFeeValue,
				"auto_renew":     lease.AutoRenew,
				"activated_at":   lease.ActivatedAt,
				"notice_at":      lease.NoticeAt,
				"ended_at":       lease.EndedAt,
				"cancelled_at":   lease.CancelledAt,
				"cancel_reason":  lease.CancelReason,
				"version":        lease.Version,
				"updated_at":     lease.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return r.saveChildren(tx, lease)
	})
}

// saveChildren reconciles parties, terms and the billing setting with the
// aggregate's current state
func (r *GormLeaseRepository) saveChildren(tx *gorm.DB, lease *leasing.Lease) error {
	partyIDs := make([]uuid.UUID, len(lease.Parties))
	for i, party := range lease.Parties {
		partyIDs[i] = party.ID
	}
	if len(partyIDs) > 0 {
		if err := tx.Where("lease_id = ? AND id NOT IN ?", lease.ID, partyIDs).
			Delete(&leasing.LeaseParty{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("lease_id = ?", lease.ID).
			Delete(&leasing.LeaseParty{}).Error; err != nil {
			return err
		}
	}
	for i := range lease.Parties {
		lease.Parties[i].LeaseID = lease.ID
		if err := tx.Save(&lease.Parties[i]).Error; err != nil {
			return err
		}
	}

	// Terms are append-only, so there is nothing to delete.
	for i := range lease.Terms {
		lease.Terms[i].LeaseID = lease.ID
		if err := tx.Save(&lease.Terms[i]).Error; err != nil {
			return err
		}
	}

	if lease.Setting != nil {
		lease.Setting.LeaseID = lease.ID
		if err := tx.Save(lease.Setting).Error; err != nil {
			return err
		}
	}

	return nil
}

// HasActiveLease checks whether the unit has a lease in a non-terminal,
// non-draft state covering the given date. An open-ended lease always
// covers; an end date equal to asOf means the lease has already vacated.
func (r *GormLeaseRepository) HasActiveLease(ctx context.Context, tenantID, unitID uuid.UUID, asOf time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&leasing.Lease{}).
		Where("tenant_id = ? AND unit_id = ? AND status IN ? AND start_date <= ? AND (end_date IS NULL OR end_date > ?)",
			tenantID, unitID,
			[]leasing.LeaseStatus{leasing.LeaseStatusActive, leasing.LeaseStatusNoticeGiven},
			asOf, asOf).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindDueForBilling returns leases to include in a run for the half-open
// period [periodStart, periodEnd): opted in to automatic generation, not
// ended or cancelled, and with at least one day of coverage in the period
func (r *GormLeaseRepository) FindDueForBilling(ctx context.Context, tenantID uuid.UUID, periodStart, periodEnd time.Time) ([]*leasing.Lease, error) {
	var leases []*leasing.Lease
	if err := r.db.WithContext(ctx).
		Preload("Parties").
		Preload("Terms").
		Preload("Setting").
		Joins("JOIN lease_billing_settings ON lease_billing_settings.lease_id = leases.id").
		Where("leases.tenant_id = ? AND leases.status IN ? AND lease_billing_settings.generate_automatically = ? AND leases.start_date < ? AND (leases.end_date IS NULL OR leases.end_date > ?)",
			tenantID,
			[]leasing.LeaseStatus{leasing.LeaseStatusActive, leasing.LeaseStatusNoticeGiven},
			true, periodEnd, periodStart).
		Order("leases.lease_number ASC").
		Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// FindAll finds all leases for a tenant with pagination
func (r *GormLeaseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*leasing.Lease], error) {
	var total int64
	countQuery := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&leasing.Lease{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	var leases []*leasing.Lease
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&leasing.Lease{}).
			Preload("Parties").
			Preload("Terms").
			Preload("Setting").
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&leases).Error; err != nil {
		return nil, err
	}

	paginated := shared.NewPaginated(leases, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// existsByLeaseNumber checks if a lease number exists for a tenant
func (r *GormLeaseRepository) existsByLeaseNumber(ctx context.Context, tenantID uuid.UUID, leaseNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&leasing.Lease{}).
		Where("tenant_id = ? AND lease_number = ?", tenantID, leaseNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateLeaseNumber generates a unique lease number for a tenant.
// Format: LSE-YYYY-NNNNN (e.g., LSE-2026-00001)
func (r *GormLeaseRepository) GenerateLeaseNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("LSE-%d-", year)

	var lastLease leasing.Lease
	err := r.db.WithContext(ctx).
		Model(&leasing.Lease{}).
		Where("tenant_id = ? AND lease_number LIKE ?", tenantID, prefix+"%").
		Order("lease_number DESC").
		First(&lastLease).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastLease.LeaseNumber != "" {
		parts := strings.Split(lastLease.LeaseNumber, "-")
		if len(parts) == 3 {
			var num int64
			_, parseErr := fmt.Sscanf(parts[2], "%d", &num)
			if parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	leaseNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.existsByLeaseNumber(ctx, tenantID, leaseNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			leaseNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.existsByLeaseNumber(ctx, tenantID, leaseNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return leaseNumber, nil
}

// Delete deletes a lease with its child rows
func (r *GormLeaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lease_id = ?", id).Delete(&leasing.LeaseParty{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lease_id = ?", id).Delete(&leasing.LeaseTerm{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lease_id = ?", id).Delete(&leasing.LeaseBillingSetting{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&leasing.Lease{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// applyFilter applies filter options to the query
func (r *GormLeaseRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
func (r *GormLeaseRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("lease_number ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "unit_id":
			query = query.Where("unit_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("start_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("start_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormLeaseRepository implements LeaseRepository
var _ leasing.LeaseRepository = (*GormLeaseRepository)(nil)
