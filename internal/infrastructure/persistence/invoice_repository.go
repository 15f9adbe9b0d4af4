package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByIDForTenant finds an invoice by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// Save creates or updates an invoice with all of its lines in one transaction
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveInvoice(tx, invoice)
	})
}

// SaveWithStatements persists the invoice and the utility statements it
// billed or released in one transaction, so neither side lands without the
// other
func (r *GormInvoiceRepository) SaveWithStatements(ctx context.Context, invoice *billing.Invoice, statements []*billing.UtilityStatement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveInvoice(tx, invoice); err != nil {
			return err
		}
		for _, statement := range statements {
			if err := tx.Save(statement).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormInvoiceRepository) saveInvoice(tx *gorm.DB, invoice *billing.Invoice) error {
	if err := tx.Save(invoice).Error; err != nil {
		return err
	}

	if invoice.ID != uuid.Nil {
		currentLineIDs := make([]uuid.UUID, len(invoice.Lines))
		for i, line := range invoice.Lines {
			currentLineIDs[i] = line.ID
		}

		if len(currentLineIDs) > 0 {
			if err := tx.Where("invoice_id = ? AND id NOT IN ?", invoice.ID, currentLineIDs).
				Delete(&billing.InvoiceLine{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("invoice_id = ?", invoice.ID).
				Delete(&billing.InvoiceLine{}).Error; err != nil {
				return err
			}
		}

		for i := range invoice.Lines {
			invoice.Lines[i].InvoiceID = invoice.ID
			if err := tx.Save(&invoice.Lines[i]).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current struct{ Version int }
		if err := tx.Model(&billing.Invoice{}).
			Select("version").
			Where("id = ?", invoice.ID).
			First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if current.Version != expectedVersion {
			return shared.ErrConcurrencyConflict
		}

		invoice.Version = expectedVersion + 1
		invoice.UpdatedAt = time.Now()

		result := tx.Model(&billing.Invoice{}).
			Where("id = ? AND version = ?", invoice.ID, expectedVersion).
			Updates(map[string]interface{}{
				"status":           invoice.Status,
				"sub_total_amount": invoice.SubTotalAmount,
				"tax_amount":       invoice.TaxAmount,
				"total_amount":     invoice.TotalAmount,
				"amount_paid":      invoice.AmountPaid,
				"issued_at":        invoice.IssuedAt,
				"due_date":         invoice.DueDate,
				"paid_at":          invoice.PaidAt,
				"voided_at":        invoice.VoidedAt,
				"void_reason":      invoice.VoidReason,
				"version":          invoice.Version,
				"updated_at":       invoice.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		for i := range invoice.Lines {
			invoice.Lines[i].InvoiceID = invoice.ID
			if err := tx.Save(&invoice.Lines[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// ExistsForLeasePeriod checks whether a non-void invoice already overlaps the
// lease billing period
func (r *GormInvoiceRepository) ExistsForLeasePeriod(ctx context.Context, tenantID, leaseID uuid.UUID, periodStart, periodEnd time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("tenant_id = ? AND lease_id = ? AND status <> ? AND period_start < ? AND period_end > ?",
			tenantID, leaseID, billing.InvoiceStatusVoid, periodEnd, periodStart).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByLease finds invoices for a lease with pagination
func (r *GormInvoiceRepository) FindByLease(ctx context.Context, tenantID, leaseID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Invoice], error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&billing.Invoice{}).
			Where("tenant_id = ? AND lease_id = ?", tenantID, leaseID)
	}
	return r.paginate(base, filter)
}

// FindAll finds all invoices for a tenant with pagination
func (r *GormInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Invoice], error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&billing.Invoice{}).
			Where("tenant_id = ?", tenantID)
	}
	return r.paginate(base, filter)
}

func (r *GormInvoiceRepository) paginate(base func() *gorm.DB, filter shared.Filter) (*shared.Paginated[*billing.Invoice], error) {
	var total int64
	if err := r.applyFilterWithoutPagination(base(), filter).Count(&total).Error; err != nil {
		return nil, err
	}

	var invoices []*billing.Invoice
	query := r.applyFilter(base().Preload("Lines"), filter)
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}

	paginated := shared.NewPaginated(invoices, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// existsByInvoiceNumber checks if an invoice number exists for a tenant
func (r *GormInvoiceRepository) existsByInvoiceNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("tenant_id = ? AND invoice_number = ?", tenantID, invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateInvoiceNumber generates a unique invoice number for a tenant.
// Format: INV-YYYY-NNNNN (e.g., INV-2026-00001)
func (r *GormInvoiceRepository) GenerateInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("INV-%d-", year)

	var lastInvoice billing.Invoice
	err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("tenant_id = ? AND invoice_number LIKE ?", tenantID, prefix+"%").
		Order("invoice_number DESC").
		First(&lastInvoice).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastInvoice.InvoiceNumber != "" {
		parts := strings.Split(lastInvoice.InvoiceNumber, "-")
		if len(parts) == 3 {
			var num int64
			_, parseErr := fmt.Sscanf(parts[2], "%d", &num)
			if parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	invoiceNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.existsByInvoiceNumber(ctx, tenantID, invoiceNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			invoiceNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.existsByInvoiceNumber(ctx, tenantID, invoiceNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return invoiceNumber, nil
}

// Delete deletes an invoice with its lines
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&billing.InvoiceLine{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&billing.Invoice{}, "id = ?", id)
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
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "lease_id":
			query = query.Where("lease_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
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

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
