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

// GormCreditNoteRepository implements CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

// FindByID finds a credit note by its ID with lines loaded
func (r *GormCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.CreditNote, error) {
	var note billing.CreditNote
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// Save creates or updates a credit note with all of its lines in one
// transaction
func (r *GormCreditNoteRepository) Save(ctx context.Context, note *billing.CreditNote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(note).Error; err != nil {
			return err
		}

		if note.ID != uuid.Nil {
			currentLineIDs := make([]uuid.UUID, len(note.Lines))
			for i, line := range note.Lines {
				currentLineIDs[i] = line.ID
			}

			if len(currentLineIDs) > 0 {
				if err := tx.Where("credit_note_id = ? AND id NOT IN ?", note.ID, currentLineIDs).
					Delete(&billing.CreditNoteLine{}).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Where("credit_note_id = ?", note.ID).
					Delete(&billing.CreditNoteLine{}).Error; err != nil {
					return err
				}
			}

			for i := range note.Lines {
				note.Lines[i].CreditNoteID = note.ID
				if err := tx.Save(&note.Lines[i]).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// FindByInvoice finds credit notes raised against an invoice
func (r *GormCreditNoteRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*billing.CreditNote, error) {
	var notes []*billing.CreditNote
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("created_at ASC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// existsByCreditNoteNumber checks if a credit note number exists for a tenant
func (r *GormCreditNoteRepository) existsByCreditNoteNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.CreditNote{}).
		Where("tenant_id = ? AND credit_note_number = ?", tenantID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateCreditNoteNumber generates a unique credit note number for a tenant.
// Format: CN-YYYY-NNNNN (e.g., CN-2026-00001)
func (r *GormCreditNoteRepository) GenerateCreditNoteNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("CN-%d-", year)

	var lastNote billing.CreditNote
	err := r.db.WithContext(ctx).
		Model(&billing.CreditNote{}).
		Where("tenant_id = ? AND credit_note_number LIKE ?", tenantID, prefix+"%").
		Order("credit_note_number DESC").
		First(&lastNote).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastNote.CreditNoteNumber != "" {
		parts := strings.Split(lastNote.CreditNoteNumber, "-")
		if len(parts) == 3 {
			var num int64
			_, parseErr := fmt.Sscanf(parts[2], "%d", &num)
			if parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	number := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.existsByCreditNoteNumber(ctx, tenantID, number)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			number = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.existsByCreditNoteNumber(ctx, tenantID, number)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return number, nil
}

// Ensure GormCreditNoteRepository implements CreditNoteRepository
var _ billing.CreditNoteRepository = (*GormCreditNoteRepository)(nil)
