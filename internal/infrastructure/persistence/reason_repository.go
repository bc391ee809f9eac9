package persistence

import (
	"context"

	"github.com/returns/backend/internal/domain/rma"
	"gorm.io/gorm"
)

// GormReasonRepository implements rma.ReasonRepository using GORM
type GormReasonRepository struct {
	db *gorm.DB
}

// NewGormReasonRepository creates a new GormReasonRepository
func NewGormReasonRepository(db *gorm.DB) *GormReasonRepository {
	return &GormReasonRepository{db: db}
}

// ActiveByLanguage returns the active return reasons for a language in
// display order.
func (r *GormReasonRepository) ActiveByLanguage(ctx context.Context, languageISO string) ([]rma.Reason, error) {
	var reasons []rma.Reason
	if err := r.db.WithContext(ctx).
		Where("language_iso = ? AND active = ?", languageISO, true).
		Order("sort_order ASC, id ASC").
		Find(&reasons).Error; err != nil {
		return nil, err
	}
	return reasons, nil
}

// Ensure GormReasonRepository implements rma.ReasonRepository
var _ rma.ReasonRepository = (*GormReasonRepository)(nil)
