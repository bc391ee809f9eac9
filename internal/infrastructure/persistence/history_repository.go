package persistence

import (
	"context"
	"errors"

	"github.com/returns/backend/internal/domain/rma"
	"github.com/returns/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormHistoryRepository implements rma.HistoryRepository using GORM
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append stores a new history event. Events are append-only and never
// updated.
func (r *GormHistoryRepository) Append(ctx context.Context, event *rma.HistoryEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByRMA returns the full history of a return request, oldest first
func (r *GormHistoryRepository) FindByRMA(ctx context.Context, rmaID int64) ([]rma.HistoryEvent, error) {
	var events []rma.HistoryEvent
	if err := r.db.WithContext(ctx).
		Where("rma_id = ?", rmaID).
		Order("created_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// LastByRMA returns the most recent history event of a return request
func (r *GormHistoryRepository) LastByRMA(ctx context.Context, rmaID int64) (*rma.HistoryEvent, error) {
	var event rma.HistoryEvent
	if err := r.db.WithContext(ctx).
		Where("rma_id = ?", rmaID).
		Order("created_at DESC, id DESC").
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// Ensure GormHistoryRepository implements rma.HistoryRepository
var _ rma.HistoryRepository = (*GormHistoryRepository)(nil)
