package persistence

import (
	"context"

	"github.com/returns/backend/internal/domain/dbes"
	"github.com/returns/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormQueueRepository implements dbes.QueueRepository using GORM
type GormQueueRepository struct {
	db *gorm.DB
}

// NewGormQueueRepository creates a new GormQueueRepository
func NewGormQueueRepository(db *gorm.DB) *GormQueueRepository {
	return &GormQueueRepository{db: db}
}

// Enqueue appends a new entry to the export queue
func (r *GormQueueRepository) Enqueue(ctx context.Context, entry *dbes.QueueEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindPending returns up to limit undelivered entries, oldest first
func (r *GormQueueRepository) FindPending(ctx context.Context, limit int) ([]dbes.QueueEntry, error) {
	var entries []dbes.QueueEntry
	if err := r.db.WithContext(ctx).
		Where("status = ?", dbes.EntryStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// MarkDelivered marks a queue entry as handed over to the back office
func (r *GormQueueRepository) MarkDelivered(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&dbes.QueueEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": dbes.EntryStatusDelivered, "last_error": ""})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkFailed marks a queue entry as failed and records the cause
func (r *GormQueueRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	result := r.db.WithContext(ctx).
		Model(&dbes.QueueEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": dbes.EntryStatusFailed, "last_error": errMsg})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormQueueRepository implements dbes.QueueRepository
var _ dbes.QueueRepository = (*GormQueueRepository)(nil)
