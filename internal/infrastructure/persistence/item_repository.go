package persistence

import (
	"context"
	"errors"

	"github.com/returns/backend/internal/domain/rma"
	"github.com/returns/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormItemRepository implements rma.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds a return item by its ID
func (r *GormItemRepository) FindByID(ctx context.Context, id int64) (*rma.Item, error) {
	var item rma.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByRMA finds all items of a return request
func (r *GormItemRepository) FindByRMA(ctx context.Context, rmaID int64) ([]rma.Item, error) {
	var items []rma.Item
	if err := r.db.WithContext(ctx).
		Where("rma_id = ?", rmaID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates a return item
func (r *GormItemRepository) Save(ctx context.Context, item *rma.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Ensure GormItemRepository implements rma.ItemRepository
var _ rma.ItemRepository = (*GormItemRepository)(nil)
