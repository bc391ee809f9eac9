package persistence

import (
	"context"
	"errors"

	"github.com/returns/backend/internal/domain/rma"
	"github.com/returns/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormRMARepository implements rma.Repository using GORM
type GormRMARepository struct {
	db *gorm.DB
}

// NewGormRMARepository creates a new GormRMARepository
func NewGormRMARepository(db *gorm.DB) *GormRMARepository {
	return &GormRMARepository{db: db}
}

// FindByID finds a return request by its ID
func (r *GormRMARepository) FindByID(ctx context.Context, id int64) (*rma.RMA, error) {
	var request rma.RMA
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindByNumber finds a return request by its RMA number
func (r *GormRMARepository) FindByNumber(ctx context.Context, number string) (*rma.RMA, error) {
	var request rma.RMA
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&request, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindByOrder finds all return requests for an order
func (r *GormRMARepository) FindByOrder(ctx context.Context, orderID int64) ([]rma.RMA, error) {
	var requests []rma.RMA
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// FindByCustomer finds all return requests for a customer
func (r *GormRMARepository) FindByCustomer(ctx context.Context, customerID int64) ([]rma.RMA, error) {
	var requests []rma.RMA
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// FindByStatus finds all return requests in a status
func (r *GormRMARepository) FindByStatus(ctx context.Context, status rma.Status) ([]rma.RMA, error) {
	var requests []rma.RMA
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// ClaimUnsynchronized marks up to limit unsynchronized requests as claimed
// and returns them. Each row is claimed with a conditional update, so a
// request is handed to at most one caller even under concurrent runs.
func (r *GormRMARepository) ClaimUnsynchronized(ctx context.Context, limit int) ([]rma.RMA, error) {
	var claimed []rma.RMA
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []int64
		if err := tx.Model(&rma.RMA{}).
			Where("synced = ?", false).
			Order("created_at ASC").
			Limit(limit).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		won := make([]int64, 0, len(ids))
		for _, id := range ids {
			result := tx.Model(&rma.RMA{}).
				Where("id = ? AND synced = ?", id, false).
				Update("synced", true)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 1 {
				won = append(won, id)
			}
		}
		if len(won) == 0 {
			return nil
		}

		return tx.Preload("Items").
			Where("id IN ?", won).
			Order("created_at ASC").
			Find(&claimed).Error
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// ReleaseSyncClaim puts a claimed request back into the unsynchronized pool
func (r *GormRMARepository) ReleaseSyncClaim(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Model(&rma.RMA{}).
		Where("id = ?", id).
		Updates(map[string]any{"synced": false, "last_sync_at": nil})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Save creates or updates a return request together with its items
func (r *GormRMARepository) Save(ctx context.Context, request *rma.RMA) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Save the request without auto-saving associations
		if err := tx.Omit("Items").Save(request).Error; err != nil {
			return err
		}

		// Delete items that were removed from the aggregate
		keptIDs := make([]int64, 0, len(request.Items))
		for _, item := range request.Items {
			if item.ID != 0 {
				keptIDs = append(keptIDs, item.ID)
			}
		}
		if len(keptIDs) > 0 {
			if err := tx.Where("rma_id = ? AND id NOT IN ?", request.ID, keptIDs).
				Delete(&rma.Item{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("rma_id = ?", request.ID).
				Delete(&rma.Item{}).Error; err != nil {
				return err
			}
		}

		// Save/update remaining items
		for i := range request.Items {
			request.Items[i].RMAID = request.ID
			if err := tx.Save(&request.Items[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete deletes a return request with its items and history
func (r *GormRMARepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rma_id = ?", id).Delete(&rma.Item{}).Error; err != nil {
			return err
		}
		if err := tx.Where("rma_id = ?", id).Delete(&rma.HistoryEvent{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&rma.RMA{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// NumberExists checks if an RMA number is already taken
func (r *GormRMARepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&rma.RMA{}).
		Where("number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountOpenByCustomer counts a customer's open return requests
func (r *GormRMARepository) CountOpenByCustomer(ctx context.Context, customerID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&rma.RMA{}).
		Where("customer_id = ? AND status = ?", customerID, rma.StatusOpen).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ReturnedQuantitiesByOrder sums already-returned quantities per product for
// an order. Every request counts, whatever its status: a rejected return
// does not reopen the allowance.
func (r *GormRMARepository) ReturnedQuantitiesByOrder(ctx context.Context, orderID int64) (map[int64]int, error) {
	var rows []struct {
		ProductID int64
		Total     int
	}
	if err := r.db.WithContext(ctx).
		Table("rma_items").
		Select("rma_items.product_id AS product_id, SUM(rma_items.quantity) AS total").
		Joins("JOIN rma ON rma.id = rma_items.rma_id").
		Where("rma.order_id = ?", orderID).
		Group("rma_items.product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	quantities := make(map[int64]int, len(rows))
	for _, row := range rows {
		quantities[row.ProductID] = row.Total
	}
	return quantities, nil
}

// AnonymizeCustomer detaches all of a customer's return requests from the
// customer record and returns the affected request IDs.
func (r *GormRMARepository) AnonymizeCustomer(ctx context.Context, customerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&rma.RMA{}).
			Where("customer_id = ?", customerID).
			Order("id ASC").
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		return tx.Model(&rma.RMA{}).
			Where("id IN ?", ids).
			Update("customer_id", nil).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Ensure GormRMARepository implements rma.Repository
var _ rma.Repository = (*GormRMARepository)(nil)
