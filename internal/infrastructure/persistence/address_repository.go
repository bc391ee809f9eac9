package persistence

import (
	"context"
	"errors"

	"github.com/returns/backend/internal/domain/rma"
	"github.com/returns/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAddressRepository implements rma.AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// FindByID finds a return address by its ID
func (r *GormAddressRepository) FindByID(ctx context.Context, id int64) (*rma.ReturnAddress, error) {
	var addr rma.ReturnAddress
	if err := r.db.WithContext(ctx).First(&addr, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &addr, nil
}

// FindByCustomer finds all return addresses of a customer
func (r *GormAddressRepository) FindByCustomer(ctx context.Context, customerID int64) ([]rma.ReturnAddress, error) {
	var addrs []rma.ReturnAddress
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id ASC").
		Find(&addrs).Error; err != nil {
		return nil, err
	}
	return addrs, nil
}

// Save creates or updates a return address
func (r *GormAddressRepository) Save(ctx context.Context, addr *rma.ReturnAddress) error {
	return r.db.WithContext(ctx).Save(addr).Error
}

// DeleteByCustomer deletes all return addresses of a customer and returns
// the number of deleted rows.
func (r *GormAddressRepository) DeleteByCustomer(ctx context.Context, customerID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&rma.ReturnAddress{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Ensure GormAddressRepository implements rma.AddressRepository
var _ rma.AddressRepository = (*GormAddressRepository)(nil)
