package rma

import (
	"time"

	"github.com/returns/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Item represents a single returned order position
type Item struct {
	ID           int64 `gorm:"primaryKey;autoIncrement"`
	RMAID        int64
	ProductID    int64
	VariationID  *int64
	Quantity     int
	ReasonID     int64
	Status       ItemStatus
	RefundAmount decimal.Decimal `gorm:"type:decimal(12,2)"`
	Comment      *string
	CreatedAt    time.Time
}

// TableName returns the database table name
func (Item) TableName() string {
	return "rma_items"
}

// NewItem creates a new return item. The refund amount is computed from the
// original order line, never taken from client input.
func NewItem(productID int64, variationID *int64, quantity int, reasonID int64, comment *string) (*Item, error) {
	if productID <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product ID must be positive")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be at least 1")
	}
	if reasonID <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Reason ID must be positive")
	}

	return &Item{
		ProductID:    productID,
		VariationID:  variationID,
		Quantity:     quantity,
		ReasonID:     reasonID,
		Status:       ItemStatusPending,
		RefundAmount: decimal.Zero,
		Comment:      comment,
		CreatedAt:    time.Now(),
	}, nil
}

// ComputeRefund returns the gross refund for a quantity of an order line:
// net unit price with tax applied, rounded to 2 decimals after multiplying.
func ComputeRefund(unitPriceNet, taxRatePercent decimal.Decimal, quantity int) decimal.Decimal {
	gross := unitPriceNet.Mul(decimal.NewFromInt(1).Add(taxRatePercent.Div(decimal.NewFromInt(100))))
	return gross.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// UpdateStatus sets the per-item decision
func (i *Item) UpdateStatus(status ItemStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "Invalid item status")
	}
	i.Status = status
	return nil
}
