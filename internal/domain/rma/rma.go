package rma

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/returns/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RMA is the return merchandise authorization aggregate root.
// It tracks a customer's return request for a single order from creation
// through the back office decision.
type RMA struct {
	shared.BaseEntity
	Number          string `gorm:"column:number;uniqueIndex"`
	OrderID         int64
	CustomerID      *int64 // nil for guests and anonymized customers
	Status          Status
	TotalGross      decimal.Decimal `gorm:"type:decimal(12,2)"`
	ReturnAddressID *int64
	WawiID          *int64
	Synced          bool
	LabelPath       *string
	LastSyncAt      *time.Time
	Items           []Item `gorm:"foreignKey:RMAID"`
}

// TableName returns the database table name
func (RMA) TableName() string {
	return "rma"
}

// GenerateNumber produces a candidate RMA number in the form
// RMA-<year>-<5 digit random>. Uniqueness is the caller's responsibility.
func GenerateNumber(now time.Time) string {
	return fmt.Sprintf("RMA-%d-%05d", now.Year(), rand.Intn(99999)+1)
}

// NewRMA creates a new open, unsynchronized return request
func NewRMA(number string, orderID int64, customerID *int64) (*RMA, error) {
	if number == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "RMA number cannot be empty")
	}
	if orderID <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order ID must be positive")
	}

	now := time.Now()
	return &RMA{
		BaseEntity: shared.BaseEntity{CreatedAt: now, UpdatedAt: now},
		Number:     number,
		OrderID:    orderID,
		CustomerID: customerID,
		Status:     StatusOpen,
		TotalGross: decimal.Zero,
		Synced:     false,
		Items:      make([]Item, 0),
	}, nil
}

// AddItem appends an item and recalculates the total
func (r *RMA) AddItem(item *Item) {
	r.Items = append(r.Items, *item)
	r.RecalculateTotal()
	r.UpdatedAt = time.Now()
}

// RecalculateTotal sets TotalGross to the sum of item refund amounts
func (r *RMA) RecalculateTotal() {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.RefundAmount)
	}
	r.TotalGross = total
}

// UpdateStatus moves the request to a new status. Every status may follow
// every other because the back office owns the decision workflow.
func (r *RMA) UpdateStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Invalid status: %d", status))
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	return nil
}

// MarkSynced records a successful delivery to the back office
func (r *RMA) MarkSynced(at time.Time) {
	r.Synced = true
	r.LastSyncAt = &at
	r.UpdatedAt = at
}

// Anonymize removes the customer reference while keeping the request itself
func (r *RMA) Anonymize() {
	r.CustomerID = nil
	r.UpdatedAt = time.Now()
}

// Item returns the item with the given ID, or nil
func (r *RMA) Item(itemID int64) *Item {
	for idx := range r.Items {
		if r.Items[idx].ID == itemID {
			return &r.Items[idx]
		}
	}
	return nil
}

// ItemCount returns the number of return positions
func (r *RMA) ItemCount() int {
	return len(r.Items)
}

// IsOpen returns true if the request has not been picked up yet
func (r *RMA) IsOpen() bool {
	return r.Status == StatusOpen
}
