package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the read model of a shop order as far as the returns flow needs
// it. Orders are owned by the shop core; this package never writes them.
type Order struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	Number     string
	CustomerID int64
	Email      string
	CreatedAt  time.Time
}

// TableName returns the database table name
func (Order) TableName() string {
	return "orders"
}

// Item is a single order position
type Item struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	OrderID        int64
	ProductID      int64
	VariationID    *int64
	ArticleNo      string
	Name           string
	Quantity       int
	UnitPriceNet   decimal.Decimal `gorm:"type:decimal(12,4)"`
	TaxRatePercent decimal.Decimal `gorm:"type:decimal(5,2)"`
	Unit           string
}

// TableName returns the database table name
func (Item) TableName() string {
	return "order_items"
}

// GrossUnitPrice returns the unit price with tax applied
func (i *Item) GrossUnitPrice() decimal.Decimal {
	return i.UnitPriceNet.
		Mul(decimal.NewFromInt(1).Add(i.TaxRatePercent.Div(decimal.NewFromInt(100)))).
		Round(2)
}

// Repository reads orders and their items
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	ItemsByOrder(ctx context.Context, orderID int64) ([]Item, error)
	ItemByProduct(ctx context.Context, orderID, productID int64) (*Item, error)
}
