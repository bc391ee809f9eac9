package returns

import (
	"github.com/shopspring/decimal"
)

// OrderAccessResult is the outcome of an order access check. A failed check
// is a regular result, not an error: the caller shows it to the customer.
type OrderAccessResult struct {
	Valid      bool   `json:"valid"`
	Code       string `json:"code,omitempty"` // NOT_FOUND, EMAIL_MISMATCH, PERIOD_EXPIRED
	OrderID    int64  `json:"order_id,omitempty"`
	CustomerID int64  `json:"customer_id,omitempty"`
}

// ReturnableProduct is one order position that can still be returned
type ReturnableProduct struct {
	ProductID         int64           `json:"product_id"`
	VariationID       *int64          `json:"variation_id,omitempty"`
	ArticleNo         string          `json:"article_no"`
	Name              string          `json:"name"`
	OrderedQuantity   int             `json:"ordered_quantity"`
	ReturnedQuantity  int             `json:"returned_quantity"`
	RemainingQuantity int             `json:"remaining_quantity"`
	GrossUnitPrice    decimal.Decimal `json:"gross_unit_price"`
}

// ReturnableProductsResult lists returnable positions with their total value
type ReturnableProductsResult struct {
	Products   []ReturnableProduct `json:"products"`
	TotalValue decimal.Decimal     `json:"total_value"`
}

// CreateReturnItemInput is one requested return position
type CreateReturnItemInput struct {
	ProductID   int64
	VariationID *int64
	Quantity    int
	ReasonID    int64
	Comment     *string
}

// CreateReturnRequestInput carries everything needed to open a return request
type CreateReturnRequestInput struct {
	OrderID         int64
	CustomerID      int64
	ReturnAddressID *int64
	Items           []CreateReturnItemInput
}

// LabelResult is the outcome of a label creation attempt. Carrier failures
// are reported here instead of as errors so the request flow can continue.
type LabelResult struct {
	Success   bool   `json:"success"`
	LabelPath string `json:"label_path,omitempty"`
	Error     string `json:"error,omitempty"`
}
