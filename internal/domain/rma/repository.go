package rma

import "context"

// Repository defines persistence operations for return requests
type Repository interface {
	FindByID(ctx context.Context, id int64) (*RMA, error)
	FindByNumber(ctx context.Context, number string) (*RMA, error)
	FindByOrder(ctx context.Context, orderID int64) ([]RMA, error)
	FindByCustomer(ctx context.Context, customerID int64) ([]RMA, error)
	FindByStatus(ctx context.Context, status Status) ([]RMA, error)
	// ClaimUnsynchronized atomically marks up to limit unsynchronized
	// requests as synced and returns them. A request claimed here is
	// invisible to concurrent callers; failed deliveries must be released
	// with ReleaseSyncClaim.
	ClaimUnsynchronized(ctx context.Context, limit int) ([]RMA, error)
	ReleaseSyncClaim(ctx context.Context, id int64) error
	Save(ctx context.Context, r *RMA) error
	Delete(ctx context.Context, id int64) error
	NumberExists(ctx context.Context, number string) (bool, error)
	CountOpenByCustomer(ctx context.Context, customerID int64) (int64, error)
	// ReturnedQuantitiesByOrder sums already returned quantities per product
	// over an order's return requests. Rejected requests are excluded so
	// their quantities become returnable again.
	ReturnedQuantitiesByOrder(ctx context.Context, orderID int64) (map[int64]int, error)
	// AnonymizeCustomer clears the customer reference on all requests of a
	// customer and returns the affected RMA IDs.
	AnonymizeCustomer(ctx context.Context, customerID int64) ([]int64, error)
}

// ItemRepository defines persistence operations for return items
type ItemRepository interface {
	FindByID(ctx context.Context, id int64) (*Item, error)
	FindByRMA(ctx context.Context, rmaID int64) ([]Item, error)
	Save(ctx context.Context, item *Item) error
}

// AddressRepository defines persistence operations for return addresses
type AddressRepository interface {
	FindByID(ctx context.Context, id int64) (*ReturnAddress, error)
	FindByCustomer(ctx context.Context, customerID int64) ([]ReturnAddress, error)
	Save(ctx context.Context, addr *ReturnAddress) error
	DeleteByCustomer(ctx context.Context, customerID int64) (int64, error)
}

// ReasonRepository reads the return reason catalog
type ReasonRepository interface {
	ActiveByLanguage(ctx context.Context, languageISO string) ([]Reason, error)
}

// HistoryRepository defines persistence operations for the history log
type HistoryRepository interface {
	Append(ctx context.Context, event *HistoryEvent) error
	FindByRMA(ctx context.Context, rmaID int64) ([]HistoryEvent, error)
	LastByRMA(ctx context.Context, rmaID int64) (*HistoryEvent, error)
}
