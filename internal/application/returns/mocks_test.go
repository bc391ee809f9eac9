package returns

import (
	"context"
	"time"

	"github.com/returns/backend/internal/domain/customer"
	"github.com/returns/backend/internal/domain/order"
	"github.com/returns/backend/internal/domain/rma"
	"github.com/stretchr/testify/mock"
)

// MockRMARepository is a mock implementation of rma.Repository
type MockRMARepository struct {
	mock.Mock
}

func (m *MockRMARepository) FindByID(ctx context.Context, id int64) (*rma.RMA, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rma.RMA), args.Error(1)
}

func (m *MockRMARepository) FindByNumber(ctx context.Context, number string) (*rma.RMA, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rma.RMA), args.Error(1)
}

func (m *MockRMARepository) FindByOrder(ctx context.Context, orderID int64) ([]rma.RMA, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rma.RMA), args.Error(1)
}

func (m *MockRMARepository) FindByCustomer(ctx context.Context, customerID int64) ([]rma.RMA, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rma.RMA), args.Error(1)
}

func (m *MockRMARepository) FindByStatus(ctx context.Context, status rma.Status) ([]rma.RMA, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rma.RMA), args.Error(1)
}

func (m *MockRMARepository) ClaimUnsynchronized(ctx context.Context, limit int) ([]rma.RMA, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rma.RMA), args.Error(1)
}

func (m *MockRMARepository) ReleaseSyncClaim(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRMARepository) Save(ctx context.Context, r *rma.RMA) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRMARepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRMARepository) NumberExists(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockRMARepository) CountOpenByCustomer(ctx context.Context, customerID int64) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRMARepository) ReturnedQuantitiesByOrder(ctx context.Context, orderID int64) (map[int64]int, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int), args.Error(1)
}

func (m *MockRMARepository) AnonymizeCustomer(ctx context.Context, customerID int64) ([]int64, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockItemRepository is a mock implementation of rma.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id int64) (*rma.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rma.Item), args.Error(1)
}

func (m *MockItemRepository) FindByRMA(ctx context.Context, rmaID int64) ([]rma.Item, error) {
	args := m.Called(ctx, rmaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rma.Item), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *rma.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockAddressRepository is a mock implementation of rma.AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) FindByID(ctx context.Context, id int64) (*rma.ReturnAddress, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rma.ReturnAddress), args.Error(1)
}

func (m *MockAddressRepository) FindByCustomer(ctx context.Context, customerID int64) ([]rma.ReturnAddress, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rma.ReturnAddress), args.Error(1)
}

func (m *MockAddressRepository) Save(ctx context.Context, addr *rma.ReturnAddress) error {
	args := m.Called(ctx, addr)
	return args.Error(0)
}

func (m *MockAddressRepository) DeleteByCustomer(ctx context.Context, customerID int64) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockReasonRepository is a mock implementation of rma.ReasonRepository
type MockReasonRepository struct {
	mock.Mock
}

func (m *MockReasonRepository) ActiveByLanguage(ctx context.Context, languageISO string) ([]rma.Reason, error) {
	args := m.Called(ctx, languageISO)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rma.Reason), args.Error(1)
}

// MockHistoryRepository is a mock implementation of rma.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, event *rma.HistoryEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockHistoryRepository) FindByRMA(ctx context.Context, rmaID int64) ([]rma.HistoryEvent, error) {
	args := m.Called(ctx, rmaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rma.HistoryEvent), args.Error(1)
}

func (m *MockHistoryRepository) LastByRMA(ctx context.Context, rmaID int64) (*rma.HistoryEvent, error) {
	args := m.Called(ctx, rmaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rma.HistoryEvent), args.Error(1)
}

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ItemsByOrder(ctx context.Context, orderID int64) ([]order.Item, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Item), args.Error(1)
}

func (m *MockOrderRepository) ItemByProduct(ctx context.Context, orderID, productID int64) (*order.Item, error) {
	args := m.Called(ctx, orderID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Item), args.Error(1)
}

// MockCustomerRepository is a mock implementation of customer.Repository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

// MockMailer is a mock implementation of Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

// MockLabelProvider is a mock implementation of LabelProvider
type MockLabelProvider struct {
	mock.Mock
}

func (m *MockLabelProvider) CreateLabel(ctx context.Context, r *rma.RMA, addr *rma.ReturnAddress) (string, error) {
	args := m.Called(ctx, r, addr)
	return args.String(0), args.Error(1)
}

// fixedClock is a Clock pinned to one instant; Sleep returns immediately
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time        { return c.now }
func (c fixedClock) Sleep(d time.Duration) {}
