package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/returns/backend/internal/application/returns"
	"github.com/returns/backend/internal/domain/dbes"
	"github.com/returns/backend/internal/domain/rma"
	"github.com/returns/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
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

// MockQueueRepository is a mock implementation of dbes.QueueRepository
type MockQueueRepository struct {
	mock.Mock
}

func (m *MockQueueRepository) Enqueue(ctx context.Context, entry *dbes.QueueEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockQueueRepository) FindPending(ctx context.Context, limit int) ([]dbes.QueueEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dbes.QueueEntry), args.Error(1)
}

func (m *MockQueueRepository) MarkDelivered(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQueueRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	args := m.Called(ctx, id, errMsg)
	return args.Error(0)
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

// fakeClock records sleeps instead of waiting
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
}

type syncMocks struct {
	rmaRepo     *MockRMARepository
	addressRepo *MockAddressRepository
	queue       *MockQueueRepository
	historyRepo *MockHistoryRepository
	clock       *fakeClock
}

func newTestSyncService(t *testing.T, maxAttempts int) (*Service, *syncMocks) {
	t.Helper()
	m := &syncMocks{
		rmaRepo:     new(MockRMARepository),
		addressRepo: new(MockAddressRepository),
		queue:       new(MockQueueRepository),
		historyRepo: new(MockHistoryRepository),
		clock:       &fakeClock{now: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)},
	}
	logger := zap.NewNop()
	svc := NewService(
		m.rmaRepo, m.addressRepo, m.queue,
		returns.NewHistoryService(m.historyRepo, logger),
		m.clock, maxAttempts, 5*time.Second, logger,
	)
	return svc, m
}

func pendingRMA(id int64) *rma.RMA {
	request, _ := rma.NewRMA("RMA-2025-00007", 100, nil)
	request.ID = id
	return request
}

func TestSyncToWawi_AlreadySyncedIsNoOp(t *testing.T) {
	svc, m := newTestSyncService(t, 3)
	request := pendingRMA(42)
	request.MarkSynced(m.clock.now)

	err := svc.SyncToWawi(context.Background(), request)
	require.NoError(t, err)
	m.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestSyncToWawi_EnqueuesAndStamps(t *testing.T) {
	svc, m := newTestSyncService(t, 3)
	request := pendingRMA(42)

	m.queue.On("Enqueue", mock.Anything, mock.AnythingOfType("*dbes.QueueEntry")).Return(nil)
	m.rmaRepo.On("Save", mock.Anything, request).Return(nil)
	m.historyRepo.On("Append", mock.Anything, mock.AnythingOfType("*rma.HistoryEvent")).Return(nil)

	err := svc.SyncToWawi(context.Background(), request)
	require.NoError(t, err)
	assert.True(t, request.Synced)
	require.NotNil(t, request.LastSyncAt)
	assert.Equal(t, m.clock.now, *request.LastSyncAt)

	entry := m.queue.Calls[0].Arguments.Get(1).(*dbes.QueueEntry)
	assert.Equal(t, dbes.EntryTypeRMA, entry.Type)
	assert.Contains(t, entry.Payload, "<RMANr>RMA-2025-00007</RMANr>")

	event := m.historyRepo.Calls[0].Arguments.Get(1).(*rma.HistoryEvent)
	assert.Equal(t, rma.EventWawiSynced, event.Kind)
}

func TestSyncToWawi_RetriesWithDelay(t *testing.T) {
	svc, m := newTestSyncService(t, 3)
	request := pendingRMA(42)

	m.queue.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("queue full")).Twice()
	m.queue.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()
	m.rmaRepo.On("Save", mock.Anything, request).Return(nil)
	m.historyRepo.On("Append", mock.Anything, mock.AnythingOfType("*rma.HistoryEvent")).Return(nil)

	err := svc.SyncToWawi(context.Background(), request)
	require.NoError(t, err)
	assert.True(t, request.Synced)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, m.clock.sleeps)
}

func TestSyncToWawi_GivesUpAfterMaxAttempts(t *testing.T) {
	svc, m := newTestSyncService(t, 3)
	request := pendingRMA(42)

	m.queue.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("queue full"))

	err := svc.SyncToWawi(context.Background(), request)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EXTERNAL_DELIVERY_FAILURE", domainErr.Code)

	assert.False(t, request.Synced)
	m.queue.AssertNumberOfCalls(t, "Enqueue", 3)
	// No sleep after the final attempt
	assert.Len(t, m.clock.sleeps, 2)
	m.rmaRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSyncPendingRMAs_ReleasesClaimOnFailure(t *testing.T) {
	svc, m := newTestSyncService(t, 1)
	good := pendingRMA(1)
	bad := pendingRMA(2)
	bad.Number = "RMA-2025-00008"

	m.rmaRepo.On("ClaimUnsynchronized", mock.Anything, 100).Return([]rma.RMA{*good, *bad}, nil)
	m.queue.On("Enqueue", mock.Anything, mock.MatchedBy(func(e *dbes.QueueEntry) bool {
		return containsNumber(e, "RMA-2025-00007")
	})).Return(nil)
	m.queue.On("Enqueue", mock.Anything, mock.MatchedBy(func(e *dbes.QueueEntry) bool {
		return containsNumber(e, "RMA-2025-00008")
	})).Return(errors.New("queue full"))
	m.rmaRepo.On("Save", mock.Anything, mock.AnythingOfType("*rma.RMA")).Return(nil)
	m.rmaRepo.On("ReleaseSyncClaim", mock.Anything, int64(2)).Return(nil)
	m.historyRepo.On("Append", mock.Anything, mock.AnythingOfType("*rma.HistoryEvent")).Return(nil)

	stats, err := svc.SyncPendingRMAs(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Success)
	assert.Equal(t, 1, stats.Failed)

	m.rmaRepo.AssertCalled(t, "ReleaseSyncClaim", mock.Anything, int64(2))
	m.rmaRepo.AssertNotCalled(t, "ReleaseSyncClaim", mock.Anything, int64(1))
}

func containsNumber(e *dbes.QueueEntry, number string) bool {
	doc, err := dbes.Unmarshal(e.Payload)
	return err == nil && doc.Number == number
}

func TestHandleWawiUpdate_UnknownRMAIsIgnored(t *testing.T) {
	svc, m := newTestSyncService(t, 3)
	m.rmaRepo.On("FindByID", mock.Anything, int64(404)).Return(nil, shared.ErrNotFound)

	status := rma.StatusAccepted
	err := svc.HandleWawiUpdate(context.Background(), Update{RMAID: 404, Status: &status})
	require.NoError(t, err)

	m.rmaRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	m.historyRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestHandleWawiUpdate_AppliesPartialChanges(t *testing.T) {
	svc, m := newTestSyncService(t, 3)
	request := pendingRMA(42)
	item, _ := rma.NewItem(10, nil, 1, 1, nil)
	item.ID = 7
	item.RefundAmount = decimal.RequireFromString("29.99")
	request.AddItem(item)

	m.rmaRepo.On("FindByID", mock.Anything, int64(42)).Return(request, nil)
	m.rmaRepo.On("Save", mock.Anything, request).Return(nil)
	m.historyRepo.On("Append", mock.Anything, mock.AnythingOfType("*rma.HistoryEvent")).Return(nil)

	status := rma.StatusAccepted
	wawiID := int64(9001)
	itemStatus := rma.ItemStatusRefunded
	refund := decimal.RequireFromString("25.00")
	err := svc.HandleWawiUpdate(context.Background(), Update{
		RMAID:  42,
		Status: &status,
		WawiID: &wawiID,
		Items:  []ItemUpdate{{ID: 7, Status: &itemStatus, RefundAmount: &refund}},
	})
	require.NoError(t, err)

	assert.Equal(t, rma.StatusAccepted, request.Status)
	require.NotNil(t, request.WawiID)
	assert.Equal(t, int64(9001), *request.WawiID)
	assert.Equal(t, rma.ItemStatusRefunded, request.Items[0].Status)
	assert.Equal(t, "25.00", request.Items[0].RefundAmount.StringFixed(2))
	assert.Equal(t, "25.00", request.TotalGross.StringFixed(2))

	event := m.historyRepo.Calls[0].Arguments.Get(1).(*rma.HistoryEvent)
	assert.Equal(t, rma.EventWawiUpdateReceived, event.Kind)
}

func TestHandleWawiUpdate_InvalidStatusRejected(t *testing.T) {
	svc, m := newTestSyncService(t, 3)
	request := pendingRMA(42)
	m.rmaRepo.On("FindByID", mock.Anything, int64(42)).Return(request, nil)

	status := rma.Status(9)
	err := svc.HandleWawiUpdate(context.Background(), Update{RMAID: 42, Status: &status})
	require.Error(t, err)
	m.rmaRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestHandleWawiUpdate_UnknownItemSkipped(t *testing.T) {
	svc, m := newTestSyncService(t, 3)
	request := pendingRMA(42)
	m.rmaRepo.On("FindByID", mock.Anything, int64(42)).Return(request, nil)

	itemStatus := rma.ItemStatusAccepted
	err := svc.HandleWawiUpdate(context.Background(), Update{
		RMAID: 42,
		Items: []ItemUpdate{{ID: 999, Status: &itemStatus}},
	})
	require.NoError(t, err)
	// Nothing changed, nothing persisted
	m.rmaRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	m.historyRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}
