package returns

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/returns/backend/internal/domain/customer"
	"github.com/returns/backend/internal/domain/order"
	"github.com/returns/backend/internal/domain/rma"
	"github.com/returns/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxNumberAttempts bounds the RMA number collision retry loop. The unique
// index on the number column is the backstop behind it.
const maxNumberAttempts = 10

// Service implements the return request workflow: order access checks,
// returnable product computation and the creation and maintenance of
// return requests.
type Service struct {
	rmaRepo      rma.Repository
	itemRepo     rma.ItemRepository
	addressRepo  rma.AddressRepository
	reasonRepo   rma.ReasonRepository
	orderRepo    order.Repository
	customerRepo customer.Repository
	history      *HistoryService
	notifier     *NotificationService
	clock        shared.Clock
	periodDays   int
	logger       *zap.Logger
}

// NewService creates a new return request service
func NewService(
	rmaRepo rma.Repository,
	itemRepo rma.ItemRepository,
	addressRepo rma.AddressRepository,
	reasonRepo rma.ReasonRepository,
	orderRepo order.Repository,
	customerRepo customer.Repository,
	history *HistoryService,
	clock shared.Clock,
	periodDays int,
	logger *zap.Logger,
) *Service {
	return &Service{
		rmaRepo:      rmaRepo,
		itemRepo:     itemRepo,
		addressRepo:  addressRepo,
		reasonRepo:   reasonRepo,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		history:      history,
		clock:        clock,
		periodDays:   periodDays,
		logger:       logger,
	}
}

// SetNotifier attaches the optional mail dispatcher. Without it the service
// runs silently, which the tests rely on.
func (s *Service) SetNotifier(notifier *NotificationService) {
	s.notifier = notifier
}

// ValidateOrderAccess checks whether the caller may open a return for an
// order. The email comparison is case-insensitive; the return period starts
// at the order date.
func (s *Service) ValidateOrderAccess(ctx context.Context, orderNumber, email string) (*OrderAccessResult, error) {
	ord, err := s.orderRepo.FindByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &OrderAccessResult{Valid: false, Code: "NOT_FOUND"}, nil
		}
		return nil, err
	}

	if !strings.EqualFold(ord.Email, email) {
		return &OrderAccessResult{Valid: false, Code: "EMAIL_MISMATCH"}, nil
	}

	deadline := ord.CreatedAt.AddDate(0, 0, s.periodDays)
	if s.clock.Now().After(deadline) {
		return &OrderAccessResult{Valid: false, Code: "PERIOD_EXPIRED"}, nil
	}

	return &OrderAccessResult{
		Valid:      true,
		OrderID:    ord.ID,
		CustomerID: ord.CustomerID,
	}, nil
}

// ReturnableProducts lists order positions that still have returnable
// quantity. Quantities already requested in any prior return of the order
// count against the remainder regardless of that return's status.
func (s *Service) ReturnableProducts(ctx context.Context, orderID int64) (*ReturnableProductsResult, error) {
	items, err := s.orderRepo.ItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	returned, err := s.rmaRepo.ReturnedQuantitiesByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	result := &ReturnableProductsResult{
		Products:   make([]ReturnableProduct, 0, len(items)),
		TotalValue: decimal.Zero,
	}
	for _, item := range items {
		remaining := item.Quantity - returned[item.ProductID]
		if remaining <= 0 {
			continue
		}
		gross := item.GrossUnitPrice()
		result.Products = append(result.Products, ReturnableProduct{
			ProductID:         item.ProductID,
			VariationID:       item.VariationID,
			ArticleNo:         item.ArticleNo,
			Name:              item.Name,
			OrderedQuantity:   item.Quantity,
			ReturnedQuantity:  returned[item.ProductID],
			RemainingQuantity: remaining,
			GrossUnitPrice:    gross,
		})
		result.TotalValue = result.TotalValue.Add(gross.Mul(decimal.NewFromInt(int64(remaining))))
	}

	return result, nil
}

// CreateReturnRequest opens a new return request. Refund amounts are
// computed from the original order lines; any amounts supplied by the
// client are ignored.
func (s *Service) CreateReturnRequest(ctx context.Context, input CreateReturnRequestInput) (*rma.RMA, error) {
	if input.OrderID <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order ID is required")
	}
	if input.CustomerID <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Customer ID is required")
	}
	if len(input.Items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "At least one item is required")
	}

	ord, err := s.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	number, err := s.generateUniqueNumber(ctx)
	if err != nil {
		return nil, err
	}

	customerID := input.CustomerID
	request, err := rma.NewRMA(number, ord.ID, &customerID)
	if err != nil {
		return nil, err
	}

	addressID, err := s.resolveReturnAddress(ctx, input)
	if err != nil {
		return nil, err
	}
	request.ReturnAddressID = addressID

	for _, in := range input.Items {
		orderItem, err := s.orderRepo.ItemByProduct(ctx, ord.ID, in.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("VALIDATION_ERROR",
					fmt.Sprintf("Product %d is not part of order %d", in.ProductID, ord.ID))
			}
			return nil, err
		}

		item, err := rma.NewItem(in.ProductID, in.VariationID, in.Quantity, in.ReasonID, in.Comment)
		if err != nil {
			return nil, err
		}
		item.RefundAmount = rma.ComputeRefund(orderItem.UnitPriceNet, orderItem.TaxRatePercent, in.Quantity)
		request.AddItem(item)
	}

	if err := s.rmaRepo.Save(ctx, request); err != nil {
		return nil, err
	}

	s.history.Record(ctx, request.ID, rma.EventCreated, map[string]any{
		"rmaNr":     request.Number,
		"itemCount": request.ItemCount(),
	}, nil)

	if s.notifier != nil {
		s.notifier.SendConfirmation(ctx, request, ord.Email)
	}

	s.logger.Info("Return request created",
		zap.Int64("rma_id", request.ID),
		zap.String("rma_number", request.Number),
		zap.Int64("order_id", ord.ID),
		zap.Int("items", request.ItemCount()),
	)

	return request, nil
}

// generateUniqueNumber draws candidate numbers until one is free
func (s *Service) generateUniqueNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := rma.GenerateNumber(s.clock.Now())
		exists, err := s.rmaRepo.NumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", shared.NewDomainError("NUMBER_EXHAUSTED", "Could not allocate a unique RMA number")
}

// resolveReturnAddress validates a given address or snapshots one from the
// customer profile
func (s *Service) resolveReturnAddress(ctx context.Context, input CreateReturnRequestInput) (*int64, error) {
	if input.ReturnAddressID != nil {
		if _, err := s.addressRepo.FindByID(ctx, *input.ReturnAddressID); err != nil {
			return nil, err
		}
		return input.ReturnAddressID, nil
	}

	cust, err := s.customerRepo.FindByID(ctx, input.CustomerID)
	if err != nil {
		// No profile to copy from; the request is still valid without an address.
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	addr, err := rma.NewReturnAddress(cust.ID, cust.FirstName, cust.LastName, cust.Street, cust.Zip, cust.City)
	if err != nil {
		return nil, err
	}
	addr.Salutation = cust.Salutation
	addr.HouseNumber = cust.HouseNumber
	addr.Phone = cust.Phone
	if cust.Country != "" {
		addr.Country = cust.Country
	}

	if err := s.addressRepo.Save(ctx, addr); err != nil {
		return nil, err
	}
	return &addr.ID, nil
}

// GetByID returns a return request by ID
func (s *Service) GetByID(ctx context.Context, id int64) (*rma.RMA, error) {
	return s.rmaRepo.FindByID(ctx, id)
}

// GetByNumber returns a return request by its RMA number
func (s *Service) GetByNumber(ctx context.Context, number string) (*rma.RMA, error) {
	return s.rmaRepo.FindByNumber(ctx, number)
}

// UpdateStatus moves a return request to a new status and records the
// transition. The status graph is unrestricted; the back office decides.
func (s *Service) UpdateStatus(ctx context.Context, rmaID int64, newStatus rma.Status, comment string, actorID *int64) error {
	if !newStatus.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Invalid status: %d", newStatus))
	}

	request, err := s.rmaRepo.FindByID(ctx, rmaID)
	if err != nil {
		return err
	}

	oldStatus := request.Status
	if err := request.UpdateStatus(newStatus); err != nil {
		return err
	}
	if err := s.rmaRepo.Save(ctx, request); err != nil {
		return err
	}

	s.history.Record(ctx, request.ID, rma.EventStatusChanged, map[string]any{
		"oldStatus": int(oldStatus),
		"newStatus": int(newStatus),
		"comment":   comment,
	}, actorID)

	if s.notifier != nil {
		s.notifyStatusChange(ctx, request)
	}

	return nil
}

// notifyStatusChange sends the status mail to the order's email address
func (s *Service) notifyStatusChange(ctx context.Context, request *rma.RMA) {
	ord, err := s.orderRepo.FindByID(ctx, request.OrderID)
	if err != nil {
		s.logger.Warn("Could not resolve order for status notification",
			zap.Int64("rma_id", request.ID),
			zap.Error(err),
		)
		return
	}
	s.notifier.SendStatusUpdate(ctx, request, ord.Email)
}

// UpdateItemStatus sets the per-line decision on a return item
func (s *Service) UpdateItemStatus(ctx context.Context, rmaID, itemID int64, status rma.ItemStatus, actorID *int64) error {
	if !status.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Invalid item status: %d", status))
	}

	request, err := s.rmaRepo.FindByID(ctx, rmaID)
	if err != nil {
		return err
	}

	item := request.Item(itemID)
	if item == nil {
		return shared.ErrNotFound
	}

	oldStatus := item.Status
	if err := item.UpdateStatus(status); err != nil {
		return err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return err
	}

	s.history.Record(ctx, request.ID, rma.EventItemStatusUpdated, map[string]any{
		"itemID":    itemID,
		"oldStatus": int(oldStatus),
		"newStatus": int(status),
	}, actorID)

	return nil
}

// AddComment records a customer comment on a return request
func (s *Service) AddComment(ctx context.Context, rmaID int64, comment string, actorID *int64) error {
	if strings.TrimSpace(comment) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Comment cannot be empty")
	}
	if _, err := s.rmaRepo.FindByID(ctx, rmaID); err != nil {
		return err
	}
	s.history.Record(ctx, rmaID, rma.EventCommentAdded, map[string]any{"comment": comment}, actorID)
	return nil
}

// AddAdminNote records an internal note on a return request
func (s *Service) AddAdminNote(ctx context.Context, rmaID int64, note string, actorID *int64) error {
	if strings.TrimSpace(note) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Note cannot be empty")
	}
	if _, err := s.rmaRepo.FindByID(ctx, rmaID); err != nil {
		return err
	}
	s.history.Record(ctx, rmaID, rma.EventAdminNoteAdded, map[string]any{"note": note}, actorID)
	return nil
}

// ReturnReasons lists the active reason catalog for a shop language
func (s *Service) ReturnReasons(ctx context.Context, languageISO string) ([]rma.Reason, error) {
	return s.reasonRepo.ActiveByLanguage(ctx, languageISO)
}

// OpenCountByCustomer counts a customer's open return requests
func (s *Service) OpenCountByCustomer(ctx context.Context, customerID int64) (int64, error) {
	return s.rmaRepo.CountOpenByCustomer(ctx, customerID)
}

// History returns the audit log of a return request
func (s *Service) History(ctx context.Context, rmaID int64) ([]rma.HistoryEvent, error) {
	if _, err := s.rmaRepo.FindByID(ctx, rmaID); err != nil {
		return nil, err
	}
	return s.history.History(ctx, rmaID)
}

// AnonymizeCustomer erases personal data from a customer's return requests:
// the customer reference is cleared on every request and the stored pickup
// addresses are deleted. Requests, items and history stay for bookkeeping.
func (s *Service) AnonymizeCustomer(ctx context.Context, customerID int64) error {
	rmaIDs, err := s.rmaRepo.AnonymizeCustomer(ctx, customerID)
	if err != nil {
		return err
	}

	deleted, err := s.addressRepo.DeleteByCustomer(ctx, customerID)
	if err != nil {
		return err
	}

	for _, id := range rmaIDs {
		s.history.Record(ctx, id, rma.EventCustomerAnonymized, nil, nil)
	}

	s.logger.Info("Customer return data anonymized",
		zap.Int64("customer_id", customerID),
		zap.Int("rma_count", len(rmaIDs)),
		zap.Int64("addresses_deleted", deleted),
	)
	return nil
}
