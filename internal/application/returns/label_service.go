package returns

import (
	"context"

	"github.com/returns/backend/internal/domain/rma"
	"github.com/returns/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LabelProvider creates a return shipping label with a carrier. The string
// result is a document reference (path or URL) to hand to the customer.
type LabelProvider interface {
	CreateLabel(ctx context.Context, r *rma.RMA, addr *rma.ReturnAddress) (string, error)
}

// LabelService dispatches label creation to the configured carrier.
// A misconfigured carrier is a hard error; a carrier-side failure is a
// regular result so the return flow keeps working without a label.
type LabelService struct {
	rmaRepo     rma.Repository
	addressRepo rma.AddressRepository
	providers   map[string]LabelProvider
	carrier     string
	history     *HistoryService
	logger      *zap.Logger
}

// NewLabelService creates a new LabelService. carrier selects the provider
// by its registry key.
func NewLabelService(
	rmaRepo rma.Repository,
	addressRepo rma.AddressRepository,
	providers map[string]LabelProvider,
	carrier string,
	history *HistoryService,
	logger *zap.Logger,
) *LabelService {
	return &LabelService{
		rmaRepo:     rmaRepo,
		addressRepo: addressRepo,
		providers:   providers,
		carrier:     carrier,
		history:     history,
		logger:      logger,
	}
}

// CreateLabel creates a shipping label for a return request
func (s *LabelService) CreateLabel(ctx context.Context, rmaID int64) (*LabelResult, error) {
	provider, ok := s.providers[s.carrier]
	if !ok {
		return nil, shared.ErrUnknownCarrier
	}

	request, err := s.rmaRepo.FindByID(ctx, rmaID)
	if err != nil {
		return nil, err
	}

	var addr *rma.ReturnAddress
	if request.ReturnAddressID != nil {
		addr, err = s.addressRepo.FindByID(ctx, *request.ReturnAddressID)
		if err != nil {
			return nil, err
		}
	}

	labelPath, err := provider.CreateLabel(ctx, request, addr)
	if err != nil {
		s.logger.Warn("Carrier rejected label creation",
			zap.Int64("rma_id", request.ID),
			zap.String("carrier", s.carrier),
			zap.Error(err),
		)
		return &LabelResult{Success: false, Error: err.Error()}, nil
	}

	request.LabelPath = &labelPath
	if err := s.rmaRepo.Save(ctx, request); err != nil {
		return nil, err
	}

	s.history.Record(ctx, request.ID, rma.EventLabelCreated, map[string]any{
		"carrier":   s.carrier,
		"labelPath": labelPath,
	}, nil)

	return &LabelResult{Success: true, LabelPath: labelPath}, nil
}

// Label returns the stored label reference of a return request
func (s *LabelService) Label(ctx context.Context, rmaID int64) (string, error) {
	request, err := s.rmaRepo.FindByID(ctx, rmaID)
	if err != nil {
		return "", err
	}
	if request.LabelPath == nil {
		return "", shared.ErrNotFound
	}
	return *request.LabelPath, nil
}
