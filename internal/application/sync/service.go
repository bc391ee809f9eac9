package sync

import (
	"context"
	"errors"
	"time"

	"github.com/returns/backend/internal/application/returns"
	"github.com/returns/backend/internal/domain/dbes"
	"github.com/returns/backend/internal/domain/rma"
	"github.com/returns/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ItemUpdate is a partial inbound change to one return item. Nil fields are
// left untouched.
type ItemUpdate struct {
	ID           int64
	Status       *rma.ItemStatus
	RefundAmount *decimal.Decimal
}

// Update is a partial inbound change from the back office
type Update struct {
	RMAID  int64
	Status *rma.Status
	WawiID *int64
	Items  []ItemUpdate
}

// Stats tallies one batch run
type Stats struct {
	Success int
	Failed  int
}

// Service moves return requests between the shop and the back office:
// outbound as XML documents through the export queue, inbound as partial
// updates.
type Service struct {
	rmaRepo     rma.Repository
	addressRepo rma.AddressRepository
	queue       dbes.QueueRepository
	history     *returns.HistoryService
	clock       shared.Clock
	maxAttempts int
	retryDelay  time.Duration
	logger      *zap.Logger
}

// NewService creates a new sync service. maxAttempts bounds enqueue retries
// per request; retryDelay is the fixed pause between attempts.
func NewService(
	rmaRepo rma.Repository,
	addressRepo rma.AddressRepository,
	queue dbes.QueueRepository,
	history *returns.HistoryService,
	clock shared.Clock,
	maxAttempts int,
	retryDelay time.Duration,
	logger *zap.Logger,
) *Service {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Service{
		rmaRepo:     rmaRepo,
		addressRepo: addressRepo,
		queue:       queue,
		history:     history,
		clock:       clock,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		logger:      logger,
	}
}

// SyncToWawi delivers a single return request to the back office and marks
// it synchronized. Already synchronized requests are a no-op.
func (s *Service) SyncToWawi(ctx context.Context, request *rma.RMA) error {
	if request.Synced {
		return nil
	}

	if err := s.deliver(ctx, request); err != nil {
		return err
	}

	request.MarkSynced(s.clock.Now())
	if err := s.rmaRepo.Save(ctx, request); err != nil {
		return err
	}
	return nil
}

// SyncPendingRMAs delivers up to limit unsynchronized requests. Requests
// are claimed atomically before delivery so overlapping runs never send the
// same request twice; a failed delivery releases its claim for a later run.
func (s *Service) SyncPendingRMAs(ctx context.Context, limit int) (Stats, error) {
	claimed, err := s.rmaRepo.ClaimUnsynchronized(ctx, limit)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for i := range claimed {
		request := &claimed[i]
		if err := s.deliver(ctx, request); err != nil {
			stats.Failed++
			s.logger.Error("Delivery to back office failed",
				zap.Int64("rma_id", request.ID),
				zap.String("rma_number", request.Number),
				zap.Error(err),
			)
			if releaseErr := s.rmaRepo.ReleaseSyncClaim(ctx, request.ID); releaseErr != nil {
				s.logger.Error("Failed to release sync claim",
					zap.Int64("rma_id", request.ID),
					zap.Error(releaseErr),
				)
			}
			continue
		}

		request.MarkSynced(s.clock.Now())
		if err := s.rmaRepo.Save(ctx, request); err != nil {
			s.logger.Error("Failed to stamp sync time",
				zap.Int64("rma_id", request.ID),
				zap.Error(err),
			)
		}
		stats.Success++
	}

	if stats.Failed > 0 {
		s.logger.Warn("Sync batch finished with failures",
			zap.Int("success", stats.Success),
			zap.Int("failed", stats.Failed),
		)
	}
	return stats, nil
}

// deliver serializes the request and enqueues it, retrying a bounded number
// of times with a fixed delay.
func (s *Service) deliver(ctx context.Context, request *rma.RMA) error {
	var addr *rma.ReturnAddress
	if request.ReturnAddressID != nil {
		found, err := s.addressRepo.FindByID(ctx, *request.ReturnAddressID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		addr = found
	}

	payload, err := dbes.NewDocument(request, addr).Marshal()
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := s.queue.Enqueue(ctx, dbes.NewRMAEntry(payload)); err != nil {
			lastErr = err
			s.logger.Warn("Enqueue attempt failed",
				zap.Int64("rma_id", request.ID),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", s.maxAttempts),
				zap.Error(err),
			)
			if attempt < s.maxAttempts {
				s.clock.Sleep(s.retryDelay)
			}
			continue
		}

		s.history.Record(ctx, request.ID, rma.EventWawiSynced, map[string]any{
			"rmaNr":   request.Number,
			"attempt": attempt,
		}, nil)
		return nil
	}

	return shared.NewDomainError("EXTERNAL_DELIVERY_FAILURE", lastErr.Error())
}

// HandleWawiUpdate applies a partial inbound update. An unknown RMA is
// logged and ignored so a replayed or stale message cannot fail the feed.
func (s *Service) HandleWawiUpdate(ctx context.Context, upd Update) error {
	request, err := s.rmaRepo.FindByID(ctx, upd.RMAID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Inbound update for unknown RMA ignored",
				zap.Int64("rma_id", upd.RMAID),
			)
			return nil
		}
		return err
	}

	changed := false

	if upd.Status != nil {
		if err := request.UpdateStatus(*upd.Status); err != nil {
			return err
		}
		changed = true
	}

	if upd.WawiID != nil {
		request.WawiID = upd.WawiID
		changed = true
	}

	for _, itemUpd := range upd.Items {
		item := request.Item(itemUpd.ID)
		if item == nil {
			s.logger.Warn("Inbound update for unknown item ignored",
				zap.Int64("rma_id", request.ID),
				zap.Int64("item_id", itemUpd.ID),
			)
			continue
		}
		if itemUpd.Status != nil {
			if err := item.UpdateStatus(*itemUpd.Status); err != nil {
				return err
			}
			changed = true
		}
		if itemUpd.RefundAmount != nil {
			item.RefundAmount = *itemUpd.RefundAmount
			changed = true
		}
	}

	if !changed {
		return nil
	}

	request.RecalculateTotal()
	if err := s.rmaRepo.Save(ctx, request); err != nil {
		return err
	}

	s.history.Record(ctx, request.ID, rma.EventWawiUpdateReceived, updatePayload(upd), nil)
	return nil
}

// updatePayload captures the raw inbound change for the history log
func updatePayload(upd Update) map[string]any {
	payload := map[string]any{"rmaID": upd.RMAID}
	if upd.Status != nil {
		payload["status"] = int(*upd.Status)
	}
	if upd.WawiID != nil {
		payload["wawiID"] = *upd.WawiID
	}
	if len(upd.Items) > 0 {
		items := make([]map[string]any, 0, len(upd.Items))
		for _, itemUpd := range upd.Items {
			entry := map[string]any{"id": itemUpd.ID}
			if itemUpd.Status != nil {
				entry["status"] = int(*itemUpd.Status)
			}
			if itemUpd.RefundAmount != nil {
				entry["refundAmount"] = itemUpd.RefundAmount.StringFixed(2)
			}
			items = append(items, entry)
		}
		payload["items"] = items
	}
	return payload
}
