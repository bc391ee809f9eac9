package returns

import (
	"context"

	"github.com/returns/backend/internal/domain/rma"
	"go.uber.org/zap"
)

// HistoryService appends audit events to the return history log.
// Writes happen after the primary mutation and are best-effort: a failed
// history insert is logged but never fails the operation it documents.
type HistoryService struct {
	repo   rma.HistoryRepository
	logger *zap.Logger
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(repo rma.HistoryRepository, logger *zap.Logger) *HistoryService {
	return &HistoryService{repo: repo, logger: logger}
}

// Record appends an event. Returns true when the entry was persisted.
func (s *HistoryService) Record(ctx context.Context, rmaID int64, kind rma.EventKind, payload map[string]any, actorID *int64) bool {
	event, err := rma.NewHistoryEvent(rmaID, kind, payload, actorID)
	if err != nil {
		s.logger.Error("Failed to build history event",
			zap.Int64("rma_id", rmaID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return false
	}

	if err := s.repo.Append(ctx, event); err != nil {
		s.logger.Error("Failed to append history event",
			zap.Int64("rma_id", rmaID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return false
	}
	return true
}

// History returns all events of a return request, newest first
func (s *HistoryService) History(ctx context.Context, rmaID int64) ([]rma.HistoryEvent, error) {
	return s.repo.FindByRMA(ctx, rmaID)
}

// LastEvent returns the most recent event of a return request
func (s *HistoryService) LastEvent(ctx context.Context, rmaID int64) (*rma.HistoryEvent, error) {
	return s.repo.LastByRMA(ctx, rmaID)
}
