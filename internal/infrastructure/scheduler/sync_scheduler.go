package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appsync "github.com/returns/backend/internal/application/sync"
	"github.com/returns/backend/internal/domain/setting"
	"github.com/returns/backend/internal/domain/shared"
)

// timeLayout matches the format the back office uses for timestamps
const timeLayout = "2006-01-02 15:04:05"

// RunStatus represents the outcome of one scheduled sync run
type RunStatus string

const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusPartial RunStatus = "PARTIAL"
	RunStatusFailed  RunStatus = "FAILED"
)

// SyncRun records one execution of the periodic back office sync
type SyncRun struct {
	ID          uuid.UUID
	StartedAt   time.Time
	CompletedAt *time.Time
	Status      RunStatus
	Success     int
	Failed      int
	Error       string
}

// BatchSyncer delivers pending return requests to the back office
type BatchSyncer interface {
	SyncPendingRMAs(ctx context.Context, limit int) (appsync.Stats, error)
}

// AlertSender notifies the shop admin about sync problems
type AlertSender interface {
	SendAdminAlert(ctx context.Context, to, subject, body string) bool
}

// Config holds the scheduler settings
type Config struct {
	Interval   time.Duration // minimum time between runs
	BatchSize  int           // requests delivered per run
	AdminEmail string        // empty disables failure alerts
}

// SyncScheduler periodically pushes unsynchronized return requests to the
// back office. The last run time is persisted as a setting so restarts do
// not trigger an immediate re-run.
type SyncScheduler struct {
	syncer   BatchSyncer
	settings setting.Repository
	alerts   AlertSender
	config   Config
	clock    shared.Clock
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Run history for monitoring (in-memory, limited size)
	historyMu  sync.RWMutex
	history    []*SyncRun
	maxHistory int
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(
	syncer BatchSyncer,
	settings setting.Repository,
	alerts AlertSender,
	config Config,
	clock shared.Clock,
	logger *zap.Logger,
) *SyncScheduler {
	if config.Interval <= 0 {
		config.Interval = 15 * time.Minute
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	return &SyncScheduler{
		syncer:     syncer,
		settings:   settings,
		alerts:     alerts,
		config:     config,
		clock:      clock,
		logger:     logger,
		history:    make([]*SyncRun, 0, 50),
		maxHistory: 50,
	}
}

// Start starts the scheduler loop
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// loop wakes up once a minute and runs a sync when the interval has elapsed
func (s *SyncScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.due(ctx) {
				s.RunNow(ctx)
			}
		}
	}
}

// due reports whether enough time has passed since the last recorded run.
// A missing or unparseable setting counts as due.
func (s *SyncScheduler) due(ctx context.Context) bool {
	value, err := s.settings.Get(ctx, setting.KeyLastSyncTime)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Failed to read last sync time", zap.Error(err))
		}
		return true
	}

	last, err := time.Parse(timeLayout, value)
	if err != nil {
		s.logger.Warn("Unparseable last sync time", zap.String("value", value))
		return true
	}

	return s.clock.Now().Sub(last) >= s.config.Interval
}

// RunNow executes one sync run immediately and records it in the history
func (s *SyncScheduler) RunNow(ctx context.Context) *SyncRun {
	run := &SyncRun{
		ID:        uuid.New(),
		StartedAt: s.clock.Now(),
		Status:    RunStatusRunning,
	}

	stats, err := s.syncer.SyncPendingRMAs(ctx, s.config.BatchSize)
	now := s.clock.Now()
	run.CompletedAt = &now
	run.Success = stats.Success
	run.Failed = stats.Failed

	switch {
	case err != nil:
		run.Status = RunStatusFailed
		run.Error = err.Error()
		s.logger.Error("Sync run failed", zap.String("run_id", run.ID.String()), zap.Error(err))
	case stats.Failed > 0:
		run.Status = RunStatusPartial
		s.logger.Warn("Sync run finished with failures",
			zap.String("run_id", run.ID.String()),
			zap.Int("success", stats.Success),
			zap.Int("failed", stats.Failed),
		)
	default:
		run.Status = RunStatusSuccess
		s.logger.Info("Sync run finished",
			zap.String("run_id", run.ID.String()),
			zap.Int("success", stats.Success),
		)
	}

	if err := s.settings.Set(ctx, setting.KeyLastSyncTime, now.Format(timeLayout)); err != nil {
		s.logger.Error("Failed to store last sync time", zap.Error(err))
	}

	if run.Status != RunStatusSuccess && s.alerts != nil && s.config.AdminEmail != "" {
		body := fmt.Sprintf("Sync run %s finished with status %s: %d delivered, %d failed.",
			run.ID, run.Status, run.Success, run.Failed)
		if run.Error != "" {
			body += " Error: " + run.Error
		}
		s.alerts.SendAdminAlert(ctx, s.config.AdminEmail, "Return sync failures", body)
	}

	s.addToHistory(run)
	return run
}

// addToHistory adds a completed run to the ring, newest first
func (s *SyncScheduler) addToHistory(run *SyncRun) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*SyncRun{run}, s.history...)
	if len(s.history) > s.maxHistory {
		s.history = s.history[:s.maxHistory]
	}
}

// History returns recent runs, newest first
func (s *SyncScheduler) History(limit int) []*SyncRun {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	result := make([]*SyncRun, limit)
	copy(result, s.history[:limit])
	return result
}
