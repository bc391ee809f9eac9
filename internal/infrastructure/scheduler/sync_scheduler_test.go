package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appsync "github.com/returns/backend/internal/application/sync"
	"github.com/returns/backend/internal/domain/setting"
	"github.com/returns/backend/internal/domain/shared"
)

type stubSyncer struct {
	stats appsync.Stats
	err   error
	calls int
}

func (s *stubSyncer) SyncPendingRMAs(ctx context.Context, limit int) (appsync.Stats, error) {
	s.calls++
	return s.stats, s.err
}

type memSettings struct {
	values map[string]string
}

func newMemSettings() *memSettings {
	return &memSettings{values: make(map[string]string)}
}

func (m *memSettings) Get(ctx context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", shared.ErrNotFound
	}
	return value, nil
}

func (m *memSettings) Set(ctx context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

type stubAlerts struct {
	to      string
	subject string
	body    string
	calls   int
}

func (a *stubAlerts) SendAdminAlert(ctx context.Context, to, subject, body string) bool {
	a.calls++
	a.to = to
	a.subject = subject
	a.body = body
	return true
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time        { return c.now }
func (c *fixedClock) Sleep(d time.Duration) {}

func newTestScheduler(syncer *stubSyncer, settings *memSettings, alerts *stubAlerts, clock *fixedClock) *SyncScheduler {
	return NewSyncScheduler(syncer, settings, alerts, Config{
		Interval:   15 * time.Minute,
		BatchSize:  50,
		AdminEmail: "admin@example.com",
	}, clock, zap.NewNop())
}

func TestRunNow_RecordsRunAndStoresLastSyncTime(t *testing.T) {
	syncer := &stubSyncer{stats: appsync.Stats{Success: 3}}
	settings := newMemSettings()
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestScheduler(syncer, settings, nil, clock)

	run := s.RunNow(context.Background())

	assert.Equal(t, RunStatusSuccess, run.Status)
	assert.Equal(t, 3, run.Success)
	assert.Equal(t, 0, run.Failed)
	require.NotNil(t, run.CompletedAt)
	assert.Equal(t, "2025-06-01 12:00:00", settings.values[setting.KeyLastSyncTime])

	history := s.History(10)
	require.Len(t, history, 1)
	assert.Equal(t, run.ID, history[0].ID)
}

func TestRunNow_PartialFailureAlertsAdmin(t *testing.T) {
	syncer := &stubSyncer{stats: appsync.Stats{Success: 2, Failed: 1}}
	alerts := &stubAlerts{}
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestScheduler(syncer, newMemSettings(), alerts, clock)

	run := s.RunNow(context.Background())

	assert.Equal(t, RunStatusPartial, run.Status)
	assert.Equal(t, 1, alerts.calls)
	assert.Equal(t, "admin@example.com", alerts.to)
	assert.Contains(t, alerts.body, "1 failed")
}

func TestRunNow_ErrorMarksRunFailed(t *testing.T) {
	syncer := &stubSyncer{err: errors.New("database unavailable")}
	alerts := &stubAlerts{}
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestScheduler(syncer, newMemSettings(), alerts, clock)

	run := s.RunNow(context.Background())

	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Contains(t, run.Error, "database unavailable")
	assert.Equal(t, 1, alerts.calls)
}

func TestRunNow_NoAlertWithoutAdminEmail(t *testing.T) {
	syncer := &stubSyncer{stats: appsync.Stats{Failed: 2}}
	alerts := &stubAlerts{}
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := NewSyncScheduler(syncer, newMemSettings(), alerts, Config{
		Interval:  15 * time.Minute,
		BatchSize: 50,
	}, clock, zap.NewNop())

	s.RunNow(context.Background())
	assert.Equal(t, 0, alerts.calls)
}

func TestDue_HonorsInterval(t *testing.T) {
	syncer := &stubSyncer{stats: appsync.Stats{Success: 1}}
	settings := newMemSettings()
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestScheduler(syncer, settings, nil, clock)

	// No recorded run yet
	assert.True(t, s.due(context.Background()))

	s.RunNow(context.Background())
	assert.False(t, s.due(context.Background()))

	clock.now = clock.now.Add(14 * time.Minute)
	assert.False(t, s.due(context.Background()))

	clock.now = clock.now.Add(time.Minute)
	assert.True(t, s.due(context.Background()))
}

func TestDue_UnparseableValueCountsAsDue(t *testing.T) {
	settings := newMemSettings()
	settings.values[setting.KeyLastSyncTime] = "not a timestamp"
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestScheduler(&stubSyncer{}, settings, nil, clock)

	assert.True(t, s.due(context.Background()))
}

func TestHistory_NewestFirstAndBounded(t *testing.T) {
	syncer := &stubSyncer{stats: appsync.Stats{Success: 1}}
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestScheduler(syncer, newMemSettings(), nil, clock)

	first := s.RunNow(context.Background())
	second := s.RunNow(context.Background())

	history := s.History(0)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	limited := s.History(1)
	require.Len(t, limited, 1)
	assert.Equal(t, second.ID, limited[0].ID)
}

func TestStartStop_Lifecycle(t *testing.T) {
	s := newTestScheduler(&stubSyncer{}, newMemSettings(), nil, &fixedClock{now: time.Now()})

	require.NoError(t, s.Start(context.Background()))
	// Second start is a no-op
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}
