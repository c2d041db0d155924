package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readlater/internal/config"
)

func testConfig() config.Tasks {
	return config.Tasks{
		Enabled:         true,
		Workers:         1,
		ReleaseAfter:    time.Minute,
		CleanupInterval: time.Hour,
	}
}

func TestQueueDBPath(t *testing.T) {
	assert.Equal(t, "/data/readlater-queue.db", QueueDBPath("/data/readlater.db"))
	assert.Equal(t, "poche-queue", QueueDBPath("poche"))
}

func TestNewClient(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	client, err := NewClient(dbPath, testConfig())
	require.NoError(t, err)

	_, err = os.Stat(QueueDBPath(dbPath))
	assert.NoError(t, err, "queue database should be created")
	assert.NoError(t, client.Close())
}

func TestClientStartStop(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), testConfig())
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx))
}

func TestStopWithoutStart(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), testConfig())
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, client.Stop(context.Background()))
}

type stubTagsCleaner struct {
	calls int
	err   error
}

func (s *stubTagsCleaner) DeleteOrphanTags(context.Context) (int64, error) {
	s.calls++
	return 3, s.err
}

type reportedEvent struct {
	action   string
	affected int64
	err      error
}

type stubReporter struct {
	mu     sync.Mutex
	events []reportedEvent
}

func (r *stubReporter) LogMaintenance(action string, affected int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, reportedEvent{action, affected, err})
}

func (r *stubReporter) snapshot() []reportedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]reportedEvent(nil), r.events...)
}

func TestEnqueueRunsCleanup(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), testConfig())
	require.NoError(t, err)
	defer client.Close()

	reporter := &stubReporter{}
	client.Register(NewCleanupOrphanTagsQueue(&stubTagsCleaner{}, reporter))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)

	ids, err := client.Enqueue(ctx, CleanupOrphanTagsTask{})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	require.Eventually(t, func() bool {
		return len(reporter.snapshot()) == 1
	}, 5*time.Second, 20*time.Millisecond)

	event := reporter.snapshot()[0]
	assert.Equal(t, CleanupOrphanTagsName, event.action)
	assert.Equal(t, int64(3), event.affected)
	assert.NoError(t, event.err)
}

func TestCleanupOrphanTagsProcessor(t *testing.T) {
	t.Run("reports failure", func(t *testing.T) {
		reporter := &stubReporter{}
		cleaner := &stubTagsCleaner{err: errors.New("locked")}

		err := CleanupOrphanTagsProcessor(cleaner, reporter)(context.Background(), CleanupOrphanTagsTask{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locked")
		require.Len(t, reporter.snapshot(), 1)
		assert.Error(t, reporter.snapshot()[0].err)
	})

	t.Run("nil cleaner", func(t *testing.T) {
		err := CleanupOrphanTagsProcessor(nil, nil)(context.Background(), CleanupOrphanTagsTask{})
		assert.Error(t, err)
	})

	t.Run("nil reporter", func(t *testing.T) {
		cleaner := &stubTagsCleaner{}
		err := CleanupOrphanTagsProcessor(cleaner, nil)(context.Background(), CleanupOrphanTagsTask{})
		assert.NoError(t, err)
		assert.Equal(t, 1, cleaner.calls)
	})
}

type stubAuditCleaner struct {
	retention time.Duration
}

func (s *stubAuditCleaner) DeleteOldEvents(retention time.Duration) (int64, error) {
	s.retention = retention
	return 7, nil
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	tests := []struct {
		name string
		days int
		want time.Duration
	}{
		{"configured", 7, 7 * 24 * time.Hour},
		{"zero falls back", 0, 30 * 24 * time.Hour},
		{"negative falls back", -1, 30 * 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaner := &stubAuditCleaner{}
			reporter := &stubReporter{}

			err := CleanupAuditEventsProcessor(cleaner, reporter)(context.Background(), CleanupAuditEventsTask{RetentionDays: tt.days})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cleaner.retention)
			require.Len(t, reporter.snapshot(), 1)
			assert.Equal(t, int64(7), reporter.snapshot()[0].affected)
		})
	}
}

type stubRefresher struct {
	name string
	err  error
}

func (s *stubRefresher) Refresh(_ context.Context, name string) (string, error) {
	s.name = name
	return "2.0.0", s.err
}

func TestRefreshVersionProcessor(t *testing.T) {
	refresher := &stubRefresher{}
	reporter := &stubReporter{}

	err := RefreshVersionProcessor(refresher, reporter)(context.Background(), RefreshVersionTask{Name: "prod"})
	require.NoError(t, err)
	assert.Equal(t, "prod", refresher.name)
	assert.Empty(t, reporter.snapshot())

	refresher.err = errors.New("offline")
	err = RefreshVersionProcessor(refresher, reporter)(context.Background(), RefreshVersionTask{Name: "dev"})
	require.Error(t, err)
	require.Len(t, reporter.snapshot(), 1)
	assert.Equal(t, RefreshVersionName, reporter.snapshot()[0].action)
}

func TestQueueConfigs(t *testing.T) {
	configs := []backlite.QueueConfig{
		CleanupOrphanTagsTask{}.Config(),
		CleanupAuditEventsTask{}.Config(),
		RefreshVersionTask{}.Config(),
	}
	names := map[string]bool{}
	for _, cfg := range configs {
		assert.Positive(t, cfg.MaxAttempts, cfg.Name)
		assert.Positive(t, cfg.Timeout, cfg.Name)
		require.NotNil(t, cfg.Retention, cfg.Name)
		names[cfg.Name] = true
	}
	assert.Len(t, names, 3, "queue names must be unique")
}
