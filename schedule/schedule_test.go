package schedule

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Keksclan/goMensaSquirrel/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type refresherFunc func(ctx context.Context) resolve.RefreshSummary

func (f refresherFunc) RefreshAll(ctx context.Context) resolve.RefreshSummary { return f(ctx) }

func TestNewRejectsInvalidSpec(t *testing.T) {
	_, err := New("every day at noon", refresherFunc(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid refresh schedule")
}

func TestDefaultSpecIsDailyAtOneMinutePastMidnight(t *testing.T) {
	s, err := New(DefaultSpec, refresherFunc(nil))
	require.NoError(t, err)
	s.Start()
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	next := s.Next().UTC()
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 1, next.Minute())
	assert.Equal(t, 0, next.Second())
	assert.WithinDuration(t, time.Now(), next, 24*time.Hour)
}

func TestRunsRefresherAndLogsSummary(t *testing.T) {
	var calls atomic.Int32
	var logs syncBuffer
	r := refresherFunc(func(context.Context) resolve.RefreshSummary {
		calls.Add(1)
		return resolve.RefreshSummary{Pairs: 2, Refreshed: 1, Failed: 1}
	})

	s, err := New("* * * * * *", r, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, err)
	s.Start()

	require.Eventually(t, func() bool { return calls.Load() > 0 }, 3*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop(t.Context()))
	assert.Contains(t, logs.String(), "refresh finished")
	assert.Contains(t, logs.String(), "failed=1")
}

func TestStopCancelsRunningSweep(t *testing.T) {
	started := make(chan struct{})
	var cancelled atomic.Bool
	r := refresherFunc(func(ctx context.Context) resolve.RefreshSummary {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return resolve.RefreshSummary{}
	})

	s, err := New("* * * * * *", r, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	require.NoError(t, err)
	s.Start()

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("sweep did not start")
	}
	require.NoError(t, s.Stop(t.Context()))
	assert.True(t, cancelled.Load())
}

// syncBuffer is a strings.Builder safe for the cron goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
