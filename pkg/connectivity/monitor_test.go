package connectivity

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubProber struct {
	online atomic.Bool
	calls  atomic.Int32
}

func (s *stubProber) Probe(context.Context) bool {
	s.calls.Add(1)

	return s.online.Load()
}

func TestIsConnectedCachesWithinWindow(t *testing.T) {
	prober := &stubProber{}
	prober.online.Store(true)
	m := NewMonitorWithProber(prober, time.Minute, time.Minute, slog.Default())

	ctx := context.Background()
	assert.True(t, m.IsConnected(ctx))
	assert.True(t, m.IsConnected(ctx))
	assert.True(t, m.IsConnected(ctx))

	assert.Equal(t, int32(1), prober.calls.Load(), "cached result should be reused within the freshness window")
}

func TestIsConnectedReprobesWhenStale(t *testing.T) {
	prober := &stubProber{}
	prober.online.Store(true)
	m := NewMonitorWithProber(prober, time.Nanosecond, time.Minute, slog.Default())

	ctx := context.Background()
	assert.True(t, m.IsConnected(ctx))

	prober.online.Store(false)
	time.Sleep(time.Millisecond)
	assert.False(t, m.IsConnected(ctx))
	assert.GreaterOrEqual(t, prober.calls.Load(), int32(2))
}

func TestPollFiresOnOnlineHook(t *testing.T) {
	prober := &stubProber{}
	prober.online.Store(true)
	m := NewMonitorWithProber(prober, time.Minute, 10*time.Millisecond, slog.Default())

	fired := make(chan struct{}, 1)
	m.OnOnline(func(context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Poll(ctx)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("poller never fired the online hook")
	}
}

func TestPollStopsOnCancel(t *testing.T) {
	prober := &stubProber{}
	m := NewMonitorWithProber(prober, time.Minute, 5*time.Millisecond, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Poll(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on context cancellation")
	}
}
