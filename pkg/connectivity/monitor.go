// Package connectivity tracks network reachability with a cached probe
// result so that callers on the request path never pay for more than
// one probe per freshness window.
package connectivity

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	DefProbeAddr    = "8.8.8.8:53"
	DefProbeURL     = "https://www.google.com"
	DefProbeTimeout = 3 * time.Second
	DefCacheTTL     = 30 * time.Second
	DefPollInterval = 60 * time.Second
)

// Prober performs a single reachability check.
type Prober interface {
	Probe(ctx context.Context) bool
}

type Config struct {
	ProbeAddr    string
	ProbeURL     string
	ProbeTimeout time.Duration
	CacheTTL     time.Duration
	PollInterval time.Duration
}

func (c *Config) withDefaults() {
	if c.ProbeAddr == "" {
		c.ProbeAddr = DefProbeAddr
	}
	if c.ProbeURL == "" {
		c.ProbeURL = DefProbeURL
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = DefProbeTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefCacheTTL
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefPollInterval
	}
}

// Monitor owns a cached online/offline boolean with a freshness window.
// IsConnected may block for up to the probe timeout when the cache is
// stale, so callers holding locks must check connectivity first.
type Monitor struct {
	prober   Prober
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	online    bool
	lastCheck time.Time

	onOnline func(context.Context)
}

func NewMonitor(cfg Config, logger *slog.Logger) *Monitor {
	cfg.withDefaults()

	return &Monitor{
		prober: &dialProber{
			addr:    cfg.ProbeAddr,
			url:     cfg.ProbeURL,
			timeout: cfg.ProbeTimeout,
		},
		ttl:      cfg.CacheTTL,
		interval: cfg.PollInterval,
		logger:   logger,
	}
}

// NewMonitorWithProber is used by tests and deployments with a custom
// reachability check.
func NewMonitorWithProber(p Prober, ttl, interval time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{
		prober:   p,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
	}
}

// OnOnline registers a callback fired by the background poller whenever
// a refresh finds the network reachable. Must be called before Poll.
func (m *Monitor) OnOnline(fn func(context.Context)) {
	m.onOnline = fn
}

// IsConnected returns the cached state, re-probing when it is older
// than the freshness window.
func (m *Monitor) IsConnected(ctx context.Context) bool {
	m.mu.Lock()
	fresh := time.Since(m.lastCheck) <= m.ttl
	online := m.online
	m.mu.Unlock()

	if fresh {
		return online
	}

	return m.refresh(ctx)
}

func (m *Monitor) refresh(ctx context.Context) bool {
	online := m.prober.Probe(ctx)

	m.mu.Lock()
	m.online = online
	m.lastCheck = time.Now()
	m.mu.Unlock()

	return online
}

// Poll refreshes the cache at a fixed interval until ctx is cancelled.
// A refresh that finds the network reachable fires the OnOnline hook,
// which the coordinator uses to catch up after an offline period.
func (m *Monitor) Poll(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("stopping connectivity poller")

			return
		case <-ticker.C:
			if m.refresh(ctx) {
				if m.onOnline != nil {
					m.onOnline(ctx)
				}
			} else {
				m.logger.Debug("connectivity probe failed, device offline")
			}
		}
	}
}

// dialProber attempts a raw TCP connection first and falls back to a
// single HTTPS request; either success marks the device online.
type dialProber struct {
	addr    string
	url     string
	timeout time.Duration
}

func (p *dialProber) Probe(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: p.timeout}
	if conn, err := dialer.DialContext(ctx, "tcp", p.addr); err == nil {
		conn.Close()

		return true
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, p.url, nil)
	if err != nil {
		return false
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return true
}
