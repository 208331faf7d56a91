package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/atomic"
)

// FailoverConfig tunes how the primary backend is dialed and watched.
type FailoverConfig struct {
	// ConnectAttempts is the total number of pings tried at construction.
	ConnectAttempts uint64
	// BaseDelay is the first backoff between connect attempts; it doubles each time.
	BaseDelay time.Duration
	// MaxDelay caps a single backoff.
	MaxDelay time.Duration
	// PingTimeout bounds each ping.
	PingTimeout time.Duration
	// MonitorInterval is how often an unhealthy primary is probed.
	MonitorInterval time.Duration
}

func DefaultFailoverConfig() FailoverConfig {
	return FailoverConfig{
		ConnectAttempts: 3,
		BaseDelay:       time.Second,
		MaxDelay:        10 * time.Second,
		PingTimeout:     10 * time.Second,
		MonitorInterval: 5 * time.Second,
	}
}

var (
	_ Backend = (*Redis)(nil)
	_ Backend = (*Memory)(nil)
	_ Backend = (*Failover)(nil)
)

// Failover serves every operation from primary while it is healthy and from
// fallback otherwise. A primary that cannot be reached within the connect
// budget is disabled for the lifetime of the process.
type Failover struct {
	primary  Backend
	fallback Backend
	cfg      FailoverConfig

	healthy  *atomic.Bool
	disabled *atomic.Bool

	failovers metric.Int64Counter
}

// NewFailover dials primary and returns a ready store. A nil primary yields a
// fallback-only store.
func NewFailover(ctx context.Context, primary, fallback Backend, cfg FailoverConfig, ins instrument.Instrumentation) *Failover {
	def := DefaultFailoverConfig()
	if cfg.ConnectAttempts == 0 {
		cfg.ConnectAttempts = def.ConnectAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = def.PingTimeout
	}
	if cfg.MonitorInterval <= 0 {
		cfg.MonitorInterval = def.MonitorInterval
	}

	counter, err := ins.Meter("otp.outbound.store").Int64Counter("otp.store.failover",
		metric.WithDescription("Number of times the primary store was marked unhealthy"))
	if err != nil {
		counter = metricnoop.Int64Counter{}
	}

	f := &Failover{
		primary:   primary,
		fallback:  fallback,
		cfg:       cfg,
		healthy:   atomic.NewBool(false),
		disabled:  atomic.NewBool(primary == nil),
		failovers: counter,
	}

	if primary == nil {
		slog.WarnContext(ctx, "no primary store configured, using in-memory store", "backend", fallback.Name())
		return f
	}

	if err := f.connect(ctx); err != nil {
		f.disabled.Store(true)
		slog.WarnContext(ctx, "primary store unreachable, disabled for process lifetime",
			"backend", primary.Name(), "attempts", cfg.ConnectAttempts, "error", err)
		return f
	}

	f.healthy.Store(true)
	slog.InfoContext(ctx, "primary store connected", "backend", primary.Name())

	return f
}

func (f *Failover) connect(ctx context.Context) error {
	b := retry.NewExponential(f.cfg.BaseDelay)
	b = retry.WithCappedDuration(f.cfg.MaxDelay, b)
	b = retry.WithMaxRetries(f.cfg.ConnectAttempts-1, b)

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := f.ping(ctx, f.primary); err != nil {
			slog.WarnContext(ctx, "primary store ping failed", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (f *Failover) ping(ctx context.Context, b Backend) error {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.PingTimeout)
	defer cancel()

	return b.Ping(ctx)
}

func (f *Failover) usePrimary() bool {
	return !f.disabled.Load() && f.healthy.Load()
}

// Disabled reports whether the primary was given up for good.
func (f *Failover) Disabled() bool {
	return f.disabled.Load()
}

// Healthy reports whether operations currently go to the primary.
func (f *Failover) Healthy() bool {
	return f.usePrimary()
}

// Name returns the backend currently serving operations.
func (f *Failover) Name() entity.StoreBackend {
	if f.usePrimary() {
		return f.primary.Name()
	}
	return f.fallback.Name()
}

func (f *Failover) markUnhealthy(ctx context.Context, op string, err error) {
	if !f.healthy.CompareAndSwap(true, false) {
		return
	}

	f.failovers.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	slog.WarnContext(ctx, "primary store failed, switching to fallback",
		"op", op, "fallback", f.fallback.Name(), "error", err)
}

// isBackendFailure tells store outages apart from ordinary results.
func isBackendFailure(ctx context.Context, err error) bool {
	if errors.Is(err, goerror.ErrNotFound) {
		return false
	}
	return ctx.Err() == nil
}

func run[T any](ctx context.Context, f *Failover, op string, fn func(Backend) (T, error)) (T, error) {
	if f.usePrimary() {
		v, err := fn(f.primary)
		if err == nil || !isBackendFailure(ctx, err) {
			return v, err
		}
		f.markUnhealthy(ctx, op, err)
	}

	return fn(f.fallback)
}

func (f *Failover) Ping(ctx context.Context) error {
	_, err := run(ctx, f, "Ping", func(b Backend) (struct{}, error) {
		return struct{}{}, b.Ping(ctx)
	})
	return err
}

func (f *Failover) Save(ctx context.Context, rec entity.Record) error {
	_, err := run(ctx, f, "Save", func(b Backend) (struct{}, error) {
		return struct{}{}, b.Save(ctx, rec)
	})
	return err
}

func (f *Failover) Get(ctx context.Context, recipient string) (*entity.Lookup, error) {
	return run(ctx, f, "Get", func(b Backend) (*entity.Lookup, error) {
		return b.Get(ctx, recipient)
	})
}

func (f *Failover) Delete(ctx context.Context, recipient string) error {
	_, err := run(ctx, f, "Delete", func(b Backend) (struct{}, error) {
		return struct{}{}, b.Delete(ctx, recipient)
	})
	return err
}

func (f *Failover) IncrementSendAttempts(ctx context.Context, recipient string, window time.Duration) (int64, error) {
	return run(ctx, f, "IncrementSendAttempts", func(b Backend) (int64, error) {
		return b.IncrementSendAttempts(ctx, recipient, window)
	})
}

func (f *Failover) ResetSendAttempts(ctx context.Context, recipient string) error {
	_, err := run(ctx, f, "ResetSendAttempts", func(b Backend) (struct{}, error) {
		return struct{}{}, b.ResetSendAttempts(ctx, recipient)
	})
	return err
}

func (f *Failover) IncrementVerifyFailures(ctx context.Context, recipient string) (int64, error) {
	return run(ctx, f, "IncrementVerifyFailures", func(b Backend) (int64, error) {
		return b.IncrementVerifyFailures(ctx, recipient)
	})
}

// Monitor probes an unhealthy primary every MonitorInterval and switches back
// to it once a ping succeeds. It returns when ctx is done or the primary is disabled.
func (f *Failover) Monitor(ctx context.Context) error {
	if f.disabled.Load() {
		return nil
	}

	ticker := time.NewTicker(f.cfg.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			f.probe(ctx)
		}
	}
}

func (f *Failover) probe(ctx context.Context) {
	if f.disabled.Load() || f.healthy.Load() {
		return
	}

	if err := f.ping(ctx, f.primary); err != nil {
		slog.DebugContext(ctx, "primary store still unreachable", "error", err)
		return
	}

	if f.healthy.CompareAndSwap(false, true) {
		slog.InfoContext(ctx, "primary store recovered", "backend", f.primary.Name())
	}
}
