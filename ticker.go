package tick

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Option configures a Ticker.
type Option func(*Ticker)

// WithTimeProvider replaces the standard time package.
func WithTimeProvider(t TimeProvider) Option {
	return func(tk *Ticker) { tk.provider = t }
}

func WithLogger(l zerolog.Logger) Option {
	return func(tk *Ticker) { tk.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(tk *Ticker) { tk.metrics = m }
}

// Ticker invokes every action of a registry once per interval.
// Each cycle sleeps first and then works, so the actual period
// is the interval plus the time the actions take.
type Ticker struct {
	registry  *Registry
	interval  Duration
	provider  TimeProvider
	logger    zerolog.Logger
	metrics   *Metrics
	interrupt chan struct{}
	ticks     atomic.Uint64
}

// NewTicker creates a ticker replaying r.
// If interval < 1 then DefaultInterval is used.
func NewTicker(r *Registry, interval Duration, opts ...Option) *Ticker {
	if interval < 1 {
		interval = DefaultInterval
	}
	t := &Ticker{
		registry:  r,
		interval:  interval,
		provider:  timeProvider{},
		logger:    zerolog.Nop(),
		interrupt: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Interval returns the sleep duration between two ticks.
func (t *Ticker) Interval() Duration { return t.interval }

// Ticks returns the number of completed ticks.
func (t *Ticker) Ticks() uint64 { return t.ticks.Load() }

// Interrupt cuts the current or next wait short.
// At most one interrupt is kept pending, further calls are no-ops
// until it's consumed by Wait.
func (t *Ticker) Interrupt() {
	select {
	case t.interrupt <- struct{}{}:
	default:
	}
}

// Wait blocks until the next tick is due.
// Returns ErrInterrupted if Interrupt was called before the interval
// elapsed, or ctx.Err() if ctx is done first.
func (t *Ticker) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	elapsed := make(chan struct{})
	timer := t.provider.AfterFunc(t.interval, func() { close(elapsed) })

	select {
	case <-elapsed:
		return nil
	case <-t.interrupt:
		timer.Stop()
		return ErrInterrupted
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	}
}

// Tick invokes every registered action once in registration order.
// Failing actions are logged and don't affect the others.
// Returns all failures joined.
func (t *Ticker) Tick() error {
	start := t.provider.Now()
	failures := t.registry.run()
	took := t.provider.Now().Sub(start)
	n := t.ticks.Add(1)

	errs := make([]error, len(failures))
	for i, f := range failures {
		errs[i] = f
		t.logger.Error().
			Err(f.Err).
			Str("action", f.ID.String()).
			Uint64("tick", n).
			Msg("action failed")
	}

	registered := t.registry.Len()
	t.metrics.observeTick(took, registered, len(failures))
	t.logger.Trace().
		Uint64("tick", n).
		Int("actions", registered).
		Int("failed", len(failures)).
		Dur("took", took).
		Msg("tick")

	return errors.Join(errs...)
}

// Run alternates between Wait and Tick until ctx is done.
// An interrupted wait is logged and the tick still runs.
// Action failures never stop the loop.
// Returns nil once ctx is done.
func (t *Ticker) Run(ctx context.Context) error {
	t.logger.Info().
		Dur("interval", t.interval).
		Int("actions", t.registry.Len()).
		Msg("ticker started")

	for {
		switch err := t.Wait(ctx); {
		case err == nil:
		case errors.Is(err, ErrInterrupted):
			t.metrics.interrupted()
			t.logger.Warn().Err(err).Uint64("tick", t.Ticks()+1).Msg("sleep interrupted")
		default:
			t.logger.Info().
				AnErr("reason", err).
				Uint64("ticks", t.Ticks()).
				Msg("ticker stopped")
			return nil
		}
		_ = t.Tick()
	}
}
