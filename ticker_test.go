package tick_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/romshark/tick"
	"github.com/romshark/tick/internal/mock"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNewTickerDefaultInterval(t *testing.T) {
	tk := tick.NewTicker(tick.NewRegistry(), 0)
	require.Equal(t, tick.DefaultInterval, tk.Interval())
	require.Zero(t, tk.Ticks())
}

func TestWaitElapsed(t *testing.T) {
	mc := gomock.NewController(t)
	tm := mock.NewMockTimeProvider(mc)
	timer := mock.NewMockTimer(mc)

	tm.EXPECT().
		AfterFunc(100*tick.Millisecond, gomock.Any()).
		Times(1).
		DoAndReturn(func(_ tick.Duration, fn func()) tick.Timer {
			// Fire immediately instead of sleeping.
			fn()
			return timer
		})

	tk := tick.NewTicker(tick.NewRegistry(), 100*tick.Millisecond,
		tick.WithTimeProvider(tm))
	require.NoError(t, tk.Wait(context.Background()))
}

func TestWaitInterrupted(t *testing.T) {
	mc := gomock.NewController(t)
	tm := mock.NewMockTimeProvider(mc)
	timer := mock.NewMockTimer(mc)

	tm.EXPECT().
		AfterFunc(tick.Second, gomock.Any()).
		Times(1).
		Return(timer)
	timer.EXPECT().
		Stop().
		Times(1).
		Return(true)

	tk := tick.NewTicker(tick.NewRegistry(), tick.Second,
		tick.WithTimeProvider(tm))
	tk.Interrupt()
	require.ErrorIs(t, tk.Wait(context.Background()), tick.ErrInterrupted)
}

func TestInterruptKeepsOnePending(t *testing.T) {
	mc := gomock.NewController(t)
	tm := mock.NewMockTimeProvider(mc)
	timer := mock.NewMockTimer(mc)

	// First wait: interrupted, the timer never fires.
	tm.EXPECT().
		AfterFunc(tick.Second, gomock.Any()).
		Times(1).
		Return(timer)
	timer.EXPECT().
		Stop().
		Times(1).
		Return(true)

	tk := tick.NewTicker(tick.NewRegistry(), tick.Second,
		tick.WithTimeProvider(tm))
	tk.Interrupt()
	tk.Interrupt()
	tk.Interrupt()
	require.ErrorIs(t, tk.Wait(context.Background()), tick.ErrInterrupted)

	// Second wait: elapses since no interrupt is left pending.
	tm.EXPECT().
		AfterFunc(tick.Second, gomock.Any()).
		Times(1).
		DoAndReturn(func(_ tick.Duration, fn func()) tick.Timer {
			fn()
			return timer
		})
	require.NoError(t, tk.Wait(context.Background()))
}

func TestWaitCanceled(t *testing.T) {
	mc := gomock.NewController(t)
	tm := mock.NewMockTimeProvider(mc)
	timer := mock.NewMockTimer(mc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.EXPECT().
		AfterFunc(tick.Second, gomock.Any()).
		Times(1).
		DoAndReturn(func(tick.Duration, func()) tick.Timer {
			cancel()
			return timer
		})
	timer.EXPECT().
		Stop().
		Times(1).
		Return(true)

	tk := tick.NewTicker(tick.NewRegistry(), tick.Second,
		tick.WithTimeProvider(tm))
	require.ErrorIs(t, tk.Wait(ctx), context.Canceled)
}

func TestWaitAlreadyCanceled(t *testing.T) {
	mc := gomock.NewController(t)
	tm := mock.NewMockTimeProvider(mc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tk := tick.NewTicker(tick.NewRegistry(), tick.Second,
		tick.WithTimeProvider(tm))
	require.ErrorIs(t, tk.Wait(ctx), context.Canceled)
}

func TestTick(t *testing.T) {
	mc := gomock.NewController(t)
	tm := mock.NewMockTimeProvider(mc)

	start := time.Date(2021, 6, 20, 10, 00, 00, 0, time.UTC)
	tm.EXPECT().Now().AnyTimes().Return(start)

	var out bytes.Buffer
	r := tick.NewRegistryWith(tm, nil)
	_, err := r.Register(tick.NewPrintPair(tick.NewPair(1, 2), "", &out))
	require.NoError(t, err)

	m := tick.NewMetrics(prometheus.NewRegistry())
	tk := tick.NewTicker(r, tick.Second,
		tick.WithTimeProvider(tm),
		tick.WithMetrics(m))

	require.NoError(t, tk.Tick())
	require.NoError(t, tk.Tick())

	require.Equal(t, "(1, 2)\nHalo1\n(1, 2)\nHalo1\n", out.String())
	require.Equal(t, uint64(2), tk.Ticks())
	require.Equal(t, float64(2), testutil.ToFloat64(m.Ticks))
	require.Equal(t, float64(1), testutil.ToFloat64(m.RegisteredActions))
	require.Zero(t, testutil.ToFloat64(m.ActionFailures))
}

func TestTickLogsFailures(t *testing.T) {
	errBoom := errors.New("boom")

	r := tick.NewRegistry()
	id, err := r.Register(tick.ActionFunc(func() error { return errBoom }))
	require.NoError(t, err)

	var logs bytes.Buffer
	m := tick.NewMetrics(prometheus.NewRegistry())
	tk := tick.NewTicker(r, tick.Second,
		tick.WithLogger(zerolog.New(&logs)),
		tick.WithMetrics(m))

	require.ErrorIs(t, tk.Tick(), errBoom)
	require.Contains(t, logs.String(), `"message":"action failed"`)
	require.Contains(t, logs.String(), id.String())
	require.Equal(t, float64(1), testutil.ToFloat64(m.ActionFailures))
}

func TestRunTicksUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := tick.NewRegistry()
	var order []int
	_, err := r.Register(tick.Do(func() { order = append(order, 1) }))
	require.NoError(t, err)
	_, err = r.Register(tick.Do(func() {
		order = append(order, 2)
		if len(order) == 6 {
			cancel()
		}
	}))
	require.NoError(t, err)

	tk := tick.NewTicker(r, tick.Millisecond)
	require.NoError(t, tk.Run(ctx))

	require.Equal(t, uint64(3), tk.Ticks())
	require.Equal(t, []int{1, 2, 1, 2, 1, 2}, order)
}

func TestRunInterruptDoesNotStopLoop(t *testing.T) {
	mc := gomock.NewController(t)
	tm := mock.NewMockTimeProvider(mc)
	timer := mock.NewMockTimer(mc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The timer never fires, only interrupts end a wait.
	tm.EXPECT().Now().AnyTimes().Return(time.Now())
	tm.EXPECT().AfterFunc(tick.Hour, gomock.Any()).Times(3).Return(timer)
	timer.EXPECT().Stop().Times(3).Return(true)

	var tk *tick.Ticker
	count := 0
	r := tick.NewRegistry()
	_, err := r.Register(tick.Do(func() {
		count++
		if count < 3 {
			tk.Interrupt()
			return
		}
		cancel()
	}))
	require.NoError(t, err)

	var logs bytes.Buffer
	m := tick.NewMetrics(prometheus.NewRegistry())
	tk = tick.NewTicker(r, tick.Hour,
		tick.WithTimeProvider(tm),
		tick.WithLogger(zerolog.New(&logs)),
		tick.WithMetrics(m))

	tk.Interrupt()
	require.NoError(t, tk.Run(ctx))

	require.Equal(t, 3, count)
	require.Equal(t, uint64(3), tk.Ticks())
	require.Equal(t, float64(3), testutil.ToFloat64(m.Interrupts))
	require.Contains(t, logs.String(), "sleep interrupted")
	require.Contains(t, logs.String(), "ticker stopped")
}

func TestRunFailingActionDoesNotStopLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := tick.NewRegistry()
	_, err := r.Register(tick.Do(func() { panic("always") }))
	require.NoError(t, err)

	count := 0
	_, err = r.Register(tick.Do(func() {
		count++
		if count == 2 {
			cancel()
		}
	}))
	require.NoError(t, err)

	m := tick.NewMetrics(prometheus.NewRegistry())
	tk := tick.NewTicker(r, tick.Millisecond, tick.WithMetrics(m))
	require.NoError(t, tk.Run(ctx))

	require.Equal(t, 2, count)
	require.Equal(t, float64(2), testutil.ToFloat64(m.ActionFailures))
}
