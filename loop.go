package litebrite

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"
)

// Presenter receives every frame rendered by a Loop. The image is reused by
// the next frame; implementations must copy what they keep.
type Presenter interface {
	Present(img *image.RGBA) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(img *image.RGBA) error

// Present calls f(img).
func (f PresenterFunc) Present(img *image.RGBA) error { return f(img) }

// DefaultInterval is the headless frame cadence.
const DefaultInterval = time.Second / 60

// Loop drives a session without a window: every tick it advances scripted
// input and the glow ramp, renders on a CPU backend and hands the frame to
// a Presenter. It owns its cancellation and Stop waits for the goroutine.
type Loop struct {
	session   *Session
	presenter Presenter
	interval  time.Duration
	// MaxFrames stops the loop after that many presented frames. Zero means
	// no limit.
	MaxFrames int

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	frames  atomic.Int64
	skipped atomic.Int64
	last    time.Time
	warned  bool
}

// NewLoop creates a loop presenting s to p every interval. A non-positive
// interval means DefaultInterval.
func NewLoop(s *Session, p Presenter, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{session: s, presenter: p, interval: interval}
}

// Start launches the loop goroutine. It fails if the loop is running or the
// session's backend does not render into CPU memory.
func (l *Loop) Start(ctx context.Context) error {
	if b := l.session.Backend(); b != nil {
		if _, ok := b.(ImageBackend); !ok {
			return fmt.Errorf("litebrite: loop: %w: %s backend has no cpu image, use BackendCPU or BackendSequential",
				ErrBackendUnavailable, b.Name())
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return fmt.Errorf("litebrite: loop already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	l.err = nil
	go l.run(ctx, l.done)
	return nil
}

// Stop cancels the loop and waits for it to exit. Safe to call when the
// loop is not running.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed when the loop goroutine exits. Nil before Start.
func (l *Loop) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

// Err returns the error that stopped the loop, if any.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Frames returns the number of presented frames.
func (l *Loop) Frames() int { return int(l.frames.Load()) }

// Skipped returns the number of ticks skipped because no frame could be
// rendered.
func (l *Loop) Skipped() int { return int(l.skipped.Load()) }

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer func() {
		l.mu.Lock()
		l.cancel()
		l.cancel = nil
		l.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := l.Step(now); err != nil {
				l.mu.Lock()
				l.err = err
				l.mu.Unlock()
				return
			}
			if l.MaxFrames > 0 && l.Frames() >= l.MaxFrames {
				return
			}
		}
	}
}

// Step runs one tick at time now. It returns an error only when the loop
// must stop: the backend was lost. Every other failure is logged and the
// next tick retries.
func (l *Loop) Step(now time.Time) error {
	s := l.session
	dt := l.interval.Seconds()
	if !l.last.IsZero() {
		dt = now.Sub(l.last).Seconds()
	}
	l.last = now

	s.stepTestRunner()
	s.processInjectedInput()
	s.Advance(dt)

	b, ok := s.Backend().(ImageBackend)
	if !ok {
		if s.Backend() != nil && !l.warned {
			l.warned = true
			Logger().Warn("loop needs a cpu backend, skipping frames", "backend", s.Backend().Name())
		}
		l.skipped.Add(1)
		return nil
	}

	if err := s.Render(now); err != nil {
		switch {
		case errors.Is(err, ErrNotStarted):
		case errors.Is(err, ErrBackendLost):
			return err
		default:
			Logger().Warn("frame failed", "err", err)
		}
		l.skipped.Add(1)
		return nil
	}

	img := b.Image()
	if l.presenter != nil {
		if err := l.presenter.Present(img); err != nil {
			Logger().Warn("present failed", "err", err)
		}
	}
	s.flushScreenshots(img)
	l.frames.Add(1)
	return nil
}
