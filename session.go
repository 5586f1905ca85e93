package litebrite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Status reports backend availability and faults to the UI layer.
type Status struct {
	// Ready is true while a render context exists and no terminal error has
	// been recorded.
	Ready bool
	// Supported is false when the preferred GPU backend could not be
	// acquired and the session runs on the CPU fallback.
	Supported bool
	// Backend names the active backend ("kage", "cpu" or "sequential").
	Backend string
	// Reason explains an unsupported backend in human-readable form.
	Reason string
	// Err is the terminal error, if any.
	Err error
}

// renderContext aggregates everything a frame needs from the backend side.
// It is built completely before it is published and torn down as a unit, so
// the render path never observes a half-initialized backend.
type renderContext struct {
	backend   Backend
	supported bool
	reason    string
}

// newKageBackend is swapped by tests to simulate missing GPU support.
var newKageBackend = func(synth *Synthesizer, w, h int) (Backend, error) {
	return NewKageBackend(synth, w, h)
}

// Session is one running pegboard: the board, its layout and palette, the
// current draw color, the glow ramp and the optional render context.
//
// Input methods may be called from any goroutine. Render, Advance and the
// Ebitengine hooks are called from the presentation loop.
type Session struct {
	cfg       Config
	board     *Board
	layout    Layout
	palette   *Palette
	synth     *Synthesizer
	quantizer *Quantizer

	rc      atomic.Pointer[renderContext]
	started time.Time

	mu        sync.Mutex
	color     uint8
	pointers  [maxPointers]pointerState
	ramp      *GlowRamp
	supported bool
	reason    string
	err       error

	// Display size pointer coordinates are given in. Defaults to the
	// output size.
	displayW, displayH float64

	// Input plumbing for the Ebitengine loop.
	input       inputState
	injectQueue []syntheticPointerEvent
	testRunner  *TestRunner

	// Screenshots
	ScreenshotDir   string
	screenshotQueue []string

	stats frameStats
}

// NewSession builds a session from cfg. The board starts empty and the draw
// color is the first palette entry. Call Start to acquire a backend.
func NewSession(cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	if cfg.Palette.Len() == 0 {
		return nil, fmt.Errorf("litebrite: new session: %w", ErrInvalidPalette)
	}
	lay := cfg.Layout()
	synth := &Synthesizer{Layout: lay, Lighting: *cfg.Lighting, Palette: cfg.Palette}
	s := &Session{
		cfg:     cfg,
		board:   NewBoardLimit(cfg.Cols, cfg.Rows, cfg.Palette.Len()),
		layout:  lay,
		palette: cfg.Palette,
		synth:   synth,
		quantizer: &Quantizer{
			Layout:    lay,
			Palette:   cfg.Palette,
			Threshold: cfg.Threshold,
		},
		color:         1,
		ramp:          newSessionRamp(cfg),
		displayW:      float64(cfg.Width),
		displayH:      float64(cfg.Height),
		ScreenshotDir: cfg.ScreenshotDir,
	}
	return s, nil
}

func newSessionRamp(cfg Config) *GlowRamp {
	if cfg.NoGlowRamp {
		return NewGlowRampFunc(cfg.GlowCeiling, 0, nil)
	}
	return NewGlowRamp(cfg.GlowCeiling)
}

// --- Accessors ---

// Board returns the live board.
func (s *Session) Board() *Board { return s.board }

// Layout returns the peg layout.
func (s *Session) Layout() Layout { return s.layout }

// Palette returns the session palette.
func (s *Session) Palette() *Palette { return s.palette }

// Synthesizer returns the shared pixel synthesizer.
func (s *Session) Synthesizer() *Synthesizer { return s.synth }

// Size returns the output image size in pixels.
func (s *Session) Size() (width, height int) { return s.cfg.Width, s.cfg.Height }

// BoardState returns a read-only snapshot of the board.
func (s *Session) BoardState() BoardSnapshot { return s.board.Snapshot() }

// --- Lifecycle ---

// Start acquires the configured backend and publishes the render context.
// When the GPU backend is unavailable the session falls back to the CPU
// backend and reports Supported=false; Start only fails when no backend at
// all can be built or the session is already started.
func (s *Session) Start() error {
	if s.rc.Load() != nil {
		return fmt.Errorf("litebrite: start: already started")
	}
	s.mu.Lock()
	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		return fmt.Errorf("litebrite: start: %w", err)
	}
	s.mu.Unlock()

	rc, err := s.buildContext()
	if err != nil {
		return fmt.Errorf("litebrite: start: %w", err)
	}
	if !s.rc.CompareAndSwap(nil, rc) {
		_ = rc.backend.Close()
		return fmt.Errorf("litebrite: start: already started")
	}

	s.mu.Lock()
	s.supported = rc.supported
	s.reason = rc.reason
	s.started = time.Now()
	s.mu.Unlock()

	Logger().Info("session started",
		"backend", rc.backend.Name(),
		"supported", rc.supported,
		"board", fmt.Sprintf("%dx%d", s.layout.Cols, s.layout.Rows),
		"size", fmt.Sprintf("%dx%d", s.cfg.Width, s.cfg.Height))
	return nil
}

func (s *Session) buildContext() (*renderContext, error) {
	w, h := s.cfg.Width, s.cfg.Height
	switch s.cfg.Backend {
	case BackendCPU:
		return &renderContext{backend: NewCPUBackend(s.synth, w, h, s.cfg.Workers), supported: true}, nil
	case BackendSequential:
		return &renderContext{backend: NewCPUBackend(s.synth, w, h, 1), supported: true}, nil
	}

	b, err := newKageBackend(s.synth, w, h)
	if err == nil {
		return &renderContext{backend: b, supported: true}, nil
	}
	if !errors.Is(err, ErrBackendUnavailable) {
		return nil, err
	}
	fallback := NewCPUBackend(s.synth, w, h, s.cfg.Workers)
	Logger().Warn("gpu backend unavailable, using cpu fallback",
		"backend", fallback.Name(), "workers", fallback.Workers(), "err", err)
	return &renderContext{backend: fallback, supported: false, reason: err.Error()}, nil
}

// Close tears down the render context. It is safe to call more than once.
func (s *Session) Close() error {
	rc := s.rc.Swap(nil)
	if rc == nil {
		return nil
	}
	Logger().Info("session closed", "backend", rc.backend.Name())
	return rc.backend.Close()
}

// Backend returns the active backend, or nil when not started.
func (s *Session) Backend() Backend {
	if rc := s.rc.Load(); rc != nil {
		return rc.backend
	}
	return nil
}

// --- Status ---

// Status returns the current backend status.
func (s *Session) Status() Status {
	rc := s.rc.Load()
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Supported: s.supported,
		Reason:    s.reason,
		Err:       s.err,
	}
	if rc != nil {
		st.Backend = rc.backend.Name()
		st.Ready = s.err == nil
	}
	return st
}

// IsReady reports whether frames can be rendered.
func (s *Session) IsReady() bool { return s.Status().Ready }

// IsSupported reports whether the preferred backend was acquired.
func (s *Session) IsSupported() bool { return s.Status().Supported }

// Err returns the terminal error, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// fail records a terminal error and drops the render context.
func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	if rc := s.rc.Swap(nil); rc != nil {
		_ = rc.backend.Close()
	}
	Logger().Error("render backend lost", "err", err)
}

// --- Frames ---

// Advance moves the glow ramp forward by dt seconds.
func (s *Session) Advance(dt float64) {
	s.mu.Lock()
	s.ramp.Update(float32(dt))
	s.mu.Unlock()
}

// Frame assembles the board snapshot and render parameters for time now.
func (s *Session) Frame(now time.Time) Frame {
	s.mu.Lock()
	glow := s.ramp.Value()
	started := s.started
	s.mu.Unlock()

	var t float64
	if !started.IsZero() {
		t = now.Sub(started).Seconds()
	}
	return Frame{
		Board: s.board.Snapshot(),
		Params: RenderParams{
			PixelWidth:        s.cfg.Width,
			PixelHeight:       s.cfg.Height,
			Time:              t,
			GlowIntensity:     glow,
			AmbientBrightness: s.cfg.AmbientBrightness,
			PegBrightness:     s.cfg.PegBrightness,
		},
	}
}

// Render synthesizes one frame on the active backend. It returns
// ErrNotStarted when no render context exists. A lost backend is recorded
// as the session's terminal error.
func (s *Session) Render(now time.Time) error {
	rc := s.rc.Load()
	if rc == nil {
		return ErrNotStarted
	}
	f := s.Frame(now)
	t0 := time.Now()
	err := rc.backend.Render(f)
	s.stats.record(time.Since(t0), err)
	if err != nil {
		if errors.Is(err, ErrBackendLost) {
			s.fail(err)
		}
		return err
	}
	s.stats.maybeLog(rc.backend.Name())
	return nil
}

// --- Inputs ---

// SelectColor sets the draw color. Index 0 selects the eraser. Out-of-range
// indices are ignored and report false.
func (s *Session) SelectColor(index int) bool {
	if index < 0 || index > s.palette.Len() {
		return false
	}
	s.mu.Lock()
	s.color = uint8(index)
	s.mu.Unlock()
	return true
}

// Color returns the current draw color index.
func (s *Session) Color() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.color)
}

// SetDisplaySize sets the size pointer coordinates are measured in.
func (s *Session) SetDisplaySize(width, height float64) {
	s.mu.Lock()
	s.displayW, s.displayH = width, height
	s.mu.Unlock()
}

// PointerDown starts drawing at display position (x, y) with the left
// button.
func (s *Session) PointerDown(x, y float64) {
	s.pointerEvent(0, x, y, true, MouseButtonLeft)
}

// PointerDownButton is PointerDown for a specific button. The right button
// erases.
func (s *Session) PointerDownButton(x, y float64, button MouseButton) {
	s.pointerEvent(0, x, y, true, button)
}

// PointerMove paints at (x, y) while the pointer is down and is ignored
// otherwise.
func (s *Session) PointerMove(x, y float64) {
	s.mu.Lock()
	down := s.pointers[0].down
	button := s.pointers[0].button
	s.mu.Unlock()
	if down {
		s.pointerEvent(0, x, y, true, button)
	}
}

// PointerUp ends the current stroke.
func (s *Session) PointerUp() {
	s.mu.Lock()
	s.pointers[0] = pointerState{}
	s.mu.Unlock()
}

// UploadImage quantizes the image read from r and replaces the board with
// the result. On any failure the board is left untouched.
func (s *Session) UploadImage(ctx context.Context, r io.Reader) error {
	select {
	case res := <-s.quantizer.QuantizeAsync(ctx, r):
		if res.Err != nil {
			Logger().Error("image upload rejected", "err", res.Err)
			return fmt.Errorf("litebrite: upload image: %w", res.Err)
		}
		if !s.board.SetBoard(res.Cells) {
			return fmt.Errorf("litebrite: upload image: %w: %d cells for %dx%d board",
				ErrCanvas, len(res.Cells), s.board.Width(), s.board.Height())
		}
		Logger().Info("image applied", "cells", len(res.Cells))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("litebrite: upload image: %w", ctx.Err())
	}
}

// UploadImageAsync runs UploadImage in the background. The returned channel
// receives the outcome once and is closed.
func (s *Session) UploadImageAsync(ctx context.Context, r io.Reader) <-chan error {
	out := make(chan error, 1)
	go func() {
		defer close(out)
		out <- s.UploadImage(ctx, r)
	}()
	return out
}

// UploadImageBytes is UploadImageAsync for an in-memory image.
func (s *Session) UploadImageBytes(ctx context.Context, data []byte) <-chan error {
	return s.UploadImageAsync(ctx, bytes.NewReader(data))
}

// RequestClear empties every cell.
func (s *Session) RequestClear() {
	s.board.Clear()
	Logger().Debug("board cleared")
}
