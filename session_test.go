package litebrite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"testing"
	"time"
)

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	if cfg.Backend == BackendAuto {
		cfg.Backend = BackendCPU
	}
	s, err := NewSession(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// lostBackend fails every frame as if the device went away.
type lostBackend struct{ closed bool }

func (b *lostBackend) Name() string { return "lost" }
func (b *lostBackend) Render(Frame) error {
	return fmt.Errorf("%w: device removed", ErrBackendLost)
}
func (b *lostBackend) Close() error { b.closed = true; return nil }

func TestSessionDefaults(t *testing.T) {
	s := newTestSession(t, Config{})
	if w, h := s.Board().Width(), s.Board().Height(); w != 32 || h != 24 {
		t.Errorf("board = %dx%d, want 32x24", w, h)
	}
	if w, h := s.Size(); w != 1280 || h != 960 {
		t.Errorf("Size = %dx%d, want 1280x960", w, h)
	}
	if !s.Layout().Staggered {
		t.Error("Staggered = false, want true")
	}
	if s.Color() != 1 {
		t.Errorf("Color = %d, want 1", s.Color())
	}
	if s.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q, want screenshots", s.ScreenshotDir)
	}
}

func TestSessionSetAndClear(t *testing.T) {
	s := newTestSession(t, Config{})
	s.Board().SetPixel(0, 0, 1)
	if got := s.BoardState().At(0, 0); got != 1 {
		t.Fatalf("(0,0) = %d, want 1", got)
	}
	s.RequestClear()
	if got := s.BoardState().At(0, 0); got != 0 {
		t.Errorf("(0,0) after clear = %d, want 0", got)
	}
}

func TestSessionSingleCell(t *testing.T) {
	s := newTestSession(t, Config{})
	s.Board().SetPixel(5, 5, 3)
	snap := s.BoardState()
	for i, c := range snap.Cells {
		want := uint8(0)
		if i == 5*32+5 {
			want = 3
		}
		if c != want {
			t.Fatalf("cell %d = %d, want %d", i, c, want)
		}
	}
}

func TestSessionPointerPaints(t *testing.T) {
	s := newTestSession(t, Config{})
	s.SelectColor(4)
	c := s.Layout().CellCenter(Cell{3, 2})
	s.PointerDown(c.X, c.Y)
	if got := s.Board().Get(3, 2); got != 4 {
		t.Errorf("after PointerDown (3,2) = %d, want 4", got)
	}

	c2 := s.Layout().CellCenter(Cell{4, 2})
	s.PointerMove(c2.X, c2.Y)
	if got := s.Board().Get(4, 2); got != 4 {
		t.Errorf("after PointerMove (4,2) = %d, want 4", got)
	}

	s.PointerUp()
	c3 := s.Layout().CellCenter(Cell{5, 2})
	s.PointerMove(c3.X, c3.Y)
	if got := s.Board().Get(5, 2); got != 0 {
		t.Errorf("move after PointerUp painted (5,2) = %d, want 0", got)
	}
}

func TestSessionPointerDisplayScaling(t *testing.T) {
	s := newTestSession(t, Config{})
	s.SetDisplaySize(640, 480)
	// Canvas center of cell (0,0) is (20,20); on a half-size display (10,10).
	s.PointerDown(10, 10)
	s.PointerUp()
	if got := s.Board().Get(0, 0); got != 1 {
		t.Errorf("(0,0) = %d, want 1", got)
	}
}

func TestSessionRightButtonErases(t *testing.T) {
	s := newTestSession(t, Config{})
	s.Board().SetPixel(2, 2, 6)
	c := s.Layout().CellCenter(Cell{2, 2})
	s.PointerDownButton(c.X, c.Y, MouseButtonRight)
	s.PointerUp()
	if got := s.Board().Get(2, 2); got != 0 {
		t.Errorf("(2,2) = %d after right click, want 0", got)
	}
	if s.Color() != 1 {
		t.Errorf("Color = %d after erase, want 1 unchanged", s.Color())
	}
}

func TestSessionPointerOffBoard(t *testing.T) {
	s := newTestSession(t, Config{})
	v := s.Board().Version()
	s.PointerDown(-500, -500)
	s.PointerUp()
	if s.Board().Version() != v {
		t.Error("off-board pointer changed the board")
	}
}

func TestSessionSelectColor(t *testing.T) {
	s := newTestSession(t, Config{})
	tests := []struct {
		index int
		ok    bool
		want  int
	}{
		{3, true, 3},
		{0, true, 0},
		{8, true, 8},
		{9, false, 8},
		{-1, false, 8},
	}
	for _, tt := range tests {
		if ok := s.SelectColor(tt.index); ok != tt.ok {
			t.Errorf("SelectColor(%d) = %v, want %v", tt.index, ok, tt.ok)
		}
		if s.Color() != tt.want {
			t.Errorf("after SelectColor(%d) Color = %d, want %d", tt.index, s.Color(), tt.want)
		}
	}
}

func TestSessionUploadImage(t *testing.T) {
	s := newTestSession(t, Config{})
	blue, _ := s.Palette().Entry(5)
	data := encodePNG(t, solidImage(64, 48, blue.RGB))
	if err := s.UploadImage(context.Background(), bytes.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	for i, c := range s.BoardState().Cells {
		if c != 5 {
			t.Fatalf("cell %d = %d, want 5", i, c)
		}
	}
}

func TestSessionUploadFailureLeavesBoard(t *testing.T) {
	s := newTestSession(t, Config{})
	s.Board().SetPixel(1, 1, 2)
	before := s.BoardState()

	err := <-s.UploadImageAsync(context.Background(), strings.NewReader("garbage"))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
	after := s.BoardState()
	if after.Version != before.Version || !bytes.Equal(after.Cells, before.Cells) {
		t.Error("failed upload modified the board")
	}
}

func TestSessionUploadImageBytes(t *testing.T) {
	s := newTestSession(t, Config{})
	data := encodePNG(t, solidImage(4, 3, color.RGBA{0, 0, 0, 255}))
	s.Board().SetPixel(0, 0, 1)
	if err := <-s.UploadImageBytes(context.Background(), data); err != nil {
		t.Fatal(err)
	}
	if got := s.Board().Get(0, 0); got != 0 {
		t.Errorf("(0,0) = %d after black upload, want 0", got)
	}
}

func TestSessionStatusLifecycle(t *testing.T) {
	s := newTestSession(t, Config{Cols: 4, Rows: 4, Spacing: 10})
	if st := s.Status(); st.Ready || st.Backend != "" {
		t.Errorf("before Start: %+v, want not ready", st)
	}
	if err := s.Render(time.Now()); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Render before Start err = %v, want ErrNotStarted", err)
	}

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	st := s.Status()
	if !st.Ready || !st.Supported || st.Backend != "cpu" || st.Err != nil {
		t.Errorf("after Start: %+v, want ready supported cpu", st)
	}
	if err := s.Start(); err == nil {
		t.Error("second Start succeeded, want error")
	}
	if err := s.Render(time.Now()); err != nil {
		t.Errorf("Render: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if s.IsReady() {
		t.Error("ready after Close")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestSessionSequentialBackend(t *testing.T) {
	s := newTestSession(t, Config{Cols: 4, Rows: 4, Spacing: 10, Backend: BackendSequential})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if got := s.Status().Backend; got != "sequential" {
		t.Errorf("Backend = %q, want sequential", got)
	}
}

func TestSessionGPUFallback(t *testing.T) {
	orig := newKageBackend
	newKageBackend = func(*Synthesizer, int, int) (Backend, error) {
		return nil, fmt.Errorf("%w: no adapter", ErrBackendUnavailable)
	}
	t.Cleanup(func() { newKageBackend = orig })

	for _, kind := range []BackendKind{BackendAuto, BackendKage} {
		s, err := NewSession(Config{Cols: 4, Rows: 4, Spacing: 10, Backend: kind, Workers: 3})
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Start(); err != nil {
			t.Fatalf("%v: Start: %v", kind, err)
		}
		st := s.Status()
		if !st.Ready || st.Supported || st.Backend != "cpu" || !strings.Contains(st.Reason, "no adapter") {
			t.Errorf("%v: status = %+v, want ready, unsupported, cpu, reason", kind, st)
		}
		if err := s.Render(time.Now()); err != nil {
			t.Errorf("%v: Render on fallback: %v", kind, err)
		}
		_ = s.Close()
	}
}

func TestSessionBackendLost(t *testing.T) {
	s := newTestSession(t, Config{Cols: 4, Rows: 4, Spacing: 10})
	lost := &lostBackend{}
	s.rc.Store(&renderContext{backend: lost, supported: true})

	err := s.Render(time.Now())
	if !errors.Is(err, ErrBackendLost) {
		t.Fatalf("Render err = %v, want ErrBackendLost", err)
	}
	if !lost.closed {
		t.Error("lost backend not closed")
	}
	st := s.Status()
	if st.Ready || !errors.Is(st.Err, ErrBackendLost) {
		t.Errorf("status = %+v, want not ready with ErrBackendLost", st)
	}
	if err := s.Start(); !errors.Is(err, ErrBackendLost) {
		t.Errorf("Start after loss err = %v, want ErrBackendLost", err)
	}
}

func TestSessionFrameParams(t *testing.T) {
	s := newTestSession(t, Config{Cols: 4, Rows: 4, Spacing: 10, GlowCeiling: 0.5, PegBrightness: 2})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	f0 := s.Frame(time.Now())
	if f0.Params.GlowIntensity != 0 {
		t.Errorf("initial glow = %v, want 0", f0.Params.GlowIntensity)
	}
	s.Advance(2)
	f := s.Frame(time.Now().Add(3 * time.Second))
	if f.Params.GlowIntensity != 0.5 {
		t.Errorf("glow after ramp = %v, want 0.5", f.Params.GlowIntensity)
	}
	if f.Params.Time < 3 {
		t.Errorf("Time = %v, want >= 3", f.Params.Time)
	}
	if f.Params.PixelWidth != 40 || f.Params.PixelHeight != 40 {
		t.Errorf("pixel size = %dx%d, want 40x40", f.Params.PixelWidth, f.Params.PixelHeight)
	}
	if f.Params.PegBrightness != 2 || f.Params.AmbientBrightness != 1 {
		t.Errorf("brightness = %v/%v, want 2/1", f.Params.PegBrightness, f.Params.AmbientBrightness)
	}
}

func TestSessionNoGlowRamp(t *testing.T) {
	s := newTestSession(t, Config{Cols: 2, Rows: 2, NoGlowRamp: true})
	if got := s.Frame(time.Now()).Params.GlowIntensity; got != 1 {
		t.Errorf("glow = %v, want 1", got)
	}
}

func TestSessionBoardLimitedToPalette(t *testing.T) {
	s := newTestSession(t, Config{})
	s.Board().SetPixel(0, 0, 9)
	if got := s.Board().Get(0, 0); got != 0 {
		t.Errorf("(0,0) = %d after writing past the 8 color palette, want 0", got)
	}
	if got := s.Board().MaxIndex(); got != 8 {
		t.Errorf("MaxIndex = %d, want 8", got)
	}
}

func TestSessionCustomOutputSize(t *testing.T) {
	s := newTestSession(t, Config{Width: 640, Height: 480})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	img := s.Backend().(ImageBackend).Image()
	if err := s.Render(time.Now()); err != nil {
		t.Fatal(err)
	}
	before := img.RGBAAt(630, 450)

	// The last column's peg is drawn at (630, 450); a click there paints it.
	s.PointerDown(630.5, 450.5)
	s.PointerUp()
	if got := s.Board().Get(31, 22); got != 1 {
		t.Fatalf("(31,22) = %d after clicking its drawn position, want 1", got)
	}
	s.Advance(2)
	if err := s.Render(time.Now()); err != nil {
		t.Fatal(err)
	}
	after := img.RGBAAt(630, 450)
	if int(after.R) <= int(before.R)+50 {
		t.Errorf("pixel under the new peg R = %d, was %d; want it lit", after.R, before.R)
	}
}
