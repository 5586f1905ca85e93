package litebrite

import (
	"bytes"
	"errors"
	"regexp"
	"testing"
)

func rainbowBoard(cols, rows, n int) *Board {
	b := NewBoard(cols, rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if (col*7+row*3)%4 != 0 {
				b.SetPixel(col, row, uint8((col+row)%n+1))
			}
		}
	}
	return b
}

func TestCPUBackendsIdentical(t *testing.T) {
	sizes := []struct {
		cols, rows int
		spacing    float64
	}{
		{32, 24, 10},
		{7, 5, 13},
		{3, 9, 21},
	}
	for _, sz := range sizes {
		s := newTestSynth(sz.cols, sz.rows, sz.spacing)
		w, h := s.Layout.CanvasSize()
		board := rainbowBoard(sz.cols, sz.rows, s.Palette.Len())
		f := testFrame(board, w, h, 3.7)
		f.Params.GlowIntensity = 0.8

		seq := NewCPUBackend(s, w, h, 1)
		if err := seq.Render(f); err != nil {
			t.Fatal(err)
		}
		for _, workers := range []int{2, 3, 8, 64} {
			par := NewCPUBackend(s, w, h, workers)
			if err := par.Render(f); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(seq.Image().Pix, par.Image().Pix) {
				t.Errorf("%dx%d board, %d workers: parallel output differs from sequential", sz.cols, sz.rows, workers)
			}
		}
	}
}

func TestCPUBackendMatchesSynthesize(t *testing.T) {
	s := newTestSynth(8, 6, 16)
	board := rainbowBoard(8, 6, s.Palette.Len())
	f := testFrame(board, 128, 96, 0.3)

	b := NewCPUBackend(s, 128, 96, 0)
	if err := b.Render(f); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b.Image().Pix, render(s, f).Pix) {
		t.Error("backend output differs from Synthesize")
	}
}

func TestCPUBackendTracksBoardVersion(t *testing.T) {
	s := newTestSynth(4, 4, 20)
	board := NewBoard(4, 4)
	b := NewCPUBackend(s, 80, 80, 2)
	if err := b.Render(testFrame(board, 80, 80, 0)); err != nil {
		t.Fatal(err)
	}
	emptyPix := bytes.Clone(b.Image().Pix)

	board.SetPixel(1, 1, 3)
	if err := b.Render(testFrame(board, 80, 80, 0)); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(emptyPix, b.Image().Pix) {
		t.Error("frame unchanged after the board changed")
	}
}

func TestCPUBackendName(t *testing.T) {
	s := newTestSynth(2, 2, 10)
	tests := []struct {
		workers int
		want    string
	}{
		{1, "sequential"},
		{4, "cpu"},
	}
	for _, tt := range tests {
		if got := NewCPUBackend(s, 20, 20, tt.workers).Name(); got != tt.want {
			t.Errorf("Name with %d workers = %q, want %q", tt.workers, got, tt.want)
		}
	}
	if w := NewCPUBackend(s, 20, 20, 0).Workers(); w < 1 {
		t.Errorf("Workers with 0 = %d, want GOMAXPROCS", w)
	}
}

func TestCPUBackendClosed(t *testing.T) {
	s := newTestSynth(2, 2, 10)
	b := NewCPUBackend(s, 20, 20, 1)
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	err := b.Render(testFrame(NewBoard(2, 2), 20, 20, 0))
	if !errors.Is(err, ErrBackendLost) {
		t.Errorf("Render after Close err = %v, want ErrBackendLost", err)
	}
}

func TestParseBackendKind(t *testing.T) {
	tests := []struct {
		in   string
		want BackendKind
		ok   bool
	}{
		{"", BackendAuto, true},
		{"auto", BackendAuto, true},
		{"kage", BackendKage, true},
		{"gpu", BackendKage, true},
		{"cpu", BackendCPU, true},
		{"sequential", BackendSequential, true},
		{"vulkan", BackendAuto, false},
	}
	for _, tt := range tests {
		got, ok := ParseBackendKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseBackendKind(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	for _, k := range []BackendKind{BackendAuto, BackendKage, BackendCPU, BackendSequential} {
		if got, _ := ParseBackendKind(k.String()); got != k {
			t.Errorf("ParseBackendKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
}

func TestShaderUniformsCoverSource(t *testing.T) {
	s := newTestSynth(4, 3, 40)
	f := testFrame(NewBoard(4, 3), 80, 120, 1)
	u := map[string]any{}
	s.shaderUniforms(u, f)

	decl := regexp.MustCompile(`(?m)^var (\w+) `)
	names := decl.FindAllStringSubmatch(pegboardShaderSrc, -1)
	if len(names) == 0 {
		t.Fatal("no uniforms found in shader source")
	}
	for _, m := range names {
		if _, ok := u[m[1]]; !ok {
			t.Errorf("uniform %s declared in shader but not set", m[1])
		}
	}
	if len(u) != len(names) {
		t.Errorf("set %d uniforms, shader declares %d", len(u), len(names))
	}
	if got := u["BoardSize"].([]float32); got[0] != 4 || got[1] != 3 {
		t.Errorf("BoardSize = %v, want [4 3]", got)
	}
	if got := u["BoardStride"].(float32); got != 4 {
		t.Errorf("BoardStride = %v, want 4", got)
	}
	if got := u["CanvasScale"].([]float32); got[0] != 2 || got[1] != 1 {
		t.Errorf("CanvasScale = %v, want [2 1] for a 160x120 canvas on 80x120", got)
	}
	if got := u["Staggered"].(float32); got != 1 {
		t.Errorf("Staggered = %v, want 1", got)
	}
}
