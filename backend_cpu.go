package litebrite

import (
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CPUBackend synthesizes frames in CPU memory. With one worker it is the
// sequential fallback; with more it renders disjoint row bands in parallel.
// Both read the same immutable Frame, so no locking is involved.
type CPUBackend struct {
	synth   *Synthesizer
	img     *image.RGBA
	pegs    []pegColor
	workers int
	version uint64
	primed  bool
	closed  bool
}

// NewCPUBackend creates a backend rendering width × height images. workers <=
// 0 uses GOMAXPROCS.
func NewCPUBackend(synth *Synthesizer, width, height, workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &CPUBackend{
		synth:   synth,
		img:     image.NewRGBA(image.Rect(0, 0, width, height)),
		workers: workers,
	}
}

// Name returns "sequential" for a single worker and "cpu" otherwise.
func (b *CPUBackend) Name() string {
	if b.workers == 1 {
		return "sequential"
	}
	return "cpu"
}

// Workers returns the number of goroutines used per frame.
func (b *CPUBackend) Workers() int { return b.workers }

// Image returns the last rendered frame.
func (b *CPUBackend) Image() *image.RGBA { return b.img }

// Render synthesizes f into the backend's image.
func (b *CPUBackend) Render(f Frame) error {
	if b.closed {
		return fmt.Errorf("%w: %s backend closed", ErrBackendLost, b.Name())
	}
	// Palette resolution is per board version, not per frame.
	if !b.primed || f.Board.Version != b.version || len(b.pegs) != len(f.Board.Cells) {
		b.pegs = b.synth.Palette.resolve(f.Board, b.pegs)
		b.version = f.Board.Version
		b.primed = true
	}

	h := b.img.Bounds().Dy()
	if b.workers == 1 || h < 2 {
		b.synth.synthesizeRows(b.img, b.pegs, f, 0, h)
		return nil
	}

	band := (h + b.workers - 1) / b.workers
	var g errgroup.Group
	for y0 := 0; y0 < h; y0 += band {
		y1 := min(y0+band, h)
		g.Go(func() error {
			b.synth.synthesizeRows(b.img, b.pegs, f, y0, y1)
			return nil
		})
	}
	return g.Wait()
}

// Close marks the backend unusable.
func (b *CPUBackend) Close() error {
	b.closed = true
	return nil
}
