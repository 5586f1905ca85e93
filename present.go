package litebrite

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// PNGPresenter writes frames as numbered PNG files.
type PNGPresenter struct {
	// Dir receives the files; it is created on first use.
	Dir string
	// Prefix starts every file name. Default "frame".
	Prefix string
	// Every writes only every n-th frame. Zero or one writes all of them.
	Every int

	n       int
	written int
	ready   bool
}

// Present writes img as <Dir>/<Prefix>_<seq>.png.
func (p *PNGPresenter) Present(img *image.RGBA) error {
	p.n++
	if p.Every > 1 && (p.n-1)%p.Every != 0 {
		return nil
	}
	if !p.ready {
		if err := os.MkdirAll(p.Dir, 0o755); err != nil {
			return fmt.Errorf("png presenter: %w", err)
		}
		p.ready = true
	}
	prefix := p.Prefix
	if prefix == "" {
		prefix = "frame"
	}
	path := filepath.Join(p.Dir, fmt.Sprintf("%s_%05d.png", prefix, p.written))
	if err := writePNG(path, img); err != nil {
		return fmt.Errorf("png presenter: %w", err)
	}
	p.written++
	return nil
}

// Written returns the number of files written.
func (p *PNGPresenter) Written() int { return p.written }

// blitNearest scales src into a destination of dw × dh by nearest-neighbor
// sampling, calling set for every destination pixel.
func blitNearest(src *image.RGBA, dw, dh int, set func(x, y int, r, g, b uint8)) {
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw == 0 || sh == 0 {
		return
	}
	for y := 0; y < dh; y++ {
		sy := sb.Min.Y + (y*sh)/dh
		for x := 0; x < dw; x++ {
			sx := sb.Min.X + (x*sw)/dw
			i := src.PixOffset(sx, sy)
			set(x, y, src.Pix[i], src.Pix[i+1], src.Pix[i+2])
		}
	}
}
