//go:build linux

package litebrite

import (
	"fmt"
	"image"
	"image/color"

	fb "github.com/gonutz/framebuffer"
)

// DefaultFramebuffer is the Linux framebuffer device.
const DefaultFramebuffer = "/dev/fb0"

// FramebufferPresenter blits frames to a Linux framebuffer device, scaled to
// the device resolution by nearest-neighbor sampling.
type FramebufferPresenter struct {
	dev *fb.Device
}

// OpenFramebuffer opens a framebuffer device such as /dev/fb0.
func OpenFramebuffer(path string) (*FramebufferPresenter, error) {
	if path == "" {
		path = DefaultFramebuffer
	}
	dev, err := fb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("litebrite: open framebuffer %s: %w", path, err)
	}
	b := dev.Bounds()
	Logger().Info("framebuffer open", "path", path, "width", b.Dx(), "height", b.Dy())
	return &FramebufferPresenter{dev: dev}, nil
}

// Bounds returns the device resolution.
func (p *FramebufferPresenter) Bounds() image.Rectangle { return p.dev.Bounds() }

// Present implements Presenter.
func (p *FramebufferPresenter) Present(img *image.RGBA) error {
	if p.dev == nil {
		return fmt.Errorf("litebrite: framebuffer closed")
	}
	b := p.dev.Bounds()
	blitNearest(img, b.Dx(), b.Dy(), func(x, y int, r, g, bl uint8) {
		p.dev.Set(b.Min.X+x, b.Min.Y+y, color.RGBA{R: r, G: g, B: bl, A: 0xff})
	})
	return nil
}

// Close releases the device.
func (p *FramebufferPresenter) Close() error {
	if p.dev == nil {
		return nil
	}
	p.dev.Close()
	p.dev = nil
	return nil
}
