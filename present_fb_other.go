//go:build !linux

package litebrite

import (
	"fmt"
	"image"
)

// DefaultFramebuffer is the Linux framebuffer device.
const DefaultFramebuffer = "/dev/fb0"

// FramebufferPresenter is only available on Linux.
type FramebufferPresenter struct{}

// OpenFramebuffer always fails off Linux.
func OpenFramebuffer(path string) (*FramebufferPresenter, error) {
	return nil, fmt.Errorf("litebrite: open framebuffer %s: %w", path, ErrBackendUnavailable)
}

// Bounds returns an empty rectangle.
func (p *FramebufferPresenter) Bounds() image.Rectangle { return image.Rectangle{} }

// Present implements Presenter.
func (p *FramebufferPresenter) Present(*image.RGBA) error {
	return fmt.Errorf("litebrite: framebuffer: %w", ErrBackendUnavailable)
}

// Close is a no-op.
func (p *FramebufferPresenter) Close() error { return nil }
