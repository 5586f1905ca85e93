package litebrite

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Backend executes pixel synthesis for one frame at a time. Backends differ
// only in how they iterate pixels and where the result lives; the lighting
// math is shared.
type Backend interface {
	// Name identifies the backend in logs and status reports.
	Name() string
	// Render uploads the frame's board and parameters and synthesizes the
	// image. An error wrapping ErrBackendLost is terminal.
	Render(f Frame) error
	// Close releases backend resources. It is safe to call more than once.
	Close() error
}

// ImageBackend is implemented by backends whose result lives in CPU memory.
type ImageBackend interface {
	Backend
	// Image returns the most recently rendered frame. The image is reused by
	// the next Render call.
	Image() *image.RGBA
}

// TargetBackend is implemented by backends that render into a GPU image.
type TargetBackend interface {
	Backend
	// Target returns the offscreen image holding the last rendered frame.
	Target() *ebiten.Image
}

// BackendKind selects which backend a session starts with.
type BackendKind uint8

const (
	BackendAuto       BackendKind = iota // Kage if available, else parallel CPU
	BackendKage                          // GPU fragment shader, one invocation per pixel
	BackendCPU                           // row bands across goroutines
	BackendSequential                    // single goroutine, pixel by pixel
)

// String returns the flag spelling of k.
func (k BackendKind) String() string {
	switch k {
	case BackendKage:
		return "kage"
	case BackendCPU:
		return "cpu"
	case BackendSequential:
		return "sequential"
	default:
		return "auto"
	}
}

// ParseBackendKind is the inverse of BackendKind.String. Unknown names map to
// BackendAuto and ok=false.
func ParseBackendKind(s string) (BackendKind, bool) {
	switch s {
	case "", "auto":
		return BackendAuto, true
	case "kage", "gpu":
		return BackendKage, true
	case "cpu", "parallel":
		return BackendCPU, true
	case "sequential", "seq":
		return BackendSequential, true
	default:
		return BackendAuto, false
	}
}
