package litebrite

import (
	"errors"
	"image/color"
)

// Color represents an RGB color with components in [0, 1]. Light accumulation
// happens in this space; conversion to 8-bit channels happens once per pixel.
type Color struct {
	R, G, B float64
}

// Add returns the component-wise sum of c and o.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Scale returns c with every component multiplied by k.
func (c Color) Scale(k float64) Color {
	return Color{c.R * k, c.G * k, c.B * k}
}

// Clamp returns c with every component clamped to [0, 1].
func (c Color) Clamp() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

// RGBA converts c to an opaque 8-bit color. Components are clamped, scaled
// by 255 and rounded.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: toByte(c.R), G: toByte(c.G), B: toByte(c.B), A: 0xff}
}

// ColorFromRGBA converts an 8-bit color to a float Color, ignoring alpha.
func ColorFromRGBA(c color.RGBA) Color {
	return Color{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}

// Vec2 is a 2D vector used for pointer positions and pixel offsets.
type Vec2 struct {
	X, Y float64
}

// Cell addresses one peg on the board.
type Cell struct {
	Col, Row int
}

// NoCell is returned by the resolver when a position maps to no peg.
var NoCell = Cell{Col: -1, Row: -1}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button, draws
	MouseButtonRight                     // secondary (right) mouse button, erases
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// Errors reported by the package. Callers match them with errors.Is.
var (
	// ErrBackendUnavailable means an execution backend could not be acquired.
	// The session keeps running on the CPU fallback.
	ErrBackendUnavailable = errors.New("litebrite: backend unavailable")
	// ErrBackendLost means a previously working backend became invalid.
	// It is terminal for the session that observed it.
	ErrBackendLost = errors.New("litebrite: backend lost")
	// ErrDecode means an uploaded image could not be decoded.
	ErrDecode = errors.New("litebrite: image decode failed")
	// ErrCanvas means no drawing canvas could be prepared for quantization.
	ErrCanvas = errors.New("litebrite: canvas unavailable")
	// ErrInvalidPalette means palette configuration data was rejected.
	ErrInvalidPalette = errors.New("litebrite: invalid palette")
	// ErrNotStarted is returned by operations that need a started session.
	ErrNotStarted = errors.New("litebrite: session not started")
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func toByte(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
