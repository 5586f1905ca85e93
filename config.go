package litebrite

import (
	"fmt"
	"os"
)

// Config holds session settings. The zero value is a valid 32×24 staggered
// board with the default palette; withDefaults fills unset fields.
type Config struct {
	// Board dimensions in pegs. Default 32×24.
	Cols, Rows int
	// Spacing is the peg pitch in canvas pixels. Default 40.
	Spacing float64
	// Flat disables the half-spacing shift of odd rows.
	Flat bool

	// Output size in pixels. Zero means the canvas size; any other size
	// shows the whole board scaled to fit, and pointer input is scaled back.
	Width, Height int

	// GlowCeiling is the intensity the startup ramp settles at. Default 1.
	GlowCeiling float64
	// AmbientBrightness scales the board texture. Default 1.
	AmbientBrightness float64
	// PegBrightness scales the lit peg body. Default 1.
	PegBrightness float64
	// NoGlowRamp starts at GlowCeiling instead of easing in.
	NoGlowRamp bool

	Backend BackendKind
	// Workers for the parallel CPU backend. Zero means GOMAXPROCS.
	Workers int

	// Palette defaults to DefaultPalette.
	Palette *Palette
	// Lighting defaults to DefaultLighting(Spacing).
	Lighting *Lighting
	// Threshold for the image quantizer. Zero means DefaultThreshold.
	Threshold uint8

	// ScreenshotDir receives PNGs queued with Session.Screenshot.
	// Default "screenshots".
	ScreenshotDir string
}

func (c Config) withDefaults() Config {
	if c.Cols <= 0 {
		c.Cols = 32
	}
	if c.Rows <= 0 {
		c.Rows = 24
	}
	if c.Spacing <= 0 {
		c.Spacing = 40
	}
	if c.GlowCeiling <= 0 {
		c.GlowCeiling = 1
	}
	if c.AmbientBrightness <= 0 {
		c.AmbientBrightness = 1
	}
	if c.PegBrightness <= 0 {
		c.PegBrightness = 1
	}
	if c.Palette == nil {
		c.Palette = DefaultPalette()
	}
	if c.Lighting == nil {
		lt := DefaultLighting(c.Spacing)
		c.Lighting = &lt
	}
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = c.Layout().CanvasSize()
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "screenshots"
	}
	return c
}

// Layout returns the peg layout described by c.
func (c Config) Layout() Layout {
	return Layout{Cols: c.Cols, Rows: c.Rows, Spacing: c.Spacing, Staggered: !c.Flat}
}

// Environment variables read by ApplyEnv.
const (
	EnvBackend = "LITEBRITE_BACKEND" // auto, kage, cpu or sequential
	EnvPalette = "LITEBRITE_PALETTE" // path to a JSON palette file
)

// ApplyEnv overrides c from the process environment.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv, os.ReadFile)
}

func (c *Config) applyEnv(lookup func(string) (string, bool), readFile func(string) ([]byte, error)) error {
	if v, ok := lookup(EnvBackend); ok && v != "" {
		k, ok := ParseBackendKind(v)
		if !ok {
			return fmt.Errorf("litebrite: %s=%q: unknown backend", EnvBackend, v)
		}
		c.Backend = k
	}
	if path, ok := lookup(EnvPalette); ok && path != "" {
		data, err := readFile(path)
		if err != nil {
			return fmt.Errorf("litebrite: %s: %w", EnvPalette, err)
		}
		p, err := ParsePalette(data)
		if err != nil {
			return fmt.Errorf("litebrite: %s=%s: %w", EnvPalette, path, err)
		}
		c.Palette = p
	}
	return nil
}
