package litebrite

import "math"

// Lighting holds the tunable constants of the peg lighting model. Radii are in
// canvas pixels and must satisfy PegRadius < GlowRadius < AmbientRadius.
type Lighting struct {
	// PegRadius is the radius of the solid, sphere-shaded peg.
	PegRadius float64
	// GlowRadius bounds the short-range (1-t)^2 halo outside the peg.
	GlowRadius float64
	// AmbientRadius bounds the long-range Hermite bleed onto the board.
	AmbientRadius float64
	// HoleRadius is the radius of the dark hole drawn at every cell.
	HoleRadius float64

	// LightDir points from the surface toward the light (upper-left, in
	// front of the board). It is normalized by DefaultLighting.
	LightDir      [3]float64
	DiffuseBase   float64 // unlit fraction of the peg color
	Diffuse       float64 // Lambertian weight
	SpecularPower float64 // Phong exponent
	Specular      float64 // specular weight (white highlight)
	RimPower      float64 // Fresnel-style falloff exponent
	Rim           float64 // rim weight, tinted by the peg color
	Glow          float64 // short-range halo weight
	Ambient       float64 // long-range bleed weight

	// Background is the board fill before grain, scaled by
	// RenderParams.AmbientBrightness.
	Background     Color
	Grain          float64 // amplitude of the per-pixel noise
	GridLineWidth  float64 // pixels from a cell edge that darken
	GridLineShade  float64 // multiplier applied on grid lines
	HoleShade      float64 // multiplier applied inside a hole
	PulseSpeed     float64 // radians per second
	PulseDepth     float64 // fraction of intensity that pulses
	PulsePhaseStep float64 // phase offset per linear cell index
}

// DefaultLighting returns the standard look for a board with the given peg
// spacing.
func DefaultLighting(spacing float64) Lighting {
	return Lighting{
		PegRadius:     spacing * 0.34,
		GlowRadius:    spacing * 0.8,
		AmbientRadius: spacing * 1.5,
		HoleRadius:    spacing * 0.26,

		LightDir:      normalize3(-0.45, -0.55, 0.7),
		DiffuseBase:   0.3,
		Diffuse:       0.8,
		SpecularPower: 48,
		Specular:      0.85,
		RimPower:      3,
		Rim:           0.6,
		Glow:          0.55,
		Ambient:       0.12,

		Background:     Color{R: 0.055, G: 0.055, B: 0.065},
		Grain:          0.018,
		GridLineWidth:  1,
		GridLineShade:  0.6,
		HoleShade:      0.3,
		PulseSpeed:     2,
		PulseDepth:     0.05,
		PulsePhaseStep: 0.1,
	}
}

// RenderParams is the per-frame input to pixel synthesis.
type RenderParams struct {
	PixelWidth, PixelHeight int
	// Time is monotonic seconds since the session started.
	Time float64
	// GlowIntensity scales every emitted light term. It ramps up at startup.
	GlowIntensity float64
	// AmbientBrightness scales the board background.
	AmbientBrightness float64
	// PegBrightness scales the sphere-shaded peg body.
	PegBrightness float64
}

// Frame is everything a backend needs to render one image.
type Frame struct {
	Board  BoardSnapshot
	Params RenderParams
}

// pulse returns the intensity multiplier for the peg at linear index i.
func (l *Lighting) pulse(glow, t float64, i int) float64 {
	return glow * (1 - l.PulseDepth + l.PulseDepth*math.Sin(l.PulseSpeed*t+l.PulsePhaseStep*float64(i)))
}

func normalize3(x, y, z float64) [3]float64 {
	n := math.Sqrt(x*x + y*y + z*z)
	if n == 0 {
		return [3]float64{0, 0, 1}
	}
	return [3]float64{x / n, y / n, z / n}
}

// smoothstep is the Hermite interpolation between edge0 and edge1.
func smoothstep(edge0, edge1, x float64) float64 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}
