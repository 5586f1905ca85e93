package litebrite

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// glowRampDuration is the startup interval over which glow reaches its
// ceiling.
const glowRampDuration = 1.5

// GlowRamp eases the glow intensity from 0 to a ceiling after the session
// starts. Call Update(dt) once per tick; Value is stable between calls.
type GlowRamp struct {
	tween   *gween.Tween
	ceiling float64
	value   float64
	Done    bool
}

// NewGlowRamp returns a ramp reaching ceiling after 1.5s with ease-out cubic.
func NewGlowRamp(ceiling float64) *GlowRamp {
	return NewGlowRampFunc(ceiling, glowRampDuration, ease.OutCubic)
}

// NewGlowRampFunc returns a ramp with a custom duration and easing. A
// non-positive duration starts at the ceiling.
func NewGlowRampFunc(ceiling float64, duration float32, fn ease.TweenFunc) *GlowRamp {
	r := &GlowRamp{ceiling: ceiling}
	if duration <= 0 {
		r.value = ceiling
		r.Done = true
		return r
	}
	r.tween = gween.New(0, float32(ceiling), duration, fn)
	return r
}

// Update advances the ramp by dt seconds and returns the new value.
func (r *GlowRamp) Update(dt float32) float64 {
	if r.Done {
		return r.value
	}
	val, finished := r.tween.Update(dt)
	r.value = float64(val)
	if finished {
		r.value = r.ceiling
		r.Done = true
	}
	return r.value
}

// Value returns the current intensity.
func (r *GlowRamp) Value() float64 { return r.value }

// Ceiling returns the final intensity.
func (r *GlowRamp) Ceiling() float64 { return r.ceiling }
