package litebrite

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Kage shader source ---
// The fragment shader mirrors Synthesizer.shade line for line. The board is
// bound as image 0: one texel per cell, peg color in RGB, alpha 0 for empty.

const pegboardShaderSrc = `//kage:unit pixels
package main

var Spacing float
var BoardSize vec2
var BoardStride float
var CanvasScale vec2
var Staggered float
var Time float
var GlowIntensity float
var AmbientBrightness float
var PegBrightness float

var PegRadius float
var GlowRadius float
var AmbientRadius float
var HoleRadius float
var LightDir vec3
var DiffuseBase float
var Diffuse float
var SpecularPower float
var Specular float
var RimPower float
var Rim float
var Glow float
var Ambient float
var Background vec3
var Grain float
var GridLineWidth float
var GridLineShade float
var HoleShade float
var PulseSpeed float
var PulseDepth float
var PulsePhaseStep float

func rowOffset(row float) float {
	if Staggered > 0 && mod(row, 2) == 1 {
		return Spacing / 2
	}
	return 0
}

func hash2(p vec2) float {
	return fract(sin(p.x*12.9898+p.y*78.233) * 43758.5453)
}

func pegAt(col, row float) vec4 {
	return imageSrc0At(imageSrc0Origin() + vec2(col+0.5, row+0.5))
}

func sphere(base vec3, d vec2) vec3 {
	r := PegRadius
	nz := sqrt(max(0, r*r-dot(d, d))) / r
	n := vec3(d/r, nz)
	ndl := dot(n, LightDir)
	diffuse := max(0, ndl)
	rz := 2*ndl*nz - LightDir.z
	spec := pow(max(0, rz), SpecularPower) * Specular
	rim := pow(1-nz, RimPower) * Rim
	c := base * PegBrightness * (DiffuseBase + Diffuse*diffuse)
	return c + vec3(spec) + base*rim
}

func falloff(base vec3, dist float) vec3 {
	k := 0.0
	if dist > PegRadius && dist < GlowRadius {
		t := (dist - PegRadius) / (GlowRadius - PegRadius)
		k += (1 - t) * (1 - t) * Glow
	}
	if dist < AmbientRadius {
		k += (1 - smoothstep(0, AmbientRadius, dist)) * Ambient
	}
	return base * k
}

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	dst := dstPos.xy - imageDstOrigin()
	pos := dst * CanvasScale
	half := Spacing / 2
	row := floor(pos.y / Spacing)
	off := rowOffset(row)
	col := floor((pos.x - off) / Spacing)
	rel := pos - vec2(col*Spacing+half+off, row*Spacing+half)
	onBoard := col >= 0 && col < BoardSize.x && row >= 0 && row < BoardSize.y

	bg := Background * AmbientBrightness
	bg += vec3((hash2(floor(dst)) - 0.5) * Grain)
	edge := half - max(abs(rel.x), abs(rel.y))
	bg *= 1 - (1-GridLineShade)*(1-smoothstep(0, GridLineWidth, edge))
	if !onBoard {
		return vec4(clamp(bg, 0, 1), 1)
	}
	bg *= 1 - (1-HoleShade)*(1-smoothstep(HoleRadius-1, HoleRadius, length(rel)))

	light := vec3(0)
	for j := -1; j <= 1; j++ {
		for i := -1; i <= 1; i++ {
			nr := row + float(j)
			nc := col + float(i)
			if nr >= 0 && nr < BoardSize.y && nc >= 0 && nc < BoardSize.x {
				peg := pegAt(nc, nr)
				if peg.a > 0 {
					d := pos - vec2(nc*Spacing+half+rowOffset(nr), nr*Spacing+half)
					dist := length(d)
					phase := PulseSpeed*Time + PulsePhaseStep*(nr*BoardStride+nc)
					intensity := GlowIntensity * (1 - PulseDepth + PulseDepth*sin(phase))
					if i == 0 && j == 0 && dist <= PegRadius {
						light += sphere(peg.rgb, d) * intensity
					} else {
						light += falloff(peg.rgb, dist) * intensity
					}
				}
			}
		}
	}
	return vec4(clamp(bg+light, 0, 1), 1)
}
`

// --- Lazy shader compilation ---

var pegboardShader *ebiten.Shader

// ensurePegboardShader compiles the pegboard shader on first use. Unlike the
// rest of the package it returns an error: a shader that fails to compile
// means the GPU path is unavailable, not that the program is broken.
func ensurePegboardShader() (*ebiten.Shader, error) {
	if pegboardShader != nil {
		return pegboardShader, nil
	}
	s, err := ebiten.NewShader([]byte(pegboardShaderSrc))
	if err != nil {
		return nil, fmt.Errorf("%w: compile pegboard shader: %v", ErrBackendUnavailable, err)
	}
	pegboardShader = s
	return s, nil
}

// shaderUniforms fills u with the values the pegboard shader reads for f.
func (s *Synthesizer) shaderUniforms(u map[string]any, f Frame) {
	lay := s.Layout
	lt := &s.Lighting
	p := f.Params
	boardW, boardH := s.boardSize(f)
	sx, sy := s.canvasScale(p)

	staggered := float32(0)
	if lay.Staggered {
		staggered = 1
	}
	u["Spacing"] = float32(lay.Spacing)
	u["BoardSize"] = []float32{float32(boardW), float32(boardH)}
	// Pulse phases index the snapshot row-major, like the CPU path.
	u["BoardStride"] = float32(f.Board.Width)
	u["CanvasScale"] = []float32{float32(sx), float32(sy)}
	u["Staggered"] = staggered
	u["Time"] = float32(p.Time)
	u["GlowIntensity"] = float32(p.GlowIntensity)
	u["AmbientBrightness"] = float32(p.AmbientBrightness)
	u["PegBrightness"] = float32(p.PegBrightness)

	u["PegRadius"] = float32(lt.PegRadius)
	u["GlowRadius"] = float32(lt.GlowRadius)
	u["AmbientRadius"] = float32(lt.AmbientRadius)
	u["HoleRadius"] = float32(lt.HoleRadius)
	u["LightDir"] = []float32{float32(lt.LightDir[0]), float32(lt.LightDir[1]), float32(lt.LightDir[2])}
	u["DiffuseBase"] = float32(lt.DiffuseBase)
	u["Diffuse"] = float32(lt.Diffuse)
	u["SpecularPower"] = float32(lt.SpecularPower)
	u["Specular"] = float32(lt.Specular)
	u["RimPower"] = float32(lt.RimPower)
	u["Rim"] = float32(lt.Rim)
	u["Glow"] = float32(lt.Glow)
	u["Ambient"] = float32(lt.Ambient)
	u["Background"] = []float32{float32(lt.Background.R), float32(lt.Background.G), float32(lt.Background.B)}
	u["Grain"] = float32(lt.Grain)
	u["GridLineWidth"] = float32(lt.GridLineWidth)
	u["GridLineShade"] = float32(lt.GridLineShade)
	u["HoleShade"] = float32(lt.HoleShade)
	u["PulseSpeed"] = float32(lt.PulseSpeed)
	u["PulseDepth"] = float32(lt.PulseDepth)
	u["PulsePhaseStep"] = float32(lt.PulsePhaseStep)
}
