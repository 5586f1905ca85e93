package litebrite

import (
	"image"
	"math"
)

// Synthesizer turns a board snapshot into pixels. It is a pure function of
// its configuration and the Frame it is given; every backend shares it.
type Synthesizer struct {
	Layout   Layout
	Lighting Lighting
	Palette  *Palette
}

// Synthesize renders the whole frame into dst, one pixel at a time.
func (s *Synthesizer) Synthesize(dst *image.RGBA, f Frame) {
	pegs := s.Palette.resolve(f.Board, nil)
	s.synthesizeRows(dst, pegs, f, 0, dst.Bounds().Dy())
}

// synthesizeRows renders rows [y0, y1) of dst. pegs holds the resolved color
// of every board cell. Distinct row ranges may be rendered concurrently.
func (s *Synthesizer) synthesizeRows(dst *image.RGBA, pegs []pegColor, f Frame, y0, y1 int) {
	b := dst.Bounds()
	w := b.Dx()
	for y := y0; y < y1; y++ {
		off := dst.PixOffset(b.Min.X, b.Min.Y+y)
		row := dst.Pix[off : off+w*4]
		for x := 0; x < w; x++ {
			c := s.shade(pegs, f, x, y).RGBA()
			i := x * 4
			row[i] = c.R
			row[i+1] = c.G
			row[i+2] = c.B
			row[i+3] = 0xff
		}
	}
}

// ShadePixel returns the color of output pixel (x, y) for frame f.
func (s *Synthesizer) ShadePixel(f Frame, x, y int) Color {
	return s.shade(s.Palette.resolve(f.Board, nil), f, x, y)
}

// shade evaluates the lighting model at the center of pixel (x, y): background
// texture, the cell hole, and the light of every occupied peg in the 3x3
// neighborhood of the enclosing cell.
func (s *Synthesizer) shade(pegs []pegColor, f Frame, x, y int) Color {
	lay := s.Layout
	lt := &s.Lighting
	p := f.Params

	boardW, boardH := s.boardSize(f)
	sx, sy := s.canvasScale(p)
	px := (float64(x) + 0.5) * sx
	py := (float64(y) + 0.5) * sy
	cell, rel := lay.enclosingCell(px, py)
	onBoard := cell.Col >= 0 && cell.Col < boardW && cell.Row >= 0 && cell.Row < boardH

	bg := s.background(x, y, rel, onBoard, p.AmbientBrightness)
	if !onBoard {
		return bg.Clamp()
	}

	var light Color
	for j := -1; j <= 1; j++ {
		nr := cell.Row + j
		if nr < 0 || nr >= boardH {
			continue
		}
		for i := -1; i <= 1; i++ {
			nc := cell.Col + i
			if nc < 0 || nc >= boardW {
				continue
			}
			idx := nr*f.Board.Width + nc
			peg := pegs[idx]
			if !peg.ok {
				continue
			}
			center := lay.CellCenter(Cell{Col: nc, Row: nr})
			dx := px - center.X
			dy := py - center.Y
			d := math.Sqrt(dx*dx + dy*dy)
			intensity := lt.pulse(p.GlowIntensity, p.Time, idx)

			if i == 0 && j == 0 && d <= lt.PegRadius {
				light = light.Add(lt.sphere(peg.Color, dx, dy, p.PegBrightness).Scale(intensity))
				continue
			}
			light = light.Add(lt.falloff(peg.Color, d).Scale(intensity))
		}
	}
	return bg.Add(light).Clamp()
}

// boardSize is the number of pegs rendered: the layout, bounded by the
// snapshot so cell lookups stay in range.
func (s *Synthesizer) boardSize(f Frame) (int, int) {
	return min(s.Layout.Cols, f.Board.Width), min(s.Layout.Rows, f.Board.Height)
}

// canvasScale maps output pixels onto the canvas. An output of a different
// size than the canvas shows the whole board scaled, the same mapping
// Layout.DisplayToCanvas applies to pointer input.
func (s *Synthesizer) canvasScale(p RenderParams) (sx, sy float64) {
	cw, ch := s.Layout.CanvasSize()
	sx, sy = 1, 1
	if p.PixelWidth > 0 && cw > 0 {
		sx = float64(cw) / float64(p.PixelWidth)
	}
	if p.PixelHeight > 0 && ch > 0 {
		sy = float64(ch) / float64(p.PixelHeight)
	}
	return sx, sy
}

// background returns the dark board texture: grain, grid lines near cell
// edges and a hole at the cell center.
func (s *Synthesizer) background(x, y int, rel Vec2, onBoard bool, brightness float64) Color {
	lt := &s.Lighting
	half := s.Layout.Spacing / 2

	c := lt.Background.Scale(brightness)
	grain := (hash2(float64(x), float64(y)) - 0.5) * lt.Grain
	c = c.Add(Color{grain, grain, grain})

	edge := half - math.Max(math.Abs(rel.X), math.Abs(rel.Y))
	line := 1 - smoothstep(0, lt.GridLineWidth, edge)
	c = c.Scale(1 - (1-lt.GridLineShade)*line)

	if onBoard {
		r := math.Hypot(rel.X, rel.Y)
		hole := 1 - smoothstep(lt.HoleRadius-1, lt.HoleRadius, r)
		c = c.Scale(1 - (1-lt.HoleShade)*hole)
	}
	return c
}

// sphere shades the peg body as a lit hemisphere of radius PegRadius seen
// from the front: Lambert diffuse, Phong specular and a Fresnel-style rim.
func (l *Lighting) sphere(base Color, dx, dy, brightness float64) Color {
	r := l.PegRadius
	nz := math.Sqrt(math.Max(0, r*r-dx*dx-dy*dy)) / r
	nx, ny := dx/r, dy/r

	ld := l.LightDir
	ndl := nx*ld[0] + ny*ld[1] + nz*ld[2]
	diffuse := math.Max(0, ndl)
	// z of the reflected light direction; the viewer sits on +z.
	rz := 2*ndl*nz - ld[2]
	spec := math.Pow(math.Max(0, rz), l.SpecularPower) * l.Specular
	rim := math.Pow(1-nz, l.RimPower) * l.Rim

	body := base.Scale(brightness)
	c := body.Scale(l.DiffuseBase + l.Diffuse*diffuse)
	c = c.Add(Color{spec, spec, spec})
	return c.Add(base.Scale(rim))
}

// falloff returns the halo and ambient bleed of a peg at distance d.
func (l *Lighting) falloff(base Color, d float64) Color {
	var k float64
	if d > l.PegRadius && d < l.GlowRadius {
		t := (d - l.PegRadius) / (l.GlowRadius - l.PegRadius)
		k += (1 - t) * (1 - t) * l.Glow
	}
	if d < l.AmbientRadius {
		k += (1 - smoothstep(0, l.AmbientRadius, d)) * l.Ambient
	}
	return base.Scale(k)
}

// hash2 is a cheap deterministic pseudo-random value in [0, 1) for a pixel.
func hash2(x, y float64) float64 {
	v := math.Sin(x*12.9898+y*78.233) * 43758.5453
	return v - math.Floor(v)
}
