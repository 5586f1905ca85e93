package litebrite

import "math"

// Layout describes where pegs sit on the canvas. With Staggered set, odd rows
// are shifted right by half the spacing (brick-wall pattern).
type Layout struct {
	Cols, Rows int
	// Spacing is the peg pitch in canvas pixels.
	Spacing   float64
	Staggered bool
}

// CanvasSize returns the native canvas resolution in pixels, rounded up so a
// fractional spacing never cuts off the last column or row.
func (l Layout) CanvasSize() (width, height int) {
	return int(math.Ceil(float64(l.Cols) * l.Spacing)), int(math.Ceil(float64(l.Rows) * l.Spacing))
}

// RowOffset returns the horizontal shift applied to row.
func (l Layout) RowOffset(row int) float64 {
	if l.Staggered && row&1 == 1 {
		return l.Spacing / 2
	}
	return 0
}

// CellCenter returns the physical center of a cell in canvas pixels,
// including the row stagger.
func (l Layout) CellCenter(c Cell) Vec2 {
	half := l.Spacing / 2
	return Vec2{
		X: float64(c.Col)*l.Spacing + half + l.RowOffset(c.Row),
		Y: float64(c.Row)*l.Spacing + half,
	}
}

// Contains reports whether c addresses a peg on this layout.
func (l Layout) Contains(c Cell) bool {
	return c.Col >= 0 && c.Col < l.Cols && c.Row >= 0 && c.Row < l.Rows
}

// Resolve finds the peg whose physical center is closest to (px, py) in
// canvas pixels. Near the zig-zag seam between staggered rows a point can be
// closer to a peg in the adjacent row than to any peg in its own row, so the
// rough row and both of its neighbors are searched. Ties go to the first
// candidate in row order. Points on the canvas clamp each row's candidate
// column into the board, so the left half-cell of a shifted row still
// resolves to that row's first peg. Returns NoCell, false when no row or
// column candidate lies on the board.
func (l Layout) Resolve(px, py float64) (Cell, bool) {
	if l.Spacing <= 0 || l.Cols <= 0 || l.Rows <= 0 {
		return NoCell, false
	}
	half := l.Spacing / 2
	roughRow := int(math.Floor(py / l.Spacing))
	cw, _ := l.CanvasSize()
	onCanvas := px >= 0 && px < float64(cw)

	best := NoCell
	bestDist := math.Inf(1)
	for r := roughRow - 1; r <= roughRow+1; r++ {
		if r < 0 || r >= l.Rows {
			continue
		}
		offset := l.RowOffset(r)
		c := int(math.Round((px - offset - half) / l.Spacing))
		if onCanvas {
			c = max(0, min(c, l.Cols-1))
		}
		if c < 0 || c >= l.Cols {
			continue
		}
		center := l.CellCenter(Cell{Col: c, Row: r})
		dx := px - center.X
		dy := py - center.Y
		if d := dx*dx + dy*dy; d < bestDist {
			bestDist = d
			best = Cell{Col: c, Row: r}
		}
	}
	if best == NoCell {
		return NoCell, false
	}
	return best, true
}

// DisplayToCanvas scales a pointer position from a display of displayW ×
// displayH into the canvas's native resolution. A non-positive display size
// is treated as already being in canvas pixels.
func (l Layout) DisplayToCanvas(x, y, displayW, displayH float64) (float64, float64) {
	cw, ch := l.CanvasSize()
	if displayW > 0 {
		x *= float64(cw) / displayW
	}
	if displayH > 0 {
		y *= float64(ch) / displayH
	}
	return x, y
}

// ResolveDisplay combines DisplayToCanvas and Resolve.
func (l Layout) ResolveDisplay(x, y, displayW, displayH float64) (Cell, bool) {
	px, py := l.DisplayToCanvas(x, y, displayW, displayH)
	return l.Resolve(px, py)
}

// enclosingCell returns the cell whose brick contains pixel (x, y) and the
// pixel's offset from that cell's center. The cell may be off the board.
func (l Layout) enclosingCell(x, y float64) (Cell, Vec2) {
	row := int(math.Floor(y / l.Spacing))
	offset := l.RowOffset(row)
	col := int(math.Floor((x - offset) / l.Spacing))
	c := Cell{Col: col, Row: row}
	center := l.CellCenter(c)
	return c, Vec2{X: x - center.X, Y: y - center.Y}
}
