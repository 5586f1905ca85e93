package litebrite

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// PaletteEntry is one named peg color.
type PaletteEntry struct {
	Name string     `json:"name"`
	Hex  string     `json:"hex"`
	RGB  color.RGBA `json:"-"`
}

// Palette maps color indices 1..Len() to peg colors. Index 0 is reserved for
// the empty hole and has no entry. Palettes are immutable once built.
type Palette struct {
	entries []PaletteEntry
	colors  []Color // colors[i] is the float color of index i+1
}

// maxPaletteEntries keeps every index representable in a board cell byte.
const maxPaletteEntries = 255

// NewPalette builds a palette from entries in index order (the first entry is
// index 1). Entries with an empty RGB are parsed from Hex.
func NewPalette(entries ...PaletteEntry) (*Palette, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrInvalidPalette)
	}
	if len(entries) > maxPaletteEntries {
		return nil, fmt.Errorf("%w: %d entries exceeds %d", ErrInvalidPalette, len(entries), maxPaletteEntries)
	}
	p := &Palette{
		entries: make([]PaletteEntry, len(entries)),
		colors:  make([]Color, len(entries)),
	}
	for i, e := range entries {
		if e.RGB == (color.RGBA{}) {
			rgb, err := ParseHex(e.Hex)
			if err != nil {
				return nil, fmt.Errorf("%w: entry %d (%q): %v", ErrInvalidPalette, i+1, e.Name, err)
			}
			e.RGB = rgb
		}
		e.RGB.A = 0xff
		if e.Hex == "" {
			e.Hex = fmt.Sprintf("#%02x%02x%02x", e.RGB.R, e.RGB.G, e.RGB.B)
		}
		p.entries[i] = e
		p.colors[i] = ColorFromRGBA(e.RGB)
	}
	return p, nil
}

// ParsePalette parses a JSON array of {"name", "hex"} objects.
func ParsePalette(jsonData []byte) (*Palette, error) {
	var entries []PaletteEntry
	if err := json.Unmarshal(jsonData, &entries); err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrInvalidPalette, err)
	}
	return NewPalette(entries...)
}

// DefaultPalette returns the classic eight translucent peg colors.
func DefaultPalette() *Palette {
	p, err := NewPalette(
		PaletteEntry{Name: "red", Hex: "#ff2a3c"},
		PaletteEntry{Name: "orange", Hex: "#ff8c1a"},
		PaletteEntry{Name: "yellow", Hex: "#ffe81f"},
		PaletteEntry{Name: "green", Hex: "#2aff5f"},
		PaletteEntry{Name: "blue", Hex: "#2a9dff"},
		PaletteEntry{Name: "violet", Hex: "#b04aff"},
		PaletteEntry{Name: "pink", Hex: "#ff4ad2"},
		PaletteEntry{Name: "white", Hex: "#f4f4ff"},
	)
	if err != nil {
		panic("litebrite: default palette: " + err.Error())
	}
	return p
}

// ParseHex parses "#rrggbb" (the leading '#' is optional) into an opaque color.
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("hex color %q: want 6 digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("hex color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Len returns the number of non-empty colors.
func (p *Palette) Len() int {
	return len(p.entries)
}

// Entry returns the entry for index, or false for 0 and out-of-range indices.
func (p *Palette) Entry(index int) (PaletteEntry, bool) {
	if index < 1 || index > len(p.entries) {
		return PaletteEntry{}, false
	}
	return p.entries[index-1], true
}

// Color returns the float color for index, or false for 0 and out-of-range
// indices.
func (p *Palette) Color(index int) (Color, bool) {
	if index < 1 || index > len(p.colors) {
		return Color{}, false
	}
	return p.colors[index-1], true
}

// Name returns the entry name for index, "empty" for 0.
func (p *Palette) Name(index int) string {
	if index == 0 {
		return "empty"
	}
	if e, ok := p.Entry(index); ok {
		return e.Name
	}
	return "unknown"
}

// Nearest returns the index of the entry closest to (r, g, b) by Euclidean
// RGB distance. Ties go to the lowest index.
func (p *Palette) Nearest(r, g, b uint8) int {
	best := 0
	bestDist := -1
	for i, e := range p.entries {
		dr := int(r) - int(e.RGB.R)
		dg := int(g) - int(e.RGB.G)
		db := int(b) - int(e.RGB.B)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best = i + 1
			bestDist = d
		}
	}
	return best
}

// resolve maps every cell of snap to its color. Empty or unknown indices get
// ok=false.
func (p *Palette) resolve(snap BoardSnapshot, dst []pegColor) []pegColor {
	n := len(snap.Cells)
	if cap(dst) < n {
		dst = make([]pegColor, n)
	}
	dst = dst[:n]
	for i, idx := range snap.Cells {
		c, ok := p.Color(int(idx))
		dst[i] = pegColor{Color: c, ok: ok}
	}
	return dst
}

// pegColor is a resolved cell color; ok is false for empty cells.
type pegColor struct {
	Color
	ok bool
}
