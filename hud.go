package litebrite

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	hudFontSize = 16
	hudPadding  = 8
	hudSwatch   = 14
)

// HUD draws the current draw color and backend status over the board.
type HUD struct {
	face *text.GoTextFace
	lh   float64
}

// NewHUD loads the Go Regular face used for the status line.
func NewHUD() (*HUD, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("litebrite: load hud font: %w", err)
	}
	face := &text.GoTextFace{Source: source, Size: hudFontSize}
	m := face.Metrics()
	return &HUD{face: face, lh: m.HAscent + m.HDescent + m.HLineGap}, nil
}

// hudLine is the status text for st with draw color index in palette p.
func hudLine(st Status, p *Palette, index int) string {
	line := fmt.Sprintf("%d %s | %s", index, p.Name(index), st.Backend)
	switch {
	case st.Err != nil:
		line += " | error: " + st.Err.Error()
	case !st.Ready:
		line += " | not ready"
	case !st.Supported:
		line += " | gpu unavailable"
	}
	return line
}

// Draw renders the status line in the bottom-left corner of screen.
func (h *HUD) Draw(screen *ebiten.Image, s *Session) {
	st := s.Status()
	index := s.Color()
	line := hudLine(st, s.Palette(), index)

	b := screen.Bounds()
	w, _ := text.Measure(line, h.face, h.lh)
	x := float32(hudPadding)
	y := float32(b.Dy()) - float32(h.lh) - 2*hudPadding

	vector.DrawFilledRect(screen, x-4, y-4,
		float32(w)+hudSwatch+hudPadding+8, float32(h.lh)+8,
		color.RGBA{0, 0, 0, 160}, false)

	swatch := color.RGBA{0x30, 0x30, 0x30, 0xff}
	if c, ok := s.Palette().Color(index); ok {
		swatch = c.RGBA()
	}
	vector.DrawFilledRect(screen, x, y+float32(h.lh-hudSwatch)/2, hudSwatch, hudSwatch, swatch, false)

	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x)+hudSwatch+hudPadding, float64(y))
	op.ColorScale.ScaleWithColor(color.White)
	op.LineSpacing = h.lh
	text.Draw(screen, line, h.face, op)
}
