package litebrite

import (
	"bytes"
	"context"
	"io/fs"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// --- Constants ---

const maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

// --- Per-pointer state ---

type pointerState struct {
	down   bool
	button MouseButton // captured at press time
	last   Cell        // last painted cell, NoCell before the first paint
	lastX  float64
	lastY  float64
}

// inputState is the Ebitengine-side bookkeeping for touch slots. Only the
// presentation goroutine touches it.
type inputState struct {
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID
}

// --- Pointer state machine ---

// pointerEvent runs the press/hold/release state machine for one pointer.
// Presses and held moves paint the resolved cell; a stroke does not repaint
// the cell it last painted.
func (s *Session) pointerEvent(pointerID int, x, y float64, pressed bool, button MouseButton) {
	s.mu.Lock()
	ps := &s.pointers[pointerID]
	if !pressed {
		*ps = pointerState{}
		s.mu.Unlock()
		return
	}
	if !ps.down {
		ps.down = true
		ps.button = button
		ps.last = NoCell
	}
	ps.lastX, ps.lastY = x, y
	dw, dh := s.displayW, s.displayH
	index := s.color
	if ps.button == MouseButtonRight {
		index = 0
	}
	cell, ok := s.layout.ResolveDisplay(x, y, dw, dh)
	if !ok || cell == ps.last {
		s.mu.Unlock()
		return
	}
	ps.last = cell
	s.mu.Unlock()

	s.board.SetPixel(cell.Col, cell.Row, index)
}

// --- Ebitengine input processing ---

// processInput is called once per tick from Game.Update. Injected events
// take precedence over the real mouse for that tick.
func (s *Session) processInput() {
	if !s.processInjectedInput() {
		s.processMousePointer()
	}
	s.processTouchPointers()
	s.processKeys()
	s.processDroppedFiles()
}

// processMousePointer handles mouse input (pointer 0).
func (s *Session) processMousePointer() {
	mx, my := ebiten.CursorPosition()

	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if left || right {
		pressed = true
		if left {
			button = MouseButtonLeft
		} else {
			button = MouseButtonRight
		}
	}

	s.mu.Lock()
	wasDown := s.pointers[0].down
	s.mu.Unlock()
	if !pressed && !wasDown {
		return
	}
	s.pointerEvent(0, float64(mx), float64(my), pressed, button)
}

// processTouchPointers handles touch input (pointers 1-9).
func (s *Session) processTouchPointers() {
	in := &s.input
	touchIDs := ebiten.AppendTouchIDs(in.prevTouchIDs[:0])
	in.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := in.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true

		tx, ty := ebiten.TouchPosition(tid)
		s.pointerEvent(slot, float64(tx), float64(ty), true, MouseButtonLeft)
	}

	// Release any touch slots that are no longer active.
	for i := 1; i < maxPointers; i++ {
		if in.touchUsed[i] && !activeSlots[i] {
			s.pointerEvent(i, 0, 0, false, MouseButtonLeft)
			in.touchUsed[i] = false
			in.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (in *inputState) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if in.touchUsed[i] && in.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !in.touchUsed[i] {
			in.touchUsed[i] = true
			in.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// digitKeys maps the number row to color indices 0-9.
var digitKeys = [...]ebiten.Key{
	ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// processKeys handles color selection and clearing.
func (s *Session) processKeys() {
	for i, k := range digitKeys {
		if inpututil.IsKeyJustPressed(k) {
			s.SelectColor(i)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		s.SelectColor(0)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		s.RequestClear()
	}
}

// processDroppedFiles uploads the first regular file dropped on the window.
// Bytes are read on this tick; decoding happens off the loop.
func (s *Session) processDroppedFiles() {
	files := ebiten.DroppedFiles()
	if files == nil {
		return
	}
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		Logger().Warn("read dropped files", "err", err)
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := fs.ReadFile(files, e.Name())
		if err != nil {
			Logger().Warn("read dropped file", "name", e.Name(), "err", err)
			return
		}
		Logger().Info("image dropped", "name", e.Name(), "bytes", len(data))
		// Failures are logged by UploadImage.
		_ = s.UploadImageAsync(context.Background(), bytes.NewReader(data))
		return
	}
}
