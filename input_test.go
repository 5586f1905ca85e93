package litebrite

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestTouchSlotAllocation(t *testing.T) {
	var in inputState
	a := in.touchSlot(ebiten.TouchID(11))
	b := in.touchSlot(ebiten.TouchID(22))
	if a != 1 || b != 2 {
		t.Fatalf("slots = %d,%d, want 1,2", a, b)
	}
	if got := in.touchSlot(ebiten.TouchID(11)); got != a {
		t.Errorf("existing touch slot = %d, want %d", got, a)
	}
	for i := 3; i < maxPointers; i++ {
		in.touchSlot(ebiten.TouchID(100 + i))
	}
	if got := in.touchSlot(ebiten.TouchID(999)); got != -1 {
		t.Errorf("slot when full = %d, want -1", got)
	}
}

func TestPointersPaintIndependently(t *testing.T) {
	s := newTestSession(t, Config{})
	s.SelectColor(3)
	lay := s.Layout()
	a := lay.CellCenter(Cell{1, 1})
	b := lay.CellCenter(Cell{10, 10})

	s.pointerEvent(1, a.X, a.Y, true, MouseButtonLeft)
	s.pointerEvent(2, b.X, b.Y, true, MouseButtonRight)
	s.Board().SetPixel(1, 1, 0)
	// Pointer 1 is still on (1,1), so holding it does not repaint.
	s.pointerEvent(1, a.X+1, a.Y, true, MouseButtonLeft)
	if got := s.Board().Get(1, 1); got != 0 {
		t.Errorf("(1,1) = %d after held in place, want 0", got)
	}
	if got := s.Board().Get(10, 10); got != 0 {
		t.Errorf("(10,10) = %d under the erasing pointer, want 0", got)
	}

	s.pointerEvent(1, 0, 0, false, MouseButtonLeft)
	s.pointerEvent(1, a.X, a.Y, true, MouseButtonLeft)
	if got := s.Board().Get(1, 1); got != 3 {
		t.Errorf("(1,1) = %d after a fresh press, want 3", got)
	}
}

func TestPointerButtonCapturedAtPress(t *testing.T) {
	s := newTestSession(t, Config{})
	s.Board().SetPixel(2, 0, 4)
	start := s.Layout().CellCenter(Cell{1, 0})
	next := s.Layout().CellCenter(Cell{2, 0})
	s.PointerDownButton(start.X, start.Y, MouseButtonRight)
	s.PointerMove(next.X, next.Y)
	if got := s.Board().Get(2, 0); got != 0 {
		t.Errorf("(2,0) = %d, want 0 from a right-button drag", got)
	}
}
