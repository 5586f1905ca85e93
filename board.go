package litebrite

import "sync"

// BoardSnapshot is an independent, point-in-time copy of the board. Renderers
// read snapshots only; the live grid is never shared.
type BoardSnapshot struct {
	Width, Height int
	Cells         []uint8
	// Version increases with every effective mutation of the source board.
	Version uint64
}

// At returns the color index at (col, row), or 0 when out of bounds.
func (s BoardSnapshot) At(col, row int) uint8 {
	if col < 0 || col >= s.Width || row < 0 || row >= s.Height {
		return 0
	}
	return s.Cells[row*s.Width+col]
}

// Board owns the peg grid. Its dimensions are fixed at construction. All
// methods are safe for concurrent use: pointer handlers mutate it while the
// presentation loop snapshots it once per frame.
type Board struct {
	mu      sync.RWMutex
	width   int
	height  int
	cells   []uint8
	version uint64
	// maxIndex is the largest color index the board accepts.
	maxIndex uint8
}

// NewBoard creates an all-empty board of width × height cells accepting
// every color index.
func NewBoard(width, height int) *Board {
	return NewBoardLimit(width, height, 255)
}

// NewBoardLimit creates an all-empty board that only stores color indices in
// [0, maxIndex], typically the palette length. Writes above it are ignored
// like out-of-bounds writes.
func NewBoardLimit(width, height, maxIndex int) *Board {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	maxIndex = max(0, min(maxIndex, 255))
	return &Board{
		width:    width,
		height:   height,
		cells:    make([]uint8, width*height),
		maxIndex: uint8(maxIndex),
	}
}

// Width returns the number of columns.
func (b *Board) Width() int { return b.width }

// Height returns the number of rows.
func (b *Board) Height() int { return b.height }

// MaxIndex returns the largest color index the board stores.
func (b *Board) MaxIndex() uint8 { return b.maxIndex }

// Len returns width*height.
func (b *Board) Len() int { return len(b.cells) }

// Version returns the current mutation counter.
func (b *Board) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Get returns the color index at (col, row), or 0 when out of bounds.
func (b *Board) Get(col, row int) uint8 {
	if !b.inBounds(col, row) {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cells[row*b.width+col]
}

// SetPixel overwrites one cell. Out-of-bounds coordinates are ignored: pointer
// math near the edges routinely produces them. So are indices above MaxIndex.
func (b *Board) SetPixel(col, row int, index uint8) {
	if !b.inBounds(col, row) || index > b.maxIndex {
		return
	}
	b.mu.Lock()
	i := row*b.width + col
	if b.cells[i] != index {
		b.cells[i] = index
		b.version++
	}
	b.mu.Unlock()
}

// SetBoard replaces the whole grid with data. It applies only when
// len(data) == width*height and every index is at most MaxIndex, and reports
// whether it did; rejected data leaves the board untouched.
func (b *Board) SetBoard(data []uint8) bool {
	if len(data) != len(b.cells) {
		return false
	}
	for _, v := range data {
		if v > b.maxIndex {
			return false
		}
	}
	b.mu.Lock()
	copy(b.cells, data)
	b.version++
	b.mu.Unlock()
	return true
}

// Clear empties every cell.
func (b *Board) Clear() {
	b.mu.Lock()
	clear(b.cells)
	b.version++
	b.mu.Unlock()
}

// Snapshot returns a copy of the grid that the caller owns.
func (b *Board) Snapshot() BoardSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cells := make([]uint8, len(b.cells))
	copy(cells, b.cells)
	return BoardSnapshot{Width: b.width, Height: b.height, Cells: cells, Version: b.version}
}

func (b *Board) inBounds(col, row int) bool {
	return col >= 0 && col < b.width && row >= 0 && row < b.height
}
