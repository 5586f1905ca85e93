package litebrite

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// KageBackend evaluates the pegboard shader once per output pixel on the GPU.
// The board is uploaded as a Cols × Rows texture only when its version
// changes; lighting parameters are uploaded as uniforms every frame.
type KageBackend struct {
	synth    *Synthesizer
	shader   *ebiten.Shader
	board    *ebiten.Image
	target   *ebiten.Image
	pixels   []byte
	uniforms map[string]any
	vertices [4]ebiten.Vertex
	indices  []uint16
	shaderOp ebiten.DrawTrianglesShaderOptions
	version  uint64
	primed   bool
	closed   bool
}

// NewKageBackend compiles the shader and allocates the board texture and the
// width × height target. Failure wraps ErrBackendUnavailable.
func NewKageBackend(synth *Synthesizer, width, height int) (b *KageBackend, err error) {
	if width <= 0 || height <= 0 || synth.Layout.Cols <= 0 || synth.Layout.Rows <= 0 {
		return nil, fmt.Errorf("%w: empty %dx%d target", ErrBackendUnavailable, width, height)
	}
	// Ebitengine panics when no graphics driver can be initialized.
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = fmt.Errorf("%w: %v", ErrBackendUnavailable, r)
		}
	}()

	shader, err := ensurePegboardShader()
	if err != nil {
		return nil, err
	}
	cols, rows := synth.Layout.Cols, synth.Layout.Rows
	b = &KageBackend{
		synth:    synth,
		shader:   shader,
		board:    ebiten.NewImage(cols, rows),
		target:   ebiten.NewImage(width, height),
		pixels:   make([]byte, cols*rows*4),
		uniforms: make(map[string]any, 32),
		indices:  []uint16{0, 1, 2, 1, 3, 2},
	}
	b.setupQuad(float32(width), float32(height), float32(cols), float32(rows))
	b.shaderOp.Uniforms = b.uniforms
	b.shaderOp.Images[0] = b.board
	return b, nil
}

// setupQuad covers the whole target with two triangles. The source
// coordinates span the board texture; the shader works from the destination
// position instead.
func (b *KageBackend) setupQuad(w, h, sw, sh float32) {
	corners := [4][4]float32{
		{0, 0, 0, 0},
		{w, 0, sw, 0},
		{0, h, 0, sh},
		{w, h, sw, sh},
	}
	for i, c := range corners {
		b.vertices[i] = ebiten.Vertex{
			DstX: c[0], DstY: c[1],
			SrcX: c[2], SrcY: c[3],
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		}
	}
}

// Name returns "kage".
func (b *KageBackend) Name() string { return "kage" }

// Target returns the offscreen image holding the last frame.
func (b *KageBackend) Target() *ebiten.Image { return b.target }

// Render uploads changed board state and parameters, then runs the shader.
func (b *KageBackend) Render(f Frame) (err error) {
	if b.closed {
		return fmt.Errorf("%w: kage backend closed", ErrBackendLost)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrBackendLost, r)
		}
	}()

	if !b.primed || f.Board.Version != b.version {
		b.uploadBoard(f.Board)
		b.version = f.Board.Version
		b.primed = true
	}
	b.synth.shaderUniforms(b.uniforms, f)
	b.target.DrawTrianglesShader(b.vertices[:], b.indices, b.shader, &b.shaderOp)
	return nil
}

// uploadBoard writes one texel per cell: the resolved peg color, fully
// opaque, or transparent black for empty cells.
func (b *KageBackend) uploadBoard(snap BoardSnapshot) {
	clear(b.pixels)
	cols, rows := b.synth.Layout.Cols, b.synth.Layout.Rows
	for row := 0; row < rows && row < snap.Height; row++ {
		for col := 0; col < cols && col < snap.Width; col++ {
			c, ok := b.synth.Palette.Color(int(snap.Cells[row*snap.Width+col]))
			if !ok {
				continue
			}
			rgba := c.RGBA()
			i := (row*cols + col) * 4
			b.pixels[i] = rgba.R
			b.pixels[i+1] = rgba.G
			b.pixels[i+2] = rgba.B
			b.pixels[i+3] = 0xff
		}
	}
	b.board.WritePixels(b.pixels)
}

// Close deallocates the GPU images.
func (b *KageBackend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.board.Deallocate()
	b.target.Deallocate()
	return nil
}
