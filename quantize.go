package litebrite

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	// Formats accepted by Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultThreshold is the channel value below which a sampled color counts
// as black and leaves the cell empty.
const DefaultThreshold = 30

// Quantizer downsamples an image to board data. The image is fitted into
// the layout's canvas the same way the board is rendered, then every cell
// samples the pixel under its peg center.
type Quantizer struct {
	Layout  Layout
	Palette *Palette
	// Threshold: when all of R, G and B are below it the cell is empty.
	// Zero means DefaultThreshold.
	Threshold uint8
	// Scaler resamples the image into the canvas. Nil means ApproxBiLinear.
	Scaler draw.Scaler
}

// QuantizeResult is the outcome of an asynchronous quantization.
type QuantizeResult struct {
	Cells []uint8
	Err   error
}

// Quantize decodes r and returns width*height color indices.
func (q *Quantizer) Quantize(r io.Reader) ([]uint8, error) {
	img, err := q.Decode(r)
	if err != nil {
		return nil, err
	}
	canvas, err := q.Contain(img)
	if err != nil {
		return nil, err
	}
	return q.Sample(canvas), nil
}

// QuantizeAsync runs Quantize on its own goroutine. The channel receives
// exactly one result and is then closed. If ctx ends first the result
// carries ctx.Err().
func (q *Quantizer) QuantizeAsync(ctx context.Context, r io.Reader) <-chan QuantizeResult {
	out := make(chan QuantizeResult, 1)
	go func() {
		defer close(out)
		cells, err := q.Quantize(r)
		if cerr := ctx.Err(); cerr != nil {
			out <- QuantizeResult{Err: cerr}
			return
		}
		out <- QuantizeResult{Cells: cells, Err: err}
	}()
	return out
}

// Decode reads a PNG, JPEG, GIF, BMP, TIFF or WebP image.
func (q *Quantizer) Decode(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty %s image", ErrDecode, format)
	}
	Logger().Debug("image decoded", "format", format, "width", b.Dx(), "height", b.Dy())
	return img, nil
}

// Contain scales img uniformly to fit the layout's canvas, centered on
// black.
func (q *Quantizer) Contain(img image.Image) (*image.RGBA, error) {
	cw, ch := q.Layout.CanvasSize()
	if cw <= 0 || ch <= 0 {
		return nil, fmt.Errorf("%w: canvas %dx%d", ErrCanvas, cw, ch)
	}
	sb := img.Bounds()
	iw, ih := sb.Dx(), sb.Dy()
	if iw <= 0 || ih <= 0 {
		return nil, fmt.Errorf("%w: image %dx%d", ErrCanvas, iw, ih)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, cw, ch))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	scale := math.Min(float64(cw)/float64(iw), float64(ch)/float64(ih))
	dw := int(math.Round(float64(iw) * scale))
	dh := int(math.Round(float64(ih) * scale))
	x0 := (cw - dw) / 2
	y0 := (ch - dh) / 2
	dr := image.Rect(x0, y0, x0+dw, y0+dh)

	scaler := q.Scaler
	if scaler == nil {
		scaler = draw.ApproxBiLinear
	}
	scaler.Scale(canvas, dr, img, sb, draw.Src, nil)
	return canvas, nil
}

// Sample classifies the canvas pixel under every peg center. Centers that
// fall on the canvas edge (the last peg of a staggered row) read the
// nearest pixel inside.
func (q *Quantizer) Sample(canvas *image.RGBA) []uint8 {
	lay := q.Layout
	cells := make([]uint8, lay.Cols*lay.Rows)
	b := canvas.Bounds()
	if b.Empty() {
		return cells
	}
	for row := 0; row < lay.Rows; row++ {
		for col := 0; col < lay.Cols; col++ {
			c := lay.CellCenter(Cell{Col: col, Row: row})
			x := min(max(int(math.Floor(c.X)), b.Min.X), b.Max.X-1)
			y := min(max(int(math.Floor(c.Y)), b.Min.Y), b.Max.Y-1)
			px := canvas.RGBAAt(x, y)
			cells[row*lay.Cols+col] = q.classify(px.R, px.G, px.B)
		}
	}
	return cells
}

// classify maps a sampled color to a color index, 0 for near-black.
func (q *Quantizer) classify(r, g, b uint8) uint8 {
	t := q.Threshold
	if t == 0 {
		t = DefaultThreshold
	}
	if r < t && g < t && b < t {
		return 0
	}
	return uint8(q.Palette.Nearest(r, g, b))
}
