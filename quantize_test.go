package litebrite

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

func newTestQuantizer() *Quantizer {
	return &Quantizer{
		Layout:  Layout{Cols: 32, Rows: 24, Spacing: 40, Staggered: true},
		Palette: DefaultPalette(),
	}
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func encodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestQuantizeAllBlack(t *testing.T) {
	q := newTestQuantizer()
	cells, err := q.Quantize(bytes.NewReader(encodePNG(t, solidImage(64, 48, color.RGBA{0, 0, 0, 255}))))
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 32*24 {
		t.Fatalf("len = %d, want %d", len(cells), 32*24)
	}
	for i, c := range cells {
		if c != 0 {
			t.Fatalf("cell %d = %d, want 0", i, c)
		}
	}
}

func TestQuantizeSolidPaletteColor(t *testing.T) {
	q := newTestQuantizer()
	for index := 1; index <= q.Palette.Len(); index++ {
		e, _ := q.Palette.Entry(index)
		cells, err := q.Quantize(bytes.NewReader(encodePNG(t, solidImage(64, 48, e.RGB))))
		if err != nil {
			t.Fatal(err)
		}
		for i, c := range cells {
			if int(c) != index {
				t.Fatalf("%s: cell %d = %d, want %d", e.Name, i, c, index)
			}
		}
	}
}

func TestQuantizeFormats(t *testing.T) {
	green, _ := DefaultPalette().Entry(4)
	img := solidImage(32, 24, green.RGB)
	encoders := map[string]func(io.Writer, image.Image) error{
		"png":  png.Encode,
		"bmp":  bmp.Encode,
		"tiff": func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) },
		"gif": func(w io.Writer, m image.Image) error {
			// A paletted source keeps the fill exact.
			p := image.NewPaletted(m.Bounds(), color.Palette{color.Black, green.RGB})
			draw.Draw(p, p.Bounds(), m, image.Point{}, draw.Src)
			return gif.Encode(w, p, nil)
		},
	}
	for name, enc := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := enc(&buf, img); err != nil {
				t.Fatal(err)
			}
			cells, err := newTestQuantizer().Quantize(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if cells[0] != 4 || cells[len(cells)-1] != 4 {
				t.Errorf("corner cells = %d, %d; want 4, 4", cells[0], cells[len(cells)-1])
			}
		})
	}
}

func TestQuantizeLetterbox(t *testing.T) {
	q := newTestQuantizer()
	white, _ := q.Palette.Entry(8)
	// 4:1 into 4:3 leaves black bars above and below.
	canvas, err := q.Contain(solidImage(64, 16, white.RGB))
	if err != nil {
		t.Fatal(err)
	}
	cells := q.Sample(canvas)
	for row := 0; row < 24; row++ {
		y := q.Layout.CellCenter(Cell{0, row}).Y
		want := uint8(0)
		if y >= 320 && y < 640 {
			want = 8
		}
		for col := 0; col < 32; col++ {
			if got := cells[row*32+col]; got != want {
				t.Fatalf("cell (%d,%d) at y=%v = %d, want %d", col, row, y, got, want)
			}
		}
	}
}

func TestQuantizeThreshold(t *testing.T) {
	q := newTestQuantizer()
	tests := []struct {
		name    string
		r, g, b uint8
		empty   bool
	}{
		{"black", 0, 0, 0, true},
		{"just under", 29, 29, 29, true},
		{"one channel at threshold", 30, 0, 0, false},
		{"bright", 200, 20, 20, false},
	}
	for _, tt := range tests {
		got := q.classify(tt.r, tt.g, tt.b)
		if (got == 0) != tt.empty {
			t.Errorf("%s: classify = %d, want empty=%v", tt.name, got, tt.empty)
		}
	}

	q.Threshold = 100
	if got := q.classify(90, 90, 90); got != 0 {
		t.Errorf("classify(90,90,90) with threshold 100 = %d, want 0", got)
	}
}

func TestQuantizeStaggeredEdgeSample(t *testing.T) {
	q := newTestQuantizer()
	red, _ := q.Palette.Entry(1)
	canvas := solidImage(1280, 960, red.RGB)
	cells := q.Sample(canvas)
	// The last peg of an odd row is centered on the canvas edge.
	if got := cells[1*32+31]; got != 1 {
		t.Errorf("cell (31,1) = %d, want 1", got)
	}
}

func TestQuantizeDecodeError(t *testing.T) {
	_, err := newTestQuantizer().Quantize(strings.NewReader("not an image"))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
}

func TestQuantizeCanvasError(t *testing.T) {
	q := &Quantizer{Palette: DefaultPalette()}
	if _, err := q.Contain(solidImage(4, 4, color.RGBA{255, 0, 0, 255})); !errors.Is(err, ErrCanvas) {
		t.Errorf("zero layout err = %v, want ErrCanvas", err)
	}
}

func TestQuantizeAsync(t *testing.T) {
	q := newTestQuantizer()
	data := encodePNG(t, solidImage(8, 6, color.RGBA{0, 0, 0, 255}))
	ch := q.QuantizeAsync(context.Background(), bytes.NewReader(data))
	res, ok := <-ch
	if !ok {
		t.Fatal("channel closed without a result")
	}
	if res.Err != nil || len(res.Cells) != 32*24 {
		t.Errorf("result = %d cells, %v; want %d, nil", len(res.Cells), res.Err, 32*24)
	}
	if _, ok := <-ch; ok {
		t.Error("second receive succeeded, want closed channel")
	}
}

func TestQuantizeAsyncCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := <-newTestQuantizer().QuantizeAsync(ctx, strings.NewReader("x"))
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", res.Err)
	}
}
