package litebrite

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled screenshot of the next rendered frame. The PNG
// is written to ScreenshotDir with a timestamped filename. Safe to call from
// any goroutine.
func (s *Session) Screenshot(label string) {
	s.mu.Lock()
	s.screenshotQueue = append(s.screenshotQueue, label)
	s.mu.Unlock()
}

// takeScreenshots returns and clears the queued labels.
func (s *Session) takeScreenshots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.screenshotQueue) == 0 {
		return nil
	}
	labels := s.screenshotQueue
	s.screenshotQueue = nil
	return labels
}

// flushScreenshots writes img once for every queued label.
func (s *Session) flushScreenshots(img image.Image) {
	labels := s.takeScreenshots()
	if len(labels) == 0 {
		return
	}
	if err := os.MkdirAll(s.ScreenshotDir, 0o755); err != nil {
		Logger().Error("screenshot: mkdir", "dir", s.ScreenshotDir, "err", err)
		return
	}
	stamp := time.Now().Format("20060102_150405")
	for _, label := range labels {
		path := filepath.Join(s.ScreenshotDir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			Logger().Error("screenshot", "err", err)
			continue
		}
		Logger().Info("screenshot written", "path", path)
	}
}

// flushTargetScreenshots reads a GPU image back only when screenshots are
// queued.
func (s *Session) flushTargetScreenshots(target *ebiten.Image) {
	s.mu.Lock()
	pending := len(s.screenshotQueue) > 0
	s.mu.Unlock()
	if pending {
		s.flushScreenshots(readImage(target))
	}
}

// readImage copies an opaque GPU image into CPU memory.
func readImage(src *ebiten.Image) *image.RGBA {
	b := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	src.ReadPixels(img.Pix)
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
