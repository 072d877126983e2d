package trellis

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

// Screenshot asks for the next drawn frame to be saved as
// <ScreenshotDir>/<timestamp>_<label>.png.
func (e *Editor) Screenshot(label string) {
	e.screenshotQueue = append(e.screenshotQueue, label)
}

// flushScreenshots runs at the end of Draw. The frame is read back once no
// matter how many labels are queued.
func (e *Editor) flushScreenshots(screen *ebiten.Image) {
	if len(e.screenshotQueue) == 0 {
		return
	}
	labels := e.screenshotQueue
	e.screenshotQueue = e.screenshotQueue[:0]

	if err := os.MkdirAll(e.ScreenshotDir, 0o755); err != nil {
		e.logger.Error("screenshot directory", "dir", e.ScreenshotDir, "error", err)
		return
	}
	frame := captureFrame(screen)
	stamp := time.Now().Format("20060102_150405")
	for _, label := range labels {
		path := filepath.Join(e.ScreenshotDir, stamp+"_"+sanitizeLabel(label)+".png")
		if err := writePNG(path, frame); err != nil {
			e.logger.Error("screenshot", "label", label, "error", err)
			continue
		}
		e.logger.Info("screenshot saved", "path", path, "revision", e.graph.Revision())
	}
}

// captureFrame reads the screen and undoes Ebitengine's premultiplied alpha.
func captureFrame(screen *ebiten.Image) *image.NRGBA {
	size := screen.Bounds().Size()
	img := image.NewNRGBA(image.Rectangle{Max: size})
	screen.ReadPixels(img.Pix)
	for px := img.Pix; len(px) >= 4; px = px[4:] {
		a := int(px[3])
		if a == 0 || a == 255 {
			continue
		}
		for c := range 3 {
			px[c] = uint8(min(int(px[c])*255/a, 255))
		}
	}
	return img
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("screenshot: encode %s: %w", path, err)
	}
	return nil
}

// sanitizeLabel keeps ASCII letters, digits, '-' and '.', and replaces
// everything else with '_'. Blank labels become "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
