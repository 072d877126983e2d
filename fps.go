package trellis

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// hud draws FPS/TPS and graph counts in the top-left corner. The text is
// refreshed every ~0.5 seconds into its own image.
type hud struct {
	img     *ebiten.Image
	elapsed float64
}

func (h *hud) update(e *Editor, dt float64) {
	if h.img == nil {
		// 200x64 fits four short lines of debug font.
		h.img = ebiten.NewImage(200, 64)
		h.elapsed = 0.5
	}
	h.elapsed += dt
	if h.elapsed < 0.5 {
		return
	}
	h.elapsed = 0

	h.img.Clear()
	h.img.Fill(color.RGBA{0, 0, 0, 128})
	g := e.graph
	ebitenutil.DebugPrint(h.img, fmt.Sprintf("FPS: %.1f  TPS: %.1f\nnodes %d  edges %d\ntool: %s  zoom %.2f",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		g.NodeCount(), g.EdgeCount(),
		e.interactor.Tool().Kind(), e.viewport.Zoom))
}

func (h *hud) draw(screen *ebiten.Image) {
	if h.img == nil {
		return
	}
	screen.DrawImage(h.img, nil)
}
