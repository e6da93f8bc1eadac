package darkmatter

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// NewFPSOverlay creates a node that displays the scheduler's FPS estimate
// and frame count in the top-left screen corner. The readout refreshes
// every ~0.5 seconds. Requires an ebiten surface; on other surfaces the
// overlay draws nothing.
func NewFPSOverlay(e *Engine) *Node {
	img := ebiten.NewImage(120, 32)

	node := NewNode("fps_overlay")
	node.Depth = -1 << 20 // draw in front of everything

	var sinceUpdate float64
	var rendered bool

	node.AddBehavior(&FuncBehavior{
		OnLoop: func(dt float64) {
			sinceUpdate += dt
			if rendered && sinceUpdate < 0.5 {
				return
			}
			sinceUpdate = 0
			rendered = true

			img.Clear()
			// Semi-transparent background for readability
			img.Fill(color.RGBA{0, 0, 0, 128})
			ebitenutil.DebugPrint(img, fmt.Sprintf("FPS: %.0f\nFrame: %d",
				e.Scheduler.FPS(), e.Scheduler.FrameCount()))
		},
		OnDraw: func(s Surface) {
			es, ok := s.(*EbitenSurface)
			if !ok {
				return
			}
			// Screen space: bypass the view transform.
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(4, 4)
			es.Image().DrawImage(img, op)
		},
	})
	return node
}
