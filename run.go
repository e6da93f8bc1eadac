package darkmatter

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window for Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// VSync relies on the display's refresh pacing. When false, set
	// Engine.Scheduler.MaxFPS to gate the tick rate instead.
	VSync bool
	// ChunkCanvases gives decal chunks persistent offscreen canvases so
	// decals are composited once instead of replayed per frame.
	ChunkCanvases bool
}

// hostGame adapts the engine to ebiten's Game interface. Ticks run from
// Draw, which ebiten invokes once per displayed frame, so the timestamp
// and the frame's drawing surface arrive together.
type hostGame struct {
	engine  *Engine
	surface *EbitenSurface
}

func (g *hostGame) Update() error {
	if g.engine.Scheduler.State() == SchedulerStopped {
		return ebiten.Termination
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	if g.surface == nil || g.surface.target != screen {
		g.surface = NewEbitenSurface(screen)
		g.surface.SetSmoothing(false) // pixel-perfect output
	}
	g.engine.SetSurface(g.surface)
	g.engine.Scheduler.Tick(g.engine.clock.NowMs())
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(g.engine.Viewport.Width), int(g.engine.Viewport.Height)
}

// Run opens a window and drives the engine's tick loop until the window
// closes or the scheduler stops. A scene must be loaded first; Run returns
// ErrNoSceneLoaded otherwise.
func Run(e *Engine, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = int(e.Viewport.Width)
	}
	if cfg.Height <= 0 {
		cfg.Height = int(e.Viewport.Height)
	}

	if cfg.ChunkCanvases {
		e.Decals.SetCanvasFactory(func(w, h int) Surface {
			return NewOffscreenSurface(w, h)
		})
	}

	e.Scheduler.EnableVSync = cfg.VSync
	ebiten.SetVsyncEnabled(cfg.VSync)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)

	if err := e.Scheduler.Start(); err != nil {
		return err
	}
	return ebiten.RunGame(&hostGame{engine: e})
}
