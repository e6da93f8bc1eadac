package darkmatter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Options configures a new Engine. Zero values fall back to defaults.
type Options struct {
	// Width and Height are the logical screen dimensions.
	Width, Height float64
	// ChunkSize overrides the decal chunk edge length in world units.
	ChunkSize int
	// PreloadRadius overrides how many chunks beyond the visible rectangle
	// are preloaded each tick.
	PreloadRadius int
	// DecalFadeInMs fades freshly created decal chunks in over this many
	// milliseconds. Zero disables the fade.
	DecalFadeInMs float64
	// Debug enables diagnostic warnings and per-frame render stats.
	Debug bool
	// Clock supplies timestamps for hosts that drive the loop through Run.
	// Defaults to the monotonic system clock.
	Clock TimeSource
}

// FrameEvent is published to an optional FrameSink after every executed
// tick. The ecs sub-module bridges these into a Donburi world.
type FrameEvent struct {
	Delta float64
	FPS   float64
	Frame uint64
}

// FrameSink receives per-tick events. See the ecs sub-module for a
// Donburi-backed implementation.
type FrameSink interface {
	EmitFrame(event FrameEvent)
}

// Engine is the explicit context object tying the runtime together:
// scheduler, viewport, decal store, scene, and render surface. It is passed
// by reference wherever the subsystems need each other; there is no
// ambient global.
//
// Everything on the Engine is mutated exclusively from the tick's logical
// thread; camera and decal calls made mid-frame from a node's Loop are safe
// because the whole tick is synchronous.
type Engine struct {
	Viewport  *Viewport
	Decals    *DecalChunkStore
	Scheduler *FrameScheduler

	scene   *Scene
	surface Surface
	clock   TimeSource

	preloadRadius int
	debug         bool
	frameSink     FrameSink

	stats frameStats
}

// NewEngine creates an engine with the given options.
func NewEngine(opts Options) *Engine {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.PreloadRadius <= 0 {
		opts.PreloadRadius = DefaultPreloadRadius
	}
	if opts.Clock == nil {
		opts.Clock = NewSystemClock()
	}

	e := &Engine{
		Viewport:      NewViewport(opts.Width, opts.Height),
		Decals:        NewDecalChunkStore(opts.ChunkSize),
		clock:         opts.Clock,
		preloadRadius: opts.PreloadRadius,
		debug:         opts.Debug,
	}
	e.Decals.FadeInMs = opts.DecalFadeInMs
	e.Scheduler = newFrameScheduler(e)
	return e
}

// SetSurface installs the drawing surface the render pass composites onto.
// A nil surface aborts the render pass for the frame (the loop continues);
// hosts that can never provide one should not Start at all.
func (e *Engine) SetSurface(s Surface) {
	e.surface = s
}

// Surface returns the current drawing surface, or nil.
func (e *Engine) Surface() Surface {
	return e.surface
}

// SetFrameSink installs an optional per-tick event sink.
func (e *Engine) SetFrameSink(sink FrameSink) {
	e.frameSink = sink
}

// SetDebug toggles diagnostic warnings and per-frame render stats.
func (e *Engine) SetDebug(enabled bool) {
	e.debug = enabled
	if e.scene != nil {
		e.scene.debug = enabled
	}
}

// Clock returns the engine's time source.
func (e *Engine) Clock() TimeSource {
	return e.clock
}

// Scene returns the loaded scene, or nil.
func (e *Engine) Scene() *Scene {
	return e.scene
}

// --- Scene lifecycle ---

// LoadScene instantiates a scene from its descriptor: applies the initial
// viewport settings and streaming overrides, runs every behavior's Preload,
// then every behavior's Start. A Preload error fails the load and leaves no
// scene loaded.
func (e *Engine) LoadScene(ctx context.Context, desc SceneDescriptor) error {
	if e.scene != nil {
		e.UnloadScene()
	}

	v := e.Viewport
	if desc.Width > 0 {
		v.Width = desc.Width
	}
	if desc.Height > 0 {
		v.Height = desc.Height
	}
	v.X = desc.X
	v.Y = desc.Y
	if desc.Zoom > 0 {
		v.SetZoom(desc.Zoom)
	} else {
		v.SetZoom(1)
	}
	v.SetAngle(desc.Angle)
	if desc.PixelScale >= 1 {
		v.PixelScale = desc.PixelScale
	}
	v.markOriginal()

	if desc.ChunkSize > 0 {
		factory := e.Decals.canvasFactory
		fadeIn := e.Decals.FadeInMs
		e.Decals = NewDecalChunkStore(desc.ChunkSize)
		e.Decals.canvasFactory = factory
		e.Decals.FadeInMs = fadeIn
	} else {
		e.Decals.ClearDecals()
	}
	if desc.PreloadRadius > 0 {
		e.preloadRadius = desc.PreloadRadius
	}

	scene := newScene(desc.Name, desc.Nodes)
	scene.debug = e.debug

	var preloadErr error
	Traverse(scene.roots, func(n *Node) {
		if preloadErr != nil {
			return
		}
		for _, b := range n.Behaviors {
			if err := b.Preload(ctx); err != nil {
				preloadErr = fmt.Errorf("preload node %q: %w", n.Name, err)
				return
			}
		}
	})
	if preloadErr != nil {
		return preloadErr
	}

	for _, n := range scene.roots {
		scene.startSubtree(n)
	}

	e.scene = scene
	return nil
}

// StopScene stops the scheduler and resets the viewport to its scene-load
// snapshot. The scene stays loaded and can be started again.
func (e *Engine) StopScene() {
	e.Scheduler.Stop()
	e.Viewport.Reset()
}

// UnloadScene stops the loop, destroys every node (invoking OnDestroy
// hooks), and discards all decal chunks.
func (e *Engine) UnloadScene() {
	e.Scheduler.Stop()
	if e.scene != nil {
		e.scene.destroy()
		e.scene = nil
	}
	e.Decals.ClearDecals()
	e.Viewport.Reset()
}

// --- Tick body ---

// step runs one executed tick: viewport refresh (if dirty), chunk
// preload/evict and fade update, the three update phases across the whole
// tree, then the render pass. Structural mutations queued during the tick
// apply at the end.
func (e *Engine) step(dt float64) {
	scene := e.scene
	scene.locked = true

	e.Viewport.tick(dt)
	e.Decals.Preload(e.Viewport, e.preloadRadius)
	e.Decals.Update(dt)

	// Each phase completes for every active node before the next begins.
	nodes := scene.snapshotActive()
	for _, n := range nodes {
		for _, b := range n.Behaviors {
			bb := b
			safePhase(n, "beginLoop", func() { bb.BeginLoop(dt) })
		}
	}
	for _, n := range nodes {
		for _, b := range n.Behaviors {
			bb := b
			safePhase(n, "loop", func() { bb.Loop(dt) })
		}
	}
	for _, n := range nodes {
		for _, b := range n.Behaviors {
			bb := b
			safePhase(n, "endLoop", func() { bb.EndLoop(dt) })
		}
	}

	e.render()

	scene.locked = false
	scene.applyPending()

	if e.frameSink != nil {
		e.frameSink.EmitFrame(FrameEvent{
			Delta: dt,
			FPS:   e.Scheduler.fps,
			Frame: e.Scheduler.frameCount,
		})
	}
}

// --- Camera API ---

// SetViewportPosition moves the viewport center to a world position.
func (e *Engine) SetViewportPosition(x, y float64) { e.Viewport.SetPosition(x, y) }

// MoveViewport shifts the viewport center by a world-space delta.
func (e *Engine) MoveViewport(dx, dy float64) { e.Viewport.Move(dx, dy) }

// SetViewportZoom sets the zoom factor, clamped into [MinZoom, MaxZoom].
func (e *Engine) SetViewportZoom(zoom float64) { e.Viewport.SetZoom(zoom) }

// ZoomViewport multiplies the current zoom by factor, clamped.
func (e *Engine) ZoomViewport(factor float64) { e.Viewport.ZoomBy(factor) }

// SetViewportAngle sets the rotation in degrees, normalized to [0, 360).
func (e *Engine) SetViewportAngle(deg float64) { e.Viewport.SetAngle(deg) }

// RotateViewport adds degrees to the rotation, normalized to [0, 360).
func (e *Engine) RotateViewport(deg float64) { e.Viewport.RotateBy(deg) }

// ShakeViewport starts a camera shake.
func (e *Engine) ShakeViewport(intensity, durationMs float64) {
	e.Viewport.Shake(intensity, durationMs)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (e *Engine) WorldToScreen(wx, wy float64) (float64, float64) {
	return e.Viewport.WorldToScreen(wx, wy)
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (e *Engine) ScreenToWorld(sx, sy float64) (float64, float64) {
	return e.Viewport.ScreenToWorld(sx, sy)
}

// OnViewportChange registers a viewport-change observer.
func (e *Engine) OnViewportChange(fn func(*Viewport)) {
	e.Viewport.OnChange(fn)
}

// --- Decal API ---

// AddDecal stores a world-anchored decal, creating its chunk if needed.
func (e *Engine) AddDecal(x, y float64, drawable Drawable, opts DecalOptions) *DecalChunk {
	return e.Decals.AddDecal(x, y, drawable, opts)
}

// ClearDecals discards every decal chunk.
func (e *Engine) ClearDecals() { e.Decals.ClearDecals() }

// ClearDecalsAt discards the chunk containing the given world position.
func (e *Engine) ClearDecalsAt(x, y float64) { e.Decals.ClearDecalsAt(x, y) }

// GetChunk returns the chunk containing the world position, or nil.
func (e *Engine) GetChunk(x, y float64) *DecalChunk {
	return e.Decals.GetChunk(x, y)
}

// --- Save state ---

// SaveState is the JSON envelope used by the external save feature. The
// runtime owns only the viewport fields; serialized nodes pass through
// untouched.
type SaveState struct {
	SceneName       string            `json:"sceneName"`
	SerializedNodes []json.RawMessage `json:"serializedNodes"`
	Viewport        ViewportSnapshot  `json:"viewport"`
	Timestamp       int64             `json:"timestamp"`
}

// ExportState serializes the current scene name and viewport parameters.
func (e *Engine) ExportState() ([]byte, error) {
	state := SaveState{
		Viewport:  e.Viewport.Snapshot(),
		Timestamp: time.Now().UnixMilli(),
	}
	if e.scene != nil {
		state.SceneName = e.scene.Name
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("export state: %w", err)
	}
	return data, nil
}

// ImportState restores the viewport fields from a previously exported
// state. Node restoration belongs to the external save feature.
func (e *Engine) ImportState(data []byte) error {
	var state SaveState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("import state: %w", err)
	}
	e.Viewport.Restore(state.Viewport)
	return nil
}
