package darkmatter

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLoadSceneAppliesViewport(t *testing.T) {
	e := NewEngine(Options{})
	desc := SceneDescriptor{
		Name:       "level1",
		Width:      1024,
		Height:     768,
		X:          100,
		Y:          -50,
		Zoom:       2,
		Angle:      45,
		PixelScale: 2,
	}
	if err := e.LoadScene(context.Background(), desc); err != nil {
		t.Fatal(err)
	}

	v := e.Viewport
	if v.Width != 1024 || v.Height != 768 {
		t.Errorf("dimensions = (%f,%f), want (1024,768)", v.Width, v.Height)
	}
	if v.X != 100 || v.Y != -50 {
		t.Errorf("position = (%f,%f), want (100,-50)", v.X, v.Y)
	}
	if v.Zoom() != 2 || v.Angle() != 45 || v.PixelScale != 2 {
		t.Errorf("zoom/angle/pixelScale = %f/%f/%d", v.Zoom(), v.Angle(), v.PixelScale)
	}
	if e.Scene() == nil || e.Scene().Name != "level1" {
		t.Error("scene not loaded")
	}
}

func TestLoadScenePreloadErrorAborts(t *testing.T) {
	// A failed Preload fails the whole load; Start hooks never run and no
	// scene is loaded.
	boom := errors.New("asset missing")
	started := false
	ok := NewNode("ok").AddBehavior(&FuncBehavior{
		OnStart: func() { started = true },
	})
	bad := NewNode("bad").AddBehavior(&FuncBehavior{
		OnPreload: func(context.Context) error { return boom },
	})

	e := NewEngine(Options{})
	err := e.LoadScene(context.Background(), SceneDescriptor{Nodes: []*Node{ok, bad}})
	if !errors.Is(err, boom) {
		t.Fatalf("LoadScene = %v, want wrapped %v", err, boom)
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error %q does not name the failing node", err)
	}
	if started {
		t.Error("Start ran despite failed preload")
	}
	if e.Scene() != nil {
		t.Error("scene loaded despite failed preload")
	}
}

func TestLoadScenePreloadsBeforeStarts(t *testing.T) {
	var order []string
	phase := func(name string) *FuncBehavior {
		return &FuncBehavior{
			OnPreload: func(context.Context) error {
				order = append(order, "preload:"+name)
				return nil
			},
			OnStart: func() { order = append(order, "start:"+name) },
		}
	}

	a := NewNode("a").AddBehavior(phase("a"))
	b := NewNode("b").AddBehavior(phase("b"))
	e := NewEngine(Options{})
	if err := e.LoadScene(context.Background(), SceneDescriptor{Nodes: []*Node{a, b}}); err != nil {
		t.Fatal(err)
	}

	want := []string{"preload:a", "preload:b", "start:a", "start:b"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestLoadSceneChunkSizeOverride(t *testing.T) {
	e := NewEngine(Options{})
	canvas := newStubSurface(256, 256)
	e.Decals.SetCanvasFactory(func(w, h int) Surface { return canvas })

	desc := SceneDescriptor{ChunkSize: 256}
	if err := e.LoadScene(context.Background(), desc); err != nil {
		t.Fatal(err)
	}
	if e.Decals.ChunkSize() != 256 {
		t.Errorf("chunk size = %d, want 256", e.Decals.ChunkSize())
	}
	// The canvas factory survives the store rebuild.
	chunk := e.AddDecal(10, 10, &recordDrawable{}, DecalOptions{})
	if chunk.canvas == nil {
		t.Error("rebuilt store lost the canvas factory")
	}
}

func TestLoadSceneChunkSizeKeepsFadeIn(t *testing.T) {
	// Rebuilding the store for a chunk-size override keeps the configured
	// fade-in.
	e := NewEngine(Options{DecalFadeInMs: 500})
	if err := e.LoadScene(context.Background(), SceneDescriptor{ChunkSize: 256}); err != nil {
		t.Fatal(err)
	}
	if e.Decals.FadeInMs != 500 {
		t.Fatalf("FadeInMs after chunk-size override = %f, want 500", e.Decals.FadeInMs)
	}
	chunk := e.AddDecal(10, 10, &recordDrawable{}, DecalOptions{})
	if chunk.Alpha() != 0 {
		t.Errorf("fresh chunk alpha = %f, want 0 (fading in)", chunk.Alpha())
	}
}

func TestStopSceneResetsViewport(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Scheduler.Start()
	e.SetViewportPosition(500, 500)
	e.SetViewportZoom(3)
	e.RotateViewport(90)

	e.StopScene()
	if e.Scheduler.State() != SchedulerStopped {
		t.Error("scheduler not stopped")
	}
	v := e.Viewport
	if v.X != 0 || v.Y != 0 || v.Zoom() != 1 || v.Angle() != 0 {
		t.Errorf("viewport not reset: pos=(%f,%f) zoom=%f angle=%f",
			v.X, v.Y, v.Zoom(), v.Angle())
	}
	if e.Scene() == nil {
		t.Error("StopScene unloaded the scene")
	}
}

func TestUnloadScene(t *testing.T) {
	destroyed := 0
	n := NewNode("n").AddBehavior(&FuncBehavior{
		OnDestroyed: func() { destroyed++ },
	})
	e := NewEngine(Options{})
	if err := e.LoadScene(context.Background(), SceneDescriptor{Nodes: []*Node{n}}); err != nil {
		t.Fatal(err)
	}
	e.AddDecal(10, 10, &recordDrawable{}, DecalOptions{})
	e.Scheduler.Start()

	e.UnloadScene()
	if e.Scene() != nil {
		t.Error("scene still loaded")
	}
	if destroyed != 1 {
		t.Errorf("destroy hooks = %d, want 1", destroyed)
	}
	if e.Decals.ChunkCount() != 0 {
		t.Error("decal chunks survived unload")
	}
	if e.Scheduler.State() != SchedulerStopped {
		t.Error("scheduler still running")
	}
	if err := e.Scheduler.Start(); !errors.Is(err, ErrNoSceneLoaded) {
		t.Errorf("Start after unload = %v, want ErrNoSceneLoaded", err)
	}
}

func TestLoadSceneReplacesPrevious(t *testing.T) {
	destroyed := false
	old := NewNode("old").AddBehavior(&FuncBehavior{
		OnDestroyed: func() { destroyed = true },
	})
	e := NewEngine(Options{})
	if err := e.LoadScene(context.Background(), SceneDescriptor{Name: "one", Nodes: []*Node{old}}); err != nil {
		t.Fatal(err)
	}
	if err := e.LoadScene(context.Background(), SceneDescriptor{Name: "two"}); err != nil {
		t.Fatal(err)
	}
	if !destroyed {
		t.Error("previous scene's nodes not destroyed")
	}
	if e.Scene().Name != "two" {
		t.Errorf("scene = %q, want %q", e.Scene().Name, "two")
	}
}

func TestRenderPass(t *testing.T) {
	// One tick: clear, install the view matrix, draw decals then nodes, then
	// restore the identity transform.
	var drawnUnder [6]float64
	n := NewNode("n").AddBehavior(&FuncBehavior{
		OnDraw: func(s Surface) { drawnUnder = s.Transform() },
	})
	e := NewEngine(Options{})
	surface := newStubSurface(800, 600)
	e.SetSurface(surface)
	if err := e.LoadScene(context.Background(), SceneDescriptor{Nodes: []*Node{n}}); err != nil {
		t.Fatal(err)
	}
	e.Scheduler.Start()
	e.Scheduler.Tick(0)

	if surface.clears != 1 {
		t.Errorf("clears = %d, want 1", surface.clears)
	}
	if drawnUnder != e.Viewport.ViewMatrix() {
		t.Error("node drawn under a transform other than the view matrix")
	}
	if surface.Transform() != identityTransform {
		t.Error("transform not restored to identity after the frame")
	}
}

func TestRenderDecalsBehindNodes(t *testing.T) {
	var order []string
	e := NewEngine(Options{})
	e.SetSurface(newStubSurface(800, 600))
	n := NewNode("n").AddBehavior(&FuncBehavior{
		OnDraw: func(Surface) { order = append(order, "node") },
	})
	if err := e.LoadScene(context.Background(), SceneDescriptor{Nodes: []*Node{n}}); err != nil {
		t.Fatal(err)
	}
	e.AddDecal(0, 0, DrawableFunc(func(Surface, float64, float64, DecalOptions) {
		order = append(order, "decal")
	}), DecalOptions{})

	e.Scheduler.Start()
	e.Scheduler.Tick(0)

	if len(order) != 2 || order[0] != "decal" || order[1] != "node" {
		t.Errorf("draw order = %v, want [decal node]", order)
	}
}

func TestRenderSkippedWithoutSurface(t *testing.T) {
	// A missing surface skips rendering for the frame; updates still run.
	looped := false
	e := newTestEngine(t, &FuncBehavior{
		OnLoop: func(float64) { looped = true },
	})
	e.Scheduler.Start()
	if !e.Scheduler.Tick(0) {
		t.Fatal("tick skipped")
	}
	if !looped {
		t.Error("update phases skipped without a surface")
	}
}

func TestFrameSink(t *testing.T) {
	var events []FrameEvent
	e := newTestEngine(t, nil)
	e.SetFrameSink(frameSinkFunc(func(ev FrameEvent) { events = append(events, ev) }))
	e.Scheduler.Start()
	e.Scheduler.Tick(0)
	e.Scheduler.Tick(16)

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[1].Frame != 2 || !approxEqual(events[1].Delta, 0.016, epsilon) {
		t.Errorf("event = %+v, want frame 2 delta 0.016", events[1])
	}
}

type frameSinkFunc func(FrameEvent)

func (f frameSinkFunc) EmitFrame(ev FrameEvent) { f(ev) }

func TestExportImportState(t *testing.T) {
	e := newTestEngine(t, nil)
	e.SetViewportPosition(123, -45)
	e.SetViewportZoom(2.5)
	e.SetViewportAngle(90)

	data, err := e.ExportState()
	if err != nil {
		t.Fatal(err)
	}

	e2 := NewEngine(Options{})
	if err := e2.ImportState(data); err != nil {
		t.Fatal(err)
	}
	v := e2.Viewport
	if v.X != 123 || v.Y != -45 {
		t.Errorf("position = (%f,%f), want (123,-45)", v.X, v.Y)
	}
	if v.Zoom() != 2.5 || v.Angle() != 90 {
		t.Errorf("zoom/angle = %f/%f, want 2.5/90", v.Zoom(), v.Angle())
	}
}

func TestImportStateRejectsGarbage(t *testing.T) {
	e := NewEngine(Options{})
	if err := e.ImportState([]byte("{not json")); err == nil {
		t.Error("ImportState accepted malformed input")
	}
}

func TestCameraAPIWrappers(t *testing.T) {
	e := NewEngine(Options{})
	e.SetViewportPosition(10, 20)
	e.MoveViewport(5, -5)
	if e.Viewport.X != 15 || e.Viewport.Y != 15 {
		t.Errorf("position = (%f,%f), want (15,15)", e.Viewport.X, e.Viewport.Y)
	}
	e.SetViewportZoom(2)
	e.ZoomViewport(2)
	if e.Viewport.Zoom() != 4 {
		t.Errorf("zoom = %f, want 4", e.Viewport.Zoom())
	}
	e.SetViewportAngle(350)
	e.RotateViewport(20)
	if e.Viewport.Angle() != 10 {
		t.Errorf("angle = %f, want 10", e.Viewport.Angle())
	}

	sx, sy := e.WorldToScreen(15, 15)
	wx, wy := e.ScreenToWorld(sx, sy)
	if !approxEqual(wx, 15, 1e-6) || !approxEqual(wy, 15, 1e-6) {
		t.Errorf("roundtrip = (%f,%f), want (15,15)", wx, wy)
	}
}

func TestEngineDecalWrappers(t *testing.T) {
	e := NewEngine(Options{})
	chunk := e.AddDecal(600, 100, &recordDrawable{}, DecalOptions{})
	if e.GetChunk(600, 100) != chunk {
		t.Error("GetChunk did not resolve the decal's chunk")
	}
	e.ClearDecalsAt(600, 100)
	if e.GetChunk(600, 100) != nil {
		t.Error("ClearDecalsAt left the chunk")
	}
	e.AddDecal(0, 0, &recordDrawable{}, DecalOptions{})
	e.ClearDecals()
	if e.Decals.ChunkCount() != 0 {
		t.Error("ClearDecals left chunks")
	}
}
