package darkmatter

import "time"

// render composites one frame: visible decal chunks first (world
// decoration sits behind objects), then the flattened scene nodes in paint
// order (higher Depth first). The surface's transform is set to the view
// matrix so draw hooks work in world coordinates.
//
// A missing surface aborts the render pass for this frame only; the loop
// continues and retries next tick. A panic in one node's draw hook means
// that object doesn't render this frame; everything else still does.
func (e *Engine) render() {
	surface := e.surface
	if surface == nil {
		if e.debug {
			warnf("render surface unavailable, frame skipped")
		}
		return
	}

	var t0 time.Time
	if e.debug {
		t0 = time.Now()
	}

	surface.Clear()
	surface.SetTransform(e.Viewport.ViewMatrix())

	chunksDrawn := e.Decals.Draw(surface, e.Viewport)

	drawList := e.scene.snapshotDrawable()
	for _, n := range drawList {
		for _, b := range n.Behaviors {
			bb := b
			safePhase(n, "draw", func() { bb.Draw(surface) })
		}
	}

	surface.SetTransform(identityTransform)

	if e.debug {
		e.stats = frameStats{
			renderTime: time.Since(t0),
			nodeCount:  len(drawList),
			chunkCount: chunksDrawn,
		}
		e.debugLogFrame()
	}
}
