// Package darkmatter is an interactive 2D runtime for [Ebitengine].
//
// Darkmatter drives a per-frame update/render loop over a hierarchical
// scene of objects, maintains a virtual camera with zoom, rotation, and
// shake, and overlays world-anchored decals that persist across frames
// through a streaming chunk cache.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and
// drives the tick loop for you:
//
//	engine := darkmatter.NewEngine(darkmatter.Options{Width: 800, Height: 600})
//	engine.LoadScene(ctx, darkmatter.SceneDescriptor{
//		Name: "level1", Width: 800, Height: 600, Zoom: 1,
//		Nodes: []*darkmatter.Node{player},
//	})
//	darkmatter.Run(engine, darkmatter.RunConfig{Title: "My Game", VSync: true})
//
// For full control, call [FrameScheduler.Tick] yourself with monotonic
// millisecond timestamps from your host's animation callback.
//
// # Scene graph
//
// Scenes hold trees of [Node] values. A node carries identity, world
// position, a paint [Node.Depth], and a typed list of [GameBehavior]
// hooks; embed [BaseBehavior] to implement only the hooks you need.
// Each tick runs BeginLoop, Loop, and EndLoop across the whole tree in
// that order before the render pass draws nodes back-to-front.
//
// # Camera
//
// [Viewport] owns the world-to-screen mapping: position, zoom (clamped),
// rotation (normalized degrees), temporary shake, and pixel-perfect
// snapping at PixelScale x zoom. WorldToScreen and ScreenToWorld are exact
// inverses and back both rendering and hit-testing. Animated scrolls and
// zooms tween via [gween].
//
// # Decals
//
// [DecalChunkStore] partitions the world plane into fixed-size chunks,
// preloads chunks near the viewport, and evicts chunks far from it.
// Decals are ephemeral decoration: eviction discards them, which is what
// bounds memory.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package darkmatter
