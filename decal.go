package darkmatter

// Drawable renders a decal's visual at the given position on a surface.
// Implementations draw centered on (x, y) in the surface's current
// transform space.
type Drawable interface {
	Draw(s Surface, x, y float64, opts DecalOptions)
}

// DrawableFunc adapts a plain function to Drawable.
type DrawableFunc func(s Surface, x, y float64, opts DecalOptions)

func (f DrawableFunc) Draw(s Surface, x, y float64, opts DecalOptions) {
	f(s, x, y, opts)
}

// DecalOptions carries the per-decal draw parameters. Zero values mean
// defaults: scale 1, alpha 1, no rotation, drawable-native dimensions.
type DecalOptions struct {
	Rotation float64 // radians
	Scale    float64
	Alpha    float64
	Width    float64
	Height   float64
}

// withDefaults fills zero Scale/Alpha with 1.
func (o DecalOptions) withDefaults() DecalOptions {
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Alpha == 0 {
		o.Alpha = 1
	}
	return o
}

// Decal is a world-anchored persistent visual mark stored independently of
// the object that created it. Position is in chunk-local coordinates.
type Decal struct {
	X, Y     float64
	Drawable Drawable
	Options  DecalOptions
}

// DecalChunk owns the decals of one fixed-size square region of the world
// plane. Chunks are the unit of storage, streaming, and culling. When a
// canvas is available, decals are composited into it once at placement and
// the canvas is blitted per frame; otherwise the decal list is replayed.
type DecalChunk struct {
	// ChunkX and ChunkY are the chunk's world-space origin, always
	// multiples of the store's chunk size.
	ChunkX, ChunkY int

	size   float64
	decals []Decal
	canvas Surface

	// ageMs is the chunk's aggregate lifecycle state, advanced once per
	// tick. With a fade-in configured, young chunks blend in.
	ageMs  float64
	fadeIn float64
}

// Bounds returns the chunk's world-space rectangle.
func (c *DecalChunk) Bounds() Rect {
	return Rect{X: float64(c.ChunkX), Y: float64(c.ChunkY), Width: c.size, Height: c.size}
}

// IsVisible reports whether the chunk intersects the viewport's visible
// world rectangle.
func (c *DecalChunk) IsVisible(v *Viewport) bool {
	return c.Bounds().Intersects(v.VisibleRect())
}

// Decals returns the chunk's decal records. The returned slice MUST NOT be
// mutated by the caller.
func (c *DecalChunk) Decals() []Decal {
	return c.decals
}

// Alpha returns the chunk's current fade multiplier in [0, 1].
func (c *DecalChunk) Alpha() float64 {
	if c.fadeIn <= 0 {
		return 1
	}
	return clamp(c.ageMs/c.fadeIn, 0, 1)
}

// addDecal appends a decal record and, when a canvas exists, composites it
// immediately so the mark survives without being redrawn from scratch.
func (c *DecalChunk) addDecal(d Decal) {
	c.decals = append(c.decals, d)
	if c.canvas != nil {
		c.canvas.SetTransform(identityTransform)
		d.Drawable.Draw(c.canvas, d.X, d.Y, d.Options)
	}
}

// update advances the chunk's fade/aging state. Chunks never self-evict
// here; eviction is the store's preload pass's job.
func (c *DecalChunk) update(dt float64) {
	c.ageMs += dt * 1000
}

// draw composites the chunk onto target. The target's current transform is
// the view matrix; the chunk translates to its origin before delegating to
// its canvas or decal list.
func (c *DecalChunk) draw(target Surface) {
	alpha := c.Alpha()
	if alpha <= 0 {
		return
	}
	origin := [6]float64{1, 0, 0, 1, float64(c.ChunkX), float64(c.ChunkY)}

	if c.canvas != nil {
		target.DrawSurface(c.canvas, origin, alpha)
		return
	}

	// No canvas: replay the decal records through the live transform.
	saved := target.Transform()
	target.SetTransform(multiplyAffine(saved, origin))
	for i := range c.decals {
		d := &c.decals[i]
		opts := d.Options
		opts.Alpha *= alpha
		d.Drawable.Draw(target, d.X, d.Y, opts)
	}
	target.SetTransform(saved)
}
