package darkmatter

import (
	"math"
	"math/rand"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Default zoom clamp range used when a scene descriptor does not override it.
const (
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 10.0
)

// shakeTickMs is the fixed frame-time unit by which a shake's remaining
// duration decays each tick.
const shakeTickMs = 16.0

// scrollAnim holds active scroll-to tweens for viewport X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// shakeState is the temporary camera shake applied on top of the viewport
// position. The offset is exactly (0, 0) whenever Remaining <= 0.
type shakeState struct {
	OffsetX   float64
	OffsetY   float64
	Intensity float64
	Remaining float64 // milliseconds
}

// ViewportSnapshot is the JSON-serializable form of a viewport's camera
// parameters, exported verbatim into save-state envelopes and restored on
// scene load.
type ViewportSnapshot struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Zoom       float64 `json:"zoom"`
	Angle      float64 `json:"angle"`
	PixelScale int     `json:"pixelScale"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// Viewport owns the camera parameters that define the world-to-screen
// mapping: position, zoom, rotation, shake, and pixel scale. All mutators
// re-clamp/normalize their inputs and mark the viewport dirty; the cached
// view matrix is recomputed at most once per tick by Refresh.
type Viewport struct {
	// X and Y are the world-space position the viewport centers on.
	// They may be written directly; the change is picked up on the next
	// tick. Prefer SetPosition/Move when an immediate transform is needed.
	X, Y float64

	// Width and Height are the logical screen dimensions in pixels.
	Width, Height float64

	// MinZoom and MaxZoom bound the zoom factor. Every zoom mutation
	// re-clamps into this range.
	MinZoom, MaxZoom float64

	// PixelScale is the integer world-unit-to-pixel multiplier (>= 1)
	// combined with zoom for pixel-perfect snapping.
	PixelScale int

	zoom  float64
	angle float64 // degrees, always normalized to [0, 360)
	shake shakeState

	// BoundsEnabled clamps the viewport position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	Bounds        Rect

	followTarget  *Node
	followOffsetX float64
	followOffsetY float64
	followLerp    float64

	scrollTween *scrollAnim
	zoomTween   *gween.Tween

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	dirty         bool

	observers []func(*Viewport)

	original ViewportSnapshot

	rng *rand.Rand

	// Last position seen by tick, for detecting direct X/Y writes.
	prevX, prevY float64
}

// NewViewport creates a viewport with the given logical dimensions, centered
// on the world origin at zoom 1.
func NewViewport(width, height float64) *Viewport {
	v := &Viewport{
		Width:      width,
		Height:     height,
		MinZoom:    DefaultMinZoom,
		MaxZoom:    DefaultMaxZoom,
		PixelScale: 1,
		zoom:       1,
		dirty:      true,
		rng:        rand.New(rand.NewSource(1)),
	}
	v.original = v.Snapshot()
	return v
}

// --- Mutators ---

// SetPosition moves the viewport center to the given world position.
func (v *Viewport) SetPosition(x, y float64) {
	v.X = x
	v.Y = y
	v.dirty = true
}

// Move shifts the viewport center by the given world-space delta.
func (v *Viewport) Move(dx, dy float64) {
	v.X += dx
	v.Y += dy
	v.dirty = true
}

// SetZoom sets the zoom factor, clamped into [MinZoom, MaxZoom].
func (v *Viewport) SetZoom(z float64) {
	v.zoom = clamp(z, v.MinZoom, v.MaxZoom)
	v.dirty = true
}

// ZoomBy multiplies the current zoom by factor, clamped into [MinZoom, MaxZoom].
func (v *Viewport) ZoomBy(factor float64) {
	v.SetZoom(v.zoom * factor)
}

// Zoom returns the current (clamped) zoom factor.
func (v *Viewport) Zoom() float64 { return v.zoom }

// SetAngle sets the rotation in degrees, normalized into [0, 360).
func (v *Viewport) SetAngle(deg float64) {
	v.angle = normalizeAngle(deg)
	v.dirty = true
}

// RotateBy adds the given degrees to the rotation, normalized into [0, 360).
func (v *Viewport) RotateBy(deg float64) {
	v.SetAngle(v.angle + deg)
}

// Angle returns the current rotation in degrees, in [0, 360).
func (v *Viewport) Angle() float64 { return v.angle }

// Shake starts a camera shake with the given intensity (max offset in world
// units at full strength) lasting durationMs milliseconds. The offset decays
// with the remaining duration and settles to exactly (0, 0) when it expires.
func (v *Viewport) Shake(intensity, durationMs float64) {
	v.shake.Intensity = intensity
	v.shake.Remaining = durationMs
	v.dirty = true
}

// ShakeOffset returns the current shake offset.
func (v *Viewport) ShakeOffset() (x, y float64) {
	return v.shake.OffsetX, v.shake.OffsetY
}

// SetShakeSeed reseeds the random source used for shake offsets.
// Deterministic replays and tests use this.
func (v *Viewport) SetShakeSeed(seed int64) {
	v.rng = rand.New(rand.NewSource(seed))
}

// SetPixelScale sets the integer pixel scale. Values below 1 are clamped to 1.
func (v *Viewport) SetPixelScale(scale int) {
	if scale < 1 {
		scale = 1
	}
	v.PixelScale = scale
	v.dirty = true
}

// --- Follow / scroll / zoom animation ---

// Follow makes the viewport track a node with the given offset and lerp
// factor. A lerp of 1.0 snaps immediately; lower values give smoother
// following.
func (v *Viewport) Follow(node *Node, offsetX, offsetY, lerp float64) {
	v.followTarget = node
	v.followOffsetX = offsetX
	v.followOffsetY = offsetY
	v.followLerp = lerp
	v.dirty = true
}

// Unfollow stops tracking the current target node.
func (v *Viewport) Unfollow() {
	v.followTarget = nil
}

// ScrollTo animates the viewport to the given world position over duration
// seconds.
func (v *Viewport) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	v.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(v.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(v.Y), float32(y), duration, easeFn),
	}
	v.dirty = true
}

// ZoomTo animates the zoom factor to the given target over duration seconds.
// The target is clamped into [MinZoom, MaxZoom] before the tween starts.
func (v *Viewport) ZoomTo(zoom float64, duration float32, easeFn ease.TweenFunc) {
	target := clamp(zoom, v.MinZoom, v.MaxZoom)
	v.zoomTween = gween.New(float32(v.zoom), float32(target), duration, easeFn)
	v.dirty = true
}

// SetBounds enables world-rect clamping of the viewport position.
func (v *Viewport) SetBounds(bounds Rect) {
	v.BoundsEnabled = true
	v.Bounds = bounds
	v.dirty = true
}

// ClearBounds disables world-rect clamping.
func (v *Viewport) ClearBounds() {
	v.BoundsEnabled = false
}

// --- Observers ---

// OnChange registers an observer invoked after every Refresh, in
// registration order. A panic inside one observer is recovered and logged;
// the remaining observers still run.
func (v *Viewport) OnChange(fn func(*Viewport)) {
	v.observers = append(v.observers, fn)
}

// --- Per-tick advancement ---

// tick advances follow targets, scroll/zoom tweens, and shake decay, then
// refreshes the cached matrices if anything marked the viewport dirty.
// Called once per executed scheduler tick.
func (v *Viewport) tick(dt float64) {
	// Direct X/Y field writes since the last tick.
	if v.X != v.prevX || v.Y != v.prevY {
		v.dirty = true
	}

	if v.followTarget != nil && !v.followTarget.IsDisposed() {
		targetX := v.followTarget.X + v.followOffsetX
		targetY := v.followTarget.Y + v.followOffsetY
		v.X += (targetX - v.X) * v.followLerp
		v.Y += (targetY - v.Y) * v.followLerp
		v.dirty = true
	}

	if v.scrollTween != nil {
		st := v.scrollTween
		if !st.doneX {
			val, done := st.tweenX.Update(float32(dt))
			v.X = float64(val)
			st.doneX = done
		}
		if !st.doneY {
			val, done := st.tweenY.Update(float32(dt))
			v.Y = float64(val)
			st.doneY = done
		}
		if st.doneX && st.doneY {
			v.scrollTween = nil
		}
		v.dirty = true
	}

	if v.zoomTween != nil {
		val, done := v.zoomTween.Update(float32(dt))
		v.zoom = clamp(float64(val), v.MinZoom, v.MaxZoom)
		if done {
			v.zoomTween = nil
		}
		v.dirty = true
	}

	v.advanceShake()

	if v.dirty {
		v.Refresh()
	}
	v.prevX, v.prevY = v.X, v.Y
}

// advanceShake decays the shake by one fixed frame-time unit and recomputes
// the random offset. The offset resets to exactly (0, 0) when the remaining
// duration reaches zero; no residual jitter survives.
func (v *Viewport) advanceShake() {
	if v.shake.Remaining <= 0 {
		return
	}
	v.shake.Remaining -= shakeTickMs
	if v.shake.Remaining > 0 {
		strength := v.shake.Intensity * (v.shake.Remaining / 1000)
		v.shake.OffsetX = (v.rng.Float64()*2 - 1) * strength
		v.shake.OffsetY = (v.rng.Float64()*2 - 1) * strength
	} else {
		v.shake.Remaining = 0
		v.shake.OffsetX = 0
		v.shake.OffsetY = 0
	}
	v.dirty = true
}

// Refresh re-clamps zoom, re-normalizes the angle, recomputes the cached
// view matrices, and notifies registered observers in registration order.
// The scheduler calls this once per tick when the viewport is dirty; callers
// that mutate the viewport outside the loop may call it directly.
func (v *Viewport) Refresh() {
	v.zoom = clamp(v.zoom, v.MinZoom, v.MaxZoom)
	v.angle = normalizeAngle(v.angle)
	if v.BoundsEnabled {
		v.clampToBounds()
	}
	v.computeMatrices()
	shakeActive := v.shake.Remaining > 0
	v.dirty = shakeActive // shake keeps refreshing until it expires

	for _, fn := range v.observers {
		v.notifyObserver(fn)
	}
}

// notifyObserver invokes one observer with panic isolation.
func (v *Viewport) notifyObserver(fn func(*Viewport)) {
	defer func() {
		if r := recover(); r != nil {
			warnf("viewport observer panicked: %v", r)
		}
	}()
	fn(v)
}

// clampToBounds restricts the viewport position so the visible area stays
// within Bounds. If the bounds are smaller than the visible area, the
// viewport centers on them.
func (v *Viewport) clampToBounds() {
	halfW := v.Width / (2 * v.zoom)
	halfH := v.Height / (2 * v.zoom)

	minX := v.Bounds.X + halfW
	maxX := v.Bounds.X + v.Bounds.Width - halfW
	minY := v.Bounds.Y + halfH
	maxY := v.Bounds.Y + v.Bounds.Height - halfH

	if minX > maxX {
		v.X = v.Bounds.X + v.Bounds.Width/2
	} else {
		v.X = math.Max(minX, math.Min(v.X, maxX))
	}
	if minY > maxY {
		v.Y = v.Bounds.Y + v.Bounds.Height/2
	} else {
		v.Y = math.Max(minY, math.Min(v.Y, maxY))
	}
}

// computeMatrices rebuilds the cached view and inverse-view matrices.
//
// World to screen: translate by (-X + shakeX, -Y + shakeY) relative to the
// screen center, scale by zoom, then rotate about the screen center:
//
//	view = Translate(cx, cy) * Rotate(-angle) * Scale(zoom) * Translate(-X+sx, -Y+sy)
func (v *Viewport) computeMatrices() {
	cx := v.Width / 2
	cy := v.Height / 2

	rad := v.angle * math.Pi / 180
	sin, cos := math.Sincos(-rad)
	z := v.zoom

	dx := -v.X + v.shake.OffsetX
	dy := -v.Y + v.shake.OffsetY

	a := z * cos
	b := z * sin
	c := -z * sin
	d := z * cos
	tx := cx + a*dx + c*dy
	ty := cy + b*dx + d*dy

	v.viewMatrix = [6]float64{a, b, c, d, tx, ty}
	v.invViewMatrix = invertAffine(v.viewMatrix)
}

// ensureMatrices recomputes the cached matrices if the viewport is dirty,
// without running the full Refresh (no observers, no shake advancement).
func (v *Viewport) ensureMatrices() {
	if v.dirty {
		v.zoom = clamp(v.zoom, v.MinZoom, v.MaxZoom)
		v.angle = normalizeAngle(v.angle)
		v.computeMatrices()
	}
}

// --- Coordinate conversion ---

// WorldToScreen converts world coordinates to screen coordinates.
func (v *Viewport) WorldToScreen(wx, wy float64) (sx, sy float64) {
	v.ensureMatrices()
	return transformPoint(v.viewMatrix, wx, wy)
}

// ScreenToWorld converts screen coordinates to world coordinates. Exact
// inverse of WorldToScreen up to floating-point tolerance; used for
// hit-testing with the same matrices as rendering.
func (v *Viewport) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	v.ensureMatrices()
	return transformPoint(v.invViewMatrix, sx, sy)
}

// ViewMatrix returns the cached view matrix, recomputing it if dirty.
func (v *Viewport) ViewMatrix() [6]float64 {
	v.ensureMatrices()
	return v.viewMatrix
}

// VisibleRect returns the axis-aligned world-space rectangle covered by the
// viewport dimensions at the current zoom, centered on (X, Y). Rotation is
// ignored; this is the rectangle chunk preloading and culling key off.
func (v *Viewport) VisibleRect() Rect {
	w := v.Width / v.zoom
	h := v.Height / v.zoom
	return Rect{X: v.X - w/2, Y: v.Y - h/2, Width: w, Height: h}
}

// --- Pixel snapping ---

// RoundToPixel snaps a position coordinate at the viewport's effective
// pixel scale (PixelScale x zoom).
func (v *Viewport) RoundToPixel(val float64) float64 {
	return RoundToPixel(val, EffectiveScale(v.PixelScale, v.zoom))
}

// CeilSize snaps a size at the viewport's effective pixel scale, ceiling on
// magnitude so bounding boxes never shrink.
func (v *Viewport) CeilSize(val float64) float64 {
	return CeilSizeToPixel(val, EffectiveScale(v.PixelScale, v.zoom))
}

// --- Snapshot / restore ---

// Snapshot exports the viewport's camera parameters.
func (v *Viewport) Snapshot() ViewportSnapshot {
	return ViewportSnapshot{
		X:          v.X,
		Y:          v.Y,
		Zoom:       v.zoom,
		Angle:      v.angle,
		PixelScale: v.PixelScale,
		Width:      v.Width,
		Height:     v.Height,
	}
}

// Restore applies a previously exported snapshot, re-clamping and
// re-normalizing its fields.
func (v *Viewport) Restore(s ViewportSnapshot) {
	v.X = s.X
	v.Y = s.Y
	v.zoom = clamp(s.Zoom, v.MinZoom, v.MaxZoom)
	v.angle = normalizeAngle(s.Angle)
	if s.PixelScale >= 1 {
		v.PixelScale = s.PixelScale
	}
	if s.Width > 0 {
		v.Width = s.Width
	}
	if s.Height > 0 {
		v.Height = s.Height
	}
	v.shake = shakeState{}
	v.dirty = true
}

// markOriginal records the current parameters as the scene-load snapshot
// that Reset returns to.
func (v *Viewport) markOriginal() {
	v.original = v.Snapshot()
}

// Reset restores the viewport to its scene-load snapshot and clears any
// follow target, tweens, and shake. Called on scene stop.
func (v *Viewport) Reset() {
	v.followTarget = nil
	v.scrollTween = nil
	v.zoomTween = nil
	v.Restore(v.original)
}
