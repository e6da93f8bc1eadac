package darkmatter

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Surface is the abstract 2D drawing target the runtime renders against.
// The platform layer supplies the implementation; the core never assumes a
// specific graphics API beyond these primitives. Coordinates passed to the
// primitives are transformed by the surface's current transform, so the
// renderer can install a view matrix and let nodes draw in world space.
type Surface interface {
	// Size returns the surface dimensions in pixels.
	Size() (w, h float64)
	// Clear resets the surface to transparent black.
	Clear()
	// SetTransform replaces the current transform.
	SetTransform(m [6]float64)
	// Transform returns the current transform.
	Transform() [6]float64
	// SetSmoothing toggles texture smoothing/antialiasing. Pixel-perfect
	// output disables it.
	SetSmoothing(enabled bool)
	// FillRect fills a rectangle given in transform-space coordinates.
	FillRect(r Rect, c Color)
	// StrokeRect outlines a rectangle. lineWidth is in output pixels.
	StrokeRect(r Rect, lineWidth float64, c Color)
	// FillPath fills the polygon described by points.
	FillPath(points []Vec2, c Color)
	// StrokePath draws connected line segments through points.
	StrokePath(points []Vec2, lineWidth float64, c Color)
	// DrawSurface composites src onto this surface with the given transform
	// (applied on top of the current transform) and alpha multiplier.
	DrawSurface(src Surface, transform [6]float64, alpha float64)
}

// WhitePixel is a 1x1 white image used for solid-color triangle fills.
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(color.White)
}

// toNRGBA converts a Color to a non-premultiplied color.NRGBA.
func (c Color) toNRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp(c.R, 0, 1) * 255),
		G: uint8(clamp(c.G, 0, 1) * 255),
		B: uint8(clamp(c.B, 0, 1) * 255),
		A: uint8(clamp(c.A, 0, 1) * 255),
	}
}

// EbitenSurface implements Surface on top of an *ebiten.Image target.
// Offscreen instances back decal chunk canvases; the host wraps the frame
// screen in one for the render pass.
type EbitenSurface struct {
	target    *ebiten.Image
	transform [6]float64
	smoothing bool

	// Reused geometry buffers for path fills.
	verts []ebiten.Vertex
	inds  []uint16
}

// NewEbitenSurface wraps an existing ebiten image (typically the frame
// screen) as a Surface.
func NewEbitenSurface(target *ebiten.Image) *EbitenSurface {
	return &EbitenSurface{target: target, transform: identityTransform}
}

// NewOffscreenSurface creates a persistent offscreen canvas of the given
// size. Decal chunks composite into these once and blit them per frame.
func NewOffscreenSurface(w, h int) *EbitenSurface {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return NewEbitenSurface(ebiten.NewImage(w, h))
}

// Image returns the underlying *ebiten.Image for direct manipulation.
func (s *EbitenSurface) Image() *ebiten.Image {
	return s.target
}

// Size returns the target dimensions in pixels.
func (s *EbitenSurface) Size() (float64, float64) {
	b := s.target.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// Clear resets the target to transparent black.
func (s *EbitenSurface) Clear() {
	s.target.Clear()
}

// SetTransform replaces the current transform.
func (s *EbitenSurface) SetTransform(m [6]float64) {
	s.transform = m
}

// Transform returns the current transform.
func (s *EbitenSurface) Transform() [6]float64 {
	return s.transform
}

// SetSmoothing selects linear (true) or nearest (false) filtering for
// surface blits. Path and rect fills are always drawn without antialiasing
// when smoothing is off.
func (s *EbitenSurface) SetSmoothing(enabled bool) {
	s.smoothing = enabled
}

// FillRect fills a rectangle. Under a rotated transform the rectangle is
// filled as a transformed quad.
func (s *EbitenSurface) FillRect(r Rect, c Color) {
	if axisAligned(s.transform) {
		x, y := transformPoint(s.transform, r.X, r.Y)
		x2, y2 := transformPoint(s.transform, r.X+r.Width, r.Y+r.Height)
		vector.DrawFilledRect(s.target,
			float32(min(x, x2)), float32(min(y, y2)),
			float32(abs(x2-x)), float32(abs(y2-y)),
			c.toNRGBA(), s.smoothing)
		return
	}
	s.FillPath([]Vec2{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
	}, c)
}

// StrokeRect outlines a rectangle with the given line width in output pixels.
func (s *EbitenSurface) StrokeRect(r Rect, lineWidth float64, c Color) {
	pts := []Vec2{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
		{r.X, r.Y},
	}
	s.StrokePath(pts, lineWidth, c)
}

// FillPath fills the polygon described by points using the vector package's
// path triangulation.
func (s *EbitenSurface) FillPath(points []Vec2, c Color) {
	if len(points) < 3 {
		return
	}
	var p vector.Path
	x, y := transformPoint(s.transform, points[0].X, points[0].Y)
	p.MoveTo(float32(x), float32(y))
	for _, pt := range points[1:] {
		x, y = transformPoint(s.transform, pt.X, pt.Y)
		p.LineTo(float32(x), float32(y))
	}
	p.Close()

	s.verts, s.inds = p.AppendVerticesAndIndicesForFilling(s.verts[:0], s.inds[:0])
	nrgba := c.toNRGBA()
	cr := float32(nrgba.R) / 255 * float32(nrgba.A) / 255
	cg := float32(nrgba.G) / 255 * float32(nrgba.A) / 255
	cb := float32(nrgba.B) / 255 * float32(nrgba.A) / 255
	ca := float32(nrgba.A) / 255
	for i := range s.verts {
		s.verts[i].SrcX = 0.5
		s.verts[i].SrcY = 0.5
		s.verts[i].ColorR = cr
		s.verts[i].ColorG = cg
		s.verts[i].ColorB = cb
		s.verts[i].ColorA = ca
	}
	op := &ebiten.DrawTrianglesOptions{FillRule: ebiten.FillRuleNonZero}
	op.AntiAlias = s.smoothing
	s.target.DrawTriangles(s.verts, s.inds, WhitePixel, op)
}

// StrokePath draws connected line segments through points.
func (s *EbitenSurface) StrokePath(points []Vec2, lineWidth float64, c Color) {
	if len(points) < 2 {
		return
	}
	nrgba := c.toNRGBA()
	px, py := transformPoint(s.transform, points[0].X, points[0].Y)
	for _, pt := range points[1:] {
		x, y := transformPoint(s.transform, pt.X, pt.Y)
		vector.StrokeLine(s.target,
			float32(px), float32(py), float32(x), float32(y),
			float32(lineWidth), nrgba, s.smoothing)
		px, py = x, y
	}
}

// DrawSurface composites src with the given transform applied on top of the
// current transform and the given alpha multiplier. src must be an ebiten
// surface; foreign implementations are skipped with a diagnostic.
func (s *EbitenSurface) DrawSurface(src Surface, transform [6]float64, alpha float64) {
	es, ok := src.(*EbitenSurface)
	if !ok {
		warnf("DrawSurface: source is not an ebiten surface (%T), skipped", src)
		return
	}
	m := multiplyAffine(s.transform, transform)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.SetElement(0, 0, m[0])
	op.GeoM.SetElement(1, 0, m[1])
	op.GeoM.SetElement(0, 1, m[2])
	op.GeoM.SetElement(1, 1, m[3])
	op.GeoM.SetElement(0, 2, m[4])
	op.GeoM.SetElement(1, 2, m[5])
	if alpha < 1 {
		op.ColorScale.ScaleAlpha(float32(clamp(alpha, 0, 1)))
	}
	if s.smoothing {
		op.Filter = ebiten.FilterLinear
	} else {
		op.Filter = ebiten.FilterNearest
	}
	s.target.DrawImage(es.target, op)
}

// ImageDrawable adapts an *ebiten.Image to the Drawable interface used by
// decals. Drawing onto a non-ebiten surface is skipped with a diagnostic.
type ImageDrawable struct {
	Image *ebiten.Image
}

// Draw blits the image centered on (x, y) with the options' rotation, scale,
// and alpha applied.
func (d ImageDrawable) Draw(s Surface, x, y float64, opts DecalOptions) {
	es, ok := s.(*EbitenSurface)
	if !ok {
		warnf("ImageDrawable: surface is not an ebiten surface (%T), skipped", s)
		return
	}
	b := d.Image.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-w/2, -h/2)
	if opts.Scale != 0 && opts.Scale != 1 {
		op.GeoM.Scale(opts.Scale, opts.Scale)
	}
	if opts.Rotation != 0 {
		op.GeoM.Rotate(opts.Rotation)
	}
	op.GeoM.Translate(x, y)

	m := es.transform
	outer := ebiten.GeoM{}
	outer.SetElement(0, 0, m[0])
	outer.SetElement(1, 0, m[1])
	outer.SetElement(0, 1, m[2])
	outer.SetElement(1, 1, m[3])
	outer.SetElement(0, 2, m[4])
	outer.SetElement(1, 2, m[5])
	op.GeoM.Concat(outer)

	if opts.Alpha > 0 && opts.Alpha < 1 {
		op.ColorScale.ScaleAlpha(float32(opts.Alpha))
	}
	if es.smoothing {
		op.Filter = ebiten.FilterLinear
	} else {
		op.Filter = ebiten.FilterNearest
	}
	es.target.DrawImage(d.Image, op)
}

// axisAligned reports whether m has no rotation or skew component.
func axisAligned(m [6]float64) bool {
	return m[1] == 0 && m[2] == 0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
