package darkmatter

import "testing"

// stubSurface is a pure-Go Surface used by tests that must not touch the
// graphics backend. It records primitive calls for inspection.
type stubSurface struct {
	w, h      float64
	transform [6]float64
	smoothing bool

	clears       int
	fillRects    []Rect
	strokeRects  []Rect
	fillPaths    [][]Vec2
	strokePaths  [][]Vec2
	surfaceDraws int
	transforms   [][6]float64
}

func newStubSurface(w, h float64) *stubSurface {
	return &stubSurface{w: w, h: h, transform: identityTransform}
}

func (s *stubSurface) Size() (float64, float64) { return s.w, s.h }
func (s *stubSurface) Clear()                   { s.clears++ }

func (s *stubSurface) SetTransform(m [6]float64) {
	s.transform = m
	s.transforms = append(s.transforms, m)
}

func (s *stubSurface) Transform() [6]float64     { return s.transform }
func (s *stubSurface) SetSmoothing(enabled bool) { s.smoothing = enabled }

func (s *stubSurface) FillRect(r Rect, c Color) {
	s.fillRects = append(s.fillRects, r)
}

func (s *stubSurface) StrokeRect(r Rect, lineWidth float64, c Color) {
	s.strokeRects = append(s.strokeRects, r)
}

func (s *stubSurface) FillPath(points []Vec2, c Color) {
	s.fillPaths = append(s.fillPaths, points)
}

func (s *stubSurface) StrokePath(points []Vec2, lineWidth float64, c Color) {
	s.strokePaths = append(s.strokePaths, points)
}

func (s *stubSurface) DrawSurface(src Surface, transform [6]float64, alpha float64) {
	s.surfaceDraws++
}

func TestStubSurfaceImplementsSurface(t *testing.T) {
	var _ Surface = newStubSurface(1, 1)
}
