package darkmatter

import "math"

// SnapBias is the bias applied before rounding in the pixel-snapping
// functions. It absorbs floating-point noise so that values sitting on an
// exact half-pixel boundary round up deterministically, and values that are
// a hair below a whole pixel (from accumulated transform error) do not get
// inflated by a full pixel when ceiling sizes. The bias is part of the
// snapping contract: callers may rely on round-half-up behavior at
// boundaries.
const SnapBias = 1e-9

// EffectiveScale returns the world-unit-to-canvas-pixel multiplier for the
// given integer pixel scale and zoom. Pixel scales below 1 are treated as 1.
func EffectiveScale(pixelScale int, zoom float64) float64 {
	if pixelScale < 1 {
		pixelScale = 1
	}
	return float64(pixelScale) * zoom
}

// RoundToPixel snaps a position coordinate to the nearest pixel at the given
// effective scale. Half-pixel values round up (toward +inf). Scales below 1
// snap to the correspondingly coarser grid (at scale 0.5 one canvas pixel
// spans two world units). Degenerate scales (zero, negative, non-finite)
// return the value unchanged. Idempotent: snapping an already-snapped value
// returns it unchanged.
func RoundToPixel(v, scale float64) float64 {
	if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return v
	}
	return math.Floor(v*scale+0.5+SnapBias) / scale
}

// CeilSizeToPixel snaps a size to the next whole pixel away from zero at the
// given effective scale. Sizes are ceiled on magnitude rather than rounded so
// that bounding boxes never shrink below their nominal size; adjacent tiles
// rounded down on both sides would otherwise leave 1-pixel seams.
func CeilSizeToPixel(v, scale float64) float64 {
	if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return v
	}
	if v < 0 {
		return -math.Ceil(-v*scale-SnapBias) / scale
	}
	return math.Ceil(v*scale-SnapBias) / scale
}
