package headmap

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Diverging ramp anchors: blue through near-white to red. These match the
// RdBu_r convention used for signed scalp quantities, where the neutral
// midpoint reads as "no deviation".
var (
	rampLow  = color.RGBA{R: 33, G: 102, B: 172, A: 255}  // blue
	rampMid  = color.RGBA{R: 247, G: 247, B: 247, A: 255} // near-white
	rampHigh = color.RGBA{R: 178, G: 24, B: 43, A: 255}   // red
)

// MapColor converts a normalised scalar t in [0,1] to an RGB colour on the
// diverging ramp. t is clamped; the mapping is piecewise-linear, continuous,
// and monotonic along the ramp, with exact anchor colours at 0, 0.5 and 1.
func MapColor(t float64) color.RGBA {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	if t < 0.5 {
		return lerpRGB(rampLow, rampMid, t*2)
	}
	return lerpRGB(rampMid, rampHigh, (t-0.5)*2)
}

func lerpRGB(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(math.Round(float64(a.R) + t*(float64(b.R)-float64(a.R)))),
		G: uint8(math.Round(float64(a.G) + t*(float64(b.G)-float64(a.G)))),
		B: uint8(math.Round(float64(a.B) + t*(float64(b.B)-float64(a.B)))),
		A: 255,
	}
}

// Normalize maps a raw value into [0,1] under the given range. A symmetric
// range is widened to +-max(|vmin|,|vmax|) first so zero lands on the ramp
// midpoint. A zero-width range normalises everything to the midpoint.
func (r ColorRange) Normalize(v float64) float64 {
	vmin, vmax := r.Bounds()
	if vmax <= vmin {
		return 0.5
	}
	t := (v - vmin) / (vmax - vmin)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Bounds returns the effective (vmin, vmax) after symmetric widening.
func (r ColorRange) Bounds() (float64, float64) {
	if r.Symmetric {
		m := math.Max(math.Abs(r.VMin), math.Abs(r.VMax))
		return -m, m
	}
	return r.VMin, r.VMax
}

// RangeFromValues computes a ColorRange from the current value set. With no
// values the range is degenerate (0,0) and normalises to the midpoint.
func RangeFromValues(values []float64, symmetric bool) ColorRange {
	if len(values) == 0 {
		return ColorRange{Symmetric: symmetric}
	}
	return ColorRange{
		VMin:      floats.Min(values),
		VMax:      floats.Max(values),
		Symmetric: symmetric,
	}
}
