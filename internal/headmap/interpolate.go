package headmap

import (
	"errors"
	"math"
)

// ErrNoMontage is returned when interpolation is requested with zero usable
// electrode positions. Callers render an explicit "missing montage" state in
// that case instead of an empty field.
var ErrNoMontage = errors.New("headmap: no electrode positions available")

// sigmaFactor sets the Gaussian bandwidth proportional to the disc radius.
const sigmaFactor = 0.3

// Field is a dense scalar field over the render disc, backed by
// Gaussian-weighted averaging of the projected samples. It is cheap to
// construct and evaluated lazily; callers materialise it into a raster only
// for pixels inside the disc.
type Field struct {
	points []ProjectedPoint
	sigma2 float64 // 2*sigma^2, precomputed
}

// NewField builds an interpolated field from projected points. The bandwidth
// is fixed at sigmaFactor*R. Returns ErrNoMontage when points is empty.
func NewField(points []ProjectedPoint, disc Disc) (*Field, error) {
	if len(points) == 0 {
		return nil, ErrNoMontage
	}
	sigma := sigmaFactor * disc.R
	return &Field{
		points: points,
		sigma2: 2 * sigma * sigma,
	}, nil
}

// At evaluates the field at pixel coordinates (x, y).
//
// The result is a convex combination of the sample values, so it always lies
// within [min(values), max(values)]. A single point yields a constant field.
func (f *Field) At(x, y float64) float64 {
	var num, den float64
	for i := range f.points {
		dx := x - f.points[i].X
		dy := y - f.points[i].Y
		w := math.Exp(-(dx*dx + dy*dy) / f.sigma2)
		num += w * f.points[i].Value
		den += w
	}
	if den == 0 {
		// All weights underflowed; fall back to the nearest sample so the
		// far rim of the disc still gets a defined value.
		return f.nearestValue(x, y)
	}
	return num / den
}

func (f *Field) nearestValue(x, y float64) float64 {
	best := 0
	bestD := math.Inf(1)
	for i := range f.points {
		dx := x - f.points[i].X
		dy := y - f.points[i].Y
		if d := dx*dx + dy*dy; d < bestD {
			bestD = d
			best = i
		}
	}
	return f.points[best].Value
}

// Bounds returns the min and max sample values feeding the field.
func (f *Field) Bounds() (vmin, vmax float64) {
	vmin, vmax = f.points[0].Value, f.points[0].Value
	for _, p := range f.points[1:] {
		if p.Value < vmin {
			vmin = p.Value
		}
		if p.Value > vmax {
			vmax = p.Value
		}
	}
	return vmin, vmax
}
