package headmap

import "math"

// DefaultContourCount matches the default contour density of the topomap
// view: 8 levels, of which the n-1 interior levels are traced.
const DefaultContourCount = 8

// contourTolerance is the band around each iso-level, as a fraction of the
// full value range, within which a sampled point is accepted as a vertex.
const contourTolerance = 0.05

// ContourPoint is a single vertex on an iso-level trace.
type ContourPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ContourLevel is the set of vertices found near one iso-value. Vertices are
// ordered by the ray sweep that produced them; they are drawn as thin
// low-opacity strokes, so gaps at coarse sampling are tolerable.
type ContourLevel struct {
	Value  float64        `json:"value"`
	Points []ContourPoint `json:"points"`
}

// ExtractContours traces iso-level vertices by marching radial rays from the
// disc centre outward and recording samples that land within the tolerance
// band of each level. This is a qualitative overlay, not a quantitative
// output; it trades the bookkeeping of marching squares for a single cheap
// pass over the field.
func ExtractContours(field *Field, disc Disc, rng ColorRange, count int) []ContourLevel {
	if count < 2 {
		count = DefaultContourCount
	}
	vmin, vmax := rng.VMin, rng.VMax
	if rng.Symmetric {
		m := math.Max(math.Abs(vmin), math.Abs(vmax))
		vmin, vmax = -m, m
	}
	span := vmax - vmin
	if span <= 0 || field == nil {
		return nil
	}

	tol := contourTolerance * span
	step := span / float64(count)

	levels := make([]ContourLevel, 0, count-1)
	for li := 1; li < count; li++ {
		level := vmin + float64(li)*step

		var pts []ContourPoint
		// 1 degree angular sweep, 2px radial steps: bounded work at
		// on-screen resolutions. A vertex is emitted each time a ray
		// enters the tolerance band, so a level crossed twice along one
		// ray yields two vertices.
		for deg := 0; deg < 360; deg++ {
			theta := float64(deg) * math.Pi / 180
			cos, sin := math.Cos(theta), math.Sin(theta)
			inBand := false
			for r := 2.0; r <= disc.R; r += 2 {
				x := disc.CX + r*cos
				y := disc.CY + r*sin
				hit := math.Abs(field.At(x, y)-level) < tol
				if hit && !inBand {
					pts = append(pts, ContourPoint{X: x, Y: y})
				}
				inBand = hit
			}
		}
		if len(pts) > 0 {
			levels = append(levels, ContourLevel{Value: level, Points: pts})
		}
	}
	return levels
}
