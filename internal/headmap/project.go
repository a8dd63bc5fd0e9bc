package headmap

import (
	"math"
	"strings"
)

const (
	// degenerateRadius is the radial magnitude below which a 3D position is
	// treated as missing rather than projected.
	degenerateRadius = 0.01

	// visibilityFloor keeps the upper hemisphere plus near-equatorial sensors
	// (mastoids, ear clips). Anything further behind the head is hidden.
	visibilityFloor = -0.5

	// spacingFactor shrinks the projection slightly so electrode labels near
	// the disc rim do not collide with the head outline.
	spacingFactor = 0.9
)

// Project maps sensor 3D positions onto the render disc using an orthographic
// top-down projection. Sensors with no usable position are silently excluded;
// a montage-free recording simply projects to zero points. Duplicate names
// keep the first occurrence.
//
// A1/A2 ear electrodes often carry zeroed locations in recorded montages; they
// are pinned to the standard ear positions instead of being dropped.
func Project(samples []SensorSample, disc Disc) []ProjectedPoint {
	points := make([]ProjectedPoint, 0, len(samples))
	seen := make(map[string]bool, len(samples))

	for _, s := range samples {
		if seen[s.Name] {
			continue
		}
		if s.Pos == nil {
			continue
		}

		x, y, z := s.Pos.X, s.Pos.Y, s.Pos.Z
		r := math.Sqrt(x*x + y*y + z*z)

		if r < degenerateRadius {
			switch strings.ToUpper(s.Name) {
			case "A1":
				x, y, z = -0.5, 0, 0
			case "A2":
				x, y, z = 0.5, 0, 0
			default:
				continue
			}
			r = math.Sqrt(x*x + y*y + z*z)
		}

		xn, yn, zn := x/r, y/r, z/r
		if zn < visibilityFloor {
			continue
		}

		points = append(points, ProjectedPoint{
			Name:  s.Name,
			X:     disc.CX + xn*disc.R*spacingFactor,
			Y:     disc.CY - yn*disc.R*spacingFactor,
			Value: s.Value,
		})
		seen[s.Name] = true
	}

	return points
}
