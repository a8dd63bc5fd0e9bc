// Package headmap renders scalp field maps: discrete electrode samples are
// projected onto a 2D disc, interpolated into a dense scalar field, and
// materialised as a raster with contour and sensor overlays.
package headmap

// Position3D is an electrode location in head coordinates (metres, RAS-ish:
// +X right, +Y anterior, +Z superior). Magnitude is irrelevant; positions are
// normalised to the unit sphere before projection.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// SensorSample is one electrode's reading for a single instant or band.
// Pos may be nil when no montage information exists for the channel.
type SensorSample struct {
	Name  string      `json:"name"`
	Pos   *Position3D `json:"position,omitempty"`
	Value float64     `json:"value"`
}

// ProjectedPoint is a sensor mapped onto the render disc. Points are
// recomputed every render pass and never persisted.
type ProjectedPoint struct {
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"value"`
}

// ColorRange drives value normalisation for the colormap. When Symmetric is
// set, the bounds are widened to +-max(|VMin|,|VMax|) so the ramp midpoint
// always maps to zero.
type ColorRange struct {
	VMin      float64 `json:"vmin"`
	VMax      float64 `json:"vmax"`
	Symmetric bool    `json:"symmetric"`
}

// Disc describes the render surface: a circle of radius R centred at (CX, CY)
// in pixel coordinates.
type Disc struct {
	CX float64
	CY float64
	R  float64
}
