// Package viewport owns the zoom/pan transform for a render surface and
// turns pointer gestures into transform updates. Everything here is
// synchronous and pure with respect to its inputs; no timers, no I/O.
package viewport

import "math"

const (
	// MinZoom is the identity zoom; the disc exactly fills its viewport.
	MinZoom = 1.0
	// MaxZoom bounds magnification.
	MaxZoom = 4.0
	// ZoomStep is the zoom change applied per wheel notch.
	ZoomStep = 0.25

	// dragThreshold is the cumulative pointer travel, in pixels, past which
	// a down/move/up cycle counts as a drag rather than a click.
	dragThreshold = 3.0
)

// Transform is the affine view state consumed by the renderer.
type Transform struct {
	Zoom float64 `json:"zoom"`
	PanX float64 `json:"pan_x"`
	PanY float64 `json:"pan_y"`
}

// Viewport tracks the interactive transform for one render surface. The
// zero value is not usable; construct with New.
type Viewport struct {
	radius float64

	zoom float64
	panX float64
	panY float64

	dragging   bool
	dragged    bool // raised once cumulative travel exceeds dragThreshold
	startX     float64
	startY     float64
	startPanX  float64
	startPanY  float64
	lastClickX float64
	lastClickY float64
}

// New creates a viewport for a disc of the given pixel radius at identity
// transform.
func New(radius float64) *Viewport {
	return &Viewport{radius: radius, zoom: MinZoom}
}

// Transform returns the current zoom and pan.
func (v *Viewport) Transform() Transform {
	return Transform{Zoom: v.zoom, PanX: v.panX, PanY: v.panY}
}

// PointerDown enters the dragging state, recording the gesture origin and
// the pan at that instant.
func (v *Viewport) PointerDown(x, y float64) {
	v.dragging = true
	v.dragged = false
	v.startX, v.startY = x, y
	v.startPanX, v.startPanY = v.panX, v.panY
}

// PointerMove updates pan while dragging. Movement below dragThreshold is
// ignored so micro-jitter between down and up still reads as a click.
func (v *Viewport) PointerMove(x, y float64) {
	if !v.dragging {
		return
	}
	dx := x - v.startX
	dy := y - v.startY
	if !v.dragged && math.Hypot(dx, dy) <= dragThreshold {
		return
	}
	v.dragged = true
	v.panX = v.startPanX + dx
	v.panY = v.startPanY + dy
	v.clampPan()
}

// PointerUp leaves the dragging state and reports whether the completed
// cycle qualifies as a click (no drag flag raised).
func (v *Viewport) PointerUp(x, y float64) (click bool) {
	if !v.dragging {
		return false
	}
	v.dragging = false
	if v.dragged {
		return false
	}
	v.lastClickX, v.lastClickY = x, y
	return true
}

// PointerLeave aborts any in-flight gesture without honouring a click.
func (v *Viewport) PointerLeave() {
	v.dragging = false
	v.dragged = false
}

// Wheel adjusts zoom by ZoomStep per notch (positive notches zoom in) and
// immediately re-clamps pan, since the clamp bound depends on zoom.
func (v *Viewport) Wheel(notches int) {
	v.zoom += float64(notches) * ZoomStep
	if v.zoom < MinZoom {
		v.zoom = MinZoom
	}
	if v.zoom > MaxZoom {
		v.zoom = MaxZoom
	}
	v.clampPan()
}

// Reset restores the identity transform and clears gesture state.
func (v *Viewport) Reset() {
	v.zoom = MinZoom
	v.panX, v.panY = 0, 0
	v.dragging = false
	v.dragged = false
}

// LastClick returns the position of the most recent honoured click.
func (v *Viewport) LastClick() (x, y float64) {
	return v.lastClickX, v.lastClickY
}

// clampPan keeps the disc at least partially reachable: |pan| is bounded by
// radius*(zoom-1), floored at zero so identity zoom pins pan to the origin.
func (v *Viewport) clampPan() {
	bound := v.radius * (v.zoom - 1)
	if bound < 0 {
		bound = 0
	}
	v.panX = clamp(v.panX, -bound, bound)
	v.panY = clamp(v.panY, -bound, bound)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
