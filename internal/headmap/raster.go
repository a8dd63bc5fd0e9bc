package headmap

import (
	"errors"
	"image"
	"image/color"
	"math"
)

// MaxRasterSize bounds the render surface so a full interpolation pass stays
// fast enough for interactive use (O(pixels * points)).
const MaxRasterSize = 500

// RenderOptions controls one render pass.
type RenderOptions struct {
	Size         int     // square raster edge in pixels, capped at MaxRasterSize
	Zoom         float64 // viewport zoom, identity = 1
	PanX         float64 // viewport pan in pixels
	PanY         float64
	ContourCount int
	ShowSensors  bool
	Theme        Theme
}

// RenderResult is the output of one pass over the rendering chain. The pixel
// buffer is owned by the caller after return; the renderer holds no state
// between passes.
type RenderResult struct {
	Image    *image.RGBA
	Points   []ProjectedPoint
	Contours []ContourLevel
	Range    ColorRange
	// MissingMontage is set when no sensor had a usable position; the image
	// then contains the placeholder state rather than a field.
	MissingMontage bool
}

// Render runs the full chain: project, interpolate, contour, colour-map, and
// materialise a raster. Missing montage data degrades to a placeholder image
// with MissingMontage set rather than an error; only invalid options fail.
func Render(samples []SensorSample, rng ColorRange, opts RenderOptions) (*RenderResult, error) {
	if opts.Size <= 0 {
		return nil, errors.New("headmap: render size must be positive")
	}
	if opts.Size > MaxRasterSize {
		opts.Size = MaxRasterSize
	}
	if opts.Zoom < 1 {
		opts.Zoom = 1
	}

	size := opts.Size
	base := float64(size) / 2
	disc := Disc{CX: base, CY: base, R: base * 0.95}

	// Viewport-adjusted geometry: zoom scales the disc about its centre,
	// pan shifts it.
	zoomed := Disc{
		CX: disc.CX + opts.PanX,
		CY: disc.CY + opts.PanY,
		R:  disc.R * opts.Zoom,
	}

	points := Project(samples, zoomed)

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	fillBackground(img, opts.Theme.Background())

	field, err := NewField(points, zoomed)
	if errors.Is(err, ErrNoMontage) {
		drawPlaceholder(img, zoomed)
		return &RenderResult{Image: img, Range: rng, MissingMontage: true}, nil
	}
	if err != nil {
		return nil, err
	}

	for py := 0; py < size; py++ {
		for px := 0; px < size; px++ {
			dx := float64(px) - zoomed.CX
			dy := float64(py) - zoomed.CY
			if dx*dx+dy*dy > zoomed.R*zoomed.R {
				continue
			}
			t := rng.Normalize(field.At(float64(px), float64(py)))
			img.SetRGBA(px, py, MapColor(t))
		}
	}

	contours := ExtractContours(field, zoomed, rng, opts.ContourCount)
	overlayContours(img, contours)

	if opts.ShowSensors {
		overlaySensors(img, points)
	}

	return &RenderResult{
		Image:    img,
		Points:   points,
		Contours: contours,
		Range:    rng,
	}, nil
}

func fillBackground(img *image.RGBA, bg color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, bg)
		}
	}
}

// drawPlaceholder renders the explicit "missing montage" state: a hollow
// light-grey disc so the viewer sees the head outline with no field.
func drawPlaceholder(img *image.RGBA, disc Disc) {
	grey := color.RGBA{R: 210, G: 210, B: 210, A: 255}
	for deg := 0; deg < 3600; deg++ {
		theta := float64(deg) * math.Pi / 1800
		x := int(disc.CX + disc.R*math.Cos(theta))
		y := int(disc.CY + disc.R*math.Sin(theta))
		setIfInside(img, x, y, grey)
	}
}

// overlayContours stamps contour vertices as 40%-opacity dark marks blended
// over the field colours.
func overlayContours(img *image.RGBA, levels []ContourLevel) {
	for _, lv := range levels {
		for _, p := range lv.Points {
			blendDark(img, int(p.X), int(p.Y), 0.4)
		}
	}
}

func overlaySensors(img *image.RGBA, points []ProjectedPoint) {
	dark := color.RGBA{R: 30, G: 30, B: 30, A: 255}
	for _, p := range points {
		x, y := int(p.X), int(p.Y)
		setIfInside(img, x, y, dark)
		setIfInside(img, x+1, y, dark)
		setIfInside(img, x-1, y, dark)
		setIfInside(img, x, y+1, dark)
		setIfInside(img, x, y-1, dark)
	}
}

func setIfInside(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func blendDark(img *image.RGBA, x, y int, alpha float64) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return
	}
	c := img.RGBAAt(x, y)
	c.R = uint8(float64(c.R) * (1 - alpha))
	c.G = uint8(float64(c.G) * (1 - alpha))
	c.B = uint8(float64(c.B) * (1 - alpha))
	img.SetRGBA(x, y, c)
}
