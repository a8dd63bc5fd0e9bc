package spectral

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/neuroviz-data/scalpview/internal/headmap"
)

// tfrGrid adapts a [freq][time] power matrix to the plotter grid interface.
type tfrGrid struct {
	times []float64
	freqs []float64
	power [][]float64
}

func (g tfrGrid) Dims() (c, r int)   { return len(g.times), len(g.freqs) }
func (g tfrGrid) Z(c, r int) float64 { return g.power[r][c] }
func (g tfrGrid) X(c int) float64    { return g.times[c] }
func (g tfrGrid) Y(r int) float64    { return g.freqs[r] }

// divergingPalette exposes the headmap diverging ramp to gonum/plot.
type divergingPalette struct {
	n int
}

func (p divergingPalette) Colors() []color.Color {
	cs := make([]color.Color, p.n)
	for i := range cs {
		cs[i] = headmap.MapColor(float64(i) / float64(p.n-1))
	}
	return cs
}

// renderImages fills the image-mode payload of a data result: one aggregate
// PNG plus one per channel, sharing a colour scale. Cancellation is honoured
// between channel figures. Progress runs 0.85 -> 0.98 across channels.
func renderImages(ctx context.Context, res *Result, p Params, report func(float64)) error {
	vmin, vmax := imageScale(res, p)
	res.VMin, res.VMax = vmin, vmax

	title := fmt.Sprintf("ROI Average (%d channels)", len(res.ChannelNames))
	png, err := renderHeatmapPNG(res.TimesMs, res.Freqs, res.Power, title, p.BaselineMode, vmin, vmax)
	if err != nil {
		return fmt.Errorf("render aggregate figure: %w", err)
	}
	res.ImagePNG = png
	res.ImagesByChannel = make(map[string][]byte, len(res.ChannelNames))

	for ci, name := range res.ChannelNames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ci >= len(res.PowerByChannel) {
			break
		}
		png, err := renderHeatmapPNG(res.TimesMs, res.Freqs, res.PowerByChannel[ci], name, p.BaselineMode, vmin, vmax)
		if err != nil {
			return fmt.Errorf("render channel %s: %w", name, err)
		}
		res.ImagesByChannel[name] = png
		report(0.85 + 0.13*float64(ci+1)/float64(len(res.ChannelNames)))
	}

	res.Mode = RenderImage
	return nil
}

// imageScale picks the colour bounds: explicit vmin/vmax when supplied,
// otherwise the 2nd/98th percentiles of all per-channel power, then
// symmetrised so the diverging midpoint sits at zero.
func imageScale(res *Result, p Params) (vmin, vmax float64) {
	if p.VMin != nil && p.VMax != nil {
		return *p.VMin, *p.VMax
	}

	var flat []float64
	for _, grid := range res.PowerByChannel {
		for _, row := range grid {
			flat = append(flat, row...)
		}
	}
	if len(flat) == 0 {
		for _, row := range res.Power {
			flat = append(flat, row...)
		}
	}
	if len(flat) == 0 {
		return -1, 1
	}
	sort.Float64s(flat)
	vmin = stat.Quantile(0.02, stat.Empirical, flat, nil)
	vmax = stat.Quantile(0.98, stat.Empirical, flat, nil)
	if p.VMin != nil {
		vmin = *p.VMin
	}
	if p.VMax != nil {
		vmax = *p.VMax
	}

	m := vmax
	if -vmin > m {
		m = -vmin
	}
	return -m, m
}

func renderHeatmapPNG(times, freqs []float64, power [][]float64, title string, mode BaselineMode, vmin, vmax float64) ([]byte, error) {
	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("%s [%s]", title, mode.UnitLabel())
	pl.X.Label.Text = "Time (ms)"
	pl.Y.Label.Text = "Frequency (Hz)"

	hm := plotter.NewHeatMap(tfrGrid{times: times, freqs: freqs, power: power}, divergingPalette{n: 64})
	hm.Min = vmin
	hm.Max = vmax
	pl.Add(hm)

	wt, err := pl.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
