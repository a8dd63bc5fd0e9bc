package spectral

import (
	"bytes"
	"context"
	"testing"
)

func dataResult(channels []string) *Result {
	power := [][]float64{{-2, 1}, {0.5, 3}}
	byChannel := make([][][]float64, len(channels))
	for i := range byChannel {
		byChannel[i] = power
	}
	return &Result{
		Mode:           RenderData,
		TimesMs:        []float64{0, 100},
		Freqs:          []float64{8, 13},
		Power:          power,
		PowerByChannel: byChannel,
		ChannelNames:   channels,
	}
}

func TestRenderImages_PopulatesPayload(t *testing.T) {
	res := dataResult([]string{"C3", "C4"})
	p := Params{Channels: []string{"C3", "C4"}, FMin: 8, FMax: 13, BaselineMode: BaselineLogRatio}

	var progress []float64
	err := renderImages(context.Background(), res, p, func(v float64) { progress = append(progress, v) })
	if err != nil {
		t.Fatal(err)
	}

	if res.Mode != RenderImage {
		t.Errorf("mode = %s, want image", res.Mode)
	}
	if len(res.ImagePNG) == 0 {
		t.Error("aggregate PNG missing")
	}
	if !bytes.HasPrefix(res.ImagePNG, []byte("\x89PNG")) {
		t.Error("aggregate image is not a PNG")
	}
	if len(res.ImagesByChannel) != 2 {
		t.Errorf("per-channel images = %d, want 2", len(res.ImagesByChannel))
	}
	if res.VMin >= 0 || res.VMax <= 0 || res.VMin != -res.VMax {
		t.Errorf("colour scale (%f, %f) should be symmetric about zero", res.VMin, res.VMax)
	}
	if len(progress) == 0 {
		t.Error("image rendering should report progress")
	}
}

func TestRenderImages_ExplicitScale(t *testing.T) {
	res := dataResult([]string{"Cz"})
	vmin, vmax := -5.0, 5.0
	p := Params{Channels: []string{"Cz"}, FMin: 8, FMax: 13, VMin: &vmin, VMax: &vmax}

	if err := renderImages(context.Background(), res, p, func(float64) {}); err != nil {
		t.Fatal(err)
	}
	if res.VMin != -5 || res.VMax != 5 {
		t.Errorf("explicit scale not honoured: (%f, %f)", res.VMin, res.VMax)
	}
}

func TestRenderImages_Cancelled(t *testing.T) {
	res := dataResult([]string{"C3", "C4"})
	p := Params{Channels: []string{"C3", "C4"}, FMin: 8, FMax: 13}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := renderImages(ctx, res, p, func(float64) {}); err == nil {
		t.Error("cancelled context should abort per-channel rendering")
	}
}

func TestImageScale_Symmetrised(t *testing.T) {
	res := dataResult([]string{"Cz"})
	vmin, vmax := imageScale(res, Params{})
	if vmin != -vmax {
		t.Errorf("scale (%f, %f) not symmetric", vmin, vmax)
	}
	if vmax <= 0 {
		t.Errorf("vmax = %f, want positive", vmax)
	}
}
