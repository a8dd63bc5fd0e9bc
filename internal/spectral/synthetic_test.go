package spectral

import (
	"context"
	"testing"
)

func TestSyntheticComputer_Shape(t *testing.T) {
	p := Params{Channels: []string{"C3", "C4"}, FMin: 1, FMax: 40, EpochWindow: 1}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}

	comp := &SyntheticComputer{EpochCount: 10, Seed: 1}
	var progress []float64
	res, err := comp.Compute(context.Background(), p, func(v float64) { progress = append(progress, v) })
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Freqs) != 40 {
		t.Errorf("expected 40 frequency bins for 1-40Hz, got %d", len(res.Freqs))
	}
	if len(res.Power) != len(res.Freqs) {
		t.Errorf("power rows = %d, want %d", len(res.Power), len(res.Freqs))
	}
	if len(res.Power[0]) != len(res.TimesMs) {
		t.Errorf("power cols = %d, want %d time bins", len(res.Power[0]), len(res.TimesMs))
	}
	if len(res.PowerByChannel) != 2 {
		t.Errorf("per-channel grids = %d, want 2", len(res.PowerByChannel))
	}

	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress not monotonic: %v", progress)
		}
	}
	if len(progress) == 0 || progress[len(progress)-1] < 0.8 {
		t.Errorf("final reported progress %v should reach at least 0.8", progress)
	}
}

func TestSyntheticComputer_Deterministic(t *testing.T) {
	p := Params{Channels: []string{"Cz"}, FMin: 8, FMax: 13, EpochWindow: 1}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}

	a, err := (&SyntheticComputer{EpochCount: 5, Seed: 42}).Compute(context.Background(), p, func(float64) {})
	if err != nil {
		t.Fatal(err)
	}
	b, err := (&SyntheticComputer{EpochCount: 5, Seed: 42}).Compute(context.Background(), p, func(float64) {})
	if err != nil {
		t.Fatal(err)
	}

	if a.Power[0][0] != b.Power[0][0] || a.Power[2][5] != b.Power[2][5] {
		t.Error("same seed should reproduce identical surfaces")
	}
}

func TestSyntheticComputer_Cancelled(t *testing.T) {
	p := Params{Channels: []string{"Cz"}, FMin: 1, FMax: 40, EpochWindow: 1}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (&SyntheticComputer{EpochCount: 50}).Compute(ctx, p, func(float64) {}); err == nil {
		t.Error("cancelled context should abort the computation")
	}
}

func TestParams_NCyclesClamped(t *testing.T) {
	p := Params{Channels: []string{"Cz"}, FMin: 2, FMax: 40, NCycles: 50, EpochWindow: 1}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	// Wavelet must fit: max cycles = window * fmin * 0.9 = 1.8.
	if p.NCycles > 1.8+1e-9 {
		t.Errorf("NCycles = %f, want clamped to 1.8", p.NCycles)
	}
}

func TestParams_Defaults(t *testing.T) {
	p := Params{Channels: []string{"Cz"}, FMin: 1, FMax: 40}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if p.Decim != 2 {
		t.Errorf("default decim = %d, want 2", p.Decim)
	}
	if p.RenderMode != RenderData {
		t.Errorf("default render mode = %s, want data", p.RenderMode)
	}
	if p.BaselineMode != BaselineLogRatio {
		t.Errorf("default baseline mode = %s, want logratio", p.BaselineMode)
	}
}

func TestParams_NarrowBandWidened(t *testing.T) {
	p := Params{Channels: []string{"Cz"}, FMin: 10, FMax: 10.5}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if got := len(p.Frequencies()); got != 8 {
		t.Errorf("narrow band should widen to 8 points, got %d", got)
	}
}

func TestBaselineMode_UnitLabels(t *testing.T) {
	tests := []struct {
		mode BaselineMode
		want string
	}{
		{BaselineLogRatio, "Power (dB)"},
		{BaselineRatio, "Power (ratio)"},
		{BaselineZScore, "Power (z-score)"},
		{BaselinePercent, "Power (%)"},
		{BaselineMode("other"), "Power"},
	}
	for _, tc := range tests {
		if got := tc.mode.UnitLabel(); got != tc.want {
			t.Errorf("UnitLabel(%s) = %q, want %q", tc.mode, got, tc.want)
		}
	}
}
