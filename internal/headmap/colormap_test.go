package headmap

import (
	"testing"
)

func TestMapColor_Endpoints(t *testing.T) {
	if got := MapColor(0); got != rampLow {
		t.Errorf("MapColor(0) = %v, want ramp low anchor %v", got, rampLow)
	}
	if got := MapColor(1); got != rampHigh {
		t.Errorf("MapColor(1) = %v, want ramp high anchor %v", got, rampHigh)
	}
	if got := MapColor(0.5); got != rampMid {
		t.Errorf("MapColor(0.5) = %v, want ramp mid anchor %v", got, rampMid)
	}
}

func TestMapColor_Clamps(t *testing.T) {
	if got := MapColor(-0.5); got != rampLow {
		t.Errorf("MapColor(-0.5) = %v, want clamp to low anchor", got)
	}
	if got := MapColor(1.5); got != rampHigh {
		t.Errorf("MapColor(1.5) = %v, want clamp to high anchor", got)
	}
}

// rampPosition inverts the piecewise interpolation back to an approximate
// position along the ramp, using the red channel which is strictly
// monotonic across both segments.
func rampPosition(c [3]float64) float64 {
	return c[0]
}

func TestMapColor_Monotonic(t *testing.T) {
	prev := -1.0
	for i := 0; i <= 100; i++ {
		tt := float64(i) / 100
		c := MapColor(tt)
		// Red increases monotonically low->mid->high on this ramp.
		pos := rampPosition([3]float64{float64(c.R), float64(c.G), float64(c.B)})
		if pos < prev-1e-9 {
			t.Fatalf("ramp position decreased at t=%f", tt)
		}
		prev = pos
	}
}

func TestColorRange_Normalize(t *testing.T) {
	tests := []struct {
		name string
		rng  ColorRange
		v    float64
		want float64
	}{
		{"min maps to 0", ColorRange{VMin: -2, VMax: 2}, -2, 0},
		{"max maps to 1", ColorRange{VMin: -2, VMax: 2}, 2, 1},
		{"mid maps to 0.5", ColorRange{VMin: -2, VMax: 2}, 0, 0.5},
		{"below min clamps", ColorRange{VMin: 0, VMax: 10}, -5, 0},
		{"above max clamps", ColorRange{VMin: 0, VMax: 10}, 15, 1},
		{"degenerate range midpoint", ColorRange{VMin: 3, VMax: 3}, 3, 0.5},
		{"symmetric zero is midpoint", ColorRange{VMin: -1, VMax: 5, Symmetric: true}, 0, 0.5},
		{"symmetric widens bounds", ColorRange{VMin: -1, VMax: 5, Symmetric: true}, -5, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rng.Normalize(tc.v); got != tc.want {
				t.Errorf("Normalize(%f) = %f, want %f", tc.v, got, tc.want)
			}
		})
	}
}

func TestRangeFromValues(t *testing.T) {
	rng := RangeFromValues([]float64{3, -7, 2, 5}, false)
	if rng.VMin != -7 || rng.VMax != 5 {
		t.Errorf("RangeFromValues = (%f, %f), want (-7, 5)", rng.VMin, rng.VMax)
	}

	sym := RangeFromValues([]float64{3, -7, 2, 5}, true)
	vmin, vmax := sym.Bounds()
	if vmin != -7 || vmax != 7 {
		t.Errorf("symmetric Bounds = (%f, %f), want (-7, 7)", vmin, vmax)
	}
}
