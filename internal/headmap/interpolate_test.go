package headmap

import (
	"errors"
	"math"
	"testing"
)

func TestNewField_NoPoints(t *testing.T) {
	_, err := NewField(nil, testDisc)
	if !errors.Is(err, ErrNoMontage) {
		t.Fatalf("expected ErrNoMontage, got %v", err)
	}
}

func TestField_SinglePointConstant(t *testing.T) {
	field, err := NewField([]ProjectedPoint{{Name: "Cz", X: 250, Y: 250, Value: 7.5}}, testDisc)
	if err != nil {
		t.Fatal(err)
	}

	probes := [][2]float64{{250, 250}, {100, 100}, {400, 60}, {250, 449}}
	for _, p := range probes {
		if v := field.At(p[0], p[1]); math.Abs(v-7.5) > 1e-9 {
			t.Errorf("single-point field at (%g,%g) = %f, want 7.5", p[0], p[1], v)
		}
	}
}

func TestField_ConvexityBounds(t *testing.T) {
	points := []ProjectedPoint{
		{Name: "a", X: 150, Y: 250, Value: -3},
		{Name: "b", X: 350, Y: 250, Value: 5},
		{Name: "c", X: 250, Y: 150, Value: 1},
		{Name: "d", X: 250, Y: 350, Value: -1},
	}
	field, err := NewField(points, testDisc)
	if err != nil {
		t.Fatal(err)
	}

	for y := 50.0; y <= 450; y += 25 {
		for x := 50.0; x <= 450; x += 25 {
			v := field.At(x, y)
			if v < -3-1e-9 || v > 5+1e-9 {
				t.Fatalf("field at (%g,%g) = %f outside [min,max] of inputs", x, y, v)
			}
		}
	}
}

func TestField_CentreOfSymmetricValuesIsMean(t *testing.T) {
	// Four electrodes symmetric about the centre with values summing to 0:
	// the Gaussian weights are equal, so the centre interpolates to 0.
	points := []ProjectedPoint{
		{Name: "a", X: 150, Y: 250, Value: 1},
		{Name: "b", X: 350, Y: 250, Value: -1},
		{Name: "c", X: 250, Y: 150, Value: 1},
		{Name: "d", X: 250, Y: 350, Value: -1},
	}
	field, err := NewField(points, testDisc)
	if err != nil {
		t.Fatal(err)
	}

	if v := field.At(250, 250); math.Abs(v) > 1e-6 {
		t.Errorf("centre value = %f, want ~0", v)
	}
}

func TestField_NearPointDominates(t *testing.T) {
	points := []ProjectedPoint{
		{Name: "near", X: 250, Y: 250, Value: 10},
		{Name: "far", X: 440, Y: 440, Value: -10},
	}
	field, err := NewField(points, testDisc)
	if err != nil {
		t.Fatal(err)
	}

	if v := field.At(250, 250); v < 9 {
		t.Errorf("value at the near electrode = %f, want close to 10", v)
	}
}

func TestField_Bounds(t *testing.T) {
	points := []ProjectedPoint{
		{Name: "a", X: 100, Y: 100, Value: 2},
		{Name: "b", X: 200, Y: 200, Value: -4},
		{Name: "c", X: 300, Y: 300, Value: 9},
	}
	field, err := NewField(points, testDisc)
	if err != nil {
		t.Fatal(err)
	}
	vmin, vmax := field.Bounds()
	if vmin != -4 || vmax != 9 {
		t.Errorf("Bounds() = (%f, %f), want (-4, 9)", vmin, vmax)
	}
}
