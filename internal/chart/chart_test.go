package chart

import (
	"math"
	"testing"
)

func TestPolyline_FullBuffer(t *testing.T) {
	// Capacity 5, width 120 → spacing 30; full buffer starts at x=0.
	values := []float64{0, 25, 50, 75, 100}
	points := Polyline(values, 5, 120, 40)

	if len(points) != 5 {
		t.Fatalf("len(points) = %d, want 5", len(points))
	}
	for i, p := range points {
		wantX := float64(i) * 30
		if p.X != wantX {
			t.Errorf("points[%d].X = %v, want %v", i, p.X, wantX)
		}
	}
	// y = height − ceil(v/100 × height)
	if points[0].Y != 40 {
		t.Errorf("points[0].Y = %v, want 40 (0%% sits on the bottom edge)", points[0].Y)
	}
	if points[4].Y != 0 {
		t.Errorf("points[4].Y = %v, want 0 (100%% sits on the top edge)", points[4].Y)
	}
	if points[2].Y != 20 {
		t.Errorf("points[2].Y = %v, want 20", points[2].Y)
	}
}

func TestPolyline_PartialBufferRightAligns(t *testing.T) {
	// Capacity 60, width 118 → spacing 2; 3 samples start at (60−3)×2 = 114.
	values := []float64{10, 20, 30}
	points := Polyline(values, 60, 118, 50)

	if len(points) != 3 {
		t.Fatalf("len(points) = %d, want 3", len(points))
	}
	wantFirstX := float64(60-3) * (118.0 / 59.0)
	if math.Abs(points[0].X-wantFirstX) > 1e-9 {
		t.Errorf("points[0].X = %v, want %v", points[0].X, wantFirstX)
	}
	// The newest sample lands on the right edge.
	if math.Abs(points[2].X-118) > 1e-9 {
		t.Errorf("points[2].X = %v, want 118", points[2].X)
	}
}

func TestPolyline_CeilRounding(t *testing.T) {
	// 33% of height 10 is 3.3; ceil gives 4, so y = 10 − 4 = 6.
	points := Polyline([]float64{33}, 2, 100, 10)
	if points[0].Y != 6 {
		t.Errorf("Y = %v, want 6", points[0].Y)
	}
}

func TestPolyline_Empty(t *testing.T) {
	if points := Polyline(nil, 60, 100, 50); points != nil {
		t.Errorf("Polyline(nil) = %v, want nil", points)
	}
}

func TestFillPolygon_ClosesAlongBottom(t *testing.T) {
	values := []float64{50, 50}
	points := FillPolygon(values, 4, 90, 30)

	if len(points) != 4 {
		t.Fatalf("len(points) = %d, want 4", len(points))
	}
	last := points[len(points)-1]
	penultimate := points[len(points)-2]
	if penultimate.Y != 30 || last.Y != 30 {
		t.Errorf("closing points Y = %v, %v, want both 30", penultimate.Y, last.Y)
	}
	if last.X != points[0].X {
		t.Errorf("polygon does not close back under the first vertex: %v != %v", last.X, points[0].X)
	}
}

func TestParseColor(t *testing.T) {
	r, g, b, err := ParseColor("#a0c8f0")
	if err != nil {
		t.Fatal(err)
	}
	if r != 0xa0 || g != 0xc8 || b != 0xf0 {
		t.Errorf("ParseColor = %x %x %x, want a0 c8 f0", r, g, b)
	}

	for _, bad := range []string{"", "#fff", "a0c8f0", "#zzzzzz"} {
		if _, _, _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) = nil error, want failure", bad)
		}
	}
}

func TestThemeValidate(t *testing.T) {
	if err := DefaultTheme().Validate(); err != nil {
		t.Errorf("default theme invalid: %v", err)
	}
	bad := Theme{Foreground: "red", Background: "#000000"}
	if err := bad.Validate(); err == nil {
		t.Error("Validate() = nil for malformed foreground")
	}
}
