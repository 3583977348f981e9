// Package chart converts a history buffer into polyline vertices for a
// utilization chart. The renderer itself (panel widget, web canvas, TUI)
// is an external collaborator; this package only does the geometry.
package chart

import "math"

// Point is a single polyline vertex in chart coordinates. The origin is
// the top-left corner; Y grows downward, as in most 2D drawing APIs.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polyline maps a sample history onto chart vertices, oldest sample first.
//
// Horizontal spacing is width/(capacity−1), based on the buffer's full
// capacity rather than its current length, so that a partially filled
// history right-aligns against the most recent sample instead of
// stretching to fill the chart. Each sample is a percentage in [0,100];
// its Y coordinate is height − ceil(sample/100 × height).
//
// Returns nil for an empty history.
func Polyline(values []float64, capacity int, width, height float64) []Point {
	if len(values) == 0 || capacity < 2 {
		return nil
	}

	spacing := width / float64(capacity-1)
	offset := float64(capacity-len(values)) * spacing

	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{
			X: offset + float64(i)*spacing,
			Y: height - math.Ceil(v/100*height),
		}
	}
	return points
}

// FillPolygon returns the closed polygon for the filled chart area: the
// polyline plus the two corners that close it along the bottom edge of
// the drawn span. Returns nil for an empty history.
func FillPolygon(values []float64, capacity int, width, height float64) []Point {
	line := Polyline(values, capacity, width, height)
	if line == nil {
		return nil
	}
	first, last := line[0], line[len(line)-1]
	return append(line, Point{X: last.X, Y: height}, Point{X: first.X, Y: height})
}
