package render

import (
	"math"

	"gioui.org/f32"
)

// Direction is the direction a triangle points to.
type Direction uint8

const (
	Up Direction = iota
	Right
	Down
	Left
)

// circleSegments is the number of edges of the polygon that approximates circles.
const circleSegments = 16

// RenderTriangle fills an isosceles triangle centered on (x, y), w wide at its base and h tall, pointing in dir.
func (s *Surface) RenderTriangle(color string, x, y, w, h float64, dir Direction) {
	hw, hh := float32(w/2), float32(h/2)
	c := f32.Pt(float32(x), float32(y))
	var pts []f32.Point
	switch dir {
	case Up:
		pts = []f32.Point{c.Add(f32.Pt(-hw, hh)), c.Add(f32.Pt(hw, hh)), c.Add(f32.Pt(0, -hh))}
	case Right:
		pts = []f32.Point{c.Add(f32.Pt(-hh, -hw)), c.Add(f32.Pt(-hh, hw)), c.Add(f32.Pt(hh, 0))}
	case Down:
		pts = []f32.Point{c.Add(f32.Pt(-hw, -hh)), c.Add(f32.Pt(hw, -hh)), c.Add(f32.Pt(0, hh))}
	case Left:
		pts = []f32.Point{c.Add(f32.Pt(hh, -hw)), c.Add(f32.Pt(hh, hw)), c.Add(f32.Pt(-hh, 0))}
	default:
		panic("invalid direction")
	}
	s.FillPath(color, pts)
}

// RenderCircle fills a circle of radius r around (x, y).
func (s *Surface) RenderCircle(color string, x, y, r float64) {
	pts := make([]f32.Point, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = f32.Pt(float32(x+r*math.Cos(a)), float32(y+r*math.Sin(a)))
	}
	s.FillPath(color, pts)
}

// RenderStroke outlines a rectangle with color.
func (s *Surface) RenderStroke(color string, x, y, w, h float64) {
	s.SetStrokeColor(color)
	s.backend.StrokeRect(x, y, w, h)
}
