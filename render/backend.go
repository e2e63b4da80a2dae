// Package render implements the drawing surfaces of the chart: Surface holds the shared drawing primitives, the view
// state and the deferred draw queues; Panel is one horizontal band of the chart with its own offscreen surface; and
// Canvas owns the panels, lays them out, schedules frames and composites the panels into the final image.
package render

import (
	"image"

	"gioui.org/f32"
)

// Backend is the 2D drawing context a Surface draws into. Colors are color specifications as understood by
// color.Parse, fonts are of the form "10px sans-serif". Coordinates are in pixels, with the origin in the top left
// corner.
//
// Backends keep state (fill color, stroke color, font, line dash, shadow) across calls, like an HTML canvas does.
type Backend interface {
	Size() (width, height int)
	// Resize changes the size of the backend. Resizing clears its content and resets all state.
	Resize(width, height int)
	// Clear makes the entire surface transparent.
	Clear()

	SetFillColor(c string)
	SetStrokeColor(c string)
	SetFont(font string)
	SetLineDash(segments []float64)
	// SetShadow sets the shadow drawn beneath subsequent fills. An empty color disables shadows.
	SetShadow(c string, blur float64)

	FillRect(x, y, w, h float64)
	StrokeRect(x, y, w, h float64)
	// FillText draws text with its baseline at y.
	FillText(text string, x, y float64)
	MeasureText(text string) float64
	// FillPath fills the polygon described by pts.
	FillPath(pts []f32.Point)
	// StrokePath draws the polyline described by pts, using the line dash.
	StrokePath(pts []f32.Point)

	// DrawImage composites src onto the backend at (x, y). src must have been created by the same implementation.
	DrawImage(src Backend, x, y float64)
	Image() image.Image
	// Offscreen returns a new, independent backend of the same implementation.
	Offscreen(width, height int) Backend
}
