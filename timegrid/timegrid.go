// Package timegrid computes and draws the vertical time grid shared by all panels.
package timegrid

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MinPixelDelta is the approximate distance between grid lines at the initial zoom.
const MinPixelDelta = 85

// MaxAccuracy is the largest number of decimals the grid may label with. Zooming in further is rejected.
const MaxAccuracy = 6

// Styles configures the grid lines.
type Styles struct {
	Color string `yaml:"color"`
}

// DefaultStyles returns the default grid styles.
func DefaultStyles() Styles {
	return Styles{Color: "rgba(90, 90, 90, 0.20)"}
}

// View is the time axis state the grid is computed from.
type View interface {
	MinMax() (min, max float64)
	Width() int
	Zoom() float64
	PositionX() float64
	RealView() float64
	TimeToPosition(t float64) float64
}

// LabelStyle describes how a Painter wants time labels drawn.
type LabelStyle struct {
	Font        string
	Color       string
	PaddingLeft float64
	CharHeight  float64
	TimeUnits   string
}

// Painter is a surface the grid can draw into.
type Painter interface {
	SetFillColor(color string)
	SetFont(font string)
	FillRect(x, y, w, h float64)
	FillText(text string, x, y float64)
	LabelStyle() LabelStyle
}

// Grid holds the spacing and tick range computed by Recalc. Recalc has to be called whenever the view's zoom,
// position or bounds change.
type Grid struct {
	Styles Styles

	view     View
	delta    float64
	start    int
	end      int
	accuracy int
}

// New returns a grid computed from view.
func New(view View, styles Styles) *Grid {
	return &Grid{view: view, Styles: styles}
}

// SetView changes the view the grid is computed from.
func (g *Grid) SetView(view View) { g.view = view }

// Delta returns the time between two grid lines.
func (g *Grid) Delta() float64 { return g.delta }

// Accuracy returns the number of decimals used for labels.
func (g *Grid) Accuracy() int { return g.accuracy }

// Ticks returns the range of tick indices that cover the visible window.
func (g *Grid) Ticks() (start, end int) { return g.start, g.end }

// Recalc recomputes the grid for the view's current state. The spacing is the ~MinPixelDelta spacing at the
// initial zoom, halved for every doubling of the zoom.
func (g *Grid) Recalc() {
	min, max := g.view.MinMax()
	timeWidth := max - min
	initialLinesCount := float64(g.view.Width()) / MinPixelDelta
	initialDelta := timeWidth / initialLinesCount
	realView := g.view.RealView()
	if timeWidth == 0 {
		timeWidth = 1
	}
	proportion := realView / timeWidth

	g.delta = initialDelta / math.Pow(2, math.Floor(math.Log2(1/proportion)))
	if g.delta > 0 && !math.IsInf(g.delta, 0) {
		g.start = int(math.Floor((g.view.PositionX() - min) / g.delta))
		g.end = int(math.Ceil(realView/g.delta)) + g.start
	} else {
		g.start, g.end = 0, -1
	}
	g.accuracy = numberFix(g.delta / 2)
}

var leadingZeros = regexp.MustCompile(`0\.0*`)

// numberFix derives a label accuracy from the textual form of v: the exponent for numbers that are formatted in
// exponential notation, otherwise the number of zeros after a "0.".
func numberFix(v float64) int {
	s := formatNumber(v)
	if i := strings.IndexByte(s, 'e'); i != -1 {
		exp := strings.TrimLeft(s[i+1:], "+-")
		n, _ := strconv.Atoi(exp)
		return n
	}
	if m := leadingZeros.FindString(s); m != "" {
		return len(m) - 1
	}
	return 0
}

// formatNumber formats v the shortest way, switching to exponential notation for very small and very large
// magnitudes.
func formatNumber(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ForEachTime calls fn with the pixel position and time of every grid line in the visible window. Calling it
// again starts over.
func (g *Grid) ForEachTime(fn func(px, t float64)) {
	min, _ := g.view.MinMax()
	for i := g.start; i <= g.end; i++ {
		t := float64(i)*g.delta + min
		rounded, _ := strconv.ParseFloat(strconv.FormatFloat(t, 'f', g.accuracy, 64), 64)
		fn(g.view.TimeToPosition(rounded), t)
	}
}

// RenderLines draws one-pixel wide grid lines from y=top with the given height into dst.
func (g *Grid) RenderLines(dst Painter, top, height float64) {
	dst.SetFillColor(g.Styles.Color)
	g.ForEachTime(func(px, _ float64) {
		dst.FillRect(px, top, 1, height)
	})
}

// RenderTimes draws the time labels of all grid lines into dst.
func (g *Grid) RenderTimes(dst Painter) {
	style := dst.LabelStyle()
	dst.SetFillColor(style.Color)
	dst.SetFont(style.Font)
	g.ForEachTime(func(px, t float64) {
		dst.FillText(g.Label(t, style.TimeUnits), px+style.PaddingLeft, style.CharHeight)
	})
}

// Label formats t with the grid's accuracy.
func (g *Grid) Label(t float64, units string) string {
	return strconv.FormatFloat(t, 'f', g.accuracy, 64) + units
}
