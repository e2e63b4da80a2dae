package render

import (
	"math"
	"unicode/utf8"

	"honnef.co/go/flamechart/event"
	"honnef.co/go/flamechart/timegrid"

	"gioui.org/f32"
)

// Placeholder replaces the middle of text that doesn't fit its block.
const Placeholder = "…"

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

type queuedRect struct {
	x, y, w float64
}

type queuedText struct {
	text    string
	x, y, w float64
}

type queuedStroke struct {
	color      string
	x, y, w, h float64
}

// Surface is a drawing surface with a time axis. It maps times to pixels using its zoom (pixels per time unit) and
// position (the time at its left edge), keeps the data bounds, and batches drawing through render queues that are
// drained by the Resolve methods.
//
// Surface deduplicates fill color, stroke color and font changes: setting the current value again doesn't reach
// the backend.
type Surface struct {
	// BoundsChanged is emitted after SetMinMax changed the bounds.
	BoundsChanged event.Emitter[struct{}]
	// Cleared is emitted after the surface has been cleared.
	Cleared event.Emitter[struct{}]

	backend Backend
	styles  Styles

	width, height int
	zoom          float64
	positionX     float64
	min, max      float64
	timeUnits     string

	charHeight            float64
	placeholderWidth      float64
	avgCharWidth          float64
	minTextWidth          float64
	blockPaddingTopBottom float64

	fillColor   string
	strokeColor string
	font        string

	rectColors []string
	rects      map[string][]queuedRect
	texts      []queuedText
	strokes    []queuedStroke
}

// NewSurface returns a surface drawing into b. The surface takes its size from b.
func NewSurface(b Backend, styles Styles) *Surface {
	w, h := b.Size()
	s := &Surface{
		backend:   b,
		width:     w,
		height:    h,
		zoom:      1,
		timeUnits: DefaultOptions().TimeUnits,
		rects:     map[string][]queuedRect{},
	}
	s.SetStyles(styles)
	return s
}

func (s *Surface) Backend() Backend { return s.backend }
func (s *Surface) Styles() Styles   { return s.styles }

// SetStyles changes the styles and recomputes the font metrics.
func (s *Surface) SetStyles(styles Styles) {
	s.styles = styles
	s.font = ""
	s.SetFont(styles.Font)
	s.charHeight = FontSize(styles.Font) + 1
	s.placeholderWidth = s.backend.MeasureText(Placeholder)
	s.avgCharWidth = s.backend.MeasureText(alphabet) / float64(len(alphabet))
	s.minTextWidth = s.avgCharWidth + s.placeholderWidth
	s.blockPaddingTopBottom = math.Max(0, math.Floor((float64(styles.BlockHeight)-s.charHeight)/2))
}

func (s *Surface) Width() int                 { return s.width }
func (s *Surface) Height() int                { return s.height }
func (s *Surface) Zoom() float64              { return s.zoom }
func (s *Surface) PositionX() float64         { return s.positionX }
func (s *Surface) MinMax() (float64, float64) { return s.min, s.max }
func (s *Surface) TimeUnits() string          { return s.timeUnits }

func (s *Surface) BlockHeight() float64           { return float64(s.styles.BlockHeight) }
func (s *Surface) CharHeight() float64            { return s.charHeight }
func (s *Surface) AvgCharWidth() float64          { return s.avgCharWidth }
func (s *Surface) PlaceholderWidth() float64      { return s.placeholderWidth }
func (s *Surface) MinTextWidth() float64          { return s.minTextWidth }
func (s *Surface) BlockPaddingTopBottom() float64 { return s.blockPaddingTopBottom }

// InitialZoom returns the zoom at which the data bounds fill the surface's width exactly, or 1 if the bounds are
// empty.
func (s *Surface) InitialZoom() float64 {
	if s.max-s.min <= 0 {
		return 1
	}
	return float64(s.width) / (s.max - s.min)
}

// RealView returns the duration of the visible time window.
func (s *Surface) RealView() float64 { return float64(s.width) / s.zoom }

func (s *Surface) TimeToPosition(t float64) float64 { return t*s.zoom - s.positionX*s.zoom }
func (s *Surface) PixelToTime(px float64) float64   { return px / s.zoom }

// SetZoom sets the zoom. It always succeeds on a Surface; Canvas may reject zoom changes.
func (s *Surface) SetZoom(zoom float64) bool {
	s.zoom = zoom
	return true
}

// SetPositionX sets the position and returns by how much it moved.
func (s *Surface) SetPositionX(x float64) float64 {
	delta := x - s.positionX
	s.positionX = x
	return delta
}

// SetMinMax sets the data bounds, emitting BoundsChanged if they changed.
func (s *Surface) SetMinMax(min, max float64) {
	if s.min == min && s.max == max {
		return
	}
	s.min, s.max = min, max
	s.BoundsChanged.Emit(struct{}{})
}

// ResetView shows the entire data range.
func (s *Surface) ResetView() {
	s.SetZoom(s.InitialZoom())
	s.SetPositionX(s.min)
}

// TryToChangePosition moves the view by delta time units, without leaving the data bounds.
func (s *Surface) TryToChangePosition(delta float64) {
	s.SetPositionX(clampPosition(s.positionX, delta, s.RealView(), s.min, s.max))
}

// clampPosition returns the position after moving pos by delta, keeping [pos, pos+realView] inside [min, max].
func clampPosition(pos, delta, realView, min, max float64) float64 {
	next := pos + delta
	switch {
	case realView >= max-min:
		return min
	case next >= min && next+realView <= max:
		return next
	case next <= min:
		return min
	case next+realView >= max:
		return max - realView
	default:
		return pos
	}
}

// Resize changes the size of the surface. It reports whether the size changed.
func (s *Surface) Resize(width, height int) bool {
	if width == s.width && height == s.height {
		return false
	}
	s.width, s.height = width, height
	s.backend.Resize(width, height)
	// The backend lost its state.
	s.fillColor, s.strokeColor, s.font = "", "", ""
	s.SetFont(s.styles.Font)
	return true
}

func (s *Surface) SetFillColor(c string) {
	if c != s.fillColor {
		s.fillColor = c
		s.backend.SetFillColor(c)
	}
}

func (s *Surface) SetStrokeColor(c string) {
	if c != s.strokeColor {
		s.strokeColor = c
		s.backend.SetStrokeColor(c)
	}
}

func (s *Surface) SetFont(font string) {
	if font != s.font {
		s.font = font
		s.backend.SetFont(font)
	}
}

func (s *Surface) SetLineDash(segments []float64) { s.backend.SetLineDash(segments) }

func (s *Surface) FillRect(x, y, w, h float64)        { s.backend.FillRect(x, y, w, h) }
func (s *Surface) StrokeRect(x, y, w, h float64)      { s.backend.StrokeRect(x, y, w, h) }
func (s *Surface) FillText(text string, x, y float64) { s.backend.FillText(text, x, y) }
func (s *Surface) MeasureText(text string) float64    { return s.backend.MeasureText(text) }

// FillPath fills the polygon pts with color.
func (s *Surface) FillPath(color string, pts []f32.Point) {
	s.SetFillColor(color)
	s.backend.FillPath(pts)
}

// StrokePath draws the polyline pts with color.
func (s *Surface) StrokePath(color string, pts []f32.Point) {
	s.SetStrokeColor(color)
	s.backend.StrokePath(pts)
}

// DrawImage composites src at (x, y).
func (s *Surface) DrawImage(src *Surface, x, y float64) {
	s.backend.DrawImage(src.backend, x, y)
}

// Clear fills the surface with the background color.
func (s *Surface) Clear() {
	s.backend.Clear()
	s.SetFillColor(s.styles.BackgroundColor)
	s.backend.FillRect(0, 0, float64(s.width), float64(s.height))
	s.Cleared.Emit(struct{}{})
}

// RenderBlock draws a block of the given color, one block height tall.
func (s *Surface) RenderBlock(color string, x, y, w float64) {
	s.SetFillColor(color)
	s.backend.FillRect(x, y, w, float64(s.styles.BlockHeight))
}

// AddRectToRenderQueue queues a block. Blocks are drawn grouped by color.
func (s *Surface) AddRectToRenderQueue(color string, x, y, w float64) {
	q, ok := s.rects[color]
	if !ok {
		s.rectColors = append(s.rectColors, color)
	}
	s.rects[color] = append(q, queuedRect{x, y, w})
}

// AddTextToRenderQueue queues the label of a block that starts at x and is w pixels wide.
func (s *Surface) AddTextToRenderQueue(text string, x, y, w float64) {
	if text == "" {
		return
	}
	s.texts = append(s.texts, queuedText{text, x, y, w})
}

// AddStrokeToRenderQueue queues an outlined rectangle.
func (s *Surface) AddStrokeToRenderQueue(color string, x, y, w, h float64) {
	s.strokes = append(s.strokes, queuedStroke{color, x, y, w, h})
}

func (s *Surface) ResolveRectRenderQueue() {
	for _, c := range s.rectColors {
		for _, r := range s.rects[c] {
			s.RenderBlock(c, r.x, r.y, r.w)
		}
		delete(s.rects, c)
	}
	s.rectColors = s.rectColors[:0]
}

func (s *Surface) ResolveTextRenderQueue() {
	if len(s.texts) == 0 {
		return
	}
	s.SetFillColor(s.styles.FontColor)
	s.SetFont(s.styles.Font)
	for _, t := range s.texts {
		// Blocks that start left of the surface only have their visible part available for text.
		maxWidth := t.w - (s.styles.BlockPaddingLeftRight*2 - math.Min(t.x, 0))
		if maxWidth > 0 {
			s.RenderText(t.text, t.x, t.y, maxWidth)
		}
	}
	clear(s.texts)
	s.texts = s.texts[:0]
}

func (s *Surface) ResolveStrokeRenderQueue() {
	for _, st := range s.strokes {
		s.SetStrokeColor(st.color)
		s.backend.StrokeRect(st.x, st.y, st.w, st.h)
	}
	s.strokes = s.strokes[:0]
}

// RenderText draws the label of a block at (x, y), truncating it to maxWidth pixels.
func (s *Surface) RenderText(text string, x, y, maxWidth float64) {
	text, ok := s.TruncateText(text, maxWidth)
	if !ok {
		return
	}
	s.backend.FillText(text, math.Max(x, 0)+s.styles.BlockPaddingLeftRight, y+float64(s.styles.BlockHeight)-s.blockPaddingTopBottom)
}

// TruncateText shortens text to fit into maxWidth pixels by replacing its middle with Placeholder. It returns false
// if not even one character on each side of the placeholder fits.
func (s *Surface) TruncateText(text string, maxWidth float64) (string, bool) {
	if s.backend.MeasureText(text) <= maxWidth {
		return text, true
	}
	if s.avgCharWidth <= 0 {
		return "", false
	}
	maxChars := math.Floor((maxWidth - s.placeholderWidth) / s.avgCharWidth)
	half := (maxChars - 1) / 2
	if half <= 0 {
		return "", false
	}
	left, right := int(math.Ceil(half)), int(math.Floor(half))
	n := utf8.RuneCountInString(text)
	if left+right >= n {
		return text, true
	}
	runes := []rune(text)
	return string(runes[:left]) + Placeholder + string(runes[n-right:]), true
}

// LabelStyle implements timegrid.Painter.
func (s *Surface) LabelStyle() timegrid.LabelStyle {
	return timegrid.LabelStyle{
		Font:        s.styles.Font,
		Color:       s.styles.FontColor,
		PaddingLeft: s.styles.BlockPaddingLeftRight,
		CharHeight:  s.charHeight,
		TimeUnits:   s.timeUnits,
	}
}
