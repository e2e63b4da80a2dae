package render

import (
	"context"
	"math"
	rtrace "runtime/trace"
	"time"

	"honnef.co/go/flamechart/metrics"
	"honnef.co/go/flamechart/timegrid"

	"gioui.org/f32"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Canvas owns the final image. It stacks the panels of its plugins vertically, keeps the time axis shared by all of
// them, and renders in frames requested from a FrameRequester:
//
//   - Render schedules a full frame, which recomputes the time grid and redraws every panel.
//   - PartialRender schedules a partial frame, which redraws only the requested panels.
//
// Both end by compositing all panels into the canvas. Requests made while a frame of the same kind is pending are
// merged into it, and a full render drops all pending partial requests.
type Canvas struct {
	*Surface

	grid    *timegrid.Grid
	slots   []slot
	frames  FrameRequester
	options Options
	tooltip TooltipFunc
	log     *zap.Logger
	metrics *metrics.Render

	state      SchedulerState
	fullFrame  FrameID
	partFrame  FrameID
	requested  []int
	freeSpace  int
	gridStyles timegrid.Styles
}

// CanvasOption configures a Canvas.
type CanvasOption func(*Canvas)

func WithLogger(l *zap.Logger) CanvasOption             { return func(c *Canvas) { c.log = l } }
func WithMetrics(m *metrics.Render) CanvasOption        { return func(c *Canvas) { c.metrics = m } }
func WithFrameRequester(fr FrameRequester) CanvasOption { return func(c *Canvas) { c.frames = fr } }
func WithStyles(s Styles) CanvasOption                  { return func(c *Canvas) { c.Surface.SetStyles(s) } }
func WithTimeGridStyles(s timegrid.Styles) CanvasOption { return func(c *Canvas) { c.gridStyles = s } }
func WithOptions(o Options) CanvasOption                { return func(c *Canvas) { c.options = o } }
func WithTooltip(fn TooltipFunc) CanvasOption           { return func(c *Canvas) { c.tooltip = fn } }

// NewCanvas returns a canvas drawing into b. Without WithFrameRequester, frames are queued in a FrameQueue that
// can be retrieved with Frames.
func NewCanvas(b Backend, opts ...CanvasOption) *Canvas {
	c := &Canvas{
		Surface:    NewSurface(b, DefaultStyles()),
		options:    DefaultOptions(),
		log:        zap.NewNop(),
		gridStyles: timegrid.DefaultStyles(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.frames == nil {
		c.frames = &FrameQueue{}
	}
	c.timeUnits = c.options.TimeUnits
	c.grid = timegrid.New(c, c.gridStyles)
	return c
}

func (c *Canvas) Grid() *timegrid.Grid           { return c.grid }
func (c *Canvas) Frames() FrameRequester         { return c.frames }
func (c *Canvas) Options() Options               { return c.options }
func (c *Canvas) SchedulerState() SchedulerState { return c.state }
func (c *Canvas) Logger() *zap.Logger            { return c.log }
func (c *Canvas) FreeSpace() int                 { return c.freeSpace }

// Panels returns the panels in layout order.
func (c *Canvas) Panels() []*Panel {
	out := make([]*Panel, len(c.slots))
	for i, s := range c.slots {
		out[i] = s.panel
	}
	return out
}

// AddPlugin creates the panel for p. The panel starts out with a height of zero until the next layout.
func (c *Canvas) AddPlugin(p Plugin) *Panel {
	panel := newPanel(c, c.backend.Offscreen(c.width, 0), len(c.slots))
	panel.SetMinMax(c.min, c.max)
	panel.Surface.SetZoom(c.zoom)
	panel.Surface.SetPositionX(c.positionX)
	c.slots = append(c.slots, newSlot(p, panel))
	return panel
}

// SetStyles changes the styles of the canvas and all panels.
func (c *Canvas) SetStyles(s Styles) {
	c.Surface.SetStyles(s)
	for _, sl := range c.slots {
		sl.panel.SetStyles(s)
	}
}

// SetOptions changes the options of the canvas and all panels.
func (c *Canvas) SetOptions(o Options) {
	c.options = o
	c.timeUnits = o.TimeUnits
	for _, sl := range c.slots {
		sl.panel.timeUnits = o.TimeUnits
		for _, child := range sl.panel.children {
			child.timeUnits = o.TimeUnits
		}
	}
}

// SetTimeGridStyles changes the grid styles.
func (c *Canvas) SetTimeGridStyles(s timegrid.Styles) {
	c.gridStyles = s
	c.grid.Styles = s
}

// SetTooltip replaces the built-in tooltips with fn. A nil fn restores them.
func (c *Canvas) SetTooltip(fn TooltipFunc) { c.tooltip = fn }

// Tooltip returns the custom tooltip function, if any.
func (c *Canvas) Tooltip() TooltipFunc { return c.tooltip }

// CalcMinMax sets the bounds to the union of all plugins' bounds, or [0, 0] if no plugin has any.
func (c *Canvas) CalcMinMax() {
	var (
		min, max = math.Inf(1), math.Inf(-1)
		found    bool
	)
	for _, s := range c.slots {
		if s.bounds == nil {
			continue
		}
		if lo, hi, ok := s.bounds(); ok {
			min, max = math.Min(min, lo), math.Max(max, hi)
			found = true
		}
	}
	if !found {
		min, max = 0, 0
	}
	c.SetMinMax(min, max)
}

// SetMinMax sets the bounds of the canvas and all panels.
func (c *Canvas) SetMinMax(min, max float64) {
	c.Surface.SetMinMax(min, max)
	for _, s := range c.slots {
		s.panel.SetMinMax(min, max)
	}
}

// SetZoom sets the zoom of the canvas and all panels. Zooming in is rejected once the time grid labels with
// timegrid.MaxAccuracy decimals.
func (c *Canvas) SetZoom(zoom float64) bool {
	if c.grid.Accuracy() >= timegrid.MaxAccuracy && zoom > c.zoom {
		c.metrics.ZoomRejected()
		c.log.Debug("zoom rejected", zap.Float64("zoom", zoom), zap.Int("accuracy", c.grid.Accuracy()))
		return false
	}
	c.setZoom(zoom)
	return true
}

func (c *Canvas) setZoom(zoom float64) {
	c.Surface.SetZoom(zoom)
	for _, s := range c.slots {
		s.panel.Surface.SetZoom(zoom)
	}
}

// SetPositionX sets the position of the canvas and all panels and returns by how much it moved.
func (c *Canvas) SetPositionX(x float64) float64 {
	delta := c.Surface.SetPositionX(x)
	for _, s := range c.slots {
		s.panel.Surface.SetPositionX(x)
	}
	return delta
}

// ResetView shows all data. Unlike SetZoom it can't be rejected.
func (c *Canvas) ResetView() {
	c.setZoom(c.InitialZoom())
	c.SetPositionX(c.min)
	c.grid.Recalc()
}

// TryToChangePosition pans by delta time units without leaving the bounds.
func (c *Canvas) TryToChangePosition(delta float64) {
	c.SetPositionX(clampPosition(c.positionX, delta, c.RealView(), c.min, c.max))
}

type sizeClass uint8

const (
	classStatic sizeClass = iota
	classFlexibleStatic
	classFlexibleGrowing
)

// ChildrenSizes computes the layout of all panels. Panels with a fixed height keep it, flexible panels with a
// height (from their plugin or from the user) keep theirs, and the remaining space is split evenly, rounding
// down, among panels without a height. Collapsed panels are zero pixels tall. freeSpace is the number of unused
// pixels below the last panel.
func (c *Canvas) ChildrenSizes() (sizes []Size, freeSpace int) {
	classes := make([]sizeClass, len(c.slots))
	heights := make([]int, len(c.slots))
	free := c.height
	growing := 0
	for i, s := range c.slots {
		p := s.panel
		h, ok := s.plugin.Height().Get()
		switch {
		case p.flexible && (ok || p.userSized):
			classes[i] = classFlexibleStatic
			switch {
			case p.height > 0:
				heights[i] = p.height
			case ok:
				heights[i] = h
			}
		case !ok:
			classes[i] = classFlexibleGrowing
		default:
			classes[i] = classStatic
			heights[i] = h
		}
		if p.collapsed {
			heights[i] = 0
			continue
		}
		if classes[i] == classFlexibleGrowing {
			growing++
		} else {
			free -= heights[i]
		}
	}

	// Without growing panels the free space stays undistributed.
	if growing > 0 && free > 0 {
		part := free / growing
		for i, s := range c.slots {
			if classes[i] == classFlexibleGrowing && !s.panel.collapsed {
				heights[i] = part
			}
		}
	}

	sizes = make([]Size, len(c.slots))
	pos := 0
	for i, h := range heights {
		sizes[i] = Size{Width: c.width, Height: h, Position: pos}
		pos += h
	}
	return sizes, max(c.height-pos, 0)
}

// RecalcChildrenSizes lays out all panels.
func (c *Canvas) RecalcChildrenSizes() {
	sizes, free := c.ChildrenSizes()
	c.freeSpace = free
	for i, s := range c.slots {
		s.panel.Resize(sizes[i], true)
	}
	if ce := c.log.Check(zap.DebugLevel, "layout"); ce != nil {
		heights := make([]int, len(sizes))
		for i, sz := range sizes {
			heights[i] = sz.Height
		}
		ce.Write(zap.Ints("heights", heights), zap.Int("free", free))
	}
}

// Resize resizes the canvas and lays out the panels. If the data no longer fills the wider canvas the view is
// reset, otherwise the view is moved to keep its center in place.
func (c *Canvas) Resize(width, height int) bool {
	prevWidth := c.width
	if !c.Surface.Resize(width, height) {
		return false
	}
	c.RecalcChildrenSizes()
	if c.InitialZoom() > c.zoom {
		c.ResetView()
	} else if c.positionX > c.min {
		c.TryToChangePosition(-c.PixelToTime(float64(width-prevWidth) / 2))
	}
	return true
}

// Render schedules a full frame.
func (c *Canvas) Render() {
	if c.state&PartialPending != 0 {
		c.frames.CancelFrame(c.partFrame)
		c.state &^= PartialPending
	}
	c.requested = c.requested[:0]
	if c.state&FullPending != 0 {
		c.metrics.Coalesced(metrics.KindFull)
		return
	}
	c.state |= FullPending
	c.fullFrame = c.frames.RequestFrame(c.fullRender)
	c.log.Debug("full render scheduled")
}

// PartialRender schedules a partial frame that redraws the panel with the given ID.
func (c *Canvas) PartialRender(id int) {
	if id >= 0 && id < len(c.slots) && !slices.Contains(c.requested, id) {
		c.requested = append(c.requested, id)
	}
	if c.state&PartialPending != 0 {
		c.metrics.Coalesced(metrics.KindPartial)
		return
	}
	c.state |= PartialPending
	c.partFrame = c.frames.RequestFrame(c.partialRender)
}

func (c *Canvas) fullRender() {
	defer rtrace.StartRegion(context.Background(), "render.Canvas.fullRender").End()
	t := time.Now()
	c.state &^= FullPending
	c.grid.Recalc()
	for i := range c.slots {
		c.renderPlugin(i)
	}
	c.shallowRender()
	c.metrics.Frame(metrics.KindFull, time.Since(t))
}

func (c *Canvas) partialRender() {
	defer rtrace.StartRegion(context.Background(), "render.Canvas.partialRender").End()
	t := time.Now()
	c.state &^= PartialPending
	for _, id := range c.requested {
		c.renderPlugin(id)
	}
	c.requested = c.requested[:0]
	c.shallowRender()
	c.metrics.Frame(metrics.KindPartial, time.Since(t))
}

func (c *Canvas) renderPlugin(i int) {
	s := c.slots[i]
	s.panel.Clear()
	if s.panel.collapsed {
		return
	}
	if s.plugin.Render() == Delegate {
		s.panel.StandardRender()
	}
}

// shallowRender composites all panels and runs the plugins' overlays and tooltips.
func (c *Canvas) shallowRender() {
	c.Clear()
	if c.freeSpace > 0 {
		c.grid.RenderLines(c, float64(c.height-c.freeSpace), float64(c.freeSpace))
	}
	for _, s := range c.slots {
		if !s.panel.collapsed {
			c.DrawImage(s.panel.Surface, 0, float64(s.panel.position))
		}
	}
	for _, s := range c.slots {
		if s.postRender != nil {
			s.postRender()
		}
	}

	rendered := false
	for _, s := range c.slots {
		if s.renderTooltip != nil && s.renderTooltip() {
			rendered = true
			break
		}
	}
	if !rendered && c.tooltip != nil {
		c.tooltip(nil, f32.Point{})
	}
}
