// Package timeframe implements the overview panel at the top of a chart. It shows the outline of all data at the
// zoom that fits everything, shades what is outside of the current view, and lets the user change the view by
// dragging knobs or selecting a range.
package timeframe

import (
	"fmt"
	"math"
	"time"

	"honnef.co/go/flamechart/cluster"
	"honnef.co/go/flamechart/container"
	"honnef.co/go/flamechart/interact"
	"honnef.co/go/flamechart/render"
	"honnef.co/go/flamechart/timegrid"
	"honnef.co/go/flamechart/tree"

	"gioui.org/f32"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"honnef.co/go/stuff/math/mathutil"
)

type Styles struct {
	Font             string  `yaml:"font"`
	FontColor        string  `yaml:"fontColor"`
	OverlayColor     string  `yaml:"overlayColor"`
	GraphStrokeColor string  `yaml:"graphStrokeColor"`
	GraphFillColor   string  `yaml:"graphFillColor"`
	BottomLineColor  string  `yaml:"bottomLineColor"`
	KnobColor        string  `yaml:"knobColor"`
	KnobStrokeColor  string  `yaml:"knobStrokeColor"`
	KnobSize         float64 `yaml:"knobSize"`
	Height           int     `yaml:"height"`
	BackgroundColor  string  `yaml:"backgroundColor"`
}

func DefaultStyles() Styles {
	return Styles{
		Font:             "9px sans-serif",
		FontColor:        "black",
		OverlayColor:     "rgba(112, 112, 112, 0.5)",
		GraphStrokeColor: "rgba(0, 0, 0, 0.10)",
		GraphFillColor:   "rgba(0, 0, 0, 0.15)",
		BottomLineColor:  "rgba(0, 0, 0, 0.25)",
		KnobColor:        "rgb(131, 131, 131)",
		KnobStrokeColor:  "white",
		KnobSize:         6,
		Height:           60,
		BackgroundColor:  "white",
	}
}

const (
	// doubleClickTimeout is the longest time between two clicks that still makes them a double click.
	doubleClickTimeout = 300 * time.Millisecond
	// graphTopPadding is the space between the time labels and the highest point of the graph.
	graphTopPadding = 4
)

// graphParams merge every run of nodes that are less than two pixels apart, regardless of their widths.
var graphParams = cluster.Params{StickDistance: 2, MinBlockSize: math.Inf(1)}

type knob uint8

const (
	noKnob knob = iota
	leftKnob
	rightKnob
)

func (k knob) String() string {
	switch k {
	case leftKnob:
		return "left"
	case rightKnob:
		return "right"
	default:
		return "none"
	}
}

// snapshotter is implemented by backends that can save and restore their pixels.
type snapshotter interface {
	Snapshot() []byte
	Restore(data []byte) error
}

// point is a vertex of the graph, in time units and levels.
type point struct {
	time  float64
	depth int
}

// Plugin is the overview panel.
type Plugin struct {
	styles Styles
	log    *zap.Logger
	// now returns the current time. Clicks are timed with it.
	now func() time.Time

	panel *render.Panel
	input *interact.Panel
	child *render.Panel
	grid  *timegrid.Grid

	metas    []cluster.MetaCluster
	min, max float64
	// graph is the outline of the data, computed for the zoom graphZoom.
	graph     []point
	maxDepth  int
	graphZoom float64

	shouldRender   bool
	snapshot       []byte
	snapshotWidth  int
	snapshotHeight int

	moving         knob
	selecting      bool
	selectionStart float64
	lastClick      time.Time
}

// New returns an overview of nodes.
func New(nodes []*tree.Node, styles Styles) (*Plugin, error) {
	p := &Plugin{styles: styles, log: zap.NewNop(), now: time.Now}
	if err := p.setData(nodes); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plugin) setData(nodes []*tree.Node) error {
	flat, err := tree.Flatten(nodes)
	if err != nil {
		return fmt.Errorf("couldn't flatten overview data: %w", err)
	}
	p.metas = cluster.MetaClusterize(flat, cluster.Always)
	p.min, p.max = tree.MinMax(flat)
	p.graph, p.maxDepth, p.graphZoom = nil, 0, 0
	p.shouldRender = true
	return nil
}

// SetData replaces the data the outline is computed from.
func (p *Plugin) SetData(nodes []*tree.Node) error {
	if err := p.setData(nodes); err != nil {
		return err
	}
	if p.panel != nil {
		p.panel.Render()
	}
	return nil
}

// SetStyles changes the plugin's styles. It takes effect with the next render.
func (p *Plugin) SetStyles(styles Styles) {
	p.styles = styles
	if p.child != nil {
		p.child.SetStylesOverrides(p.overrideStyles)
	}
	p.shouldRender = true
}

func (p *Plugin) Init(panel *render.Panel, input *interact.Panel) {
	p.panel, p.input = panel, input
	p.log = panel.Parent().Logger().Named("timeframe")

	input.Down.On(p.handleMouseDown)
	engine := input.Parent()
	// Drags continue outside of the panel.
	engine.Move.On(p.handleMouseMove)
	engine.Up.On(p.handleMouseUp)
}

func (p *Plugin) overrideStyles(s *render.Styles) {
	s.Font = p.styles.Font
	s.FontColor = p.styles.FontColor
	s.BackgroundColor = p.styles.BackgroundColor
}

func (p *Plugin) PostInit() {
	p.child = p.panel.MakeChild()
	p.child.SetStylesOverrides(p.overrideStyles)
	p.grid = timegrid.New(p.child, p.panel.Grid().Styles)
	p.child.BoundsChanged.On(func(struct{}) { p.shouldRender = true })
}

// SettingsChanged picks up the time grid styles of the canvas.
func (p *Plugin) SettingsChanged() {
	if p.grid != nil {
		p.grid.Styles = p.panel.Grid().Styles
	}
	p.shouldRender = true
}

func (p *Plugin) Height() container.Option[int] { return container.Some(p.styles.Height) }

// buildGraph computes the outline of the data at the child's initial zoom. The outline is a step function that is,
// at every time, one more than the deepest cluster covering it.
func (p *Plugin) buildGraph(zoom float64) {
	clusters := cluster.Clusterize(p.metas, zoom, p.min, p.max, graphParams)
	clusters = cluster.Reclusterize(clusters, zoom, p.min, p.max, graphParams)
	p.graph, p.maxDepth = outline(clusters)
	p.graphZoom = zoom
	p.log.Debug("overview graph computed", zap.Int("clusters", len(clusters)), zap.Int("points", len(p.graph)))
}

// outline returns the vertices of the step function over clusters, from the start of the first to the end of the
// last cluster, and the largest depth.
func outline(clusters []cluster.Cluster) ([]point, int) {
	if len(clusters) == 0 {
		return nil, 0
	}
	type edge struct {
		time  float64
		depth int
		open  bool
	}
	edges := make([]edge, 0, len(clusters)*2)
	maxDepth := 0
	for _, c := range clusters {
		d := c.Level + 1
		edges = append(edges, edge{c.Start, d, true}, edge{c.End, d, false})
		maxDepth = max(maxDepth, d)
	}
	slices.SortFunc(edges, func(a, b edge) int {
		switch {
		case a.time < b.time:
			return -1
		case a.time > b.time:
			return 1
		default:
			return 0
		}
	})

	// active counts the open clusters per depth.
	active := make([]int, maxDepth+1)
	cur := 0
	var pts []point
	for i := 0; i < len(edges); {
		t := edges[i].time
		for ; i < len(edges) && edges[i].time == t; i++ {
			if edges[i].open {
				active[edges[i].depth]++
			} else {
				active[edges[i].depth]--
			}
		}
		// Edges at the same time are applied together, so touching clusters don't dip to zero.
		next := 0
		for d := maxDepth; d > 0; d-- {
			if active[d] > 0 {
				next = d
				break
			}
		}
		if next != cur || len(pts) == 0 {
			pts = append(pts, point{t, cur}, point{t, next})
			cur = next
		}
	}
	return pts, maxDepth
}

// timeAt converts a horizontal position in the panel to a time.
func (p *Plugin) timeAt(x float64) float64 {
	lo, hi := p.panel.MinMax()
	return mathutil.Lerp(lo, hi, x/float64(p.panel.Width()))
}

// knobs returns the positions of the knobs, which mark the canvas' view.
func (p *Plugin) knobs() (left, right float64) {
	canvas := p.panel.Parent()
	lo, _ := canvas.MinMax()
	zoom := p.child.InitialZoom()
	left = (canvas.PositionX() - lo) * zoom
	right = (canvas.PositionX() + canvas.RealView() - lo) * zoom
	return left, right
}

// setView makes the canvas show [start, end], clamped to the data. If the canvas rejects the zoom, its position is
// restored.
func (p *Plugin) setView(start, end float64) {
	canvas := p.panel.Parent()
	lo, hi := canvas.MinMax()
	start, end = math.Max(start, lo), math.Min(end, hi)
	if end <= start {
		return
	}
	prev := canvas.PositionX()
	canvas.SetPositionX(start)
	if !canvas.SetZoom(float64(canvas.Width()) / (end - start)) {
		canvas.SetPositionX(prev)
	}
	canvas.Render()
}

func (p *Plugin) setLeftKnob(x float64) {
	canvas := p.panel.Parent()
	p.setView(p.timeAt(x), canvas.PositionX()+canvas.RealView())
}

func (p *Plugin) setRightKnob(x float64) {
	p.setView(p.panel.Parent().PositionX(), p.timeAt(x))
}

func (p *Plugin) setKnob(k knob, x float64) {
	switch k {
	case leftKnob:
		p.setLeftKnob(x)
	case rightKnob:
		p.setRightKnob(x)
	}
}

// selectRange makes the canvas show the times between two horizontal positions in the panel.
func (p *Plugin) selectRange(x1, x2 float64) {
	if x1 == x2 {
		return
	}
	p.setView(p.timeAt(math.Min(x1, x2)), p.timeAt(math.Max(x1, x2)))
}

func (p *Plugin) handleMouseDown(ev interact.MouseEvent) {
	if ev.Region == nil {
		return
	}
	switch ev.Region.Type {
	case interact.RegionTimeframeKnob:
		k, _ := ev.Region.Data.(knob)
		p.moving = k
		p.input.SetCursor(interact.CursorEWResize)
	case interact.RegionTimeframeArea:
		p.selecting = true
		p.selectionStart = float64(ev.Mouse.X)
	}
}

func (p *Plugin) handleMouseMove(ev interact.MouseEvent) {
	x := float64(ev.Mouse.X)
	switch {
	case p.moving != noKnob:
		p.setKnob(p.moving, x)
	case p.selecting:
		p.selectRange(p.selectionStart, x)
	}
}

func (p *Plugin) handleMouseUp(ev interact.MouseEvent) {
	active := p.moving != noKnob || p.selecting
	if active && ev.IsClick {
		now := p.now()
		if !p.lastClick.IsZero() && now.Sub(p.lastClick) < doubleClickTimeout {
			p.lastClick = time.Time{}
			canvas := p.panel.Parent()
			canvas.ResetView()
			canvas.Render()
		} else {
			p.lastClick = now
			x := float64(ev.Mouse.X)
			left, right := p.knobs()
			if math.Abs(x-left) <= math.Abs(x-right) {
				p.setLeftKnob(x)
			} else {
				p.setRightKnob(x)
			}
		}
	}
	if active {
		p.moving, p.selecting = noKnob, false
		p.input.ClearCursor()
	}
}

// offscreenRender draws the time grid and the graph into the child surface and remembers the result.
func (p *Plugin) offscreenRender() {
	child := p.child
	lo, _ := child.MinMax()
	zoom := child.InitialZoom()
	child.SetZoom(zoom)
	child.SetPositionX(lo)
	child.Clear()

	if p.graph == nil || p.graphZoom != zoom {
		p.buildGraph(zoom)
	}

	height := float64(child.Height())
	p.grid.Recalc()
	p.grid.RenderLines(child, 0, height)
	p.grid.RenderTimes(child)

	if len(p.graph) > 0 {
		levelHeight := (height - child.CharHeight() - graphTopPadding) / float64(p.maxDepth)
		pts := make([]f32.Point, 0, len(p.graph)+2)
		for _, pt := range p.graph {
			pts = append(pts, f32.Pt(float32(child.TimeToPosition(pt.time)), float32(height-float64(pt.depth)*levelHeight)))
		}
		child.FillPath(p.styles.GraphFillColor, pts)
		child.StrokePath(p.styles.GraphStrokeColor, pts)
	}

	child.SetFillColor(p.styles.BottomLineColor)
	child.FillRect(0, height-1, float64(child.Width()), 1)

	if s, ok := child.Backend().(snapshotter); ok {
		p.snapshot = s.Snapshot()
		p.snapshotWidth, p.snapshotHeight = child.Width(), child.Height()
	}
	p.shouldRender = false
}

// restore brings back the last offscreen render. It reports false if there is none that fits the child.
func (p *Plugin) restore() bool {
	if p.shouldRender || p.snapshot == nil || p.snapshotWidth != p.child.Width() || p.snapshotHeight != p.child.Height() {
		return false
	}
	s, ok := p.child.Backend().(snapshotter)
	if !ok {
		return false
	}
	if err := s.Restore(p.snapshot); err != nil {
		p.log.Debug("couldn't restore overview", zap.Error(err))
		return false
	}
	return true
}

func (p *Plugin) Render() render.RenderResult {
	if p.child == nil {
		return render.Handled
	}
	if !p.restore() {
		p.offscreenRender()
	}
	p.panel.DrawImage(p.child.Surface, 0, 0)

	s := p.styles
	width := float64(p.panel.Width())
	height := float64(p.panel.Height())
	left, right := p.knobs()

	p.panel.SetFillColor(s.OverlayColor)
	p.panel.FillRect(0, 0, left, height)
	p.panel.FillRect(right, 0, width-right, height)

	knobHeight := s.KnobSize * 3
	for _, k := range []struct {
		knob knob
		x    float64
	}{{leftKnob, left}, {rightKnob, right}} {
		p.panel.SetFillColor(s.KnobColor)
		p.panel.FillRect(k.x, 0, 1, height)
		kx, ky := k.x-s.KnobSize/2, (height-knobHeight)/2
		p.panel.FillRect(kx, ky, s.KnobSize, knobHeight)
		p.panel.RenderStroke(s.KnobStrokeColor, kx, ky, s.KnobSize, knobHeight)
		p.input.AddHitRegion(interact.RegionTimeframeKnob, k.knob, kx, 0, s.KnobSize, height, interact.CursorEWResize)
	}
	p.input.AddHitRegion(interact.RegionTimeframeArea, nil, 0, 0, width, height, interact.CursorText)
	return render.Handled
}
