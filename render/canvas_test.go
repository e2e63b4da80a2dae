package render

import (
	"testing"

	"honnef.co/go/flamechart/container"
	"honnef.co/go/flamechart/interact"
	"honnef.co/go/flamechart/timegrid"

	"gioui.org/f32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	_ interact.Viewport  = (*Canvas)(nil)
	_ interact.PanelView = (*Panel)(nil)
)

type plugin struct {
	height  container.Option[int]
	result  RenderResult
	renders int
	draw    func()
}

func fixed(h int) *plugin { return &plugin{height: container.Some(h)} }
func growing() *plugin    { return &plugin{height: container.None[int]()} }

func (p *plugin) Height() container.Option[int] { return p.height }

func (p *plugin) Render() RenderResult {
	p.renders++
	if p.draw != nil {
		p.draw()
	}
	return p.result
}

type bounded struct {
	plugin
	min, max float64
	ok       bool
}

func (p *bounded) Bounds() (float64, float64, bool) { return p.min, p.max, p.ok }

type tooltips struct {
	plugin
	shows bool
	calls int
}

func (p *tooltips) RenderTooltip() bool {
	p.calls++
	return p.shows
}

type overlay struct {
	plugin
	posts int
}

func (p *overlay) PostRender() { p.posts++ }

func newCanvas(t *testing.T, w, h int) (*Canvas, *recorder, *FrameQueue) {
	b := newRecorder(w, h)
	c := NewCanvas(b, WithLogger(zaptest.NewLogger(t)))
	return c, b, c.Frames().(*FrameQueue)
}

func heights(c *Canvas) []int {
	var out []int
	for _, p := range c.Panels() {
		out = append(out, p.Height())
	}
	return out
}

func positions(c *Canvas) []int {
	var out []int
	for _, p := range c.Panels() {
		out = append(out, p.Position())
	}
	return out
}

func TestCanvasResetView(t *testing.T) {
	c, _, _ := newCanvas(t, 200, 100)
	panel := c.AddPlugin(&bounded{plugin: *fixed(10), min: 0, max: 100, ok: true})
	c.CalcMinMax()
	c.ResetView()

	assert.Equal(t, 2.0, c.InitialZoom())
	assert.Equal(t, 2.0, c.Zoom())
	assert.Equal(t, 0.0, c.PositionX())
	assert.Equal(t, 2.0, panel.Zoom(), "panel zoom")
	lo, hi := panel.MinMax()
	assert.Equal(t, [2]float64{0, 100}, [2]float64{lo, hi}, "panel bounds")
}

func TestCalcMinMax(t *testing.T) {
	c, _, _ := newCanvas(t, 200, 100)
	c.AddPlugin(&bounded{plugin: *fixed(10), min: 10, max: 50, ok: true})
	c.AddPlugin(growing())
	c.AddPlugin(&bounded{plugin: *fixed(10), min: -5, max: 20, ok: true})
	c.AddPlugin(&bounded{plugin: *fixed(10), min: -1000, max: 1000, ok: false})
	c.CalcMinMax()
	lo, hi := c.MinMax()
	assert.Equal(t, -5.0, lo)
	assert.Equal(t, 50.0, hi)

	empty, _, _ := newCanvas(t, 200, 100)
	empty.SetMinMax(3, 4)
	empty.AddPlugin(growing())
	empty.CalcMinMax()
	lo, hi = empty.MinMax()
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}

func TestChildrenSizes(t *testing.T) {
	c, _, _ := newCanvas(t, 200, 100)
	c.AddPlugin(fixed(20))
	a := c.AddPlugin(growing())
	b := c.AddPlugin(growing())
	f := c.AddPlugin(fixed(10))
	f.SetFlexible()
	c.RecalcChildrenSizes()

	assert.Equal(t, []int{20, 35, 35, 10}, heights(c))
	assert.Equal(t, []int{0, 20, 55, 90}, positions(c))
	assert.Zero(t, c.FreeSpace())

	// Shrinking a panel to nothing collapses it and hands its space to the other growing panel.
	a.SetHeight(0)
	require.True(t, a.Collapsed())
	assert.Equal(t, []int{20, 0, 70, 10}, heights(c))
	assert.Equal(t, []int{0, 20, 20, 90}, positions(c))

	// Growing it again expands it. It isn't flexible, so it shares the space again.
	a.SetHeight(30)
	require.False(t, a.Collapsed())
	assert.Equal(t, []int{20, 35, 35, 10}, heights(c))

	// Flexible panels keep the height they were given.
	b.SetFlexible()
	b.SetHeight(50)
	assert.Equal(t, []int{20, 20, 50, 10}, heights(c))
	f.SetHeight(15)
	assert.Equal(t, []int{20, 15, 50, 15}, heights(c))
}

func TestChildrenSizesWithoutGrowing(t *testing.T) {
	c, _, _ := newCanvas(t, 200, 100)
	c.AddPlugin(fixed(20))
	c.AddPlugin(fixed(30))
	c.RecalcChildrenSizes()
	assert.Equal(t, []int{20, 30}, heights(c))
	assert.Equal(t, 50, c.FreeSpace())
}

func TestChildrenSizesCollapsed(t *testing.T) {
	c, _, _ := newCanvas(t, 200, 100)
	c.AddPlugin(fixed(20))
	collapsed := c.AddPlugin(fixed(30))
	c.AddPlugin(growing())
	collapsed.Collapse()
	c.RecalcChildrenSizes()
	assert.Equal(t, []int{20, 0, 80}, heights(c))
	assert.Equal(t, []int{0, 20, 20}, positions(c))
}

func TestScheduler(t *testing.T) {
	c, _, q := newCanvas(t, 200, 100)
	requests := 0
	q.OnRequest = func() { requests++ }
	p0, p1 := fixed(10), fixed(10)
	c.AddPlugin(p0)
	c.AddPlugin(p1)
	c.RecalcChildrenSizes()

	c.Render()
	c.Render()
	assert.Equal(t, FullPending, c.SchedulerState())
	c.PartialRender(0)
	assert.Equal(t, FullPending|PartialPending, c.SchedulerState())
	// A full render supersedes the pending partial one.
	c.Render()
	assert.Equal(t, FullPending, c.SchedulerState())
	assert.Equal(t, 1, requests)

	assert.Equal(t, 1, q.Tick())
	assert.Equal(t, Idle, c.SchedulerState())
	assert.Equal(t, 1, p0.renders)
	assert.Equal(t, 1, p1.renders)

	c.PartialRender(0)
	c.PartialRender(0)
	assert.Equal(t, 1, q.Tick())
	assert.Equal(t, 2, p0.renders)
	assert.Equal(t, 1, p1.renders)

	// Unknown panels only composite.
	c.PartialRender(-1)
	c.PartialRender(7)
	assert.Equal(t, 1, q.Tick())
	assert.Equal(t, 2, p0.renders)
	assert.Equal(t, 1, p1.renders)
	assert.Zero(t, q.Tick())
}

func TestPanelRender(t *testing.T) {
	c, _, q := newCanvas(t, 200, 100)
	p0, p1 := fixed(10), fixed(10)
	c.AddPlugin(p0)
	panel := c.AddPlugin(p1)
	c.RecalcChildrenSizes()

	panel.Render()
	q.Tick()
	assert.Equal(t, 0, p0.renders)
	assert.Equal(t, 1, p1.renders)

	child := panel.MakeChild()
	child.Render()
	q.Tick()
	assert.Equal(t, 2, p1.renders, "a nested panel renders its owner")
}

func TestCollapsedNotComposited(t *testing.T) {
	c, b, q := newCanvas(t, 200, 100)
	p0, p1 := fixed(10), growing()
	c.AddPlugin(p0)
	c.AddPlugin(p1).Collapse()
	c.RecalcChildrenSizes()
	c.Render()
	b.reset()
	q.Tick()

	assert.Equal(t, 0, p1.renders)
	assert.Equal(t, []string{"image 0 0"}, b.filter("image"))
}

func TestDelegate(t *testing.T) {
	c, b, q := newCanvas(t, 200, 100)
	c.SetMinMax(0, 100)
	c.ResetView()
	delegating, handling := fixed(20), fixed(20)
	handling.result = Handled
	dp := c.AddPlugin(delegating)
	hp := c.AddPlugin(handling)
	delegating.draw = func() { dp.AddRectToRenderQueue("red", 0, 0, 10) }
	handling.draw = func() { hp.AddRectToRenderQueue("blue", 0, 0, 10) }
	c.RecalcChildrenSizes()
	c.Render()
	q.Tick()

	db, hb := b.children[0], b.children[1]
	assert.Contains(t, db.ops, "fill red")
	assert.Contains(t, db.ops, "rect 0 0 10 16")
	assert.Contains(t, db.ops, "fill "+timegrid.DefaultStyles().Color, "grid lines")
	assert.NotContains(t, hb.ops, "fill blue")
}

func TestTooltipShortCircuit(t *testing.T) {
	c, _, q := newCanvas(t, 200, 100)
	first := &tooltips{plugin: *fixed(10), shows: true}
	second := &tooltips{plugin: *fixed(10), shows: true}
	c.AddPlugin(first)
	c.AddPlugin(second)
	var custom []any
	c.SetTooltip(func(data any, mouse f32.Point) { custom = append(custom, data) })
	c.Render()
	q.Tick()
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
	assert.Empty(t, custom)

	first.shows, second.shows = false, false
	c.Render()
	q.Tick()
	assert.Equal(t, 2, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, []any{nil}, custom)
}

func TestPostRender(t *testing.T) {
	c, _, q := newCanvas(t, 200, 100)
	o := &overlay{plugin: *fixed(10)}
	c.AddPlugin(o)
	c.Render()
	q.Tick()
	c.PartialRender(0)
	q.Tick()
	assert.Equal(t, 2, o.posts)
}

func TestZoomCeiling(t *testing.T) {
	c, _, _ := newCanvas(t, 1000, 100)
	panel := c.AddPlugin(&bounded{plugin: *fixed(10), min: 0, max: 1, ok: true})
	c.CalcMinMax()
	c.ResetView()

	deep := 1000.0 * (1 << 20)
	require.True(t, c.SetZoom(deep))
	c.Grid().Recalc()
	require.GreaterOrEqual(t, c.Grid().Accuracy(), timegrid.MaxAccuracy)

	assert.False(t, c.SetZoom(deep*2), "zooming in past the ceiling")
	assert.Equal(t, deep, c.Zoom())
	assert.Equal(t, deep, panel.Zoom())
	assert.True(t, c.SetZoom(deep/2), "zooming out")

	c.ResetView()
	assert.Equal(t, 1000.0, c.Zoom())
}

func TestCanvasResize(t *testing.T) {
	c, _, _ := newCanvas(t, 200, 100)
	c.AddPlugin(&bounded{plugin: *growing(), min: 0, max: 100, ok: true})
	c.CalcMinMax()
	c.ResetView()
	c.RecalcChildrenSizes()

	require.True(t, c.Resize(400, 100))
	assert.Equal(t, 4.0, c.Zoom(), "the view is reset when the data no longer fills it")

	c.SetZoom(8)
	c.SetPositionX(40)
	require.True(t, c.Resize(300, 120))
	assert.Equal(t, 8.0, c.Zoom())
	assert.Equal(t, 46.25, c.PositionX(), "the center stays in place")
	assert.Equal(t, []int{120}, heights(c))
	assert.False(t, c.Resize(300, 120))
}

func TestFrameQueue(t *testing.T) {
	var q FrameQueue
	var ran []int
	id := q.RequestFrame(func() { ran = append(ran, 1) })
	q.RequestFrame(func() {
		ran = append(ran, 2)
		q.RequestFrame(func() { ran = append(ran, 3) })
	})
	q.CancelFrame(id)
	assert.Equal(t, 1, q.Tick())
	assert.Equal(t, []int{2}, ran)
	assert.True(t, q.Pending())
	assert.Equal(t, 1, q.Tick())
	assert.Equal(t, []int{2, 3}, ran)
	assert.False(t, q.Pending())
}

func TestSchedulerStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "full and partial pending", (FullPending | PartialPending).String())
}
