package marks

import (
	stdcolor "image/color"
	"testing"

	"honnef.co/go/flamechart/chart"
	"honnef.co/go/flamechart/container"
	"honnef.co/go/flamechart/event"
	"honnef.co/go/flamechart/interact"
	"honnef.co/go/flamechart/raster"
	"honnef.co/go/flamechart/render"

	"gioui.org/f32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type span struct{ min, max float64 }

func (span) Init(*render.Panel, *interact.Panel) {}
func (span) Height() container.Option[int]      { return container.None[int]() }
func (span) Render() render.RenderResult        { return render.Handled }
func (s span) Bounds() (float64, float64, bool) { return s.min, s.max, true }

var white = stdcolor.RGBA{0xFF, 0xFF, 0xFF, 0xFF}

func sample() []Mark {
	return []Mark{
		{ShortName: "C", FullName: "third", Timestamp: 75, Color: "#00ff00"},
		{ShortName: "A", FullName: "first", Timestamp: 25, Color: "red"},
		{ShortName: "B", FullName: "second", Timestamp: 26, Color: "blue"},
	}
}

type fixture struct {
	plugin *Plugin
	chart  *chart.Container
	img    *raster.Canvas
	frames *render.FrameQueue
}

func setup(t *testing.T) *fixture {
	t.Helper()
	p, err := New(sample())
	require.NoError(t, err)
	f := &fixture{plugin: p, img: raster.New(200, 100), frames: &render.FrameQueue{}}
	f.chart = chart.New(f.img, []chart.Plugin{p, span{0, 100}}, render.WithFrameRequester(f.frames))
	f.frames.Tick()
	return f
}

func (f *fixture) click(x, y float32) {
	in := f.chart.Input()
	in.HandleMouseMove(f32.Pt(x, y))
	in.HandleMouseDown(f32.Pt(x, y))
	in.HandleMouseUp(f32.Pt(x, y))
	f.frames.Tick()
}

func TestPrepare(t *testing.T) {
	p, err := New(sample())
	require.NoError(t, err)
	var names []string
	for _, m := range p.Marks() {
		names = append(names, m.ShortName)
	}
	assert.Equal(t, []string{"A", "B", "C"}, names)
	assert.Equal(t, []string{"rgba(255, 0, 0, 0.7)", "rgba(0, 0, 255, 0.7)", "rgba(0, 255, 0, 0.7)"}, p.colors)

	lo, hi, ok := p.Bounds()
	assert.True(t, ok)
	assert.Equal(t, [2]float64{25, 75}, [2]float64{lo, hi})

	empty, err := New(nil)
	require.NoError(t, err)
	_, _, ok = empty.Bounds()
	assert.False(t, ok)

	_, err = New([]Mark{{ShortName: "x", Color: "nope"}})
	assert.Error(t, err)
}

func TestEmptyMarksKeepBounds(t *testing.T) {
	p, err := New(sample())
	require.NoError(t, err)
	c := chart.New(raster.New(200, 100), []chart.Plugin{p, span{50, 60}})
	lo, hi := c.Canvas().MinMax()
	require.Equal(t, [2]float64{25, 75}, [2]float64{lo, hi})

	require.NoError(t, p.SetMarks(nil))
	assert.Empty(t, p.Marks())
	lo, hi = c.Canvas().MinMax()
	assert.Equal(t, [2]float64{25, 75}, [2]float64{lo, hi})

	require.NoError(t, p.SetMarks([]Mark{{ShortName: "D", Timestamp: 55, Color: "red"}}))
	lo, hi = c.Canvas().MinMax()
	assert.Equal(t, [2]float64{50, 60}, [2]float64{lo, hi})
}

func TestBlockX(t *testing.T) {
	for _, tt := range []struct{ x, prevEnd, want float64 }{
		{5, 10, 10},
		{20, 10, 20},
		{0, 10, 0},
		{-3, 10, -3},
	} {
		if got := blockX(tt.x, tt.prevEnd); got != tt.want {
			t.Errorf("blockX(%g, %g) = %g, want %g", tt.x, tt.prevEnd, got, tt.want)
		}
	}
}

func TestSelect(t *testing.T) {
	f := setup(t)
	require.Equal(t, 17, f.chart.Canvas().Panels()[0].Height())

	var got []event.Selection
	f.plugin.Select.On(func(sel event.Selection) { got = append(got, sel) })

	// A is at x=50. B would be at x=52 but starts after A's block.
	wA := f.img.MeasureText("A") + 8
	f.click(51, 8)
	f.click(float32(50+wA+1), 8)
	f.click(120, 8)
	f.click(120, 8)

	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Node.(*Mark).FullName)
	assert.Equal(t, "second", got[1].Node.(*Mark).FullName)
	assert.Equal(t, event.KindTimestamp, got[2].Kind)
	assert.Nil(t, got[2].Node)
}

func TestLines(t *testing.T) {
	f := setup(t)
	// The dashes of A's line start at the bottom of the marks panel: 8 pixels on, 7 off.
	assert.NotEqual(t, white, f.img.RGBA().RGBAAt(50, 20))
	assert.Equal(t, white, f.img.RGBA().RGBAAt(50, 28))
	assert.NotEqual(t, white, f.img.RGBA().RGBAAt(50, 35))
	assert.Equal(t, white, f.img.RGBA().RGBAAt(100, 35))
}

func TestTooltip(t *testing.T) {
	f := setup(t)
	var last any
	f.chart.SetTooltip(func(data any, _ f32.Point) { last = data })
	f.chart.Input().HandleMouseMove(f32.Pt(51, 8))
	f.frames.Tick()
	require.IsType(t, (*Mark)(nil), last)
	assert.Equal(t, "A", last.(*Mark).ShortName)
}
