package waterfall

import (
	"encoding/json"
	stdcolor "image/color"
	"testing"

	"honnef.co/go/flamechart/chart"
	"honnef.co/go/flamechart/event"
	"honnef.co/go/flamechart/raster"
	"honnef.co/go/flamechart/render"

	"gioui.org/f32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	red   = stdcolor.RGBA{R: 0xFF, A: 0xFF}
	lime  = stdcolor.RGBA{G: 0xFF, A: 0xFF}
	blue  = stdcolor.RGBA{B: 0xFF, A: 0xFF}
	green = stdcolor.RGBA{G: 0x80, A: 0xFF}
	white = stdcolor.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
)

const sampleJSON = `{
	"items": [
		{"name": "req1", "intervals": "net", "timing": {"requestStart": 0, "responseStart": 20, "responseEnd": 40}},
		{"name": "req2", "timing": {}, "intervals": [
			{"name": "wait", "color": "blue", "type": "block", "start": 30, "end": 60},
			{"name": "tail", "color": "black", "type": "line", "start": 60, "end": 100}
		], "meta": [{"name": "status", "value": "200", "color": "green"}]},
		{"name": "empty", "timing": {}, "intervals": [{"name": "x", "color": "red", "type": "block", "start": "missing", "end": 5}]}
	],
	"intervals": {
		"net": [
			{"name": "wait", "color": "red", "type": "block", "start": "requestStart", "end": "responseStart"},
			{"name": "download", "color": "#00ff00", "type": "block", "start": "responseStart", "end": "responseEnd"}
		]
	}
}`

func sample(t *testing.T) Data {
	t.Helper()
	var d Data
	require.NoError(t, json.Unmarshal([]byte(sampleJSON), &d))
	return d
}

type fixture struct {
	plugin *Plugin
	chart  *chart.Container
	img    *raster.Canvas
	frames *render.FrameQueue
}

func setup(t *testing.T) *fixture {
	t.Helper()
	p, err := New(sample(t), DefaultStyles())
	require.NoError(t, err)
	f := &fixture{plugin: p, img: raster.New(200, 100), frames: &render.FrameQueue{}}
	f.chart = chart.New(f.img, []chart.Plugin{p},
		render.WithFrameRequester(f.frames),
		render.WithLogger(zaptest.NewLogger(t)))
	f.frames.Tick()
	return f
}

func (f *fixture) at(x, y int) stdcolor.RGBA { return f.img.RGBA().RGBAAt(x, y) }

func (f *fixture) click(x, y float32) {
	in := f.chart.Input()
	in.HandleMouseMove(f32.Pt(x, y))
	in.HandleMouseDown(f32.Pt(x, y))
	in.HandleMouseUp(f32.Pt(x, y))
	f.frames.Tick()
}

func TestDecode(t *testing.T) {
	d := sample(t)
	require.Len(t, d.Items, 3)
	assert.Equal(t, "net", d.Items[0].Intervals.Ref)
	assert.Equal(t, FromTiming("requestStart"), d.Intervals["net"][0].Start)
	assert.Equal(t, At(30), d.Items[1].Intervals.List[0].Start)

	out, err := json.Marshal(d.Items[1].Intervals.List[1].End)
	require.NoError(t, err)
	assert.Equal(t, "100", string(out))
}

func TestPrepare(t *testing.T) {
	d := Data{Items: []Item{{
		Name:   "r",
		Timing: map[string]float64{"requestStart": 10, "responseStart": 20},
		Intervals: Intervals{List: []Interval{{
			Name: "wait", Color: "red", Type: Block,
			Start: FromTiming("requestStart"), End: FromTiming("responseStart"),
		}}},
	}}}
	entries, err := prepare(&d)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].spans, 1)
	assert.Equal(t, 10.0, entries[0].spans[0].start)
	assert.Equal(t, 20.0, entries[0].spans[0].end)
	assert.Equal(t, [2]float64{10, 20}, [2]float64{entries[0].min, entries[0].max})

	// Same start: the longer item comes first, then input order.
	block := func(name string, start, end float64) Item {
		return Item{Name: name, Intervals: Intervals{List: []Interval{{Type: Block, Start: At(start), End: At(end)}}}}
	}
	d = Data{Items: []Item{block("a", 0, 10), block("b", 0, 20), block("c", 0, 20), block("d", -1, 5)}}
	entries, err = prepare(&d)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.item.Name)
	}
	assert.Equal(t, []string{"d", "b", "c", "a"}, names)

	d = Data{Items: []Item{{Name: "x", Intervals: Intervals{Ref: "nope"}}}}
	_, err = prepare(&d)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	p, err := New(sample(t), DefaultStyles())
	require.NoError(t, err)
	assert.Len(t, p.entries, 2, "the item without resolvable intervals is dropped")
	lo, hi, ok := p.Bounds()
	assert.True(t, ok)
	assert.Equal(t, [2]float64{0, 100}, [2]float64{lo, hi})
	assert.Equal(t, "rgb(255, 0, 0)", p.data.Intervals["net"][0].Color)

	empty, err := New(Data{}, DefaultStyles())
	require.NoError(t, err)
	_, _, ok = empty.Bounds()
	assert.False(t, ok)

	bad := sample(t)
	bad.Items[1].Intervals.List[0].Color = "nope"
	_, err = New(bad, DefaultStyles())
	assert.Error(t, err)
}

func TestLastWidth(t *testing.T) {
	for _, tt := range []struct{ in, want float64 }{
		{0, 0.1},
		{0.1, 0.1},
		{1.5, 1},
		{3, 2},
		{40, 39},
	} {
		if got := lastWidth(tt.in); got != tt.want {
			t.Errorf("lastWidth(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	f := setup(t)
	require.Equal(t, 68, f.chart.Canvas().Panels()[0].Height())

	// req1 is on the first row, req2 overlaps it and goes on the second.
	assert.Equal(t, red, f.at(35, 8), "wait of req1")
	assert.Equal(t, lime, f.at(60, 8), "download of req1")
	assert.Equal(t, white, f.at(80, 8), "after req1")
	assert.Equal(t, blue, f.at(100, 20), "wait of req2")
	assert.NotEqual(t, white, f.at(150, 25), "tail of req2")
	assert.Equal(t, white, f.at(150, 20), "above the tail line")
}

func TestSelect(t *testing.T) {
	f := setup(t)
	var got []event.Selection
	f.plugin.Select.On(func(sel event.Selection) { got = append(got, sel) })

	f.click(100, 20)
	require.Len(t, got, 1)
	assert.Equal(t, event.KindWaterfallNode, got[0].Kind)
	require.IsType(t, (*Item)(nil), got[0].Node)
	assert.Equal(t, "req2", got[0].Node.(*Item).Name)
	assert.Equal(t, "req2", f.plugin.Selected().Name)
	assert.Equal(t, green, f.at(100, 17), "selection outline")

	f.click(100, 20)
	assert.Len(t, got, 1)

	f.click(150, 50)
	require.Len(t, got, 2)
	assert.Nil(t, got[1].Node)
	assert.Nil(t, f.plugin.Selected())
}

func TestTooltip(t *testing.T) {
	f := setup(t)
	var last any
	f.chart.SetTooltip(func(data any, _ f32.Point) { last = data })
	f.chart.Input().HandleMouseMove(f32.Pt(20, 8))
	f.frames.Tick()
	require.IsType(t, (*Item)(nil), last)
	assert.Equal(t, "req1", last.(*Item).Name)

	f.chart.Input().HandleMouseMove(f32.Pt(150, 60))
	f.frames.Tick()
	assert.Nil(t, last)
}

func TestSortedTiming(t *testing.T) {
	got := sortedTiming(map[string]float64{"b": 2, "a": 2, "c": 1})
	assert.Equal(t, []timing{{"c", 1}, {"a", 2}, {"b", 2}}, got)
}
