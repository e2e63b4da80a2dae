package flamechart

import (
	"testing"

	"honnef.co/go/flamechart/chart"
	"honnef.co/go/flamechart/container"
	"honnef.co/go/flamechart/event"
	"honnef.co/go/flamechart/plugins/axis"
	"honnef.co/go/flamechart/plugins/flame"
	"honnef.co/go/flamechart/plugins/marks"
	"honnef.co/go/flamechart/plugins/timeframe"
	"honnef.co/go/flamechart/plugins/toggle"
	"honnef.co/go/flamechart/plugins/waterfall"
	"honnef.co/go/flamechart/raster"
	"honnef.co/go/flamechart/render"
	"honnef.co/go/flamechart/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func nodes() []*tree.Node {
	return []*tree.Node{{
		Name: "main", Start: 0, Duration: 100,
		Children: []*tree.Node{{Name: "work", Start: 10, Duration: 50}},
	}}
}

func items() *waterfall.Data {
	return &waterfall.Data{Items: []waterfall.Item{{
		Name:   "request",
		Timing: map[string]float64{"start": 5, "end": 40},
		Intervals: waterfall.Intervals{List: []waterfall.Interval{{
			Name:  "wait",
			Color: "red",
			Start: waterfall.FromTiming("start"),
			End:   waterfall.FromTiming("end"),
		}}},
	}}}
}

func newChart(t *testing.T, opts Options) (*FlameChart, *render.FrameQueue) {
	t.Helper()
	frames := &render.FrameQueue{}
	opts.Frames = frames
	opts.Logger = zaptest.NewLogger(t)
	fc, err := New(raster.New(300, 400), opts)
	require.NoError(t, err)
	frames.Tick()
	return fc, frames
}

func pluginTypes(fc *FlameChart) []string {
	var out []string
	for _, p := range fc.Container().Plugins() {
		switch p := p.(type) {
		case *timeframe.Plugin:
			out = append(out, "timeframe")
		case *axis.Plugin:
			out = append(out, "axis")
		case *marks.Plugin:
			out = append(out, "marks")
		case *toggle.Plugin:
			out = append(out, "toggle:"+p.Title())
		case *waterfall.Plugin:
			out = append(out, "waterfall")
		case *flame.Plugin:
			out = append(out, "flame")
		default:
			out = append(out, "custom")
		}
	}
	return out
}

func TestPluginOrder(t *testing.T) {
	tt := []struct {
		name string
		opts Options
		want []string
	}{
		{"empty", Options{}, []string{"axis"}},
		{"data", Options{Data: nodes()}, []string{"timeframe", "axis", "flame"}},
		{"waterfall", Options{Waterfall: items()}, []string{"timeframe", "axis", "waterfall"}},
		{
			"everything",
			Options{Data: nodes(), Waterfall: items(), Marks: []marks.Mark{{ShortName: "A", Timestamp: 20, Color: "red"}}},
			[]string{"timeframe", "axis", "marks", "toggle:waterfall", "waterfall", "toggle:flame chart", "flame"},
		},
		{
			"headers",
			Options{Data: nodes(), Waterfall: items(), Headers: Headers{Waterfall: "network", FlameChart: "main thread"}},
			[]string{"timeframe", "axis", "toggle:network", "waterfall", "toggle:main thread", "flame"},
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			fc, _ := newChart(t, tc.opts)
			assert.Equal(t, tc.want, pluginTypes(fc))
			assert.Len(t, fc.Canvas().Panels(), len(tc.want))
		})
	}
}

func TestCustomPlugins(t *testing.T) {
	fc, _ := newChart(t, Options{Data: nodes(), Plugins: []chart.Plugin{axis.New()}})
	assert.Equal(t, []string{"timeframe", "axis", "flame", "axis"}, pluginTypes(fc))
}

func TestInvalidData(t *testing.T) {
	_, err := New(raster.New(10, 10), Options{Marks: []marks.Mark{{ShortName: "A", Color: "nope"}}})
	assert.Error(t, err)

	wf := items()
	wf.Items[0].Intervals.List[0].Color = "nope"
	_, err = New(raster.New(10, 10), Options{Waterfall: wf})
	assert.Error(t, err)
}

func TestView(t *testing.T) {
	fc, frames := newChart(t, Options{Data: nodes()})
	c := fc.Canvas()
	assert.Equal(t, 0.0, c.PositionX())
	assert.InDelta(t, 100, c.RealView(), 1e-9)

	require.True(t, fc.SetZoom(25, 75))
	assert.InDelta(t, 25, c.PositionX(), 1e-9)
	assert.InDelta(t, 50, c.RealView(), 1e-9)
	assert.False(t, fc.SetZoom(10, 10))

	fc.SetFlameChartPosition(container.Some(30.0), container.None[float64]())
	assert.Equal(t, 30.0, c.PositionX())
	fc.SetFlameChartPosition(container.None[float64](), container.Some(12.0))
	assert.Equal(t, 30.0, c.PositionX())
	assert.Equal(t, 12.0, fc.flame.PositionY())
	frames.Tick()
}

func TestSelect(t *testing.T) {
	fc, _ := newChart(t, Options{Data: nodes(), Waterfall: items(), Marks: []marks.Mark{{ShortName: "A", Timestamp: 20, Color: "blue"}}})

	var got []event.Kind
	off := fc.OnSelect(func(sel event.Selection) { got = append(got, sel.Kind) })
	fc.flame.Select.Emit(event.Selection{Kind: event.KindFlameChartNode})
	fc.waterfall.Select.Emit(event.Selection{Kind: event.KindWaterfallNode})
	fc.marks.Select.Emit(event.Selection{Kind: event.KindTimestamp})
	assert.Equal(t, []event.Kind{event.KindFlameChartNode, event.KindWaterfallNode, event.KindTimestamp}, got)

	off()
	fc.flame.Select.Emit(event.Selection{Kind: event.KindFlameChartNode})
	assert.Len(t, got, 3)
}

func TestSetData(t *testing.T) {
	fc, frames := newChart(t, Options{Waterfall: items()})
	assert.NoError(t, fc.SetData(nodes()), "no flame chart to update")
	assert.NoError(t, fc.SetMarks(nil))

	require.NoError(t, fc.SetWaterfall(waterfall.Data{Items: []waterfall.Item{{
		Name:   "later",
		Timing: map[string]float64{"a": 100, "b": 200},
		Intervals: waterfall.Intervals{List: []waterfall.Interval{{
			Name: "all", Color: "blue", Start: waterfall.FromTiming("a"), End: waterfall.FromTiming("b"),
		}}},
	}}}))
	frames.Tick()
	lo, hi := fc.Canvas().MinMax()
	assert.Equal(t, 100.0, lo)
	assert.Equal(t, 200.0, hi)

	fc, _ = newChart(t, Options{Data: nodes()})
	require.NoError(t, fc.SetData([]*tree.Node{{Name: "x", Start: 50, Duration: 10}}))
	lo, hi = fc.Canvas().MinMax()
	assert.Equal(t, 50.0, lo)
	assert.Equal(t, 60.0, hi)
}

func TestSetSettings(t *testing.T) {
	fc, frames := newChart(t, Options{Data: nodes(), Waterfall: items()})
	s := DefaultSettings()
	s.Styles.Main.BlockHeight = 20
	s.Styles.Toggle.Height = 24
	s.Options.TimeUnits = "s"
	fc.SetSettings(s)
	frames.Tick()

	assert.Equal(t, s, fc.Settings())
	assert.Equal(t, 20.0, fc.Canvas().BlockHeight())
	assert.Equal(t, "s", fc.Canvas().TimeUnits())
	// timeframe, axis, toggle, waterfall, toggle, flame
	panels := fc.Canvas().Panels()
	assert.Equal(t, 25, panels[2].Height())
	assert.Equal(t, 25, panels[4].Height())
}
