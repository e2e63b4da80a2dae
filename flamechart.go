// Package flamechart assembles the standard flame chart: an overview of the data, a time axis, marks, a waterfall
// and the flame chart itself, each in its own panel of a single canvas.
//
// Hosts draw the canvas through a render.Backend, forward mouse input to Input and run frames through the frame
// requester they configured.
package flamechart

import (
	"honnef.co/go/flamechart/chart"
	"honnef.co/go/flamechart/cluster"
	"honnef.co/go/flamechart/container"
	"honnef.co/go/flamechart/event"
	"honnef.co/go/flamechart/interact"
	"honnef.co/go/flamechart/metrics"
	"honnef.co/go/flamechart/plugins/axis"
	"honnef.co/go/flamechart/plugins/flame"
	"honnef.co/go/flamechart/plugins/marks"
	"honnef.co/go/flamechart/plugins/timeframe"
	"honnef.co/go/flamechart/plugins/toggle"
	"honnef.co/go/flamechart/plugins/waterfall"
	"honnef.co/go/flamechart/render"
	"honnef.co/go/flamechart/timegrid"
	"honnef.co/go/flamechart/tree"

	"go.uber.org/zap"
)

// Styles are the styles of the canvas and of all standard plugins.
type Styles struct {
	Main      render.Styles    `yaml:"main"`
	TimeGrid  timegrid.Styles  `yaml:"timeGrid"`
	Timeframe timeframe.Styles `yaml:"timeframeSelectorPlugin"`
	Toggle    toggle.Styles    `yaml:"togglePlugin"`
	Waterfall waterfall.Styles `yaml:"waterfallPlugin"`
}

type Settings struct {
	Styles  Styles         `yaml:"styles"`
	Options render.Options `yaml:"options"`
}

func DefaultSettings() Settings {
	return Settings{
		Styles: Styles{
			Main:      render.DefaultStyles(),
			TimeGrid:  timegrid.DefaultStyles(),
			Timeframe: timeframe.DefaultStyles(),
			Toggle:    toggle.DefaultStyles(),
			Waterfall: waterfall.DefaultStyles(),
		},
		Options: render.DefaultOptions(),
	}
}

func (s Settings) chart() chart.Settings {
	return chart.Settings{Styles: s.Styles.Main, TimeGrid: s.Styles.TimeGrid, Options: s.Options}
}

// Headers are the titles of the toggle bars above the waterfall and the flame chart.
type Headers struct {
	Waterfall  string `yaml:"waterfall"`
	FlameChart string `yaml:"flameChart"`
}

func DefaultHeaders() Headers {
	return Headers{Waterfall: "waterfall", FlameChart: "flame chart"}
}

// Options configure a FlameChart. Data, Marks and Waterfall decide which panels exist; the time axis is always
// shown.
type Options struct {
	Data      []*tree.Node
	Marks     []marks.Mark
	Waterfall *waterfall.Data

	// Colors maps node types to colors.
	Colors map[string]string
	// Merge decides which neighboring nodes may be drawn as one block. It defaults to cluster.SameColorAndType.
	Merge cluster.MergeFunc

	Headers  Headers
	Settings Settings

	Logger  *zap.Logger
	Metrics *metrics.Render
	Frames  render.FrameRequester
	Tooltip render.TooltipFunc

	// Plugins are added below the standard plugins.
	Plugins []chart.Plugin
}

// FlameChart is a chart with the standard plugins.
type FlameChart struct {
	// Select is emitted when the user selects or deselects a node, an item or a mark.
	Select event.Emitter[event.Selection]

	container *chart.Container
	log       *zap.Logger
	settings  Settings

	flame     *flame.Plugin
	timeframe *timeframe.Plugin
	marks     *marks.Plugin
	waterfall *waterfall.Plugin
	toggles   []*toggle.Plugin
}

// New creates a flame chart drawing into b. It fails if the data can't be prepared, for example because a color
// doesn't parse.
func New(b render.Backend, opts Options) (*FlameChart, error) {
	if opts.Settings == (Settings{}) {
		opts.Settings = DefaultSettings()
	}
	if opts.Headers == (Headers{}) {
		opts.Headers = DefaultHeaders()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	fc := &FlameChart{log: opts.Logger, settings: opts.Settings}
	styles := opts.Settings.Styles
	forward := func(sel event.Selection) { fc.Select.Emit(sel) }

	var (
		plugins []chart.Plugin
		err     error
	)
	if opts.Data != nil || opts.Waterfall != nil {
		if fc.timeframe, err = timeframe.New(opts.Data, styles.Timeframe); err != nil {
			return nil, err
		}
		plugins = append(plugins, fc.timeframe)
	}
	plugins = append(plugins, axis.New())
	if opts.Marks != nil {
		if fc.marks, err = marks.New(opts.Marks); err != nil {
			return nil, err
		}
		fc.marks.Select.On(forward)
		plugins = append(plugins, fc.marks)
	}
	if opts.Waterfall != nil {
		if fc.waterfall, err = waterfall.New(*opts.Waterfall, styles.Waterfall); err != nil {
			return nil, err
		}
		fc.waterfall.Select.On(forward)
		if opts.Data != nil {
			plugins = append(plugins, fc.addToggle(opts.Headers.Waterfall, styles.Toggle))
		}
		plugins = append(plugins, fc.waterfall)
	}
	if opts.Data != nil {
		if fc.flame, err = flame.New(opts.Data, flame.Options{Colors: opts.Colors, Merge: opts.Merge}); err != nil {
			return nil, err
		}
		fc.flame.Select.On(forward)
		if opts.Waterfall != nil {
			plugins = append(plugins, fc.addToggle(opts.Headers.FlameChart, styles.Toggle))
		}
		plugins = append(plugins, fc.flame)
	}
	plugins = append(plugins, opts.Plugins...)

	copts := []render.CanvasOption{
		render.WithLogger(opts.Logger),
		render.WithStyles(styles.Main),
		render.WithTimeGridStyles(styles.TimeGrid),
		render.WithOptions(opts.Settings.Options),
	}
	if opts.Metrics != nil {
		copts = append(copts, render.WithMetrics(opts.Metrics))
	}
	if opts.Frames != nil {
		copts = append(copts, render.WithFrameRequester(opts.Frames))
	}
	if opts.Tooltip != nil {
		copts = append(copts, render.WithTooltip(opts.Tooltip))
	}
	fc.container = chart.New(b, plugins, copts...)
	return fc, nil
}

func (fc *FlameChart) addToggle(title string, styles toggle.Styles) *toggle.Plugin {
	t := toggle.New(title, styles)
	fc.toggles = append(fc.toggles, t)
	return t
}

func (fc *FlameChart) Container() *chart.Container { return fc.container }
func (fc *FlameChart) Canvas() *render.Canvas      { return fc.container.Canvas() }
func (fc *FlameChart) Input() *interact.Engine     { return fc.container.Input() }
func (fc *FlameChart) Settings() Settings          { return fc.settings }

// OnSelect calls fn for every selection until off is called.
func (fc *FlameChart) OnSelect(fn func(event.Selection)) (off func()) { return fc.Select.On(fn) }

// Render schedules a full frame.
func (fc *FlameChart) Render() { fc.container.Render() }

// Resize resizes the chart.
func (fc *FlameChart) Resize(width, height int) { fc.container.Resize(width, height) }

// SetData replaces the flame chart data and shows all of it. It does nothing if the chart has no flame chart.
func (fc *FlameChart) SetData(nodes []*tree.Node) error {
	if fc.flame == nil {
		return nil
	}
	if err := fc.flame.SetData(nodes); err != nil {
		return err
	}
	if fc.timeframe != nil {
		if err := fc.timeframe.SetData(nodes); err != nil {
			return err
		}
	}
	fc.log.Debug("flame chart data replaced")
	return nil
}

// SetMarks replaces the marks. It does nothing if the chart has no marks.
func (fc *FlameChart) SetMarks(m []marks.Mark) error {
	if fc.marks == nil {
		return nil
	}
	return fc.marks.SetMarks(m)
}

// SetWaterfall replaces the waterfall. It does nothing if the chart has no waterfall.
func (fc *FlameChart) SetWaterfall(data waterfall.Data) error {
	if fc.waterfall == nil {
		return nil
	}
	return fc.waterfall.SetData(data)
}

// SetFlameChartPosition moves the view to start at time x and scrolls the flame chart to y pixels. Unset values
// stay as they are.
func (fc *FlameChart) SetFlameChartPosition(x, y container.Option[float64]) {
	if v, ok := x.Get(); ok {
		fc.Canvas().SetPositionX(v)
	}
	if v, ok := y.Get(); ok && fc.flame != nil {
		fc.flame.SetPositionY(v)
	}
	fc.container.Render()
}

// SetSettings applies new settings to the canvas and all standard plugins.
func (fc *FlameChart) SetSettings(s Settings) {
	fc.settings = s
	if fc.timeframe != nil {
		fc.timeframe.SetStyles(s.Styles.Timeframe)
	}
	if fc.waterfall != nil {
		fc.waterfall.SetStyles(s.Styles.Waterfall)
	}
	for _, t := range fc.toggles {
		t.SetStyles(s.Styles.Toggle)
	}
	fc.container.SetSettings(s.chart())
}

// SetZoom shows the time range [start, end]. It reports false if the range is empty or the zoom was rejected.
func (fc *FlameChart) SetZoom(start, end float64) bool { return fc.container.SetZoom(start, end) }
