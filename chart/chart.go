// Package chart wires plugins to a render.Canvas and an interact.Engine. A Container gives every plugin a panel to
// draw into and the matching view of the input engine, computes the initial layout and view, and forwards settings.
package chart

import (
	"honnef.co/go/flamechart/interact"
	"honnef.co/go/flamechart/render"
	"honnef.co/go/flamechart/timegrid"

	"go.uber.org/zap"
)

// Plugin is a render.Plugin that is attached to a panel.
type Plugin interface {
	render.Plugin
	// Init is called once, after the panels of all plugins have been created.
	Init(panel *render.Panel, input *interact.Panel)
}

// PostIniter is implemented by plugins that need a second setup pass, after the initial layout and view have been
// computed.
type PostIniter interface {
	PostInit()
}

// SettingsListener is implemented by plugins that derive state from the canvas' settings.
type SettingsListener interface {
	SettingsChanged()
}

// Settings are the settings shared by all plugins.
type Settings struct {
	Styles   render.Styles   `yaml:"main"`
	TimeGrid timegrid.Styles `yaml:"timeGrid"`
	Options  render.Options  `yaml:"options"`
}

func DefaultSettings() Settings {
	return Settings{
		Styles:   render.DefaultStyles(),
		TimeGrid: timegrid.DefaultStyles(),
		Options:  render.DefaultOptions(),
	}
}

// Container is the composition root of a chart.
type Container struct {
	canvas  *render.Canvas
	input   *interact.Engine
	plugins []Plugin
	log     *zap.Logger
}

// New creates a chart drawing into b and schedules its first frame.
func New(b render.Backend, plugins []Plugin, opts ...render.CanvasOption) *Container {
	canvas := render.NewCanvas(b, opts...)
	input := interact.New(canvas)
	canvas.Cleared.On(func(struct{}) { input.ClearHitRegions() })

	c := &Container{
		canvas:  canvas,
		input:   input,
		plugins: plugins,
		log:     canvas.Logger(),
	}

	panels := make([]*render.Panel, len(plugins))
	inputs := make([]*interact.Panel, len(plugins))
	for i, p := range plugins {
		panel := canvas.AddPlugin(p)
		ip := input.MakeInstance(panel)
		panel.Cleared.On(func(struct{}) { ip.ClearHitRegions() })
		panels[i], inputs[i] = panel, ip
	}
	// Plugins may look at their neighbors' panels during Init.
	for i, p := range plugins {
		p.Init(panels[i], inputs[i])
	}

	canvas.CalcMinMax()
	canvas.ResetView()
	canvas.RecalcChildrenSizes()
	for _, p := range plugins {
		if pi, ok := p.(PostIniter); ok {
			pi.PostInit()
		}
	}
	lo, hi := canvas.MinMax()
	c.log.Debug("chart created", zap.Int("plugins", len(plugins)), zap.Float64("min", lo), zap.Float64("max", hi))
	canvas.Render()
	return c
}

func (c *Container) Canvas() *render.Canvas  { return c.canvas }
func (c *Container) Input() *interact.Engine { return c.input }
func (c *Container) Plugins() []Plugin       { return c.plugins }

// Render schedules a full frame.
func (c *Container) Render() { c.canvas.Render() }

// Resize resizes the chart and schedules a full frame if the size changed.
func (c *Container) Resize(width, height int) {
	if c.canvas.Resize(width, height) {
		c.canvas.Render()
	}
}

// SetSettings applies new settings to the canvas and all plugins, lays the panels out again and schedules a full
// frame.
func (c *Container) SetSettings(s Settings) {
	c.canvas.SetStyles(s.Styles)
	c.canvas.SetTimeGridStyles(s.TimeGrid)
	c.canvas.SetOptions(s.Options)
	for _, p := range c.plugins {
		if l, ok := p.(SettingsListener); ok {
			l.SettingsChanged()
		}
	}
	c.canvas.RecalcChildrenSizes()
	c.canvas.Render()
}

// SetZoom shows the time range [start, end]. It reports false if the range is empty or the zoom was rejected.
func (c *Container) SetZoom(start, end float64) bool {
	if end <= start {
		return false
	}
	c.canvas.SetPositionX(start)
	ok := c.canvas.SetZoom(float64(c.canvas.Width()) / (end - start))
	c.canvas.Render()
	return ok
}

// SetPositionX moves the left edge of the view to x and schedules a full frame.
func (c *Container) SetPositionX(x float64) {
	c.canvas.SetPositionX(x)
	c.canvas.Render()
}

// SetTooltip replaces the built-in tooltips with fn. A nil fn restores them.
func (c *Container) SetTooltip(fn render.TooltipFunc) {
	c.canvas.SetTooltip(fn)
	c.canvas.Render()
}
