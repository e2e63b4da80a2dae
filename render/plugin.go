package render

import (
	"honnef.co/go/flamechart/container"

	"gioui.org/f32"
)

// RenderResult tells the Canvas whether a plugin drew its panel by itself.
type RenderResult uint8

const (
	// Delegate asks the Canvas to finish the panel with Panel.StandardRender.
	Delegate RenderResult = iota
	// Handled means the plugin drew everything, including the time grid if it wants one.
	Handled
)

// Plugin draws the content of one panel.
type Plugin interface {
	// Height returns the fixed height of the panel, or None if the panel grows to fill the free space.
	Height() container.Option[int]
	// Render draws into the panel. The panel has already been cleared.
	Render() RenderResult
}

// PostRenderer is implemented by plugins that draw onto the canvas after all panels have been composited.
type PostRenderer interface {
	PostRender()
}

// TooltipRenderer is implemented by plugins that show tooltips. RenderTooltip reports whether it drew one.
type TooltipRenderer interface {
	RenderTooltip() bool
}

// Bounder is implemented by plugins that have data on the time axis. The Canvas bounds are the union of the
// bounds of all plugins that report ok.
type Bounder interface {
	Bounds() (min, max float64, ok bool)
}

// TooltipFunc replaces the built-in tooltips. It is called with the data of the hovered element and the mouse
// position in canvas coordinates, or with nil data when no element is hovered.
type TooltipFunc func(data any, mouse f32.Point)

// TooltipField is one line of a tooltip. Empty colors use the style's header color for the first field and the
// body color for all others.
type TooltipField struct {
	Text  string
	Color string
}

// slot is a registered plugin with its optional capabilities resolved.
type slot struct {
	plugin        Plugin
	panel         *Panel
	postRender    func()
	renderTooltip func() bool
	bounds        func() (float64, float64, bool)
}

func newSlot(p Plugin, panel *Panel) slot {
	s := slot{plugin: p, panel: panel}
	if pr, ok := p.(PostRenderer); ok {
		s.postRender = pr.PostRender
	}
	if tr, ok := p.(TooltipRenderer); ok {
		s.renderTooltip = tr.RenderTooltip
	}
	if b, ok := p.(Bounder); ok {
		s.bounds = b.Bounds
	}
	return s
}
