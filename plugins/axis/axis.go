// Package axis implements a panel that shows the time labels of the canvas' time grid.
package axis

import (
	"math"

	"honnef.co/go/flamechart/container"
	"honnef.co/go/flamechart/interact"
	"honnef.co/go/flamechart/render"
)

// padding is the space below the labels, in pixels.
const padding = 10

type Plugin struct {
	panel *render.Panel
}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Init(panel *render.Panel, _ *interact.Panel) { p.panel = panel }

// Height depends on the font of the canvas.
func (p *Plugin) Height() container.Option[int] {
	if p.panel == nil {
		return container.Some(0)
	}
	return container.Some(int(math.Round(p.panel.CharHeight() + padding)))
}

func (p *Plugin) Render() render.RenderResult {
	p.panel.RenderTimeGridTimes()
	p.panel.RenderTimeGrid()
	return render.Handled
}
