// Package toggle implements the header bar between two panels. Clicking its title collapses or expands the panel
// below it, and dragging its knob resizes the panel above it.
package toggle

import (
	"math"

	"honnef.co/go/flamechart/color"
	"honnef.co/go/flamechart/container"
	"honnef.co/go/flamechart/interact"
	"honnef.co/go/flamechart/render"
)

type Styles struct {
	Height         int     `yaml:"height"`
	Color          string  `yaml:"color"`
	StrokeColor    string  `yaml:"strokeColor"`
	DotsColor      string  `yaml:"dotsColor"`
	FontColor      string  `yaml:"fontColor"`
	Font           string  `yaml:"font"`
	TriangleWidth  float64 `yaml:"triangleWidth"`
	TriangleHeight float64 `yaml:"triangleHeight"`
	TriangleColor  string  `yaml:"triangleColor"`
	LeftPadding    float64 `yaml:"leftPadding"`
}

func DefaultStyles() Styles {
	return Styles{
		Height:         16,
		Color:          "rgb(202, 202, 202)",
		StrokeColor:    "rgb(138, 138, 138)",
		DotsColor:      "rgb(97, 97, 97)",
		FontColor:      "black",
		Font:           "10px sans-serif",
		TriangleWidth:  10,
		TriangleHeight: 7,
		TriangleColor:  "black",
		LeftPadding:    10,
	}
}

const (
	dotRadius  = 1.5
	dotSpacing = 10
	// collapsedLighten is how much lighter the bar is while the panel below it is collapsed.
	collapsedLighten = 0.1
)

// Plugin is a toggle bar for the panel that follows it.
type Plugin struct {
	title  string
	styles Styles

	panel *render.Panel
	input *interact.Panel

	resizing    bool
	startHeight int
	startY      float32
}

// New returns a toggle bar with the given title.
func New(title string, styles Styles) *Plugin {
	return &Plugin{title: title, styles: styles}
}

func (p *Plugin) Title() string { return p.title }

func (p *Plugin) SetStyles(styles Styles) { p.styles = styles }

func (p *Plugin) Height() container.Option[int] { return container.Some(p.styles.Height + 1) }

// sibling returns the panel at offset from the toggle's own panel, or nil.
func (p *Plugin) sibling(offset int) *render.Panel {
	panels := p.panel.Parent().Panels()
	i := p.panel.ID() + offset
	if i < 0 || i >= len(panels) {
		return nil
	}
	return panels[i]
}

func (p *Plugin) Init(panel *render.Panel, input *interact.Panel) {
	p.panel, p.input = panel, input
	if next := p.sibling(1); next != nil {
		next.SetFlexible()
	}

	input.Click.On(func(ev interact.MouseEvent) {
		if ev.Region == nil || ev.Region.Type != interact.RegionToggle || ev.Region.Data != panel.ID() {
			return
		}
		next := p.sibling(1)
		if next == nil {
			return
		}
		if next.Collapsed() {
			next.Expand()
		} else {
			next.Collapse()
		}
		panel.Parent().RecalcChildrenSizes()
		panel.Parent().Render()
	})

	input.Down.On(func(ev interact.MouseEvent) {
		if ev.Region == nil || ev.Region.Type != interact.RegionKnobResize || ev.Region.Data != panel.ID() {
			return
		}
		prev := p.sibling(-1)
		if prev == nil {
			return
		}
		p.resizing = true
		p.startHeight = prev.Height()
		p.startY = input.Parent().Mouse().Y
		input.SetCursor(interact.CursorRowResize)
	})

	// Resizing goes on while the mouse is outside of the bar.
	engine := input.Parent()
	engine.Move.On(func(interact.MouseEvent) {
		if !p.resizing {
			return
		}
		prev := p.sibling(-1)
		h := p.startHeight - int(math.Round(float64(p.startY-engine.Mouse().Y)))
		if h <= 0 {
			prev.SetHeight(0)
		} else {
			prev.SetHeight(h)
		}
		panel.Parent().Render()
	})
	engine.Up.On(func(interact.MouseEvent) {
		if p.resizing {
			p.resizing = false
			input.ClearCursor()
		}
	})
}

func (p *Plugin) Render() render.RenderResult {
	s := p.styles
	width := float64(p.panel.Width())
	height := float64(s.Height)
	next := p.sibling(1)
	collapsed := next != nil && next.Collapsed()

	bar := s.Color
	if collapsed {
		if h, err := color.Parse(s.Color); err == nil {
			bar = h.Lighten(collapsedLighten).String()
		}
	}
	p.panel.SetFillColor(bar)
	p.panel.FillRect(0, 0, width, height+1)
	p.panel.SetStrokeColor(s.StrokeColor)
	p.panel.StrokeRect(0, 0, width, height+1)

	p.panel.SetFont(s.Font)
	p.panel.SetFillColor(s.FontColor)
	triangleFull := s.TriangleWidth + s.LeftPadding
	p.panel.RenderText(p.title, triangleFull, 0, width)
	titleWidth := p.panel.MeasureText(p.title) + p.panel.Styles().BlockPaddingLeftRight*2

	dir := render.Down
	if collapsed {
		dir = render.Right
	}
	p.panel.RenderTriangle(s.TriangleColor, s.LeftPadding, height/2, s.TriangleWidth, s.TriangleHeight, dir)
	// The toggle region comes first so that it wins over the full-width knob region.
	p.input.AddHitRegion(interact.RegionToggle, p.panel.ID(), 0, 0, titleWidth+triangleFull, height, interact.CursorPointer)

	if prev := p.sibling(-1); prev != nil && prev.Flexible() {
		cx, cy := width/2, height/2
		for _, dx := range []float64{-dotSpacing, 0, dotSpacing} {
			p.panel.RenderCircle(s.DotsColor, cx+dx, cy, dotRadius)
		}
		p.input.AddHitRegion(interact.RegionKnobResize, p.panel.ID(), 0, 0, width, height, interact.CursorRowResize)
	}
	return render.Handled
}
