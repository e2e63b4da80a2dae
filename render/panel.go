package render

import (
	"honnef.co/go/flamechart/timegrid"
)

// Size is the layout of a panel within its canvas.
type Size struct {
	Width    int
	Height   int
	Position int
}

// Panel is a horizontal band of a Canvas with its own offscreen surface. The time axis is owned by the canvas:
// zoom, position and bounds are pushed into panels, and panning requests are forwarded to the canvas. Only the
// vertical layout (position, height, collapse) is local.
type Panel struct {
	*Surface

	parent    *Canvas
	owner     *Panel
	id        int
	position  int
	flexible  bool
	collapsed bool
	// userSized is set once the panel was resized from outside the canvas' layout, which turns a growing flexible
	// panel into a fixed one.
	userSized bool
	children  []*Panel
	overrides func(*Styles)
}

func newPanel(parent *Canvas, b Backend, id int) *Panel {
	p := &Panel{
		Surface: NewSurface(b, parent.styles),
		parent:  parent,
		id:      id,
	}
	p.timeUnits = parent.timeUnits
	return p
}

// ID returns the panel's index in its canvas, or -1 for nested panels.
func (p *Panel) ID() int { return p.id }

// Parent returns the canvas the panel belongs to.
func (p *Panel) Parent() *Canvas { return p.parent }

// Position returns the vertical offset of the panel in the canvas.
func (p *Panel) Position() int      { return p.position }
func (p *Panel) Flexible() bool     { return p.flexible }
func (p *Panel) Collapsed() bool    { return p.collapsed }
func (p *Panel) Children() []*Panel { return p.children }

// SetFlexible marks the panel as resizable by the user.
func (p *Panel) SetFlexible() { p.flexible = true }

// Collapse hides the panel. Its surface is cleared immediately so that stale content can't be composited, and
// user sizing is forgotten.
func (p *Panel) Collapse() {
	p.collapsed = true
	p.userSized = false
	p.Clear()
}

// Expand shows the panel again. Its content is drawn by the next render.
func (p *Panel) Expand() {
	p.collapsed = false
}

// Resize changes the panel's layout. Resizes that don't come from the canvas' own layout pass (fromParent is
// false) collapse the panel if the height is not positive, expand it otherwise, and make the canvas lay out all
// panels again if the height changed.
func (p *Panel) Resize(sz Size, fromParent bool) {
	prevHeight := p.height
	p.Surface.Resize(sz.Width, max(sz.Height, 0))
	p.position = sz.Position
	for _, child := range p.children {
		child.Resize(Size{Width: sz.Width, Height: sz.Height}, true)
	}
	if fromParent {
		return
	}

	if sz.Height <= 0 {
		if !p.collapsed {
			p.Collapse()
		}
	} else {
		p.Expand()
	}
	if sz.Height != prevHeight && p.owner == nil {
		p.userSized = sz.Height > 0
		p.parent.RecalcChildrenSizes()
	}
}

// SetHeight resizes the panel as the user would.
func (p *Panel) SetHeight(h int) {
	p.Resize(Size{Width: p.width, Height: h, Position: p.position}, false)
}

// SetMinMax sets the bounds of the panel and its children.
func (p *Panel) SetMinMax(min, max float64) {
	p.Surface.SetMinMax(min, max)
	for _, child := range p.children {
		child.SetMinMax(min, max)
	}
}

// Clear clears the panel and its children.
func (p *Panel) Clear() {
	p.Surface.Clear()
	for _, child := range p.children {
		child.Clear()
	}
}

// SetStyles sets the panel's styles, with its overrides applied.
func (p *Panel) SetStyles(styles Styles) {
	if p.overrides != nil {
		p.overrides(&styles)
	}
	p.Surface.SetStyles(styles)
	for _, child := range p.children {
		child.SetStyles(styles)
	}
}

// SetStylesOverrides installs a function that adjusts every styles the panel gets, now and on later SetStyles
// calls.
func (p *Panel) SetStylesOverrides(fn func(*Styles)) {
	p.overrides = fn
	p.SetStyles(p.parent.styles)
}

// MakeChild returns a nested panel of the same size. The child follows the panel's size, bounds and clears but has
// its own zoom and position, and isn't composited by the canvas.
func (p *Panel) MakeChild() *Panel {
	child := newPanel(p.parent, p.backend.Offscreen(p.width, p.height), -1)
	child.owner = p
	child.SetStyles(p.styles)
	child.SetMinMax(p.min, p.max)
	child.ResetView()
	p.children = append(p.children, child)
	return child
}

// TryToChangePosition pans the canvas.
func (p *Panel) TryToChangePosition(delta float64) { p.parent.TryToChangePosition(delta) }

// RecalcMinMax makes the canvas recompute its bounds from all plugins.
func (p *Panel) RecalcMinMax() { p.parent.CalcMinMax() }

// Accuracy returns the number of decimals the time grid labels with.
func (p *Panel) Accuracy() int { return p.parent.grid.Accuracy() }

// Grid returns the canvas' time grid.
func (p *Panel) Grid() *timegrid.Grid { return p.parent.grid }

// RenderTimeGrid draws the grid lines across the whole panel.
func (p *Panel) RenderTimeGrid() {
	p.parent.grid.RenderLines(p, 0, float64(p.height))
}

// RenderTimeGridTimes draws the grid labels at the top of the panel.
func (p *Panel) RenderTimeGridTimes() {
	p.parent.grid.RenderTimes(p)
}

// StandardRender drains all render queues and draws the time grid.
func (p *Panel) StandardRender() {
	p.ResolveRectRenderQueue()
	p.ResolveTextRenderQueue()
	p.ResolveStrokeRenderQueue()
	p.RenderTimeGrid()
}

// ResetParentView makes the canvas show all data and schedules a full render.
func (p *Panel) ResetParentView() {
	p.parent.ResetView()
	p.parent.Render()
}

// Render schedules a partial render of this panel.
func (p *Panel) Render() {
	id := p.id
	if p.owner != nil {
		id = p.owner.id
	}
	p.parent.PartialRender(id)
}
