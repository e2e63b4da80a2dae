// Package interact turns raw mouse input into chart interactions: wheel zooming and panning, drag detection,
// clicks, and hit testing against the regions that panels register while rendering.
//
// Engine handles the whole canvas. Each panel gets a Panel from Engine.MakeInstance, which only sees events that
// concern it and reports mouse positions relative to its own top edge.
package interact

import (
	"honnef.co/go/flamechart/event"
	"honnef.co/go/flamechart/mem"

	"gioui.org/f32"
)

// Viewport is the time axis the engine manipulates.
type Viewport interface {
	Width() int
	Zoom() float64
	PositionX() float64
	InitialZoom() float64
	RealView() float64
	SetZoom(zoom float64) bool
	TryToChangePosition(delta float64)
	Render()
	PartialRender(id int)
}

// PanelView is the vertical extent of a panel.
type PanelView interface {
	Position() int
	Height() int
}

// MouseEvent is emitted for mouse input. Region is a copy of the hovered region, or nil.
type MouseEvent struct {
	Region  *HitRegion
	Mouse   f32.Point
	IsClick bool
}

// PositionChange is emitted while the mouse is dragged. DeltaX is in time units, DeltaY in pixels; both are
// positive when dragging left or up. Panel is the panel that was under the mouse when the drag started, or nil.
type PositionChange struct {
	DeltaX float64
	DeltaY float64
	Panel  *Panel
}

// Engine dispatches the mouse input of a canvas.
type Engine struct {
	Down   event.Emitter[MouseEvent]
	Up     event.Emitter[MouseEvent]
	Move   event.Emitter[MouseEvent]
	Click  event.Emitter[MouseEvent]
	Select event.Emitter[MouseEvent]
	// Hover is emitted on every mouse move, with the hovered region or nil. It is not deduplicated.
	Hover          event.Emitter[MouseEvent]
	ChangePosition event.Emitter[PositionChange]
	CursorChanged  event.Emitter[Cursor]

	view    Viewport
	regions mem.Arena[HitRegion]
	panels  []*Panel

	mouse        f32.Point
	downPosition f32.Point
	moveActive   bool

	hovered      *HitRegion
	hoveredArena *mem.Arena[HitRegion]
	hoveredRef   mem.Ref
	hoveredPanel *Panel
	downPanel    *Panel

	cursor Cursor
	sticky Cursor
}

func New(view Viewport) *Engine {
	return &Engine{view: view, cursor: CursorDefault, hoveredRef: mem.NoRef}
}

// MakeInstance returns the engine of a panel.
func (e *Engine) MakeInstance(view PanelView) *Panel {
	p := newPanel(e, view, len(e.panels))
	e.panels = append(e.panels, p)
	return p
}

func (e *Engine) Panels() []*Panel   { return e.panels }
func (e *Engine) Mouse() f32.Point   { return e.mouse }
func (e *Engine) Cursor() Cursor     { return e.cursor }
func (e *Engine) MoveActive() bool   { return e.moveActive }
func (e *Engine) Viewport() Viewport { return e.view }

// AddHitRegion registers a canvas-wide hit region.
func (e *Engine) AddHitRegion(typ RegionType, data any, x, y, w, h float64, cursor Cursor) {
	e.regions.Add(HitRegion{Type: typ, Data: data, X: x, Y: y, W: w, H: h, Cursor: cursor, ID: CanvasID})
}

// ClearHitRegions removes all canvas-wide hit regions.
func (e *Engine) ClearHitRegions() { e.regions.Reset() }

// Hovered returns a copy of the region found by the last hit test, or nil.
func (e *Engine) Hovered() *HitRegion { return e.hovered }

// HoveredLive returns the hovered region itself, or nil if there is none or its panel has been redrawn since the
// hit test.
func (e *Engine) HoveredLive() *HitRegion {
	if e.hoveredArena == nil {
		return nil
	}
	return e.hoveredArena.Resolve(e.hoveredRef)
}

// HoveredPanel returns the panel whose band the mouse was in during the last hit test.
func (e *Engine) HoveredPanel() *Panel { return e.hoveredPanel }

// SetCursor sets a cursor that stays until ClearCursor, independent of hovered regions.
func (e *Engine) SetCursor(c Cursor) {
	e.sticky = c
	e.applyCursor(c)
}

// ClearCursor removes the cursor set by SetCursor and shows the cursor of the hovered region, if any.
func (e *Engine) ClearCursor() {
	e.sticky = ""
	if e.hovered != nil {
		e.applyCursor(e.hovered.Cursor)
	} else {
		e.applyCursor(CursorDefault)
	}
}

func (e *Engine) applyCursor(c Cursor) {
	if c == "" {
		c = CursorDefault
	}
	if c != e.cursor {
		e.cursor = c
		e.CursorChanged.Emit(c)
	}
}

func (e *Engine) event(region *HitRegion) MouseEvent {
	return MouseEvent{Region: region, Mouse: e.mouse}
}

// HandleWheel handles a wheel event at pos. Horizontal scrolling pans, vertical scrolling zooms around the mouse
// position. Zooming out stops at the zoom that shows all data.
func (e *Engine) HandleWheel(pos f32.Point, deltaX, deltaY float64) {
	e.mouse = pos
	v := e.view
	startPosition, startZoom := v.PositionX(), v.Zoom()

	v.TryToChangePosition(deltaX / v.Zoom())

	zoomDelta := deltaY / 1000 * v.Zoom()
	if v.Zoom()-zoomDelta < v.InitialZoom() {
		zoomDelta = v.Zoom() - v.InitialZoom()
	}
	if zoomDelta != 0 {
		realView := v.RealView()
		if v.SetZoom(v.Zoom() - zoomDelta) {
			proportion := float64(pos.X) / float64(v.Width())
			v.TryToChangePosition((realView - v.RealView()) * proportion)
		}
	}

	e.checkRegionHover()
	if v.PositionX() != startPosition || v.Zoom() != startZoom {
		v.Render()
	}
}

// HandleMouseDown handles a button press at pos.
func (e *Engine) HandleMouseDown(pos f32.Point) {
	e.mouse = pos
	e.moveActive = true
	e.downPosition = pos
	e.downPanel = e.hoveredPanel
	e.Down.Emit(e.event(e.hovered))
}

// HandleMouseUp handles a button release at pos. A release at the position of the press is a click, which also
// emits Select and Click.
func (e *Engine) HandleMouseUp(pos f32.Point) {
	isClick := e.moveActive && pos == e.downPosition
	e.mouse = pos
	e.moveActive = false
	if isClick {
		region, _, _ := e.hitTest()
		e.Select.Emit(e.event(region))
	}
	ev := e.event(e.hovered)
	ev.IsClick = isClick
	e.Up.Emit(ev)
	if isClick {
		e.Click.Emit(e.event(e.hovered))
	}
}

// HandleMouseLeave handles the mouse leaving the canvas, which ends any drag.
func (e *Engine) HandleMouseLeave(pos f32.Point) { e.HandleMouseUp(pos) }

// HandleMouseMove handles the mouse moving to pos.
func (e *Engine) HandleMouseMove(pos f32.Point) {
	if e.moveActive {
		dy := float64(e.mouse.Y - pos.Y)
		dx := float64(e.mouse.X-pos.X) / e.view.Zoom()
		if dx != 0 || dy != 0 {
			e.ChangePosition.Emit(PositionChange{DeltaX: dx, DeltaY: dy, Panel: e.downPanel})
		}
	}
	e.mouse = pos
	e.checkRegionHover()
	e.Move.Emit(e.event(e.hovered))
}

func (e *Engine) checkRegionHover() {
	region, arena, ref := e.hitTest()
	switch {
	case region != nil:
		if e.sticky == "" {
			e.applyCursor(region.Cursor)
		}
		e.hovered, e.hoveredArena, e.hoveredRef = region, arena, ref
		e.Hover.Emit(e.event(region))
		e.view.PartialRender(-1)
	case e.hovered != nil:
		e.hovered, e.hoveredArena, e.hoveredRef = nil, nil, mem.NoRef
		if e.sticky == "" {
			e.applyCursor(CursorDefault)
		}
		e.Hover.Emit(e.event(nil))
		e.view.PartialRender(-1)
	default:
		e.Hover.Emit(e.event(nil))
	}
}

// hitTest finds the region under the mouse. Canvas-wide regions take precedence over the regions of the panel whose
// band contains the mouse. It returns a copy of the region.
func (e *Engine) hitTest() (*HitRegion, *mem.Arena[HitRegion], mem.Ref) {
	x, y := float64(e.mouse.X), float64(e.mouse.Y)
	if ref, r := e.regions.Find(func(r *HitRegion) bool { return r.Contains(x, y) }); r != nil {
		cpy := *r
		return &cpy, &e.regions, ref
	}

	e.hoveredPanel = nil
	for _, p := range e.panels {
		top, h := float64(p.view.Position()), float64(p.view.Height())
		if h <= 0 || y < top || y > top+h {
			continue
		}
		e.hoveredPanel = p
		if ref, r := p.regions.Find(func(r *HitRegion) bool { return r.Contains(x, y-top) }); r != nil {
			cpy := *r
			return &cpy, &p.regions, ref
		}
		break
	}
	return nil, nil, mem.NoRef
}
