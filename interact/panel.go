package interact

import (
	"honnef.co/go/flamechart/event"
	"honnef.co/go/flamechart/mem"

	"gioui.org/f32"
)

// Panel is the view of an Engine for a single panel. It re-emits the engine's events when they concern the panel,
// with the mouse position relative to the panel's top edge:
//
//   - Down, Up, Move, Click and Select while the mouse is inside the panel's band and the event has no region or
//     one of the panel's regions.
//   - Hover when the event has no region or one of the panel's regions.
//   - ChangePosition when the drag started over the panel.
//
// The band is checked when the event happens, so a panel stops getting events as soon as the mouse leaves it.
type Panel struct {
	Down           event.Emitter[MouseEvent]
	Up             event.Emitter[MouseEvent]
	Move           event.Emitter[MouseEvent]
	Click          event.Emitter[MouseEvent]
	Select         event.Emitter[MouseEvent]
	Hover          event.Emitter[MouseEvent]
	ChangePosition event.Emitter[PositionChange]

	parent  *Engine
	view    PanelView
	id      int
	regions mem.Arena[HitRegion]
}

func newPanel(parent *Engine, view PanelView, id int) *Panel {
	p := &Panel{parent: parent, view: view, id: id}
	resend := func(dst *event.Emitter[MouseEvent]) func(MouseEvent) {
		return func(ev MouseEvent) {
			if p.owns(ev.Region) && p.inBand() {
				dst.Emit(p.localize(ev))
			}
		}
	}
	parent.Down.On(resend(&p.Down))
	parent.Up.On(resend(&p.Up))
	parent.Move.On(resend(&p.Move))
	parent.Click.On(resend(&p.Click))
	parent.Select.On(resend(&p.Select))
	parent.Hover.On(func(ev MouseEvent) {
		if p.owns(ev.Region) {
			p.Hover.Emit(p.localize(ev))
		}
	})
	parent.ChangePosition.On(func(ev PositionChange) {
		if ev.Panel == p {
			p.ChangePosition.Emit(ev)
		}
	})
	return p
}

func (p *Panel) ID() int         { return p.id }
func (p *Panel) Parent() *Engine { return p.parent }

func (p *Panel) owns(r *HitRegion) bool { return r == nil || r.ID == p.id }

func (p *Panel) inBand() bool {
	y := float64(p.parent.mouse.Y)
	top := float64(p.view.Position())
	return y >= top && y <= top+float64(p.view.Height())
}

func (p *Panel) localize(ev MouseEvent) MouseEvent {
	ev.Mouse = p.Mouse()
	return ev
}

// Mouse returns the mouse position relative to the panel.
func (p *Panel) Mouse() f32.Point {
	m := p.parent.mouse
	m.Y -= float32(p.view.Position())
	return m
}

// AddHitRegion registers a hit region in panel coordinates.
func (p *Panel) AddHitRegion(typ RegionType, data any, x, y, w, h float64, cursor Cursor) {
	p.regions.Add(HitRegion{Type: typ, Data: data, X: x, Y: y, W: w, H: h, Cursor: cursor, ID: p.id})
}

// ClearHitRegions removes all of the panel's hit regions. It is called whenever the panel's surface is cleared.
func (p *Panel) ClearHitRegions() { p.regions.Reset() }

// HitRegions returns the number of registered hit regions.
func (p *Panel) HitRegions() int { return p.regions.Len() }

func (p *Panel) SetCursor(c Cursor) { p.parent.SetCursor(c) }
func (p *Panel) ClearCursor()       { p.parent.ClearCursor() }
