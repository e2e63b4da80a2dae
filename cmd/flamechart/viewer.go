package main

import (
	"context"
	"image"
	rtrace "runtime/trace"

	"honnef.co/go/flamechart"
	"honnef.co/go/flamechart/interact"
	"honnef.co/go/flamechart/raster"
	"honnef.co/go/flamechart/render"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
)

// viewer drives a chart from a Gio window. The chart draws into an image that is shown as the window's only
// content.
type viewer struct {
	win    *app.Window
	fc     *flamechart.FlameChart
	img    *raster.Canvas
	frames *render.FrameQueue

	// pressed is true between a primary button press and its release.
	pressed bool
}

func newViewer(w *app.Window, opts flamechart.Options) (*viewer, error) {
	v := &viewer{
		win:    w,
		img:    raster.New(1, 1),
		frames: &render.FrameQueue{OnRequest: w.Invalidate},
	}
	opts.Frames = v.frames
	fc, err := flamechart.New(v.img, opts)
	if err != nil {
		return nil, err
	}
	v.fc = fc
	return v, nil
}

func (v *viewer) loop() error {
	var ops op.Ops
	for {
		e := <-v.win.Events()
		switch ev := e.(type) {
		case system.DestroyEvent:
			return ev.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, ev)
			v.layout(gtx)
			ev.Frame(&ops)
		}
	}
}

func (v *viewer) layout(gtx layout.Context) {
	defer rtrace.StartRegion(context.Background(), "main.viewer.layout").End()

	for _, ev := range gtx.Events(v) {
		switch ev := ev.(type) {
		case pointer.Event:
			v.pointer(ev)
		case key.Event:
			if ev.State == key.Press && ev.Name == key.NameHome {
				v.fc.Canvas().ResetView()
				v.fc.Render()
			}
		}
	}

	size := gtx.Constraints.Max
	v.fc.Resize(size.X, size.Y)
	v.frames.Tick()

	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	pointer.InputOp{
		Tag:          v,
		Types:        pointer.Press | pointer.Release | pointer.Move | pointer.Drag | pointer.Leave | pointer.Scroll,
		ScrollBounds: image.Rectangle{Min: image.Pt(-1000, -1000), Max: image.Pt(1000, 1000)},
	}.Add(gtx.Ops)
	key.InputOp{Tag: v, Keys: key.NameHome}.Add(gtx.Ops)
	key.FocusOp{Tag: v}.Add(gtx.Ops)
	cursor(v.fc.Input().Cursor()).Add(gtx.Ops)

	// The image is mutated in place by later frames, so every frame uploads it anew.
	paint.NewImageOp(v.img.RGBA()).Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)

	if v.frames.Pending() {
		op.InvalidateOp{}.Add(gtx.Ops)
	}
}

func (v *viewer) pointer(ev pointer.Event) {
	in := v.fc.Input()
	pos := f32.Pt(ev.Position.X, ev.Position.Y)
	switch ev.Type {
	case pointer.Press:
		if ev.Buttons == pointer.ButtonPrimary && !v.pressed {
			v.pressed = true
			in.HandleMouseDown(pos)
		}
	case pointer.Release:
		if v.pressed {
			v.pressed = false
			in.HandleMouseUp(pos)
		}
	case pointer.Move, pointer.Drag:
		in.HandleMouseMove(pos)
	case pointer.Leave:
		if v.pressed {
			v.pressed = false
			in.HandleMouseLeave(pos)
		}
	case pointer.Scroll:
		in.HandleWheel(pos, float64(ev.Scroll.X), float64(ev.Scroll.Y))
	}
}

func cursor(c interact.Cursor) pointer.Cursor {
	switch c {
	case interact.CursorPointer:
		return pointer.CursorPointer
	case interact.CursorText:
		return pointer.CursorText
	case interact.CursorGrabbing:
		return pointer.CursorAllScroll
	case interact.CursorEWResize:
		return pointer.CursorColResize
	case interact.CursorRowResize:
		return pointer.CursorRowResize
	default:
		return pointer.CursorDefault
	}
}
