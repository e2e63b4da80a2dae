package raster

import (
	"errors"
	stdcolor "image/color"
	"testing"

	"gioui.org/f32"
)

var (
	red         = stdcolor.RGBA{R: 0xFF, A: 0xFF}
	blue        = stdcolor.RGBA{B: 0xFF, A: 0xFF}
	transparent = stdcolor.RGBA{}
)

func at(c *Canvas, x, y int) stdcolor.RGBA { return c.RGBA().RGBAAt(x, y) }

func TestFillRect(t *testing.T) {
	c := New(20, 20)
	c.SetFillColor("red")
	c.FillRect(2, 2, 5, 5)
	if got := at(c, 4, 4); got != red {
		t.Errorf("inside: got %v, want %v", got, red)
	}
	if got := at(c, 8, 4); got != transparent {
		t.Errorf("outside: got %v, want %v", got, transparent)
	}

	// Blocks narrower than a pixel still show up.
	c.SetFillColor("#0000ff")
	c.FillRect(12.1, 0, 0.25, 16)
	if got := at(c, 12, 3); got != blue {
		t.Errorf("thin block: got %v, want %v", got, blue)
	}
}

func TestInvalidColorIgnored(t *testing.T) {
	c := New(4, 4)
	c.SetFillColor("red")
	c.SetFillColor("no such color")
	c.FillRect(0, 0, 4, 4)
	if got := at(c, 1, 1); got != red {
		t.Errorf("got %v, want %v", got, red)
	}
}

func TestTranslucentFill(t *testing.T) {
	c := New(4, 4)
	c.SetFillColor("white")
	c.FillRect(0, 0, 4, 4)
	c.SetFillColor("rgba(0, 0, 0, 0.5)")
	c.FillRect(0, 0, 4, 4)
	got := at(c, 0, 0)
	if got.A != 0xFF || got.R < 0x7C || got.R > 0x83 {
		t.Errorf("got %v, want half gray", got)
	}
}

func TestStrokeRect(t *testing.T) {
	c := New(20, 20)
	c.SetStrokeColor("red")
	c.StrokeRect(2, 2, 10, 10)
	for _, p := range [][2]int{{2, 2}, {11, 2}, {2, 11}, {11, 11}, {6, 2}, {2, 6}} {
		if got := at(c, p[0], p[1]); got != red {
			t.Errorf("edge %v: got %v", p, got)
		}
	}
	if got := at(c, 6, 6); got != transparent {
		t.Errorf("center: got %v", got)
	}
}

func TestText(t *testing.T) {
	c := New(100, 20)
	if ab, abc := c.MeasureText("ab"), c.MeasureText("abc"); ab <= 0 || abc <= ab {
		t.Errorf("widths: ab=%g abc=%g", ab, abc)
	}
	small := c.MeasureText("abcdef")
	c.SetFont("20px sans-serif")
	if large := c.MeasureText("abcdef"); large <= small {
		t.Errorf("20px text (%g) isn't wider than 10px text (%g)", large, small)
	}

	c.SetFont("10px sans-serif")
	if again := c.MeasureText("abcdef"); again != small {
		t.Errorf("width after switching fonts back: got %g, want %g", again, small)
	}
	c.SetFillColor("black")
	c.FillText("Hello", 2, 14)
	inked := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 100; x++ {
			if at(c, x, y).A != 0 {
				inked++
				if y > 15 || x < 1 {
					t.Fatalf("ink at (%d, %d) outside the text", x, y)
				}
			}
		}
	}
	if inked == 0 {
		t.Error("text drew nothing")
	}
}

func TestFillPath(t *testing.T) {
	c := New(20, 20)
	c.SetFillColor("red")
	c.FillPath([]f32.Point{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 0, Y: 20}})
	if got := at(c, 3, 3); got != red {
		t.Errorf("inside: got %v", got)
	}
	if got := at(c, 17, 17); got != transparent {
		t.Errorf("outside: got %v", got)
	}
}

func TestStrokePathDashed(t *testing.T) {
	c := New(40, 10)
	c.SetStrokeColor("red")
	c.SetLineDash([]float64{8, 7})
	c.StrokePath([]f32.Point{{X: 0, Y: 5.5}, {X: 40, Y: 5.5}})
	for x, want := range map[int]stdcolor.RGBA{3: red, 10: transparent, 17: red, 27: transparent, 32: red} {
		if got := at(c, x, 5); got != want {
			t.Errorf("x=%d: got %v, want %v", x, got, want)
		}
	}

	c.Clear()
	c.SetLineDash(nil)
	c.StrokePath([]f32.Point{{X: 0, Y: 5.5}, {X: 40, Y: 5.5}})
	if got := at(c, 10, 5); got != red {
		t.Errorf("solid line: got %v", got)
	}
}

func TestForEachDash(t *testing.T) {
	var segs [][2]f32.Point
	forEachDash([]f32.Point{{X: 0}, {X: 10}, {X: 10, Y: 10}}, []float64{4}, func(a, b f32.Point) {
		segs = append(segs, [2]f32.Point{a, b})
	})
	want := [][2]f32.Point{
		{{X: 0}, {X: 4}},
		{{X: 8}, {X: 10}},
		{{X: 10}, {X: 10, Y: 2}},
		{{X: 10, Y: 6}, {X: 10, Y: 10}},
	}
	if len(segs) != len(want) {
		t.Fatalf("got %v, want %v", segs, want)
	}
	for i := range segs {
		if segs[i] != want[i] {
			t.Errorf("segment %d: got %v, want %v", i, segs[i], want[i])
		}
	}
}

func TestDrawImage(t *testing.T) {
	dst := New(20, 20)
	src := dst.Offscreen(5, 5).(*Canvas)
	src.SetFillColor("red")
	src.FillRect(0, 0, 5, 5)
	dst.DrawImage(src, 10, 3)
	if got := at(dst, 12, 5); got != red {
		t.Errorf("got %v", got)
	}
	if got := at(dst, 2, 5); got != transparent {
		t.Errorf("got %v outside the blitted area", got)
	}
}

func TestShadow(t *testing.T) {
	c := New(30, 30)
	c.SetShadow("black", 5)
	c.SetFillColor("white")
	c.FillRect(10, 10, 10, 10)
	if got := at(c, 8, 15); got.A == 0 {
		t.Error("no shadow next to the box")
	}
	if got := at(c, 15, 15); got != (stdcolor.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Errorf("box: got %v", got)
	}
	c.SetShadow("", 0)
	c.FillRect(0, 25, 3, 3)
	if got := at(c, 4, 26); got.A != 0 {
		t.Errorf("disabled shadow still drawn: %v", got)
	}
}

func TestSnapshot(t *testing.T) {
	c := New(16, 8)
	c.SetFillColor("red")
	c.FillRect(0, 0, 4, 4)
	snap := c.Snapshot()

	c.Clear()
	if err := c.Restore(snap); err != nil {
		t.Fatal(err)
	}
	if got := at(c, 1, 1); got != red {
		t.Errorf("restored pixel: got %v", got)
	}

	other := New(8, 8)
	if err := other.Restore(snap); !errors.Is(err, ErrSnapshotSize) {
		t.Errorf("got error %v, want %v", err, ErrSnapshotSize)
	}
	if err := other.Restore(snap[:3]); err == nil {
		t.Error("restoring a truncated snapshot succeeded")
	}
}

func TestResizeResetsState(t *testing.T) {
	c := New(4, 4)
	c.SetFillColor("red")
	c.Resize(6, 6)
	if w, h := c.Size(); w != 6 || h != 6 {
		t.Errorf("got size %dx%d", w, h)
	}
	c.FillRect(0, 0, 6, 6)
	if got := at(c, 0, 0); got != (stdcolor.RGBA{A: 0xFF}) {
		t.Errorf("fill color survived the resize: %v", got)
	}
}
