// Package raster implements render.Backend on top of an image.RGBA, using golang.org/x/image for text and
// polygons. Hosts display the image; tests inspect its pixels.
package raster

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	stdcolor "image/color"
	"image/draw"
	"math"

	"honnef.co/go/flamechart/color"
	"honnef.co/go/flamechart/font"
	"honnef.co/go/flamechart/render"
	"honnef.co/go/flamechart/tinylfu"

	"gioui.org/f32"
	"github.com/golang/snappy"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const defaultFont = "10px sans-serif"

// widthCacheSize bounds the number of cached text widths across all fonts.
const widthCacheSize = 4096

type widthKey struct {
	font font.Spec
	text string
}

// Canvas is a render.Backend drawing into an image.RGBA. The zero value is not usable; use New.
//
// Invalid colors are ignored, the previous color stays in effect. Lines are one pixel wide.
type Canvas struct {
	img *image.RGBA

	fill   *image.Uniform
	stroke *image.Uniform
	dash   []float64

	shadow     stdcolor.NRGBA
	shadowBlur float64

	fontSpec string
	font     font.Spec
	face     xfont.Face
	// faces and widths persist across Resize; they only depend on the font.
	faces  map[font.Spec]xfont.Face
	widths *tinylfu.T[widthKey, float64]
	colors map[string]stdcolor.NRGBA

	rast *vector.Rasterizer
}

var _ render.Backend = (*Canvas)(nil)

// New returns a transparent canvas of the given size.
func New(width, height int) *Canvas {
	c := &Canvas{
		faces:  map[font.Spec]xfont.Face{},
		widths: tinylfu.New[widthKey, float64](widthCacheSize, widthCacheSize*10),
		colors: map[string]stdcolor.NRGBA{},
	}
	c.Resize(width, height)
	return c
}

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// RGBA returns the canvas' image.
func (c *Canvas) RGBA() *image.RGBA                 { return c.img }
func (c *Canvas) Image() image.Image                { return c.img }
func (c *Canvas) Offscreen(w, h int) render.Backend { return New(w, h) }

func (c *Canvas) Resize(width, height int) {
	c.img = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	c.fill = image.NewUniform(stdcolor.NRGBA{A: 0xFF})
	c.stroke = image.NewUniform(stdcolor.NRGBA{A: 0xFF})
	c.dash = nil
	c.shadow, c.shadowBlur = stdcolor.NRGBA{}, 0
	c.SetFont(defaultFont)
}

func (c *Canvas) Clear() { clear(c.img.Pix) }

func (c *Canvas) parse(spec string) (stdcolor.NRGBA, bool) {
	if col, ok := c.colors[spec]; ok {
		return col, true
	}
	h, err := color.Parse(spec)
	if err != nil {
		return stdcolor.NRGBA{}, false
	}
	col := h.NRGBA()
	c.colors[spec] = col
	return col, true
}

func (c *Canvas) SetFillColor(spec string) {
	if col, ok := c.parse(spec); ok {
		c.fill = image.NewUniform(col)
	}
}

func (c *Canvas) SetStrokeColor(spec string) {
	if col, ok := c.parse(spec); ok {
		c.stroke = image.NewUniform(col)
	}
}

func (c *Canvas) SetFont(spec string) {
	if spec == c.fontSpec && c.face != nil {
		return
	}
	fs := font.ParseSpec(spec)
	face, ok := c.faces[fs]
	if !ok {
		face = font.Face(fs)
		c.faces[fs] = face
	}
	c.fontSpec = spec
	c.font = fs
	c.face = face
}

func (c *Canvas) SetLineDash(segments []float64) {
	c.dash = append(c.dash[:0], segments...)
	for _, s := range segments {
		if s < 0 || math.IsNaN(s) {
			c.dash = c.dash[:0]
			break
		}
	}
}

func (c *Canvas) SetShadow(spec string, blur float64) {
	if spec == "" || blur <= 0 {
		c.shadow, c.shadowBlur = stdcolor.NRGBA{}, 0
		return
	}
	if col, ok := c.parse(spec); ok {
		c.shadow, c.shadowBlur = col, blur
	}
}

// pixelRect converts a rectangle to pixels. Rectangles that cover less than a pixel still cover one.
func pixelRect(x, y, w, h float64) image.Rectangle {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	x0, y0 := int(math.Round(x)), int(math.Round(y))
	x1, y1 := int(math.Round(x+w)), int(math.Round(y+h))
	if x1 == x0 && w > 0 {
		x1++
	}
	if y1 == y0 && h > 0 {
		y1++
	}
	return image.Rect(x0, y0, x1, y1)
}

func (c *Canvas) FillRect(x, y, w, h float64) {
	r := pixelRect(x, y, w, h)
	if c.shadowBlur > 0 {
		c.drawShadow(r)
	}
	draw.Draw(c.img, r, c.fill, image.Point{}, draw.Over)
}

// drawShadow approximates a blurred shadow with concentric rectangles of increasing opacity.
func (c *Canvas) drawShadow(r image.Rectangle) {
	n := int(math.Ceil(c.shadowBlur))
	step := float64(c.shadow.A) / float64(n+1) / 2
	for i := n; i >= 1; i-- {
		col := c.shadow
		col.A = uint8(step)
		draw.Draw(c.img, r.Inset(-i), image.NewUniform(col), image.Point{}, draw.Over)
	}
}

func (c *Canvas) StrokeRect(x, y, w, h float64) {
	r := pixelRect(x, y, w, h)
	if r.Empty() {
		return
	}
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y+1, r.Min.X+1, r.Max.Y-1),
		image.Rect(r.Max.X-1, r.Min.Y+1, r.Max.X, r.Max.Y-1),
	} {
		draw.Draw(c.img, edge, c.stroke, image.Point{}, draw.Over)
	}
}

func (c *Canvas) FillText(text string, x, y float64) {
	d := xfont.Drawer{
		Dst:  c.img,
		Src:  c.fill,
		Face: c.face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(text)
}

func (c *Canvas) MeasureText(text string) float64 {
	k := widthKey{c.font, text}
	if w, ok := c.widths.Get(k); ok {
		return w
	}
	adv := xfont.MeasureString(c.face, text)
	w := float64(adv) / 64
	c.widths.Add(k, w)
	return w
}

func (c *Canvas) rasterizer() *vector.Rasterizer {
	w, h := c.Size()
	if c.rast == nil {
		c.rast = vector.NewRasterizer(w, h)
	} else {
		c.rast.Reset(w, h)
	}
	return c.rast
}

func (c *Canvas) FillPath(pts []f32.Point) {
	if len(pts) < 3 {
		return
	}
	z := c.rasterizer()
	z.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		z.LineTo(p.X, p.Y)
	}
	z.ClosePath()
	z.Draw(c.img, c.img.Bounds(), c.fill, image.Point{})
}

func (c *Canvas) StrokePath(pts []f32.Point) {
	if len(pts) < 2 {
		return
	}
	z := c.rasterizer()
	forEachDash(pts, c.dash, func(a, b f32.Point) {
		line(z, a, b)
	})
	z.Draw(c.img, c.img.Bounds(), c.stroke, image.Point{})
}

// line adds a one pixel wide segment from a to b to z.
func line(z *vector.Rasterizer, a, b f32.Point) {
	d := b.Sub(a)
	l := float32(math.Hypot(float64(d.X), float64(d.Y)))
	if l == 0 {
		return
	}
	n := f32.Pt(-d.Y/l*0.5, d.X/l*0.5)
	p0, p1, p2, p3 := a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)
	z.MoveTo(p0.X, p0.Y)
	z.LineTo(p1.X, p1.Y)
	z.LineTo(p2.X, p2.Y)
	z.LineTo(p3.X, p3.Y)
	z.ClosePath()
}

// forEachDash calls fn for every visible segment of the polyline pts with the dash pattern dash. An empty pattern
// or one that sums to zero draws solid lines. Like on an HTML canvas, patterns of odd length are repeated twice.
func forEachDash(pts []f32.Point, dash []float64, fn func(a, b f32.Point)) {
	var total float64
	for _, d := range dash {
		total += d
	}
	if total <= 0 {
		for i := 1; i < len(pts); i++ {
			fn(pts[i-1], pts[i])
		}
		return
	}
	if len(dash)%2 == 1 {
		dash = append(dash[:len(dash):len(dash)], dash...)
	}

	idx, left := 0, dash[0]
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		d := b.Sub(a)
		segLen := math.Hypot(float64(d.X), float64(d.Y))
		pos := 0.0
		for pos < segLen {
			step := math.Min(left, segLen-pos)
			if idx%2 == 0 && step > 0 {
				from := a.Add(d.Mul(float32(pos / segLen)))
				to := a.Add(d.Mul(float32((pos + step) / segLen)))
				fn(from, to)
			}
			pos += step
			left -= step
			if left <= 0 {
				idx = (idx + 1) % len(dash)
				left = dash[idx]
			}
		}
	}
}

func (c *Canvas) DrawImage(src render.Backend, x, y float64) {
	img := src.Image()
	b := img.Bounds()
	dst := b.Sub(b.Min).Add(image.Pt(int(math.Round(x)), int(math.Round(y))))
	draw.Draw(c.img, dst, img, b.Min, draw.Over)
}

// ErrSnapshotSize is returned by Restore when the snapshot was taken at a different size.
var ErrSnapshotSize = errors.New("snapshot size doesn't match canvas size")

// Snapshot returns the compressed pixels of the canvas.
func (c *Canvas) Snapshot() []byte {
	w, h := c.Size()
	out := make([]byte, 8, 8+snappy.MaxEncodedLen(len(c.img.Pix)))
	binary.LittleEndian.PutUint32(out[0:], uint32(w))
	binary.LittleEndian.PutUint32(out[4:], uint32(h))
	z := snappy.Encode(out[8:cap(out)], c.img.Pix)
	return out[:8+len(z)]
}

// Restore replaces the pixels of the canvas with a snapshot of the same size.
func (c *Canvas) Restore(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("snapshot too short: %d bytes", len(data))
	}
	w, h := c.Size()
	if int(binary.LittleEndian.Uint32(data[0:])) != w || int(binary.LittleEndian.Uint32(data[4:])) != h {
		return ErrSnapshotSize
	}
	n, err := snappy.DecodedLen(data[8:])
	if err != nil {
		return fmt.Errorf("couldn't decode snapshot: %w", err)
	}
	if n != len(c.img.Pix) {
		return ErrSnapshotSize
	}
	if _, err := snappy.Decode(c.img.Pix, data[8:]); err != nil {
		return fmt.Errorf("couldn't decode snapshot: %w", err)
	}
	return nil
}
