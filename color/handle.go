package color

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// Rotate rotates the hue by deg degrees in HSL space.
func (h Handle) Rotate(deg float64) Handle {
	hue, s, l := h.c.Hsl()
	hue = math.Mod(hue+deg, 360)
	if hue < 0 {
		hue += 360
	}
	return Handle{c: colorful.Hsl(hue, s, l), a: h.a}
}

// Alpha returns the color with its alpha replaced by a.
func (h Handle) Alpha(a float64) Handle {
	h.a = clamp01(a)
	return h
}

// Lighten scales the perceptual lightness by 1+ratio, staying inside the sRGB gamut.
func (h Handle) Lighten(ratio float64) Handle {
	c := h.SRGB().Oklch().Lighten(float32(ratio)).SRGB()
	return Handle{c: colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}, a: h.a}
}

// A returns the alpha.
func (h Handle) A() float64 { return h.a }

// SRGB converts h to an SRGB value.
func (h Handle) SRGB() SRGB {
	c := h.c.Clamped()
	return SRGB{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: float32(h.a)}
}

// NRGBA converts h to an 8-bit non-premultiplied color.
func (h Handle) NRGBA() color.NRGBA {
	r, g, b := h.c.Clamped().RGB255()
	return color.NRGBA{r, g, b, uint8(math.Round(h.a * 255))}
}

// String formats h as rgb(r, g, b), or rgba(r, g, b, a) if it isn't opaque. Equal colors format identically.
func (h Handle) String() string {
	r, g, b := h.c.Clamped().RGB255()
	if h.a >= 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(h.a, 'f', -1, 64))
}

// Resolve parses spec and formats it canonically, optionally replacing its alpha.
func Resolve(spec string, alpha ...float64) (string, error) {
	h, err := Parse(spec)
	if err != nil {
		return "", err
	}
	if len(alpha) > 0 {
		h = h.Alpha(alpha[0])
	}
	return h.String(), nil
}

// PaletteStep is the hue rotation between two automatically assigned colors.
const PaletteStep = 27

// PaletteSeed is the color that automatic palette colors are rotated from.
var PaletteSeed = HSL(180, 0.3, 0.7)

// Resolver assigns colors to node types. Explicit colors win, then configured type colors, then colors from a
// rotating palette. Once a type has been assigned a color it keeps it.
type Resolver struct {
	user     map[string]string
	assigned map[string]string
	last     Handle
}

// NewResolver returns a resolver using the configured type colors. It fails if any of them doesn't parse.
func NewResolver(types map[string]string) (*Resolver, error) {
	r := &Resolver{
		user:     make(map[string]string, len(types)),
		assigned: map[string]string{},
		last:     PaletteSeed,
	}
	for typ, spec := range types {
		h, err := Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("color for type %q: %w", typ, err)
		}
		r.user[typ] = h.String()
	}
	return r, nil
}

// Resolve returns the color for a node of type typ. A non-empty explicit color is returned unchanged.
func (r *Resolver) Resolve(typ, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if c, ok := r.assigned[typ]; ok {
		return c
	}
	c, ok := r.user[typ]
	if !ok {
		r.last = r.last.Rotate(PaletteStep)
		c = r.last.String()
	}
	r.assigned[typ] = c
	return c
}

// Reset forgets all automatically assigned colors.
func (r *Resolver) Reset() {
	clear(r.assigned)
	r.last = PaletteSeed
}
