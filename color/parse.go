package color

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ErrUnknownModel is returned by Parse for functional notations other than rgb, rgba, hsl and hsla.
var ErrUnknownModel = errors.New("unknown color model")

// SyntaxError describes a color specification that couldn't be parsed.
type SyntaxError struct {
	Spec string
	Msg  string
}

func (err *SyntaxError) Error() string {
	return fmt.Sprintf("invalid color %q: %s", err.Spec, err.Msg)
}

// Handle is an immutable color with derived-color operations. Handles are produced by Parse, RGB and HSL.
type Handle struct {
	c colorful.Color
	a float64
}

// RGB returns the color with 8-bit channels r, g, b and alpha a in [0, 1].
func RGB(r, g, b uint8, a float64) Handle {
	return Handle{c: colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, a: a}
}

// HSL returns the color with hue h in degrees and saturation and lightness in [0, 1].
func HSL(h, s, l float64) Handle {
	return Handle{c: colorful.Hsl(h, s, l), a: 1}
}

// MustParse is like Parse but panics on error. It is meant for compile-time constant specifications.
func MustParse(spec string) Handle {
	h, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return h
}

// Parse parses a CSS-like color specification: #rgb, #rgba, #rrggbb, #rrggbbaa, a CSS color name,
// "transparent", or one of the functions rgb, rgba, hsl and hsla. rgb accepts an optional fourth alpha argument.
// Other functional notations fail with an error wrapping ErrUnknownModel.
func Parse(spec string) (Handle, error) {
	s := strings.ToLower(strings.TrimSpace(spec))
	switch {
	case s == "":
		return Handle{}, &SyntaxError{spec, "empty"}
	case s == "transparent":
		return Handle{}, nil
	case s[0] == '#':
		return parseHex(spec, s)
	case strings.HasSuffix(s, ")"):
		open := strings.IndexByte(s, '(')
		if open == -1 {
			return Handle{}, &SyntaxError{spec, "missing '('"}
		}
		model := strings.TrimSpace(s[:open])
		args := splitArgs(s[open+1 : len(s)-1])
		switch model {
		case "rgb", "rgba":
			return parseRGB(spec, args)
		case "hsl", "hsla":
			return parseHSL(spec, args)
		default:
			return Handle{}, fmt.Errorf("%w %q in %q", ErrUnknownModel, model, spec)
		}
	default:
		if c, ok := colornames.Map[s]; ok {
			return RGB(c.R, c.G, c.B, float64(c.A)/255), nil
		}
		return Handle{}, &SyntaxError{spec, "unknown color name"}
	}
}

func parseHex(spec, s string) (Handle, error) {
	alpha := 1.0
	switch len(s) {
	case 4, 7:
	case 5, 9:
		n := (len(s) - 1) / 4
		digits := s[len(s)-n:]
		if n == 1 {
			digits += digits
		}
		v, err := strconv.ParseUint(digits, 16, 8)
		if err != nil {
			return Handle{}, &SyntaxError{spec, "invalid alpha"}
		}
		alpha = float64(v) / 255
		s = s[:len(s)-n]
	default:
		return Handle{}, &SyntaxError{spec, "hex colors need 3, 4, 6 or 8 digits"}
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Handle{}, &SyntaxError{spec, err.Error()}
	}
	return Handle{c: c, a: alpha}, nil
}

func splitArgs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '/' || r == '\t'
	})
}

func parseNumber(arg string, percentScale float64) (float64, error) {
	if v, ok := strings.CutSuffix(arg, "%"); ok {
		f, err := strconv.ParseFloat(v, 64)
		return f / 100 * percentScale, err
	}
	return strconv.ParseFloat(strings.TrimSuffix(arg, "deg"), 64)
}

func parseAlpha(spec string, args []string, n int) (float64, error) {
	if len(args) <= n {
		return 1, nil
	}
	a, err := parseNumber(args[n], 1)
	if err != nil {
		return 0, &SyntaxError{spec, "invalid alpha"}
	}
	return clamp01(a), nil
}

func parseRGB(spec string, args []string) (Handle, error) {
	if len(args) != 3 && len(args) != 4 {
		return Handle{}, &SyntaxError{spec, "rgb needs 3 or 4 arguments"}
	}
	var ch [3]float64
	for i := range ch {
		v, err := parseNumber(args[i], 255)
		if err != nil {
			return Handle{}, &SyntaxError{spec, fmt.Sprintf("invalid channel %q", args[i])}
		}
		ch[i] = clamp01(v / 255)
	}
	a, err := parseAlpha(spec, args, 3)
	if err != nil {
		return Handle{}, err
	}
	return Handle{c: colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, a: a}, nil
}

func parseHSL(spec string, args []string) (Handle, error) {
	if len(args) != 3 && len(args) != 4 {
		return Handle{}, &SyntaxError{spec, "hsl needs 3 or 4 arguments"}
	}
	// Saturation and lightness are percentages, with or without the percent sign.
	percent := func(arg string) (float64, error) {
		v, err := strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 64)
		return v / 100, err
	}
	h, err1 := parseNumber(args[0], 360)
	s, err2 := percent(args[1])
	l, err3 := percent(args[2])
	if err := errors.Join(err1, err2, err3); err != nil {
		return Handle{}, &SyntaxError{spec, "invalid hsl component"}
	}
	a, err := parseAlpha(spec, args, 3)
	if err != nil {
		return Handle{}, err
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return Handle{c: colorful.Hsl(h, clamp01(s), clamp01(l)), a: a}, nil
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
