// Package font turns CSS-like font specifications such as "bold 10px sans-serif" into font faces of the Go fonts.
package font

import (
	"fmt"
	"strconv"
	"strings"

	"honnef.co/go/flamechart/mysync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const DefaultSize = 10

// Spec is a parsed font specification.
type Spec struct {
	Size   float64
	Bold   bool
	Italic bool
	Mono   bool
}

// ParseSpec parses a font specification of the form "[italic] [bold] <size>px <family>". Unknown words are
// ignored. Families containing "mono" or "courier" select the monospace font, everything else the proportional one.
func ParseSpec(s string) Spec {
	spec := Spec{Size: DefaultSize}
	for _, field := range strings.Fields(strings.ToLower(s)) {
		switch {
		case field == "bold" || field == "bolder" || field == "700" || field == "800" || field == "900":
			spec.Bold = true
		case field == "italic" || field == "oblique":
			spec.Italic = true
		case strings.HasSuffix(field, "px"):
			if v, err := strconv.ParseFloat(strings.TrimSuffix(field, "px"), 64); err == nil && v > 0 {
				spec.Size = v
			}
		case strings.Contains(field, "mono") || strings.Contains(field, "courier"):
			spec.Mono = true
		}
	}
	return spec
}

func (s Spec) String() string {
	var sb strings.Builder
	if s.Italic {
		sb.WriteString("italic ")
	}
	if s.Bold {
		sb.WriteString("bold ")
	}
	fmt.Fprintf(&sb, "%gpx ", s.Size)
	if s.Mono {
		sb.WriteString("monospace")
	} else {
		sb.WriteString("sans-serif")
	}
	return sb.String()
}

type style struct{ bold, italic, mono bool }

var sources = map[style][]byte{
	{}:                  goregular.TTF,
	{bold: true}:        gobold.TTF,
	{italic: true}:      goitalic.TTF,
	{true, true, false}: gobolditalic.TTF,
	{mono: true}:        gomono.TTF,
	{true, false, true}: gomonobold.TTF,
	{false, true, true}: gomonoitalic.TTF,
	{true, true, true}:  gomonobolditalic.TTF,
}

// Parsed fonts are safe for concurrent use, faces are not.
var fonts = mysync.NewCache[style, *opentype.Font]()

// Face returns a new face for spec. Faces are not safe for concurrent use and callers should keep the faces they
// use.
func Face(spec Spec) font.Face {
	st := style{spec.Bold, spec.Italic, spec.Mono}
	f := fonts.Get(st, func() *opentype.Font {
		f, err := opentype.Parse(sources[st])
		if err != nil {
			panic(fmt.Errorf("failed to parse Go font: %s", err))
		}
		return f
	})
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		// At 72 DPI, points are pixels.
		Size:    spec.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		panic(fmt.Errorf("failed to create face for %s: %s", spec, err))
	}
	return face
}
