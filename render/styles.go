package render

import (
	"strconv"
	"strings"
)

// Styles configures the look of a Surface.
type Styles struct {
	BlockHeight            int     `yaml:"blockHeight"`
	BlockPaddingLeftRight  float64 `yaml:"blockPaddingLeftRight"`
	BackgroundColor        string  `yaml:"backgroundColor"`
	Font                   string  `yaml:"font"`
	FontColor              string  `yaml:"fontColor"`
	TooltipHeaderFontColor string  `yaml:"tooltipHeaderFontColor"`
	TooltipBodyFontColor   string  `yaml:"tooltipBodyFontColor"`
	TooltipBackgroundColor string  `yaml:"tooltipBackgroundColor"`
	HeaderHeight           int     `yaml:"headerHeight"`
	HeaderColor            string  `yaml:"headerColor"`
	HeaderStrokeColor      string  `yaml:"headerStrokeColor"`
	HeaderTitleLeftPadding float64 `yaml:"headerTitleLeftPadding"`
}

func DefaultStyles() Styles {
	return Styles{
		BlockHeight:            16,
		BlockPaddingLeftRight:  4,
		BackgroundColor:        "white",
		Font:                   "10px sans-serif",
		FontColor:              "black",
		TooltipHeaderFontColor: "black",
		TooltipBodyFontColor:   "#688f45",
		TooltipBackgroundColor: "white",
		HeaderHeight:           14,
		HeaderColor:            "rgba(112, 112, 112, 0.25)",
		HeaderStrokeColor:      "rgba(112, 112, 112, 0.5)",
		HeaderTitleLeftPadding: 16,
	}
}

// Options are the non-visual settings of a Canvas.
type Options struct {
	TimeUnits string `yaml:"timeUnits"`
	// Tooltips enables the built-in tooltips.
	Tooltips bool `yaml:"tooltips"`
}

func DefaultOptions() Options {
	return Options{TimeUnits: "ms", Tooltips: true}
}

// FontSize returns the pixel size of a font specification such as "bold 12px monospace". It returns 10 if font
// doesn't specify a size.
func FontSize(font string) float64 {
	for _, field := range strings.Fields(font) {
		if v, ok := strings.CutSuffix(field, "px"); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				return f
			}
		}
	}
	return 10
}
