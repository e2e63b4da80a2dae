package render

import (
	"math"

	"gioui.org/f32"
)

const (
	tooltipOffset     = 10
	tooltipShadowBlur = 5
)

// RenderTooltipFromData draws a tooltip box below and to the right of mouse, one line per field. The box is sized to
// the widest line. It is not moved to stay inside the surface.
func (s *Surface) RenderTooltipFromData(fields []TooltipField, mouse f32.Point) {
	if len(fields) == 0 {
		return
	}
	s.SetFont(s.styles.Font)

	var maxWidth float64
	for _, f := range fields {
		maxWidth = math.Max(maxWidth, s.backend.MeasureText(f.Text))
	}
	pad := s.styles.BlockPaddingLeftRight
	lineHeight := s.charHeight + 2
	w := maxWidth + pad*4
	h := lineHeight*float64(len(fields)) + pad*2

	x := float64(mouse.X) + tooltipOffset
	y := float64(mouse.Y) + tooltipOffset

	s.backend.SetShadow("black", tooltipShadowBlur)
	s.SetFillColor(s.styles.TooltipBackgroundColor)
	s.backend.FillRect(x, y, w, h)
	s.backend.SetShadow("", 0)

	for i, f := range fields {
		c := f.Color
		if c == "" {
			if i == 0 {
				c = s.styles.TooltipHeaderFontColor
			} else {
				c = s.styles.TooltipBodyFontColor
			}
		}
		s.SetFillColor(c)
		s.backend.FillText(f.Text, x+pad, y+float64(s.styles.BlockHeight)-s.blockPaddingTopBottom+lineHeight*float64(i))
	}
}
