// Package plugins contains what the chart plugins in its subdirectories have in common: number formatting for
// tooltips, the tooltip protocol, and scrolling by dragging.
package plugins

import (
	"honnef.co/go/flamechart/interact"
	"honnef.co/go/flamechart/render"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var local = message.NewPrinter(language.English)

// FormatNumber formats v with exactly digits fraction digits and grouped thousands.
func FormatNumber(v float64, digits int) string {
	return local.Sprintf("%v", number.Decimal(v, number.Scale(max(digits, 0))))
}

// FormatTime formats a time or duration for tooltips. It uses two more decimals than the time grid labels.
func FormatTime(panel *render.Panel, v float64) string {
	return FormatNumber(v, panel.Accuracy()+2) + " " + panel.TimeUnits()
}

// ShowTooltip draws the tooltip for data, the hovered element of a plugin. Disabled tooltips draw nothing, a custom
// tooltip function gets the data, and otherwise fields are drawn next to the mouse. It reports whether the tooltip
// was handled, which is always the case.
func ShowTooltip(panel *render.Panel, input *interact.Panel, data any, fields func() []render.TooltipField) bool {
	canvas := panel.Parent()
	mouse := input.Parent().Mouse()
	switch {
	case !canvas.Options().Tooltips:
	case canvas.Tooltip() != nil:
		canvas.Tooltip()(data, mouse)
	default:
		canvas.RenderTooltipFromData(fields(), mouse)
	}
	return true
}

// Scroller scrolls a panel vertically and pans the canvas when the user drags the panel.
type Scroller struct {
	PositionY float64
}

// Attach makes the scroller follow drags that start over the panel.
func (s *Scroller) Attach(panel *render.Panel, input *interact.Panel) {
	input.ChangePosition.On(func(ev interact.PositionChange) {
		canvas := panel.Parent()
		startX, startY := canvas.PositionX(), s.PositionY
		input.SetCursor(interact.CursorGrabbing)
		s.PositionY = max(s.PositionY+ev.DeltaY, 0)
		panel.TryToChangePosition(ev.DeltaX)
		if canvas.PositionX() != startX || s.PositionY != startY {
			canvas.Render()
		}
	})
	// The drag may end outside of the panel.
	input.Parent().Up.On(func(interact.MouseEvent) { input.ClearCursor() })
}
