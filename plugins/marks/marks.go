// Package marks implements a panel of labeled timestamps. Every mark is a small labeled block in the panel and a
// dashed line across all panels below it.
package marks

import (
	"fmt"

	"honnef.co/go/flamechart/color"
	"honnef.co/go/flamechart/container"
	"honnef.co/go/flamechart/event"
	"honnef.co/go/flamechart/interact"
	"honnef.co/go/flamechart/plugins"
	"honnef.co/go/flamechart/render"

	"gioui.org/f32"
	"golang.org/x/exp/slices"
)

// alpha is the opacity marks are drawn with.
const alpha = 0.7

var dash = []float64{8, 7}

// Mark is a point in time with a label.
type Mark struct {
	ShortName string  `json:"shortName"`
	FullName  string  `json:"fullName"`
	Timestamp float64 `json:"timestamp"`
	Color     string  `json:"color"`
}

type Plugin struct {
	// Select is emitted when the user selects a mark, or with a nil mark when the selection is cleared.
	Select event.Emitter[event.Selection]

	panel *render.Panel
	input *interact.Panel

	marks    []Mark
	colors   []string
	// bounds are those of the last non-empty set of marks.
	min, max  float64
	hasBounds bool
	hovered  *Mark
	selected *Mark
}

var _ render.Bounder = (*Plugin)(nil)

// New returns a plugin showing marks. It fails if the color of a mark doesn't parse.
func New(marks []Mark) (*Plugin, error) {
	p := &Plugin{}
	if err := p.prepare(marks); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plugin) prepare(marks []Mark) error {
	sorted := slices.Clone(marks)
	slices.SortStableFunc(sorted, func(a, b Mark) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		default:
			return 0
		}
	})
	colors := make([]string, len(sorted))
	for i, m := range sorted {
		c, err := color.Resolve(m.Color, alpha)
		if err != nil {
			return fmt.Errorf("mark %q: %w", m.ShortName, err)
		}
		colors[i] = c
	}
	p.marks, p.colors = sorted, colors
	if len(sorted) > 0 {
		p.min, p.max = sorted[0].Timestamp, sorted[len(sorted)-1].Timestamp
		p.hasBounds = true
	}
	p.hovered, p.selected = nil, nil
	return nil
}

// SetMarks replaces the marks.
func (p *Plugin) SetMarks(marks []Mark) error {
	if err := p.prepare(marks); err != nil {
		return err
	}
	if p.panel != nil {
		p.panel.RecalcMinMax()
		p.panel.ResetParentView()
	}
	return nil
}

// Marks returns the marks ordered by time.
func (p *Plugin) Marks() []Mark { return p.marks }

func (p *Plugin) Init(panel *render.Panel, input *interact.Panel) {
	p.panel, p.input = panel, input
	input.Hover.On(func(ev interact.MouseEvent) { p.hovered = markOf(ev.Region) })
	input.Select.On(func(ev interact.MouseEvent) {
		m := markOf(ev.Region)
		switch {
		case m != nil:
			p.selected = m
		case p.selected != nil:
			p.selected = nil
		default:
			return
		}
		sel := event.Selection{Kind: event.KindTimestamp}
		if m != nil {
			sel.Node = m
		}
		p.Select.Emit(sel)
		p.panel.Render()
	})
}

func markOf(r *interact.HitRegion) *Mark {
	if r == nil || r.Type != interact.RegionTimestamp {
		return nil
	}
	m, _ := r.Data.(*Mark)
	return m
}

func (p *Plugin) Height() container.Option[int] {
	if p.panel == nil {
		return container.Some(render.DefaultStyles().BlockHeight + 1)
	}
	return container.Some(int(p.panel.BlockHeight()) + 1)
}

// Bounds returns the time of the first and last mark. Setting no marks keeps the bounds of the previous marks; a
// plugin that never had marks has no bounds.
func (p *Plugin) Bounds() (float64, float64, bool) {
	return p.min, p.max, p.hasBounds
}

// blockX returns where the block of a mark at x starts. Blocks on screen never overlap: they are pushed to the end
// of the previous block.
func blockX(x, prevEnd float64) float64 {
	if x > 0 && prevEnd > x {
		return prevEnd
	}
	return x
}

func (p *Plugin) Render() render.RenderResult {
	pad := p.panel.Styles().BlockPaddingLeftRight
	bh := p.panel.BlockHeight()
	prevEnd := 0.0
	for i := range p.marks {
		m := &p.marks[i]
		w := p.panel.MeasureText(m.ShortName) + pad*2
		x := blockX(p.panel.TimeToPosition(m.Timestamp), prevEnd)
		p.panel.AddRectToRenderQueue(p.colors[i], x, 0, w)
		p.panel.AddTextToRenderQueue(m.ShortName, x, 0, w)
		p.input.AddHitRegion(interact.RegionTimestamp, m, x, 0, w, bh, interact.CursorPointer)
		prevEnd = x + w
	}
	return render.Delegate
}

// PostRender draws the lines of the marks from the bottom of the panel to the bottom of the canvas.
func (p *Plugin) PostRender() {
	canvas := p.panel.Parent()
	top := float32(p.panel.Position() + p.panel.Height())
	bottom := float32(canvas.Height())
	canvas.SetLineDash(dash)
	for i, m := range p.marks {
		x := float32(p.panel.TimeToPosition(m.Timestamp))
		canvas.StrokePath(p.colors[i], []f32.Point{{X: x, Y: top}, {X: x, Y: bottom}})
	}
	canvas.SetLineDash(nil)
}

func (p *Plugin) RenderTooltip() bool {
	m := p.hovered
	if m == nil {
		return false
	}
	return plugins.ShowTooltip(p.panel, p.input, m, func() []render.TooltipField {
		return []render.TooltipField{
			{Text: m.FullName},
			{Text: plugins.FormatTime(p.panel, m.Timestamp)},
		}
	})
}
