// Package waterfall implements a waterfall panel: one row per item, with the intervals of an item drawn as blocks
// or lines, in the manner of a network timeline. Items that overlap in time are stacked.
package waterfall

import (
	"fmt"

	"honnef.co/go/flamechart/color"
	"honnef.co/go/flamechart/container"
	"honnef.co/go/flamechart/event"
	"honnef.co/go/flamechart/interact"
	"honnef.co/go/flamechart/plugins"
	"honnef.co/go/flamechart/render"
	"honnef.co/go/flamechart/slices"

	"gioui.org/f32"
	"go.uber.org/zap"
	xslices "golang.org/x/exp/slices"
)

const selectedColor = "green"

type Styles struct {
	DefaultHeight int `yaml:"defaultHeight"`
}

func DefaultStyles() Styles { return Styles{DefaultHeight: 68} }

// Plugin draws waterfall items.
type Plugin struct {
	// Select is emitted when the user selects an item, or with a nil item when the selection is cleared.
	Select event.Emitter[event.Selection]

	panel  *render.Panel
	input  *interact.Panel
	log    *zap.Logger
	scroll plugins.Scroller
	styles Styles

	data     Data
	entries  []entry
	index    *container.IntervalTree[float64, int]
	min, max float64

	// Scratch space for rendering.
	visible []int
	stack   []int
	lines   []span
	lineY   []float64

	hovered  *entry
	selected *entry
}

var _ render.Bounder = (*Plugin)(nil)

// New returns a waterfall of data. It fails if an item refers to unknown shared intervals or if an interval's color
// doesn't parse.
func New(data Data, styles Styles) (*Plugin, error) {
	p := &Plugin{styles: styles, log: zap.NewNop()}
	if err := p.prepare(data); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plugin) prepare(data Data) error {
	resolved, err := resolveColors(data)
	if err != nil {
		return err
	}
	entries, err := prepare(&resolved)
	if err != nil {
		return err
	}
	index := container.NewIntervalTree[float64, int]()
	p.min, p.max = 0, 0
	for i, e := range entries {
		index.Insert(e.min, e.max, i)
		if i == 0 || e.min < p.min {
			p.min = e.min
		}
		if i == 0 || e.max > p.max {
			p.max = e.max
		}
	}
	p.data, p.entries, p.index = resolved, entries, index
	p.hovered, p.selected = nil, nil
	p.log.Debug("waterfall data set", zap.Int("items", len(data.Items)), zap.Int("drawn", len(entries)))
	return nil
}

// resolveColors returns a copy of data whose interval colors are in canonical form.
func resolveColors(data Data) (Data, error) {
	canon := func(ivs []Interval) ([]Interval, error) {
		out := xslices.Clone(ivs)
		for i := range out {
			if out[i].Color == "" {
				continue
			}
			c, err := color.Resolve(out[i].Color)
			if err != nil {
				return nil, fmt.Errorf("interval %q: %w", out[i].Name, err)
			}
			out[i].Color = c
		}
		return out, nil
	}

	out := Data{Items: xslices.Clone(data.Items), Intervals: make(map[string][]Interval, len(data.Intervals))}
	for name, ivs := range data.Intervals {
		c, err := canon(ivs)
		if err != nil {
			return Data{}, err
		}
		out.Intervals[name] = c
	}
	for i := range out.Items {
		c, err := canon(out.Items[i].Intervals.List)
		if err != nil {
			return Data{}, fmt.Errorf("item %q: %w", out.Items[i].Name, err)
		}
		out.Items[i].Intervals.List = c
	}
	return out, nil
}

// SetData replaces the data and shows all of it.
func (p *Plugin) SetData(data Data) error {
	if err := p.prepare(data); err != nil {
		return err
	}
	p.scroll.PositionY = 0
	if p.panel != nil {
		p.panel.RecalcMinMax()
		p.panel.ResetParentView()
	}
	return nil
}

func (p *Plugin) Init(panel *render.Panel, input *interact.Panel) {
	p.panel, p.input = panel, input
	p.log = panel.Parent().Logger().Named("waterfall")
	p.scroll.Attach(panel, input)
	input.Hover.On(func(ev interact.MouseEvent) { p.hovered = p.entryOf(ev.Region) })
	input.Select.On(func(ev interact.MouseEvent) {
		e := p.entryOf(ev.Region)
		if e == p.selected {
			return
		}
		p.selected = e
		p.panel.Render()
		sel := event.Selection{Kind: event.KindWaterfallNode}
		if e != nil {
			sel.Node = &p.data.Items[e.index]
		}
		p.Select.Emit(sel)
	})
}

func (p *Plugin) entryOf(r *interact.HitRegion) *entry {
	if r == nil || r.Type != interact.RegionWaterfallNode {
		return nil
	}
	idx, ok := r.Data.(int)
	if !ok || idx >= len(p.entries) {
		return nil
	}
	return &p.entries[idx]
}

func (p *Plugin) Height() container.Option[int] { return container.Some(p.styles.DefaultHeight) }

func (p *Plugin) Bounds() (float64, float64, bool) { return p.min, p.max, len(p.entries) > 0 }

func (p *Plugin) PositionY() float64     { return p.scroll.PositionY }
func (p *Plugin) SetPositionY(y float64) { p.scroll.PositionY = max(y, 0) }

// Selected returns the selected item, or nil.
func (p *Plugin) Selected() *Item {
	if p.selected == nil {
		return nil
	}
	return &p.data.Items[p.selected.index]
}

func (p *Plugin) SetStyles(styles Styles) { p.styles = styles }

// lastWidth shrinks the width of an item's last interval so that it doesn't touch what follows it.
func lastWidth(w float64) float64 {
	switch {
	case w <= 0.1:
		return 0.1
	case w >= 3:
		return w - 1
	default:
		return w - w/3
	}
}

func (p *Plugin) Render() render.RenderResult {
	pos := p.panel.PositionX()
	zoom := p.panel.Zoom()
	bh := p.panel.BlockHeight()
	height := float64(p.panel.Height())

	p.visible = p.index.Values(pos, pos+p.panel.RealView(), p.visible[:0])
	xslices.Sort(p.visible)
	p.stack = p.stack[:0]
	p.lines, p.lineY = p.lines[:0], p.lineY[:0]

	for _, idx := range p.visible {
		e := &p.entries[idx]
		for len(p.stack) > 0 && e.min-p.entries[slices.Last(p.stack)].max > 0 {
			_, p.stack, _ = slices.Pop(p.stack)
		}
		level := len(p.stack)
		p.stack = append(p.stack, idx)

		y := float64(level)*(bh+1) - p.scroll.PositionY
		if y+bh+1 < 0 || y-(bh+1) > height {
			continue
		}

		if e.hasText {
			p.panel.AddTextToRenderQueue(e.item.Name, p.panel.TimeToPosition(e.textMin), y, (e.textMax-e.textMin)*zoom)
		}

		var x, w float64
		for i, s := range e.spans {
			sx := p.panel.TimeToPosition(s.start)
			sw := (s.end - s.start) * zoom
			if i == len(e.spans)-1 {
				sw = lastWidth(sw)
			}
			if i == 0 {
				x = sx
			}
			w += sw
			if s.Type == Line {
				p.lines = append(p.lines, span{Interval: s.Interval, start: sx, end: sx + sw})
				p.lineY = append(p.lineY, y+bh/2)
			} else {
				p.panel.AddRectToRenderQueue(s.Color, sx, y, sw)
			}
		}

		if e == p.selected {
			p.panel.AddStrokeToRenderQueue(selectedColor, x, y, w, bh)
		}
		p.input.AddHitRegion(interact.RegionWaterfallNode, idx, x, y, w, bh, interact.CursorPointer)
	}

	p.panel.StandardRender()
	// Lines go on top of blocks.
	for i, l := range p.lines {
		y := float32(p.lineY[i])
		p.panel.StrokePath(l.Color, []f32.Point{{X: float32(l.start), Y: y}, {X: float32(l.end), Y: y}})
	}
	return render.Handled
}

func (p *Plugin) RenderTooltip() bool {
	e := p.hovered
	if e == nil {
		return false
	}
	it := &p.data.Items[e.index]
	return plugins.ShowTooltip(p.panel, p.input, it, func() []render.TooltipField {
		header := p.panel.Styles().TooltipHeaderFontColor
		fields := []render.TooltipField{{Text: it.Name}, {Text: "intervals", Color: header}}
		for _, s := range e.spans {
			fields = append(fields, render.TooltipField{Text: s.Name + ": " + plugins.FormatTime(p.panel, s.end-s.start)})
		}

		fields = append(fields, render.TooltipField{Text: "timing", Color: header})
		for _, t := range sortedTiming(it.Timing) {
			fields = append(fields, render.TooltipField{Text: t.name + ": " + plugins.FormatNumber(t.time, p.panel.Accuracy()+2)})
		}

		if len(it.Meta) > 0 {
			fields = append(fields, render.TooltipField{Text: "meta", Color: header})
			for _, m := range it.Meta {
				fields = append(fields, render.TooltipField{Text: m.Name + ": " + m.Value, Color: m.Color})
			}
		}
		return fields
	})
}

type timing struct {
	name string
	time float64
}

// sortedTiming returns the timings ordered by time, then name.
func sortedTiming(m map[string]float64) []timing {
	out := make([]timing, 0, len(m))
	for name, t := range m {
		out = append(out, timing{name, t})
	}
	xslices.SortFunc(out, func(a, b timing) int {
		switch {
		case a.time < b.time:
			return -1
		case a.time > b.time:
			return 1
		case a.name < b.name:
			return -1
		case a.name > b.name:
			return 1
		default:
			return 0
		}
	})
	return out
}
