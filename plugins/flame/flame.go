// Package flame implements the main flame chart plugin: one row per tree level, with nodes merged into clusters
// according to the current zoom.
package flame

import (
	"fmt"

	"honnef.co/go/flamechart/cluster"
	"honnef.co/go/flamechart/color"
	"honnef.co/go/flamechart/container"
	"honnef.co/go/flamechart/event"
	"honnef.co/go/flamechart/interact"
	"honnef.co/go/flamechart/plugins"
	"honnef.co/go/flamechart/render"
	"honnef.co/go/flamechart/tree"

	"gioui.org/f32"
	"go.uber.org/zap"
)

const (
	// minBlockWidth is the narrowest cluster, in pixels, that still gets drawn.
	minBlockWidth = 0.25
	selectedColor = "green"
)

type Options struct {
	// Colors maps node types to colors. Types without a color get one from a rotating palette.
	Colors map[string]string
	// Merge decides whether two neighboring nodes of a level may end up in the same cluster. It defaults to
	// cluster.SameColorAndType.
	Merge cluster.MergeFunc
}

// Plugin draws a forest of nodes as a flame chart.
type Plugin struct {
	// Select is emitted when the user selects a node, or with a nil node when the selection is cleared.
	Select event.Emitter[event.Selection]

	panel  *render.Panel
	input  *interact.Panel
	log    *zap.Logger
	scroll plugins.Scroller

	merge  cluster.MergeFunc
	colors *color.Resolver
	params cluster.Params

	flat     []*tree.FlatNode
	metas    []cluster.MetaCluster
	min, max float64

	// initial are the clusters of all data at the zoom clusteredAt. stale is set when they have to be computed
	// again regardless of the zoom.
	initial     []cluster.Cluster
	clusteredAt float64
	stale       bool
	// clusters are the clusters drawn by the last render. Hit regions refer to them by index.
	clusters []cluster.Cluster

	hovered  *tree.FlatNode
	selected *tree.FlatNode
}

var _ render.Bounder = (*Plugin)(nil)

// New returns a flame chart of nodes. It fails if a configured color doesn't parse or if nodes isn't a forest.
func New(nodes []*tree.Node, opts Options) (*Plugin, error) {
	colors, err := color.NewResolver(opts.Colors)
	if err != nil {
		return nil, err
	}
	p := &Plugin{
		merge:  opts.Merge,
		colors: colors,
		params: cluster.DefaultParams(),
		log:    zap.NewNop(),
	}
	if p.merge == nil {
		p.merge = cluster.SameColorAndType
	}
	if err := p.prepare(nodes); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plugin) prepare(nodes []*tree.Node) error {
	flat, err := tree.Flatten(nodes)
	if err != nil {
		return fmt.Errorf("couldn't flatten flame chart data: %w", err)
	}
	p.flat = flat
	p.min, p.max = tree.MinMax(flat)
	p.metas = cluster.MetaClusterize(flat, p.merge)
	p.initial, p.clusters = nil, nil
	p.stale = true
	p.hovered, p.selected = nil, nil
	p.log.Debug("flame chart data set", zap.Int("nodes", len(flat)), zap.Int("metaClusters", len(p.metas)))
	return nil
}

// SetData replaces the data and shows all of it.
func (p *Plugin) SetData(nodes []*tree.Node) error {
	if err := p.prepare(nodes); err != nil {
		return err
	}
	p.colors.Reset()
	p.scroll.PositionY = 0
	if p.panel != nil {
		p.panel.RecalcMinMax()
		p.panel.ResetParentView()
	}
	return nil
}

func (p *Plugin) Init(panel *render.Panel, input *interact.Panel) {
	p.panel, p.input = panel, input
	p.log = panel.Parent().Logger().Named("flame")
	p.scroll.Attach(panel, input)
	input.Hover.On(func(ev interact.MouseEvent) {
		p.hovered = p.nodeAt(ev.Region, ev.Mouse)
	})
	input.Select.On(p.handleSelect)
}

func (p *Plugin) Height() container.Option[int] { return container.None[int]() }

func (p *Plugin) Bounds() (float64, float64, bool) { return p.min, p.max, len(p.flat) > 0 }

// PositionY returns the vertical scroll offset in pixels.
func (p *Plugin) PositionY() float64 { return p.scroll.PositionY }

// SetPositionY scrolls vertically. Negative offsets are treated as zero.
func (p *Plugin) SetPositionY(y float64) { p.scroll.PositionY = max(y, 0) }

// Clusters returns the clusters drawn by the last render.
func (p *Plugin) Clusters() []cluster.Cluster { return p.clusters }

// Selected returns the selected node, or nil.
func (p *Plugin) Selected() *tree.Node {
	if p.selected == nil {
		return nil
	}
	return p.selected.Source
}

func (p *Plugin) rect(start, duration float64, level int) (x, y, w float64) {
	x = p.panel.TimeToPosition(start)
	w = duration * p.panel.Zoom()
	y = float64(level)*(p.panel.BlockHeight()+1) - p.scroll.PositionY
	return x, y, w
}

// nodeAt returns the node of the cluster region that contains mouse.
func (p *Plugin) nodeAt(region *interact.HitRegion, mouse f32.Point) *tree.FlatNode {
	if region == nil || region.Type != interact.RegionCluster {
		return nil
	}
	idx, ok := region.Data.(int)
	if !ok || idx >= len(p.clusters) {
		return nil
	}
	mx, my := float64(mouse.X), float64(mouse.Y)
	bh := p.panel.BlockHeight()
	for _, n := range p.clusters[idx].Nodes {
		x, y, w := p.rect(n.Source.Start, n.Source.Duration, n.Level)
		if mx >= x && mx <= x+w && my >= y && my <= y+bh {
			return n
		}
	}
	return nil
}

func (p *Plugin) handleSelect(ev interact.MouseEvent) {
	n := p.nodeAt(ev.Region, ev.Mouse)
	if n == p.selected {
		return
	}
	p.selected = n
	p.panel.Render()
	sel := event.Selection{Kind: event.KindFlameChartNode}
	if n != nil {
		sel.Node = n.Source
	}
	p.Select.Emit(sel)
}

func (p *Plugin) Render() render.RenderResult {
	zoom, pos := p.panel.Zoom(), p.panel.PositionX()
	if p.stale || zoom != p.clusteredAt {
		p.initial = cluster.Clusterize(p.metas, zoom, p.min, p.max, p.params)
		p.clusteredAt, p.stale = zoom, false
	}
	p.clusters = cluster.Reclusterize(p.initial, zoom, pos, pos+p.panel.RealView(), p.params)

	bh := p.panel.BlockHeight()
	width, height := float64(p.panel.Width()), float64(p.panel.Height())
	for i, c := range p.clusters {
		x, y, w := p.rect(c.Start, c.Duration, c.Level)
		if x+w <= 0 || x >= width || y+bh <= 0 || y >= height {
			continue
		}
		if w >= minBlockWidth {
			p.panel.AddRectToRenderQueue(p.colors.Resolve(c.Type, c.Color), x, y, w)
		}
		if w >= p.panel.MinTextWidth() && len(c.Nodes) == 1 {
			p.panel.AddTextToRenderQueue(c.Nodes[0].Source.Name, x, y, w)
		}
		p.input.AddHitRegion(interact.RegionCluster, i, x, y, w, bh, "")
	}

	if n := p.selected; n != nil {
		x, y, w := p.rect(n.Source.Start, n.Source.Duration, n.Level)
		p.panel.AddStrokeToRenderQueue(selectedColor, x, y, w, bh)
	}
	return render.Delegate
}

func (p *Plugin) RenderTooltip() bool {
	if p.hovered == nil {
		return false
	}
	n := p.hovered.Source
	return plugins.ShowTooltip(p.panel, p.input, n, func() []render.TooltipField {
		dur := "duration: " + plugins.FormatTime(p.panel, n.Duration)
		if len(n.Children) > 0 {
			self := n.Duration
			for _, child := range n.Children {
				self -= child.Duration
			}
			dur += " (self " + plugins.FormatTime(p.panel, self) + ")"
		}
		return []render.TooltipField{
			{Text: n.Name},
			{Text: dur},
			{Text: "start: " + plugins.FormatNumber(n.Start, p.panel.Accuracy()+2)},
		}
	})
}
