// Package cluster merges flat-tree nodes that are indistinguishable at the current zoom into drawable blocks.
//
// Clustering happens in three steps. MetaClusterize groups adjacent nodes of a level that look the same; it only
// depends on the data. Clusterize splits meta-clusters into screen-space runs for a zoom level and time window.
// Reclusterize refines an existing, coarser clustering for a new window and zoom, which is what runs every frame.
package cluster

import (
	"honnef.co/go/flamechart/slices"
	"honnef.co/go/flamechart/tree"
)

const (
	// StickDistance is the default maximum gap, in pixels, between two nodes that may still be merged.
	StickDistance = 0.25
	// MinBlockSize is the default width, in pixels, below which a node may be merged with its neighbours.
	MinBlockSize = 1.0
	// MinClusterSize is the width in pixels at or below which Reclusterize doesn't try to split a cluster.
	MinClusterSize = MinBlockSize*2 + StickDistance
)

// Params controls the geometric merge in Clusterize.
type Params struct {
	StickDistance float64
	MinBlockSize  float64
}

// DefaultParams returns the default merge parameters.
func DefaultParams() Params {
	return Params{StickDistance: StickDistance, MinBlockSize: MinBlockSize}
}

// MergeFunc reports whether node may join the meta-cluster that prev is the last node of. Both nodes are on the
// same level.
type MergeFunc func(prev, node *tree.FlatNode) bool

// SameColorAndType is the default MergeFunc.
func SameColorAndType(prev, node *tree.FlatNode) bool {
	return prev.Source.Color == node.Source.Color && prev.Source.Type == node.Source.Type
}

// Always merges all nodes of a level.
func Always(prev, node *tree.FlatNode) bool { return true }

// MetaCluster is a maximal run of same-level nodes that canMerge accepted pairwise.
type MetaCluster struct {
	Nodes []*tree.FlatNode
}

// Cluster is a contiguous run of a meta-cluster's nodes that are merged at a specific zoom.
type Cluster struct {
	Start    float64
	End      float64
	Duration float64
	Type     string
	Color    string
	Level    int
	Nodes    []*tree.FlatNode
}

// MetaClusterize groups flat, which must be sorted by (Level, Start), into meta-clusters. A nil canMerge means
// SameColorAndType. Every input node ends up in exactly one meta-cluster, in input order.
func MetaClusterize(flat []*tree.FlatNode, canMerge MergeFunc) []MetaCluster {
	if canMerge == nil {
		canMerge = SameColorAndType
	}

	var out []MetaCluster
	for _, node := range flat {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if prev, ok := slices.Peek(last.Nodes); ok && prev.Level == node.Level && canMerge(prev, node) {
				last.Nodes = append(last.Nodes, node)
				continue
			}
		}
		out = append(out, MetaCluster{Nodes: []*tree.FlatNode{node}})
	}

	// Drop empty meta-clusters. The loop above never produces any, but MetaCluster values may be constructed
	// by hand.
	filtered := out[:0]
	for _, mc := range out {
		if len(mc.Nodes) > 0 {
			filtered = append(filtered, mc)
		}
	}
	return filtered
}

// visible reports whether [start, end) should be considered inside the window (wstart, wend). It accepts
// overlap, or strict containment.
func visible(start, end, wstart, wend float64) bool {
	return (start < wend && end > wstart) || (start > wstart && end < wend)
}

// Clusterize merges the nodes of each meta-cluster that are visible in the window [start, end] into clusters
// for the given zoom (pixels per time unit). Two consecutive visible nodes merge iff the gap between them is
// smaller than p.StickDistance pixels and both are narrower than p.MinBlockSize pixels. Clusters never span
// meta-clusters.
func Clusterize(metas []MetaCluster, zoom, start, end float64, p Params) []Cluster {
	var out []Cluster
	for _, mc := range metas {
		var (
			open []*tree.FlatNode
			prev *tree.FlatNode
		)
		flush := func() {
			if len(open) > 0 {
				out = append(out, newCluster(open))
			}
		}

		for _, node := range mc.Nodes {
			src := node.Source
			if !visible(src.Start, node.End, start, end) {
				continue
			}

			switch {
			case open != nil && prev == nil:
				// The first visible node of a meta-cluster fills the open cluster without a merge test.
				open = append(open, node)
			case open != nil &&
				(src.Start-(prev.Source.Start+prev.Source.Duration))*zoom < p.StickDistance &&
				src.Duration*zoom < p.MinBlockSize &&
				prev.Source.Duration*zoom < p.MinBlockSize:
				open = append(open, node)
			default:
				flush()
				open = []*tree.FlatNode{node}
			}
			prev = node
		}
		flush()
	}
	return out
}

func newCluster(nodes []*tree.FlatNode) Cluster {
	first := nodes[0]
	last := slices.Last(nodes)
	duration := last.Source.Start + last.Source.Duration - first.Source.Start
	return Cluster{
		Start:    first.Source.Start,
		End:      first.Source.Start + duration,
		Duration: duration,
		Type:     first.Source.Type,
		Color:    first.Source.Color,
		Level:    first.Level,
		Nodes:    nodes,
	}
}

// Reclusterize refines clusters for a new zoom and window. Clusters outside the window are dropped. Clusters
// whose width is at most MinClusterSize pixels are kept as they are, independent of p. All other clusters are
// clusterized again from their own nodes.
func Reclusterize(clusters []Cluster, zoom, start, end float64, p Params) []Cluster {
	out := make([]Cluster, 0, len(clusters))
	var single [1]MetaCluster
	for _, c := range clusters {
		if !visible(c.Start, c.End, start, end) {
			continue
		}
		if c.Duration*zoom <= MinClusterSize {
			out = append(out, c)
			continue
		}
		single[0] = MetaCluster{Nodes: c.Nodes}
		out = append(out, Clusterize(single[:], zoom, start, end, p)...)
	}
	return out
}
