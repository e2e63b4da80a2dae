// Package tree flattens a forest of timed nodes into the level- and time-ordered list that clustering operates on.
package tree

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Node is one timed event of the input forest. Start and Duration are absolute; children don't inherit time
// bounds from their parent.
type Node struct {
	Name     string  `json:"name"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Type     string  `json:"type,omitempty"`
	Color    string  `json:"color,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// End returns Start+Duration.
func (n *Node) End() float64 { return n.Start + n.Duration }

// FlatNode wraps a Node with its position in the forest.
type FlatNode struct {
	Source *Node
	End    float64
	// Parent is the wrapped parent, or nil for roots.
	Parent *FlatNode
	// Level is the depth, 0 for roots.
	Level int
	// Index is the pre-order position before sorting.
	Index int
}

func (n *FlatNode) String() string {
	return fmt.Sprintf("%s@%d[%g, %g)", n.Source.Name, n.Level, n.Source.Start, n.End)
}

// CyclicTreeError is returned by Flatten when a node is its own ancestor.
type CyclicTreeError struct {
	// Name of the node that was reached again.
	Name string
	// Depth at which the cycle was detected.
	Depth int
}

func (err *CyclicTreeError) Error() string {
	return fmt.Sprintf("cyclic tree: node %q is its own ancestor (depth %d)", err.Name, err.Depth)
}

// Flatten walks the forest depth-first and returns all nodes sorted by (Level, Start). Nodes with equal keys keep
// their pre-order. Flatten fails with a *CyclicTreeError if a node appears among its own ancestors; the same node
// appearing in disjoint subtrees is allowed.
func Flatten(forest []*Node) ([]*FlatNode, error) {
	var out []*FlatNode
	onPath := map[*Node]struct{}{}

	var walk func(nodes []*Node, parent *FlatNode, level int) error
	walk = func(nodes []*Node, parent *FlatNode, level int) error {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if _, ok := onPath[n]; ok {
				return &CyclicTreeError{Name: n.Name, Depth: level}
			}
			fn := &FlatNode{
				Source: n,
				End:    n.End(),
				Parent: parent,
				Level:  level,
				Index:  len(out),
			}
			out = append(out, fn)

			if len(n.Children) > 0 {
				onPath[n] = struct{}{}
				if err := walk(n.Children, fn, level+1); err != nil {
					return err
				}
				delete(onPath, n)
			}
		}
		return nil
	}

	if err := walk(forest, nil, 0); err != nil {
		return nil, err
	}

	slices.SortStableFunc(out, func(a, b *FlatNode) int {
		if a.Level != b.Level {
			return a.Level - b.Level
		}
		switch {
		case a.Source.Start < b.Source.Start:
			return -1
		case a.Source.Start > b.Source.Start:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

// MinMax returns the smallest start and the largest end over all nodes. It returns (0, 0) for an empty list.
func MinMax(nodes []*FlatNode) (min, max float64) {
	for i, n := range nodes {
		if i == 0 || n.Source.Start < min {
			min = n.Source.Start
		}
		if i == 0 || n.End > max {
			max = n.End
		}
	}
	return min, max
}
