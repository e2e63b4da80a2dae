package cluster

import (
	"fmt"

	"honnef.co/go/flamechart/tree"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// NodeEnv is what a merge condition sees of a node.
type NodeEnv struct {
	Name     string  `expr:"name"`
	Type     string  `expr:"type"`
	Color    string  `expr:"color"`
	Start    float64 `expr:"start"`
	Duration float64 `expr:"duration"`
	End      float64 `expr:"end"`
	Level    int     `expr:"level"`
}

type conditionEnv struct {
	Prev NodeEnv `expr:"prev"`
	Node NodeEnv `expr:"node"`
}

func nodeEnv(n *tree.FlatNode) NodeEnv {
	return NodeEnv{
		Name:     n.Source.Name,
		Type:     n.Source.Type,
		Color:    n.Source.Color,
		Start:    n.Source.Start,
		Duration: n.Source.Duration,
		End:      n.End,
		Level:    n.Level,
	}
}

// CompileCondition compiles a boolean expr-lang expression over prev and node into a MergeFunc, for example
//
//	prev.type == node.type && node.start - prev.end < 5
//
// An empty source yields SameColorAndType.
func CompileCondition(src string) (MergeFunc, error) {
	if src == "" {
		return SameColorAndType, nil
	}
	prg, err := expr.Compile(src, expr.Env(conditionEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling merge condition %q: %w", src, err)
	}

	var machine vm.VM
	return func(prev, node *tree.FlatNode) bool {
		out, err := machine.Run(prg, conditionEnv{Prev: nodeEnv(prev), Node: nodeEnv(node)})
		if err != nil {
			// The program was type checked against conditionEnv and can only fail on runtime errors such as
			// division by zero; treat those as "don't merge".
			return false
		}
		return out.(bool)
	}, nil
}
