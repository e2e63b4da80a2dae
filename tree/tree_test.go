package tree

import (
	"errors"
	"math/rand"
	"testing"
)

func TestFlattenNested(t *testing.T) {
	forest := []*Node{{
		Name: "a", Start: 0, Duration: 10,
		Children: []*Node{{Name: "b", Start: 2, Duration: 3}},
	}}
	flat, err := Flatten(forest)
	if err != nil {
		t.Fatal(err)
	}
	if len(flat) != 2 {
		t.Fatalf("len(flat)=%d, want 2", len(flat))
	}

	a, b := flat[0], flat[1]
	if a.Source.Name != "a" || a.Level != 0 || a.Source.Start != 0 || a.End != 10 {
		t.Errorf("a=%v, want a@0[0, 10)", a)
	}
	if b.Source.Name != "b" || b.Level != 1 || b.Source.Start != 2 || b.End != 5 {
		t.Errorf("b=%v, want b@1[2, 5)", b)
	}
	if b.Parent != a {
		t.Errorf("b.Parent=%v, want the wrapped a", b.Parent)
	}

	min, max := MinMax(flat)
	if min != 0 || max != 10 {
		t.Errorf("MinMax=(%g, %g), want (0, 10)", min, max)
	}
}

func TestFlattenEmpty(t *testing.T) {
	flat, err := Flatten(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(flat) != 0 {
		t.Errorf("len(flat)=%d, want 0", len(flat))
	}
	if min, max := MinMax(flat); min != 0 || max != 0 {
		t.Errorf("MinMax(empty)=(%g, %g), want (0, 0)", min, max)
	}
}

func TestFlattenMinMaxCoversAllLevels(t *testing.T) {
	forest := []*Node{
		{Name: "root", Start: 5, Duration: 1, Children: []*Node{
			{Name: "early", Start: 1, Duration: 1},
			{Name: "late", Start: 6, Duration: 20},
		}},
	}
	flat, _ := Flatten(forest)
	if min, max := MinMax(flat); min != 1 || max != 26 {
		t.Errorf("MinMax=(%g, %g), want (1, 26)", min, max)
	}
}

func TestFlattenCycle(t *testing.T) {
	a := &Node{Name: "a", Duration: 1}
	b := &Node{Name: "b", Duration: 1}
	a.Children = []*Node{b}
	b.Children = []*Node{a}

	_, err := Flatten([]*Node{a})
	var cerr *CyclicTreeError
	if !errors.As(err, &cerr) {
		t.Fatalf("err=%v, want *CyclicTreeError", err)
	}
	if cerr.Name != "a" || cerr.Depth != 2 {
		t.Errorf("err=%+v, want node a at depth 2", cerr)
	}
}

func TestFlattenSharedSubtreeIsNotACycle(t *testing.T) {
	shared := &Node{Name: "shared", Start: 1, Duration: 1}
	forest := []*Node{
		{Name: "x", Start: 0, Duration: 5, Children: []*Node{shared}},
		{Name: "y", Start: 5, Duration: 5, Children: []*Node{shared}},
	}
	flat, err := Flatten(forest)
	if err != nil {
		t.Fatal(err)
	}
	if len(flat) != 4 {
		t.Errorf("len(flat)=%d, want 4", len(flat))
	}
}

func randomForest(r *rand.Rand, depth int, start, end float64) []*Node {
	if depth == 0 || end-start < 1 {
		return nil
	}
	var out []*Node
	t := start
	for t < end {
		d := r.Float64() * (end - t)
		n := &Node{Name: "n", Start: t, Duration: d, Type: []string{"a", "b"}[r.Intn(2)]}
		n.Children = randomForest(r, depth-1, t, t+d)
		out = append(out, n)
		t += d + r.Float64()*5
	}
	// Shuffle so that Flatten has to sort.
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func TestFlattenOrdering(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		flat, err := Flatten(randomForest(r, 5, 0, 1000))
		if err != nil {
			t.Fatal(err)
		}
		for j := 1; j < len(flat); j++ {
			a, b := flat[j-1], flat[j]
			if a.Level > b.Level || (a.Level == b.Level && a.Source.Start > b.Source.Start) {
				t.Fatalf("flat[%d]=%v sorts after flat[%d]=%v", j-1, a, j, b)
			}
		}
	}
}

var SinkFlat []*FlatNode

func BenchmarkFlatten(b *testing.B) {
	forest := randomForest(rand.New(rand.NewSource(1)), 6, 0, 100000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SinkFlat, _ = Flatten(forest)
	}
}
