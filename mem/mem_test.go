package mem

import "testing"

func TestBucketSliceAcrossBuckets(t *testing.T) {
	var l BucketSlice[int]
	first := l.Append(-1)
	for i := 0; i < bucketSize*3; i++ {
		l.Append(i)
	}
	if *first != -1 {
		t.Errorf("first element moved: got %d, want -1", *first)
	}
	if l.Len() != bucketSize*3+1 {
		t.Errorf("Len()=%d, want %d", l.Len(), bucketSize*3+1)
	}
	if got := l.Get(bucketSize + 1); got != bucketSize {
		t.Errorf("Get(%d)=%d, want %d", bucketSize+1, got, bucketSize)
	}

	l.Reset()
	if l.Len() != 0 {
		t.Errorf("Len() after Reset=%d, want 0", l.Len())
	}
	if p := l.Grow(); *p != 0 {
		t.Errorf("Grow returned non-zero element %d", *p)
	}
}

func TestArenaGenerations(t *testing.T) {
	var a Arena[string]
	r1 := a.Add("a")
	r2 := a.Add("b")
	if got := a.Resolve(r2); got == nil || *got != "b" {
		t.Fatalf("Resolve(r2)=%v, want b", got)
	}

	gen := a.Generation()
	a.Reset()
	if a.Generation() != gen+1 {
		t.Errorf("Generation()=%d, want %d", a.Generation(), gen+1)
	}
	if got := a.Resolve(r1); got != nil {
		t.Errorf("stale ref resolved to %q", *got)
	}

	r3 := a.Add("c")
	if r3 == r1 {
		t.Errorf("new ref equals stale ref")
	}
	if got := a.Resolve(r3); got == nil || *got != "c" {
		t.Errorf("Resolve(r3)=%v, want c", got)
	}

	var zero Ref
	if a.Resolve(zero) != nil || a.Resolve(NoRef) != nil {
		t.Errorf("zero or NoRef resolved")
	}
}

func TestArenaFind(t *testing.T) {
	var a Arena[int]
	for i := 0; i < 10; i++ {
		a.Add(i)
	}
	ref, v := a.Find(func(v *int) bool { return *v >= 7 })
	if v == nil || *v != 7 {
		t.Fatalf("Find returned %v, want 7", v)
	}
	if p := a.Resolve(ref); p != v {
		t.Errorf("Resolve(Find ref) differs from Find pointer")
	}
	if _, v := a.Find(func(v *int) bool { return *v > 100 }); v != nil {
		t.Errorf("Find found %d, want nothing", *v)
	}
}

var SinkRef Ref

func BenchmarkArenaRefill(b *testing.B) {
	var a Arena[[4]float64]
	for i := 0; i < b.N; i++ {
		a.Reset()
		for j := 0; j < 1000; j++ {
			SinkRef = a.Add([4]float64{float64(j), 0, 1, 1})
		}
	}
}
