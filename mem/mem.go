// Package mem provides storage that is cleared and refilled every frame without reallocating.
package mem

const bucketSize = 64

// BucketSlice is like a slice, but grows one bucket at a time, instead of growing exponentially. Pointers to
// elements stay valid until the slice is reset, because existing buckets are never moved.
type BucketSlice[T any] struct {
	n       int
	buckets [][]T
}

// Grow grows the slice by one and returns a pointer to the new element. The element is zeroed.
func (l *BucketSlice[T]) Grow() *T {
	a, _ := l.index(l.n)
	if a >= len(l.buckets) {
		l.buckets = append(l.buckets, make([]T, 0, bucketSize))
	}
	l.buckets[a] = l.buckets[a][:len(l.buckets[a])+1]
	ptr := &l.buckets[a][len(l.buckets[a])-1]
	var zero T
	*ptr = zero
	l.n++
	return ptr
}

// Append appends v to the slice and returns a pointer to the new element.
func (l *BucketSlice[T]) Append(v T) *T {
	ptr := l.Grow()
	*ptr = v
	return ptr
}

func (l *BucketSlice[T]) index(i int) (int, int) {
	return int(uint(i) / bucketSize), int(uint(i) % bucketSize)
}

func (l *BucketSlice[T]) Ptr(i int) *T {
	a, b := l.index(i)
	return &l.buckets[a][b]
}

func (l *BucketSlice[T]) Get(i int) T {
	a, b := l.index(i)
	return l.buckets[a][b]
}

func (l *BucketSlice[T]) Len() int { return l.n }

// Reset empties the slice but keeps its buckets for reuse.
func (l *BucketSlice[T]) Reset() {
	for i := range l.buckets {
		l.buckets[i] = l.buckets[i][:0]
	}
	l.n = 0
}

// Ref refers to an element of an Arena in a specific generation.
type Ref struct {
	gen   uint32
	index int32
}

// NoRef is a Ref that never resolves.
var NoRef = Ref{index: -1}

// Valid reports whether r was ever handed out. A valid Ref may still be stale.
func (r Ref) Valid() bool { return r.index >= 0 && r.gen != 0 }

// Arena is a BucketSlice that tracks generations. Every Reset starts a new generation and invalidates all Refs
// handed out before it, which lets consumers hold on to an element across frames and detect cheaply that the
// frame it belonged to is gone.
type Arena[T any] struct {
	items BucketSlice[T]
	// gen starts at 1 so that the zero Ref is never valid.
	gen uint32
}

// Generation returns the current generation.
func (a *Arena[T]) Generation() uint32 {
	if a.gen == 0 {
		a.gen = 1
	}
	return a.gen
}

// Add appends v and returns a reference to it.
func (a *Arena[T]) Add(v T) Ref {
	gen := a.Generation()
	idx := a.items.Len()
	a.items.Append(v)
	return Ref{gen: gen, index: int32(idx)}
}

// Resolve returns a pointer to the element referenced by r, or nil if r belongs to an older generation. The
// pointer must not be retained past the next Reset.
func (a *Arena[T]) Resolve(r Ref) *T {
	if !r.Valid() || r.gen != a.gen || int(r.index) >= a.items.Len() {
		return nil
	}
	return a.items.Ptr(int(r.index))
}

// Reset removes all elements and moves to the next generation.
func (a *Arena[T]) Reset() {
	a.items.Reset()
	a.gen = a.Generation() + 1
	if a.gen == 0 {
		// Skip the zero generation on wrap-around.
		a.gen = 1
	}
}

func (a *Arena[T]) Len() int { return a.items.Len() }

// Find returns the first element, in insertion order, for which fn returns true.
func (a *Arena[T]) Find(fn func(*T) bool) (Ref, *T) {
	for i := 0; i < a.items.Len(); i++ {
		if ptr := a.items.Ptr(i); fn(ptr) {
			return Ref{gen: a.gen, index: int32(i)}, ptr
		}
	}
	return NoRef, nil
}

// GrowLen increases the slice's length by n elements.
func GrowLen[S ~[]E, E any](s S, n int) S {
	return append(s, make([]E, n)...)
}

// EnsureLen makes sure that s has at least n elements.
func EnsureLen[S ~[]E, E any](s S, n int) S {
	if len(s) >= n {
		return s
	}
	return GrowLen(s, n-len(s))
}
