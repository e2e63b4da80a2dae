// Package event provides the typed observer used by every stateful component of the chart.
package event

// Emitter delivers values of type E to its subscribers, in subscription order. The zero value is ready to use.
//
// Emitters are not safe for concurrent use; a chart is owned by a single goroutine.
type Emitter[E any] struct {
	handlers []handler[E]
	nextID   uint64
}

type handler[E any] struct {
	id uint64
	fn func(E)
}

// On subscribes fn and returns a function that removes the subscription again.
func (em *Emitter[E]) On(fn func(E)) (off func()) {
	em.nextID++
	id := em.nextID
	em.handlers = append(em.handlers, handler[E]{id: id, fn: fn})
	return func() {
		for i, h := range em.handlers {
			if h.id == id {
				// Copy instead of modifying in place so that an Emit that is currently iterating over the old
				// slice isn't affected.
				hs := make([]handler[E], 0, len(em.handlers)-1)
				hs = append(hs, em.handlers[:i]...)
				hs = append(hs, em.handlers[i+1:]...)
				em.handlers = hs
				return
			}
		}
	}
}

// Emit calls all subscribers with e. Subscribers added during Emit are not called until the next Emit.
func (em *Emitter[E]) Emit(e E) {
	for _, h := range em.handlers {
		h.fn(e)
	}
}

// Len returns the number of subscribers.
func (em *Emitter[E]) Len() int { return len(em.handlers) }

// Kind identifies what sort of element a Selection refers to.
type Kind string

const (
	KindFlameChartNode Kind = "flame-chart-node"
	KindWaterfallNode  Kind = "waterfall-node"
	KindTimestamp      Kind = "timestamp"
)

// Selection is emitted when the user clicks a drawable element. Node is nil when a previous selection was cleared.
type Selection struct {
	Node any
	Kind Kind
}
