// Package tinylfu is an implementation of the TinyLFU caching algorithm
/*
   http://arxiv.org/abs/1512.00727
*/
package tinylfu

import (
	"hash/maphash"

	"honnef.co/go/flamechart/tinylfu/internal/list"
)

// T is a W-TinyLFU cache: a small LRU window in front of a segmented LRU, with admission to the latter decided by
// approximate access frequencies. It is not safe for concurrent access.
type T[K comparable, V any] struct {
	c       *cm4
	bouncer *doorkeeper
	w       int
	samples int
	lru     *lruCache[K, V]
	slru    *slruCache[K, V]
	data    map[K]*list.Element[*slruItem[K, V]]
	seed    maphash.Seed
}

// New returns a cache holding up to size entries. Frequencies are halved every samples accesses.
func New[K comparable, V any](size int, samples int) *T[K, V] {

	const lruPct = 1

	lruSize := max((lruPct*size)/100, 1)
	slruSize := max(size-lruSize, 1)
	slru20 := max(slruSize/5, 1)

	data := make(map[K]*list.Element[*slruItem[K, V]], size)

	return &T[K, V]{
		c:       newCM4(size),
		w:       0,
		samples: samples,
		bouncer: newDoorkeeper(samples, 0.01),

		data: data,

		lru:  newLRU(lruSize, data),
		slru: newSLRU(slru20, slruSize-slru20, data),

		seed: maphash.MakeSeed(),
	}
}

func (t *T[K, V]) hash(key K) uint64 { return maphash.Comparable(t.seed, key) }

// Len returns the number of cached entries.
func (t *T[K, V]) Len() int { return len(t.data) }

func (t *T[K, V]) Get(key K) (V, bool) {

	t.w++
	if t.w == t.samples {
		t.c.reset()
		t.bouncer.reset()
		t.w = 0
	}

	val, ok := t.data[key]
	if !ok {
		t.c.add(t.hash(key))
		return *new(V), false
	}

	item := val.Value

	t.c.add(item.keyh)

	v := item.value
	if item.listid == 0 {
		t.lru.get(val)
	} else {
		t.slru.get(val)
	}

	return v, true
}

func (t *T[K, V]) Add(key K, val V) {

	if e, ok := t.data[key]; ok {
		// Key is already in our cache.
		// `Add` will act as a `Get` for list movements
		item := e.Value
		item.value = val
		t.c.add(item.keyh)

		if item.listid == 0 {
			t.lru.get(e)
		} else {
			t.slru.get(e)
		}
		return
	}

	newitem := slruItem[K, V]{0, key, val, t.hash(key)}

	oitem, evicted := t.lru.add(newitem)
	if !evicted {
		return
	}

	// estimate count of what will be evicted from slru
	victim := t.slru.victim()
	if victim == nil {
		t.slru.add(oitem)
		return
	}

	if !t.bouncer.allow(oitem.keyh) {
		return
	}

	vcount := t.c.estimate(victim.keyh)
	ocount := t.c.estimate(oitem.keyh)

	if ocount < vcount {
		return
	}

	t.slru.add(oitem)
}
