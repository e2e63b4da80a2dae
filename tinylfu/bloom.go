package tinylfu

import "math"

// doorkeeper is a bloom filter that keeps items seen only once from entering the main cache.
type doorkeeper struct {
	bits  []uint64
	mask  uint32
	count uint32
}

// newDoorkeeper returns a filter sized for capacity items at the false positive rate fpRate.
func newDoorkeeper(capacity int, fpRate float64) *doorkeeper {
	capacity = max(capacity, 1)
	ln2 := math.Ln2
	m := -float64(capacity) * math.Log(fpRate) / (ln2 * ln2)
	n := nextPowerOfTwo(uint32(max(m, 64)))
	k := max(uint32(math.Round(ln2*m/float64(capacity))), 1)
	return &doorkeeper{
		bits:  make([]uint64, n/64),
		mask:  n - 1,
		count: k,
	}
}

// allow reports whether h has been seen before, and records it as seen.
func (d *doorkeeper) allow(h uint64) bool {
	h1, h2 := uint32(h), uint32(h>>32)
	seen := true
	for i := range d.count {
		bit := (h1 + i*h2) & d.mask
		w, b := bit/64, uint64(1)<<(bit%64)
		if d.bits[w]&b == 0 {
			seen = false
			d.bits[w] |= b
		}
	}
	return seen
}

func (d *doorkeeper) reset() {
	clear(d.bits)
}
