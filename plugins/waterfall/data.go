package waterfall

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"golang.org/x/exp/slices"
)

// Bound is the start or end of an interval: either a time, or the name of an entry in the item's timing map.
type Bound struct {
	Timing string
	Time   float64
}

func At(t float64) Bound          { return Bound{Time: t} }
func FromTiming(key string) Bound { return Bound{Timing: key} }

func (b Bound) resolve(timing map[string]float64) (float64, bool) {
	if b.Timing == "" {
		return b.Time, true
	}
	t, ok := timing[b.Timing]
	return t, ok
}

func (b *Bound) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		*b = Bound{}
		return json.Unmarshal(data, &b.Timing)
	}
	*b = Bound{}
	return json.Unmarshal(data, &b.Time)
}

func (b Bound) MarshalJSON() ([]byte, error) {
	if b.Timing != "" {
		return json.Marshal(b.Timing)
	}
	return json.Marshal(b.Time)
}

type IntervalType string

const (
	Block IntervalType = "block"
	Line  IntervalType = "line"
)

type Interval struct {
	Name  string       `json:"name"`
	Color string       `json:"color"`
	Type  IntervalType `json:"type"`
	Start Bound        `json:"start"`
	End   Bound        `json:"end"`
}

// Intervals are the intervals of an item, given either directly or as the name of a shared list in
// Data.Intervals.
type Intervals struct {
	Ref  string
	List []Interval
}

func (ivs *Intervals) UnmarshalJSON(data []byte) error {
	*ivs = Intervals{}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		return json.Unmarshal(data, &ivs.Ref)
	}
	return json.Unmarshal(data, &ivs.List)
}

func (ivs Intervals) MarshalJSON() ([]byte, error) {
	if ivs.Ref != "" {
		return json.Marshal(ivs.Ref)
	}
	return json.Marshal(ivs.List)
}

type Meta struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Color string `json:"color,omitempty"`
}

type Item struct {
	Name      string             `json:"name"`
	Intervals Intervals          `json:"intervals"`
	Timing    map[string]float64 `json:"timing"`
	Meta      []Meta             `json:"meta,omitempty"`
}

type Data struct {
	Items     []Item                `json:"items"`
	Intervals map[string][]Interval `json:"intervals,omitempty"`
}

// span is an interval with resolved bounds.
type span struct {
	Interval
	start, end float64
}

// entry is an item prepared for drawing.
type entry struct {
	item  *Item
	index int
	spans []span
	// min and max cover all spans, textMin and textMax only the blocks.
	min, max         float64
	textMin, textMax float64
	hasText          bool
}

// prepare resolves the intervals of all items and orders the items by start, longest first. Intervals whose
// bounds refer to missing timings are dropped, and so are items without intervals.
func prepare(data *Data) ([]entry, error) {
	entries := make([]entry, 0, len(data.Items))
	for i := range data.Items {
		it := &data.Items[i]
		list := it.Intervals.List
		if it.Intervals.Ref != "" {
			var ok bool
			list, ok = data.Intervals[it.Intervals.Ref]
			if !ok {
				return nil, fmt.Errorf("item %q refers to unknown intervals %q", it.Name, it.Intervals.Ref)
			}
		}

		e := entry{
			item:    it,
			index:   i,
			min:     math.Inf(1),
			max:     math.Inf(-1),
			textMin: math.Inf(1),
			textMax: math.Inf(-1),
		}
		for _, iv := range list {
			start, ok1 := iv.Start.resolve(it.Timing)
			end, ok2 := iv.End.resolve(it.Timing)
			if !ok1 || !ok2 {
				continue
			}
			e.spans = append(e.spans, span{Interval: iv, start: start, end: end})
			e.min, e.max = math.Min(e.min, start), math.Max(e.max, end)
			if iv.Type != Line {
				e.textMin, e.textMax = math.Min(e.textMin, start), math.Max(e.textMax, end)
				e.hasText = true
			}
		}
		if len(e.spans) > 0 {
			entries = append(entries, e)
		}
	}

	slices.SortFunc(entries, func(a, b entry) int {
		switch {
		case a.min != b.min:
			return cmpFloat(a.min, b.min)
		case a.max != b.max:
			return cmpFloat(b.max, a.max)
		default:
			return a.index - b.index
		}
	})
	return entries, nil
}

func cmpFloat(a, b float64) int {
	if a < b {
		return -1
	}
	return 1
}
