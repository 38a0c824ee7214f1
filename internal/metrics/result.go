package metrics

import (
	"encoding/json"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// Entry is one group key with its metric.
type Entry struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Result maps group keys to a metric. Keys keep first-encountered order, which is
// also the tie-break order for ranking. A Result is never modified after creation.
type Result struct {
	keys   []string
	values map[string]float64
}

func newResult(keys []string, values map[string]float64) Result {
	return Result{keys: keys, values: values}
}

// Len is the number of groups.
func (r Result) Len() int { return len(r.keys) }

// Keys returns group keys in first-encountered order.
func (r Result) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the metric for key. Absent keys mean "no data".
func (r Result) Get(key string) (float64, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Entries lists all groups in first-encountered order.
func (r Result) Entries() []Entry {
	out := make([]Entry, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, Entry{Key: k, Value: r.values[k]})
	}
	return out
}

// Total sums all metric values.
func (r Result) Total() float64 {
	vals := make([]float64, 0, len(r.keys))
	for _, k := range r.keys {
		vals = append(vals, r.values[k])
	}
	return floats.Sum(vals)
}

// SortByKey returns a copy ordered by key; numeric keys (years) compare as numbers.
func (r Result) SortByKey() Result {
	keys := r.Keys()
	sort.SliceStable(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return newResult(keys, r.values)
}

// MarshalJSON encodes the result as an ordered list of entries.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Entries())
}

func keyLess(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}
