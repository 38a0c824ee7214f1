package metrics

import (
	"encoding/json"
	"sort"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
)

// CrossTab holds sums of several value fields per group key.
type CrossTab struct {
	keys   []string
	fields []dataset.Field
	sums   map[string][]float64
}

// CrossTabSum totals each of values per group key in a single pass.
func CrossTabSum(ds *dataset.Dataset, group dataset.Field, values []dataset.Field) (CrossTab, error) {
	if err := checkGroup(group); err != nil {
		return CrossTab{}, err
	}
	for _, v := range values {
		if err := checkValue(v); err != nil {
			return CrossTab{}, err
		}
	}
	ct := CrossTab{fields: append([]dataset.Field(nil), values...), sums: map[string][]float64{}}
	for _, r := range ds.Records() {
		k, ok := r.Key(group)
		if !ok {
			continue
		}
		row, seen := ct.sums[k]
		if !seen {
			row = make([]float64, len(values))
			ct.keys = append(ct.keys, k)
		}
		for i, f := range values {
			if v, ok := r.Value(f); ok {
				row[i] += v
			}
		}
		ct.sums[k] = row
	}
	return ct, nil
}

// Keys returns row keys in their current order.
func (c CrossTab) Keys() []string { return append([]string(nil), c.keys...) }

// Fields returns the column fields.
func (c CrossTab) Fields() []dataset.Field { return append([]dataset.Field(nil), c.fields...) }

// Get returns the sum for one cell.
func (c CrossTab) Get(key string, f dataset.Field) (float64, bool) {
	row, ok := c.sums[key]
	if !ok {
		return 0, false
	}
	for i, cf := range c.fields {
		if cf == f {
			return row[i], true
		}
	}
	return 0, false
}

// Column extracts one field as a Result keyed like the rows.
func (c CrossTab) Column(f dataset.Field) Result {
	out := make(map[string]float64, len(c.keys))
	for _, k := range c.keys {
		v, _ := c.Get(k, f)
		out[k] = v
	}
	return newResult(c.Keys(), out)
}

// SortByKey returns a copy with rows ordered by key; numeric keys compare as numbers.
func (c CrossTab) SortByKey() CrossTab {
	keys := c.Keys()
	sort.SliceStable(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return CrossTab{keys: keys, fields: c.fields, sums: c.sums}
}

type crossTabRow struct {
	Key    string             `json:"key"`
	Values map[string]float64 `json:"values"`
}

// MarshalJSON encodes rows in order, each with a field-to-sum object.
func (c CrossTab) MarshalJSON() ([]byte, error) {
	rows := make([]crossTabRow, 0, len(c.keys))
	for _, k := range c.keys {
		vals := make(map[string]float64, len(c.fields))
		for i, f := range c.fields {
			vals[string(f)] = c.sums[k][i]
		}
		rows = append(rows, crossTabRow{Key: k, Values: vals})
	}
	return json.Marshal(rows)
}
