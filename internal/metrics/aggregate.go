// Package metrics implements the grouped aggregations, rankings, ratios and
// score binning the insight pages are built from. Every function is pure: the
// dataset is read, never modified, and results are fresh values.
package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Func names a grouped aggregation.
type Func string

const (
	FuncSum    Func = "sum"
	FuncMean   Func = "mean"
	FuncMedian Func = "median"
	FuncCount  Func = "count"
)

// ParseFunc resolves a user-supplied aggregation name.
func ParseFunc(s string) (Func, bool) {
	switch f := Func(s); f {
	case FuncSum, FuncMean, FuncMedian, FuncCount:
		return f, true
	}
	return "", false
}

// Aggregate dispatches to SumBy, MeanBy, MedianBy or CountBy. value is ignored for count.
func Aggregate(ds *dataset.Dataset, fn Func, group, value dataset.Field) (Result, error) {
	switch fn {
	case FuncSum:
		return SumBy(ds, group, value)
	case FuncMean:
		return MeanBy(ds, group, value)
	case FuncMedian:
		return MedianBy(ds, group, value)
	case FuncCount:
		return CountBy(ds, group)
	}
	return Result{}, fmt.Errorf("%w: %q", ErrUnknownFunc, fn)
}

// grouped holds the present values of one field per group key.
type grouped struct {
	keys   []string
	values map[string][]float64
}

// groupValues collects value per group key. A group appears only when at least
// one of its rows has a present value.
func groupValues(ds *dataset.Dataset, group, value dataset.Field) (grouped, error) {
	if err := checkGroup(group); err != nil {
		return grouped{}, err
	}
	if err := checkValue(value); err != nil {
		return grouped{}, err
	}
	g := grouped{values: map[string][]float64{}}
	for _, r := range ds.Records() {
		k, ok := r.Key(group)
		if !ok {
			continue
		}
		v, ok := r.Value(value)
		if !ok {
			continue
		}
		if _, seen := g.values[k]; !seen {
			g.keys = append(g.keys, k)
		}
		g.values[k] = append(g.values[k], v)
	}
	return g, nil
}

func (g grouped) reduce(fn func([]float64) float64) Result {
	out := make(map[string]float64, len(g.keys))
	for _, k := range g.keys {
		out[k] = fn(g.values[k])
	}
	return newResult(g.keys, out)
}

// SumBy totals value per group.
func SumBy(ds *dataset.Dataset, group, value dataset.Field) (Result, error) {
	g, err := groupValues(ds, group, value)
	if err != nil {
		return Result{}, err
	}
	return g.reduce(floats.Sum), nil
}

// MeanBy averages value per group. Rows without the value are skipped.
func MeanBy(ds *dataset.Dataset, group, value dataset.Field) (Result, error) {
	g, err := groupValues(ds, group, value)
	if err != nil {
		return Result{}, err
	}
	return g.reduce(func(v []float64) float64 { return stat.Mean(v, nil) }), nil
}

// MedianBy takes the median of value per group; even counts average the middle pair.
func MedianBy(ds *dataset.Dataset, group, value dataset.Field) (Result, error) {
	g, err := groupValues(ds, group, value)
	if err != nil {
		return Result{}, err
	}
	return g.reduce(median), nil
}

// CountBy counts rows per group key.
func CountBy(ds *dataset.Dataset, group dataset.Field) (Result, error) {
	if err := checkGroup(group); err != nil {
		return Result{}, err
	}
	var keys []string
	counts := map[string]float64{}
	for _, r := range ds.Records() {
		k, ok := r.Key(group)
		if !ok {
			continue
		}
		if _, seen := counts[k]; !seen {
			keys = append(keys, k)
		}
		counts[k]++
	}
	return newResult(keys, counts), nil
}

func presentValues(ds *dataset.Dataset, value dataset.Field) ([]float64, error) {
	if err := checkValue(value); err != nil {
		return nil, err
	}
	vals := make([]float64, 0, ds.Len())
	for _, r := range ds.Records() {
		if v, ok := r.Value(value); ok {
			vals = append(vals, v)
		}
	}
	return vals, nil
}

// Sum totals value over the whole dataset. An empty dataset sums to 0.
func Sum(ds *dataset.Dataset, value dataset.Field) (float64, error) {
	vals, err := presentValues(ds, value)
	if err != nil {
		return 0, err
	}
	return floats.Sum(vals), nil
}

// Mean averages value over the whole dataset.
func Mean(ds *dataset.Dataset, value dataset.Field) (float64, error) {
	vals, err := presentValues(ds, value)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, ErrEmptyResult
	}
	return stat.Mean(vals, nil), nil
}

// Median of value over the whole dataset.
func Median(ds *dataset.Dataset, value dataset.Field) (float64, error) {
	vals, err := presentValues(ds, value)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, ErrEmptyResult
	}
	return median(vals), nil
}

// Count is the number of rows with a present value.
func Count(ds *dataset.Dataset, value dataset.Field) (int, error) {
	vals, err := presentValues(ds, value)
	if err != nil {
		return 0, err
	}
	return len(vals), nil
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return quantile(cp, 0.5)
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
