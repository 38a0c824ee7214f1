// Package engine ties the dataset loader, the aggregation library and the result
// cache together behind named queries. An Engine is safe for concurrent use.
package engine

import (
	"io"
	"log"
	"time"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"github.com/KaramelBytes/vgmarket-cli/internal/metrics"
)

// Source is the configured input: a file path plus loader options.
type Source struct {
	Path    string
	Options dataset.Options
}

// Engine answers metric queries against one configured source.
type Engine struct {
	src    Source
	cache  *Cache
	logger *log.Logger
}

// New builds an engine for src. A nil logger discards output.
func New(src Source, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{src: src, cache: NewCache(), logger: logger}
}

// Source returns the configured input.
func (e *Engine) Source() Source { return e.src }

// Dataset loads (once) and returns the configured dataset.
func (e *Engine) Dataset() (*dataset.Dataset, error) {
	key := DatasetKey{Path: e.src.Path, Options: e.src.Options}
	return e.cache.Dataset(key, func() (*dataset.Dataset, error) {
		start := time.Now()
		ds, err := dataset.LoadWithOptions(e.src.Path, e.src.Options)
		if err != nil {
			e.logger.Printf("load %s failed: %v", e.src.Path, err)
			return nil, err
		}
		lo, hi := ds.YearRange()
		e.logger.Printf("loaded %s: %d of %d rows in %d-%d (%s)", e.src.Path, ds.Len(), ds.RowsRead(), lo, hi, time.Since(start).Round(time.Millisecond))
		return ds, nil
	})
}

// Reload drops every cached entry and re-reads the source.
func (e *Engine) Reload() (*dataset.Dataset, error) {
	e.cache.Invalidate()
	e.logger.Printf("cache invalidated")
	return e.Dataset()
}

// Stats reports cache activity.
func (e *Engine) Stats() Stats { return e.cache.Stats() }

func (e *Engine) grouped(fn metrics.Func, group, value dataset.Field) (metrics.Result, error) {
	ds, err := e.Dataset()
	if err != nil {
		return metrics.Result{}, err
	}
	key := AggKey{Func: string(fn), Group: group, DatasetID: ds.ID()}
	if fn != metrics.FuncCount {
		key.Values = []dataset.Field{value}
	}
	return memo(e.cache, key, func() (metrics.Result, error) {
		return metrics.Aggregate(ds, fn, group, value)
	})
}

// Aggregate runs a named grouped aggregation.
func (e *Engine) Aggregate(fn metrics.Func, group, value dataset.Field) (metrics.Result, error) {
	return e.grouped(fn, group, value)
}

// SumBy totals value per group.
func (e *Engine) SumBy(group, value dataset.Field) (metrics.Result, error) {
	return e.grouped(metrics.FuncSum, group, value)
}

// MeanBy averages value per group.
func (e *Engine) MeanBy(group, value dataset.Field) (metrics.Result, error) {
	return e.grouped(metrics.FuncMean, group, value)
}

// MedianBy takes the median of value per group.
func (e *Engine) MedianBy(group, value dataset.Field) (metrics.Result, error) {
	return e.grouped(metrics.FuncMedian, group, value)
}

// CountBy counts rows per group.
func (e *Engine) CountBy(group dataset.Field) (metrics.Result, error) {
	return e.grouped(metrics.FuncCount, group, "")
}

// CrossTabSum totals several fields per group.
func (e *Engine) CrossTabSum(group dataset.Field, values []dataset.Field) (metrics.CrossTab, error) {
	ds, err := e.Dataset()
	if err != nil {
		return metrics.CrossTab{}, err
	}
	key := AggKey{Func: "crosstab", Group: group, Values: values, DatasetID: ds.ID()}
	return memo(e.cache, key, func() (metrics.CrossTab, error) {
		return metrics.CrossTabSum(ds, group, values)
	})
}

// Total sums value over the whole dataset.
func (e *Engine) Total(value dataset.Field) (float64, error) {
	ds, err := e.Dataset()
	if err != nil {
		return 0, err
	}
	key := AggKey{Func: "total", Values: []dataset.Field{value}, DatasetID: ds.ID()}
	return memo(e.cache, key, func() (float64, error) {
		return metrics.Sum(ds, value)
	})
}

// ScoreBins splits scored records into the default critic score bins.
func (e *Engine) ScoreBins() ([]metrics.Bin, error) {
	ds, err := e.Dataset()
	if err != nil {
		return nil, err
	}
	key := AggKey{Func: "bins", Group: dataset.FieldCriticScore, DatasetID: ds.ID()}
	return memo(e.cache, key, func() ([]metrics.Bin, error) {
		return metrics.ScoreBinning(ds, metrics.DefaultScoreEdges)
	})
}

// MeanByBin averages value per non-empty critic score bin.
func (e *Engine) MeanByBin(value dataset.Field) (metrics.Result, error) {
	bins, err := e.ScoreBins()
	if err != nil {
		return metrics.Result{}, err
	}
	ds, err := e.Dataset()
	if err != nil {
		return metrics.Result{}, err
	}
	key := AggKey{Func: "mean_by_bin", Group: dataset.FieldCriticScore, Values: []dataset.Field{value}, DatasetID: ds.ID()}
	return memo(e.cache, key, func() (metrics.Result, error) {
		return metrics.MeanByBin(bins, value)
	})
}
