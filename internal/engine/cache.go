package engine

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"golang.org/x/sync/singleflight"
)

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Datasets   int    `json:"datasets"`
	Aggregates int    `json:"aggregates"`
}

// DatasetKey identifies a loaded dataset: the file plus everything that shapes it.
type DatasetKey struct {
	Path    string
	Options dataset.Options
}

func (k DatasetKey) String() string {
	return fmt.Sprintf("ds|%s|%d|%d|%q|%s|%s", k.Path, k.Options.YearMin, k.Options.YearMax,
		k.Options.Delimiter, k.Options.Sheet, k.Options.Table)
}

// AggKey identifies a derived result on one dataset.
type AggKey struct {
	Func      string
	Group     dataset.Field
	Values    []dataset.Field
	DatasetID string
}

func (k AggKey) String() string {
	vals := make([]string, len(k.Values))
	for i, v := range k.Values {
		vals[i] = string(v)
	}
	return fmt.Sprintf("agg|%s|%s|%s|%s", k.Func, k.Group, strings.Join(vals, ","), k.DatasetID)
}

// Cache memoizes datasets and aggregate results. Each key is computed at most once
// between invalidations, even under concurrent access. Entries never expire.
type Cache struct {
	mu       sync.RWMutex
	gen      uint64
	datasets map[string]*dataset.Dataset
	results  map[string]any
	flight   singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		datasets: map[string]*dataset.Dataset{},
		results:  map[string]any{},
	}
}

// Dataset returns the dataset for key, calling load only when it is not cached.
func (c *Cache) Dataset(key DatasetKey, load func() (*dataset.Dataset, error)) (*dataset.Dataset, error) {
	k := key.String()
	c.mu.RLock()
	ds, ok := c.datasets[k]
	gen := c.gen
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return ds, nil
	}
	v, err, _ := c.flight.Do(flightKey(gen, k), func() (any, error) {
		c.mu.RLock()
		ds, ok := c.datasets[k]
		c.mu.RUnlock()
		if ok {
			return ds, nil
		}
		c.misses.Add(1)
		ds, err := load()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// Results computed across an Invalidate belong to the old generation.
		if c.gen == gen {
			c.datasets[k] = ds
		}
		c.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dataset.Dataset), nil
}

// Aggregate returns the cached value for key, calling compute only when absent.
func (c *Cache) Aggregate(key AggKey, compute func() (any, error)) (any, error) {
	k := key.String()
	c.mu.RLock()
	v, ok := c.results[k]
	gen := c.gen
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return v, nil
	}
	v, err, _ := c.flight.Do(flightKey(gen, k), func() (any, error) {
		c.mu.RLock()
		v, ok := c.results[k]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}
		c.misses.Add(1)
		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.results[k] = v
		}
		c.mu.Unlock()
		return v, nil
	})
	return v, err
}

// flightKey scopes in-flight calls to a generation so callers arriving after an
// Invalidate never share a load that started before it.
func flightKey(gen uint64, k string) string {
	return fmt.Sprintf("%d|%s", gen, k)
}

// Invalidate drops every cached dataset and result.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.datasets = map[string]*dataset.Dataset{}
	c.results = map[string]any{}
	c.mu.Unlock()
}

// Stats reports hit/miss counters and entry counts.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Datasets:   len(c.datasets),
		Aggregates: len(c.results),
	}
}

// memo is Aggregate with a typed result.
func memo[T any](c *Cache, key AggKey, compute func() (T, error)) (T, error) {
	v, err := c.Aggregate(key, func() (any, error) { return compute() })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
