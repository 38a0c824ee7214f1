package metrics

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// DefaultScoreEdges splits critic scores into 0-5, 5-6, ..., 9-10.
var DefaultScoreEdges = []float64{0, 5, 6, 7, 8, 9, 10}

// Bin is a right-inclusive critic score interval (Lower, Upper].
type Bin struct {
	Label   string               `json:"label"`
	Lower   float64              `json:"lower"`
	Upper   float64              `json:"upper"`
	Records []dataset.GameRecord `json:"-"`
}

// Count is the number of records in the bin.
func (b Bin) Count() int { return len(b.Records) }

// ScoreBinning assigns every record with a critic score to its bin. Unscored
// records and scores outside (edges[0], edges[last]] fall in no bin. Every bin is
// returned, empty or not, in edge order. Nil edges mean DefaultScoreEdges.
func ScoreBinning(ds *dataset.Dataset, edges []float64) ([]Bin, error) {
	if edges == nil {
		edges = DefaultScoreEdges
	}
	if len(edges) < 2 {
		return nil, fmt.Errorf("score binning needs at least two edges, got %d", len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, fmt.Errorf("score bin edges must be strictly increasing: %v", edges)
		}
	}
	bins := make([]Bin, len(edges)-1)
	for i := range bins {
		bins[i] = Bin{
			Label: formatEdge(edges[i]) + "-" + formatEdge(edges[i+1]),
			Lower: edges[i],
			Upper: edges[i+1],
		}
	}
	for _, r := range ds.Records() {
		s, ok := r.Value(dataset.FieldCriticScore)
		if !ok {
			continue
		}
		// First edge >= s; the bin to its left owns s.
		idx := sort.SearchFloat64s(edges, s)
		if idx == 0 || idx == len(edges) {
			continue
		}
		bins[idx-1].Records = append(bins[idx-1].Records, r)
	}
	return bins, nil
}

// MeanByBin averages value per non-empty bin, keyed by bin label in edge order.
func MeanByBin(bins []Bin, value dataset.Field) (Result, error) {
	if err := checkValue(value); err != nil {
		return Result{}, err
	}
	var keys []string
	out := map[string]float64{}
	for _, b := range bins {
		var vals []float64
		for _, r := range b.Records {
			if v, ok := r.Value(value); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}
		keys = append(keys, b.Label)
		out[b.Label] = stat.Mean(vals, nil)
	}
	return newResult(keys, out), nil
}

// CountByBin counts records per bin, keeping empty bins.
func CountByBin(bins []Bin) Result {
	keys := make([]string, 0, len(bins))
	out := make(map[string]float64, len(bins))
	for _, b := range bins {
		keys = append(keys, b.Label)
		out[b.Label] = float64(b.Count())
	}
	return newResult(keys, out)
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
