package insights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"github.com/KaramelBytes/vgmarket-cli/internal/engine"
	"github.com/KaramelBytes/vgmarket-cli/internal/metrics"
)

const regionTopGenres = 5

// RegionGenres lists the best-selling genres in one region.
type RegionGenres struct {
	Region string          `json:"region"`
	Genres []metrics.Entry `json:"genres"`
}

// Regions is the regional analysis page.
type Regions struct {
	Totals    []Slice          `json:"totals"`
	TopGenres []RegionGenres   `json:"top_genres"`
	Yearly    metrics.CrossTab `json:"yearly"`
}

// BuildRegions computes the regional page.
func BuildRegions(e *engine.Engine) (*Regions, error) {
	yearly, err := e.CrossTabSum(dataset.FieldReleaseYear, dataset.RegionalFields)
	if err != nil {
		return nil, err
	}
	var totals []metrics.Entry
	var whole float64
	for _, f := range dataset.RegionalFields {
		v := yearly.Column(f).Total()
		totals = append(totals, metrics.Entry{Key: dataset.RegionName(f), Value: v})
		whole += v
	}
	sort.SliceStable(totals, func(i, j int) bool { return totals[i].Value > totals[j].Value })
	r := &Regions{Yearly: yearly.SortByKey()}
	if r.Totals, err = shareOf(totals, whole); err != nil {
		return nil, fmt.Errorf("regional share: %w", err)
	}

	for _, f := range []dataset.Field{dataset.FieldNASales, dataset.FieldPALSales, dataset.FieldJPSales} {
		sums, err := e.SumBy(dataset.FieldGenre, f)
		if err != nil {
			return nil, err
		}
		r.TopGenres = append(r.TopGenres, RegionGenres{Region: dataset.RegionName(f), Genres: metrics.TopN(sums, regionTopGenres)})
	}

	return r, nil
}

func (r *Regions) Name() string { return "regions" }

// Markdown renders the regional page.
func (r *Regions) Markdown() string {
	var b strings.Builder
	b.WriteString("[REGIONAL BREAKDOWN]\n")
	for _, s := range r.Totals {
		b.WriteString(fmt.Sprintf("- %s: %s (%.1f%%)\n", s.Key, units(s.Sales), s.Percent))
	}
	if len(r.Totals) > 0 {
		b.WriteString(fmt.Sprintf("%s is the largest market with %.1f%% of regional sales.\n", r.Totals[0].Key, r.Totals[0].Percent))
	}

	b.WriteString("\n[TOP GENRES BY REGION]\n")
	for _, rg := range r.TopGenres {
		names := make([]string, 0, len(rg.Genres))
		for _, g := range rg.Genres {
			names = append(names, fmt.Sprintf("%s (%.1fM)", g.Key, g.Value))
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", rg.Region, strings.Join(names, ", ")))
	}

	b.WriteString("\n[REGIONAL SALES BY YEAR]\n")
	fields := r.Yearly.Fields()
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, dataset.RegionName(f))
	}
	b.WriteString("| Year | " + strings.Join(cols, " | ") + " |\n")
	b.WriteString("|---" + strings.Repeat("|---", len(cols)) + "|\n")
	for _, y := range r.Yearly.Keys() {
		b.WriteString("| " + y)
		for _, f := range fields {
			v, _ := r.Yearly.Get(y, f)
			b.WriteString(fmt.Sprintf(" | %.1f", v))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}
