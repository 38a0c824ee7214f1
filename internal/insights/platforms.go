package insights

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"github.com/KaramelBytes/vgmarket-cli/internal/engine"
	"github.com/KaramelBytes/vgmarket-cli/internal/metrics"
)

const (
	platformTop       = 10
	platformPieSlices = 5
	platformLifecycle = 6
)

// Series is a per-year metric for one key.
type Series struct {
	Key    string         `json:"key"`
	Points metrics.Result `json:"points"`
}

// Efficiency relates titles released to units sold for one group.
type Efficiency struct {
	Key           string  `json:"key"`
	Titles        int     `json:"titles"`
	Sales         float64 `json:"sales"`
	SalesPerTitle float64 `json:"sales_per_title"`
}

// Platforms is the platform performance page.
type Platforms struct {
	Top        []metrics.Entry `json:"top"`
	Share      []Slice         `json:"share"`
	Lifecycle  []Series        `json:"lifecycle"`
	Efficiency []Efficiency    `json:"efficiency"`
	// LeaderShare is the top platform's percentage of all sales.
	LeaderShare float64 `json:"leader_share"`
}

// BuildPlatforms computes the platform page.
func BuildPlatforms(e *engine.Engine) (*Platforms, error) {
	sums, err := e.SumBy(dataset.FieldConsole, dataset.FieldTotalSales)
	if err != nil {
		return nil, err
	}
	p := &Platforms{Top: metrics.TopN(sums, platformTop)}

	// The pie covers the top 10 only: top 5 plus the rest of the top 10 as Others.
	pie := p.Top
	if len(pie) > platformPieSlices {
		others := sumEntries(pie[platformPieSlices:])
		pie = append(append([]metrics.Entry{}, pie[:platformPieSlices]...), metrics.Entry{Key: "Others", Value: others})
	}
	if len(pie) > 0 {
		if p.Share, err = shareOf(pie, sumEntries(p.Top)); err != nil {
			return nil, fmt.Errorf("platform share: %w", err)
		}
	}

	ds, err := e.Dataset()
	if err != nil {
		return nil, err
	}
	for _, top := range metrics.TopN(sums, platformLifecycle) {
		console := top.Key
		sub := ds.Filter(func(r dataset.GameRecord) bool { return r.Console == console })
		yearly, err := metrics.SumBy(sub, dataset.FieldReleaseYear, dataset.FieldTotalSales)
		if err != nil {
			return nil, err
		}
		p.Lifecycle = append(p.Lifecycle, Series{Key: console, Points: yearly.SortByKey()})
	}

	counts, err := e.CountBy(dataset.FieldConsole)
	if err != nil {
		return nil, err
	}
	for _, s := range metrics.SortDesc(sums) {
		n, _ := counts.Get(s.Key)
		eff := Efficiency{Key: s.Key, Titles: int(n), Sales: s.Value}
		if per, err := metrics.Ratio(s.Value, n); err == nil {
			eff.SalesPerTitle = per
		}
		p.Efficiency = append(p.Efficiency, eff)
	}

	if len(p.Top) > 0 {
		if p.LeaderShare, err = metrics.Share(p.Top[0].Value, sums.Total()); err != nil {
			return nil, fmt.Errorf("platform leader share: %w", err)
		}
	}
	return p, nil
}

func (p *Platforms) Name() string { return "platforms" }

// Markdown renders the platform page.
func (p *Platforms) Markdown() string {
	var b strings.Builder
	b.WriteString("[TOP PLATFORMS BY SALES]\n")
	writeEntries(&b, p.Top, "%.1fM units")
	if len(p.Top) > 0 {
		b.WriteString(fmt.Sprintf("%s leads with %.1f%% of all platform sales.\n", p.Top[0].Key, p.LeaderShare))
	}

	b.WriteString("\n[MARKET SHARE - TOP 5 PLATFORMS]\n")
	for _, s := range p.Share {
		b.WriteString(fmt.Sprintf("- %s: %.1f%%\n", s.Key, s.Percent))
	}

	b.WriteString("\n[PLATFORM LIFECYCLE]\n")
	for _, s := range p.Lifecycle {
		b.WriteString(fmt.Sprintf("- %s:", s.Key))
		for _, pt := range s.Points.Entries() {
			b.WriteString(fmt.Sprintf(" %s=%.1f", pt.Key, pt.Value))
		}
		if peak := metrics.TopN(s.Points, 1); len(peak) == 1 {
			b.WriteString(fmt.Sprintf(" (peak %s)", peak[0].Key))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[PLATFORM EFFICIENCY]\n")
	for _, eff := range p.Efficiency {
		b.WriteString(fmt.Sprintf("- %s: %s titles, %.1fM units, %.2fM per title\n", eff.Key, thousands(eff.Titles), eff.Sales, eff.SalesPerTitle))
	}
	return b.String()
}
