package insights

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"github.com/KaramelBytes/vgmarket-cli/internal/engine"
	"github.com/KaramelBytes/vgmarket-cli/internal/metrics"
)

// Overview holds the headline numbers for the whole window.
type Overview struct {
	Source      string        `json:"source"`
	YearMin     int           `json:"year_min"`
	YearMax     int           `json:"year_max"`
	TotalGames  int           `json:"total_games"`
	TotalSales  float64       `json:"total_sales"`
	MeanSales   float64       `json:"mean_sales"`
	MedianSales float64       `json:"median_sales"`
	TopPlatform metrics.Entry `json:"top_platform"`
	TopGenre    metrics.Entry `json:"top_genre"`
	NAShare     float64       `json:"na_share"`
}

// BuildOverview computes the overview page. An empty window is an error.
func BuildOverview(e *engine.Engine) (*Overview, error) {
	ds, err := e.Dataset()
	if err != nil {
		return nil, err
	}
	o := &Overview{Source: ds.Source(), TotalGames: ds.Len()}
	o.YearMin, o.YearMax = ds.YearRange()

	if o.TotalSales, err = e.Total(dataset.FieldTotalSales); err != nil {
		return nil, err
	}
	if o.MeanSales, err = metrics.Mean(ds, dataset.FieldTotalSales); err != nil {
		return nil, fmt.Errorf("overview: mean sales: %w", err)
	}
	if o.MedianSales, err = metrics.Median(ds, dataset.FieldTotalSales); err != nil {
		return nil, fmt.Errorf("overview: median sales: %w", err)
	}

	platforms, err := e.SumBy(dataset.FieldConsole, dataset.FieldTotalSales)
	if err != nil {
		return nil, err
	}
	if top := metrics.TopN(platforms, 1); len(top) == 1 {
		o.TopPlatform = top[0]
	}
	genres, err := e.SumBy(dataset.FieldGenre, dataset.FieldTotalSales)
	if err != nil {
		return nil, err
	}
	if top := metrics.TopN(genres, 1); len(top) == 1 {
		o.TopGenre = top[0]
	}

	na, err := e.Total(dataset.FieldNASales)
	if err != nil {
		return nil, err
	}
	if o.NAShare, err = metrics.Share(na, o.TotalSales); err != nil {
		return nil, fmt.Errorf("overview: north america share: %w", err)
	}
	return o, nil
}

func (o *Overview) Name() string { return "overview" }

// Markdown renders the overview as a plain-text report.
func (o *Overview) Markdown() string {
	var b strings.Builder
	b.WriteString("[MARKET OVERVIEW]\n")
	if o.Source != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", o.Source))
	}
	b.WriteString(fmt.Sprintf("Period: %d-%d\n", o.YearMin, o.YearMax))
	b.WriteString(fmt.Sprintf("Total games: %s\n", thousands(o.TotalGames)))
	b.WriteString(fmt.Sprintf("Total sales: %s\n", units(o.TotalSales)))
	b.WriteString(fmt.Sprintf("Average sales: %.2fM units\n", o.MeanSales))
	b.WriteString(fmt.Sprintf("Median sales: %.2fM units\n\n", o.MedianSales))

	b.WriteString("[QUICK INSIGHTS]\n")
	if o.MeanSales > o.MedianSales {
		b.WriteString(fmt.Sprintf("- Market reality: the gap between average (%.2fM) and median (%.2fM) sales shows most games sell poorly while a few blockbusters carry the market.\n", o.MeanSales, o.MedianSales))
	} else {
		b.WriteString(fmt.Sprintf("- Market reality: average (%.2fM) and median (%.2fM) sales are close, so sales are spread evenly across titles.\n", o.MeanSales, o.MedianSales))
	}
	if o.TopPlatform.Key != "" {
		b.WriteString(fmt.Sprintf("- Top platform: %s dominated with %s sold.\n", o.TopPlatform.Key, units(o.TopPlatform.Value)))
	}
	if o.TopGenre.Key != "" {
		b.WriteString(fmt.Sprintf("- Biggest genre: %s games led with %s sold.\n", o.TopGenre.Key, units(o.TopGenre.Value)))
	}
	b.WriteString(fmt.Sprintf("- Largest market: North America accounts for %.0f%% of global sales.\n", o.NAShare))
	return b.String()
}
