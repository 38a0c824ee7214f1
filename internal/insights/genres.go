package insights

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"github.com/KaramelBytes/vgmarket-cli/internal/engine"
	"github.com/KaramelBytes/vgmarket-cli/internal/metrics"
)

const genreTop = 3

// Genres is the genre intelligence page.
type Genres struct {
	Sales        []metrics.Entry    `json:"sales"`
	Top          []Slice            `json:"top"`
	TopShare     float64            `json:"top_share"`
	Saturation   metrics.Saturation `json:"saturation"`
	MeanPerTitle []metrics.Entry    `json:"mean_per_title"`
}

// BuildGenres computes the genre page.
func BuildGenres(e *engine.Engine) (*Genres, error) {
	sums, err := e.SumBy(dataset.FieldGenre, dataset.FieldTotalSales)
	if err != nil {
		return nil, err
	}
	g := &Genres{Sales: metrics.SortDesc(sums)}
	if top := metrics.TopN(sums, genreTop); len(top) > 0 {
		whole := sums.Total()
		if g.Top, err = shareOf(top, whole); err != nil {
			return nil, fmt.Errorf("genre share: %w", err)
		}
		if g.TopShare, err = metrics.Share(sumEntries(top), whole); err != nil {
			return nil, fmt.Errorf("genre share: %w", err)
		}
	}

	counts, err := e.CountBy(dataset.FieldGenre)
	if err != nil {
		return nil, err
	}
	g.Saturation = metrics.Quadrants(counts, sums)

	means, err := e.MeanBy(dataset.FieldGenre, dataset.FieldTotalSales)
	if err != nil {
		return nil, err
	}
	g.MeanPerTitle = metrics.SortDesc(means)
	return g, nil
}

func (g *Genres) Name() string { return "genres" }

// Markdown renders the genre page.
func (g *Genres) Markdown() string {
	var b strings.Builder
	b.WriteString("[GENRE PERFORMANCE]\n")
	writeEntries(&b, g.Sales, "%.1fM units")

	b.WriteString("\n[TOP 3 GENRES]\n")
	for i, s := range g.Top {
		b.WriteString(fmt.Sprintf("%d. %s: %s (%.1f%%)\n", i+1, s.Key, units(s.Sales), s.Percent))
	}
	if len(g.Top) > 0 {
		b.WriteString(fmt.Sprintf("The top %d genres account for %.0f%% of all sales.\n", len(g.Top), g.TopShare))
	}

	b.WriteString("\n[MARKET SATURATION]\n")
	b.WriteString(fmt.Sprintf("Median titles per genre: %.1f; median sales per genre: %.1fM units\n", g.Saturation.MedianCount, g.Saturation.MedianSales))
	for _, q := range []metrics.Quadrant{metrics.QuadrantOpportunity, metrics.QuadrantCompetitive, metrics.QuadrantOversaturated, metrics.QuadrantNiche} {
		var keys []string
		for _, pt := range g.Saturation.Points {
			if pt.Quadrant == q {
				keys = append(keys, pt.Key)
			}
		}
		if len(keys) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", q, strings.Join(keys, ", ")))
	}

	b.WriteString("\n[AVERAGE SALES PER TITLE]\n")
	writeEntries(&b, g.MeanPerTitle, "%.2fM units")
	return b.String()
}
