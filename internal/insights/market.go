package insights

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"github.com/KaramelBytes/vgmarket-cli/internal/engine"
	"github.com/KaramelBytes/vgmarket-cli/internal/metrics"
)

const marketTopPublishers = 10

// Market is the market-insights page: critic scores, publishers and release timing.
type Market struct {
	TotalGames     int             `json:"total_games"`
	ScoredGames    int             `json:"scored_games"`
	ScoredPercent  float64         `json:"scored_percent"`
	MeanByScore    metrics.Result  `json:"mean_by_score"`
	TopPublishers  []metrics.Entry `json:"top_publishers"`
	PublisherShare float64         `json:"publisher_share"`
	Releases       metrics.Result  `json:"releases"`
	PeakYear       string          `json:"peak_year"`
	PeakCount      int             `json:"peak_count"`
}

// BuildMarket computes the market page.
func BuildMarket(e *engine.Engine) (*Market, error) {
	ds, err := e.Dataset()
	if err != nil {
		return nil, err
	}
	m := &Market{TotalGames: ds.Len()}
	if m.ScoredGames, err = metrics.Count(ds, dataset.FieldCriticScore); err != nil {
		return nil, err
	}
	if m.ScoredPercent, err = metrics.Share(float64(m.ScoredGames), float64(m.TotalGames)); err != nil {
		return nil, fmt.Errorf("scored share: %w", err)
	}
	if m.MeanByScore, err = e.MeanByBin(dataset.FieldTotalSales); err != nil {
		return nil, err
	}

	pubs, err := e.SumBy(dataset.FieldPublisher, dataset.FieldTotalSales)
	if err != nil {
		return nil, err
	}
	m.TopPublishers = metrics.TopN(pubs, marketTopPublishers)
	total, err := e.Total(dataset.FieldTotalSales)
	if err != nil {
		return nil, err
	}
	if m.PublisherShare, err = metrics.Share(sumEntries(m.TopPublishers), total); err != nil {
		return nil, fmt.Errorf("publisher share: %w", err)
	}

	releases, err := e.CountBy(dataset.FieldReleaseYear)
	if err != nil {
		return nil, err
	}
	m.Releases = releases.SortByKey()
	// Ties go to the earliest year.
	if peak := metrics.TopN(m.Releases, 1); len(peak) == 1 {
		m.PeakYear, m.PeakCount = peak[0].Key, int(peak[0].Value)
	}
	return m, nil
}

func (m *Market) Name() string { return "market" }

// Markdown renders the market page.
func (m *Market) Markdown() string {
	var b strings.Builder
	b.WriteString("[CRITIC SCORES VS SALES]\n")
	b.WriteString(fmt.Sprintf("Games with scores: %s of %s (%.1f%%)\n", thousands(m.ScoredGames), thousands(m.TotalGames), m.ScoredPercent))
	for _, e := range m.MeanByScore.Entries() {
		b.WriteString(fmt.Sprintf("- %s: %.2fM units average\n", e.Key, e.Value))
	}

	b.WriteString("\n[TOP PUBLISHERS]\n")
	writeEntries(&b, m.TopPublishers, "%.1fM units")
	if len(m.TopPublishers) > 0 {
		b.WriteString(fmt.Sprintf("The top %d publishers control %.1f%% of the market.\n", len(m.TopPublishers), m.PublisherShare))
	}

	b.WriteString("\n[RELEASES PER YEAR]\n")
	for _, e := range m.Releases.Entries() {
		b.WriteString(fmt.Sprintf("- %s: %s\n", e.Key, thousands(int(e.Value))))
	}
	if m.PeakYear != "" {
		b.WriteString(fmt.Sprintf("Releases peaked in %s with %s games.\n", m.PeakYear, thousands(m.PeakCount)))
	}
	return b.String()
}
