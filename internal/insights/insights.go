// Package insights builds the five market pages (overview, platforms, genres,
// regions, market) from engine queries. Every figure and narrative sentence is
// derived from the loaded data.
package insights

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/vgmarket-cli/internal/engine"
	"github.com/KaramelBytes/vgmarket-cli/internal/metrics"
)

// ErrUnknownView is returned by Build for a name not in Names.
var ErrUnknownView = errors.New("unknown view")

// Names lists the views in menu order.
var Names = []string{"overview", "platforms", "genres", "regions", "market"}

// View is a rendered page.
type View interface {
	Name() string
	Markdown() string
}

// Build computes the named view.
func Build(e *engine.Engine, name string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "overview":
		return BuildOverview(e)
	case "platforms":
		return BuildPlatforms(e)
	case "genres":
		return BuildGenres(e)
	case "regions":
		return BuildRegions(e)
	case "market":
		return BuildMarket(e)
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownView, name, strings.Join(Names, ", "))
}

// Slice is one labelled part of a whole, with its percentage of that whole.
type Slice struct {
	Key     string  `json:"key"`
	Sales   float64 `json:"sales"`
	Percent float64 `json:"percent"`
}

func shareOf(entries []metrics.Entry, whole float64) ([]Slice, error) {
	out := make([]Slice, 0, len(entries))
	for _, e := range entries {
		p, err := metrics.Share(e.Value, whole)
		if err != nil {
			return nil, err
		}
		out = append(out, Slice{Key: e.Key, Sales: e.Value, Percent: p})
	}
	return out, nil
}

func sumEntries(entries []metrics.Entry) float64 {
	var s float64
	for _, e := range entries {
		s += e.Value
	}
	return s
}

func units(v float64) string { return fmt.Sprintf("%.0fM units", v) }

// thousands formats n with comma separators.
func thousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func writeEntries(b *strings.Builder, entries []metrics.Entry, format string) {
	for i, e := range entries {
		b.WriteString(fmt.Sprintf("%d. %s: "+format+"\n", i+1, e.Key, e.Value))
	}
}
