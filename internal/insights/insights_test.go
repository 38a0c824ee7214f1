package insights

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"github.com/KaramelBytes/vgmarket-cli/internal/engine"
)

// Sales use quarter steps so sums stay exact.
var fixture = []string{
	"title,console,genre,publisher,release_year,critic_score,na_sales,pal_sales,jp_sales,other_sales,total_sales",
	"A,PS4,Action,Sony,2014,8.5,3,2,0.5,0.5,6",
	"B,PS4,Shooter,Activision,2015,9.25,2,1.5,0.25,0.25,4",
	"C,XOne,Shooter,Microsoft,2015,,2,0.5,0,0.5,3",
	"D,3DS,RPG,Nintendo,2013,7.5,0.5,0.25,1.25,0,2",
	"E,PS3,Action,Sony,2011,,0.25,0.25,0,0,0.5",
	"F,Wii,Sports,Nintendo,2010,6,0.25,0.25,0,0,0.5",
	"G,PC,Strategy,Sega,2015,,0,0.5,0,0,0.5",
	"H,Switch,Action,Nintendo,2019,5,0.5,0.25,0.25,0,1",
	"Old,DS,RPG,Nintendo,2008,9,5,5,5,5,20",
}

func newFixtureEngine(t *testing.T) *engine.Engine {
	t.Helper()
	p := filepath.Join(t.TempDir(), "games.csv")
	if err := os.WriteFile(p, []byte(strings.Join(fixture, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return engine.New(engine.Source{Path: p, Options: dataset.DefaultOptions()}, nil)
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestOverview(t *testing.T) {
	o, err := BuildOverview(newFixtureEngine(t))
	if err != nil {
		t.Fatalf("BuildOverview: %v", err)
	}
	if o.TotalGames != 8 || o.TotalSales != 17.5 {
		t.Fatalf("games/sales = %d/%v", o.TotalGames, o.TotalSales)
	}
	if o.MeanSales != 2.1875 || o.MedianSales != 1.5 {
		t.Fatalf("mean/median = %v/%v", o.MeanSales, o.MedianSales)
	}
	if o.TopPlatform.Key != "PS4" || o.TopPlatform.Value != 10 {
		t.Fatalf("top platform = %+v", o.TopPlatform)
	}
	if o.TopGenre.Key != "Action" || o.TopGenre.Value != 7.5 {
		t.Fatalf("top genre = %+v", o.TopGenre)
	}
	if !almostEqual(o.NAShare, 8.5/17.5*100, 1e-9) {
		t.Fatalf("NA share = %v", o.NAShare)
	}
	md := o.Markdown()
	for _, want := range []string{"[MARKET OVERVIEW]", "Period: 2010-2019", "PS4 dominated with 10M units sold.", "North America accounts for 49%"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestPlatforms(t *testing.T) {
	p, err := BuildPlatforms(newFixtureEngine(t))
	if err != nil {
		t.Fatalf("BuildPlatforms: %v", err)
	}
	wantTop := []string{"PS4", "XOne", "3DS", "Switch", "PS3", "Wii", "PC"}
	if len(p.Top) != len(wantTop) {
		t.Fatalf("top = %+v", p.Top)
	}
	for i, k := range wantTop {
		if p.Top[i].Key != k {
			t.Fatalf("top[%d] = %s, want %s", i, p.Top[i].Key, k)
		}
	}
	if len(p.Share) != 6 || p.Share[5].Key != "Others" || p.Share[5].Sales != 1 {
		t.Fatalf("share = %+v", p.Share)
	}
	var pct float64
	for _, s := range p.Share {
		pct += s.Percent
	}
	if !almostEqual(pct, 100, 1e-9) {
		t.Fatalf("pie percentages sum to %v", pct)
	}
	if len(p.Lifecycle) != 6 || p.Lifecycle[0].Key != "PS4" {
		t.Fatalf("lifecycle = %+v", p.Lifecycle)
	}
	if keys := p.Lifecycle[0].Points.Keys(); len(keys) != 2 || keys[0] != "2014" || keys[1] != "2015" {
		t.Fatalf("PS4 lifecycle years = %v", keys)
	}
	if eff := p.Efficiency[0]; eff.Key != "PS4" || eff.Titles != 2 || eff.SalesPerTitle != 5 {
		t.Fatalf("efficiency = %+v", eff)
	}
	if !strings.Contains(p.Markdown(), "[PLATFORM LIFECYCLE]") {
		t.Fatalf("markdown missing lifecycle section")
	}
}

func TestGenres(t *testing.T) {
	g, err := BuildGenres(newFixtureEngine(t))
	if err != nil {
		t.Fatalf("BuildGenres: %v", err)
	}
	if len(g.Top) != 3 || g.Top[0].Key != "Action" || g.Top[1].Key != "Shooter" || g.Top[2].Key != "RPG" {
		t.Fatalf("top genres = %+v", g.Top)
	}
	if !almostEqual(g.TopShare, 16.5/17.5*100, 1e-9) {
		t.Fatalf("top share = %v", g.TopShare)
	}
	if g.Saturation.MedianCount != 1 || g.Saturation.MedianSales != 2 {
		t.Fatalf("saturation medians = %v/%v", g.Saturation.MedianCount, g.Saturation.MedianSales)
	}
	for _, pt := range g.Saturation.Points {
		want := "niche"
		if pt.Key == "Action" || pt.Key == "Shooter" {
			want = "competitive"
		}
		if string(pt.Quadrant) != want {
			t.Fatalf("%s quadrant = %s, want %s", pt.Key, pt.Quadrant, want)
		}
	}
	if g.MeanPerTitle[0].Key != "Shooter" || g.MeanPerTitle[0].Value != 3.5 {
		t.Fatalf("mean per title = %+v", g.MeanPerTitle)
	}
	if !strings.Contains(g.Markdown(), "The top 3 genres account for 94% of all sales.") {
		t.Fatalf("unexpected markdown:\n%s", g.Markdown())
	}
}

func TestRegions(t *testing.T) {
	r, err := BuildRegions(newFixtureEngine(t))
	if err != nil {
		t.Fatalf("BuildRegions: %v", err)
	}
	want := []struct {
		name  string
		sales float64
	}{{"North America", 8.5}, {"Europe", 5.5}, {"Japan", 2.25}, {"Other", 1.25}}
	for i, w := range want {
		if r.Totals[i].Key != w.name || r.Totals[i].Sales != w.sales {
			t.Fatalf("totals[%d] = %+v, want %+v", i, r.Totals[i], w)
		}
	}
	if jp := r.TopGenres[2]; jp.Region != "Japan" || jp.Genres[0].Key != "RPG" || jp.Genres[0].Value != 1.25 {
		t.Fatalf("Japan genres = %+v", jp)
	}
	years := r.Yearly.Keys()
	if years[0] != "2010" || years[len(years)-1] != "2019" {
		t.Fatalf("yearly not sorted: %v", years)
	}
	if v, _ := r.Yearly.Get("2015", dataset.FieldNASales); v != 4 {
		t.Fatalf("2015 NA = %v", v)
	}
	if !strings.Contains(r.Markdown(), "| Year | North America | Europe | Japan | Other |") {
		t.Fatalf("unexpected markdown:\n%s", r.Markdown())
	}
}

func TestMarket(t *testing.T) {
	m, err := BuildMarket(newFixtureEngine(t))
	if err != nil {
		t.Fatalf("BuildMarket: %v", err)
	}
	if m.ScoredGames != 5 || m.ScoredPercent != 62.5 {
		t.Fatalf("scored = %d (%v%%)", m.ScoredGames, m.ScoredPercent)
	}
	keys := m.MeanByScore.Keys()
	wantBins := []string{"0-5", "5-6", "7-8", "8-9", "9-10"}
	if strings.Join(keys, ",") != strings.Join(wantBins, ",") {
		t.Fatalf("bins = %v, want %v", keys, wantBins)
	}
	if v, _ := m.MeanByScore.Get("8-9"); v != 6 {
		t.Fatalf("8-9 mean = %v", v)
	}
	if m.TopPublishers[0].Key != "Sony" || m.TopPublishers[1].Key != "Activision" || m.TopPublishers[2].Key != "Nintendo" {
		t.Fatalf("publishers = %+v", m.TopPublishers)
	}
	if m.PublisherShare != 100 {
		t.Fatalf("publisher share = %v", m.PublisherShare)
	}
	if m.PeakYear != "2015" || m.PeakCount != 3 {
		t.Fatalf("peak = %s/%d", m.PeakYear, m.PeakCount)
	}
	if !strings.Contains(m.Markdown(), "Releases peaked in 2015 with 3 games.") {
		t.Fatalf("unexpected markdown:\n%s", m.Markdown())
	}
}

func TestBuild(t *testing.T) {
	e := newFixtureEngine(t)
	for _, name := range Names {
		v, err := Build(e, name)
		if err != nil {
			t.Fatalf("Build(%s): %v", name, err)
		}
		if v.Name() != name {
			t.Fatalf("Build(%s) returned %s", name, v.Name())
		}
		if _, err := json.Marshal(v); err != nil {
			t.Fatalf("marshal %s: %v", name, err)
		}
	}
	if _, err := Build(e, "charts"); !errors.Is(err, ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView, got %v", err)
	}
}

func TestEmptyWindowIsAnError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "games.csv")
	if err := os.WriteFile(p, []byte(fixture[0]+"\n"+fixture[9]+"\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	e := engine.New(engine.Source{Path: p, Options: dataset.DefaultOptions()}, nil)
	if _, err := BuildOverview(e); err == nil {
		t.Fatalf("expected an error for an empty window")
	}
}

func TestThousands(t *testing.T) {
	cases := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4321: "-4,321"}
	for n, want := range cases {
		if got := thousands(n); got != want {
			t.Fatalf("thousands(%d) = %q, want %q", n, got, want)
		}
	}
}
