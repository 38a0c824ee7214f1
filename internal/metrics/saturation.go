package metrics

// Quadrant classifies a group by title count and sales relative to the medians.
type Quadrant string

const (
	QuadrantOpportunity   Quadrant = "opportunity"   // few titles, high sales
	QuadrantCompetitive   Quadrant = "competitive"   // many titles, high sales
	QuadrantOversaturated Quadrant = "oversaturated" // many titles, low sales
	QuadrantNiche         Quadrant = "niche"         // few titles, low sales
)

// SaturationPoint is one group placed on the count/sales plane.
type SaturationPoint struct {
	Key      string   `json:"key"`
	Count    float64  `json:"count"`
	Sales    float64  `json:"sales"`
	Quadrant Quadrant `json:"quadrant"`
}

// Saturation is the quadrant split of a set of groups.
type Saturation struct {
	MedianCount float64           `json:"median_count"`
	MedianSales float64           `json:"median_sales"`
	Points      []SaturationPoint `json:"points"`
}

// Quadrants places every key present in both counts and sales. Values strictly
// above a median count as "many" or "high". Keys follow the order of counts.
func Quadrants(counts, sales Result) Saturation {
	var pts []SaturationPoint
	var cs, ss []float64
	for _, e := range counts.Entries() {
		s, ok := sales.Get(e.Key)
		if !ok {
			continue
		}
		pts = append(pts, SaturationPoint{Key: e.Key, Count: e.Value, Sales: s})
		cs = append(cs, e.Value)
		ss = append(ss, s)
	}
	if len(pts) == 0 {
		return Saturation{Points: []SaturationPoint{}}
	}
	mc, ms := median(cs), median(ss)
	for i := range pts {
		pts[i].Quadrant = classify(pts[i].Count > mc, pts[i].Sales > ms)
	}
	return Saturation{MedianCount: mc, MedianSales: ms, Points: pts}
}

func classify(many, high bool) Quadrant {
	switch {
	case many && high:
		return QuadrantCompetitive
	case many:
		return QuadrantOversaturated
	case high:
		return QuadrantOpportunity
	default:
		return QuadrantNiche
	}
}
