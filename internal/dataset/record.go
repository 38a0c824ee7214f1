package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names a column of the sales table.
type Field string

const (
	FieldTitle       Field = "title"
	FieldConsole     Field = "console"
	FieldGenre       Field = "genre"
	FieldPublisher   Field = "publisher"
	FieldReleaseYear Field = "release_year"
	FieldCriticScore Field = "critic_score"
	FieldNASales     Field = "na_sales"
	FieldPALSales    Field = "pal_sales"
	FieldJPSales     Field = "jp_sales"
	FieldOtherSales  Field = "other_sales"
	FieldTotalSales  Field = "total_sales"
)

// RequiredFields lists the columns every input must carry. Title is optional.
var RequiredFields = []Field{
	FieldConsole, FieldGenre, FieldPublisher, FieldReleaseYear, FieldCriticScore,
	FieldNASales, FieldPALSales, FieldJPSales, FieldOtherSales, FieldTotalSales,
}

// RegionalFields are the per-region sales columns, in display order.
var RegionalFields = []Field{FieldNASales, FieldPALSales, FieldJPSales, FieldOtherSales}

var regionNames = map[Field]string{
	FieldNASales:    "North America",
	FieldPALSales:   "Europe",
	FieldJPSales:    "Japan",
	FieldOtherSales: "Other",
}

// RegionName returns the display name of a regional sales field.
func RegionName(f Field) string {
	if n, ok := regionNames[f]; ok {
		return n
	}
	return string(f)
}

// IsGroup reports whether f can be used as a group-by key.
func (f Field) IsGroup() bool {
	switch f {
	case FieldTitle, FieldConsole, FieldGenre, FieldPublisher, FieldReleaseYear:
		return true
	}
	return false
}

// IsValue reports whether f is a numeric measure.
func (f Field) IsValue() bool {
	switch f {
	case FieldCriticScore, FieldNASales, FieldPALSales, FieldJPSales, FieldOtherSales, FieldTotalSales:
		return true
	}
	return false
}

// ParseField resolves a user-supplied column name.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if f.IsGroup() || f.IsValue() {
		return f, nil
	}
	return "", fmt.Errorf("unknown field: %q", s)
}

// GameRecord is one row of the sales table. Sales are millions of units.
type GameRecord struct {
	Title       string   `json:"title"`
	Console     string   `json:"console"`
	Genre       string   `json:"genre"`
	Publisher   string   `json:"publisher"`
	ReleaseYear int      `json:"release_year"`
	CriticScore *float64 `json:"critic_score,omitempty"`
	NASales     float64  `json:"na_sales"`
	PALSales    float64  `json:"pal_sales"`
	JPSales     float64  `json:"jp_sales"`
	OtherSales  float64  `json:"other_sales"`
	TotalSales  float64  `json:"total_sales"`
}

// Key returns the group key of r for field f. The second result is false when the
// cell was empty or f is not a group field.
func (r GameRecord) Key(f Field) (string, bool) {
	var s string
	switch f {
	case FieldTitle:
		s = r.Title
	case FieldConsole:
		s = r.Console
	case FieldGenre:
		s = r.Genre
	case FieldPublisher:
		s = r.Publisher
	case FieldReleaseYear:
		return strconv.Itoa(r.ReleaseYear), true
	default:
		return "", false
	}
	return s, s != ""
}

// Value returns the numeric value of r for field f. A null critic score reports false.
func (r GameRecord) Value(f Field) (float64, bool) {
	switch f {
	case FieldCriticScore:
		if r.CriticScore == nil {
			return 0, false
		}
		return *r.CriticScore, true
	case FieldNASales:
		return r.NASales, true
	case FieldPALSales:
		return r.PALSales, true
	case FieldJPSales:
		return r.JPSales, true
	case FieldOtherSales:
		return r.OtherSales, true
	case FieldTotalSales:
		return r.TotalSales, true
	}
	return 0, false
}
