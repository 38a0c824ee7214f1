package dataset

import (
	"github.com/google/uuid"
)

// Dataset is an immutable, ordered set of records restricted to a release-year window.
// Callers must not modify the slice returned by Records.
type Dataset struct {
	id       uuid.UUID
	source   string
	yearMin  int
	yearMax  int
	records  []GameRecord
	rowsRead int
}

// New builds a Dataset from already-filtered records.
func New(source string, yearMin, yearMax int, records []GameRecord, rowsRead int) *Dataset {
	return &Dataset{
		id:       uuid.New(),
		source:   source,
		yearMin:  yearMin,
		yearMax:  yearMax,
		records:  records,
		rowsRead: rowsRead,
	}
}

// ID is the identity used to key cached aggregates.
func (d *Dataset) ID() string { return d.id.String() }

// Source is the path the dataset was loaded from, if any.
func (d *Dataset) Source() string { return d.source }

// YearRange returns the inclusive release-year window.
func (d *Dataset) YearRange() (int, int) { return d.yearMin, d.yearMax }

// Len is the number of records inside the window.
func (d *Dataset) Len() int { return len(d.records) }

// RowsRead is the number of data rows read before filtering.
func (d *Dataset) RowsRead() int { return d.rowsRead }

// Excluded is the number of rows dropped by the year filter.
func (d *Dataset) Excluded() int { return d.rowsRead - len(d.records) }

// Records exposes the underlying rows in file order.
func (d *Dataset) Records() []GameRecord { return d.records }

// Filter returns a new dataset with the rows for which keep returns true.
func (d *Dataset) Filter(keep func(GameRecord) bool) *Dataset {
	out := make([]GameRecord, 0, len(d.records))
	for _, r := range d.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return New(d.source, d.yearMin, d.yearMax, out, len(d.records))
}
