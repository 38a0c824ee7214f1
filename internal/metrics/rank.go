package metrics

import "sort"

// SortDesc orders all entries by value, largest first. Equal values keep
// first-encountered order.
func SortDesc(r Result) []Entry {
	entries := r.Entries()
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })
	return entries
}

// TopN returns at most n entries of r by descending value. n <= 0 yields an empty slice.
func TopN(r Result, n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	entries := SortDesc(r)
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// Ratio returns num/den, or ErrDivisionByZero when den is zero.
func Ratio(num, den float64) (float64, error) {
	if den == 0 {
		return 0, ErrDivisionByZero
	}
	return num / den, nil
}

// Share is Ratio as a percentage of whole.
func Share(part, whole float64) (float64, error) {
	r, err := Ratio(part, whole)
	if err != nil {
		return 0, err
	}
	return r * 100, nil
}
