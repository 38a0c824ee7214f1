package metrics

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
)

var (
	// ErrDivisionByZero is returned by Ratio and Share when the denominator is zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrEmptyResult is returned when a whole-dataset statistic has no values to work on.
	ErrEmptyResult = errors.New("empty result")
	// ErrUnknownFunc is returned for an aggregation name other than sum, mean, median or count.
	ErrUnknownFunc = errors.New("unknown aggregation")
)

// FieldError reports a field used in the wrong role, e.g. a sales column as a group key.
type FieldError struct {
	Field dataset.Field
	Role  string // "group" or "value"
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q cannot be used as a %s field", e.Field, e.Role)
}

func checkGroup(f dataset.Field) error {
	if !f.IsGroup() {
		return &FieldError{Field: f, Role: "group"}
	}
	return nil
}

func checkValue(f dataset.Field) error {
	if !f.IsValue() {
		return &FieldError{Field: f, Role: "value"}
	}
	return nil
}
