package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is wrapped by DataLoadError when a required column is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrMalformed is wrapped when a cell cannot be parsed into its column type.
	ErrMalformed = errors.New("malformed value")
	// ErrUnsupported indicates an input format the loader does not read.
	ErrUnsupported = errors.New("unsupported dataset format")
)

// DataLoadError reports a fatal problem reading the dataset file.
type DataLoadError struct {
	Path   string
	Column string // set for column-level problems
	Row    int    // 1-based data row, 0 when not row-specific
	Err    error
}

func (e *DataLoadError) Error() string {
	if e == nil {
		return "data load error"
	}
	msg := fmt.Sprintf("load dataset %s", e.Path)
	if e.Row > 0 {
		msg += fmt.Sprintf(": row %d", e.Row)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(": column %q", e.Column)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }
