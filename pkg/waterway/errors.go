package waterway

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset indicates Compile was handed no dataset at all.
var ErrEmptyDataset = errors.New("waterway: nil dataset")

// ErrMissingFeatures indicates the input document has no "features" array.
var ErrMissingFeatures = errors.New(`waterway: input document has no "features" array`)

// ErrNoInput indicates the input location does not exist.
type ErrNoInput struct {
	Path string
}

func (e *ErrNoInput) Error() string {
	return fmt.Sprintf("input file %q does not exist", e.Path)
}
