package chunk

import (
	"errors"
	"fmt"
)

// ErrTargetOnArray indicates a chunk target key was supplied for an input
// document whose top level is an array.
var ErrTargetOnArray = errors.New("chunk: can't use a chunk target for an array document")

// ErrTopLevelScalar indicates the input document is neither an object nor an
// array.
var ErrTopLevelScalar = errors.New("chunk: document must be a JSON object or array")

// ErrOutputRequired indicates the input came from stdin and no output path
// was given to write results to.
var ErrOutputRequired = errors.New("chunk: output path required when reading from stdin")

// ErrNoSuchTarget indicates the requested chunk target key is not present in
// the document.
type ErrNoSuchTarget struct {
	Target string
}

func (e *ErrNoSuchTarget) Error() string {
	return fmt.Sprintf("invalid chunk target %q: no such key", e.Target)
}

// ErrBadTargetType indicates the chunk target is neither an array nor an
// object.
type ErrBadTargetType struct {
	Target string
}

func (e *ErrBadTargetType) Error() string {
	return fmt.Sprintf("chunk target %q is not an array or object", e.Target)
}

// ErrCountMismatch indicates rows were lost or duplicated while chunking.
// This is a logical invariant violation and always fatal.
type ErrCountMismatch struct {
	Want, Got int
}

func (e *ErrCountMismatch) Error() string {
	return fmt.Sprintf("chunking error: expected %d rows, but got %d", e.Want, e.Got)
}

// ErrNoInput indicates the input file does not exist.
type ErrNoInput struct {
	Path string
}

func (e *ErrNoInput) Error() string {
	return fmt.Sprintf("input file %q does not exist", e.Path)
}
