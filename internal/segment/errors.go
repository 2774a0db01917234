package segment

import (
	"errors"
	"fmt"
)

// ErrRowOutOfRange is matched by every *RowIndexError.
var ErrRowOutOfRange = errors.New("row index out of range")

// RowIndexError reports an attempt to change a row that does not exist.
type RowIndexError struct {
	Index int // Requested index
	Len   int // Number of rows at the time of the call
}

// Error implements the error interface
func (e *RowIndexError) Error() string {
	return fmt.Sprintf("row index %d out of range [0, %d)", e.Index, e.Len)
}

// Is makes errors.Is(err, ErrRowOutOfRange) succeed.
func (e *RowIndexError) Is(target error) bool {
	return target == ErrRowOutOfRange
}

// IsRowIndexError checks if an error is a row index error
func IsRowIndexError(err error) bool {
	var rowErr *RowIndexError
	return errors.As(err, &rowErr)
}
