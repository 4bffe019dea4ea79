package loader

import (
	"errors"
	"fmt"
)

// errShort is returned internally whenever the cursor runs past the
// end of the buffer; callers translate it into an InvalidBinaryError
// with a field-specific reason.
var errShort = errors.New("unexpected end of binary")

// InvalidBinaryError reports a structural problem with the binary:
// truncation, or a declared segment size that doesn't fit the rest of
// the slice.
type InvalidBinaryError struct {
	Reason string
}

func (e *InvalidBinaryError) Error() string {
	return fmt.Sprintf("invalid binary: %s", e.Reason)
}

// MachineMismatchError reports a header whose machine name or version
// doesn't match what this loader accepts.
type MachineMismatchError struct {
	Field    string
	Expected string
	Got      string
}

func (e *MachineMismatchError) Error() string {
	return fmt.Sprintf("machine mismatch: %s: expected %q, got %q", e.Field, e.Expected, e.Got)
}
