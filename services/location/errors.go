package location

import "errors"

var (
	// ErrInvalidFix means a fix carried an out-of-range coordinate pair.
	// The fix is dropped; the stored record keeps its last good value.
	ErrInvalidFix = errors.New("fix coordinate out of range")

	// ErrUnknownMode means a publish mode switch named no known mode
	ErrUnknownMode = errors.New("unknown publish mode")
)
