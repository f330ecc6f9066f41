package fluid

import "errors"

var (
	// ErrInvalidParams indicates a model constant outside its valid range.
	ErrInvalidParams = errors.New("fluid: invalid parameters")

	// ErrInvalidViewport indicates a non-positive or non-finite viewport size.
	ErrInvalidViewport = errors.New("fluid: invalid viewport")
)
