package tileterm

import (
	"errors"
	"fmt"
)

// Errors returned by tileterm operations.
var (
	// ErrResourceLoad is returned when the atlas image is missing,
	// cannot be decoded, or does not have the 16x16 slot layout.
	ErrResourceLoad = errors.New("tileterm: resource load failed")

	// ErrIndexOutOfRange is returned when a write addresses a cell outside
	// the grid or a layer outside [0, MaxDepth).
	ErrIndexOutOfRange = errors.New("tileterm: index out of range")

	// ErrBackend is returned when the graphics backend fails to create a
	// surface, accept the atlas, or draw a frame.
	ErrBackend = errors.New("tileterm: backend failure")

	// ErrInvalidDimensions is returned when grid or cell sizes are not
	// positive.
	ErrInvalidDimensions = errors.New("tileterm: invalid dimensions")

	// ErrClosed is returned by operations on a closed Renderer.
	ErrClosed = errors.New("tileterm: renderer is closed")

	// ErrNoBackend is returned when no backend was supplied and none is
	// registered.
	ErrNoBackend = fmt.Errorf("%w: no backend available", ErrBackend)
)

// IndexError describes a rejected cell address.
type IndexError struct {
	X, Y, Z       int
	Width, Height int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("tileterm: cell (%d, %d, z=%d) outside %dx%d grid with %d layers",
		e.X, e.Y, e.Z, e.Width, e.Height, MaxDepth)
}

// Is reports whether target is ErrIndexOutOfRange.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// backendError wraps err from the named backend operation into ErrBackend.
func backendError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBackend, op, err)
}
