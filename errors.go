package raymarch

import (
	"errors"
	"fmt"
)

// Sentinel errors for the raymarch package.
var (
	// ErrInvalidColoring is returned when a Coloring cannot be built from
	// its arguments (empty range, bad opacity, mismatched tables).
	ErrInvalidColoring = errors.New("raymarch: invalid coloring")

	// ErrUnknownPalette is returned when a palette name is not registered.
	ErrUnknownPalette = errors.New("raymarch: unknown palette")

	// ErrInvalidGrid is returned for non-positive spacing or shape, or when
	// the data length does not match the shape.
	ErrInvalidGrid = errors.New("raymarch: invalid grid")

	// ErrBufferMismatch is returned when a screen buffer and a camera
	// disagree on the image size.
	ErrBufferMismatch = errors.New("raymarch: buffer size does not match camera")

	// ErrNilInput is returned when a required argument is nil.
	ErrNilInput = errors.New("raymarch: nil input")
)

// SizeMismatchError describes a buffer/camera size disagreement.
type SizeMismatchError struct {
	BufferWidth, BufferHeight int
	CameraWidth, CameraHeight int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("raymarch: buffer is %dx%d, camera is %dx%d",
		e.BufferWidth, e.BufferHeight, e.CameraWidth, e.CameraHeight)
}

// Unwrap lets errors.Is match ErrBufferMismatch.
func (e *SizeMismatchError) Unwrap() error { return ErrBufferMismatch }
