package video

import "errors"

// Conversion errors. A failed conversion never returns a partial buffer.
var (
	// ErrUnsupportedPixelFormat indicates a frame that is not 8-bit planar 4:2:0.
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")

	// ErrInvalidImage indicates inconsistent frame metadata: zero or oversized
	// dimensions, strides narrower than a row, or planes too short.
	ErrInvalidImage = errors.New("invalid image")
)
