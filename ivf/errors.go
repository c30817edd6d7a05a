package ivf

import "errors"

// Open errors. Any of these makes the container unusable.
var (
	// ErrFormat indicates the stream does not start with a complete IVF header.
	ErrFormat = errors.New("not an IVF stream")

	// ErrUnsupportedCodec indicates a fourcc other than VP90.
	ErrUnsupportedCodec = errors.New("unsupported codec")

	// ErrInvalidDimensions indicates a zero width or height in the header.
	ErrInvalidDimensions = errors.New("invalid frame dimensions")
)

// Read errors.
var (
	// ErrIO indicates a read failure other than running out of data.
	ErrIO = errors.New("IO error")

	// ErrClosed indicates use of a Reader or Writer after Close.
	ErrClosed = errors.New("container closed")
)
