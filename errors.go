package ivfplay

import "errors"

// Sentinel errors for playback operations.
// These errors enable reliable error classification using errors.Is().

// Configuration errors.
var (
	// ErrInvalidOptions indicates an Options value that failed validation.
	ErrInvalidOptions = errors.New("invalid options")
)

// Playback errors.
var (
	// ErrPlayerClosed indicates use of a Player after Close.
	ErrPlayerClosed = errors.New("player closed")

	// ErrNilSink indicates a Player constructed without a sink.
	ErrNilSink = errors.New("nil sink")

	// ErrPresent wraps a sink failure, which stops playback.
	ErrPresent = errors.New("present failed")
)
