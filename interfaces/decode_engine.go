package interfaces

import (
	"errors"
	"fmt"

	"github.com/opd-ai/ivfplay/video"
)

// Cursor is the opaque iteration state passed to IDecodeEngine.Poll.
// A zero Cursor starts at the first image produced by the latest Submit.
type Cursor uintptr

// ReleaseFunc returns an image's planes to the engine. Calling it more than
// once has no further effect.
type ReleaseFunc func()

// IDecodeEngine defines the boundary to an external video decoding engine.
// This abstraction allows switching between the simulated engine and a
// native decoder library.
type IDecodeEngine interface {
	// Submit hands one coded chunk to the engine. An empty chunk asks the
	// engine to emit any frames it is still holding.
	Submit(data []byte) error

	// Poll returns the next decoded image for the latest submission, or
	// false when there are no more. Frames returned earlier for the same
	// submission must have been released.
	Poll(cursor *Cursor) (*video.Frame, ReleaseFunc, bool)

	// Destroy frees the engine. The engine must not be used afterwards.
	Destroy() error

	// Name returns a short human readable engine identifier
	Name() string
}

// EngineError carries a status code reported by an engine's Submit.
// Code values follow the libvpx vpx_codec_err_t numbering.
type EngineError struct {
	Code   int
	Detail string
}

func (e *EngineError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("engine status %d", e.Code)
	}
	return fmt.Sprintf("engine status %d: %s", e.Code, e.Detail)
}

// EngineConfig holds configuration for decode engine implementations
type EngineConfig struct {
	// UseSimulation selects the in-process simulated engine
	UseSimulation bool

	// LibraryPath overrides the shared library searched for the native engine
	LibraryPath string

	// Threads is the decoder thread count; zero lets the engine decide
	Threads int

	// ABIVersion is the decoder ABI version passed at initialization
	ABIVersion int
}

// DefaultABIVersion is the libvpx decoder ABI version this module's
// structure mirrors were written against.
const DefaultABIVersion = 12

// MaxDecodeThreads caps EngineConfig.Threads.
const MaxDecodeThreads = 64

var (
	// ErrInvalidThreads indicates a thread count outside [0, MaxDecodeThreads].
	ErrInvalidThreads = errors.New("invalid decode thread count")

	// ErrInvalidABIVersion indicates a non-positive ABI version.
	ErrInvalidABIVersion = errors.New("invalid decoder ABI version")
)

// Validate checks the configuration values.
func (c *EngineConfig) Validate() error {
	if c.Threads < 0 || c.Threads > MaxDecodeThreads {
		return fmt.Errorf("%w: %d", ErrInvalidThreads, c.Threads)
	}
	if c.ABIVersion <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidABIVersion, c.ABIVersion)
	}
	return nil
}
