//go:build !((linux || darwin) && (amd64 || arm64))

package real

import (
	"fmt"
	"runtime"

	"github.com/opd-ai/ivfplay/interfaces"
	"github.com/opd-ai/ivfplay/video"
)

// LibvpxEngine is unavailable on this platform.
type LibvpxEngine struct{}

// NewLibvpxEngine always fails on platforms without runtime library loading.
func NewLibvpxEngine(config *interfaces.EngineConfig) (*LibvpxEngine, error) {
	return nil, fmt.Errorf("%w: unsupported platform %s/%s", ErrLibraryUnavailable, runtime.GOOS, runtime.GOARCH)
}

func (*LibvpxEngine) Submit([]byte) error { return ErrLibraryUnavailable }

func (*LibvpxEngine) Poll(*interfaces.Cursor) (*video.Frame, interfaces.ReleaseFunc, bool) {
	return nil, nil, false
}

func (*LibvpxEngine) Destroy() error { return ErrLibraryUnavailable }
func (*LibvpxEngine) Name() string   { return "libvpx (unavailable)" }
