//go:build (linux || darwin) && (amd64 || arm64)

package real

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/ivfplay/interfaces"
	"github.com/opd-ai/ivfplay/video"
)

// vpx_codec_err_t values used here.
const (
	vpxCodecOK           = 0
	vpxCodecInvalidParam = 8
)

// library holds the libvpx entry points resolved from one shared object.
type library struct {
	path string

	vp9Dx       func() unsafe.Pointer
	decInitVer  func(ctx *vpxCodecCtx, iface unsafe.Pointer, cfg *vpxDecoderConfig, flags int64, ver int32) int32
	decode      func(ctx *vpxCodecCtx, data *byte, size uint32, userPriv uintptr, deadline int64) int32
	getFrame    func(ctx *vpxCodecCtx, iter *interfaces.Cursor) unsafe.Pointer
	destroy     func(ctx *vpxCodecCtx) int32
	errorText   func(ctx *vpxCodecCtx) string
	errorDetail func(ctx *vpxCodecCtx) string
	versionStr  func() string
}

var (
	libraries   = make(map[string]*library)
	librariesMu sync.Mutex
)

// loadLibrary opens the first candidate that resolves and caches it.
func loadLibrary(candidates []string) (*library, error) {
	librariesMu.Lock()
	defer librariesMu.Unlock()

	key := strings.Join(candidates, "\x00")
	if lib, ok := libraries[key]; ok {
		return lib, nil
	}

	var lastErr error
	for _, path := range candidates {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastErr = err
			continue
		}
		lib, err := bindLibrary(handle, path)
		if err != nil {
			purego.Dlclose(handle)
			lastErr = err
			continue
		}
		libraries[key] = lib
		logrus.WithFields(logrus.Fields{
			"function": "loadLibrary",
			"path":     path,
			"version":  lib.versionStr(),
		}).Info("Loaded libvpx")
		return lib, nil
	}
	return nil, fmt.Errorf("%w: tried %s: %v", ErrLibraryUnavailable, strings.Join(candidates, ", "), lastErr)
}

func bindLibrary(handle uintptr, path string) (*library, error) {
	symbols := []string{
		"vpx_codec_vp9_dx", "vpx_codec_dec_init_ver", "vpx_codec_decode",
		"vpx_codec_get_frame", "vpx_codec_destroy", "vpx_codec_error",
		"vpx_codec_error_detail", "vpx_codec_version_str",
	}
	for _, name := range symbols {
		if _, err := purego.Dlsym(handle, name); err != nil {
			return nil, fmt.Errorf("%s: missing symbol %s: %w", path, name, err)
		}
	}

	lib := &library{path: path}
	purego.RegisterLibFunc(&lib.vp9Dx, handle, "vpx_codec_vp9_dx")
	purego.RegisterLibFunc(&lib.decInitVer, handle, "vpx_codec_dec_init_ver")
	purego.RegisterLibFunc(&lib.decode, handle, "vpx_codec_decode")
	purego.RegisterLibFunc(&lib.getFrame, handle, "vpx_codec_get_frame")
	purego.RegisterLibFunc(&lib.destroy, handle, "vpx_codec_destroy")
	purego.RegisterLibFunc(&lib.errorText, handle, "vpx_codec_error")
	purego.RegisterLibFunc(&lib.errorDetail, handle, "vpx_codec_error_detail")
	purego.RegisterLibFunc(&lib.versionStr, handle, "vpx_codec_version_str")
	return lib, nil
}

// LibvpxEngine implements interfaces.IDecodeEngine with the VP9 decoder of
// a libvpx shared library loaded at runtime.
type LibvpxEngine struct {
	lib    *library
	ctx    *vpxCodecCtx
	cfg    *vpxDecoderConfig
	config *interfaces.EngineConfig
	name   string

	destroyed bool
	mu        sync.Mutex
}

// NewLibvpxEngine loads libvpx and initializes a VP9 decoder.
func NewLibvpxEngine(config *interfaces.EngineConfig) (*LibvpxEngine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	lib, err := loadLibrary(defaultCandidates(config.LibraryPath))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewLibvpxEngine",
			"override": config.LibraryPath,
			"error":    err.Error(),
		}).Error("Failed to load libvpx")
		return nil, err
	}

	e := &LibvpxEngine{
		lib:    lib,
		ctx:    new(vpxCodecCtx),
		cfg:    &vpxDecoderConfig{Threads: uint32(config.Threads)},
		config: config,
		name:   "libvpx " + lib.versionStr(),
	}

	rc := lib.decInitVer(e.ctx, lib.vp9Dx(), e.cfg, 0, int32(config.ABIVersion))
	if rc != vpxCodecOK {
		detail := lib.errorText(e.ctx)
		logrus.WithFields(logrus.Fields{
			"function":    "NewLibvpxEngine",
			"code":        rc,
			"abi_version": config.ABIVersion,
			"error":       detail,
		}).Error("VP9 decoder initialization failed")
		return nil, fmt.Errorf("%w: status %d: %s", ErrInitFailed, rc, detail)
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewLibvpxEngine",
		"library":  lib.path,
		"threads":  config.Threads,
	}).Info("Created libvpx VP9 decoder")
	return e, nil
}

// Submit implements IDecodeEngine.Submit
func (e *LibvpxEngine) Submit(data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return ErrEngineDestroyed
	}
	if uint64(len(data)) > math.MaxUint32 {
		return &interfaces.EngineError{Code: vpxCodecInvalidParam, Detail: "chunk larger than 4 GiB"}
	}

	var ptr *byte
	if len(data) > 0 {
		ptr = &data[0]
	}
	rc := e.lib.decode(e.ctx, ptr, uint32(len(data)), 0, 0)
	runtime.KeepAlive(data)
	if rc != vpxCodecOK {
		detail := e.lib.errorDetail(e.ctx)
		if detail == "" {
			detail = e.lib.errorText(e.ctx)
		}
		return &interfaces.EngineError{Code: int(rc), Detail: detail}
	}
	return nil
}

// Poll implements IDecodeEngine.Poll
func (e *LibvpxEngine) Poll(cursor *interfaces.Cursor) (*video.Frame, interfaces.ReleaseFunc, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return nil, nil, false
	}
	p := e.lib.getFrame(e.ctx, cursor)
	if p == nil {
		return nil, nil, false
	}
	frame := frameFromImage((*vpxImage)(p))

	// libvpx owns the image until the next decode call; releasing only drops
	// the caller's view of it.
	release := func() {
		frame.Y, frame.U, frame.V = nil, nil, nil
	}
	return frame, release, true
}

// Destroy implements IDecodeEngine.Destroy
func (e *LibvpxEngine) Destroy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return ErrEngineDestroyed
	}
	e.destroyed = true
	rc := e.lib.destroy(e.ctx)
	runtime.KeepAlive(e.cfg)
	if rc != vpxCodecOK {
		return &interfaces.EngineError{Code: int(rc), Detail: "vpx_codec_destroy failed"}
	}

	logrus.WithFields(logrus.Fields{
		"function": "LibvpxEngine.Destroy",
		"library":  e.lib.path,
	}).Info("Destroyed libvpx VP9 decoder")
	return nil
}

// Name implements IDecodeEngine.Name
func (e *LibvpxEngine) Name() string {
	return e.name
}
