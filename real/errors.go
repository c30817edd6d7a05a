package real

import "errors"

var (
	// ErrLibraryUnavailable indicates libvpx could not be loaded on this system.
	ErrLibraryUnavailable = errors.New("libvpx not available")

	// ErrInitFailed indicates vpx_codec_dec_init_ver rejected the decoder setup.
	ErrInitFailed = errors.New("decoder initialization failed")

	// ErrEngineDestroyed is returned by Submit and Destroy after Destroy.
	ErrEngineDestroyed = errors.New("libvpx engine destroyed")
)
