// Package real provides the production VP9 decode engine for ivfplay.
//
// This package implements the interfaces.IDecodeEngine interface on top of
// libvpx, loaded at runtime with purego so the module builds without cgo or
// libvpx headers. It serves as the production implementation, distinct from
// the simulated engine used for testing.
//
// # Architecture
//
//	┌─────────────────────────────────────────┐
//	│              LibvpxEngine               │
//	│  ┌─────────────┐  ┌─────────────────┐   │
//	│  │ vpx_codec_  │  │  vpx_image_t →  │   │
//	│  │   ctx_t     │  │   video.Frame   │   │
//	│  └─────────────┘  └─────────────────┘   │
//	└───────────────┬─────────────────────────┘
//	                │ purego
//	                ▼
//	┌─────────────────────────────────────────┐
//	│     libvpx shared library (VP9 dx)      │
//	└─────────────────────────────────────────┘
//
// # Usage
//
//	engine, err := real.NewLibvpxEngine(&interfaces.EngineConfig{
//	    Threads:    2,
//	    ABIVersion: interfaces.DefaultABIVersion,
//	})
//	if errors.Is(err, real.ErrLibraryUnavailable) {
//	    // fall back to another engine or report
//	}
//
// # Library Discovery
//
// EngineConfig.LibraryPath, when set, is the only library tried. Otherwise
// the platform names are searched: libvpx.so and its common sonames on
// Linux, libvpx.dylib plus the Homebrew prefixes on macOS. The first library
// that resolves every required symbol is cached for the process.
//
// # Memory
//
// Decoded frames alias memory owned by libvpx. A frame is valid until the
// next Submit or Destroy; the release function only drops the Go view.
// Struct mirrors assume a 64-bit platform, so the engine is built for
// amd64 and arm64 on Linux and macOS. Elsewhere NewLibvpxEngine returns
// ErrLibraryUnavailable.
package real
