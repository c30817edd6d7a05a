// Package interfaces defines the boundary between ivfplay and an external
// video decoding engine.
//
// This package provides the abstraction that lets the decode session run
// against either a native decoder library or an in-process simulation,
// supporting both real playback and deterministic testing.
//
// # Core Interface
//
// [IDecodeEngine] is a narrow "accept coded bytes, produce zero or more
// decoded images" capability:
//
//	engine, err := factory.NewEngineFactory().CreateEngine()
//	if err != nil {
//	    return err
//	}
//	defer engine.Destroy()
//
//	if err := engine.Submit(chunk); err != nil {
//	    return err
//	}
//	var cur interfaces.Cursor
//	for {
//	    frame, release, ok := engine.Poll(&cur)
//	    if !ok {
//	        break
//	    }
//	    use(frame)
//	    release()
//	}
//
// The Cursor starts at zero for every submission and is owned by the caller.
// Frames may alias engine memory and are valid only until their ReleaseFunc
// runs, the next Submit, or Destroy. Most code should use vpx.Session, which
// enforces these rules, rather than an engine directly.
//
// # Errors
//
// Engines report status codes through [EngineError], using the libvpx
// vpx_codec_err_t numbering. Any other error from Submit is treated as a
// generic decoder failure by the session.
//
// # Configuration
//
// [EngineConfig] selects and tunes an implementation:
//
//	config := &interfaces.EngineConfig{
//	    UseSimulation: false,
//	    LibraryPath:   "",  // search the platform default names
//	    Threads:       2,
//	    ABIVersion:    interfaces.DefaultABIVersion,
//	}
//	if err := config.Validate(); err != nil {
//	    log.Fatalf("invalid config: %v", err)
//	}
//
// # Implementation Selection
//
// The factory package creates implementations based on configuration:
//   - UseSimulation=true: Creates SimulatedEngine from the testing package
//   - UseSimulation=false: Creates LibvpxEngine from the real package
//
// # Thread Safety
//
// Engines are not safe for concurrent use. A session owns its engine and
// drives it from a single goroutine.
package interfaces
