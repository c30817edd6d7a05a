// Package testing provides a simulated decode engine for deterministic
// testing of ivfplay.
//
// # Overview
//
// This package implements interfaces.IDecodeEngine entirely in memory. It
// mirrors the protocol of a native decoder (submit, poll with a cursor,
// release, destroy) without any codec, so session and playback tests run
// without a shared library and produce exact, checkable pixels.
//
// # Simulation vs Real Implementation
//
// ivfplay supports two engine modes:
//
//   - Simulation (this package): chunks carry raw pictures that decode back
//     verbatim. Used for unit and integration testing.
//
//   - Real (real package): chunks are VP9 and are decoded by libvpx loaded
//     at runtime. Used for actual playback.
//
// Both implementations conform to the interfaces.IDecodeEngine interface,
// allowing seamless switching via the factory package.
//
// # Usage
//
// Build chunks from frames and feed them through a session:
//
//	chunk, _ := testsim.EncodePassthrough(
//	    testsim.SolidFrame(64, 48, 16, 128, 128),
//	    testsim.SolidFrame(64, 48, 235, 128, 128),
//	)
//	engine := testsim.NewSimulatedEngine(nil)
//	session, _ := vpx.NewSession(engine)
//	frames, _ := session.Submit(chunk) // two images
//
// # Fault Injection
//
// FailOn makes a chosen submission fail with a status code; malformed chunks
// fail with the corrupt-frame code. SetPadding widens strides and buffers so
// converters are tested against padded planes, and SetHoldBack delays output
// by one submission to exercise end-of-stream flushing.
//
// # Verification
//
// Stats reports produced, released and outstanding images plus any
// submission made while images were still held, so tests can check that
// every image is released on every path.
//
// # Thread Safety
//
// The engine guards its state with a mutex; release functions may be called
// from any goroutine.
package testing
