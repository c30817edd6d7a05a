// Package vpx provides the decode session that drives a VP9 decoding engine,
// plus inspection helpers for VP9 bitstreams.
//
// # Decode Session
//
// A [Session] wraps one interfaces.IDecodeEngine and accepts coded chunks one
// at a time. Each successful [Session.Submit] returns a [Frames] sequence of
// the images the chunk decoded to; a chunk may produce none, one or several.
//
//	session, err := vpx.NewSession(engine)
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	frames, err := session.Submit(chunk.Data)
//	if errors.Is(err, vpx.ErrDecode) {
//	    // skip the chunk, the session is still usable
//	}
//	for img := range frames.All() {
//	    pix, err := img.ToRGBA()
//	    ...
//	}
//
// # Image Lifetime
//
// An [Image] borrows planes from the engine. It is released when the
// sequence advances, when the sequence is closed, or when the session is
// closed, whichever happens first. Convert or copy what you need before
// advancing.
//
// Only one sequence may be live at a time. Submitting while the previous
// sequence has neither ended nor been abandoned with [Frames.Close] returns
// [ErrSubmissionInFlight] and leaves the engine untouched.
//
// # Errors
//
// Engine failures surface as *[DecodeError] carrying a libvpx-style
// [ErrorCode]; errors.Is(err, ErrDecode) matches all of them. A decode error
// affects only the chunk that caused it.
//
// # Bitstream Inspection
//
// [SplitSuperframe] separates the frames packed into one chunk and
// [ParseFrameHeader] reads the uncompressed header of a frame (profile, frame
// type, bit depth, colour configuration and size) without decoding it.
package vpx
