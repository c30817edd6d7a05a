// Package sink provides destinations for converted RGBA8 pictures.
//
// Every sink implements [Sink]: Present receives pictures in presentation
// order and Close flushes. Pictures are owned by the caller again once
// Present returns, so sinks copy or encode immediately.
//
//   - [RawWriter] concatenates raw RGBA8 frames (ffplay -f rawvideo -pixel_format rgba)
//   - [PNGWriter] writes one PNG file per frame
//   - [Digest] prints a BLAKE2b-256 line per frame plus a total, for regression checks
//   - [Multi] fans out to several sinks
//   - [Discard] only counts
package sink
