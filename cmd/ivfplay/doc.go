// Package main provides the ivfplay command, which decodes a VP9 IVF file and
// writes the converted RGBA pictures to raw, PNG or digest outputs.
//
// Usage:
//
//	ivfplay [options] input.ivf
//
// With no output flags the pictures are decoded, converted and counted only.
// Interrupting the command stops playback after the current chunk and still
// flushes the outputs.
package main
