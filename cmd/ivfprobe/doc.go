// Package main provides the ivfprobe command, which summarizes IVF files and
// their VP9 frame headers without decoding them.
//
// Usage:
//
//	ivfprobe [-j N] [-v] file.ivf...
//
// Files are probed concurrently and reported in argument order. The exit
// status is 1 when any file could not be read.
package main
