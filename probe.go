package ivfplay

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/ivfplay/ivf"
	"github.com/opd-ai/ivfplay/video"
	"github.com/opd-ai/ivfplay/vpx"
)

// ProbeReport summarizes a container and its VP9 bitstream without decoding.
type ProbeReport struct {
	Path   string
	Header ivf.FileHeader

	Chunks    int
	Bytes     int64 // payload bytes, chunk headers excluded
	Truncated bool

	FirstPTS uint64
	LastPTS  uint64

	Frames       int // VP9 frames, counting each superframe member
	Superframes  int
	KeyFrames    int
	HiddenFrames int // frames with show_frame unset
	ShowExisting int
	HeaderErrors int

	// FirstKeyFrame is the chunk index of the first key frame, or -1.
	FirstKeyFrame int
	// KeyHeader is the header of the first key frame, nil when none parsed.
	KeyHeader *vpx.FrameHeader
}

// Probe reads the file at path and inspects every chunk's frame headers.
// Only container errors are returned; malformed bitstream data is counted in
// HeaderErrors.
func Probe(path string) (*ProbeReport, error) {
	reader, err := ivf.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return probeReader(reader, path)
}

func probeReader(reader *ivf.Reader, path string) (*ProbeReport, error) {
	report := &ProbeReport{
		Path:          path,
		Header:        reader.Header(),
		FirstKeyFrame: -1,
	}

	for {
		chunk, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if report.Chunks == 0 {
			report.FirstPTS = chunk.Timestamp
		}
		report.Chunks++
		report.Bytes += int64(len(chunk.Data))
		report.LastPTS = chunk.Timestamp
		report.inspect(chunk)
	}
	report.Truncated = reader.Truncated()

	logrus.WithFields(logrus.Fields{
		"function":  "Probe",
		"path":      path,
		"chunks":    report.Chunks,
		"frames":    report.Frames,
		"truncated": report.Truncated,
	}).Debug("Probe complete")
	return report, nil
}

func (r *ProbeReport) inspect(chunk *ivf.Chunk) {
	parts, err := vpx.SplitSuperframe(chunk.Data)
	if err != nil {
		r.HeaderErrors++
		return
	}
	if len(parts) > 1 {
		r.Superframes++
	}
	for _, part := range parts {
		r.Frames++
		h, err := vpx.ParseFrameHeader(part)
		if err != nil {
			r.HeaderErrors++
			continue
		}
		switch {
		case h.ShowExistingFrame:
			r.ShowExisting++
			continue
		case !h.ShowFrame:
			r.HiddenFrames++
		}
		if h.KeyFrame {
			r.KeyFrames++
			if r.KeyHeader == nil {
				r.KeyHeader = h
				r.FirstKeyFrame = chunk.Index
			}
		}
	}
}

// Duration is the span between the first and last chunk timestamps.
func (r *ProbeReport) Duration() time.Duration {
	if r.Chunks < 2 || r.Header.TimebaseDen == 0 || r.LastPTS <= r.FirstPTS {
		return 0
	}
	ticks := float64(r.LastPTS - r.FirstPTS)
	secs := ticks * float64(r.Header.TimebaseNum) / float64(r.Header.TimebaseDen)
	return time.Duration(secs * float64(time.Second))
}

// Convertible reports whether the first key frame decodes to a layout the
// RGBA converter accepts.
func (r *ProbeReport) Convertible() bool {
	return r.KeyHeader != nil && r.KeyHeader.PixelFormat() == video.FormatI420
}

// Format writes a human-readable report.
func (r *ProbeReport) Format(w io.Writer) error {
	_, err := io.WriteString(w, r.String())
	return err
}

func (r *ProbeReport) String() string {
	var b strings.Builder
	h := r.Header
	fmt.Fprintf(&b, "%s\n", r.Path)
	fmt.Fprintf(&b, "  codec:      %s %dx%d\n", h.FourCC, h.Width, h.Height)
	fmt.Fprintf(&b, "  timebase:   %d/%d\n", h.TimebaseNum, h.TimebaseDen)
	fmt.Fprintf(&b, "  chunks:     %d (header says %d)\n", r.Chunks, h.FrameCount)
	fmt.Fprintf(&b, "  bytes:      %d\n", r.Bytes)
	fmt.Fprintf(&b, "  duration:   %s\n", r.Duration())
	fmt.Fprintf(&b, "  frames:     %d (%d key, %d hidden, %d show-existing, %d superframes)\n",
		r.Frames, r.KeyFrames, r.HiddenFrames, r.ShowExisting, r.Superframes)
	if k := r.KeyHeader; k != nil {
		fmt.Fprintf(&b, "  first key:  chunk %d, profile %d, %d-bit %s, %s %s range\n",
			r.FirstKeyFrame, k.Profile, k.BitDepth, k.PixelFormat(), k.ColorSpace, k.ColorRange)
		fmt.Fprintf(&b, "  frame size: %dx%d render %dx%d\n", k.Width, k.Height, k.RenderWidth, k.RenderHeight)
	} else {
		b.WriteString("  first key:  none\n")
	}
	fmt.Fprintf(&b, "  convertible: %t\n", r.Convertible())
	if r.HeaderErrors > 0 {
		fmt.Fprintf(&b, "  header errors: %d\n", r.HeaderErrors)
	}
	if r.Truncated {
		b.WriteString("  truncated: last chunk incomplete\n")
	}
	return b.String()
}
