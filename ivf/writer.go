package ivf

import (
	"fmt"
	"io"
	"math"

	"github.com/opd-ai/ivfplay/limits"
)

// Writer produces an IVF stream. The header's FrameCount field is written as
// the number of frames announced up front; readers do not rely on it.
type Writer struct {
	w      io.Writer
	frames int
	closed bool
}

// NewWriter writes header to w and returns a Writer for the frames.
// Magic, HeaderSize and FourCC are filled in when left zero.
func NewWriter(w io.Writer, header FileHeader) (*Writer, error) {
	if header.Magic == ([4]byte{}) {
		header.Magic = Magic
	}
	if header.HeaderSize == 0 {
		header.HeaderSize = limits.FileHeaderSize
	}
	if header.FourCC == 0 {
		header.FourCC = FourCCVP9
	}
	if _, err := w.Write(header.marshal()); err != nil {
		return nil, fmt.Errorf("%w: writing header: %v", ErrIO, err)
	}
	return &Writer{w: w}, nil
}

// WriteFrame appends one chunk with the given timestamp.
func (w *Writer) WriteFrame(data []byte, timestamp uint64) error {
	if w.closed {
		return ErrClosed
	}
	if uint64(len(data)) > math.MaxUint32 {
		return fmt.Errorf("frame of %d bytes does not fit a chunk header", len(data))
	}

	hdr := ChunkHeader{Size: uint32(len(data)), Timestamp: timestamp}
	if _, err := w.w.Write(hdr.marshal()); err != nil {
		return fmt.Errorf("%w: writing chunk %d header: %v", ErrIO, w.frames, err)
	}
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("%w: writing chunk %d payload: %v", ErrIO, w.frames, err)
	}
	w.frames++
	return nil
}

// Frames returns the number of chunks written.
func (w *Writer) Frames() int {
	return w.frames
}

// Close marks the Writer finished. It does not close the underlying writer.
func (w *Writer) Close() error {
	w.closed = true
	return nil
}
