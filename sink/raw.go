package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// RawWriter writes pictures back to back as raw RGBA8, the format ffplay and
// ffmpeg read with -f rawvideo -pixel_format rgba.
type RawWriter struct {
	w      *bufio.Writer
	closer io.Closer
	width  int
	height int
	frames int
	closed bool
}

// NewRawWriter writes to w. Close flushes but does not close w.
func NewRawWriter(w io.Writer) *RawWriter {
	return &RawWriter{w: bufio.NewWriterSize(w, 1<<20)}
}

// CreateRawFile creates or truncates path and writes to it. Close closes the file.
func CreateRawFile(path string) (*RawWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create raw output: %w", err)
	}
	r := NewRawWriter(f)
	r.closer = f
	return r, nil
}

// Present appends the picture. All pictures in one stream must share a size.
func (r *RawWriter) Present(p *Picture) error {
	if r.closed {
		return ErrSinkClosed
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if r.frames == 0 {
		r.width, r.height = p.Width, p.Height
	} else if p.Width != r.width || p.Height != r.height {
		return fmt.Errorf("%w: size changed from %dx%d to %dx%d", ErrInvalidPicture, r.width, r.height, p.Width, p.Height)
	}
	if _, err := r.w.Write(p.Pix); err != nil {
		return fmt.Errorf("write frame %d: %w", p.Index, err)
	}
	r.frames++
	return nil
}

// Frames returns how many pictures were written.
func (r *RawWriter) Frames() int {
	return r.frames
}

// Close flushes buffered data and closes an owned file.
func (r *RawWriter) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.w.Flush()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
