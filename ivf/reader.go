package ivf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/opd-ai/ivfplay/limits"
	"github.com/sirupsen/logrus"
)

// Reader demultiplexes an IVF stream into coded-frame chunks.
//
// The total frame count is discovered by reading until the data runs out;
// the FrameCount header field is not trusted because some muxers leave it
// at zero. Reader is not safe for concurrent use.
type Reader struct {
	r      *bufio.Reader
	closer io.Closer
	name   string
	header FileHeader

	framePos   int
	frameCount int
	countKnown bool
	truncated  bool
	closed     bool
}

// Open opens the named file and reads its IVF header.
// The returned Reader owns the file and closes it on Close.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Open",
			"path":     path,
			"error":    err.Error(),
		}).Error("Failed to open IVF file")
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	reader, err := newReader(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	reader.closer = f
	return reader, nil
}

// NewReader reads an IVF header from r. The caller keeps ownership of r.
func NewReader(r io.Reader) (*Reader, error) {
	return newReader(r, "")
}

func newReader(r io.Reader, name string) (*Reader, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	buf := make([]byte, limits.FileHeaderSize)
	if _, err := io.ReadFull(br, buf); err != nil {
		if isShortRead(err) {
			return nil, fmt.Errorf("%w: truncated header", ErrFormat)
		}
		return nil, fmt.Errorf("%w: reading header: %v", ErrIO, err)
	}

	header, err := parseFileHeader(buf)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewReader",
			"name":     name,
			"error":    err.Error(),
		}).Warn("Rejected IVF header")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":     "NewReader",
		"name":         name,
		"fourcc":       header.FourCC.String(),
		"width":        header.Width,
		"height":       header.Height,
		"timebase_num": header.TimebaseNum,
		"timebase_den": header.TimebaseDen,
		"header_count": header.FrameCount,
	}).Debug("Opened IVF stream")

	return &Reader{
		r:      br,
		name:   name,
		header: header,
	}, nil
}

// Next returns the next chunk, or io.EOF once the stream is exhausted.
//
// A short read of either the chunk header or its payload ends the stream:
// the frame count is frozen at the number of chunks returned so far and
// every later call returns io.EOF. Read failures that are not a lack of data
// are returned wrapped in ErrIO and leave the count unknown.
func (r *Reader) Next() (*Chunk, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if r.countKnown {
		return nil, io.EOF
	}

	hbuf := make([]byte, limits.ChunkHeaderSize)
	n, err := io.ReadFull(r.r, hbuf)
	if err != nil {
		if isShortRead(err) {
			r.endOfStream(n > 0)
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: chunk %d header: %v", ErrIO, r.framePos, err)
	}
	hdr := parseChunkHeader(hbuf)

	data, err := r.readPayload(int64(hdr.Size))
	if err != nil {
		if isShortRead(err) {
			logrus.WithFields(logrus.Fields{
				"function":      "Reader.Next",
				"name":          r.name,
				"chunk":         r.framePos,
				"declared_size": hdr.Size,
				"read_size":     len(data),
			}).Debug("Chunk payload cut short, treating as end of stream")
			r.endOfStream(true)
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: chunk %d payload: %v", ErrIO, r.framePos, err)
	}

	chunk := &Chunk{
		Index:     r.framePos,
		Timestamp: hdr.Timestamp,
		Data:      data,
	}
	r.framePos++
	return chunk, nil
}

// readPayload reads exactly size bytes without reserving more than
// limits.ChunkReadStep ahead of the data actually received.
func (r *Reader) readPayload(size int64) ([]byte, error) {
	if size <= limits.ChunkReadStep {
		buf := make([]byte, size)
		n, err := io.ReadFull(r.r, buf)
		return buf[:n], err
	}

	buf := make([]byte, 0, limits.ChunkReadStep)
	for remaining := size; remaining > 0; {
		step := remaining
		if step > limits.ChunkReadStep {
			step = limits.ChunkReadStep
		}
		start := len(buf)
		buf = append(buf, make([]byte, step)...)
		n, err := io.ReadFull(r.r, buf[start:])
		if err != nil {
			if err == io.EOF && start > 0 {
				err = io.ErrUnexpectedEOF
			}
			return buf[:start+n], err
		}
		remaining -= step
	}
	return buf, nil
}

func (r *Reader) endOfStream(truncated bool) {
	r.countKnown = true
	r.frameCount = r.framePos
	r.truncated = truncated

	logrus.WithFields(logrus.Fields{
		"function":    "Reader.endOfStream",
		"name":        r.name,
		"frame_count": r.frameCount,
		"truncated":   truncated,
	}).Debug("Reached end of IVF stream")
}

// FrameCount returns the number of chunks in the stream once end-of-stream
// has been reached. The second result is false while the count is unknown.
func (r *Reader) FrameCount() (int, bool) {
	return r.frameCount, r.countKnown
}

// FramePos returns how many chunks have been returned so far.
func (r *Reader) FramePos() int {
	return r.framePos
}

// Truncated reports whether the stream ended part-way through a chunk header
// or payload rather than on a chunk boundary. It is meaningful only once
// FrameCount is known.
func (r *Reader) Truncated() bool {
	return r.truncated
}

// Header returns the parsed file header.
func (r *Reader) Header() FileHeader {
	return r.header
}

// Width returns the frame width from the file header.
func (r *Reader) Width() uint16 { return r.header.Width }

// Height returns the frame height from the file header.
func (r *Reader) Height() uint16 { return r.header.Height }

// FourCC returns the codec identifier from the file header.
func (r *Reader) FourCC() FourCC { return r.header.FourCC }

// Name returns the path passed to Open, or "" for NewReader.
func (r *Reader) Name() string { return r.name }

// Close releases the underlying file when the Reader was created by Open.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func isShortRead(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
