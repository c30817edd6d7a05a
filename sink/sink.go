package sink

import (
	"errors"
	"fmt"

	"github.com/opd-ai/ivfplay/limits"
)

// Picture is one converted frame handed to a sink.
type Picture struct {
	Index  int    // presentation ordinal, starting at 0
	Chunk  int    // container position of the chunk that produced it
	PTS    uint64 // container timestamp of that chunk
	Width  int
	Height int
	Pix    []byte // RGBA8, row-major, Width*Height*4 bytes
}

// Validate checks that Pix matches the declared size.
func (p *Picture) Validate() error {
	if p == nil {
		return ErrInvalidPicture
	}
	if want := limits.RGBASize(p.Width, p.Height); p.Width <= 0 || p.Height <= 0 || len(p.Pix) != want {
		return fmt.Errorf("%w: %dx%d with %d bytes", ErrInvalidPicture, p.Width, p.Height, len(p.Pix))
	}
	return nil
}

// Sink consumes converted pictures in presentation order.
type Sink interface {
	Present(p *Picture) error
	Close() error
}

var (
	// ErrInvalidPicture indicates a picture whose buffer does not match its size.
	ErrInvalidPicture = errors.New("invalid picture")

	// ErrSinkClosed indicates Present after Close.
	ErrSinkClosed = errors.New("sink closed")
)

// Multi fans every picture out to several sinks in order.
type Multi struct {
	sinks []Sink
}

// NewMulti returns a sink that presents to each of sinks.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Present stops at the first failing sink.
func (m *Multi) Present(p *Picture) error {
	for i, s := range m.sinks {
		if err := s.Present(p); err != nil {
			return fmt.Errorf("sink %d: %w", i, err)
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard counts pictures and drops them.
type Discard struct {
	Count int
	Bytes int64
}

func (d *Discard) Present(p *Picture) error {
	if err := p.Validate(); err != nil {
		return err
	}
	d.Count++
	d.Bytes += int64(len(p.Pix))
	return nil
}

func (d *Discard) Close() error { return nil }
