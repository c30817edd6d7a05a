package sink

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// PNGWriter stores each picture as its own PNG file in a directory.
type PNGWriter struct {
	dir     string
	pattern string
	encoder png.Encoder
	written []string
	closed  bool
}

// DefaultPNGPattern names files by presentation index.
const DefaultPNGPattern = "frame-%06d.png"

// NewPNGWriter creates dir if needed.
func NewPNGWriter(dir string) (*PNGWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create png directory: %w", err)
	}
	return &PNGWriter{
		dir:     dir,
		pattern: DefaultPNGPattern,
		encoder: png.Encoder{CompressionLevel: png.BestSpeed},
	}, nil
}

// Present encodes p to <dir>/frame-<index>.png.
func (w *PNGWriter) Present(p *Picture) error {
	if w.closed {
		return ErrSinkClosed
	}
	if err := p.Validate(); err != nil {
		return err
	}

	path := filepath.Join(w.dir, fmt.Sprintf(w.pattern, p.Index))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)

	img := &image.RGBA{Pix: p.Pix, Stride: p.Width * 4, Rect: image.Rect(0, 0, p.Width, p.Height)}
	err = w.encoder.Encode(bw, img)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	w.written = append(w.written, path)
	logrus.WithFields(logrus.Fields{
		"function": "PNGWriter.Present",
		"index":    p.Index,
		"path":     path,
	}).Debug("Wrote frame")
	return nil
}

// Files returns the paths written so far, in order.
func (w *PNGWriter) Files() []string {
	return append([]string(nil), w.written...)
}

func (w *PNGWriter) Close() error {
	w.closed = true
	return nil
}
