package sink

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
)

// Digest writes one BLAKE2b-256 line per picture and keeps a running hash
// over every picture, so two decodes can be compared without storing pixels.
//
// Line format: "<index> <pts> <width>x<height> <hex digest>".
type Digest struct {
	w      *bufio.Writer
	total  hash.Hash
	sums   [][blake2b.Size256]byte
	closed bool
}

// NewDigest writes lines to w; pass io.Discard to only collect sums.
func NewDigest(w io.Writer) *Digest {
	total, _ := blake2b.New256(nil) // only fails for oversized keys
	return &Digest{w: bufio.NewWriter(w), total: total}
}

func (d *Digest) Present(p *Picture) error {
	if d.closed {
		return ErrSinkClosed
	}
	if err := p.Validate(); err != nil {
		return err
	}
	sum := blake2b.Sum256(p.Pix)
	d.sums = append(d.sums, sum)
	d.total.Write(sum[:])

	if _, err := fmt.Fprintf(d.w, "%d %d %dx%d %s\n", p.Index, p.PTS, p.Width, p.Height, hex.EncodeToString(sum[:])); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	return nil
}

// Sums returns the per-picture digests in presentation order.
func (d *Digest) Sums() [][blake2b.Size256]byte {
	return append([][blake2b.Size256]byte(nil), d.sums...)
}

// Total returns the hex digest of all per-picture digests so far.
func (d *Digest) Total() string {
	return hex.EncodeToString(d.total.Sum(nil))
}

// Close writes a final "total" line and flushes.
func (d *Digest) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if _, err := fmt.Fprintf(d.w, "total %d %s\n", len(d.sums), d.Total()); err != nil {
		return err
	}
	return d.w.Flush()
}
