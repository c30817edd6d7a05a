package ivfplay

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/icza/bitio"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/ivfplay/ivf"
	"github.com/opd-ai/ivfplay/sink"
	testsim "github.com/opd-ai/ivfplay/testing"
	"github.com/opd-ai/ivfplay/video"
)

var testHeader = ivf.FileHeader{
	Width:       4,
	Height:      2,
	TimebaseDen: 10,
	TimebaseNum: 1,
}

// encodeIVF writes chunks with timestamps 0, 1, 2, ...
func encodeIVF(t *testing.T, chunks ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := ivf.NewWriter(&buf, testHeader)
	require.NoError(t, err)
	for i, c := range chunks {
		require.NoError(t, w.WriteFrame(c, uint64(i)))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeIVFFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.ivf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestReader(t *testing.T, data []byte) *ivf.Reader {
	t.Helper()
	r, err := ivf.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	return r
}

func simChunk(t *testing.T, frames ...*video.Frame) []byte {
	t.Helper()
	c, err := testsim.EncodePassthrough(frames...)
	require.NoError(t, err)
	return c
}

// grey returns a solid 4x2 frame whose decoded colour identifies it.
func grey(y byte) *video.Frame {
	return testsim.SolidFrame(4, 2, y, 128, 128)
}

// vp9KeyFrame builds a profile 0 key frame header of the given size.
func vp9KeyFrame(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	bw := bitio.NewWriter(&buf)
	put := func(v uint64, n uint8) { require.NoError(t, bw.WriteBits(v, n)) }
	put(2, 2)         // frame marker
	put(0, 2)         // profile 0
	put(0, 1)         // show_existing_frame
	put(0, 1)         // key frame
	put(1, 1)         // show_frame
	put(0, 1)         // error_resilient_mode
	put(0x498342, 24) // sync code
	put(1, 3)         // bt601
	put(0, 1)         // limited range
	put(uint64(w-1), 16)
	put(uint64(h-1), 16)
	put(0, 1) // render size same
	require.NoError(t, bw.Close())
	return buf.Bytes()
}

// vp9InterFrame is a shown profile 0 inter frame header.
var vp9InterFrame = []byte{0x86, 0x00, 0x00}

type recordSink struct {
	pics   []*sink.Picture
	failAt int
	closed int
}

func newRecordSink() *recordSink {
	return &recordSink{failAt: -1}
}

func (s *recordSink) Present(p *sink.Picture) error {
	if len(s.pics) == s.failAt {
		return errors.New("disk full")
	}
	s.pics = append(s.pics, p)
	return nil
}

func (s *recordSink) Close() error {
	s.closed++
	return nil
}

// firstRed returns the red channel of each recorded picture's first pixel.
func (s *recordSink) firstRed() []byte {
	out := make([]byte, len(s.pics))
	for i, p := range s.pics {
		out[i] = p.Pix[0]
	}
	return out
}

type mockTimeProvider struct {
	now   time.Time
	waits []time.Duration
}

func (m *mockTimeProvider) Now() time.Time {
	return m.now
}

func (m *mockTimeProvider) NewTimer(d time.Duration) *time.Timer {
	m.waits = append(m.waits, d)
	return time.NewTimer(0)
}
