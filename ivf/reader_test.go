package ivf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/ivfplay/limits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader() FileHeader {
	return FileHeader{
		Width:       320,
		Height:      240,
		TimebaseDen: 30,
		TimebaseNum: 1,
	}
}

// buildContainer writes a VP9 IVF stream holding the given payloads.
func buildContainer(t *testing.T, header FileHeader, payloads ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(&buf, header)
	require.NoError(t, err)
	for i, p := range payloads {
		require.NoError(t, w.WriteFrame(p, uint64(i)))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestNewReaderParsesHeader(t *testing.T) {
	data := buildContainer(t, testHeader())

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, FourCCVP9, r.FourCC())
	assert.Equal(t, "VP90", r.FourCC().String())
	assert.Equal(t, uint16(320), r.Width())
	assert.Equal(t, uint16(240), r.Height())
	assert.Equal(t, uint32(30), r.Header().TimebaseDen)
	assert.Equal(t, 0, r.FramePos())

	_, known := r.FrameCount()
	assert.False(t, known)
}

func TestNextYieldsChunksInOrder(t *testing.T) {
	payloads := [][]byte{
		{0x82, 0x49, 0x83},
		{},
		bytes.Repeat([]byte{0xAB}, 1000),
		{0x01},
	}
	data := buildContainer(t, testHeader(), payloads...)

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)

	for i, want := range payloads {
		chunk, err := r.Next()
		require.NoError(t, err, "chunk %d", i)
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, uint64(i), chunk.Timestamp)
		assert.Equal(t, len(want), chunk.Size())
		assert.Equal(t, want, chunk.Data)
		assert.Equal(t, i+1, r.FramePos())

		_, known := r.FrameCount()
		assert.False(t, known, "count must stay unknown before end of stream")
	}

	for i := 0; i < 3; i++ {
		chunk, err := r.Next()
		assert.Nil(t, chunk)
		assert.Equal(t, io.EOF, err)
	}

	count, known := r.FrameCount()
	assert.True(t, known)
	assert.Equal(t, len(payloads), count)
	assert.Equal(t, len(payloads), r.FramePos())
	assert.False(t, r.Truncated())
}

func TestNextEmptyContainer(t *testing.T) {
	r, err := NewReader(bytes.NewReader(buildContainer(t, testHeader())))
	require.NoError(t, err)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)

	count, known := r.FrameCount()
	assert.True(t, known)
	assert.Equal(t, 0, count)
}

func TestNextPayloadLargerThanStream(t *testing.T) {
	data := buildContainer(t, testHeader(), []byte{1, 2, 3}, []byte{4, 5})

	// Declare a third chunk of 100 bytes but supply only 10.
	hdr := ChunkHeader{Size: 100, Timestamp: 2}.marshal()
	data = append(data, hdr...)
	data = append(data, make([]byte, 10)...)

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := r.Next()
		require.NoError(t, err)
	}
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)

	count, known := r.FrameCount()
	assert.True(t, known)
	assert.Equal(t, 2, count)
	assert.True(t, r.Truncated())

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	count, _ = r.FrameCount()
	assert.Equal(t, 2, count, "count must not change once known")
}

func TestNextHugeDeclaredSize(t *testing.T) {
	data := buildContainer(t, testHeader(), []byte{9})
	hdr := ChunkHeader{Size: 0xFFFFFFFF}.marshal()
	data = append(data, hdr...)
	data = append(data, make([]byte, limits.ChunkReadStep+17)...)

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)

	_, err = r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)

	count, known := r.FrameCount()
	assert.True(t, known)
	assert.Equal(t, 1, count)
	assert.True(t, r.Truncated())
}

func TestNextPartialChunkHeader(t *testing.T) {
	data := buildContainer(t, testHeader(), []byte{1})
	data = append(data, 0x05, 0x00, 0x00)

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)

	_, err = r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	assert.True(t, r.Truncated())

	count, _ := r.FrameCount()
	assert.Equal(t, 1, count)
}

func TestNextLargePayloadAcrossSteps(t *testing.T) {
	payload := make([]byte, limits.ChunkReadStep*2+5)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	r, err := NewReader(bytes.NewReader(buildContainer(t, testHeader(), payload)))
	require.NoError(t, err)

	chunk, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, payload, chunk.Data)
}

func TestNewReaderRejectsBadHeaders(t *testing.T) {
	valid := buildContainer(t, testHeader())

	mutate := func(f func(b []byte)) []byte {
		b := append([]byte(nil), valid...)
		f(b)
		return b
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "bad_magic",
			data:    mutate(func(b []byte) { copy(b[0:4], "RIFF") }),
			wantErr: ErrFormat,
		},
		{
			name:    "vp8_fourcc",
			data:    mutate(func(b []byte) { copy(b[8:12], "VP80") }),
			wantErr: ErrUnsupportedCodec,
		},
		{
			name:    "zero_width",
			data:    mutate(func(b []byte) { binary.LittleEndian.PutUint16(b[12:14], 0) }),
			wantErr: ErrInvalidDimensions,
		},
		{
			name:    "zero_height",
			data:    mutate(func(b []byte) { binary.LittleEndian.PutUint16(b[14:16], 0) }),
			wantErr: ErrInvalidDimensions,
		},
		{
			name:    "short_header",
			data:    valid[:20],
			wantErr: ErrFormat,
		},
		{
			name:    "empty",
			data:    nil,
			wantErr: ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(tt.data))
			assert.Nil(t, r)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestNewReaderIgnoresUnvalidatedFields(t *testing.T) {
	h := testHeader()
	h.Version = 7
	h.HeaderSize = 99
	h.FrameCount = 0
	data := buildContainer(t, h, []byte{1}, []byte{2})

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, uint16(7), r.Header().Version)

	n := 0
	for {
		if _, err := r.Next(); err != nil {
			break
		}
		n++
	}
	assert.Equal(t, 2, n)
}

type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestNextPropagatesIOErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	data := buildContainer(t, testHeader(), []byte{1, 2})

	r, err := NewReader(&failingReader{data: data, err: boom})
	require.NoError(t, err)

	_, err = r.Next()
	require.NoError(t, err)

	_, err = r.Next()
	assert.True(t, errors.Is(err, ErrIO))
	_, known := r.FrameCount()
	assert.False(t, known, "an IO error is not end of stream")
}

func TestNewReaderPropagatesIOErrors(t *testing.T) {
	boom := errors.New("permission denied")
	_, err := NewReader(&failingReader{err: boom})
	assert.True(t, errors.Is(err, ErrIO))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.ivf")
	require.NoError(t, os.WriteFile(path, buildContainer(t, testHeader(), []byte{1}), 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, r.Name())

	_, err = r.Next()
	require.NoError(t, err)

	require.NoError(t, r.Close())
	_, err = r.Next()
	assert.True(t, errors.Is(err, ErrClosed))
	assert.NoError(t, r.Close())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.ivf"))
	assert.True(t, errors.Is(err, ErrIO))
}
