package ivf

import (
	"encoding/binary"
	"fmt"

	"github.com/opd-ai/ivfplay/limits"
)

// Magic is the signature at offset 0 of every IVF file.
var Magic = [4]byte{'D', 'K', 'I', 'F'}

// FourCC identifies the codec of the stream.
type FourCC uint32

// FourCCVP9 is the only codec this package accepts.
const FourCCVP9 FourCC = 0x30395056 // "VP90"

// String returns the four characters of the code.
func (f FourCC) String() string {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(f))
	return string(b[:])
}

// FileHeader is the 32-byte IVF file header.
//
// Only Magic, FourCC, Width and Height are validated. The remaining fields
// are reported as found; FrameCount in particular is often written as zero.
type FileHeader struct {
	Magic      [4]byte
	Version    uint16
	HeaderSize uint16
	FourCC     FourCC
	Width      uint16
	Height     uint16
	// TimebaseDen and TimebaseNum give the timestamp unit as Num/Den seconds.
	TimebaseDen uint32
	TimebaseNum uint32
	FrameCount  uint32
	Unused      uint32
}

// parseFileHeader decodes and validates a header block.
func parseFileHeader(buf []byte) (FileHeader, error) {
	var h FileHeader
	if len(buf) < limits.FileHeaderSize {
		return h, fmt.Errorf("%w: header is %d bytes, need %d", ErrFormat, len(buf), limits.FileHeaderSize)
	}

	copy(h.Magic[:], buf[0:4])
	h.Version = binary.LittleEndian.Uint16(buf[4:6])
	h.HeaderSize = binary.LittleEndian.Uint16(buf[6:8])
	h.FourCC = FourCC(binary.LittleEndian.Uint32(buf[8:12]))
	h.Width = binary.LittleEndian.Uint16(buf[12:14])
	h.Height = binary.LittleEndian.Uint16(buf[14:16])
	h.TimebaseDen = binary.LittleEndian.Uint32(buf[16:20])
	h.TimebaseNum = binary.LittleEndian.Uint32(buf[20:24])
	h.FrameCount = binary.LittleEndian.Uint32(buf[24:28])
	h.Unused = binary.LittleEndian.Uint32(buf[28:32])

	if h.Magic != Magic {
		return h, fmt.Errorf("%w: bad signature %q", ErrFormat, h.Magic[:])
	}
	if h.FourCC != FourCCVP9 {
		return h, fmt.Errorf("%w: %q (0x%08x)", ErrUnsupportedCodec, h.FourCC.String(), uint32(h.FourCC))
	}
	if err := limits.ValidateDimensions(int(h.Width), int(h.Height)); err != nil {
		return h, fmt.Errorf("%w: %v", ErrInvalidDimensions, err)
	}
	return h, nil
}

// marshal encodes the header into a 32-byte block.
func (h FileHeader) marshal() []byte {
	buf := make([]byte, limits.FileHeaderSize)
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.HeaderSize)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.FourCC))
	binary.LittleEndian.PutUint16(buf[12:14], h.Width)
	binary.LittleEndian.PutUint16(buf[14:16], h.Height)
	binary.LittleEndian.PutUint32(buf[16:20], h.TimebaseDen)
	binary.LittleEndian.PutUint32(buf[20:24], h.TimebaseNum)
	binary.LittleEndian.PutUint32(buf[24:28], h.FrameCount)
	binary.LittleEndian.PutUint32(buf[28:32], h.Unused)
	return buf
}

// ChunkHeader is the 12-byte header preceding every frame payload.
type ChunkHeader struct {
	Size      uint32
	Timestamp uint64
}

func parseChunkHeader(buf []byte) ChunkHeader {
	return ChunkHeader{
		Size:      binary.LittleEndian.Uint32(buf[0:4]),
		Timestamp: binary.LittleEndian.Uint64(buf[4:12]),
	}
}

func (c ChunkHeader) marshal() []byte {
	buf := make([]byte, limits.ChunkHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], c.Size)
	binary.LittleEndian.PutUint64(buf[4:12], c.Timestamp)
	return buf
}

// Chunk is one coded frame pulled from the container.
type Chunk struct {
	// Index is the zero-based position of the chunk in the file.
	Index     int
	Timestamp uint64
	Data      []byte
}

// Size returns the payload size declared by the chunk header.
func (c *Chunk) Size() int {
	return len(c.Data)
}
