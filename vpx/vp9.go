package vpx

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"

	"github.com/opd-ai/ivfplay/video"
)

const (
	vp9FrameMarker = 2
	vp9SyncCode    = 0x498342
	vp9ColorRGB    = 7
)

// FrameHeader holds the leading fields of a VP9 uncompressed frame header.
//
// Size and colour fields are only present on key frames and intra-only
// frames; HasSize reports whether they were read. Inter frames stop after
// RefreshFrameFlags.
type FrameHeader struct {
	Profile int

	ShowExistingFrame bool
	FrameToShow       int

	KeyFrame          bool
	ShowFrame         bool
	ErrorResilient    bool
	IntraOnly         bool
	ResetFrameContext int
	RefreshFrameFlags uint8

	BitDepth     int
	ColorSpace   video.ColorSpace
	ColorRange   video.ColorRange
	SubsamplingX bool
	SubsamplingY bool

	HasSize      bool
	Width        int
	Height       int
	RenderWidth  int
	RenderHeight int
}

// PixelFormat returns the layout the decoder will produce for this frame, or
// FormatNone when the header carries no colour configuration.
func (h *FrameHeader) PixelFormat() video.PixelFormat {
	if !h.HasSize {
		return video.FormatNone
	}
	high := h.BitDepth > 8
	switch {
	case h.SubsamplingX && h.SubsamplingY:
		if high {
			return video.FormatI42016
		}
		return video.FormatI420
	case h.SubsamplingX:
		if high {
			return video.FormatI42216
		}
		return video.FormatI422
	case h.SubsamplingY:
		if high {
			return video.FormatI44016
		}
		return video.FormatI440
	default:
		if high {
			return video.FormatI44416
		}
		return video.FormatI444
	}
}

// bitReader keeps the first read error so field parsing reads linearly.
type bitReader struct {
	r   *bitio.Reader
	err error
}

func (b *bitReader) bits(n uint8) uint64 {
	if b.err != nil {
		return 0
	}
	v, err := b.r.ReadBits(n)
	if err != nil {
		b.err = err
		return 0
	}
	return v
}

func (b *bitReader) flag() bool {
	return b.bits(1) == 1
}

// ParseFrameHeader reads the uncompressed header of a single VP9 frame. Use
// SplitSuperframe first for chunks that may carry several frames.
func ParseFrameHeader(data []byte) (*FrameHeader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrBitstream)
	}
	br := &bitReader{r: bitio.NewReader(bytes.NewReader(data))}
	h := &FrameHeader{}

	if marker := br.bits(2); marker != vp9FrameMarker {
		return nil, fmt.Errorf("%w: frame marker %d", ErrBitstream, marker)
	}
	low := br.bits(1)
	high := br.bits(1)
	h.Profile = int(high<<1 | low)
	if h.Profile == 3 && br.flag() {
		return nil, fmt.Errorf("%w: reserved bit set in profile 3 header", ErrBitstream)
	}

	h.ShowExistingFrame = br.flag()
	if h.ShowExistingFrame {
		h.FrameToShow = int(br.bits(3))
		h.ShowFrame = true
		return h, truncated(br)
	}

	h.KeyFrame = br.bits(1) == 0
	h.ShowFrame = br.flag()
	h.ErrorResilient = br.flag()

	if h.KeyFrame {
		if err := readSyncCode(br); err != nil {
			return nil, err
		}
		if err := readColorConfig(br, h); err != nil {
			return nil, err
		}
		readFrameSize(br, h)
		h.RefreshFrameFlags = 0xff
		return h, truncated(br)
	}

	if !h.ShowFrame {
		h.IntraOnly = br.flag()
	}
	if !h.ErrorResilient {
		h.ResetFrameContext = int(br.bits(2))
	}
	if !h.IntraOnly {
		h.RefreshFrameFlags = uint8(br.bits(8))
		return h, truncated(br)
	}

	if err := readSyncCode(br); err != nil {
		return nil, err
	}
	if h.Profile > 0 {
		if err := readColorConfig(br, h); err != nil {
			return nil, err
		}
	} else {
		h.BitDepth = 8
		h.ColorSpace = video.ColorSpaceBT601
		h.SubsamplingX, h.SubsamplingY = true, true
	}
	h.RefreshFrameFlags = uint8(br.bits(8))
	readFrameSize(br, h)
	return h, truncated(br)
}

func truncated(br *bitReader) error {
	if br.err != nil {
		return fmt.Errorf("%w: header truncated: %v", ErrBitstream, br.err)
	}
	return nil
}

func readSyncCode(br *bitReader) error {
	code := br.bits(24)
	if err := truncated(br); err != nil {
		return err
	}
	if code != vp9SyncCode {
		return fmt.Errorf("%w: sync code %#06x", ErrBitstream, code)
	}
	return nil
}

func readColorConfig(br *bitReader, h *FrameHeader) error {
	h.BitDepth = 8
	if h.Profile >= 2 {
		if br.flag() {
			h.BitDepth = 12
		} else {
			h.BitDepth = 10
		}
	}

	h.ColorSpace = video.ColorSpace(br.bits(3))
	oddProfile := h.Profile == 1 || h.Profile == 3

	if h.ColorSpace != vp9ColorRGB {
		if br.flag() {
			h.ColorRange = video.ColorRangeFull
		}
		if oddProfile {
			h.SubsamplingX = br.flag()
			h.SubsamplingY = br.flag()
			if br.flag() {
				return fmt.Errorf("%w: reserved bit set in color config", ErrBitstream)
			}
		} else {
			h.SubsamplingX, h.SubsamplingY = true, true
		}
		return truncated(br)
	}

	h.ColorRange = video.ColorRangeFull
	if !oddProfile {
		return fmt.Errorf("%w: RGB not allowed in profile %d", ErrBitstream, h.Profile)
	}
	if br.flag() {
		return fmt.Errorf("%w: reserved bit set in color config", ErrBitstream)
	}
	return truncated(br)
}

func readFrameSize(br *bitReader, h *FrameHeader) {
	h.Width = int(br.bits(16)) + 1
	h.Height = int(br.bits(16)) + 1
	h.RenderWidth, h.RenderHeight = h.Width, h.Height
	if br.flag() {
		h.RenderWidth = int(br.bits(16)) + 1
		h.RenderHeight = int(br.bits(16)) + 1
	}
	h.HasSize = br.err == nil
}
