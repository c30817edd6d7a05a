package video

import (
	"fmt"

	"github.com/opd-ai/ivfplay/limits"
)

// PixelFormat identifies the sample layout of a decoded frame.
type PixelFormat int

const (
	FormatNone PixelFormat = iota
	// FormatI420 is 8-bit planar Y, U, V with 2x2 chroma subsampling.
	FormatI420
	FormatI422
	FormatI440
	FormatI444
	FormatNV12
	FormatI42016
	FormatI42216
	FormatI44016
	FormatI44416
)

var pixelFormatNames = map[PixelFormat]string{
	FormatNone:   "none",
	FormatI420:   "I420",
	FormatI422:   "I422",
	FormatI440:   "I440",
	FormatI444:   "I444",
	FormatNV12:   "NV12",
	FormatI42016: "I42016",
	FormatI42216: "I42216",
	FormatI44016: "I44016",
	FormatI44416: "I44416",
}

// String returns the conventional name of the format.
func (f PixelFormat) String() string {
	if name, ok := pixelFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// ColorSpace is the matrix coefficients tag reported by the decoder.
// The converter always uses BT.601; the tag is carried for diagnostics.
type ColorSpace int

const (
	ColorSpaceUnknown ColorSpace = iota
	ColorSpaceBT601
	ColorSpaceBT709
	ColorSpaceSMPTE170
	ColorSpaceSMPTE240
	ColorSpaceBT2020
	ColorSpaceReserved
	ColorSpaceSRGB
)

var colorSpaceNames = [...]string{"unknown", "bt601", "bt709", "smpte170", "smpte240", "bt2020", "reserved", "srgb"}

func (c ColorSpace) String() string {
	if c >= 0 && int(c) < len(colorSpaceNames) {
		return colorSpaceNames[c]
	}
	return fmt.Sprintf("ColorSpace(%d)", int(c))
}

// ColorRange distinguishes studio swing (16-235) from full swing (0-255).
type ColorRange int

const (
	ColorRangeLimited ColorRange = iota
	ColorRangeFull
)

func (r ColorRange) String() string {
	if r == ColorRangeFull {
		return "full"
	}
	return "limited"
}

// Frame describes one decoded picture in planar YUV form.
//
// Width and Height are the allocated plane size; DisplayWidth and
// DisplayHeight the visible region starting at the top-left corner.
// Plane slices may alias decoder-owned memory and must not be retained past
// the owning image's release.
type Frame struct {
	Format     PixelFormat
	BitDepth   int
	ColorSpace ColorSpace
	ColorRange ColorRange

	Width         uint16
	Height        uint16
	DisplayWidth  uint16
	DisplayHeight uint16

	Y       []byte // Luminance plane
	U       []byte // Chrominance U plane
	V       []byte // Chrominance V plane
	YStride int    // Stride for Y plane
	UStride int    // Stride for U plane
	VStride int    // Stride for V plane
}

// NewI420Frame allocates a tightly packed 8-bit 4:2:0 frame whose buffer and
// display sizes are both width x height.
func NewI420Frame(width, height uint16) *Frame {
	cw, ch := ChromaSize(int(width), int(height))
	return &Frame{
		Format:        FormatI420,
		BitDepth:      8,
		ColorSpace:    ColorSpaceBT601,
		Width:         width,
		Height:        height,
		DisplayWidth:  width,
		DisplayHeight: height,
		Y:             make([]byte, int(width)*int(height)),
		U:             make([]byte, cw*ch),
		V:             make([]byte, cw*ch),
		YStride:       int(width),
		UStride:       cw,
		VStride:       cw,
	}
}

// ChromaSize returns the 4:2:0 chroma plane size for a luma size,
// rounding odd dimensions up.
func ChromaSize(width, height int) (int, int) {
	return (width + 1) / 2, (height + 1) / 2
}

// Validate checks that the frame is 8-bit I420 and that its planes cover the
// display region with the declared strides.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrInvalidImage)
	}
	if f.Format != FormatI420 || f.BitDepth != 8 {
		return fmt.Errorf("%w: %s at %d bits", ErrUnsupportedPixelFormat, f.Format, f.BitDepth)
	}

	w, h := int(f.DisplayWidth), int(f.DisplayHeight)
	if err := limits.ValidateDisplaySize(w, h, int(f.Width), int(f.Height)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	cw, ch := ChromaSize(w, h)
	if err := checkPlane("Y", f.Y, f.YStride, w, h); err != nil {
		return err
	}
	if err := checkPlane("U", f.U, f.UStride, cw, ch); err != nil {
		return err
	}
	return checkPlane("V", f.V, f.VStride, cw, ch)
}

// checkPlane verifies that rows of rowBytes at the given stride fit in plane.
func checkPlane(name string, plane []byte, stride, rowBytes, rows int) error {
	if stride < rowBytes {
		return fmt.Errorf("%w: %s stride %d narrower than row of %d", ErrInvalidImage, name, stride, rowBytes)
	}
	// (rows-1)*stride can overflow int for corrupt strides.
	if len(plane) < rowBytes || (len(plane)-rowBytes)/stride < rows-1 {
		return fmt.Errorf("%w: %s plane of %d bytes cannot hold %d rows of %d at stride %d",
			ErrInvalidImage, name, len(plane), rows, rowBytes, stride)
	}
	return nil
}
