package real

import (
	"runtime"
	"unsafe"

	"github.com/opd-ai/ivfplay/limits"
	"github.com/opd-ai/ivfplay/video"
)

// vpxCodecCtx mirrors vpx_codec_ctx_t on 64-bit platforms.
type vpxCodecCtx struct {
	Name      uintptr
	Iface     uintptr
	Err       int32
	ErrDetail uintptr
	InitFlags int64
	Config    uintptr
	Priv      uintptr
}

// vpxDecoderConfig mirrors vpx_codec_dec_cfg_t.
type vpxDecoderConfig struct {
	Threads uint32
	W       uint32
	H       uint32
}

// vpxImage mirrors vpx_image_t.
type vpxImage struct {
	Fmt          int32
	CS           int32
	Range        int32
	W            uint32
	H            uint32
	BitDepth     uint32
	DW           uint32
	DH           uint32
	RW           uint32
	RH           uint32
	XChromaShift uint32
	YChromaShift uint32
	Planes       [4]unsafe.Pointer
	Stride       [4]int32
	BPS          int32
	UserPriv     uintptr
	ImgData      uintptr
	ImgDataOwner int32
	SelfAllocd   int32
	FBPriv       uintptr
}

// vpx_img_fmt_t values.
const (
	imgFmtPlanar       = 0x100
	imgFmtUVFlip       = 0x200
	imgFmtHighBitDepth = 0x800

	imgFmtI420   = imgFmtPlanar | 2
	imgFmtYV12   = imgFmtPlanar | imgFmtUVFlip | 1
	imgFmtI422   = imgFmtPlanar | 5
	imgFmtI444   = imgFmtPlanar | 6
	imgFmtI440   = imgFmtPlanar | 7
	imgFmtNV12   = imgFmtPlanar | 9
	imgFmtI42016 = imgFmtI420 | imgFmtHighBitDepth
	imgFmtI42216 = imgFmtI422 | imgFmtHighBitDepth
	imgFmtI44416 = imgFmtI444 | imgFmtHighBitDepth
	imgFmtI44016 = imgFmtI440 | imgFmtHighBitDepth
)

// libvpx fills planes[1] with U and planes[2] with V for YV12 too, so both
// map onto the same plane order.
var imageFormats = map[int32]video.PixelFormat{
	imgFmtI420:   video.FormatI420,
	imgFmtYV12:   video.FormatI420,
	imgFmtI422:   video.FormatI422,
	imgFmtI444:   video.FormatI444,
	imgFmtI440:   video.FormatI440,
	imgFmtNV12:   video.FormatNV12,
	imgFmtI42016: video.FormatI42016,
	imgFmtI42216: video.FormatI42216,
	imgFmtI44416: video.FormatI44416,
	imgFmtI44016: video.FormatI44016,
}

// frameFromImage describes a decoder-owned image as a video.Frame whose
// planes alias the image memory. Images with an unknown format or unusable
// geometry come back without planes, so conversion rejects them.
func frameFromImage(img *vpxImage) *video.Frame {
	f := &video.Frame{
		Format:        imageFormats[img.Fmt],
		BitDepth:      int(img.BitDepth),
		ColorSpace:    video.ColorSpace(img.CS),
		ColorRange:    video.ColorRange(img.Range),
		Width:         clampDimension(img.W),
		Height:        clampDimension(img.H),
		DisplayWidth:  clampDimension(img.DW),
		DisplayHeight: clampDimension(img.DH),
	}
	if f.Format == video.FormatNone || f.Format == video.FormatNV12 {
		return f
	}
	if f.BitDepth == 0 {
		f.BitDepth = 8
	}

	sample := 1
	if img.Fmt&imgFmtHighBitDepth != 0 {
		sample = 2
	}
	w, h := int(img.DW), int(img.DH)
	cw := (w + (1 << img.XChromaShift) - 1) >> img.XChromaShift
	ch := (h + (1 << img.YChromaShift) - 1) >> img.YChromaShift

	f.Y, f.YStride = planeSlice(img.Planes[0], img.Stride[0], w*sample, h)
	f.U, f.UStride = planeSlice(img.Planes[1], img.Stride[1], cw*sample, ch)
	f.V, f.VStride = planeSlice(img.Planes[2], img.Stride[2], cw*sample, ch)
	return f
}

// planeSlice exposes rows of rowBytes at the given stride as a byte slice
// ending at the last visible byte.
func planeSlice(p unsafe.Pointer, stride int32, rowBytes, rows int) ([]byte, int) {
	if p == nil || stride <= 0 || int(stride) < rowBytes || rows <= 0 || rowBytes <= 0 {
		return nil, int(stride)
	}
	n := (rows-1)*int(stride) + rowBytes
	return unsafe.Slice((*byte)(p), n), int(stride)
}

func clampDimension(v uint32) uint16 {
	if v > limits.MaxDimension {
		return limits.MaxDimension
	}
	return uint16(v)
}

// libraryCandidates lists the shared library names tried in order. An
// explicit override is the only candidate.
func libraryCandidates(goos, override string) []string {
	if override != "" {
		return []string{override}
	}
	switch goos {
	case "darwin":
		return []string{
			"libvpx.dylib",
			"/opt/homebrew/lib/libvpx.dylib",
			"/usr/local/lib/libvpx.dylib",
		}
	default:
		return []string{
			"libvpx.so",
			"libvpx.so.9",
			"libvpx.so.8",
			"libvpx.so.7",
			"libvpx.so.6",
		}
	}
}

func defaultCandidates(override string) []string {
	return libraryCandidates(runtime.GOOS, override)
}
