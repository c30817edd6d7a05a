// Package video holds decoded picture types and the pixel converter used by
// ivfplay.
//
// # Frames
//
// A [Frame] describes one planar YUV picture as reported by a decoder: pixel
// format, bit depth, colour tags, the allocated buffer size, the visible
// display size, and three planes with independent strides. Plane slices may
// alias decoder-owned memory, so a Frame is only valid while the image that
// produced it is held.
//
//	frame := video.NewI420Frame(320, 240)
//	copy(frame.Y, luma)
//	copy(frame.U, cb)
//	copy(frame.V, cr)
//
// # Conversion
//
// [ToRGBA] turns an 8-bit I420 frame into packed RGBA8 with the BT.601
// limited-range integer transform:
//
//	c = Y - 16, d = U - 128, e = V - 128
//	R = clamp((298*c + 409*e + 128) >> 8)
//	G = clamp((298*c - 100*d - 208*e + 128) >> 8)
//	B = clamp((298*c + 516*d + 128) >> 8)
//	A = 255
//
// Chroma for output pixel (i, j) is read at row i/2, column j/2. Only the
// display region is converted; stride padding and any area outside the
// display rectangle are ignored. The coefficients are fixed and do not follow
// the frame's ColorSpace tag.
//
//	pix, err := video.ToRGBA(frame)
//	if errors.Is(err, video.ErrUnsupportedPixelFormat) {
//	    // 4:4:4, high bit depth or semi-planar input
//	}
//
// [ToRGBAImage] returns the same pixels as an *image.RGBA for use with the
// standard image encoders.
//
// # Errors
//
// Conversion either succeeds completely or returns an error and no buffer.
// [ErrUnsupportedPixelFormat] rejects anything other than 8-bit 4:2:0 planar;
// [ErrInvalidImage] rejects inconsistent dimensions, strides or plane sizes.
package video
