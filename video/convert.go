package video

import (
	"image"

	"github.com/opd-ai/ivfplay/limits"
)

// ToRGBA converts an 8-bit I420 frame to packed RGBA8 using BT.601
// limited-range coefficients.
//
// The result holds DisplayWidth*DisplayHeight pixels, row-major from the top,
// four bytes per pixel in R, G, B, A order with A = 255. The coefficients do
// not depend on the frame's ColorSpace tag.
func ToRGBA(f *Frame) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	w, h := int(f.DisplayWidth), int(f.DisplayHeight)
	dst := make([]byte, limits.RGBASize(w, h))
	convertI420(dst, f, w, h)
	return dst, nil
}

// ToRGBAImage is ToRGBA wrapped as an *image.RGBA, whose Pix layout matches.
func ToRGBAImage(f *Frame) (*image.RGBA, error) {
	pix, err := ToRGBA(f)
	if err != nil {
		return nil, err
	}
	w, h := int(f.DisplayWidth), int(f.DisplayHeight)
	return &image.RGBA{
		Pix:    pix,
		Stride: w * limits.BytesPerPixel,
		Rect:   image.Rect(0, 0, w, h),
	}, nil
}

// convertI420 fills dst from a validated frame. Each chroma sample covers two
// luma columns, so its contribution is computed once per pair.
func convertI420(dst []byte, f *Frame, w, h int) {
	cw := (w + 1) / 2
	rowBytes := w * limits.BytesPerPixel

	for i := 0; i < h; i++ {
		yOff := i * f.YStride
		uOff := (i >> 1) * f.UStride
		vOff := (i >> 1) * f.VStride

		yRow := f.Y[yOff : yOff+w]
		uRow := f.U[uOff : uOff+cw]
		vRow := f.V[vOff : vOff+cw]
		out := dst[i*rowBytes : (i+1)*rowBytes]

		j := 0
		for ; j+1 < w; j += 2 {
			d := int32(uRow[j>>1]) - 128
			e := int32(vRow[j>>1]) - 128
			rAdd := 409 * e
			gAdd := -100*d - 208*e
			bAdd := 516 * d

			o := j * 4
			putPixel(out[o:o+4:o+4], yRow[j], rAdd, gAdd, bAdd)
			putPixel(out[o+4:o+8:o+8], yRow[j+1], rAdd, gAdd, bAdd)
		}
		if j < w {
			d := int32(uRow[j>>1]) - 128
			e := int32(vRow[j>>1]) - 128
			o := j * 4
			putPixel(out[o:o+4:o+4], yRow[j], 409*e, -100*d-208*e, 516*d)
		}
	}
}

func putPixel(px []byte, y byte, rAdd, gAdd, bAdd int32) {
	y1 := 298*(int32(y)-16) + 128
	_ = px[3]
	px[0] = clamp8((y1 + rAdd) >> 8)
	px[1] = clamp8((y1 + gAdd) >> 8)
	px[2] = clamp8((y1 + bAdd) >> 8)
	px[3] = 255
}

// clamp8 limits v to [0, 255] without branches.
func clamp8(v int32) byte {
	v &^= v >> 31
	v |= (255 - v) >> 31
	return byte(v)
}

// YUVToRGBA converts a single sample triple with the same arithmetic as
// ToRGBA. It is intended for tests and diagnostics, not bulk conversion.
func YUVToRGBA(y, u, v byte) (r, g, b, a byte) {
	var px [4]byte
	d := int32(u) - 128
	e := int32(v) - 128
	putPixel(px[:], y, 409*e, -100*d-208*e, 516*d)
	return px[0], px[1], px[2], px[3]
}
