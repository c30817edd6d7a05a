package video

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledFrame(w, h uint16, y, u, v byte) *Frame {
	f := NewI420Frame(w, h)
	fill(f.Y, y)
	fill(f.U, u)
	fill(f.V, v)
	return f
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

func pixelAt(buf []byte, w, x, y int) [4]byte {
	o := (y*w + x) * 4
	return [4]byte{buf[o], buf[o+1], buf[o+2], buf[o+3]}
}

func TestToRGBABlackAndWhite(t *testing.T) {
	tests := []struct {
		name string
		y    byte
		want [4]byte
	}{
		{"black", 16, [4]byte{0, 0, 0, 255}},
		{"white", 235, [4]byte{255, 255, 255, 255}},
		{"below_black", 0, [4]byte{0, 0, 0, 255}},
		{"above_white", 255, [4]byte{255, 255, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := filledFrame(6, 4, tt.y, 128, 128)
			buf, err := ToRGBA(f)
			require.NoError(t, err)
			require.Len(t, buf, 6*4*4)

			for y := 0; y < 4; y++ {
				for x := 0; x < 6; x++ {
					assert.Equal(t, tt.want, pixelAt(buf, 6, x, y), "pixel (%d,%d)", x, y)
				}
			}
		})
	}
}

func TestYUVToRGBAKnownColors(t *testing.T) {
	tests := []struct {
		name    string
		y, u, v byte
		r, g, b byte
	}{
		{"black", 16, 128, 128, 0, 0, 0},
		{"white", 235, 128, 128, 255, 255, 255},
		{"red", 81, 90, 240, 255, 0, 0},
		{"mid_grey", 126, 128, 128, 128, 128, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := YUVToRGBA(tt.y, tt.u, tt.v)
			assert.Equal(t, tt.r, r, "R")
			assert.Equal(t, tt.g, g, "G")
			assert.Equal(t, tt.b, b, "B")
			assert.Equal(t, byte(255), a, "A")
		})
	}
}

// reference is the textbook formulation with explicit clamping.
func reference(y, u, v byte) [4]byte {
	c := int(y) - 16
	d := int(u) - 128
	e := int(v) - 128
	y1 := 298*c + 128
	cl := func(x int) byte {
		if x < 0 {
			return 0
		}
		if x > 255 {
			return 255
		}
		return byte(x)
	}
	return [4]byte{cl((y1 + 409*e) >> 8), cl((y1 - 100*d - 208*e) >> 8), cl((y1 + 516*d) >> 8), 255}
}

func TestYUVToRGBAMatchesReference(t *testing.T) {
	for y := 0; y < 256; y += 3 {
		for u := 0; u < 256; u += 5 {
			for v := 0; v < 256; v += 7 {
				r, g, b, a := YUVToRGBA(byte(y), byte(u), byte(v))
				want := reference(byte(y), byte(u), byte(v))
				if [4]byte{r, g, b, a} != want {
					t.Fatalf("YUV(%d,%d,%d) = %v, want %v", y, u, v, [4]byte{r, g, b, a}, want)
				}
			}
		}
	}
}

func TestClamp8(t *testing.T) {
	for _, v := range []int32{-1 << 20, -256, -1, 0, 1, 128, 254, 255, 256, 1000, 1 << 20} {
		want := v
		if want < 0 {
			want = 0
		}
		if want > 255 {
			want = 255
		}
		assert.Equal(t, byte(want), clamp8(v), "clamp8(%d)", v)
	}
}

func TestToRGBAVerticalSubsampling(t *testing.T) {
	f := filledFrame(4, 4, 16, 128, 128)
	// Chroma row 0 neutral, chroma row 1 strongly red.
	f.V[0], f.V[1] = 128, 128
	f.V[2], f.V[3] = 240, 240

	buf, err := ToRGBA(f)
	require.NoError(t, err)

	neutral := reference(16, 128, 128)
	red := reference(16, 128, 240)
	require.NotEqual(t, neutral, red)

	for y := 0; y < 4; y++ {
		want := neutral
		if y >= 2 {
			want = red
		}
		for x := 0; x < 4; x++ {
			assert.Equal(t, want, pixelAt(buf, 4, x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestToRGBAHorizontalSubsampling(t *testing.T) {
	f := filledFrame(4, 4, 16, 128, 128)
	// Chroma column 0 neutral, chroma column 1 strongly blue.
	for row := 0; row < 2; row++ {
		f.U[row*f.UStride+0] = 128
		f.U[row*f.UStride+1] = 240
	}

	buf, err := ToRGBA(f)
	require.NoError(t, err)

	neutral := reference(16, 128, 128)
	blue := reference(16, 240, 128)
	require.NotEqual(t, neutral, blue)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := neutral
			if x >= 2 {
				want = blue
			}
			assert.Equal(t, want, pixelAt(buf, 4, x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestToRGBAPerPixelLuma(t *testing.T) {
	f := NewI420Frame(5, 3)
	for i := range f.Y {
		f.Y[i] = byte(16 + i*10)
	}
	fill(f.U, 100)
	fill(f.V, 150)

	buf, err := ToRGBA(f)
	require.NoError(t, err)

	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			want := reference(f.Y[y*5+x], 100, 150)
			assert.Equal(t, want, pixelAt(buf, 5, x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestToRGBAHonoursStridesAndDisplaySize(t *testing.T) {
	const dw, dh = 7, 5
	tight := NewI420Frame(dw, dh)
	for i := range tight.Y {
		tight.Y[i] = byte(i * 3)
	}
	for i := range tight.U {
		tight.U[i] = byte(60 + i*11)
		tight.V[i] = byte(200 - i*9)
	}

	// Same picture inside a larger, padded allocation with junk in the margins.
	const bw, bh = 16, 8
	padded := &Frame{
		Format: FormatI420, BitDepth: 8,
		Width: bw, Height: bh, DisplayWidth: dw, DisplayHeight: dh,
		YStride: bw + 16, UStride: bw/2 + 8, VStride: bw/2 + 12,
	}
	padded.Y = make([]byte, padded.YStride*bh)
	padded.U = make([]byte, padded.UStride*bh/2)
	padded.V = make([]byte, padded.VStride*bh/2)
	fill(padded.Y, 0xEE)
	fill(padded.U, 0x11)
	fill(padded.V, 0x22)

	for y := 0; y < dh; y++ {
		copy(padded.Y[y*padded.YStride:], tight.Y[y*tight.YStride:y*tight.YStride+dw])
	}
	cw, ch := ChromaSize(dw, dh)
	for y := 0; y < ch; y++ {
		copy(padded.U[y*padded.UStride:], tight.U[y*tight.UStride:y*tight.UStride+cw])
		copy(padded.V[y*padded.VStride:], tight.V[y*tight.VStride:y*tight.VStride+cw])
	}

	want, err := ToRGBA(tight)
	require.NoError(t, err)
	got, err := ToRGBA(padded)
	require.NoError(t, err)

	require.Len(t, got, dw*dh*4)
	assert.Equal(t, want, got)
}

func TestToRGBAImage(t *testing.T) {
	img, err := ToRGBAImage(filledFrame(3, 2, 235, 128, 128))
	require.NoError(t, err)

	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
	assert.Equal(t, 12, img.Stride)
	r, g, b, a := img.At(2, 1).RGBA()
	assert.Equal(t, uint32(0xFFFF), r)
	assert.Equal(t, uint32(0xFFFF), g)
	assert.Equal(t, uint32(0xFFFF), b)
	assert.Equal(t, uint32(0xFFFF), a)
}

func TestToRGBARejectsBadFrames(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *Frame)
		wantErr error
	}{
		{"nil_frame", nil, ErrInvalidImage},
		{"i444", func(f *Frame) { f.Format = FormatI444 }, ErrUnsupportedPixelFormat},
		{"high_bit_depth", func(f *Frame) { f.BitDepth = 10 }, ErrUnsupportedPixelFormat},
		{"nv12", func(f *Frame) { f.Format = FormatNV12 }, ErrUnsupportedPixelFormat},
		{"zero_display_width", func(f *Frame) { f.DisplayWidth = 0 }, ErrInvalidImage},
		{"zero_buffer_height", func(f *Frame) { f.Height = 0 }, ErrInvalidImage},
		{"display_exceeds_buffer", func(f *Frame) { f.DisplayWidth = f.Width + 2 }, ErrInvalidImage},
		{"narrow_y_stride", func(f *Frame) { f.YStride = 3 }, ErrInvalidImage},
		{"narrow_u_stride", func(f *Frame) { f.UStride = 1 }, ErrInvalidImage},
		{"short_v_plane", func(f *Frame) { f.V = f.V[:len(f.V)-1] }, ErrInvalidImage},
		{"missing_y_plane", func(f *Frame) { f.Y = nil }, ErrInvalidImage},
		{"overflowing_y_stride", func(f *Frame) { f.YStride = math.MaxInt/3 + 1 }, ErrInvalidImage},
		{"overflowing_u_stride", func(f *Frame) { f.UStride = math.MaxInt }, ErrInvalidImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f *Frame
			if tt.mutate != nil {
				f = filledFrame(8, 6, 100, 100, 100)
				tt.mutate(f)
			}
			buf, err := ToRGBA(f)
			assert.Nil(t, buf)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestPixelFormatString(t *testing.T) {
	assert.Equal(t, "I420", FormatI420.String())
	assert.Equal(t, "PixelFormat(99)", PixelFormat(99).String())
	assert.Equal(t, "bt709", ColorSpaceBT709.String())
	assert.Equal(t, "full", ColorRangeFull.String())
}

func BenchmarkToRGBA(b *testing.B) {
	f := NewI420Frame(1280, 720)
	for i := range f.Y {
		f.Y[i] = byte(i)
	}
	for i := range f.U {
		f.U[i] = byte(i * 3)
		f.V[i] = byte(i * 5)
	}

	b.SetBytes(int64(1280 * 720 * 4))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ToRGBA(f); err != nil {
			b.Fatal(err)
		}
	}
}
