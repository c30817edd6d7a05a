package vpx

import "fmt"

// SplitSuperframe splits a VP9 chunk into its constituent frames using the
// superframe index at the end of the chunk. A chunk without an index is
// returned as a single frame. The returned slices alias data.
//
// The index is 2 + mag*frames bytes long and starts and ends with the same
// marker byte 0b110mmfff, where frames = fff+1 and mag = mm+1 is the width in
// bytes of each little-endian frame size.
func SplitSuperframe(data []byte) ([][]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty chunk", ErrBitstream)
	}

	marker := data[len(data)-1]
	if marker&0xe0 != 0xc0 {
		return [][]byte{data}, nil
	}
	frames := int(marker&0x7) + 1
	mag := int((marker>>3)&0x3) + 1
	indexSize := 2 + mag*frames

	// A trailing byte that merely looks like a marker is frame data unless
	// the opening marker matches too.
	if len(data) < indexSize || data[len(data)-indexSize] != marker {
		return [][]byte{data}, nil
	}

	index := data[len(data)-indexSize+1 : len(data)-1]
	payload := data[:len(data)-indexSize]

	out := make([][]byte, 0, frames)
	offset := 0
	for i := 0; i < frames; i++ {
		size := 0
		for b := 0; b < mag; b++ {
			size |= int(index[i*mag+b]) << (8 * b)
		}
		if size > len(payload)-offset {
			return nil, fmt.Errorf("%w: superframe entry %d of %d bytes exceeds remaining %d",
				ErrBitstream, i, size, len(payload)-offset)
		}
		out = append(out, payload[offset:offset+size:offset+size])
		offset += size
	}
	return out, nil
}

// AppendSuperframe packs frames into a single chunk with a superframe index.
// It accepts between 1 and 8 frames.
func AppendSuperframe(dst []byte, frames ...[]byte) ([]byte, error) {
	if len(frames) == 0 || len(frames) > 8 {
		return nil, fmt.Errorf("%w: superframe of %d frames", ErrBitstream, len(frames))
	}

	largest := 0
	for _, f := range frames {
		largest = max(largest, len(f))
	}
	mag := 1
	for mag < 4 && largest >= 1<<(8*mag) {
		mag++
	}
	if mag == 4 && uint64(largest) > 0xffffffff {
		return nil, fmt.Errorf("%w: frame of %d bytes too large for index", ErrBitstream, largest)
	}

	for _, f := range frames {
		dst = append(dst, f...)
	}
	marker := byte(0xc0 | (mag-1)<<3 | (len(frames) - 1))
	dst = append(dst, marker)
	for _, f := range frames {
		for b := 0; b < mag; b++ {
			dst = append(dst, byte(len(f)>>(8*b)))
		}
	}
	return append(dst, marker), nil
}
