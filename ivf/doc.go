// Package ivf reads and writes IVF, the simple framed container used for raw
// VP8/VP9 elementary streams.
//
// # File Layout
//
//	offset  size  field
//	0       4     signature "DKIF"
//	4       2     version
//	6       2     header size
//	8       4     fourcc ("VP90")
//	12      2     width
//	14      2     height
//	16      4     timebase denominator
//	20      4     timebase numerator
//	24      4     frame count (advisory)
//	28      4     unused
//
// Each frame follows as a 12-byte header (32-bit payload size, 64-bit
// timestamp) and the payload bytes. All integers are little-endian.
//
// # Reading
//
//	r, err := ivf.Open("clip.ivf")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	for {
//	    chunk, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // chunk.Data holds one coded frame
//	}
//	count, _ := r.FrameCount()
//
// The reader stops at the first short read, whether the file ended on a chunk
// boundary or part-way through one. Truncated reports which case occurred;
// the frame count is the number of complete chunks in either case.
//
// Only Magic, FourCC and the dimensions are validated so that damaged files
// remain viewable.
package ivf
