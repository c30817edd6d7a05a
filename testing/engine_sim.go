package testing

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/ivfplay/interfaces"
	"github.com/opd-ai/ivfplay/video"
)

// codeCorruptFrame is the libvpx status reported for undecodable chunks.
const codeCorruptFrame = 7

// recordHeaderSize is the width and height prefix of one simulated picture.
const recordHeaderSize = 4

// paddingFill marks bytes outside the display region so tests can detect
// reads past a row or the visible area.
const paddingFill = 0xAA

// ErrEngineDestroyed is returned by Submit after Destroy.
var ErrEngineDestroyed = errors.New("simulated engine destroyed")

// SimulatedEngine implements interfaces.IDecodeEngine without a real codec.
//
// A chunk is a concatenation of raw pictures, each encoded as
//
//	[width:2 LE][height:2 LE][Y width*height][U cw*ch][V cw*ch]
//
// with cw, ch the rounded-up 4:2:0 chroma size. Each picture becomes one
// decoded I420 image, so a chunk may decode to zero, one or many images.
// EncodePassthrough builds such chunks.
type SimulatedEngine struct {
	config *interfaces.EngineConfig

	pending  []*video.Frame // decoded by the latest Submit, served by Poll
	held     []*video.Frame // held back for the next Submit when holdBack is set
	holdBack bool
	padding  int
	failures map[int]int // submission ordinal -> status code

	submissions int
	produced    int
	released    int
	outstanding int
	violations  int
	destroyed   bool

	mu sync.Mutex
}

// SimulatedEngineStats is a snapshot of engine activity for test assertions.
type SimulatedEngineStats struct {
	Submissions int
	Produced    int
	Released    int
	Outstanding int
	Violations  int
	Destroyed   bool
}

// NewSimulatedEngine creates a new simulation engine for testing
func NewSimulatedEngine(config *interfaces.EngineConfig) *SimulatedEngine {
	logrus.Warn("SIMULATION FUNCTION - NOT A REAL OPERATION")
	if config == nil {
		config = &interfaces.EngineConfig{UseSimulation: true, ABIVersion: interfaces.DefaultABIVersion}
	}
	logrus.WithFields(logrus.Fields{
		"function": "NewSimulatedEngine",
		"threads":  config.Threads,
	}).Info("Creating simulated decode engine for testing")

	return &SimulatedEngine{
		config:   config,
		failures: make(map[int]int),
	}
}

// SetHoldBack makes the engine emit each chunk's images on the following
// submission, the way a frame-threaded decoder delays output. An empty
// submission releases everything held.
func (s *SimulatedEngine) SetHoldBack(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdBack = enabled
}

// SetPadding allocates each decoded picture with extra columns and rows and
// widens every stride, filling the margin with junk.
func (s *SimulatedEngine) SetPadding(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.padding = n
}

// FailOn makes the submission with the given 1-based ordinal fail with code.
func (s *SimulatedEngine) FailOn(submission, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[submission] = code
}

// Submit implements IDecodeEngine.Submit with simulation
func (s *SimulatedEngine) Submit(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return ErrEngineDestroyed
	}
	s.submissions++
	if s.outstanding > 0 {
		// Earlier images are invalidated by a new submission.
		s.violations++
		logrus.WithFields(logrus.Fields{
			"function":    "SimulatedEngine.Submit",
			"outstanding": s.outstanding,
		}).Warn("Submission while images are still held by the caller")
	}
	s.pending = nil

	if code, ok := s.failures[s.submissions]; ok {
		return &interfaces.EngineError{Code: code, Detail: fmt.Sprintf("injected failure on submission %d", s.submissions)}
	}

	frames, err := s.decode(data)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "SimulatedEngine.Submit",
			"size":     len(data),
			"error":    err.Error(),
		}).Debug("Simulated decode failed")
		return &interfaces.EngineError{Code: codeCorruptFrame, Detail: err.Error()}
	}

	switch {
	case len(data) == 0:
		s.pending, s.held = s.held, nil
	case s.holdBack:
		s.pending, s.held = s.held, frames
	default:
		s.pending = frames
	}

	logrus.WithFields(logrus.Fields{
		"function": "SimulatedEngine.Submit",
		"size":     len(data),
		"images":   len(s.pending),
	}).Debug("Simulated chunk decoded")
	return nil
}

func (s *SimulatedEngine) decode(data []byte) ([]*video.Frame, error) {
	var frames []*video.Frame
	for off := 0; off < len(data); {
		if len(data)-off < recordHeaderSize {
			return nil, fmt.Errorf("truncated picture header at offset %d", off)
		}
		w := int(binary.LittleEndian.Uint16(data[off:]))
		h := int(binary.LittleEndian.Uint16(data[off+2:]))
		if w == 0 || h == 0 {
			return nil, fmt.Errorf("zero picture size at offset %d", off)
		}
		cw, ch := video.ChromaSize(w, h)
		need := w*h + 2*cw*ch
		off += recordHeaderSize
		if len(data)-off < need {
			return nil, fmt.Errorf("picture at offset %d needs %d bytes, have %d", off, need, len(data)-off)
		}
		frames = append(frames, s.newFrame(w, h, data[off:off+need]))
		off += need
	}
	return frames, nil
}

// newFrame copies one picture into freshly allocated, optionally padded planes.
func (s *SimulatedEngine) newFrame(w, h int, raw []byte) *video.Frame {
	bw, bh := w+s.padding, h+s.padding
	cw, ch := video.ChromaSize(w, h)
	bcw, bch := video.ChromaSize(bw, bh)

	f := &video.Frame{
		Format:        video.FormatI420,
		BitDepth:      8,
		ColorSpace:    video.ColorSpaceBT601,
		Width:         uint16(bw),
		Height:        uint16(bh),
		DisplayWidth:  uint16(w),
		DisplayHeight: uint16(h),
		YStride:       bw + s.padding,
		UStride:       bcw + s.padding,
		VStride:       bcw + s.padding,
	}
	f.Y = copyPlane(raw[:w*h], w, h, f.YStride, bh)
	f.U = copyPlane(raw[w*h:w*h+cw*ch], cw, ch, f.UStride, bch)
	f.V = copyPlane(raw[w*h+cw*ch:], cw, ch, f.VStride, bch)
	return f
}

func copyPlane(src []byte, w, h, stride, rows int) []byte {
	dst := make([]byte, stride*rows)
	if stride != w || rows != h {
		for i := range dst {
			dst[i] = paddingFill
		}
	}
	for y := 0; y < h; y++ {
		copy(dst[y*stride:y*stride+w], src[y*w:(y+1)*w])
	}
	return dst
}

// Poll implements IDecodeEngine.Poll with simulation
func (s *SimulatedEngine) Poll(cursor *interfaces.Cursor) (*video.Frame, interfaces.ReleaseFunc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := int(*cursor)
	if s.destroyed || i >= len(s.pending) {
		return nil, nil, false
	}
	*cursor = interfaces.Cursor(i + 1)
	s.produced++
	s.outstanding++

	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.released++
			s.outstanding--
		})
	}
	return s.pending[i], release, true
}

// Destroy implements IDecodeEngine.Destroy with simulation
func (s *SimulatedEngine) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return ErrEngineDestroyed
	}
	s.destroyed = true
	s.pending = nil
	s.held = nil

	logrus.WithFields(logrus.Fields{
		"function":    "SimulatedEngine.Destroy",
		"submissions": s.submissions,
		"produced":    s.produced,
		"outstanding": s.outstanding,
	}).Info("Simulated decode engine destroyed")
	return nil
}

// Name implements IDecodeEngine.Name
func (s *SimulatedEngine) Name() string {
	return "simulated"
}

// Stats returns a snapshot of engine counters.
func (s *SimulatedEngine) Stats() SimulatedEngineStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SimulatedEngineStats{
		Submissions: s.submissions,
		Produced:    s.produced,
		Released:    s.released,
		Outstanding: s.outstanding,
		Violations:  s.violations,
		Destroyed:   s.destroyed,
	}
}

// EncodePassthrough builds a chunk the simulated engine decodes back into
// the display region of each frame.
//
// Parameters:
//   - frames: I420 frames; only the display region is encoded
//
// Returns:
//   - []byte: Chunk payload
//   - error: Any frame that fails validation
func EncodePassthrough(frames ...*video.Frame) ([]byte, error) {
	var out []byte
	for i, f := range frames {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		w, h := int(f.DisplayWidth), int(f.DisplayHeight)
		cw, ch := video.ChromaSize(w, h)

		out = binary.LittleEndian.AppendUint16(out, uint16(w))
		out = binary.LittleEndian.AppendUint16(out, uint16(h))
		out = appendPlane(out, f.Y, f.YStride, w, h)
		out = appendPlane(out, f.U, f.UStride, cw, ch)
		out = appendPlane(out, f.V, f.VStride, cw, ch)
	}
	return out, nil
}

func appendPlane(dst, plane []byte, stride, w, h int) []byte {
	for y := 0; y < h; y++ {
		dst = append(dst, plane[y*stride:y*stride+w]...)
	}
	return dst
}

// SolidFrame returns a w x h I420 frame filled with one YUV triple.
func SolidFrame(w, h uint16, y, u, v byte) *video.Frame {
	f := video.NewI420Frame(w, h)
	for i := range f.Y {
		f.Y[i] = y
	}
	for i := range f.U {
		f.U[i] = u
		f.V[i] = v
	}
	return f
}
