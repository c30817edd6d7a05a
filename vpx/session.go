package vpx

import (
	"errors"
	"fmt"
	"iter"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/ivfplay/interfaces"
	"github.com/opd-ai/ivfplay/video"
)

// Stats counts session activity.
type Stats struct {
	Submitted uint64 // chunks passed to Submit, failed ones included
	Failed    uint64 // submissions rejected by the engine
	Flushes   uint64
	Images    uint64 // images yielded by Frames.Next
	Discarded uint64 // images dropped undrained by Frames.Close
}

// Session drives one decode engine, one chunk at a time.
//
// A Session is not safe for concurrent use. At most one Frames sequence is
// live at any moment; it must be drained or closed before the next Submit.
type Session struct {
	engine interfaces.IDecodeEngine
	active *Frames
	closed bool
	stats  Stats
}

// NewSession wraps an initialized engine. The session takes ownership and
// destroys the engine on Close.
func NewSession(engine interfaces.IDecodeEngine) (*Session, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	logrus.WithFields(logrus.Fields{
		"function": "NewSession",
		"engine":   engine.Name(),
	}).Info("Decode session created")
	return &Session{engine: engine}, nil
}

// Submit passes one coded chunk to the engine and returns the images it
// decoded to, which may be none.
//
// Engine failures are returned as *DecodeError. Calling Submit while the
// previous sequence is live returns ErrSubmissionInFlight without touching
// the engine.
func (s *Session) Submit(chunk []byte) (*Frames, error) {
	if err := s.ready("Submit"); err != nil {
		return nil, err
	}
	s.stats.Submitted++
	if err := s.engine.Submit(chunk); err != nil {
		s.stats.Failed++
		derr := toDecodeError(err, s.stats.Submitted)
		logrus.WithFields(logrus.Fields{
			"function": "Submit",
			"chunk":    s.stats.Submitted,
			"size":     len(chunk),
			"code":     int(derr.Code),
			"error":    derr.Detail,
		}).Warn("Engine rejected chunk")
		return nil, derr
	}

	logrus.WithFields(logrus.Fields{
		"function": "Submit",
		"chunk":    s.stats.Submitted,
		"size":     len(chunk),
	}).Debug("Chunk submitted")
	return s.begin(), nil
}

// Flush signals end of stream so engines that hold frames back emit them.
func (s *Session) Flush() (*Frames, error) {
	if err := s.ready("Flush"); err != nil {
		return nil, err
	}
	s.stats.Flushes++
	if err := s.engine.Submit(nil); err != nil {
		s.stats.Failed++
		return nil, toDecodeError(err, s.stats.Submitted)
	}
	return s.begin(), nil
}

func (s *Session) ready(function string) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.active != nil {
		if !s.active.done {
			logrus.WithFields(logrus.Fields{
				"function": function,
				"produced": s.active.produced,
			}).Error("Submission while previous images are undrained")
			return ErrSubmissionInFlight
		}
		s.active = nil
	}
	return nil
}

func (s *Session) begin() *Frames {
	f := &Frames{session: s}
	s.active = f
	return f
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	return s.stats
}

// EngineName returns the wrapped engine's name.
func (s *Session) EngineName() string {
	return s.engine.Name()
}

// Close abandons any live sequence and destroys the engine. Images obtained
// from the session are invalid afterwards. Repeated calls return nil.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	if s.active != nil {
		s.active.Close()
		s.active = nil
	}
	s.closed = true

	logrus.WithFields(logrus.Fields{
		"function":  "Close",
		"submitted": s.stats.Submitted,
		"failed":    s.stats.Failed,
		"images":    s.stats.Images,
	}).Info("Decode session closed")

	if err := s.engine.Destroy(); err != nil {
		return fmt.Errorf("destroy engine: %w", err)
	}
	return nil
}

func toDecodeError(err error, chunk uint64) *DecodeError {
	var ee *interfaces.EngineError
	if errors.As(err, &ee) {
		return &DecodeError{Code: ErrorCode(ee.Code), Detail: ee.Detail, Chunk: chunk}
	}
	return &DecodeError{Code: CodeError, Detail: err.Error(), Chunk: chunk}
}

// Frames is the lazy sequence of images decoded from one submission.
// It is finite and cannot be restarted.
type Frames struct {
	session  *Session
	cursor   interfaces.Cursor
	current  *Image
	produced int
	done     bool
}

// Next releases the previously returned image and yields the next one.
// Once it returns false every later call returns false.
func (f *Frames) Next() (*Image, bool) {
	if f.done {
		return nil, false
	}
	f.releaseCurrent()

	frame, release, ok := f.session.engine.Poll(&f.cursor)
	if !ok {
		f.finish()
		return nil, false
	}
	img := &Image{frame: frame, release: release, index: f.produced}
	f.current = img
	f.produced++
	f.session.stats.Images++
	return img, true
}

// All adapts Next to a range-over-func iterator. Stopping the loop early
// leaves the sequence live; call Close to abandon it.
func (f *Frames) All() iter.Seq[*Image] {
	return func(yield func(*Image) bool) {
		for {
			img, ok := f.Next()
			if !ok || !yield(img) {
				return
			}
		}
	}
}

// Close abandons the sequence, releasing the current image and every image
// not yet retrieved. It returns how many undrained images were discarded and
// is safe to call more than once.
func (f *Frames) Close() int {
	if f.done {
		return 0
	}
	f.releaseCurrent()

	discarded := 0
	for {
		_, release, ok := f.session.engine.Poll(&f.cursor)
		if !ok {
			break
		}
		if release != nil {
			release()
		}
		discarded++
	}
	f.session.stats.Discarded += uint64(discarded)
	f.finish()

	if discarded > 0 {
		logrus.WithFields(logrus.Fields{
			"function":  "Frames.Close",
			"produced":  f.produced,
			"discarded": discarded,
		}).Debug("Abandoned undrained images")
	}
	return discarded
}

// Produced returns how many images Next has yielded so far.
func (f *Frames) Produced() int {
	return f.produced
}

// Done reports whether the sequence has ended.
func (f *Frames) Done() bool {
	return f.done
}

func (f *Frames) releaseCurrent() {
	if f.current != nil {
		f.current.Release()
		f.current = nil
	}
}

func (f *Frames) finish() {
	f.releaseCurrent()
	f.done = true
	if f.session.active == f {
		f.session.active = nil
	}
}

// Image is one decoded picture borrowed from the engine.
type Image struct {
	frame    *video.Frame
	release  interfaces.ReleaseFunc
	index    int
	released bool
}

// Frame returns the decoded planes, or ErrImageReleased once the image has
// been released.
func (im *Image) Frame() (*video.Frame, error) {
	if im.released {
		return nil, ErrImageReleased
	}
	return im.frame, nil
}

// Index is the image's position within its submission, starting at 0.
func (im *Image) Index() int {
	return im.index
}

// ToRGBA converts the image with video.ToRGBA. The returned buffer is owned
// by the caller and stays valid after release.
func (im *Image) ToRGBA() ([]byte, error) {
	frame, err := im.Frame()
	if err != nil {
		return nil, err
	}
	return video.ToRGBA(frame)
}

// Released reports whether the image's planes have been returned.
func (im *Image) Released() bool {
	return im.released
}

// Release returns the planes to the engine. The sequence releases images on
// its own; calling Release early is allowed and idempotent.
func (im *Image) Release() {
	if im.released {
		return
	}
	im.released = true
	if im.release != nil {
		im.release()
	}
	im.frame = nil
}
