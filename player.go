package ivfplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/ivfplay/factory"
	"github.com/opd-ai/ivfplay/interfaces"
	"github.com/opd-ai/ivfplay/ivf"
	"github.com/opd-ai/ivfplay/sink"
	"github.com/opd-ai/ivfplay/vpx"
)

// Sink receives converted pictures in presentation order.
type Sink = sink.Sink

// FrameInfo describes playback progress after one chunk.
type FrameInfo struct {
	Position   int  // chunks read so far
	Count      int  // total chunks, valid when CountKnown
	CountKnown bool // false until end of stream was reached
	PTS        uint64
	Presented  int // pictures presented from this chunk
	Skipped    int // decoded pictures from this chunk that were not presented
}

// Title renders progress the way a window title would show it.
func (fi FrameInfo) Title() string {
	if fi.CountKnown {
		return fmt.Sprintf("Frame %d/%d", fi.Position, fi.Count)
	}
	return fmt.Sprintf("Frame %d/?", fi.Position)
}

// Stats counts playback outcomes.
type Stats struct {
	Chunks        int // chunks read from the container
	DroppedChunks int // chunks dropped while waiting for a key frame
	DecodeErrors  int
	ConvertErrors int
	Decoded       int // images produced by the engine
	Presented     int
	SkippedImages int // images decoded but not presented
	Truncated     bool
}

// Player pulls chunks from a container, decodes them and presents the
// converted pictures to a sink. It is not safe for concurrent use.
type Player struct {
	reader  *ivf.Reader
	session *vpx.Session
	sink    Sink
	opts    *Options
	tp      TimeProvider
	onFrame func(FrameInfo)

	stats   Stats
	seenKey bool
	eos     bool
	closed  bool

	paceStarted bool
	paceStart   time.Time
	paceBase    uint64
	lastPTS     uint64
}

// Open opens the container at path, creates an engine from opts and the
// IVFPLAY_* environment, and returns a Player presenting to s.
func Open(path string, opts *Options, s Sink) (*Player, error) {
	if opts == nil {
		opts = NewOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	reader, err := ivf.Open(path)
	if err != nil {
		return nil, err
	}

	f := factory.NewEngineFactory()
	if err := opts.configureFactory(f); err != nil {
		reader.Close()
		return nil, fmt.Errorf("configure engine: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"function":   "Open",
		"path":       path,
		"simulation": f.IsUsingSimulation(),
	}).Debug("Creating decode engine")

	engine, err := f.CreateEngine()
	if err != nil {
		reader.Close()
		return nil, fmt.Errorf("create engine: %w", err)
	}

	p, err := NewPlayer(reader, engine, s, opts)
	if err != nil {
		engine.Destroy()
		reader.Close()
		return nil, err
	}
	return p, nil
}

// NewPlayer assembles a Player from parts. The player owns all of them and
// releases them on Close.
func NewPlayer(reader *ivf.Reader, engine interfaces.IDecodeEngine, s Sink, opts *Options) (*Player, error) {
	if opts == nil {
		opts = NewOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNilSink
	}
	session, err := vpx.NewSession(engine)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewPlayer",
		"file":     reader.Name(),
		"codec":    reader.FourCC().String(),
		"width":    reader.Width(),
		"height":   reader.Height(),
		"engine":   session.EngineName(),
	}).Info("Player created")

	return &Player{
		reader:  reader,
		session: session,
		sink:    s,
		opts:    opts,
		tp:      getTimeProvider(opts.TimeProvider),
	}, nil
}

// OnFrame registers a callback invoked after every chunk.
func (p *Player) OnFrame(fn func(FrameInfo)) {
	p.onFrame = fn
}

// Stats returns a snapshot of the playback counters.
func (p *Player) Stats() Stats {
	return p.stats
}

// EngineName names the decode engine behind the player.
func (p *Player) EngineName() string {
	return p.session.EngineName()
}

// Reader returns the underlying container reader.
func (p *Player) Reader() *ivf.Reader {
	return p.reader
}

// Step processes one chunk. It returns false once playback has finished,
// either at end of stream or at the MaxFrames limit.
func (p *Player) Step() (bool, error) {
	return p.step(context.Background())
}

// Run steps until playback finishes, ctx is cancelled or an error stops it.
// Per-chunk decode and conversion failures are counted, not returned.
func (p *Player) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		more, err := p.step(ctx)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func (p *Player) step(ctx context.Context) (bool, error) {
	if p.closed {
		return false, ErrPlayerClosed
	}
	if p.eos || p.limitReached() {
		return false, nil
	}

	chunk, err := p.reader.Next()
	if errors.Is(err, io.EOF) {
		return false, p.finish(ctx)
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Player.step",
			"position": p.reader.FramePos(),
			"error":    err.Error(),
		}).Error("Failed to read chunk")
		return false, err
	}
	p.stats.Chunks++
	p.lastPTS = chunk.Timestamp

	if p.opts.WaitForKeyframe && !p.seenKey {
		if isInterChunk(chunk.Data) {
			p.stats.DroppedChunks++
			logrus.WithFields(logrus.Fields{
				"function": "Player.step",
				"chunk":    chunk.Index,
			}).Debug("Dropping chunk before first key frame")
			p.notify(chunk.Timestamp, 0, 0)
			return true, nil
		}
		p.seenKey = true
	}

	frames, err := p.session.Submit(chunk.Data)
	if err != nil {
		if errors.Is(err, vpx.ErrDecode) {
			p.stats.DecodeErrors++
			logrus.WithFields(logrus.Fields{
				"function": "Player.step",
				"chunk":    chunk.Index,
				"error":    err.Error(),
			}).Warn("Skipping undecodable chunk")
			p.notify(chunk.Timestamp, 0, 0)
			return true, nil
		}
		return false, err
	}

	presented, skipped, err := p.consume(ctx, frames, chunk.Index, chunk.Timestamp)
	if err != nil {
		return false, err
	}
	p.notify(chunk.Timestamp, presented, skipped)
	return !p.limitReached(), nil
}

// consume presents images from one submission according to the options and
// abandons the rest.
func (p *Player) consume(ctx context.Context, frames *vpx.Frames, chunkIndex int, pts uint64) (presented, skipped int, err error) {
	defer func() {
		discarded := frames.Close()
		skipped += discarded
		p.stats.SkippedImages += discarded
	}()

	for {
		if presented > 0 && !p.opts.PresentAll {
			return presented, skipped, nil
		}
		if p.limitReached() {
			return presented, skipped, nil
		}
		img, ok := frames.Next()
		if !ok {
			return presented, skipped, nil
		}
		p.stats.Decoded++

		if p.stats.Decoded <= p.opts.SkipFrames {
			skipped++
			p.stats.SkippedImages++
			continue
		}

		pix, cerr := img.ToRGBA()
		if cerr != nil {
			p.stats.ConvertErrors++
			skipped++
			logrus.WithFields(logrus.Fields{
				"function": "Player.consume",
				"chunk":    chunkIndex,
				"image":    img.Index(),
				"error":    cerr.Error(),
			}).Warn("Cannot convert decoded image")
			continue
		}
		frame, _ := img.Frame()

		if p.opts.Realtime {
			if err := p.pace(ctx, pts); err != nil {
				return presented, skipped, err
			}
		}

		pic := &sink.Picture{
			Index:  p.stats.Presented,
			Chunk:  chunkIndex,
			PTS:    pts,
			Width:  int(frame.DisplayWidth),
			Height: int(frame.DisplayHeight),
			Pix:    pix,
		}
		if err := p.sink.Present(pic); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Player.consume",
				"index":    pic.Index,
				"error":    err.Error(),
			}).Error("Sink failed")
			return presented, skipped, fmt.Errorf("%w: %w", ErrPresent, err)
		}
		p.stats.Presented++
		presented++
	}
}

// finish flushes the decoder at end of stream and presents what it held.
func (p *Player) finish(ctx context.Context) error {
	p.eos = true
	p.stats.Truncated = p.reader.Truncated()
	count, _ := p.reader.FrameCount()

	logrus.WithFields(logrus.Fields{
		"function":  "Player.finish",
		"chunks":    count,
		"truncated": p.stats.Truncated,
	}).Info("End of stream")

	if p.limitReached() {
		return nil
	}
	frames, err := p.session.Flush()
	if err != nil {
		if errors.Is(err, vpx.ErrDecode) {
			p.stats.DecodeErrors++
			return nil
		}
		return err
	}
	presented, skipped, err := p.consume(ctx, frames, p.reader.FramePos(), p.lastPTS)
	if presented > 0 || skipped > 0 {
		p.notify(p.lastPTS, presented, skipped)
	}
	return err
}

// pace waits until the presentation time of pts relative to the first paced
// chunk.
func (p *Player) pace(ctx context.Context, pts uint64) error {
	if !p.paceStarted {
		p.paceStarted = true
		p.paceStart = p.tp.Now()
		p.paceBase = pts
		return nil
	}
	due := p.paceStart.Add(p.ptsOffset(pts))
	wait := due.Sub(p.tp.Now())
	if wait <= 0 {
		return nil
	}

	timer := p.tp.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ptsOffset converts a timestamp to time since the first paced chunk using
// the header timebase (seconds = ticks * num / den).
func (p *Player) ptsOffset(pts uint64) time.Duration {
	if pts <= p.paceBase {
		return 0
	}
	h := p.reader.Header()
	if h.TimebaseDen == 0 || h.TimebaseNum == 0 {
		return 0
	}
	ticks := float64(pts - p.paceBase)
	return time.Duration(ticks * float64(h.TimebaseNum) / float64(h.TimebaseDen) * float64(time.Second))
}

func (p *Player) limitReached() bool {
	return p.opts.MaxFrames > 0 && p.stats.Presented >= p.opts.MaxFrames
}

func (p *Player) notify(pts uint64, presented, skipped int) {
	if p.onFrame == nil {
		return
	}
	count, known := p.reader.FrameCount()
	p.onFrame(FrameInfo{
		Position:   p.reader.FramePos(),
		Count:      count,
		CountKnown: known,
		PTS:        pts,
		Presented:  presented,
		Skipped:    skipped,
	})
}

// isInterChunk reports whether the first frame of a chunk parses as a VP9
// inter frame. Chunks that do not parse are not considered inter frames.
func isInterChunk(data []byte) bool {
	parts, err := vpx.SplitSuperframe(data)
	if err != nil || len(parts) == 0 {
		return false
	}
	h, err := vpx.ParseFrameHeader(parts[0])
	if err != nil {
		return false
	}
	return !h.KeyFrame && !h.IntraOnly
}

// Close releases the session, the engine, the reader and the sink.
func (p *Player) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if err := p.session.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := p.reader.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := p.sink.Close(); err != nil {
		errs = append(errs, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":       "Player.Close",
		"chunks":         p.stats.Chunks,
		"presented":      p.stats.Presented,
		"skipped":        p.stats.SkippedImages,
		"decode_errors":  p.stats.DecodeErrors,
		"convert_errors": p.stats.ConvertErrors,
	}).Info("Player closed")
	return errors.Join(errs...)
}
