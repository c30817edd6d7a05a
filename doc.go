// Package ivfplay plays VP9 video stored in IVF containers.
//
// A [Player] reads chunks with package ivf, decodes them through a
// vpx.Session backed by libvpx (or the in-process simulation), converts each
// decoded image to RGBA with package video and hands the pictures to a
// [Sink]. Sinks for raw RGBA streams, PNG files and per-frame digests live in
// package sink.
//
// # Getting Started
//
//	opts := ivfplay.NewOptions()
//	opts.Realtime = true
//
//	out, err := sink.CreateRawFile("out.rgba")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	player, err := ivfplay.Open("clip.ivf", opts, out)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer player.Close()
//
//	player.OnFrame(func(fi ivfplay.FrameInfo) {
//	    fmt.Println(fi.Title())
//	})
//
//	if err := player.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Core Types
//
//   - [Player]: pulls, decodes, converts and presents chunks
//   - [Options]: playback configuration, loadable from YAML with [LoadOptions]
//   - [ProbeReport]: container and bitstream summary produced by [Probe]
//   - [TimeProvider]: injectable clock used for real-time pacing
//
// # Playback Rules
//
// Each chunk is submitted once. By default only the first image a chunk
// decodes to is presented and the rest are released undisplayed; set
// Options.PresentAll to present all of them. A chunk the engine rejects, or
// an image the converter cannot handle, is counted in [Stats] and playback
// moves on. A sink failure stops playback with [ErrPresent].
//
// At end of stream the player flushes the decoder once so that frames held
// back by the engine are presented too.
//
// # Engine Selection
//
// [Open] builds its engine with factory.EngineFactory. The IVFPLAY_USE_SIMULATION,
// IVFPLAY_LIBVPX_PATH, IVFPLAY_DECODE_THREADS and IVFPLAY_ABI_VERSION
// environment variables set the defaults, and non-zero Options.Engine fields
// override them.
//
// # Deterministic Testing
//
// Pacing uses Options.TimeProvider when set:
//
//	opts.TimeProvider = &mockClock{now: start}
//
// Combine it with testing.SimulatedEngine and [NewPlayer] to exercise
// playback without libvpx.
package ivfplay
