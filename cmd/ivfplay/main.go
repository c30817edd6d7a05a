package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/ivfplay"
	"github.com/opd-ai/ivfplay/sink"
)

// CLIConfig holds the parsed command line.
type CLIConfig struct {
	configPath  string
	output      string
	pngDir      string
	digestPath  string
	realtime    bool
	presentAll  bool
	waitKey     bool
	limit       int
	skip        int
	simulation  bool
	libraryPath string
	threads     int
	verbose     bool
	input       string
}

// parseCLIFlags parses args (without the program name).
func parseCLIFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	config := &CLIConfig{}
	fs := flag.NewFlagSet("ivfplay", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Configuration
	fs.StringVar(&config.configPath, "config", "", "YAML options file")

	// Outputs
	fs.StringVar(&config.output, "o", "", "Write raw RGBA frames to this file (- for stdout)")
	fs.StringVar(&config.pngDir, "png", "", "Write one PNG per frame into this directory")
	fs.StringVar(&config.digestPath, "digest", "", "Write per-frame BLAKE2b digests to this file (- for stdout)")

	// Playback
	fs.BoolVar(&config.realtime, "realtime", false, "Pace output by the file timestamps")
	fs.BoolVar(&config.presentAll, "all", false, "Present every decoded image, not just the first per chunk")
	fs.BoolVar(&config.waitKey, "wait-key", false, "Drop leading chunks until the first key frame")
	fs.IntVar(&config.limit, "limit", 0, "Stop after this many frames (0 = no limit)")
	fs.IntVar(&config.skip, "skip", 0, "Decode but do not output the first N frames")

	// Engine
	fs.BoolVar(&config.simulation, "sim", false, "Use the simulated engine instead of libvpx")
	fs.StringVar(&config.libraryPath, "lib", "", "Path to the libvpx shared library")
	fs.IntVar(&config.threads, "threads", 0, "Decoder threads (0 = libvpx default)")

	// Logging
	fs.BoolVar(&config.verbose, "v", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: ivfplay [options] input.ivf\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, fmt.Errorf("expected one input file, got %d", fs.NArg())
	}
	config.input = fs.Arg(0)
	return config, nil
}

// validateCLIConfig validates the CLI configuration.
func validateCLIConfig(config *CLIConfig) error {
	if config.limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	if config.skip < 0 {
		return fmt.Errorf("skip cannot be negative")
	}
	if config.threads < 0 {
		return fmt.Errorf("threads cannot be negative")
	}
	if config.output == "-" && config.digestPath == "-" {
		return fmt.Errorf("raw output and digest cannot both go to stdout")
	}
	return nil
}

// buildOptions loads the options file, if any, and applies flags on top.
func buildOptions(config *CLIConfig) (*ivfplay.Options, error) {
	opts := ivfplay.NewOptions()
	if config.configPath != "" {
		loaded, err := ivfplay.LoadOptions(config.configPath)
		if err != nil {
			return nil, err
		}
		opts = loaded
	}

	opts.Realtime = opts.Realtime || config.realtime
	opts.PresentAll = opts.PresentAll || config.presentAll
	opts.WaitForKeyframe = opts.WaitForKeyframe || config.waitKey
	opts.Engine.Simulation = opts.Engine.Simulation || config.simulation
	if config.limit > 0 {
		opts.MaxFrames = config.limit
	}
	if config.skip > 0 {
		opts.SkipFrames = config.skip
	}
	if config.libraryPath != "" {
		opts.Engine.LibraryPath = config.libraryPath
	}
	if config.threads > 0 {
		opts.Engine.Threads = config.threads
	}
	if config.verbose {
		opts.LogLevel = "debug"
	}
	return opts, opts.Validate()
}

// outputs collects the sinks and the files they write to.
type outputs struct {
	sinks  []sink.Sink
	files  []*os.File
	counts *sink.Discard
}

// buildOutputs opens every requested output. With none requested the
// pictures are only counted.
func buildOutputs(config *CLIConfig, stdout io.Writer) (*outputs, error) {
	out := &outputs{counts: &sink.Discard{}}
	out.sinks = append(out.sinks, out.counts)

	if config.output != "" {
		if config.output == "-" {
			out.sinks = append(out.sinks, sink.NewRawWriter(stdout))
		} else {
			raw, err := sink.CreateRawFile(config.output)
			if err != nil {
				out.abort()
				return nil, err
			}
			out.sinks = append(out.sinks, raw)
		}
	}

	if config.pngDir != "" {
		pngs, err := sink.NewPNGWriter(config.pngDir)
		if err != nil {
			out.abort()
			return nil, err
		}
		out.sinks = append(out.sinks, pngs)
	}

	if config.digestPath != "" {
		w := stdout
		if config.digestPath != "-" {
			f, err := os.Create(config.digestPath)
			if err != nil {
				out.abort()
				return nil, fmt.Errorf("create digest output: %w", err)
			}
			out.files = append(out.files, f)
			w = f
		}
		out.sinks = append(out.sinks, sink.NewDigest(w))
	}
	return out, nil
}

func (o *outputs) multi() ivfplay.Sink {
	return sink.NewMulti(o.sinks...)
}

// abort closes the sinks opened so far, then the files they wrote to.
func (o *outputs) abort() {
	o.multi().Close()
	o.close()
}

// close releases files not owned by a sink. Call it after the sinks are closed.
func (o *outputs) close() error {
	var errs []error
	for _, f := range o.files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// run plays one file and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	config, err := parseCLIFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "ivfplay: %v\n", err)
		return 2
	}
	if err := validateCLIConfig(config); err != nil {
		fmt.Fprintf(stderr, "ivfplay: configuration error: %v\n", err)
		return 2
	}

	opts, err := buildOptions(config)
	if err != nil {
		fmt.Fprintf(stderr, "ivfplay: %v\n", err)
		return 2
	}
	if err := opts.ApplyLogLevel(); err != nil {
		fmt.Fprintf(stderr, "ivfplay: %v\n", err)
		return 2
	}

	out, err := buildOutputs(config, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "ivfplay: %v\n", err)
		return 1
	}

	outSink := out.multi()
	player, err := ivfplay.Open(config.input, opts, outSink)
	if err != nil {
		outSink.Close()
		out.close()
		fmt.Fprintf(stderr, "ivfplay: %v\n", err)
		return 1
	}
	player.OnFrame(func(fi ivfplay.FrameInfo) {
		logrus.WithFields(logrus.Fields{
			"function":  "run",
			"pts":       fi.PTS,
			"presented": fi.Presented,
			"skipped":   fi.Skipped,
		}).Debug(fi.Title())
	})

	runErr := player.Run(ctx)
	closeErr := player.Close()
	if err := out.close(); err != nil && closeErr == nil {
		closeErr = err
	}

	stats := player.Stats()
	fmt.Fprintf(stderr, "%s: %d chunks, %d frames presented (%d bytes), %d skipped, %d decode errors, %d conversion errors\n",
		config.input, stats.Chunks, stats.Presented, out.counts.Bytes, stats.SkippedImages, stats.DecodeErrors, stats.ConvertErrors)
	if stats.Truncated {
		fmt.Fprintf(stderr, "%s: file is truncated\n", config.input)
	}

	switch {
	case errors.Is(runErr, context.Canceled):
		fmt.Fprintln(stderr, "ivfplay: interrupted")
		return 130
	case runErr != nil:
		fmt.Fprintf(stderr, "ivfplay: %v\n", runErr)
		return 1
	case closeErr != nil:
		fmt.Fprintf(stderr, "ivfplay: %v\n", closeErr)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
