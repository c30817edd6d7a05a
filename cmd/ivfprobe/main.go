package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/ivfplay"
)

// CLIConfig holds the parsed command line.
type CLIConfig struct {
	jobs    int
	verbose bool
	files   []string
}

func parseCLIFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	config := &CLIConfig{}
	fs := flag.NewFlagSet("ivfprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&config.jobs, "j", runtime.NumCPU(), "Files probed at once")
	fs.BoolVar(&config.verbose, "v", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: ivfprobe [options] file.ivf...\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return nil, fmt.Errorf("no input files")
	}
	if config.jobs < 1 {
		return nil, fmt.Errorf("-j must be at least 1, got %d", config.jobs)
	}
	config.files = fs.Args()
	return config, nil
}

// result is the outcome of probing one file.
type result struct {
	report *ivfplay.ProbeReport
	err    error
}

// probeAll probes files with at most jobs running at once. A failing file
// does not stop the others; cancelling ctx skips files not yet started.
func probeAll(ctx context.Context, files []string, jobs int) []result {
	results := make([]result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].err = err
				return nil
			}
			report, err := ivfplay.Probe(path)
			results[i] = result{report: report, err: err}
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "probeAll",
					"path":     path,
					"error":    err.Error(),
				}).Debug("Probe failed")
			}
			return nil
		})
	}
	g.Wait()
	return results
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	config, err := parseCLIFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "ivfprobe: %v\n", err)
		return 2
	}
	logrus.SetLevel(logrus.WarnLevel)
	if config.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	code := 0
	for i, r := range probeAll(ctx, config.files, config.jobs) {
		if r.err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", config.files[i], r.err)
			code = 1
			continue
		}
		if err := r.report.Format(stdout); err != nil {
			fmt.Fprintf(stderr, "ivfprobe: %v\n", err)
			return 1
		}
	}
	return code
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
