package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/ivfplay/ivf"
	testsim "github.com/opd-ai/ivfplay/testing"
)

// writeClip writes an IVF file of n simulated 4x2 chunks.
func writeClip(t *testing.T, n int) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := ivf.NewWriter(&buf, ivf.FileHeader{Width: 4, Height: 2, TimebaseDen: 30, TimebaseNum: 1})
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		chunk, err := testsim.EncodePassthrough(testsim.SolidFrame(4, 2, byte(16+i*10), 128, 128))
		require.NoError(t, err)
		require.NoError(t, w.WriteFrame(chunk, uint64(i)))
	}
	path := filepath.Join(t.TempDir(), "clip.ivf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestParseCLIFlags(t *testing.T) {
	var stderr bytes.Buffer
	config, err := parseCLIFlags([]string{
		"-o", "out.rgba", "-png", "frames", "-digest", "-",
		"-realtime", "-all", "-wait-key", "-limit", "5", "-skip", "2",
		"-sim", "-lib", "/opt/libvpx.so", "-threads", "4", "-v",
		"clip.ivf",
	}, &stderr)
	require.NoError(t, err)

	assert.Equal(t, &CLIConfig{
		output:      "out.rgba",
		pngDir:      "frames",
		digestPath:  "-",
		realtime:    true,
		presentAll:  true,
		waitKey:     true,
		limit:       5,
		skip:        2,
		simulation:  true,
		libraryPath: "/opt/libvpx.so",
		threads:     4,
		verbose:     true,
		input:       "clip.ivf",
	}, config)
}

func TestParseCLIFlagsNeedsOneInput(t *testing.T) {
	for _, args := range [][]string{{}, {"a.ivf", "b.ivf"}} {
		var stderr bytes.Buffer
		_, err := parseCLIFlags(args, &stderr)
		assert.Error(t, err)
		assert.Contains(t, stderr.String(), "Usage: ivfplay")
	}
}

func TestValidateCLIConfig(t *testing.T) {
	tests := []struct {
		name        string
		config      *CLIConfig
		errContains string
	}{
		{"valid", &CLIConfig{input: "a.ivf"}, ""},
		{"negative limit", &CLIConfig{limit: -1}, "limit cannot be negative"},
		{"negative skip", &CLIConfig{skip: -1}, "skip cannot be negative"},
		{"negative threads", &CLIConfig{threads: -1}, "threads cannot be negative"},
		{"two stdout outputs", &CLIConfig{output: "-", digestPath: "-"}, "both go to stdout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCLIConfig(tt.config)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestBuildOptionsLayersFlagsOverFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "opts.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("max_frames: 10\nskip_frames: 1\nlog_level: warn\nengine:\n  threads: 2\n"), 0o644))

	opts, err := buildOptions(&CLIConfig{configPath: cfg, limit: 3, simulation: true})
	require.NoError(t, err)
	assert.Equal(t, 3, opts.MaxFrames)
	assert.Equal(t, 1, opts.SkipFrames)
	assert.Equal(t, 2, opts.Engine.Threads)
	assert.True(t, opts.Engine.Simulation)
	assert.Equal(t, "warn", opts.LogLevel)

	opts, err = buildOptions(&CLIConfig{verbose: true})
	require.NoError(t, err)
	assert.Equal(t, "debug", opts.LogLevel)

	_, err = buildOptions(&CLIConfig{configPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestRunWritesOutputs(t *testing.T) {
	clip := writeClip(t, 3)
	dir := t.TempDir()
	raw := filepath.Join(dir, "out.rgba")
	digest := filepath.Join(dir, "out.digest")
	pngDir := filepath.Join(dir, "png")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-sim", "-o", raw, "-digest", digest, "-png", pngDir, clip,
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(raw)
	require.NoError(t, err)
	assert.Len(t, data, 3*4*2*4)

	lines, err := os.ReadFile(digest)
	require.NoError(t, err)
	split := strings.Split(strings.TrimSpace(string(lines)), "\n")
	require.Len(t, split, 4)
	assert.True(t, strings.HasPrefix(split[0], "0 0 4x2 "))
	assert.True(t, strings.HasPrefix(split[3], "total 3 "))

	pngs, err := filepath.Glob(filepath.Join(pngDir, "*.png"))
	require.NoError(t, err)
	assert.Len(t, pngs, 3)

	assert.Contains(t, stderr.String(), "3 chunks, 3 frames presented (96 bytes)")
	assert.Empty(t, stdout.String())
}

func TestRunRawToStdoutWithLimit(t *testing.T) {
	clip := writeClip(t, 4)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-sim", "-o", "-", "-limit", "2", clip}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, 2*4*2*4, stdout.Len())
}

func TestRunExitCodes(t *testing.T) {
	clip := writeClip(t, 1)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		args []string
		want int
	}{
		{"help", context.Background(), []string{"-h"}, 0},
		{"no input", context.Background(), nil, 2},
		{"bad flag value", context.Background(), []string{"-limit", "-3", clip}, 2},
		{"missing file", context.Background(), []string{"-sim", filepath.Join(t.TempDir(), "none.ivf")}, 1},
		{"interrupted", cancelled, []string{"-sim", clip}, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.want, run(tt.ctx, tt.args, &stdout, &stderr), stderr.String())
		})
	}
}

func openFDs(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("no /proc/self/fd on this platform")
	}
	return len(entries)
}

func TestBuildOutputsReleasesRawFileOnError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	tests := []struct {
		name   string
		config *CLIConfig
	}{
		{"png directory under a file", &CLIConfig{
			output: filepath.Join(dir, "a.rgba"),
			pngDir: filepath.Join(blocker, "frames"),
		}},
		{"digest in missing directory", &CLIConfig{
			output:     filepath.Join(dir, "b.rgba"),
			digestPath: filepath.Join(dir, "missing", "digest.txt"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := openFDs(t)
			out, err := buildOutputs(tt.config, &bytes.Buffer{})
			require.Error(t, err)
			assert.Nil(t, out)
			assert.FileExists(t, tt.config.output)
			assert.Equal(t, before, openFDs(t))
		})
	}
}
