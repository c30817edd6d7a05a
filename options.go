package ivfplay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/opd-ai/ivfplay/factory"
	"github.com/opd-ai/ivfplay/interfaces"
)

// EngineOptions selects the decode engine.
type EngineOptions struct {
	// Simulation uses the in-process simulated engine instead of libvpx.
	Simulation bool `yaml:"simulation"`
	// LibraryPath loads this libvpx instead of searching the platform names.
	LibraryPath string `yaml:"library_path"`
	// Threads is the decoder thread count; 0 lets libvpx decide.
	Threads int `yaml:"threads"`
	// ABIVersion is passed to the decoder at initialization; 0 keeps the
	// factory default.
	ABIVersion int `yaml:"abi_version"`
}

// Options configures playback.
type Options struct {
	Engine EngineOptions `yaml:"engine"`

	// Realtime paces presentation by chunk timestamps and the file timebase.
	Realtime bool `yaml:"realtime"`
	// PresentAll presents every image a chunk decodes to, not just the first.
	PresentAll bool `yaml:"present_all"`
	// WaitForKeyframe drops leading chunks until one carries a VP9 key frame.
	WaitForKeyframe bool `yaml:"wait_for_keyframe"`
	// MaxFrames stops after this many presented pictures; 0 means no limit.
	MaxFrames int `yaml:"max_frames"`
	// SkipFrames decodes but does not present the first pictures.
	SkipFrames int `yaml:"skip_frames"`
	// LogLevel is a logrus level name.
	LogLevel string `yaml:"log_level"`

	// TimeProvider drives pacing; nil uses the system clock.
	TimeProvider TimeProvider `yaml:"-"`
}

// NewOptions creates a new default Options.
func NewOptions() *Options {
	return &Options{
		Realtime:        false,
		PresentAll:      false,
		WaitForKeyframe: false,
		LogLevel:        "info",
	}
}

// LoadOptions reads YAML options from path on top of NewOptions defaults.
// Unknown keys are rejected.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	opts := NewOptions()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(opts); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidOptions, err)
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":   "LoadOptions",
		"path":       path,
		"simulation": opts.Engine.Simulation,
		"realtime":   opts.Realtime,
	}).Debug("Loaded options")
	return opts, nil
}

// Validate checks option ranges.
func (o *Options) Validate() error {
	if o.MaxFrames < 0 {
		return fmt.Errorf("%w: max_frames %d is negative", ErrInvalidOptions, o.MaxFrames)
	}
	if o.SkipFrames < 0 {
		return fmt.Errorf("%w: skip_frames %d is negative", ErrInvalidOptions, o.SkipFrames)
	}
	if o.LogLevel != "" {
		if _, err := logrus.ParseLevel(o.LogLevel); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
	}
	if o.Engine.Threads < 0 || o.Engine.Threads > interfaces.MaxDecodeThreads {
		return fmt.Errorf("%w: engine threads %d out of range", ErrInvalidOptions, o.Engine.Threads)
	}
	if o.Engine.ABIVersion < 0 {
		return fmt.Errorf("%w: engine abi_version %d is negative", ErrInvalidOptions, o.Engine.ABIVersion)
	}
	return nil
}

// ApplyLogLevel sets the logrus level from LogLevel. Empty leaves it alone.
func (o *Options) ApplyLogLevel() error {
	if o.LogLevel == "" {
		return nil
	}
	level, err := logrus.ParseLevel(o.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	logrus.SetLevel(level)
	return nil
}

// configureFactory applies the engine options to f, whose configuration
// already carries any IVFPLAY_* environment overrides.
func (o *Options) configureFactory(f *factory.EngineFactory) error {
	if o.Engine.Simulation {
		f.SwitchToSimulation()
	}
	return f.UpdateConfig(o.engineConfig(f))
}

// engineConfig layers the non-zero engine options over the factory
// configuration.
func (o *Options) engineConfig(f *factory.EngineFactory) *interfaces.EngineConfig {
	cfg := f.GetCurrentConfig()
	if o.Engine.LibraryPath != "" {
		cfg.LibraryPath = o.Engine.LibraryPath
	}
	if o.Engine.Threads != 0 {
		cfg.Threads = o.Engine.Threads
	}
	if o.Engine.ABIVersion != 0 {
		cfg.ABIVersion = o.Engine.ABIVersion
	}
	return cfg
}
