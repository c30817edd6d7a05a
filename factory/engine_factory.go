package factory

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/ivfplay/interfaces"
	"github.com/opd-ai/ivfplay/real"
	"github.com/opd-ai/ivfplay/testing"
)

// Environment variables read by NewEngineFactory.
const (
	EnvUseSimulation = "IVFPLAY_USE_SIMULATION"
	EnvLibraryPath   = "IVFPLAY_LIBVPX_PATH"
	EnvDecodeThreads = "IVFPLAY_DECODE_THREADS"
	EnvABIVersion    = "IVFPLAY_ABI_VERSION"
)

// EngineFactory creates decode engine implementations based on configuration.
// It is safe for concurrent use; all methods are protected by an internal mutex.
type EngineFactory struct {
	mu            sync.RWMutex
	defaultConfig *interfaces.EngineConfig
}

// TestConfigOption is a functional option for customizing test simulation configuration.
type TestConfigOption func(*interfaces.EngineConfig)

// NewEngineFactory creates a new factory with default configuration
func NewEngineFactory() *EngineFactory {
	defaultConfig := createDefaultConfig()
	applyEnvironmentOverrides(defaultConfig)
	logConfigurationInfo(defaultConfig)

	return &EngineFactory{
		defaultConfig: defaultConfig,
	}
}

// createDefaultConfig initializes the default engine configuration.
//
// Default Value Rationale:
//   - UseSimulation: false - Real decoding by default; simulation must be explicitly enabled
//   - LibraryPath: "" - Search the platform library names
//   - Threads: 0 - Let libvpx pick
//   - ABIVersion: interfaces.DefaultABIVersion
func createDefaultConfig() *interfaces.EngineConfig {
	return &interfaces.EngineConfig{
		UseSimulation: false,
		ABIVersion:    interfaces.DefaultABIVersion,
	}
}

// applyEnvironmentOverrides updates configuration based on IVFPLAY_* environment variables.
func applyEnvironmentOverrides(config *interfaces.EngineConfig) {
	parseSimulationSetting(config)
	parseLibraryPathSetting(config)
	parseThreadsSetting(config)
	parseABIVersionSetting(config)
}

// parseSimulationSetting updates UseSimulation from IVFPLAY_USE_SIMULATION.
// Unparseable values are logged and ignored.
func parseSimulationSetting(config *interfaces.EngineConfig) {
	if useSimStr := os.Getenv(EnvUseSimulation); useSimStr != "" {
		useSim, err := strconv.ParseBool(useSimStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseSimulationSetting",
				"env_var":     EnvUseSimulation,
				"value":       useSimStr,
				"error":       err.Error(),
				"using_value": config.UseSimulation,
			}).Warn("Failed to parse IVFPLAY_USE_SIMULATION environment variable, using default")
			return
		}
		config.UseSimulation = useSim
	}
}

func parseLibraryPathSetting(config *interfaces.EngineConfig) {
	if path := os.Getenv(EnvLibraryPath); path != "" {
		config.LibraryPath = path
	}
}

// parseThreadsSetting updates Threads from IVFPLAY_DECODE_THREADS, keeping
// the default when the value does not parse or is out of
// [0, interfaces.MaxDecodeThreads].
func parseThreadsSetting(config *interfaces.EngineConfig) {
	if threadsStr := os.Getenv(EnvDecodeThreads); threadsStr != "" {
		threads, err := strconv.Atoi(threadsStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseThreadsSetting",
				"env_var":     EnvDecodeThreads,
				"value":       threadsStr,
				"error":       err.Error(),
				"using_value": config.Threads,
			}).Warn("Failed to parse IVFPLAY_DECODE_THREADS environment variable, using default")
			return
		}
		if threads < 0 || threads > interfaces.MaxDecodeThreads {
			logrus.WithFields(logrus.Fields{
				"function":    "parseThreadsSetting",
				"env_var":     EnvDecodeThreads,
				"value":       threads,
				"min":         0,
				"max":         interfaces.MaxDecodeThreads,
				"using_value": config.Threads,
			}).Warn("IVFPLAY_DECODE_THREADS value out of bounds, using default")
			return
		}
		config.Threads = threads
	}
}

func parseABIVersionSetting(config *interfaces.EngineConfig) {
	if verStr := os.Getenv(EnvABIVersion); verStr != "" {
		ver, err := strconv.Atoi(verStr)
		if err != nil || ver <= 0 {
			logrus.WithFields(logrus.Fields{
				"function":    "parseABIVersionSetting",
				"env_var":     EnvABIVersion,
				"value":       verStr,
				"using_value": config.ABIVersion,
			}).Warn("Invalid IVFPLAY_ABI_VERSION environment variable, using default")
			return
		}
		config.ABIVersion = ver
	}
}

// logConfigurationInfo logs the final configuration settings for debugging purposes.
func logConfigurationInfo(config *interfaces.EngineConfig) {
	logrus.WithFields(logrus.Fields{
		"function":       "NewEngineFactory",
		"use_simulation": config.UseSimulation,
		"library_path":   config.LibraryPath,
		"threads":        config.Threads,
		"abi_version":    config.ABIVersion,
	}).Info("Created engine factory with configuration")
}

// CreateEngine creates a decode engine based on the factory configuration
func (f *EngineFactory) CreateEngine() (interfaces.IDecodeEngine, error) {
	return f.CreateEngineWithConfig(nil)
}

// CreateEngineWithConfig creates a decode engine with custom configuration.
// A nil config uses the factory default.
func (f *EngineFactory) CreateEngineWithConfig(config *interfaces.EngineConfig) (interfaces.IDecodeEngine, error) {
	if config == nil {
		config = f.GetCurrentConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":       "CreateEngineWithConfig",
		"use_simulation": config.UseSimulation,
		"library_path":   config.LibraryPath,
		"threads":        config.Threads,
	}).Info("Creating decode engine implementation")

	if config.UseSimulation {
		return testing.NewSimulatedEngine(config), nil
	}

	engine, err := real.NewLibvpxEngine(config)
	if err != nil {
		return nil, err
	}
	return engine, nil
}

// WithThreads sets the decoder thread count for the test configuration.
func WithThreads(threads int) TestConfigOption {
	return func(c *interfaces.EngineConfig) {
		c.Threads = threads
	}
}

// CreateSimulationForTesting creates a simulation engine specifically for testing.
// It accepts optional TestConfigOption functions to override default test values.
func (f *EngineFactory) CreateSimulationForTesting(opts ...TestConfigOption) *testing.SimulatedEngine {
	testConfig := &interfaces.EngineConfig{
		UseSimulation: true,
		Threads:       1,
		ABIVersion:    interfaces.DefaultABIVersion,
	}
	for _, opt := range opts {
		opt(testConfig)
	}

	logrus.WithFields(logrus.Fields{
		"function": "CreateSimulationForTesting",
		"threads":  testConfig.Threads,
	}).Info("Creating simulation engine for testing")

	return testing.NewSimulatedEngine(testConfig)
}

// SwitchToSimulation switches the configuration to use simulation
func (f *EngineFactory) SwitchToSimulation() {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SwitchToSimulation",
		"previous": f.defaultConfig.UseSimulation,
	}).Info("Switching factory to simulation mode")

	f.defaultConfig.UseSimulation = true
}

// GetCurrentConfig returns a copy of the current default configuration
func (f *EngineFactory) GetCurrentConfig() *interfaces.EngineConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()

	c := *f.defaultConfig
	return &c
}

// IsUsingSimulation returns true if the factory is configured for simulation
func (f *EngineFactory) IsUsingSimulation() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.defaultConfig.UseSimulation
}

// UpdateConfig validates and replaces the factory's default configuration
func (f *EngineFactory) UpdateConfig(config *interfaces.EngineConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":       "UpdateConfig",
		"old_simulation": f.defaultConfig.UseSimulation,
		"new_simulation": config.UseSimulation,
		"old_threads":    f.defaultConfig.Threads,
		"new_threads":    config.Threads,
	}).Info("Updating factory configuration")

	c := *config
	f.defaultConfig = &c
	return nil
}
