// Package factory provides a factory pattern implementation for creating
// decode engines in ivfplay.
//
// The factory abstracts the creation of decode engines, allowing seamless
// switching between simulation (for testing) and libvpx without changing
// consuming code.
//
// # Configuration
//
// The factory supports configuration via environment variables:
//   - IVFPLAY_USE_SIMULATION: "true" or "false" to enable simulation mode
//   - IVFPLAY_LIBVPX_PATH: explicit libvpx shared library to load
//   - IVFPLAY_DECODE_THREADS: decoder thread count, 0 to 64
//   - IVFPLAY_ABI_VERSION: decoder ABI version passed at initialization
//
// Invalid values are logged at warning level and the default is kept.
//
// # Usage
//
//	factory := factory.NewEngineFactory()
//	engine, err := factory.CreateEngine()
//	if err != nil {
//	    return err
//	}
//	session, err := vpx.NewSession(engine)
//
// Tests can ask for a simulated engine directly:
//
//	sim := factory.NewEngineFactory().CreateSimulationForTesting(factory.WithThreads(1))
//
// # Thread Safety
//
// EngineFactory is safe for concurrent use. Engines it creates are not.
package factory
