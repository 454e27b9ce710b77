package runtime

import "math/rand/v2"

// Config is the recognized configuration surface. Hosts build it with a
// literal struct at startup; there is no env/flag-parsing dependency
// because this library never touches the process environment.
type Config struct {
	// RNGSeed seeds the RNG built by NewRand, which each AbilitySet hands
	// to its components' contexts. The core itself never draws from it.
	RNGSeed uint64

	// DeterministicMode disables nondeterministic hooks and additionally
	// makes AbilitySet.Tick reject a logicTime that moves backward.
	DeterministicMode bool

	// TraceLevel controls how much internal tracing is emitted.
	TraceLevel TraceLevel

	// EmitChangedEventsPerAttribute overrides the schema's default silent/
	// emit flag on a per-key basis.
	EmitChangedEventsPerAttribute map[string]bool
}

// DefaultConfig returns the zero-value-safe baseline configuration.
func DefaultConfig() Config {
	return Config{
		RNGSeed:                       1,
		DeterministicMode:             true,
		TraceLevel:                    TraceOff,
		EmitChangedEventsPerAttribute: map[string]bool{},
	}
}

// Logger builds the Logger implied by this config.
func (c Config) Logger() *Logger {
	return NewLogger(c.TraceLevel, c.DeterministicMode)
}

// NewRand builds the RNG handed to component contexts that need
// randomness (ActiveUse conditions and costs). Seeded from RNGSeed, so
// DeterministicMode and non-deterministic hosts alike get a reproducible
// sequence for a given seed.
func (c Config) NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(c.RNGSeed, c.RNGSeed))
}
