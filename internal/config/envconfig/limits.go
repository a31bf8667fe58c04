// Package envconfig loads the process-wide ceilings a host embedding the
// VM enforces before ever touching a specific Bytecode program: the
// operand stack depth each Evaluator gets, and the hard caps spec.md §5
// documents as implementation-chosen (bytecode-size, register count,
// constant-nesting depth). These are deployment knobs, not per-program
// metadata, so they come from the environment the same way mainer's own
// flag parsing falls back to env vars.
package envconfig

import "github.com/caarlos0/env/v6"

// Limits holds the ceilings spec.md §5 leaves to the implementation.
// Field values of 0 mean "use the package default" wherever a consumer
// checks them; Parse never writes a zero over an unset env var.
type Limits struct {
	// MaxStack overrides vm.DefaultMaxStack for every Resolver this
	// process constructs. Spec §5: "implementation-chosen, >= 64".
	MaxStack int `env:"ENDPOINTVM_MAX_STACK" envDefault:"64"`

	// MaxRegisters is parsed but not read by any caller: the register
	// count a loaded Bytecode may declare is bounded only by
	// bytecode.MaxRegisters's hard 256 ceiling (spec §3).
	MaxRegisters int `env:"ENDPOINTVM_MAX_REGISTERS" envDefault:"256"`

	// MaxConstantDepth is parsed but not read by any caller: constant
	// decoding always uses bytecode.MaxConstantDepth (spec §3, §5).
	MaxConstantDepth int `env:"ENDPOINTVM_MAX_CONSTANT_DEPTH" envDefault:"100"`

	// MaxBytecodeSize rejects a container larger than this many bytes
	// before Load even parses the header (spec §5's "bytecode-size"
	// limit). Zero (the default when unset) means unlimited.
	MaxBytecodeSize int64 `env:"ENDPOINTVM_MAX_BYTECODE_SIZE" envDefault:"0"`
}

// Parse reads Limits from the process environment, applying the struct
// tag defaults for anything unset.
func Parse() (Limits, error) {
	var l Limits
	if err := env.Parse(&l); err != nil {
		return Limits{}, err
	}
	return l, nil
}
