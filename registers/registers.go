// Package registers implements the input-binding layer that turns a
// caller-supplied parameter map plus ambient builtin providers into a fully
// populated register vector (spec §4.4): values are taken from explicit
// input, then from builtin providers, then from declared defaults, with
// required-but-unfilled registers reported as a ParameterError.
package registers

import (
	"github.com/mna/endpointvm/bytecode"
	"github.com/mna/endpointvm/values"
)

// Provider supplies a value for a builtin-backed register from ambient
// context (client region, partition, and the like — the shape of ctx is a
// host concern, out of scope here). Returning ok=false means "no value
// provided"; the filler leaves the register at its template value (null
// unless some other mechanism already set it).
type Provider func(ctx any) (v values.Value, ok bool)

// Filler populates a register vector for one resolution. A Bytecode with
// fewer than 64 registers gets the bitmask implementation; at 64 or more it
// gets the array implementation. Both satisfy identical semantics (spec
// §4.4's "Array (N ≥ 64): identical semantics using bool[N] tracking").
type Filler interface {
	// Fill copies bc's register template into dst, applies params and then
	// providers, and fails if any hard-required register is still unfilled.
	// dst must have length equal to the bytecode's register count.
	Fill(dst []values.Value, params map[string]values.Value, providers map[string]Provider, ctx any) error
}

// New returns the Filler appropriate for bc's register count.
func New(bc *bytecode.Bytecode) Filler {
	if len(bc.Registers) < 64 {
		return newBitmaskFiller(bc)
	}
	return newArrayFiller(bc)
}

// ParameterError reports a problem with the caller-supplied parameter map
// discovered while filling registers: a required parameter is still unset
// after builtins and defaults, a supplied value has the wrong shape, or a
// map parameter used a non-string key (spec §7). It is always raised before
// the BDD is driven.
type ParameterError struct {
	Msg string
}

func (e *ParameterError) Error() string { return "parameter: " + e.Msg }

// missingRequiredError reports the lowest-index unfilled hard-required
// register, per spec §4.4 step 5: only a single name is ever reported, never
// a list of every unfilled register. bc.HardRequiredIndices is built in
// ascending register-index order, so the first unfilled entry found is the
// lowest.
func missingRequiredError(bc *bytecode.Bytecode, filled func(i int) bool) error {
	for _, i := range bc.HardRequiredIndices {
		if !filled(i) {
			return &ParameterError{Msg: "Missing required parameter: " + bc.Registers[i].Name}
		}
	}
	return nil
}
