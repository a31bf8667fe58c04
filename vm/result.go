package vm

import "github.com/mna/endpointvm/values"

// OutcomeKind discriminates what a result fragment produced (spec §4.2's
// two RETURN_* terminals for result fragments; conditions always use
// RETURN_VALUE and are reported through EvalCondition instead).
type OutcomeKind int

const (
	OutcomeEndpoint OutcomeKind = iota
	OutcomeError
)

// Outcome is the raw, still-untyped result of running a result fragment to
// completion. Package resolver interprets the popped values into a
// concrete Endpoint or a modeled error message; the VM itself only knows
// about TypedValues, not the Endpoint shape.
type Outcome struct {
	Kind OutcomeKind

	// Populated when Kind == OutcomeEndpoint.
	URL        values.Value
	Properties values.Value // nil if RETURN_ENDPOINT's flags bit 1 was unset
	Headers    values.Value // nil if RETURN_ENDPOINT's flags bit 0 was unset

	// Populated when Kind == OutcomeError.
	ErrorMessage string
}
