package resolver

import "fmt"

// ResolutionError reports a rule program's modeled error terminal (spec
// §4.5 step 5, §7): the selected result fragment ran to a RETURN_ERROR
// with the given message. It is distinct from a ParameterError or
// EvaluationError, which report problems in the surrounding machinery
// rather than the rules author's own modeled failure.
type ResolutionError struct {
	Message string
}

func (e *ResolutionError) Error() string { return fmt.Sprintf("resolution error: %s", e.Message) }
