// Package bdd walks the binary decision diagram that decides, for a given
// set of filled registers, which result fragment (if any) a compiled rule
// program selects (spec §4.3). It never executes VM bytecode itself; it
// calls back into a ConditionEvaluator for each tested variable and lets
// the caller (package resolver) drive the stack VM.
package bdd

import (
	"fmt"

	"github.com/mna/endpointvm/bytecode"
)

// NoMatch is returned by Walk when the diagram resolves to the FALSE
// terminal: no rule in the program matched (spec §4.3, §7). It is not an
// error condition; callers should treat it as "no endpoint".
const NoMatch = -1

// ConditionEvaluator evaluates the boolean condition named by idx (an index
// into Bytecode.Conditions) for the current resolution. Implementations
// are expected to memoize per-resolution, since the same condition can be
// reached through multiple BDD paths.
type ConditionEvaluator interface {
	EvalCondition(idx int) (bool, error)
}

// MalformedRefError reports a BDD reference that violates the encoding's
// own invariants (a complemented result reference, or an index outside the
// node/result table) discovered while walking, as opposed to at load time.
type MalformedRefError struct {
	Ref bytecode.Ref
	Msg string
}

func (e *MalformedRefError) Error() string {
	return fmt.Sprintf("bdd: malformed reference %s: %s", e.Ref, e.Msg)
}

// Walk evaluates the diagram rooted at root, consulting eval for each
// tested variable along the path the diagram dictates, and returns either
// a non-negative result index or NoMatch. The diagram must not be walked
// out of order: conditions with side effects (e.g. parseURL storing into a
// register via SET_REGISTER) depend on evaluation happening exactly once,
// exactly when the tree reaches them.
func Walk(nodes []bytecode.Node, root bytecode.Ref, eval ConditionEvaluator) (int, error) {
	ref := root
	parity := false

	for {
		if err := ref.Validate(); err != nil {
			return 0, &MalformedRefError{Ref: ref, Msg: err.Error()}
		}

		if ref.IsTerminal() {
			truth := (ref == bytecode.TrueRef) != parity
			if truth {
				return 0, &MalformedRefError{Ref: ref, Msg: "reached TRUE terminal without a result reference"}
			}
			return NoMatch, nil
		}

		if ref.IsResult() {
			if parity {
				return 0, &MalformedRefError{Ref: ref, Msg: "result reference reached under complement"}
			}
			return ref.ResultIndex(), nil
		}

		idx := ref.NodeIndex()
		if idx < 0 || idx >= len(nodes) {
			return 0, &MalformedRefError{Ref: ref, Msg: fmt.Sprintf("node index %d out of range (have %d nodes)", idx, len(nodes))}
		}
		node := nodes[idx]

		cond, err := eval.EvalCondition(int(node.VarIdx))
		if err != nil {
			return 0, err
		}

		parity = parity != ref.IsComplemented()
		if cond {
			ref = node.High
		} else {
			ref = node.Low
		}
	}
}
