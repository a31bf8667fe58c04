package bytecode

import "fmt"

// resultBase is the magnitude threshold above which a Ref names a result
// terminal rather than a BDD node (spec §3): |ref| >= resultBase encodes a
// result index of |ref| - resultBase.
const resultBase = 100_000_000

// Ref is a signed BDD edge reference using complement-edge encoding (spec
// §3, §4.3): the sign bit flips the boolean meaning of the edge without
// requiring a separate node, so a node's high/low fields and the tree root
// can all share this one representation.
//
//	 1              -> constant TRUE
//	-1              -> constant FALSE
//	 n, |n| >= 2     -> node index |n|-2, complemented iff n < 0
//	 n, |n| >= resultBase -> result index |n|-resultBase, complemented iff n < 0
type Ref int32

// TrueRef and FalseRef are the two BDD terminals.
const (
	TrueRef  Ref = 1
	FalseRef Ref = -1
)

// NodeRef returns the (uncomplemented) Ref for BDD node index idx.
func NodeRef(idx int) Ref { return Ref(idx + 2) }

// ResultRef returns the (uncomplemented) Ref for result index idx.
func ResultRef(idx int) Ref { return Ref(idx + resultBase) }

// IsTerminal reports whether r is the TRUE or FALSE constant.
func (r Ref) IsTerminal() bool { return r == TrueRef || r == FalseRef }

// IsComplemented reports whether following r inverts the boolean meaning of
// whatever it points to. Always false for a terminal, since true/false are
// already their own complements' inverse.
func (r Ref) IsComplemented() bool {
	return !r.IsTerminal() && r < 0
}

// abs returns the non-negative magnitude of r.
func (r Ref) abs() int32 {
	if r < 0 {
		return int32(-r)
	}
	return int32(r)
}

// IsResult reports whether r names a result terminal rather than an
// internal BDD node.
func (r Ref) IsResult() bool {
	return !r.IsTerminal() && r.abs() >= resultBase
}

// ResultIndex returns the result index named by r. Only valid when IsResult
// is true.
func (r Ref) ResultIndex() int { return int(r.abs()) - resultBase }

// NodeIndex returns the BDD node index named by r. Only valid when r is
// neither a terminal nor a result reference.
func (r Ref) NodeIndex() int { return int(r.abs()) - 2 }

// Validate reports a malformed reference: a complemented result ref is
// nonsensical, since a result fragment's bytecode runs to completion and
// produces a concrete endpoint or error rather than a boolean the BDD walk
// could invert (spec §4.3, §7).
func (r Ref) Validate() error {
	if r.IsResult() && r.IsComplemented() {
		return fmt.Errorf("bdd ref %d: result reference cannot be complemented", int32(r))
	}
	return nil
}

func (r Ref) String() string {
	switch {
	case r == TrueRef:
		return "true"
	case r == FalseRef:
		return "false"
	case r.IsResult():
		sign := ""
		if r.IsComplemented() {
			sign = "!"
		}
		return fmt.Sprintf("%sresult(%d)", sign, r.ResultIndex())
	default:
		sign := ""
		if r.IsComplemented() {
			sign = "!"
		}
		return fmt.Sprintf("%snode(%d)", sign, r.NodeIndex())
	}
}
