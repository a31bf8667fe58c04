// Package values implements the tagged value union manipulated by the rule
// VM: the null/string/int32/bool/list/map typed constants described by the
// bytecode format, plus the two runtime-only shapes (Template and URI) that
// opcodes produce and consume but that never appear in the constant pool
// directly.
package values

// Value is implemented by every value the VM can push on its operand stack,
// store in a register, or read from the constant pool. It deliberately
// carries no Freeze/mutation contract: bytecode values are immutable once
// decoded, and the VM never shares a Value across resolutions.
type Value interface {
	// String returns a debug representation, used by disassembly and error
	// messages, not by RETURN_ENDPOINT's URL construction.
	String() string

	// Type names the value's tag, e.g. "string", "map".
	Type() string
}

// Truth implements the VM's uniform truthiness rule: null is false, a bool
// is itself, anything else is true.
func Truth(v Value) bool {
	switch v := v.(type) {
	case nil:
		return false
	case Null:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}

// Equal implements EQUALS: structural equality of the tagged union. Values
// of different concrete type are never equal, including Null compared to
// anything but Null.
func Equal(x, y Value) bool {
	if x == nil {
		x = Null{}
	}
	if y == nil {
		y = Null{}
	}
	switch x := x.(type) {
	case Null:
		_, ok := y.(Null)
		return ok
	case Bool:
		yb, ok := y.(Bool)
		return ok && x == yb
	case Int:
		yi, ok := y.(Int)
		return ok && x == yi
	case String:
		ys, ok := y.(String)
		return ok && x == ys
	case *List:
		yl, ok := y.(*List)
		return ok && x.equal(yl)
	case *Map:
		ym, ok := y.(*Map)
		return ok && x.equal(ym)
	default:
		return false
	}
}

// NoSuchAttrError is returned by GetPath when a dotted/bracketed attribute
// path does not resolve against the root value. The runtime never augments
// this message; there is no misspelling-suggestion feature as in a full
// language runtime, just a flat "no such field" report.
type NoSuchAttrError string

func (e NoSuchAttrError) Error() string { return string(e) }
