package values

import "fmt"

// List is an ordered, fixed-length sequence of values. It backs both list
// constants and the LISTn/LISTn opcodes' runtime result.
type List struct {
	elems []Value
}

var _ Value = (*List)(nil)

// NewList returns a list containing the given elements. The caller must not
// modify elems afterwards.
func NewList(elems []Value) *List { return &List{elems: elems} }

func (l *List) String() string { return fmt.Sprintf("list(%d)", len(l.elems)) }
func (*List) Type() string     { return "list" }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.elems) }

// Index returns the element at i, or (Null{}, false) if i is out of range.
// GET_INDEX and list-typed register access never panic on an out-of-range
// index; they return null instead.
func (l *List) Index(i int) (Value, bool) {
	if i < 0 || i >= len(l.elems) {
		return Null{}, false
	}
	return l.elems[i], true
}

// Elems returns the backing slice; callers must treat it as read-only.
func (l *List) Elems() []Value { return l.elems }

func (l *List) equal(o *List) bool {
	if len(l.elems) != len(o.elems) {
		return false
	}
	for i, v := range l.elems {
		if !Equal(v, o.elems[i]) {
			return false
		}
	}
	return true
}
