package bytecode

import "fmt"

// LoadError reports a structural problem with a bytecode container that
// prevents it from being loaded at all: a bad magic/version, an
// out-of-bounds section offset, an unresolvable function name, a malformed
// BDD reference, or a register-table inconsistency (spec §7). It is always
// returned before any evaluation begins.
type LoadError struct {
	Msg string
	// Offset is the byte offset within the container at which the problem
	// was detected, or -1 when not applicable (e.g. a missing function
	// name, which has no single byte offset once decoded).
	Offset int
}

func (e *LoadError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("bytecode: %s", e.Msg)
	}
	return fmt.Sprintf("bytecode: %s (offset %d)", e.Msg, e.Offset)
}

// errf builds a LoadError with no associated byte offset.
func errf(format string, args ...any) *LoadError {
	return &LoadError{Msg: fmt.Sprintf(format, args...), Offset: -1}
}

// errAt builds a LoadError anchored to a byte offset in the container.
func errAt(offset int, format string, args ...any) *LoadError {
	return &LoadError{Msg: fmt.Sprintf(format, args...), Offset: offset}
}
