package values

import "strconv"

// Null is the value of an unset register or a missing attribute. Its only
// instance is the zero value Null{}, so a nil Value interface and an
// explicit Null{} both mean "no value" — Truth and Equal treat them
// identically.
type Null struct{}

var _ Value = Null{}

func (Null) String() string { return "null" }
func (Null) Type() string   { return "null" }

// Bool is the type of a boolean constant or comparison result.
type Bool bool

var _ Value = Bool(false)

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }
func (Bool) Type() string     { return "bool" }

// Int is a signed 32-bit integer, matching the bytecode format's int32
// constant tag. No implicit widening or narrowing is ever performed on it.
type Int int32

var _ Value = Int(0)

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (Int) Type() string     { return "int" }

// String is an immutable UTF-8 text value.
type String string

var _ Value = String("")

func (s String) String() string { return strconv.Quote(string(s)) }
func (String) Type() string     { return "string" }
