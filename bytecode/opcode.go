package bytecode

import "fmt"

// Opcode is the VM's closed instruction set (spec §4.2). Unlike the
// teacher's varint-argument scheme, every operand here has a fixed width
// (u8/u16/u8+u16/...), so encoded instruction length is a pure function of
// the opcode byte — no decoding is needed to compute it, which keeps
// disassembly and jump-target validation simple.
type Opcode uint8

// "x OP y z" stack pictures follow the same convention as the teacher's
// opcode table: operands read left-to-right are popped bottom-to-top.
const (
	NOP Opcode = iota // - NOP -, reserved for alignment padding, never emitted by a well-formed producer

	LOAD_CONST     //   - LOAD_CONST<u8>     value
	LOAD_CONST_W   //   - LOAD_CONST_W<u16>  value
	LOAD_REGISTER  //   - LOAD_REGISTER<u8>  value
	SET_REGISTER   //   value SET_REGISTER<u8> value   (peeks, does not pop)

	NOT    //   x NOT    bool
	ISSET  //   x ISSET  bool
	IS_TRUE // x IS_TRUE bool

	TEST_REGISTER_ISSET    // - TEST_REGISTER_ISSET<u8>    bool
	TEST_REGISTER_NOT_SET  // - TEST_REGISTER_NOT_SET<u8>  bool
	TEST_REGISTER_IS_TRUE  // - TEST_REGISTER_IS_TRUE<u8>  bool
	TEST_REGISTER_IS_FALSE // - TEST_REGISTER_IS_FALSE<u8> bool

	EQUALS         // x y EQUALS         bool
	STRING_EQUALS  // x y STRING_EQUALS  bool
	BOOLEAN_EQUALS // x y BOOLEAN_EQUALS bool

	LIST0 // -          LIST0    list
	LIST1 // x          LIST1    list
	LIST2 // x y        LIST2    list
	LISTN // x1..xn     LISTN<u8=n> list

	MAP0 // -                  MAP0 map
	MAP1 // v k                MAP1 map   (key on top, popped before its value)
	MAP2 // v k v k             MAP2 map
	MAP3 // v k v k v k         MAP3 map
	MAP4 // v k v k v k v k     MAP4 map
	MAPN // v k ... (n pairs)   MAPN<u8=n> map

	RESOLVE_TEMPLATE // x1..xn RESOLVE_TEMPLATE<u16=const> value

	FN0 // -          FN0<u8=func> value
	FN1 // x          FN1<u8=func> value
	FN2 // x y        FN2<u8=func> value
	FN3 // x y z      FN3<u8=func> value
	FN  // x1..xn     FN<u8=func>  value   (arity from function metadata)

	GET_PROPERTY     // x          GET_PROPERTY<u16=const>        value
	GET_INDEX        // x          GET_INDEX<u8 idx>              value
	GET_PROPERTY_REG // -          GET_PROPERTY_REG<u8 reg,u16 const> value
	GET_INDEX_REG    // -          GET_INDEX_REG<u8 reg,u8 idx>   value

	SUBSTRING          // x SUBSTRING<u8 start,u8 end,u8 reverse> value
	IS_VALID_HOST_LABEL // x IS_VALID_HOST_LABEL<u8 allowDots> bool
	PARSE_URL          // x PARSE_URL  value
	URI_ENCODE         // x URI_ENCODE value

	JT_OR_POP // x JT_OR_POP<u16 offset> x|-   (jump and forward operand, or pop)

	RETURN_ERROR    // msg RETURN_ERROR -
	RETURN_ENDPOINT // [headers] [props] url RETURN_ENDPOINT<u8 flags> -   (url on top, popped first)
	RETURN_VALUE    // x RETURN_VALUE -

	opcodeMax = RETURN_VALUE
)

var opcodeNames = [...]string{
	NOP:                    "nop",
	LOAD_CONST:             "load_const",
	LOAD_CONST_W:           "load_const_w",
	LOAD_REGISTER:          "load_register",
	SET_REGISTER:           "set_register",
	NOT:                    "not",
	ISSET:                  "isset",
	IS_TRUE:                "is_true",
	TEST_REGISTER_ISSET:    "test_register_isset",
	TEST_REGISTER_NOT_SET:  "test_register_not_set",
	TEST_REGISTER_IS_TRUE:  "test_register_is_true",
	TEST_REGISTER_IS_FALSE: "test_register_is_false",
	EQUALS:                 "equals",
	STRING_EQUALS:          "string_equals",
	BOOLEAN_EQUALS:         "boolean_equals",
	LIST0:                  "list0",
	LIST1:                  "list1",
	LIST2:                  "list2",
	LISTN:                  "listn",
	MAP0:                   "map0",
	MAP1:                   "map1",
	MAP2:                   "map2",
	MAP3:                   "map3",
	MAP4:                   "map4",
	MAPN:                   "mapn",
	RESOLVE_TEMPLATE:       "resolve_template",
	FN0:                    "fn0",
	FN1:                    "fn1",
	FN2:                    "fn2",
	FN3:                    "fn3",
	FN:                     "fn",
	GET_PROPERTY:           "get_property",
	GET_INDEX:              "get_index",
	GET_PROPERTY_REG:       "get_property_reg",
	GET_INDEX_REG:          "get_index_reg",
	SUBSTRING:              "substring",
	IS_VALID_HOST_LABEL:    "is_valid_host_label",
	PARSE_URL:              "parse_url",
	URI_ENCODE:             "uri_encode",
	JT_OR_POP:              "jt_or_pop",
	RETURN_ERROR:           "return_error",
	RETURN_ENDPOINT:        "return_endpoint",
	RETURN_VALUE:           "return_value",
}

var reverseLookupOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, s := range opcodeNames {
		if s != "" {
			m[s] = Opcode(op)
		}
	}
	return m
}()

// operandShapes gives, per opcode, the byte width of each of its operands
// in encoding order (e.g. GET_PROPERTY_REG's {1, 2} is a u8 register index
// followed by a u16 constant index). An empty/absent entry means no
// operands. Every width is a compile-time constant — unlike the teacher's
// varint scheme, no instruction needs to be decoded to know how long it is.
var operandShapes = map[Opcode][]uint8{
	LOAD_CONST:             {1},
	LOAD_CONST_W:           {2},
	LOAD_REGISTER:          {1},
	SET_REGISTER:           {1},
	TEST_REGISTER_ISSET:    {1},
	TEST_REGISTER_NOT_SET:  {1},
	TEST_REGISTER_IS_TRUE:  {1},
	TEST_REGISTER_IS_FALSE: {1},
	LISTN:                  {1},
	MAPN:                   {1},
	RESOLVE_TEMPLATE:       {2},
	FN0:                    {1},
	FN1:                    {1},
	FN2:                    {1},
	FN3:                    {1},
	FN:                     {1},
	GET_PROPERTY:           {2},
	GET_INDEX:              {1},
	GET_PROPERTY_REG:       {1, 2},
	GET_INDEX_REG:          {1, 1},
	SUBSTRING:              {1, 1, 1},
	IS_VALID_HOST_LABEL:    {1},
	JT_OR_POP:              {2},
	RETURN_ENDPOINT:        {1},
}

// operandWidth returns the total operand byte width of op.
func operandWidth(op Opcode) int {
	w := 0
	for _, s := range operandShapes[op] {
		w += int(s)
	}
	return w
}

// InstrLen returns the total encoded length, in bytes, of an instruction
// with opcode op (1 for the opcode byte itself, plus its fixed operand
// width). It returns an error for an opcode byte value outside the known
// set.
func InstrLen(op Opcode) (int, error) {
	if op > opcodeMax || opcodeNames[op] == "" {
		return 0, fmt.Errorf("unknown opcode %d", op)
	}
	return 1 + operandWidth(op), nil
}

func (op Opcode) String() string {
	if op <= opcodeMax && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("illegal op (%d)", op)
}

// IsValid reports whether op names a known instruction.
func (op Opcode) IsValid() bool {
	return op <= opcodeMax && opcodeNames[op] != ""
}
