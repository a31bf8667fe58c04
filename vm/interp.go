package vm

import (
	"encoding/binary"

	"github.com/mna/endpointvm/bytecode"
	"github.com/mna/endpointvm/values"
)

// run executes instructions starting at pc until a RETURN_* opcode is
// reached, returning either a values.Value (from RETURN_VALUE) or an
// *Outcome (from RETURN_ENDPOINT/RETURN_ERROR).
func (e *Evaluator) run(pc int) (any, error) {
	code := e.bc.Code
	for {
		if pc >= len(code) {
			return nil, evalErrf(pc, "program counter ran past end of code section")
		}
		op := bytecode.Opcode(code[pc])
		n, err := bytecode.InstrLen(op)
		if err != nil {
			return nil, evalErrf(pc, "%s", err)
		}
		if pc+n > len(code) {
			return nil, evalErrf(pc, "truncated instruction %s", op)
		}
		operands := code[pc+1 : pc+n]
		nextPC := pc + n

		switch op {
		case bytecode.NOP:
			// no-op, alignment padding only

		case bytecode.LOAD_CONST:
			idx := int(operands[0])
			v, err := e.constant(pc, idx)
			if err != nil {
				return nil, err
			}
			if err := e.push(v, pc); err != nil {
				return nil, err
			}

		case bytecode.LOAD_CONST_W:
			idx := int(u16(operands))
			v, err := e.constant(pc, idx)
			if err != nil {
				return nil, err
			}
			if err := e.push(v, pc); err != nil {
				return nil, err
			}

		case bytecode.LOAD_REGISTER:
			v, err := e.register(pc, int(operands[0]))
			if err != nil {
				return nil, err
			}
			if err := e.push(v, pc); err != nil {
				return nil, err
			}

		case bytecode.SET_REGISTER:
			v, err := e.peek(pc)
			if err != nil {
				return nil, err
			}
			idx := int(operands[0])
			if idx < 0 || idx >= len(e.regs) {
				return nil, evalErrf(pc, "register index %d out of range", idx)
			}
			e.regs[idx] = v

		case bytecode.NOT:
			v, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			if err := e.push(values.Bool(!values.Truth(v)), pc); err != nil {
				return nil, err
			}

		case bytecode.ISSET:
			v, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			if err := e.push(values.Bool(!isNull(v)), pc); err != nil {
				return nil, err
			}

		case bytecode.IS_TRUE:
			v, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			if err := e.push(values.Bool(isTrue(v)), pc); err != nil {
				return nil, err
			}

		case bytecode.TEST_REGISTER_ISSET, bytecode.TEST_REGISTER_NOT_SET,
			bytecode.TEST_REGISTER_IS_TRUE, bytecode.TEST_REGISTER_IS_FALSE:
			v, err := e.register(pc, int(operands[0]))
			if err != nil {
				return nil, err
			}
			var result bool
			switch op {
			case bytecode.TEST_REGISTER_ISSET:
				result = !isNull(v)
			case bytecode.TEST_REGISTER_NOT_SET:
				result = isNull(v)
			case bytecode.TEST_REGISTER_IS_TRUE:
				result = isTrue(v)
			case bytecode.TEST_REGISTER_IS_FALSE:
				result = isFalse(v)
			}
			if err := e.push(values.Bool(result), pc); err != nil {
				return nil, err
			}

		case bytecode.EQUALS:
			y, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			x, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			if err := e.push(values.Bool(values.Equal(x, y)), pc); err != nil {
				return nil, err
			}

		case bytecode.STRING_EQUALS:
			y, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			x, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			xs, ok1 := x.(values.String)
			ys, ok2 := y.(values.String)
			if !ok1 || !ok2 {
				return nil, evalErrf(pc, "string_equals: operand type mismatch (%T, %T)", x, y)
			}
			if err := e.push(values.Bool(xs == ys), pc); err != nil {
				return nil, err
			}

		case bytecode.BOOLEAN_EQUALS:
			y, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			x, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			xb, ok1 := x.(values.Bool)
			yb, ok2 := y.(values.Bool)
			if !ok1 || !ok2 {
				return nil, evalErrf(pc, "boolean_equals: operand type mismatch (%T, %T)", x, y)
			}
			if err := e.push(values.Bool(xb == yb), pc); err != nil {
				return nil, err
			}

		case bytecode.LIST0, bytecode.LIST1, bytecode.LIST2, bytecode.LISTN:
			n := listArity(op, operands)
			elems, err := e.popN(pc, n)
			if err != nil {
				return nil, err
			}
			if err := e.push(values.NewList(elems), pc); err != nil {
				return nil, err
			}

		case bytecode.MAP0, bytecode.MAP1, bytecode.MAP2, bytecode.MAP3, bytecode.MAP4, bytecode.MAPN:
			n := mapArity(op, operands)
			m := values.NewMap(n)
			for i := 0; i < n; i++ {
				key, err := e.pop(pc)
				if err != nil {
					return nil, err
				}
				ks, ok := key.(values.String)
				if !ok {
					return nil, evalErrf(pc, "map entry key must be a string, got %T", key)
				}
				val, err := e.pop(pc)
				if err != nil {
					return nil, err
				}
				m.Set(string(ks), val)
			}
			if err := e.push(m, pc); err != nil {
				return nil, err
			}

		case bytecode.RESOLVE_TEMPLATE:
			idx := int(u16(operands))
			tmpl, err := e.template(pc, idx)
			if err != nil {
				return nil, err
			}
			args, err := e.popN(pc, tmpl.PlaceholderCount())
			if err != nil {
				return nil, err
			}
			v, err := tmpl.Resolve(args)
			if err != nil {
				return nil, evalErrWrap(pc, "resolve_template", err)
			}
			if err := e.push(v, pc); err != nil {
				return nil, err
			}

		case bytecode.FN0, bytecode.FN1, bytecode.FN2, bytecode.FN3, bytecode.FN:
			fnIdx := int(operands[0])
			if fnIdx < 0 || fnIdx >= len(e.bc.Functions) {
				return nil, evalErrf(pc, "function index %d out of range", fnIdx)
			}
			fn := e.bc.Functions[fnIdx]
			arity := fn.Arity()
			if op != bytecode.FN {
				arity = fnArity(op)
			}
			args, err := e.popN(pc, arity)
			if err != nil {
				return nil, err
			}
			v, err := fn.Apply(args)
			if err != nil {
				return nil, evalErrWrap(pc, "function "+fn.Name(), err)
			}
			if err := e.push(v, pc); err != nil {
				return nil, err
			}

		case bytecode.GET_PROPERTY:
			obj, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			path, err := e.constantString(pc, int(u16(operands)))
			if err != nil {
				return nil, err
			}
			v, err := getPropertyOrNull(path, obj)
			if err != nil {
				return nil, evalErrWrap(pc, "get_property", err)
			}
			if err := e.push(v, pc); err != nil {
				return nil, err
			}

		case bytecode.GET_INDEX:
			obj, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			l, ok := obj.(*values.List)
			if !ok {
				return nil, evalErrf(pc, "get_index: operand is %T, want list", obj)
			}
			v, found := l.Index(int(operands[0]))
			if !found {
				v = values.Null{}
			}
			if err := e.push(v, pc); err != nil {
				return nil, err
			}

		case bytecode.GET_PROPERTY_REG:
			obj, err := e.register(pc, int(operands[0]))
			if err != nil {
				return nil, err
			}
			path, err := e.constantString(pc, int(u16(operands[1:3])))
			if err != nil {
				return nil, err
			}
			v, err := getPropertyOrNull(path, obj)
			if err != nil {
				return nil, evalErrWrap(pc, "get_property_reg", err)
			}
			if err := e.push(v, pc); err != nil {
				return nil, err
			}

		case bytecode.GET_INDEX_REG:
			obj, err := e.register(pc, int(operands[0]))
			if err != nil {
				return nil, err
			}
			l, ok := obj.(*values.List)
			if !ok {
				return nil, evalErrf(pc, "get_index_reg: register is %T, want list", obj)
			}
			v, found := l.Index(int(operands[1]))
			if !found {
				v = values.Null{}
			}
			if err := e.push(v, pc); err != nil {
				return nil, err
			}

		case bytecode.SUBSTRING:
			v, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			s, ok := v.(values.String)
			if !ok {
				return nil, evalErrf(pc, "substring: operand is %T, want string", v)
			}
			result, ok := substring(string(s), int(operands[0]), int(operands[1]), operands[2] != 0)
			if !ok {
				if err := e.push(values.Null{}, pc); err != nil {
					return nil, err
				}
			} else if err := e.push(values.String(result), pc); err != nil {
				return nil, err
			}

		case bytecode.IS_VALID_HOST_LABEL:
			v, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			s, ok := v.(values.String)
			if !ok {
				return nil, evalErrf(pc, "is_valid_host_label: operand is %T, want string", v)
			}
			result := values.IsValidHostLabel(string(s), operands[0] != 0)
			if err := e.push(values.Bool(result), pc); err != nil {
				return nil, err
			}

		case bytecode.PARSE_URL:
			v, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			s, ok := v.(values.String)
			if !ok {
				return nil, evalErrf(pc, "parse_url: operand is %T, want string", v)
			}
			u, ok := values.ParseURL(string(s))
			var result values.Value = values.Null{}
			if ok {
				result = u
			}
			if err := e.push(result, pc); err != nil {
				return nil, err
			}

		case bytecode.URI_ENCODE:
			v, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			s, ok := v.(values.String)
			if !ok {
				return nil, evalErrf(pc, "uri_encode: operand is %T, want string", v)
			}
			if err := e.push(values.String(values.URIEncode(string(s))), pc); err != nil {
				return nil, err
			}

		case bytecode.JT_OR_POP:
			v, err := e.peek(pc)
			if err != nil {
				return nil, err
			}
			if values.Truth(v) {
				nextPC = pc + n + int(u16(operands))
			} else {
				if _, err := e.pop(pc); err != nil {
					return nil, err
				}
			}

		case bytecode.RETURN_ERROR:
			v, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			msg, ok := v.(values.String)
			if !ok {
				return nil, evalErrf(pc, "return_error: operand is %T, want string", v)
			}
			return &Outcome{Kind: OutcomeError, ErrorMessage: string(msg)}, nil

		case bytecode.RETURN_ENDPOINT:
			flags := operands[0]
			var headers, props values.Value
			url, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			if flags&2 != 0 {
				v, err := e.pop(pc)
				if err != nil {
					return nil, err
				}
				props = v
			}
			if flags&1 != 0 {
				v, err := e.pop(pc)
				if err != nil {
					return nil, err
				}
				headers = v
			}
			return &Outcome{Kind: OutcomeEndpoint, URL: url, Properties: props, Headers: headers}, nil

		case bytecode.RETURN_VALUE:
			v, err := e.pop(pc)
			if err != nil {
				return nil, err
			}
			return v, nil

		default:
			return nil, evalErrf(pc, "unknown opcode %d", op)
		}

		pc = nextPC
	}
}

func u16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

func (e *Evaluator) constant(pc, idx int) (values.Value, error) {
	if idx < 0 || idx >= len(e.bc.Constants) {
		return nil, evalErrf(pc, "constant index %d out of range", idx)
	}
	return e.bc.Constants[idx], nil
}

func (e *Evaluator) constantString(pc, idx int) (string, error) {
	v, err := e.constant(pc, idx)
	if err != nil {
		return "", err
	}
	s, ok := v.(values.String)
	if !ok {
		return "", evalErrf(pc, "constant %d is %T, want string", idx, v)
	}
	return string(s), nil
}

func (e *Evaluator) template(pc, idx int) (*values.Template, error) {
	if t, ok := e.templates[idx]; ok {
		return t, nil
	}
	s, err := e.constantString(pc, idx)
	if err != nil {
		return nil, err
	}
	t, err := values.CompileTemplate(s)
	if err != nil {
		return nil, evalErrWrap(pc, "malformed template constant", err)
	}
	e.templates[idx] = t
	return t, nil
}

func (e *Evaluator) register(pc, idx int) (values.Value, error) {
	if idx < 0 || idx >= len(e.regs) {
		return nil, evalErrf(pc, "register index %d out of range", idx)
	}
	v := e.regs[idx]
	if v == nil {
		return values.Null{}, nil
	}
	return v, nil
}

func (e *Evaluator) popN(pc, n int) ([]values.Value, error) {
	out := make([]values.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := e.pop(pc)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func isNull(v values.Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(values.Null)
	return ok
}

func isTrue(v values.Value) bool {
	b, ok := v.(values.Bool)
	return ok && bool(b)
}

func isFalse(v values.Value) bool {
	b, ok := v.(values.Bool)
	return ok && !bool(b)
}

func listArity(op bytecode.Opcode, operands []byte) int {
	switch op {
	case bytecode.LIST0:
		return 0
	case bytecode.LIST1:
		return 1
	case bytecode.LIST2:
		return 2
	default: // LISTN
		return int(operands[0])
	}
}

func mapArity(op bytecode.Opcode, operands []byte) int {
	switch op {
	case bytecode.MAP0:
		return 0
	case bytecode.MAP1:
		return 1
	case bytecode.MAP2:
		return 2
	case bytecode.MAP3:
		return 3
	case bytecode.MAP4:
		return 4
	default: // MAPN
		return int(operands[0])
	}
}

func fnArity(op bytecode.Opcode) int {
	switch op {
	case bytecode.FN0:
		return 0
	case bytecode.FN1:
		return 1
	case bytecode.FN2:
		return 2
	case bytecode.FN3:
		return 3
	default:
		return 0
	}
}

func getPropertyOrNull(path string, obj values.Value) (values.Value, error) {
	if isNull(obj) {
		return values.Null{}, nil
	}
	return values.GetPath(obj, path)
}

// substring implements spec §4.2's SUBSTRING, returning ok=false when the
// computed bounds fall outside the string.
func substring(s string, start, end int, reverse bool) (string, bool) {
	l := len(s)
	if reverse {
		start, end = l-end, l-start
	}
	if start < 0 || end < 0 || start > end || end > l {
		return "", false
	}
	return s[start:end], true
}
