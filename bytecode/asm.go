// Textual assembly form, used by tests and the CLI's disasm/asm commands
// instead of hand-editing binary containers. Grounded on the teacher's
// lang/compiler/asm.go: a line-oriented bufio.Scanner walking named
// sections, with per-section parse methods. Jump operands and BDD
// references are written as literal numbers and node/result indices, not
// labels; each code block's starting offset is recorded as it is
// assembled.
package bytecode

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/mna/endpointvm/functions"
	"github.com/mna/endpointvm/values"
)

// Disasm renders bc as human-readable assembly. Scalar constants (null,
// bool, int32, string) are printed literally; list and map constants are
// not rendered and appear as a "; unsupported constant kind" line, which
// Asm does not accept back.
func Disasm(bc *Bytecode) (string, error) {
	var sb strings.Builder

	fmt.Fprintln(&sb, ".functions")
	for i, fn := range bc.Functions {
		fmt.Fprintf(&sb, "  %d %s\n", i, fn.Name())
	}

	fmt.Fprintln(&sb, "\n.constants")
	for i, c := range bc.Constants {
		fmt.Fprintf(&sb, "  %d %s\n", i, disasmConstant(c))
	}

	fmt.Fprintln(&sb, "\n.registers")
	for i, r := range bc.Registers {
		fmt.Fprintf(&sb, "  %d %s\n", i, disasmRegister(r, bc))
	}

	fmt.Fprintln(&sb, "\n.bdd")
	fmt.Fprintf(&sb, "  root %s\n", disasmRef(bc.Root))
	for i, n := range bc.Nodes {
		fmt.Fprintf(&sb, "  n%d var=%d high=%s low=%s\n", i, n.VarIdx, disasmRef(n.High), disasmRef(n.Low))
	}

	fmt.Fprintln(&sb, "\n.code")
	for i, off := range bc.Conditions {
		fmt.Fprintf(&sb, "cond %d:\n", i)
		if err := disasmBlock(&sb, bc, off); err != nil {
			return "", err
		}
	}
	for i, off := range bc.Results {
		fmt.Fprintf(&sb, "result %d:\n", i)
		if err := disasmBlock(&sb, bc, off); err != nil {
			return "", err
		}
	}

	return sb.String(), nil
}

func disasmConstant(v values.Value) string {
	switch v := v.(type) {
	case values.Null:
		return "null"
	case values.Bool:
		return fmt.Sprintf("bool %t", bool(v))
	case values.Int:
		return fmt.Sprintf("int32 %d", int32(v))
	case values.String:
		return fmt.Sprintf("string %s", strconv.Quote(string(v)))
	default:
		return fmt.Sprintf("; unsupported constant kind %s", v.Type())
	}
}

func disasmRegister(r RegisterDefinition, bc *Bytecode) string {
	parts := []string{r.Name}
	if r.Required {
		parts = append(parts, "required")
	}
	if r.Temp {
		parts = append(parts, "temp")
	}
	if r.HasDefault() {
		idx := indexOfConstant(bc, r.Default)
		parts = append(parts, fmt.Sprintf("default=%d", idx))
	}
	if r.HasBuiltin() {
		parts = append(parts, fmt.Sprintf("builtin=%s", r.Builtin))
	}
	return strings.Join(parts, " ")
}

func indexOfConstant(bc *Bytecode, v values.Value) int {
	for i, c := range bc.Constants {
		if c == v {
			return i
		}
	}
	return -1
}

func disasmRef(r Ref) string {
	switch {
	case r == TrueRef:
		return "T"
	case r == FalseRef:
		return "F"
	case r.IsResult():
		if r.IsComplemented() {
			return fmt.Sprintf("!r%d", r.ResultIndex())
		}
		return fmt.Sprintf("r%d", r.ResultIndex())
	default:
		if r.IsComplemented() {
			return fmt.Sprintf("!n%d", r.NodeIndex())
		}
		return fmt.Sprintf("n%d", r.NodeIndex())
	}
}

func disasmBlock(sb *strings.Builder, bc *Bytecode, start int) error {
	pc := start
	for {
		if pc >= len(bc.Code) {
			return errAt(pc, "code block runs past end of code section")
		}
		op := Opcode(bc.Code[pc])
		n, err := InstrLen(op)
		if err != nil {
			return errAt(pc, "%s", err)
		}
		if pc+n > len(bc.Code) {
			return errAt(pc, "truncated instruction %s", op)
		}
		fmt.Fprintf(sb, "  %s", op)
		operands := bc.Code[pc+1 : pc+n]
		o := 0
		for _, width := range operandShapes[op] {
			switch width {
			case 1:
				fmt.Fprintf(sb, " %d", operands[o])
				o++
			case 2:
				fmt.Fprintf(sb, " %d", uint16(operands[o])<<8|uint16(operands[o+1]))
				o += 2
			}
		}
		sb.WriteByte('\n')
		terminal := op == RETURN_VALUE || op == RETURN_ERROR || op == RETURN_ENDPOINT
		pc += n
		if terminal {
			return nil
		}
	}
}

// Asm parses the textual form produced by Disasm (or hand-written in the
// same grammar) back into a Bytecode. Functions referenced in the
// .functions section are resolved against reg.
func Asm(src string, reg *functions.Registry) (*Bytecode, error) {
	p := &asmParser{
		sc:      bufio.NewScanner(strings.NewReader(src)),
		section: "",
	}
	return p.parse(reg)
}

type asmParser struct {
	sc      *bufio.Scanner
	section string
	line    int
}

func (p *asmParser) parse(reg *functions.Registry) (*Bytecode, error) {
	var fnNames []string
	var constants []values.Value
	var registerLines []string
	var bddRootLine string
	var bddLines []string
	var codeLines []string

	for p.sc.Scan() {
		p.line++
		raw := p.sc.Text()
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ".") {
			p.section = trimmed[1:]
			continue
		}
		switch p.section {
		case "functions":
			fields := strings.Fields(trimmed)
			if len(fields) != 2 {
				return nil, p.errf("malformed function line %q", trimmed)
			}
			fnNames = append(fnNames, fields[1])
		case "constants":
			v, err := p.parseConstantLine(trimmed, constants)
			if err != nil {
				return nil, err
			}
			constants = append(constants, v)
		case "registers":
			registerLines = append(registerLines, trimmed)
		case "bdd":
			if strings.HasPrefix(trimmed, "root ") {
				bddRootLine = trimmed
			} else {
				bddLines = append(bddLines, trimmed)
			}
		case "code":
			codeLines = append(codeLines, line)
		default:
			return nil, p.errf("content outside any section: %q", trimmed)
		}
	}
	if err := p.sc.Err(); err != nil {
		return nil, p.errf("scanning input: %s", err)
	}

	var missing []string
	fns := make([]functions.Function, len(fnNames))
	for i, name := range fnNames {
		fn, ok := reg.Resolve(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		fns[i] = fn
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, errf("unresolved function(s): %v", missing)
	}

	registers, err := p.parseRegisters(registerLines, constants)
	if err != nil {
		return nil, err
	}

	nodes, root, err := p.parseBDD(bddRootLine, bddLines)
	if err != nil {
		return nil, err
	}

	conditions, results, code, err := p.parseCode(codeLines)
	if err != nil {
		return nil, err
	}

	return New(conditions, results, registers, constants, fns, nodes, root, code)
}

func (p *asmParser) errf(format string, args ...any) error {
	return errf("asm:%d: %s", p.line, fmt.Sprintf(format, args...))
}

func (p *asmParser) parseConstantLine(line string, prior []values.Value) (values.Value, error) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 2 {
		return nil, p.errf("malformed constant line %q", line)
	}
	kind := fields[1]
	rest := ""
	if len(fields) == 3 {
		rest = fields[2]
	}
	switch kind {
	case "null":
		return values.Null{}, nil
	case "bool":
		return values.Bool(rest == "true"), nil
	case "int32":
		n, err := strconv.ParseInt(rest, 10, 32)
		if err != nil {
			return nil, p.errf("malformed int32 constant %q: %s", line, err)
		}
		return values.Int(int32(n)), nil
	case "string":
		s, err := strconv.Unquote(rest)
		if err != nil {
			return nil, p.errf("malformed string constant %q: %s", line, err)
		}
		return values.String(s), nil
	case "list":
		var elems []values.Value
		for _, tok := range strings.Fields(rest) {
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(prior) {
				return nil, p.errf("list constant %q: bad element index %q", line, tok)
			}
			elems = append(elems, prior[idx])
		}
		return values.NewList(elems), nil
	case "map":
		m := values.NewMap(0)
		for _, tok := range strings.Fields(rest) {
			kv := strings.SplitN(tok, "=", 2)
			if len(kv) != 2 {
				return nil, p.errf("map constant %q: bad entry %q", line, tok)
			}
			idx, err := strconv.Atoi(kv[1])
			if err != nil || idx < 0 || idx >= len(prior) {
				return nil, p.errf("map constant %q: bad value index %q", line, kv[1])
			}
			key, err := strconv.Unquote(kv[0])
			if err != nil {
				key = kv[0]
			}
			m.Set(key, prior[idx])
		}
		return m, nil
	default:
		return nil, p.errf("unknown constant kind %q", kind)
	}
}

func (p *asmParser) parseRegisters(lines []string, constants []values.Value) ([]RegisterDefinition, error) {
	regs := make([]RegisterDefinition, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, p.errf("malformed register line %q", line)
		}
		rd := RegisterDefinition{Name: fields[1]}
		for _, f := range fields[2:] {
			switch {
			case f == "required":
				rd.Required = true
			case f == "temp":
				rd.Temp = true
			case strings.HasPrefix(f, "default="):
				idx, err := strconv.Atoi(strings.TrimPrefix(f, "default="))
				if err != nil || idx < 0 || idx >= len(constants) {
					return nil, p.errf("register line %q: bad default index", line)
				}
				rd.Default = constants[idx]
			case strings.HasPrefix(f, "builtin="):
				rd.Builtin = strings.TrimPrefix(f, "builtin=")
			default:
				return nil, p.errf("register line %q: unknown field %q", line, f)
			}
		}
		regs = append(regs, rd)
	}
	return regs, nil
}

func (p *asmParser) parseBDD(rootLine string, lines []string) ([]Node, Ref, error) {
	nodes := make([]Node, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 4 || !strings.HasPrefix(fields[0], "n") {
			return nil, 0, p.errf("malformed bdd node line %q", line)
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(fields[0], "n"))
		if err != nil || idx < 0 || idx >= len(nodes) {
			return nil, 0, p.errf("bdd node line %q: bad node index", line)
		}
		var n Node
		for _, f := range fields[1:] {
			kv := strings.SplitN(f, "=", 2)
			if len(kv) != 2 {
				return nil, 0, p.errf("bdd node line %q: malformed field %q", line, f)
			}
			switch kv[0] {
			case "var":
				v, err := strconv.Atoi(kv[1])
				if err != nil {
					return nil, 0, p.errf("bdd node line %q: bad var %q", line, kv[1])
				}
				n.VarIdx = uint32(v)
			case "high":
				ref, err := parseRefToken(kv[1])
				if err != nil {
					return nil, 0, p.errf("bdd node line %q: %s", line, err)
				}
				n.High = ref
			case "low":
				ref, err := parseRefToken(kv[1])
				if err != nil {
					return nil, 0, p.errf("bdd node line %q: %s", line, err)
				}
				n.Low = ref
			default:
				return nil, 0, p.errf("bdd node line %q: unknown field %q", line, kv[0])
			}
		}
		nodes[idx] = n
	}

	if rootLine == "" {
		return nil, 0, p.errf("missing bdd root")
	}
	fields := strings.Fields(rootLine)
	if len(fields) != 2 {
		return nil, 0, p.errf("malformed bdd root line %q", rootLine)
	}
	root, err := parseRefToken(fields[1])
	if err != nil {
		return nil, 0, p.errf("bdd root: %s", err)
	}
	return nodes, root, nil
}

func parseRefToken(tok string) (Ref, error) {
	complemented := strings.HasPrefix(tok, "!")
	if complemented {
		tok = tok[1:]
	}
	switch {
	case tok == "T":
		if complemented {
			return 0, fmt.Errorf("terminal T cannot be complemented, use F")
		}
		return TrueRef, nil
	case tok == "F":
		if complemented {
			return 0, fmt.Errorf("terminal F cannot be complemented, use T")
		}
		return FalseRef, nil
	case strings.HasPrefix(tok, "n"):
		idx, err := strconv.Atoi(tok[1:])
		if err != nil {
			return 0, fmt.Errorf("bad node ref %q", tok)
		}
		r := NodeRef(idx)
		if complemented {
			r = -r
		}
		return r, nil
	case strings.HasPrefix(tok, "r"):
		idx, err := strconv.Atoi(tok[1:])
		if err != nil {
			return 0, fmt.Errorf("bad result ref %q", tok)
		}
		r := ResultRef(idx)
		if complemented {
			r = -r
		}
		return r, nil
	default:
		return 0, fmt.Errorf("unrecognized bdd reference %q", tok)
	}
}

func (p *asmParser) parseCode(lines []string) (conditions, results []int, code []byte, err error) {
	type block struct {
		kind string
		idx  int
		body []string
	}
	var blocks []block
	var cur *block
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			var kind string
			var idx int
			if _, err := fmt.Sscanf(trimmed, "cond %d:", &idx); err == nil {
				kind = "cond"
			} else if _, err := fmt.Sscanf(trimmed, "result %d:", &idx); err == nil {
				kind = "result"
			} else {
				return nil, nil, nil, p.errf("malformed block header %q", trimmed)
			}
			blocks = append(blocks, block{kind: kind, idx: idx})
			cur = &blocks[len(blocks)-1]
			continue
		}
		if cur == nil {
			return nil, nil, nil, p.errf("instruction outside any block: %q", trimmed)
		}
		cur.body = append(cur.body, trimmed)
	}

	var condCount, resultCount int
	for _, b := range blocks {
		if b.kind == "cond" && b.idx+1 > condCount {
			condCount = b.idx + 1
		}
		if b.kind == "result" && b.idx+1 > resultCount {
			resultCount = b.idx + 1
		}
	}
	conditions = make([]int, condCount)
	results = make([]int, resultCount)

	for _, b := range blocks {
		start := len(code)
		for _, instr := range b.body {
			encoded, err := assembleInstruction(instr)
			if err != nil {
				return nil, nil, nil, p.errf("%s", err)
			}
			code = append(code, encoded...)
		}
		switch b.kind {
		case "cond":
			conditions[b.idx] = start
		case "result":
			results[b.idx] = start
		}
	}
	return conditions, results, code, nil
}

func assembleInstruction(line string) ([]byte, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty instruction")
	}
	op, ok := reverseLookupOpcode[fields[0]]
	if !ok {
		return nil, fmt.Errorf("unknown mnemonic %q", fields[0])
	}
	shape := operandShapes[op]
	operands := fields[1:]
	if len(operands) != len(shape) {
		return nil, fmt.Errorf("%s: expected %d operand(s), got %d", fields[0], len(shape), len(operands))
	}
	out := []byte{byte(op)}
	for i, tok := range operands {
		v, err := strconv.ParseUint(tok, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%s: bad operand %q", fields[0], tok)
		}
		switch shape[i] {
		case 1:
			out = append(out, byte(v))
		case 2:
			out = append(out, byte(v>>8), byte(v))
		default:
			return nil, fmt.Errorf("%s: unsupported operand width %d", fields[0], shape[i])
		}
	}
	return out, nil
}
