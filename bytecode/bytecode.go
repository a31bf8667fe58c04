// Package bytecode implements the decoded, immutable in-memory form of a
// compiled rule program: its binary container format (§4.1/§6), constant
// pool, register metadata, BDD node table, and a human-readable assembly
// form used for tests and the CLI's disasm/asm commands. It owns the
// Opcode enum (the "instruction set" half of the format) the same way the
// teacher's lang/compiler package owns its Opcode type, even though
// execution itself lives in package vm.
package bytecode

import (
	"fmt"

	"github.com/mna/endpointvm/functions"
	"github.com/mna/endpointvm/values"
)

// MaxRegisters is the hard ceiling on register count (spec §3, §5).
const MaxRegisters = 256

// MaxConstantDepth is the maximum nesting depth permitted when decoding a
// list/map constant (spec §3, §5).
const MaxConstantDepth = 100

// RegisterDefinition describes one register slot (spec §3). Its position in
// Bytecode.Registers is the register's index.
type RegisterDefinition struct {
	Name     string
	Required bool
	Default  values.Value // nil if none
	Builtin  string       // "" if none
	Temp     bool
}

// HasDefault reports whether the register declares a default value.
func (d RegisterDefinition) HasDefault() bool { return d.Default != nil }

// HasBuiltin reports whether the register declares a builtin provider.
func (d RegisterDefinition) HasBuiltin() bool { return d.Builtin != "" }

// Node is one BDD decision node: test condition VarIdx, then follow High or
// Low depending on the result (spec §3, §4.3).
type Node struct {
	VarIdx uint32
	High   Ref
	Low    Ref
}

// Bytecode is the fully decoded, validated, immutable form of a compiled
// rule program. It is safe to share across goroutines/evaluators by
// reference (spec §5); nothing in it is mutated after Load returns.
type Bytecode struct {
	// Conditions holds one code-section offset per modeled condition,
	// rebased to be relative to the start of Code (spec §4.1).
	Conditions []int
	// Results holds one code-section offset per modeled result fragment.
	Results []int
	// Registers is ordered; a register's index is its position here.
	Registers []RegisterDefinition
	Constants []values.Value
	// Functions is resolved to concrete implementations at load time.
	Functions []functions.Function
	Nodes     []Node
	Root      Ref
	Code      []byte

	// Derived caches (spec §3), computed once by build().
	RegisterTemplate    []values.Value
	BuiltinIndices      []int
	HardRequiredIndices []int
	InputRegisterMap    map[string]int
}

// New validates invariants not already enforced by the binary/textual
// decoders (name uniqueness, register count, temp-register shape) and
// builds the derived caches. Callers that construct a Bytecode by hand
// (e.g. the textual assembler) must call New rather than using a bare
// struct literal.
func New(conditions, results []int, registers []RegisterDefinition, constants []values.Value, fns []functions.Function, nodes []Node, root Ref, code []byte) (*Bytecode, error) {
	if len(registers) > MaxRegisters {
		return nil, errf("register count %d exceeds maximum %d", len(registers), MaxRegisters)
	}

	seen := make(map[string]bool, len(registers))
	for i, r := range registers {
		if seen[r.Name] {
			return nil, errf("duplicate register name %q", r.Name)
		}
		seen[r.Name] = true
		if r.Temp && (r.HasDefault() || r.HasBuiltin()) {
			return nil, errf("register %d (%q): temp register must not have a default or builtin", i, r.Name)
		}
	}

	for i, off := range conditions {
		if off < 0 || off >= len(code) {
			return nil, errf("condition %d: offset %d outside code section (len %d)", i, off, len(code))
		}
	}
	for i, off := range results {
		if off < 0 || off >= len(code) {
			return nil, errf("result %d: offset %d outside code section (len %d)", i, off, len(code))
		}
	}
	for i, n := range nodes {
		if int(n.VarIdx) >= len(conditions) {
			return nil, errf("bdd node %d: var_idx %d has no matching condition", i, n.VarIdx)
		}
		if err := validateRef(n.High, len(nodes), len(results)); err != nil {
			return nil, errf("bdd node %d: high ref: %s", i, err)
		}
		if err := validateRef(n.Low, len(nodes), len(results)); err != nil {
			return nil, errf("bdd node %d: low ref: %s", i, err)
		}
	}
	if err := validateRef(root, len(nodes), len(results)); err != nil {
		return nil, errf("bdd root: %s", err)
	}

	bc := &Bytecode{
		Conditions: conditions,
		Results:    results,
		Registers:  registers,
		Constants:  constants,
		Functions:  fns,
		Nodes:      nodes,
		Root:       root,
		Code:       code,
	}
	bc.build()
	return bc, nil
}

func validateRef(r Ref, numNodes, numResults int) error {
	switch {
	case r.IsTerminal():
		return nil
	case r.IsResult():
		idx := r.ResultIndex()
		if idx < 0 || idx >= numResults {
			return fmt.Errorf("result index %d out of range (have %d results)", idx, numResults)
		}
		return nil
	default:
		idx := r.NodeIndex()
		if idx < 0 || idx >= numNodes {
			return fmt.Errorf("node index %d out of range (have %d nodes)", idx, numNodes)
		}
		return nil
	}
}

// build fills in the derived caches described in spec §3: a template
// register vector (defaults copied in), the set of builtin-backed
// registers, the set of hard-required registers, and the input name→index
// map.
func (bc *Bytecode) build() {
	bc.RegisterTemplate = make([]values.Value, len(bc.Registers))
	bc.InputRegisterMap = make(map[string]int, len(bc.Registers))

	for i, r := range bc.Registers {
		if r.HasDefault() {
			bc.RegisterTemplate[i] = r.Default
		} else {
			bc.RegisterTemplate[i] = values.Null{}
		}
		if r.HasBuiltin() && !r.HasDefault() {
			bc.BuiltinIndices = append(bc.BuiltinIndices, i)
		}
		if r.Required && !r.HasDefault() && !r.HasBuiltin() && !r.Temp {
			bc.HardRequiredIndices = append(bc.HardRequiredIndices, i)
		}
		if !r.Temp {
			bc.InputRegisterMap[r.Name] = i
		}
	}
}
