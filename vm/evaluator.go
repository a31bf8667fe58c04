// Package vm implements the stack-based interpreter that executes
// condition and result bytecode fragments (spec §4.2): a program-counter
// loop over a closed, switch-dispatched opcode set, an explicit operand
// stack, and per-resolution condition memoization.
package vm

import (
	"github.com/mna/endpointvm/bytecode"
	"github.com/mna/endpointvm/values"
)

// DefaultMaxStack is the operand stack depth used when a caller does not
// override it (spec §5: "implementation-chosen, >= 64").
const DefaultMaxStack = 64

// Evaluator is a single-threaded, reusable interpreter over one Bytecode
// program. It owns its stack, register vector, and condition-memoization
// table exclusively; per spec §5 it must never be shared across goroutines,
// but is cheap to reset and reuse resolution after resolution on the same
// thread/worker.
type Evaluator struct {
	bc       *bytecode.Bytecode
	maxStack int

	stack []values.Value
	regs  []values.Value

	condMemoSet []bool
	condMemoVal []bool

	// templates caches the compiled form of string constants used as
	// RESOLVE_TEMPLATE targets, keyed by constant index. Compilation is
	// pure and bc is immutable, so this is safe to reuse across
	// resolutions on the same Evaluator.
	templates map[int]*values.Template
}

// New returns an Evaluator for bc with the given maximum operand stack
// depth (DefaultMaxStack if maxStack <= 0).
func New(bc *bytecode.Bytecode, maxStack int) *Evaluator {
	if maxStack <= 0 {
		maxStack = DefaultMaxStack
	}
	return &Evaluator{
		bc:          bc,
		maxStack:    maxStack,
		stack:       make([]values.Value, 0, maxStack),
		regs:        make([]values.Value, len(bc.Registers)),
		condMemoSet: make([]bool, len(bc.Conditions)),
		condMemoVal: make([]bool, len(bc.Conditions)),
		templates:   make(map[int]*values.Template),
	}
}

// Bytecode returns the program this Evaluator executes.
func (e *Evaluator) Bytecode() *bytecode.Bytecode { return e.bc }

// Registers exposes the register vector for package registers to fill
// in-place ahead of a resolution. Reset must be called first.
func (e *Evaluator) Registers() []values.Value { return e.regs }

// Reset prepares the Evaluator for a new resolution: the operand stack and
// condition-memoization table are cleared. The register vector is left
// alone; callers fill it (via package registers) between Reset and driving
// the BDD.
func (e *Evaluator) Reset() {
	e.stack = e.stack[:0]
	for i := range e.condMemoSet {
		e.condMemoSet[i] = false
	}
}

func (e *Evaluator) push(v values.Value, pc int) error {
	if len(e.stack) >= e.maxStack {
		return evalErrf(pc, "operand stack overflow (depth %d)", e.maxStack)
	}
	e.stack = append(e.stack, v)
	return nil
}

func (e *Evaluator) pop(pc int) (values.Value, error) {
	if len(e.stack) == 0 {
		return nil, evalErrf(pc, "operand stack underflow")
	}
	v := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return v, nil
}

func (e *Evaluator) peek(pc int) (values.Value, error) {
	if len(e.stack) == 0 {
		return nil, evalErrf(pc, "operand stack underflow")
	}
	return e.stack[len(e.stack)-1], nil
}

// EvalCondition implements bdd.ConditionEvaluator: it runs the fragment at
// conditions[idx] to a RETURN_VALUE and memoizes the boolean result for the
// remainder of the current resolution (spec §4.3).
func (e *Evaluator) EvalCondition(idx int) (bool, error) {
	if idx < 0 || idx >= len(e.bc.Conditions) {
		return false, evalErrf(0, "condition index %d out of range", idx)
	}
	if e.condMemoSet[idx] {
		return e.condMemoVal[idx], nil
	}

	outcome, err := e.run(e.bc.Conditions[idx])
	if err != nil {
		return false, err
	}
	v, ok := outcome.(values.Value)
	if !ok {
		return false, evalErrf(e.bc.Conditions[idx], "condition %d did not terminate with RETURN_VALUE", idx)
	}
	truth := values.Truth(v)
	e.condMemoSet[idx] = true
	e.condMemoVal[idx] = truth
	return truth, nil
}

// RunResult runs the fragment at results[idx] to completion and returns its
// raw Outcome (spec §4.5 step 5).
func (e *Evaluator) RunResult(idx int) (*Outcome, error) {
	if idx < 0 || idx >= len(e.bc.Results) {
		return nil, evalErrf(0, "result index %d out of range", idx)
	}
	outcome, err := e.run(e.bc.Results[idx])
	if err != nil {
		return nil, err
	}
	o, ok := outcome.(*Outcome)
	if !ok {
		return nil, evalErrf(e.bc.Results[idx], "result %d did not terminate with RETURN_ENDPOINT or RETURN_ERROR", idx)
	}
	return o, nil
}
