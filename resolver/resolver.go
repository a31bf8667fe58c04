// Package resolver orchestrates one endpoint resolution end to end (spec
// §4.5): fill registers from caller parameters and builtin providers, walk
// the BDD to pick a result fragment (or discover no rule matches), run
// that fragment through the stack VM, and materialize the raw outcome
// into a concrete Endpoint for registered extensions to adjust.
//
// A Resolver is built once around an immutable Bytecode and is safe for
// concurrent use by many goroutines: each resolution borrows its own
// Evaluator from a pool rather than touching any shared mutable state
// (spec §5's "per-worker resource pool", not a language thread-local).
package resolver

import (
	"sync"

	"github.com/mna/endpointvm/bdd"
	"github.com/mna/endpointvm/bytecode"
	"github.com/mna/endpointvm/registers"
	"github.com/mna/endpointvm/values"
	"github.com/mna/endpointvm/vm"
)

// Config carries the optional knobs spec §6 lists for a resolver: the
// operand stack depth to give each Evaluator, the builtin providers
// consulted while filling registers, and the extensions run after a
// result fragment builds an Endpoint. custom_functions is not a Resolver
// concern; it is supplied earlier, to the functions.Registry a Bytecode
// is loaded against.
type Config struct {
	MaxStack   int
	Providers  map[string]registers.Provider
	Extensions []Extension
}

// Resolver drives resolutions against one compiled rule program.
type Resolver struct {
	bc     *bytecode.Bytecode
	filler registers.Filler

	maxStack   int
	providers  map[string]registers.Provider
	extensions []Extension

	pool sync.Pool
}

// New returns a Resolver for bc. cfg may be the zero value, in which case
// the default stack depth applies and no builtins or extensions run.
func New(bc *bytecode.Bytecode, cfg Config) *Resolver {
	r := &Resolver{
		bc:         bc,
		filler:     registers.New(bc),
		maxStack:   cfg.MaxStack,
		providers:  cfg.Providers,
		extensions: cfg.Extensions,
	}
	r.pool.New = func() any { return vm.New(r.bc, r.maxStack) }
	return r
}

// Resolve runs one resolution synchronously to completion (spec §4.5): it
// fills registers from params and ctx-backed builtin providers, drives the
// BDD, and either returns nil (no rule matched), an Endpoint, or an error
// (*registers.ParameterError, a *vm.EvaluationError, a *bdd.MalformedRefError,
// or a *ResolutionError for the rule program's own modeled failure).
//
// Unknown parameter names are ignored, per spec §6's input interface.
func (r *Resolver) Resolve(ctx any, params map[string]values.Value) (*Endpoint, error) {
	ev := r.pool.Get().(*vm.Evaluator)
	defer r.pool.Put(ev)

	ev.Reset()

	if err := r.filler.Fill(ev.Registers(), params, r.providers, ctx); err != nil {
		return nil, err
	}

	resultIdx, err := bdd.Walk(r.bc.Nodes, r.bc.Root, ev)
	if err != nil {
		return nil, err
	}
	if resultIdx == bdd.NoMatch {
		return nil, nil
	}

	outcome, err := ev.RunResult(resultIdx)
	if err != nil {
		return nil, err
	}

	if outcome.Kind == vm.OutcomeError {
		return nil, &ResolutionError{Message: outcome.ErrorMessage}
	}

	ep, err := endpointFromOutcome(outcome.URL, outcome.Properties, outcome.Headers)
	if err != nil {
		return nil, err
	}

	for _, ext := range r.extensions {
		if err := ext.Extend(ctx, ep); err != nil {
			return nil, err
		}
	}

	return ep, nil
}

// ResolveAsync runs Resolve and wraps its outcome in an already-completed
// Future, matching the async surface spec §5 says callers expect even
// though the VM itself never suspends.
func (r *Resolver) ResolveAsync(ctx any, params map[string]values.Value) *Future {
	ep, err := r.Resolve(ctx, params)
	return completedFuture(ep, err)
}
