package resolver

// Future is the outer-boundary asynchrony the spec requires (§5): the VM
// loop itself has no suspension points, so a resolution always completes
// before Resolve returns. Future exists only so a caller written against
// an async resolution API (the "surrounding plugin", out of scope here)
// sees the shape it expects; Get never blocks.
type Future struct {
	ep  *Endpoint
	err error
}

// completedFuture wraps an already-finished resolution.
func completedFuture(ep *Endpoint, err error) *Future {
	return &Future{ep: ep, err: err}
}

// Get returns the resolution's outcome. It never blocks: by the time a
// Future exists, the resolution that produced it has already run to
// completion on the calling goroutine.
func (f *Future) Get() (*Endpoint, error) { return f.ep, f.err }
