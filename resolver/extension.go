package resolver

// Extension is the post-resolution collaborator described by spec §6's
// extend(endpoint_builder, context, properties, headers) contract: it may
// inspect or trim an Endpoint's properties and headers after the rule
// program has selected it, before Resolve returns it to the caller.
//
// Extensions run in registration order and share the same ctx value the
// resolution was driven with. An extension that wants to veto the
// endpoint entirely returns an error, which aborts the resolution.
type Extension interface {
	Extend(ctx any, ep *Endpoint) error
}

// ExtensionFunc adapts a plain function to the Extension interface.
type ExtensionFunc func(ctx any, ep *Endpoint) error

func (f ExtensionFunc) Extend(ctx any, ep *Endpoint) error { return f(ctx, ep) }
