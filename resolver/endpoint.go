package resolver

import (
	"fmt"

	"github.com/mna/endpointvm/values"
)

// Endpoint is the materialized result of a successful resolution (spec
// §3): a URL plus optional header and property maps. Headers carry
// multiple values per name (e.g. repeated HTTP headers); properties are
// an open bag of arbitrary nested data a transport layer may consult.
//
// Header ordering is not guaranteed by the bytecode format (spec §9);
// callers must compare as sets, not sequences.
type Endpoint struct {
	URL        string              `json:"uri"`
	Headers    map[string][]string `json:"headers,omitempty"`
	Properties map[string]any      `json:"properties,omitempty"`
}

// endpointFromOutcome converts a vm.Outcome of kind OutcomeEndpoint into a
// concrete Endpoint, type-checking the popped operands against the fixed
// shape RETURN_ENDPOINT documents (spec §4.2, §4.5).
func endpointFromOutcome(urlVal, propsVal, headersVal values.Value) (*Endpoint, error) {
	url, ok := urlVal.(values.String)
	if !ok {
		return nil, fmt.Errorf("resolver: endpoint url is %s, want string", urlVal.Type())
	}

	ep := &Endpoint{URL: string(url)}

	if propsVal != nil {
		props, err := toAny(propsVal)
		if err != nil {
			return nil, fmt.Errorf("resolver: endpoint properties: %w", err)
		}
		m, ok := props.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("resolver: endpoint properties is %s, want map", propsVal.Type())
		}
		ep.Properties = m
	}

	if headersVal != nil {
		headers, err := toHeaders(headersVal)
		if err != nil {
			return nil, fmt.Errorf("resolver: endpoint headers: %w", err)
		}
		ep.Headers = headers
	}

	return ep, nil
}

// toAny unwraps a values.Value into a plain Go value suitable for the
// Endpoint.Properties bag: scalars map directly, lists become []any, maps
// become map[string]any. It mirrors the tagged union's shape, not the
// richer runtime-only types (Template, URI) that never appear in a
// properties map.
func toAny(v values.Value) (any, error) {
	switch v := v.(type) {
	case nil, values.Null:
		return nil, nil
	case values.Bool:
		return bool(v), nil
	case values.Int:
		return int32(v), nil
	case values.String:
		return string(v), nil
	case *values.List:
		out := make([]any, v.Len())
		for i, elem := range v.Elems() {
			conv, err := toAny(elem)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case *values.Map:
		out := make(map[string]any, v.Len())
		for _, k := range v.Keys() {
			val, _ := v.Get(k)
			conv, err := toAny(val)
			if err != nil {
				return nil, err
			}
			out[k] = conv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value of type %s has no properties representation", v.Type())
	}
}

// toHeaders unwraps a map<string, list<string>> value into the Endpoint's
// header shape, rejecting anything that does not match that fixed layout.
func toHeaders(v values.Value) (map[string][]string, error) {
	m, ok := v.(*values.Map)
	if !ok {
		return nil, fmt.Errorf("headers value is %s, want map", v.Type())
	}
	out := make(map[string][]string, m.Len())
	for _, k := range m.Keys() {
		val, _ := m.Get(k)
		list, ok := val.(*values.List)
		if !ok {
			return nil, fmt.Errorf("header %q value is %s, want list", k, val.Type())
		}
		strs := make([]string, list.Len())
		for i, elem := range list.Elems() {
			s, ok := elem.(values.String)
			if !ok {
				return nil, fmt.Errorf("header %q entry %d is %s, want string", k, i, elem.Type())
			}
			strs[i] = string(s)
		}
		out[k] = strs
	}
	return out, nil
}
