package values

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// FromAny converts a plain Go value decoded from JSON or YAML (the shapes
// encoding/json and gopkg.in/yaml.v3 produce when unmarshaling into
// interface{}: nil, bool, string, float64/int, []any, map[string]any) into
// the tagged Value union. It is the CLI's boundary conversion for
// parameter maps and static builtin values; nothing in the VM itself calls
// it, since bytecode constants are decoded directly by package bytecode.
func FromAny(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case int:
		return Int(v), nil
	case int32:
		return Int(v), nil
	case int64:
		return intFromFloat(float64(v))
	case float64:
		return intFromFloat(v)
	case []any:
		elems := make([]Value, len(v))
		for i, e := range v {
			conv, err := FromAny(e)
			if err != nil {
				return nil, err
			}
			elems[i] = conv
		}
		return NewList(elems), nil
	case map[string]any:
		m := NewMap(len(v))
		for _, k := range sortedKeys(v) {
			conv, err := FromAny(v[k])
			if err != nil {
				return nil, err
			}
			m.Set(k, conv)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("values: cannot convert %T to a Value", v)
	}
}

func intFromFloat(f float64) (Value, error) {
	i := int32(f)
	if float64(i) != f {
		return nil, fmt.Errorf("values: %v is not representable as a signed 32-bit integer", f)
	}
	return Int(i), nil
}

// sortedKeys returns m's keys sorted, so FromAny's map conversion is
// deterministic regardless of Go's randomized map iteration order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
