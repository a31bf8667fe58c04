package values

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// Map is a string-keyed mapping, as required by the bytecode format's map
// constant tag (map keys are always strings) and by MAPn/MAPN results.
// Backed by a Swiss-table map for O(1) amortized lookups even for the wide,
// rarely-mutated property maps endpoints tend to carry; insertion order is
// tracked separately so a constant decoded from the wire re-encodes to the
// same bytes (spec §8's encode(decode(b)) == b invariant covers map
// constants with more than one entry, where Swiss-table iteration order
// alone would not be stable).
type Map struct {
	m    *swiss.Map[string, Value]
	keys []string
}

var _ Value = (*Map)(nil)

// NewMap returns an empty map with capacity for at least size entries.
func NewMap(size int) *Map {
	if size < 0 {
		size = 0
	}
	return &Map{m: swiss.NewMap[string, Value](uint32(size))}
}

func (m *Map) String() string { return fmt.Sprintf("map(%d)", m.Len()) }
func (*Map) Type() string     { return "map" }

// Len returns the number of entries.
func (m *Map) Len() int { return int(m.m.Count()) }

// Get returns the value for key, or (Null{}, false) if absent.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.m.Get(key)
	if !ok {
		return Null{}, false
	}
	return v, true
}

// Set stores value under key, overwriting any existing entry. The first
// Set for a given key fixes that key's position in Keys order.
func (m *Map) Set(key string, value Value) {
	if _, exists := m.m.Get(key); !exists {
		m.keys = append(m.keys, key)
	}
	m.m.Put(key, value)
}

// Keys returns the map's keys in insertion order.
func (m *Map) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

func (m *Map) equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	eq := true
	m.m.Iter(func(k string, v Value) bool {
		ov, ok := o.Get(k)
		if !ok || !Equal(v, ov) {
			eq = false
			return true // stop iterating
		}
		return false
	})
	return eq
}
