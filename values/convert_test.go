package values

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromAny(t *testing.T) {
	cases := []struct {
		desc string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"bool", true, Bool(true)},
		{"string", "hello", String("hello")},
		{"whole float64 (as from JSON)", float64(42), Int(42)},
		{"list", []any{float64(1), "x"}, NewList([]Value{Int(1), String("x")})},
		{"map", map[string]any{"a": float64(1), "b": "y"}, func() Value {
			m := NewMap(0)
			m.Set("a", Int(1))
			m.Set("b", String("y"))
			return m
		}()},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			got, err := FromAny(c.in)
			require.NoError(t, err)
			require.True(t, Equal(c.want, got), "got %v, want %v", got, c.want)
		})
	}
}

func TestFromAnyRejectsNonIntegralFloat(t *testing.T) {
	_, err := FromAny(float64(1.5))
	require.Error(t, err)
}

func TestFromAnyRejectsUnknownType(t *testing.T) {
	_, err := FromAny(make(chan int))
	require.Error(t, err)
}
