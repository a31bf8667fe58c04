package values

import "testing"

func TestTruth(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", nil, false},
		{"null", Null{}, false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero int is truthy", Int(0), true},
		{"empty string is truthy", String(""), true},
		{"list is truthy", NewList(nil), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Truth(c.v); got != c.want {
				t.Errorf("Truth(%v) = %t, want %t", c.v, got, c.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	m1 := NewMap(0)
	m1.Set("a", Int(1))
	m2 := NewMap(0)
	m2.Set("a", Int(1))
	m3 := NewMap(0)
	m3.Set("a", Int(2))

	cases := []struct {
		name string
		x, y Value
		want bool
	}{
		{"nil==null", nil, Null{}, true},
		{"null==null", Null{}, Null{}, true},
		{"int==int", Int(3), Int(3), true},
		{"int!=int", Int(3), Int(4), false},
		{"string==string", String("a"), String("a"), true},
		{"bool!=int (different type)", Bool(true), Int(1), false},
		{"null!=bool", Null{}, Bool(false), false},
		{"list equal", NewList([]Value{Int(1), String("x")}), NewList([]Value{Int(1), String("x")}), true},
		{"list different length", NewList([]Value{Int(1)}), NewList([]Value{Int(1), Int(2)}), false},
		{"map equal", m1, m2, true},
		{"map different value", m1, m3, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Equal(c.x, c.y); got != c.want {
				t.Errorf("Equal(%v, %v) = %t, want %t", c.x, c.y, got, c.want)
			}
		})
	}
}
