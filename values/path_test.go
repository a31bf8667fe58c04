package values

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetPath(t *testing.T) {
	inner := NewMap(0)
	inner.Set("c", String("deep"))

	list := NewList([]Value{Int(10), Int(20), inner})

	root := NewMap(0)
	root.Set("a", list)
	root.Set("b", Null{})

	cases := []struct {
		desc string
		path string
		want Value
	}{
		{"list index", "a[0]", Int(10)},
		{"list index then map key", "a[2].c", String("deep")},
		{"missing map key returns null", "missing", Null{}},
		{"navigating through null returns null", "b.anything", Null{}},
		{"out of range index returns null", "a[99]", Null{}},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			got, err := GetPath(root, c.path)
			require.NoError(t, err)
			require.True(t, Equal(c.want, got), "got %v, want %v", got, c.want)
		})
	}
}

func TestGetPathErrors(t *testing.T) {
	root := NewMap(0)
	root.Set("s", String("not a list"))

	cases := []struct {
		desc string
		path string
	}{
		{"indexing a string", "s[0]"},
		{"empty segment", "a..b"},
		{"unterminated bracket", "a[0"},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			_, err := GetPath(root, c.path)
			require.Error(t, err)
		})
	}
}

func TestURIAttr(t *testing.T) {
	u := &URI{Scheme: "https", Path: "/y", NormalizedPath: "/y/", Authority: "x", IsIP: false}

	got, err := GetPath(u, "scheme")
	require.NoError(t, err)
	require.Equal(t, String("https"), got)

	_, err = u.Attr("nope")
	require.Error(t, err)
	var nsa NoSuchAttrError
	require.ErrorAs(t, err, &nsa)
}
