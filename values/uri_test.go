package values

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	u, ok := ParseURL("https://x/y")
	require.True(t, ok)
	require.Equal(t, "https", u.Scheme)
	require.Equal(t, "x", u.Authority)
	require.Equal(t, "/y", u.Path)
	require.Equal(t, "/y/", u.NormalizedPath)

	_, ok = ParseURL("https://x/y?z=1")
	require.False(t, ok, "a query component must be rejected")

	_, ok = ParseURL("not a url")
	require.False(t, ok)
}

func TestParseURLIsIP(t *testing.T) {
	u, ok := ParseURL("https://192.168.0.1/")
	require.True(t, ok)
	require.True(t, u.IsIP)

	u, ok = ParseURL("https://example.com/")
	require.True(t, ok)
	require.False(t, u.IsIP)
}

func TestIsValidHostLabel(t *testing.T) {
	cases := []struct {
		s         string
		allowDots bool
		want      bool
	}{
		{"foo", false, true},
		{"foo-bar", false, true},
		{"-foo", false, false},
		{"foo-", false, false},
		{"", false, false},
		{"foo.bar", false, false},
		{"foo.bar", true, true},
		{"foo..bar", true, false},
		{"f_oo", false, false},
	}
	for _, c := range cases {
		got := IsValidHostLabel(c.s, c.allowDots)
		require.Equal(t, c.want, got, "IsValidHostLabel(%q, %t)", c.s, c.allowDots)
	}
}

func TestURIEncode(t *testing.T) {
	require.Equal(t, "a%2Fb", URIEncode("a/b"))
}
