package values

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileTemplateAndResolve(t *testing.T) {
	cases := []struct {
		desc   string
		raw    string
		exprs  []Value
		want   Value
		errStr string // error "contains" this, compile-time
	}{
		{
			desc:  "no placeholders",
			raw:   "https://svc.example/",
			exprs: nil,
			want:  String("https://svc.example/"),
		},
		{
			desc:  "two placeholders",
			raw:   "https://{}.s3.{}.amazonaws.com",
			exprs: []Value{String("b"), String("us-west-2")},
			want:  String("https://b.s3.us-west-2.amazonaws.com"),
		},
		{
			desc:  "escaped braces",
			raw:   "{{literal}} and {}",
			exprs: []Value{String("x")},
			want:  String("{literal} and x"),
		},
		{
			desc:  "bare placeholder passthrough returns original value",
			raw:   "{}",
			exprs: []Value{NewList([]Value{Int(1)})},
			want:  NewList([]Value{Int(1)}),
		},
		{
			desc:   "unterminated brace",
			raw:    "abc{def",
			errStr: "unterminated",
		},
	}

	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			tmpl, err := CompileTemplate(c.raw)
			if c.errStr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), c.errStr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, len(c.exprs), tmpl.PlaceholderCount())

			got, err := tmpl.Resolve(c.exprs)
			require.NoError(t, err)
			require.True(t, Equal(c.want, got), "got %v, want %v", got, c.want)
		})
	}
}

func TestTemplateResolveArityMismatch(t *testing.T) {
	tmpl, err := CompileTemplate("{}-{}")
	require.NoError(t, err)

	_, err = tmpl.Resolve([]Value{String("only one")})
	require.Error(t, err)

	_, err = tmpl.Resolve([]Value{String("a"), String("b"), String("c")})
	require.Error(t, err)
}

func TestTemplateIsPassthrough(t *testing.T) {
	tmpl, err := CompileTemplate("{}")
	require.NoError(t, err)
	require.True(t, tmpl.IsPassthrough())

	tmpl2, err := CompileTemplate("x{}")
	require.NoError(t, err)
	require.False(t, tmpl2.IsPassthrough())
}
