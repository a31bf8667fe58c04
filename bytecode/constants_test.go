package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/endpointvm/values"
)

func TestConstantRoundTrip(t *testing.T) {
	cases := []struct {
		desc string
		in   values.Value
	}{
		{"null", values.Null{}},
		{"string", values.String("hello")},
		{"int32", values.Int(-7)},
		{"bool true", values.Bool(true)},
		{"bool false", values.Bool(false)},
		{"empty list", values.NewList(nil)},
		{"list", values.NewList([]values.Value{values.Int(1), values.String("x")})},
		{"map", func() values.Value {
			m := values.NewMap(0)
			m.Set("a", values.Int(1))
			m.Set("b", values.String("y"))
			return m
		}()},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			buf := encodeConstant(nil, c.in)
			got, next, err := decodeConstant(buf, 0, 0)
			require.NoError(t, err)
			require.Equal(t, len(buf), next)
			require.True(t, values.Equal(c.in, got))
		})
	}
}

func TestConstantPoolRoundTrip(t *testing.T) {
	pool := []values.Value{values.Int(1), values.String("x"), values.Bool(true)}
	var buf []byte
	for _, v := range pool {
		buf = encodeConstant(buf, v)
	}
	got, next, err := decodeConstantPool(buf, 0, len(pool))
	require.NoError(t, err)
	require.Equal(t, len(buf), next)
	require.Len(t, got, len(pool))
	for i := range pool {
		require.True(t, values.Equal(pool[i], got[i]))
	}
}

func TestConstantNestingDepthLimit(t *testing.T) {
	// Build a deeply-nested list constant that exceeds MaxConstantDepth.
	inner := values.NewList(nil)
	for i := 0; i <= MaxConstantDepth+1; i++ {
		inner = values.NewList([]values.Value{inner})
	}
	buf := encodeConstant(nil, inner)

	_, _, err := decodeConstant(buf, 0, 0)
	require.Error(t, err)
}

func TestDecodeConstantUnknownTag(t *testing.T) {
	_, _, err := decodeConstant([]byte{0xff}, 0, 0)
	require.Error(t, err)
}

func TestDecodeConstantTruncated(t *testing.T) {
	_, _, err := decodeConstant([]byte{tagInt32, 0, 0}, 0, 0)
	require.Error(t, err)
}
