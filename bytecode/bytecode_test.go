package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/endpointvm/values"
)

func TestNewRejectsTooManyRegisters(t *testing.T) {
	regs := make([]RegisterDefinition, MaxRegisters+1)
	for i := range regs {
		regs[i] = RegisterDefinition{Name: "r"}
	}
	// give each a distinct name so duplicate-name detection doesn't fire first
	for i := range regs {
		regs[i].Name = "r" + string(rune('a'+i%26)) + string(rune('A'+i/26))
	}
	_, err := New(nil, nil, regs, nil, nil, nil, FalseRef, nil)
	require.Error(t, err)
}

func TestNewRejectsDuplicateRegisterNames(t *testing.T) {
	regs := []RegisterDefinition{{Name: "region"}, {Name: "region"}}
	_, err := New(nil, nil, regs, nil, nil, nil, FalseRef, nil)
	require.Error(t, err)
}

func TestNewRejectsTempWithDefault(t *testing.T) {
	regs := []RegisterDefinition{{Name: "tmp", Temp: true, Default: values.Int(1)}}
	_, err := New(nil, nil, regs, nil, nil, nil, FalseRef, nil)
	require.Error(t, err)
}

func TestNewRejectsTempWithBuiltin(t *testing.T) {
	regs := []RegisterDefinition{{Name: "tmp", Temp: true, Builtin: "region"}}
	_, err := New(nil, nil, regs, nil, nil, nil, FalseRef, nil)
	require.Error(t, err)
}

func TestNewRejectsOutOfRangeConditionOffset(t *testing.T) {
	code := []byte{byte(RETURN_VALUE)}
	_, err := New([]int{5}, nil, nil, nil, nil, nil, FalseRef, code)
	require.Error(t, err)
}

func TestNewRejectsOutOfRangeResultOffset(t *testing.T) {
	code := []byte{byte(RETURN_VALUE)}
	_, err := New(nil, []int{5}, nil, nil, nil, nil, FalseRef, code)
	require.Error(t, err)
}

func TestNewRejectsBDDVarOutOfRange(t *testing.T) {
	code := []byte{byte(RETURN_VALUE)}
	nodes := []Node{{VarIdx: 0, High: TrueRef, Low: FalseRef}}
	// no conditions declared, so var_idx 0 is out of range
	_, err := New(nil, nil, nil, nil, nil, nodes, NodeRef(0), code)
	require.Error(t, err)
}

func TestNewRejectsInvalidBDDRef(t *testing.T) {
	code := []byte{byte(RETURN_VALUE)}
	conditions := []int{0}
	nodes := []Node{{VarIdx: 0, High: NodeRef(7), Low: FalseRef}}
	_, err := New(conditions, nil, nil, nil, nil, nodes, NodeRef(0), code)
	require.Error(t, err)
}

func TestNewRejectsInvalidRootResultRef(t *testing.T) {
	code := []byte{byte(RETURN_VALUE)}
	_, err := New(nil, nil, nil, nil, nil, nil, ResultRef(3), code)
	require.Error(t, err)
}

func TestNewBuildsDerivedCaches(t *testing.T) {
	regs := []RegisterDefinition{
		{Name: "withDefault", Default: values.Int(1)},
		{Name: "withBuiltin", Builtin: "region"},
		{Name: "required", Required: true},
		{Name: "temp", Temp: true},
	}
	code := []byte{byte(RETURN_VALUE)}
	bc, err := New(nil, nil, regs, nil, nil, nil, FalseRef, code)
	require.NoError(t, err)

	require.Equal(t, values.Int(1), bc.RegisterTemplate[0])
	require.Equal(t, []int{1}, bc.BuiltinIndices)
	require.Equal(t, []int{2}, bc.HardRequiredIndices)
	require.Equal(t, map[string]int{"withDefault": 0, "withBuiltin": 1, "required": 2}, bc.InputRegisterMap)
}
