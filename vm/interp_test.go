package vm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/endpointvm/bytecode"
	"github.com/mna/endpointvm/functions"
	"github.com/mna/endpointvm/values"
	"github.com/mna/endpointvm/vm"
)

func asmOrFail(t *testing.T, src string) *bytecode.Bytecode {
	t.Helper()
	bc, err := bytecode.Asm(src, functions.NewStandardRegistry())
	require.NoError(t, err)
	return bc
}

func TestNotIssetIsTrueTruthiness(t *testing.T) {
	src := `
.constants
  0 bool false
  1 null
  2 bool true

.bdd
  root F

.code
cond 0:
  load_const 0
  not
  return_value
cond 1:
  load_const 1
  isset
  return_value
cond 2:
  load_const 2
  is_true
  return_value
`
	bc := asmOrFail(t, src)
	e := vm.New(bc, 0)

	truth, err := e.EvalCondition(0)
	require.NoError(t, err)
	require.True(t, truth, "not(false) must be true")

	truth, err = e.EvalCondition(1)
	require.NoError(t, err)
	require.False(t, truth, "isset(null) must be false")

	truth, err = e.EvalCondition(2)
	require.NoError(t, err)
	require.True(t, truth)
}

func TestListNBuildsInPushOrder(t *testing.T) {
	src := `
.constants
  0 string "a"
  1 string "b"
  2 string "c"

.bdd
  root F

.code
cond 0:
  load_const 0
  load_const 1
  load_const 2
  listn 3
  get_index 2
  load_const 2
  string_equals
  return_value
`
	bc := asmOrFail(t, src)
	e := vm.New(bc, 0)
	truth, err := e.EvalCondition(0)
	require.NoError(t, err)
	require.True(t, truth, "list index 2 must be the third pushed element, confirming push order is preserved")
}

func TestMapNPopsKeyThenValuePerPair(t *testing.T) {
	// MAPN pops each pair as (key, value) with key on top of the stack, so
	// the producer must push value before key within each pair.
	src := `
.constants
  0 int32 1
  1 string "k1"
  2 int32 2
  3 string "k2"

.bdd
  root F

.code
cond 0:
  load_const 0
  load_const 1
  load_const 2
  load_const 3
  mapn 2
  get_property 3
  isset
  return_value
`
	bc := asmOrFail(t, src)
	e := vm.New(bc, 0)
	truth, err := e.EvalCondition(0)
	require.NoError(t, err)
	require.True(t, truth, "mapn must associate k2 with its preceding pushed value, reachable via get_property")
}

func TestResolveTemplateArityMismatchIsStackUnderflow(t *testing.T) {
	src := `
.constants
  0 string "{}-{}"
  1 string "only-one"

.bdd
  root F

.code
cond 0:
  load_const 1
  resolve_template 0
  return_value
`
	bc := asmOrFail(t, src)
	e := vm.New(bc, 0)
	_, err := e.EvalCondition(0)
	require.Error(t, err)
}

func TestResolveTemplateSubstitution(t *testing.T) {
	src := `
.constants
  0 string "prefix-{}-suffix"
  1 string "mid"

.bdd
  root F

.code
cond 0:
  load_const 1
  resolve_template 0
  isset
  return_value
`
	bc := asmOrFail(t, src)
	e := vm.New(bc, 0)
	truth, err := e.EvalCondition(0)
	require.NoError(t, err)
	require.True(t, truth)
}

func TestSubstringReverseIndexingAndOutOfRange(t *testing.T) {
	src := `
.constants
  0 string "abcdef"

.bdd
  root F

.code
cond 0:
  load_const 0
  substring 0 3 0
  isset
  return_value
cond 1:
  load_const 0
  substring 0 3 1
  isset
  return_value
cond 2:
  load_const 0
  substring 0 99 0
  isset
  return_value
`
	bc := asmOrFail(t, src)
	e := vm.New(bc, 0)

	truth, err := e.EvalCondition(0)
	require.NoError(t, err)
	require.True(t, truth, "forward substring(0,3) of abcdef is abc, non-null")

	truth, err = e.EvalCondition(1)
	require.NoError(t, err)
	require.True(t, truth, "reverse substring(0,3) of abcdef is def, non-null")

	truth, err = e.EvalCondition(2)
	require.NoError(t, err)
	require.False(t, truth, "out-of-range substring must resolve to null, not an error")
}

func TestJTOrPopShortCircuitsAndLeavesValueOnJump(t *testing.T) {
	takenSrc := `
.constants
  0 bool true
  1 bool false

.bdd
  root F

.code
cond 0:
  load_const 0
  jt_or_pop 2
  load_const 1
  return_value
`
	bc := asmOrFail(t, takenSrc)
	e := vm.New(bc, 0)
	truth, err := e.EvalCondition(0)
	require.NoError(t, err)
	require.True(t, truth, "truthy value short-circuits and is itself returned, load_const 1 is skipped")

	notTakenSrc := `
.constants
  0 bool false
  1 bool true

.bdd
  root F

.code
cond 0:
  load_const 0
  jt_or_pop 2
  load_const 1
  return_value
`
	bc2 := asmOrFail(t, notTakenSrc)
	e2 := vm.New(bc2, 0)
	truth, err = e2.EvalCondition(0)
	require.NoError(t, err)
	require.True(t, truth, "falsy value is popped and the second operand evaluated instead")
}

func TestGetPropertyMissingKeyIsNull(t *testing.T) {
	src := `
.constants
  0 int32 1
  1 string "k"
  2 string "nope"

.bdd
  root F

.code
cond 0:
  load_const 0
  load_const 1
  map1
  get_property 2
  isset
  return_value
`
	bc := asmOrFail(t, src)
	e := vm.New(bc, 0)
	truth, err := e.EvalCondition(0)
	require.NoError(t, err)
	require.False(t, truth, "get_property on a missing key must resolve to null")
}

func TestReturnEndpointPopOrder(t *testing.T) {
	src := `
.constants
  0 string "v"
  1 string "k"
  2 string "https://example.com/"

.bdd
  root F

.code
result 0:
  load_const 0
  load_const 1
  map1
  load_const 2
  return_endpoint 2
`
	bc := asmOrFail(t, src)
	e := vm.New(bc, 0)
	out, err := e.RunResult(0)
	require.NoError(t, err)
	require.Equal(t, vm.OutcomeEndpoint, out.Kind)
	require.Equal(t, values.String("https://example.com/"), out.URL)
	m, ok := out.Properties.(*values.Map)
	require.True(t, ok)
	v, ok := m.Get("k")
	require.True(t, ok)
	require.Equal(t, values.String("v"), v)
	require.Nil(t, out.Headers)
}

func TestReturnErrorRequiresStringOperand(t *testing.T) {
	src := `
.constants
  0 int32 1

.bdd
  root F

.code
result 0:
  load_const 0
  return_error
`
	bc := asmOrFail(t, src)
	e := vm.New(bc, 0)
	_, err := e.RunResult(0)
	require.Error(t, err)
}

func TestStackOverflowIsReported(t *testing.T) {
	src := `
.constants
  0 bool true

.bdd
  root F

.code
cond 0:
  load_const 0
  load_const 0
  load_const 0
  return_value
`
	bc := asmOrFail(t, src)
	e := vm.New(bc, 2) // too small for three live pushes
	_, err := e.EvalCondition(0)
	require.Error(t, err)
}
