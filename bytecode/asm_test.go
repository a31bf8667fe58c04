package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/endpointvm/bytecode"
	"github.com/mna/endpointvm/functions"
)

// trivialMatchSrc is spec §8 scenario 1: one condition isSet(region), one
// result returning a literal URL, BDD root tests the condition.
const trivialMatchSrc = `
.functions

.constants
  0 string "https://svc.example/"

.registers
  0 region

.bdd
  root n0
  n0 var=0 high=r0 low=F

.code
cond 0:
  test_register_isset 0
  return_value
result 0:
  load_const 0
  return_endpoint 0
`

func TestAsmDisasmRoundTrip(t *testing.T) {
	reg := functions.NewStandardRegistry()

	bc, err := bytecode.Asm(trivialMatchSrc, reg)
	require.NoError(t, err)
	require.Len(t, bc.Conditions, 1)
	require.Len(t, bc.Results, 1)
	require.Len(t, bc.Registers, 1)
	require.Equal(t, "region", bc.Registers[0].Name)

	text, err := bytecode.Disasm(bc)
	require.NoError(t, err)

	bc2, err := bytecode.Asm(text, reg)
	require.NoError(t, err)
	require.Equal(t, bc.Conditions, bc2.Conditions)
	require.Equal(t, bc.Results, bc2.Results)
	require.Equal(t, bc.Code, bc2.Code)
	require.Equal(t, bc.Root, bc2.Root)
}

func TestEncodeLoadRoundTrip(t *testing.T) {
	reg := functions.NewStandardRegistry()

	bc, err := bytecode.Asm(trivialMatchSrc, reg)
	require.NoError(t, err)

	b1 := bc.Encode()
	loaded, err := bytecode.Load(b1, reg)
	require.NoError(t, err)

	b2 := loaded.Encode()
	require.Equal(t, b1, b2, "encode(decode(b)) must round-trip bit-for-bit")
}

func TestEncodeLoadRoundTripWithMapConstant(t *testing.T) {
	src := `
.functions

.constants
  0 string "a"
  1 int32 1
  2 string "b"
  3 int32 2
  4 map a=1 b=3
  5 string "https://x/"

.registers

.bdd
  root r0

.code
result 0:
  load_const 4
  load_const 5
  return_endpoint 2
`
	reg := functions.NewStandardRegistry()
	bc, err := bytecode.Asm(src, reg)
	require.NoError(t, err)

	b1 := bc.Encode()
	loaded, err := bytecode.Load(b1, reg)
	require.NoError(t, err)
	b2 := loaded.Encode()
	require.Equal(t, b1, b2)
}

func TestAsmUnresolvedFunction(t *testing.T) {
	src := `
.functions
  0 doesNotExist

.constants

.registers

.bdd
  root F

.code
`
	reg := functions.NewStandardRegistry()
	_, err := bytecode.Asm(src, reg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "doesNotExist")
}

func TestLoadRejectsBadMagic(t *testing.T) {
	reg := functions.NewStandardRegistry()
	b := make([]byte, 44)
	_, err := bytecode.Load(b, reg)
	require.Error(t, err)
}
