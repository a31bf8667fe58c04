package registers

import (
	"fmt"

	"github.com/mna/endpointvm/bytecode"
	"github.com/mna/endpointvm/values"
)

// arrayFiller is the fallback path for programs with 64 or more registers,
// where a single machine word can no longer track every filled-bit (spec
// §4.4): identical semantics to bitmaskFiller, implemented with a bool
// slice instead.
type arrayFiller struct {
	bc *bytecode.Bytecode
}

func newArrayFiller(bc *bytecode.Bytecode) *arrayFiller {
	return &arrayFiller{bc: bc}
}

func (f *arrayFiller) Fill(dst []values.Value, params map[string]values.Value, providers map[string]Provider, ctx any) error {
	if len(dst) != len(f.bc.Registers) {
		return fmt.Errorf("registers: destination vector has length %d, want %d", len(dst), len(f.bc.Registers))
	}
	copy(dst, f.bc.RegisterTemplate)

	filled := make([]bool, len(f.bc.Registers))
	for i, r := range f.bc.Registers {
		if r.HasDefault() {
			filled[i] = true
		}
	}

	for name, v := range params {
		i, ok := f.bc.InputRegisterMap[name]
		if !ok {
			continue
		}
		dst[i] = v
		filled[i] = true
	}

	for _, i := range f.bc.BuiltinIndices {
		if filled[i] {
			continue
		}
		reg := f.bc.Registers[i]
		provider, ok := providers[reg.Builtin]
		if !ok {
			continue
		}
		v, ok := provider(ctx)
		if ok && v != nil {
			dst[i] = v
			filled[i] = true
		}
	}

	return missingRequiredError(f.bc, func(i int) bool { return filled[i] })
}
