package registers

import (
	"fmt"
	"math/bits"

	"github.com/mna/endpointvm/bytecode"
	"github.com/mna/endpointvm/values"
)

// bitmaskFiller is the fast path for programs with fewer than 64 registers
// (spec §4.4): every per-register flag set lives in one machine word.
type bitmaskFiller struct {
	bc           *bytecode.Bytecode
	defaultMask  uint64
	builtinMask  uint64
	requiredMask uint64
}

func newBitmaskFiller(bc *bytecode.Bytecode) *bitmaskFiller {
	f := &bitmaskFiller{bc: bc}
	for i, r := range bc.Registers {
		bit := uint64(1) << uint(i)
		if r.HasDefault() {
			f.defaultMask |= bit
		}
	}
	for _, i := range bc.BuiltinIndices {
		f.builtinMask |= uint64(1) << uint(i)
	}
	for _, i := range bc.HardRequiredIndices {
		f.requiredMask |= uint64(1) << uint(i)
	}
	return f
}

func (f *bitmaskFiller) Fill(dst []values.Value, params map[string]values.Value, providers map[string]Provider, ctx any) error {
	if len(dst) != len(f.bc.Registers) {
		return fmt.Errorf("registers: destination vector has length %d, want %d", len(dst), len(f.bc.Registers))
	}
	copy(dst, f.bc.RegisterTemplate)
	filled := f.defaultMask

	for name, v := range params {
		i, ok := f.bc.InputRegisterMap[name]
		if !ok {
			continue // unknown names are ignored (spec §6)
		}
		dst[i] = v
		filled |= uint64(1) << uint(i)
	}

	if filled&f.builtinMask != f.builtinMask {
		unfilled := f.builtinMask &^ filled
		for unfilled != 0 {
			i := bits.TrailingZeros64(unfilled)
			unfilled &^= uint64(1) << uint(i)

			reg := f.bc.Registers[i]
			provider, ok := providers[reg.Builtin]
			if !ok {
				continue
			}
			v, ok := provider(ctx)
			if ok && v != nil {
				dst[i] = v
				filled |= uint64(1) << uint(i)
			}
		}
	}

	if f.requiredMask&^filled != 0 {
		return missingRequiredError(f.bc, func(i int) bool {
			return filled&(uint64(1)<<uint(i)) != 0
		})
	}
	return nil
}
