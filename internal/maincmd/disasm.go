package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/endpointvm/bytecode"
	"github.com/mna/endpointvm/functions"
	"github.com/mna/endpointvm/internal/config/envconfig"
)

func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return DisasmFiles(stdio, args...)
}

// DisasmFiles loads each binary bytecode file and prints its textual
// assembly form (bytecode.Disasm) to stdio.Stdout.
func DisasmFiles(stdio mainer.Stdio, files ...string) error {
	reg := functions.NewStandardRegistry()
	limits, err := envconfig.Parse()
	if err != nil {
		return printError(stdio, err)
	}
	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			return printError(stdio, err)
		}
		if limits.MaxBytecodeSize > 0 && int64(len(b)) > limits.MaxBytecodeSize {
			return printError(stdio, fmt.Errorf("%s: container is %d bytes, exceeds configured maximum %d", file, len(b), limits.MaxBytecodeSize))
		}
		bc, err := bytecode.Load(b, reg)
		if err != nil {
			return printError(stdio, fmt.Errorf("%s: %w", file, err))
		}
		text, err := bytecode.Disasm(bc)
		if err != nil {
			return printError(stdio, fmt.Errorf("%s: %w", file, err))
		}
		fmt.Fprint(stdio.Stdout, text)
	}
	return nil
}
