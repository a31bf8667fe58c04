package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/endpointvm/bytecode"
	"github.com/mna/endpointvm/functions"
)

func (c *Cmd) Asm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return AsmFiles(stdio, args...)
}

// AsmFiles assembles each textual bytecode source file (bytecode.Asm) and
// writes its binary container form to stdio.Stdout, one after another.
func AsmFiles(stdio mainer.Stdio, files ...string) error {
	reg := functions.NewStandardRegistry()
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return printError(stdio, err)
		}
		bc, err := bytecode.Asm(string(src), reg)
		if err != nil {
			return printError(stdio, fmt.Errorf("%s: %w", file, err))
		}
		if _, err := stdio.Stdout.Write(bc.Encode()); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}
