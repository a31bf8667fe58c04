package maincmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/endpointvm/bytecode"
	"github.com/mna/endpointvm/functions"
	"github.com/mna/endpointvm/internal/config/engineconfig"
	"github.com/mna/endpointvm/internal/config/envconfig"
	"github.com/mna/endpointvm/resolver"
	"github.com/mna/endpointvm/values"
)

func (c *Cmd) Eval(ctx context.Context, stdio mainer.Stdio, args []string) error {
	bcFile := args[0]
	var paramsFile string
	if len(args) > 1 {
		paramsFile = args[1]
	}
	return EvalFile(stdio, c.Config, bcFile, paramsFile)
}

// EvalFile loads the bytecode at bcFile, fills registers from the JSON
// parameter object at paramsFile (or stdio.Stdin if paramsFile is empty),
// resolves the endpoint, and prints the result: the resolved Endpoint as
// JSON, the literal text "no match", or the resolution error.
func EvalFile(stdio mainer.Stdio, configFile, bcFile, paramsFile string) error {
	reg := functions.NewStandardRegistry()

	limits, err := envconfig.Parse()
	if err != nil {
		return printError(stdio, err)
	}

	b, err := os.ReadFile(bcFile)
	if err != nil {
		return printError(stdio, err)
	}
	if limits.MaxBytecodeSize > 0 && int64(len(b)) > limits.MaxBytecodeSize {
		return printError(stdio, fmt.Errorf("%s: container is %d bytes, exceeds configured maximum %d", bcFile, len(b), limits.MaxBytecodeSize))
	}
	bc, err := bytecode.Load(b, reg)
	if err != nil {
		return printError(stdio, fmt.Errorf("%s: %w", bcFile, err))
	}

	cfg := resolver.Config{MaxStack: limits.MaxStack}
	if configFile != "" {
		ecfg, err := engineconfig.Load(configFile)
		if err != nil {
			return printError(stdio, err)
		}
		providers, err := ecfg.StaticProviders()
		if err != nil {
			return printError(stdio, err)
		}
		cfg.Providers = providers
	}

	params, err := readParams(stdio, paramsFile)
	if err != nil {
		return printError(stdio, err)
	}

	res := resolver.New(bc, cfg)
	ep, err := res.Resolve(nil, params)
	if err != nil {
		return printError(stdio, err)
	}
	if ep == nil {
		fmt.Fprintln(stdio.Stdout, "no match")
		return nil
	}

	out, err := json.MarshalIndent(ep, "", "  ")
	if err != nil {
		return printError(stdio, err)
	}
	fmt.Fprintln(stdio.Stdout, string(out))
	return nil
}

func readParams(stdio mainer.Stdio, paramsFile string) (map[string]values.Value, error) {
	var r io.Reader
	if paramsFile == "" {
		r = stdio.Stdin
	} else {
		f, err := os.Open(paramsFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return map[string]values.Value{}, nil
		}
		return nil, fmt.Errorf("decoding parameters: %w", err)
	}

	params := make(map[string]values.Value, len(raw))
	for k, v := range raw {
		conv, err := values.FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", k, err)
		}
		params[k] = conv
	}
	return params, nil
}
