// Package engineconfig loads the YAML file the eval CLI command uses to
// supply static values for named builtin providers — the concrete, file-backed form
// of spec.md §6's abstract "custom_functions / custom_builtin_providers"
// configuration knobs.
package engineconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mna/endpointvm/registers"
	"github.com/mna/endpointvm/values"
)

// Config names the enabled surface for one engine invocation. The eval
// command always resolves functions against functions.NewStandardRegistry();
// only Builtins changes what a run makes available, so the zero value is a
// usable "standard functions only, no builtins" configuration.
type Config struct {
	// Functions lists extension function names. It is parsed from the
	// YAML file but not read by the eval command, and Load does not
	// validate the names.
	Functions []string `yaml:"functions"`

	// Builtins maps a builtin name (as declared by a RegisterDefinition's
	// Builtin field) to a static canned value the `eval` command's
	// provider set returns for it. A real embedding host would resolve
	// builtins from ambient client state instead; the CLI has none, so a
	// declared constant is the only provider shape it can offer.
	Builtins map[string]any `yaml:"builtins"`
}

// Load reads and parses a Config from path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engineconfig: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("engineconfig: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// StaticProviders builds a registers.Provider set from cfg.Builtins: each
// named builtin always returns the same configured value, ignoring ctx
// entirely. It is the `eval` command's stand-in for the ambient,
// client-derived providers a real embedding host would register.
func (cfg *Config) StaticProviders() (map[string]registers.Provider, error) {
	providers := make(map[string]registers.Provider, len(cfg.Builtins))
	for name, raw := range cfg.Builtins {
		v, err := values.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("engineconfig: builtin %q: %w", name, err)
		}
		value := v
		providers[name] = func(ctx any) (values.Value, bool) { return value, true }
	}
	return providers, nil
}
