// Package config loads morlocc's build configuration the teacher's way:
// Viper binds a YAML file plus environment overrides into a typed struct,
// the way cmd/root.go's initConfig wires viper.AutomaticEnv and
// viper.ReadInConfig ahead of every subcommand.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ExecutorConfig names the command used to invoke one language's pool
// executable, plus any fixed leading arguments (an interpreter's flags,
// for instance) that always precede the pool path on its argv.
type ExecutorConfig struct {
	Command string   `mapstructure:"command" yaml:"command"`
	Args    []string `mapstructure:"args" yaml:"args"`
}

// Config is morlocc's whole build configuration: where a module's sources
// resolve relative to, the default language for bodies with nothing to
// borrow a realization from, and one executor per backend language.
type Config struct {
	LibraryRoot string                    `mapstructure:"library_root" yaml:"library_root"`
	DefaultLang string                    `mapstructure:"default_lang" yaml:"default_lang"`
	Executors   map[string]ExecutorConfig `mapstructure:"executors" yaml:"executors"`
}

// Load reads configuration from the given file paths (later files take
// priority, merged in order, mirroring cmd/root.go's multi-file
// --config handling) plus MORLOC_LIB/MORLOC_DEFAULT_LANG environment
// overrides, and returns the decoded Config.
func Load(files ...string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MORLOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("library_root", "MORLOC_LIB")
	_ = v.BindEnv("default_lang", "MORLOC_DEFAULT_LANG")

	v.SetDefault("default_lang", "py")

	for i, f := range files {
		if i == 0 {
			v.SetConfigFile(f)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config %q: %w", f, err)
			}
			continue
		}
		v.SetConfigFile(f)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging config %q: %w", f, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if cfg.LibraryRoot == "" {
		return nil, fmt.Errorf("config: library_root is required")
	}
	return &cfg, nil
}
