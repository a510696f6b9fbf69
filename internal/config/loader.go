package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigFileName is the per-project configuration file, relative to the
// scanned root.
const ConfigFileName = ".atlas/config.yml"

// Load reads configuration for a project root. A missing config file is not
// an error; defaults apply, with ATLAS_* environment overrides on top.
func Load(root string) (*Config, error) {
	v := viper.New()
	defaults := Default()
	v.SetDefault("paths.exclude", defaults.Paths.Exclude)
	v.SetDefault("scan.workers", defaults.Scan.Workers)
	v.SetDefault("scan.call_graph", defaults.Scan.CallGraph)
	v.SetDefault("scan.weight", defaults.Scan.Weight)
	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.ledger", defaults.Output.Ledger)
	v.SetDefault("findings.path", defaults.Findings.Path)

	v.SetEnvPrefix("ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfgPath := filepath.Join(root, ConfigFileName)
	if _, err := os.Stat(cfgPath); err == nil {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
