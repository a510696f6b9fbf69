package config

// Config represents the complete atlas configuration.
// It can be loaded from .atlas/config.yml with environment variable overrides.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Scan     ScanConfig     `yaml:"scan" mapstructure:"scan"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Findings FindingsConfig `yaml:"findings" mapstructure:"findings"`
}

// PathsConfig defines which files to analyze and which to exclude.
type PathsConfig struct {
	Exclude []string `yaml:"exclude" mapstructure:"exclude"` // glob patterns to skip
}

// ScanConfig controls generation execution.
type ScanConfig struct {
	Workers   int    `yaml:"workers" mapstructure:"workers"`       // 0 means GOMAXPROCS
	CallGraph bool   `yaml:"call_graph" mapstructure:"call_graph"` // emit the symbol-level artifact
	Weight    string `yaml:"weight" mapstructure:"weight"`         // critical-path node weight: constant or lines
}

// OutputConfig defines where artifacts land.
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`       // artifact directory, default .atlas
	Ledger string `yaml:"ledger" mapstructure:"ledger"` // generation ledger database file
}

// FindingsConfig points at the external rule catalog output.
type FindingsConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // per-file findings JSON
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Exclude: []string{
				".git",
				".atlas",
				"node_modules",
				"vendor",
				"dist",
				"build",
				"**/*.min.js",
			},
		},
		Scan: ScanConfig{
			Workers:   0,
			CallGraph: true,
			Weight:    "constant",
		},
		Output: OutputConfig{
			Dir:    ".atlas",
			Ledger: ".atlas/ledger.db",
		},
	}
}
