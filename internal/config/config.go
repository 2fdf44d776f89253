package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "docmd.yaml"

// Config represents the application configuration.
type Config struct {
	Markdown MarkdownConfig `yaml:"markdown"`
	Lint     LintConfig     `yaml:"lint"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MarkdownConfig controls the rendering engine.
type MarkdownConfig struct {
	// MaxDepth bounds directive nesting and pane sub-render recursion.
	MaxDepth      int  `yaml:"max_depth"`
	CodeHighlight bool `yaml:"code_highlight"`
	HardWraps     bool `yaml:"hard_wraps"`
	Typographer   bool `yaml:"typographer"`
	Linkify       bool `yaml:"linkify"`
	UnsafeHTML    bool `yaml:"unsafe_html"`
}

// LintConfig controls `docmd check`.
type LintConfig struct {
	WarnUnknownDirectives bool `yaml:"warn_unknown_directives"`
}

// MetricsConfig controls Prometheus metrics collection.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Textfile is written in the node exporter textfile format after each command.
	Textfile string `yaml:"textfile,omitempty"`
}

// Load loads configuration from the specified file.
//
// .env and .env.local are loaded first and ${VAR} references in the file are
// expanded. When path is DefaultPath and the file does not exist, the defaults
// are returned; any other missing file is an error.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			return cfg, nil
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", path).
			Build()
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			WithContext("path", path).
			Build()
	}

	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init writes a configuration file holding the defaults.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.NewError(errors.CategoryConfig, "configuration file already exists").
			WithContext("path", path).
			WithHint("use --force to overwrite").
			Build()
	}

	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal default config").Build()
	}
	header := "# docmd configuration\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", path).
			Build()
	}
	return nil
}
