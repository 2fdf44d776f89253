package config

// Default values for the markdown engine.
const (
	DefaultMaxDepth = 16
	MaxMaxDepth     = 256
)

// Defaults returns a configuration with every default applied. Load decodes
// the YAML file over it, so keys missing from the file keep their default.
func Defaults() *Config {
	return &Config{
		Markdown: MarkdownConfig{
			MaxDepth:      DefaultMaxDepth,
			CodeHighlight: true,
			HardWraps:     true,
			Typographer:   true,
			Linkify:       true,
			UnsafeHTML:    true,
		},
		Lint: LintConfig{
			WarnUnknownDirectives: true,
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}

// ApplyDefaults fills values an explicit zero in the file would leave unusable.
func ApplyDefaults(cfg *Config) {
	if cfg.Markdown.MaxDepth == 0 {
		cfg.Markdown.MaxDepth = DefaultMaxDepth
	}
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
}
