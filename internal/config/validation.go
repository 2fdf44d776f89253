package config

import (
	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
)

// Validate checks a loaded configuration.
func Validate(cfg *Config) error {
	if cfg.Markdown.MaxDepth < 1 || cfg.Markdown.MaxDepth > MaxMaxDepth {
		return errors.NewError(errors.CategoryConfig, "markdown.max_depth must be between 1 and 256").
			WithContext("max_depth", cfg.Markdown.MaxDepth).
			Build()
	}
	if cfg.Metrics.Textfile != "" && !cfg.Metrics.Enabled {
		return errors.NewError(errors.CategoryConfig, "metrics.textfile requires metrics.enabled").
			WithContext("textfile", cfg.Metrics.Textfile).
			Build()
	}
	return nil
}
