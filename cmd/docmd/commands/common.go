package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docmd/internal/config"
	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
	"git.home.luguber.info/inful/docmd/internal/logfields"
	"git.home.luguber.info/inful/docmd/internal/markdown"
	"git.home.luguber.info/inful/docmd/internal/metrics"
)

// LogLevelEnv overrides the log level chosen by --verbose.
const LogLevelEnv = "DOCMD_LOG_LEVEL"

// Global is the state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// ExitCode is set by commands that report findings without failing.
	ExitCode int

	cfg     *config.Config
	metrics *metrics.PrometheusRecorder
}

// NewGlobal returns a Global bound to the process streams.
func NewGlobal() *Global {
	return &Global{
		Logger: slog.Default(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docmd.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render RenderCmd `cmd:"" help:"Render a markdown file to HTML"`
	TOC    TOCCmd    `cmd:"" name:"toc" help:"Print the heading list of a markdown file as JSON"`
	Check  CheckCmd  `cmd:"" help:"Check markdown files for unbalanced directive fences"`
	Init   InitCmd   `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once. The logging
// section of the configuration is applied later by LoadConfig.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	g.setLogger(config.LogLevelInfo, config.LogFormatText, c.Verbose)
	return nil
}

func (g *Global) setLogger(base config.LogLevel, format config.LogFormat, verbose bool) {
	opts := &slog.HandlerOptions{Level: logLevel(base.Slog(), verbose)}
	var handler slog.Handler = slog.NewTextHandler(g.Stderr, opts)
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(g.Stderr, opts)
	}
	g.Logger = slog.New(handler)
	slog.SetDefault(g.Logger)
}

// logLevel resolves the level: LogLevelEnv beats --verbose, which beats
// base. An unparseable environment value is ignored.
func logLevel(base slog.Level, verbose bool) slog.Level {
	level := base
	if verbose {
		level = slog.LevelDebug
	}
	if v := strings.TrimSpace(os.Getenv(LogLevelEnv)); v != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(v)); err == nil {
			level = parsed
		}
	}
	return level
}

// LoadConfig loads the configuration named by the global flag once.
func (g *Global) LoadConfig(root *CLI) (*config.Config, error) {
	if g.cfg != nil {
		return g.cfg, nil
	}
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	g.cfg = cfg
	g.setLogger(cfg.Logging.Level, cfg.Logging.Format, root.Verbose)
	g.Logger.Debug("Loaded configuration", logfields.Config(root.Config))
	return cfg, nil
}

// Engine builds a markdown engine from the configuration. Metrics are
// collected when the configuration enables them.
func (g *Global) Engine(root *CLI) (*markdown.Engine, error) {
	cfg, err := g.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	opts := []markdown.Option{
		markdown.FromConfig(cfg.Markdown),
		markdown.WithLogger(g.Logger),
	}
	if cfg.Metrics.Enabled {
		if g.metrics == nil {
			g.metrics = metrics.NewPrometheusRecorder(nil)
		}
		opts = append(opts, markdown.WithRecorder(g.metrics))
	}
	return markdown.New(opts...)
}

// FlushMetrics writes the collected metrics to the configured textfile.
// It does nothing when no engine with metrics was built.
func (g *Global) FlushMetrics() error {
	if g.metrics == nil || g.cfg == nil || g.cfg.Metrics.Textfile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(g.cfg.Metrics.Textfile, g.metrics.Registry()); err != nil {
		return err
	}
	g.Logger.Debug("Wrote metrics textfile", logfields.File(g.cfg.Metrics.Textfile))
	return nil
}

// readSource reads path, or stdin when path is empty or "-".
func (g *Global) readSource(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(g.Stdin)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read stdin").Build()
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("input file does not exist").
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read input file").
			WithContext("path", path).
			Build()
	}
	return data, nil
}
