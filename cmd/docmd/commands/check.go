package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
	"git.home.luguber.info/inful/docmd/internal/lint"
	"git.home.luguber.info/inful/docmd/internal/logfields"
)

// Exit codes of the check command.
const (
	ExitWarnings = 1
	ExitErrors   = 2
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Paths  []string `arg:"" optional:"" help:"Files or directories to check (defaults to the current directory)"`
	Format string   `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Quiet  bool     `short:"q" help:"Quiet mode: only show errors, suppress warnings"`
	Fix    bool     `help:"Repair unclosed directives and stray closing fences in place"`
	DryRun bool     `help:"Show what would be fixed without applying changes (requires --fix)"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	if c.DryRun && !c.Fix {
		return errors.ValidationError("--dry-run requires --fix flag").Build()
	}
	cfg, err := g.LoadConfig(root)
	if err != nil {
		return err
	}
	engine, err := g.Engine(root)
	if err != nil {
		return err
	}

	paths := c.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := lint.CollectFiles(paths)
	if err != nil {
		return err
	}

	linter := lint.NewLinter(&lint.Config{
		Quiet:                 c.Quiet,
		Format:                c.Format,
		WarnUnknownDirectives: cfg.Lint.WarnUnknownDirectives,
	}, engine)

	if c.Fix {
		if err := c.runFixer(g, linter, files); err != nil {
			return err
		}
	}

	result, err := linter.LintFiles(files)
	if err != nil {
		return err
	}
	g.Logger.Debug("Checked files", logfields.Issues(len(result.Issues)))

	formatter := lint.NewFormatter(c.Format, isColorSupported(g.Stdout))
	if err := formatter.Format(g.Stdout, result); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write check results").Build()
	}

	switch {
	case result.HasErrors():
		g.ExitCode = ExitErrors
	case result.HasWarnings() && !c.Quiet:
		g.ExitCode = ExitWarnings
	}
	return nil
}

func (c *CheckCmd) runFixer(g *Global, linter *lint.Linter, files []string) error {
	res := lint.NewFixer(linter, c.DryRun).Fix(files)
	if c.DryRun {
		_, _ = fmt.Fprintln(g.Stdout, "DRY RUN: No changes will be applied")
	}
	for _, path := range res.FilesFixed {
		_, _ = fmt.Fprintf(g.Stdout, "fixed %s\n", path)
	}
	_, _ = fmt.Fprintf(g.Stdout, "%d issue(s) fixed in %d file(s)\n\n", res.IssuesFixed, len(res.FilesFixed))
	if len(res.Errors) > 0 {
		return res.Errors[0]
	}
	return nil
}

// isColorSupported checks if w is a terminal that accepts color output.
func isColorSupported(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return false
	}

	// Check NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}
