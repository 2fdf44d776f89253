package commands

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/google/renameio"

	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
	"git.home.luguber.info/inful/docmd/internal/frontmatter"
	"git.home.luguber.info/inful/docmd/internal/logfields"
	"git.home.luguber.info/inful/docmd/internal/markdown"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	File   string `arg:"" optional:"" help:"Markdown file to render (stdin when omitted or -)"`
	Output string `short:"o" help:"Write the result to this file instead of stdout"`
	TOC    bool   `name:"toc" help:"Emit JSON with html, headings and title"`
	Watch  bool   `short:"w" help:"Re-render whenever FILE changes"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	if r.Watch && (r.File == "" || r.File == "-") {
		return errors.ValidationError("--watch requires a file argument").Build()
	}
	engine, err := g.Engine(root)
	if err != nil {
		return err
	}
	if err := r.renderOnce(g, engine); err != nil {
		return err
	}
	if !r.Watch {
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	g.Logger.Info("Watching for changes", logfields.File(r.File))
	return watchFile(ctx, g.Logger, r.File, func() {
		if err := r.renderOnce(g, engine); err != nil {
			g.Logger.Warn("Re-render failed", logfields.File(r.File), logfields.Error(err))
			return
		}
		g.Logger.Info("Re-rendered", logfields.File(r.File))
	})
}

func (r *RenderCmd) renderOnce(g *Global, engine *markdown.Engine) error {
	src, err := g.readSource(r.File)
	if err != nil {
		return err
	}
	res, err := renderPage(engine, src)
	if err != nil {
		return err
	}

	out := []byte(res.HTML)
	if r.TOC {
		if out, err = json.MarshalIndent(res, "", "  "); err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "failed to encode result").Build()
		}
		out = append(out, '\n')
	}
	return g.writeOutput(r.Output, out)
}

// renderPage renders the body of a page. The frontmatter title stands in
// when the body has no level-1 heading.
func renderPage(engine *markdown.Engine, src []byte) (*markdown.Result, error) {
	page, err := frontmatter.Parse(src)
	if err != nil {
		return nil, err
	}
	res, err := engine.Render(page.Body)
	if err != nil {
		return nil, err
	}
	if res.Title == "" {
		res.Title = page.Title()
	}
	return res, nil
}

// writeOutput writes data to path atomically, or to stdout when path is empty.
func (g *Global) writeOutput(path string, data []byte) error {
	if path == "" {
		if _, err := g.Stdout.Write(data); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output").Build()
		}
		return nil
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output file").
			WithContext("path", path).
			Build()
	}
	g.Logger.Debug("Wrote output", logfields.Output(path), logfields.Bytes(len(data)))
	return nil
}
