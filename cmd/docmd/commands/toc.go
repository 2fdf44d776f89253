package commands

import (
	"encoding/json"

	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
	"git.home.luguber.info/inful/docmd/internal/markdown/toc"
)

// TOCCmd implements the 'toc' command.
type TOCCmd struct {
	File string `arg:"" optional:"" help:"Markdown file (stdin when omitted or -)"`
}

func (t *TOCCmd) Run(g *Global, root *CLI) error {
	engine, err := g.Engine(root)
	if err != nil {
		return err
	}
	src, err := g.readSource(t.File)
	if err != nil {
		return err
	}
	res, err := renderPage(engine, src)
	if err != nil {
		return err
	}

	headings := res.Headings
	if headings == nil {
		headings = []toc.Heading{}
	}
	out, err := json.MarshalIndent(headings, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode headings").Build()
	}
	return g.writeOutput("", append(out, '\n'))
}
