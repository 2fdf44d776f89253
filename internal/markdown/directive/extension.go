// Package directive implements `:::` fenced block directives for goldmark.
//
// A directive opens with `::: name [params]` and closes with a bare `:::`.
// Directives nest to any depth; the matching close is found by counting the
// fences between them. tabs and changelog bodies are split on `==` markers
// and every pane is rendered as a separate document through a SubRenderer.
// A directive without a matching close is left to the paragraph parser.
package directive

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// DefaultMaxDepth bounds directive nesting when no limit is configured.
const DefaultMaxDepth = 16

// Extender wires the directive parsers and renderers into goldmark.
type Extender struct {
	reg      *Registry
	sub      SubRenderer
	maxDepth int
}

// Option configures an Extender.
type Option func(*Extender)

// WithRegistry replaces the default registry.
func WithRegistry(reg *Registry) Option {
	return func(e *Extender) {
		if reg != nil {
			e.reg = reg
		}
	}
}

// WithSubRenderer sets the renderer used for tab panes and changelog entries.
func WithSubRenderer(sub SubRenderer) Option {
	return func(e *Extender) {
		e.sub = sub
	}
}

// WithMaxDepth limits directive nesting. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(e *Extender) {
		if n >= 1 {
			e.maxDepth = n
		}
	}
}

// New returns an Extender. The registry is frozen when the Extender is
// applied to a goldmark instance.
func New(opts ...Option) *Extender {
	e := &Extender{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	if e.reg == nil {
		e.reg = DefaultRegistry()
	}
	return e
}

// Registry returns the registry the Extender parses with.
func (e *Extender) Registry() *Registry {
	return e.reg
}

// Extend implements goldmark.Extender.
func (e *Extender) Extend(m goldmark.Markdown) {
	e.reg.Freeze()
	m.Parser().AddOptions(
		parser.WithBlockParsers(
			util.Prioritized(NewSplitParser(e.reg, e.sub, e.maxDepth), 90),
			util.Prioritized(NewDirectiveParser(e.reg, e.maxDepth), 100),
			util.Prioritized(NewStrayFenceParser(), 950),
		),
		parser.WithInlineParsers(
			util.Prioritized(NewAnnotationParser(), 500),
		),
		parser.WithASTTransformers(
			util.Prioritized(AnnotationTransformer{}, 100),
		),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewHTMLRenderer(), 100),
	))
}
