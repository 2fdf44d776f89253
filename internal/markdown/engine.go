// Package markdown renders docmd markdown to HTML.
//
// An Engine wraps a goldmark instance configured with the directive
// extension, heading ids and the GFM feature set. Tab panes and changelog
// entries are rendered by the Engine itself through RenderFragment, one
// nesting level deeper than their directive.
package markdown

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/docmd/internal/config"
	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
	"git.home.luguber.info/inful/docmd/internal/logfields"
	"git.home.luguber.info/inful/docmd/internal/markdown/directive"
	"git.home.luguber.info/inful/docmd/internal/markdown/toc"
	"git.home.luguber.info/inful/docmd/internal/metrics"
)

// Result is a rendered document.
type Result struct {
	HTML     string        `json:"html"`
	Headings []toc.Heading `json:"headings"`
	// Title is the text of the first level-1 heading, empty when there is none.
	Title string `json:"title"`
}

// Engine renders markdown. It is safe for concurrent use.
type Engine struct {
	md       goldmark.Markdown
	reg      *directive.Registry
	maxDepth int

	codeHighlight bool
	hardWraps     bool
	typographer   bool
	linkify       bool
	unsafeHTML    bool

	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry sets the directive registry. The registry is frozen by New.
func WithRegistry(reg *directive.Registry) Option {
	return func(e *Engine) { e.reg = reg }
}

// WithMaxDepth bounds directive nesting and pane recursion.
func WithMaxDepth(n int) Option {
	return func(e *Engine) { e.maxDepth = n }
}

// WithCodeHighlight toggles the hljs hooks on fenced code blocks.
func WithCodeHighlight(on bool) Option {
	return func(e *Engine) { e.codeHighlight = on }
}

// WithHardWraps renders soft line breaks as <br>.
func WithHardWraps(on bool) Option {
	return func(e *Engine) { e.hardWraps = on }
}

// WithTypographer toggles smart quotes and dashes.
func WithTypographer(on bool) Option {
	return func(e *Engine) { e.typographer = on }
}

// WithLinkify toggles automatic linking of bare URLs.
func WithLinkify(on bool) Option {
	return func(e *Engine) { e.linkify = on }
}

// WithUnsafeHTML passes raw HTML through instead of omitting it.
func WithUnsafeHTML(on bool) Option {
	return func(e *Engine) { e.unsafeHTML = on }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithLogger sets the logger used for per-render debug lines.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// FromConfig applies the markdown section of a loaded configuration.
func FromConfig(c config.MarkdownConfig) Option {
	return func(e *Engine) {
		e.maxDepth = c.MaxDepth
		e.codeHighlight = c.CodeHighlight
		e.hardWraps = c.HardWraps
		e.typographer = c.Typographer
		e.linkify = c.Linkify
		e.unsafeHTML = c.UnsafeHTML
	}
}

// New builds an Engine. Without options it behaves like the default
// configuration.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		maxDepth:      config.DefaultMaxDepth,
		codeHighlight: true,
		hardWraps:     true,
		typographer:   true,
		linkify:       true,
		unsafeHTML:    true,
		recorder:      metrics.NoopRecorder{},
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxDepth < 1 || e.maxDepth > config.MaxMaxDepth {
		return nil, errors.ValidationError("max depth out of range").
			WithContext("max_depth", e.maxDepth).
			WithContext("limit", config.MaxMaxDepth).
			Build()
	}
	if e.reg == nil {
		e.reg = directive.DefaultRegistry()
	}
	e.md = e.build()
	return e, nil
}

func (e *Engine) build() goldmark.Markdown {
	exts := []goldmark.Extender{
		extension.Strikethrough,
		extension.TaskList,
		extension.Footnote,
		extension.DefinitionList,
		directive.New(
			directive.WithRegistry(e.reg),
			directive.WithSubRenderer(e),
			directive.WithMaxDepth(e.maxDepth),
		),
	}
	if e.linkify {
		exts = append(exts, extension.Linkify)
	}
	if e.typographer {
		exts = append(exts, extension.Typographer)
	}

	rendererOpts := []renderer.Option{}
	if e.hardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	if e.unsafeHTML {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAttribute(),
			parser.WithParagraphTransformers(
				util.Prioritized(extension.NewTableParagraphTransformer(), 200),
			),
			parser.WithASTTransformers(
				util.Prioritized(extension.NewTableASTTransformer(), 0),
				util.Prioritized(toc.IDTransformer{}, 200),
			),
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	md.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(newTableWrapper(extension.NewTableHTMLRenderer()), 500),
		util.Prioritized(newCodeBlockRenderer(e.codeHighlight), 500),
	))
	return md
}

// Registry returns the frozen directive registry.
func (e *Engine) Registry() *directive.Registry {
	return e.reg
}

// MaxDepth returns the nesting limit.
func (e *Engine) MaxDepth() int {
	return e.maxDepth
}

// Render renders a complete document.
func (e *Engine) Render(src []byte) (*Result, error) {
	start := time.Now()
	frag, err := e.render(src, 0)
	elapsed := time.Since(start)
	e.recorder.ObserveRenderDuration(elapsed)
	if err != nil {
		e.recorder.IncRenderResult(metrics.ResultError)
		return nil, err
	}
	e.recorder.IncRenderResult(metrics.ResultSuccess)

	res := &Result{HTML: frag.HTML, Headings: frag.Headings, Title: titleOf(frag.Headings)}
	e.logger.Debug("Rendered markdown",
		logfields.Bytes(len(src)),
		logfields.Headings(len(res.Headings)),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return res, nil
}

// RenderString renders src and returns only the HTML.
func (e *Engine) RenderString(src string) (string, error) {
	res, err := e.Render([]byte(src))
	if err != nil {
		return "", err
	}
	return res.HTML, nil
}

// RenderFragment renders the body of a pane owned by a directive at the
// given depth. It implements directive.SubRenderer and fails once depth
// reaches the engine's limit.
func (e *Engine) RenderFragment(src []byte, depth int) (directive.Fragment, error) {
	if depth >= e.maxDepth {
		return directive.Fragment{}, errors.RenderError("maximum directive depth exceeded").
			WithContext("depth", depth).
			WithContext("max_depth", e.maxDepth).
			Build()
	}
	return e.render(src, depth)
}

func (e *Engine) render(src []byte, depth int) (directive.Fragment, error) {
	doc := e.md.Parser().Parse(text.NewReader(src), parser.WithContext(directive.NewContext(depth)))
	e.observe(doc, src)

	var buf bytes.Buffer
	if err := e.md.Renderer().Render(&buf, src, doc); err != nil {
		return directive.Fragment{}, errors.WrapError(err, errors.CategoryRender, "failed to render markdown").
			WithContext("depth", depth).
			Build()
	}
	return directive.Fragment{HTML: buf.String(), Headings: toc.Collect(doc, src)}, nil
}

// observe reports directive counts and fallbacks found in doc. Panes are
// observed by their own render pass.
func (e *Engine) observe(doc ast.Node, src []byte) {
	counts := map[string]int{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *directive.Directive:
			counts[node.Definition.Name]++
		case *directive.PaneSet:
			counts[node.Mode.String()]++
		case *directive.StrayFence:
			e.recorder.IncFallback(metrics.FallbackStrayFence)
		case *ast.Paragraph:
			if e.isUnclosedOpener(node, src) {
				e.recorder.IncFallback(metrics.FallbackUnclosed)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	for name, n := range counts {
		e.recorder.AddDirectives(name, n)
	}
}

// isUnclosedOpener reports whether p starts with a known container opener,
// which only happens when its close fence is missing.
func (e *Engine) isUnclosedOpener(p *ast.Paragraph, src []byte) bool {
	if p.Lines().Len() == 0 {
		return false
	}
	seg := p.Lines().At(0)
	f := directive.ClassifyLine(seg.Value(src), e.reg)
	if f.Type != directive.FenceOpen {
		return false
	}
	if f.Name == directive.KindTabs.String() {
		return true
	}
	_, known := e.reg.Lookup(f.Name)
	return known
}

func titleOf(headings []toc.Heading) string {
	for _, h := range headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	return ""
}
