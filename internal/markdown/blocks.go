package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

var mermaidLang = []byte("mermaid")

// codeBlockRenderer renders fenced code blocks as hooks for client-side
// highlighting and mermaid diagrams.
type codeBlockRenderer struct {
	html.Config
	highlight bool
}

func newCodeBlockRenderer(highlight bool) renderer.NodeRenderer {
	return &codeBlockRenderer{Config: html.NewConfig(), highlight: highlight}
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := n.Language(source)
	switch {
	case bytes.Equal(lang, mermaidLang):
		_, _ = w.WriteString(`<pre class="mermaid">`)
		r.writeLines(w, source, n)
		_, _ = w.WriteString("</pre>\n")
	case r.highlight:
		_, _ = w.WriteString(`<pre class="hljs"><code`)
		if lang != nil {
			_, _ = w.WriteString(` class="language-`)
			r.Writer.Write(w, lang)
			_ = w.WriteByte('"')
		}
		_ = w.WriteByte('>')
		r.writeLines(w, source, n)
		_, _ = w.WriteString("</code></pre>\n")
	default:
		_, _ = w.WriteString("<pre><code>")
		r.writeLines(w, source, n)
		_, _ = w.WriteString("</code></pre>\n")
	}
	return ast.WalkSkipChildren, nil
}

func (r *codeBlockRenderer) writeLines(w util.BufWriter, source []byte, n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		r.Writer.RawWrite(w, seg.Value(source))
	}
}

// tableWrapper decorates goldmark's table renderer so every table is wrapped
// in a scrollable `table-wrapper` div.
type tableWrapper struct {
	inner renderer.NodeRenderer
}

func newTableWrapper(inner renderer.NodeRenderer) renderer.NodeRenderer {
	return &tableWrapper{inner: inner}
}

// SetOption forwards renderer options to the wrapped renderer.
func (t *tableWrapper) SetOption(name renderer.OptionName, value any) {
	if so, ok := t.inner.(renderer.SetOptioner); ok {
		so.SetOption(name, value)
	}
}

func (t *tableWrapper) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	t.inner.RegisterFuncs(wrappingRegisterer{reg})
}

type wrappingRegisterer struct {
	renderer.NodeRendererFuncRegisterer
}

func (w wrappingRegisterer) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	if kind == east.KindTable {
		fn = wrapTable(fn)
	}
	w.NodeRendererFuncRegisterer.Register(kind, fn)
}

func wrapTable(fn renderer.NodeRendererFunc) renderer.NodeRendererFunc {
	return func(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			_, _ = w.WriteString("<div class=\"table-wrapper\">\n")
			return fn(w, source, n, entering)
		}
		status, err := fn(w, source, n, entering)
		_, _ = w.WriteString("</div>\n")
		return status, err
	}
}
