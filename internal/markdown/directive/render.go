package directive

import (
	"fmt"
	"strconv"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// HTMLRenderer renders directive nodes and the lists and images whose markup
// depends on the enclosing directive.
type HTMLRenderer struct {
	html.Config
}

// NewHTMLRenderer returns a new HTMLRenderer.
func NewHTMLRenderer(opts ...html.Option) renderer.NodeRenderer {
	r := &HTMLRenderer{Config: html.NewConfig()}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *HTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindDirective, r.renderDirective)
	reg.Register(KindPaneSet, r.renderPaneSet)
	reg.Register(KindStrayFence, r.renderNothing)
	reg.Register(KindAnnotation, r.renderNothing)
	reg.Register(ast.KindList, r.renderList)
	reg.Register(ast.KindListItem, r.renderListItem)
	reg.Register(ast.KindImage, r.renderImage)
}

func (r *HTMLRenderer) renderDirective(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Directive)
	if n.SelfClosing() {
		if entering {
			_, _ = w.WriteString(n.Definition.Render(NestingSelf, n.Params))
			_ = w.WriteByte('\n')
		}
		return ast.WalkSkipChildren, nil
	}
	if entering {
		_, _ = w.WriteString(n.Definition.Render(NestingOpen, n.Params))
	} else {
		_, _ = w.WriteString(n.Definition.Render(NestingClose, n.Params))
	}
	_ = w.WriteByte('\n')
	return ast.WalkContinue, nil
}

func (r *HTMLRenderer) renderPaneSet(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*PaneSet)
	switch n.Mode {
	case KindTabs:
		renderTabs(w, n.Panes)
	case KindChangelog:
		_, _ = w.WriteString(n.Wrapper.Render(NestingOpen, ""))
		_ = w.WriteByte('\n')
		for _, p := range n.Panes {
			_, _ = w.WriteString(`<div class="changelog-entry"><div class="changelog-meta"><span class="changelog-date">`)
			_, _ = w.WriteString(escape(p.Title))
			_, _ = w.WriteString("</span></div><div class=\"changelog-body\">\n")
			_, _ = w.WriteString(p.HTML)
			_, _ = w.WriteString("</div></div>\n")
		}
		_, _ = w.WriteString(n.Wrapper.Render(NestingClose, ""))
		_ = w.WriteByte('\n')
	}
	return ast.WalkSkipChildren, nil
}

func renderTabs(w util.BufWriter, panes []Pane) {
	_, _ = w.WriteString("<div class=\"docmd-tabs\">\n<div class=\"docmd-tabs-nav\">\n")
	for i, p := range panes {
		_, _ = w.WriteString(`<div class="docmd-tabs-nav-item`)
		if i == 0 {
			_, _ = w.WriteString(" active")
		}
		_, _ = w.WriteString(`">`)
		_, _ = w.WriteString(escape(p.Title))
		_, _ = w.WriteString("</div>\n")
	}
	_, _ = w.WriteString("</div>\n<div class=\"docmd-tabs-content\">\n")
	for i, p := range panes {
		_, _ = w.WriteString(`<div class="docmd-tab-pane`)
		if i == 0 {
			_, _ = w.WriteString(" active")
		}
		_, _ = w.WriteString("\">\n")
		_, _ = w.WriteString(p.HTML)
		_, _ = w.WriteString("</div>\n")
	}
	_, _ = w.WriteString("</div>\n</div>\n")
}

func (r *HTMLRenderer) renderNothing(util.BufWriter, []byte, ast.Node, bool) (ast.WalkStatus, error) {
	return ast.WalkSkipChildren, nil
}

// InSteps reports whether any directive enclosing n is a steps directive.
// Other directives in between do not hide the steps context.
func InSteps(n ast.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if d, ok := p.(*Directive); ok && d.Definition.Kind == KindSteps {
			return true
		}
	}
	return false
}

func (r *HTMLRenderer) renderList(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.List)
	tag := "ul"
	if n.IsOrdered() {
		tag = "ol"
	}
	if !entering {
		_, _ = w.WriteString("</" + tag + ">\n")
		return ast.WalkContinue, nil
	}
	_ = w.WriteByte('<')
	_, _ = w.WriteString(tag)
	if n.IsOrdered() && InSteps(n) {
		_, _ = w.WriteString(` class="steps-list"`)
	}
	if n.IsOrdered() && n.Start != 1 {
		_, _ = fmt.Fprintf(w, " start=\"%d\"", n.Start)
	}
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, html.ListAttributeFilter)
	}
	_, _ = w.WriteString(">\n")
	return ast.WalkContinue, nil
}

func (r *HTMLRenderer) renderListItem(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</li>\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<li")
	if list, ok := n.Parent().(*ast.List); ok && list.IsOrdered() && InSteps(list) {
		_, _ = w.WriteString(` class="step-item"`)
	}
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, html.ListItemAttributeFilter)
	}
	_ = w.WriteByte('>')
	if fc := n.FirstChild(); fc != nil {
		if _, ok := fc.(*ast.TextBlock); !ok {
			_ = w.WriteByte('\n')
		}
	}
	return ast.WalkContinue, nil
}

// renderImage writes every attribute of the image, including those moved
// onto it from an attribute annotation.
func (r *HTMLRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	_, _ = w.WriteString("<img src=\"")
	if r.Unsafe || !html.IsDangerousURL(n.Destination) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	}
	_, _ = w.WriteString(`" alt="`)
	r.renderAltText(w, source, n)
	_ = w.WriteByte('"')
	if n.Title != nil {
		_, _ = w.WriteString(` title="`)
		r.Writer.Write(w, n.Title)
		_ = w.WriteByte('"')
	}
	for _, attr := range n.Attributes() {
		value, ok := attributeValue(attr.Value)
		if !ok {
			continue
		}
		_ = w.WriteByte(' ')
		_, _ = w.Write(attr.Name)
		_, _ = w.WriteString(`="`)
		_, _ = w.Write(util.EscapeHTML([]byte(value)))
		_ = w.WriteByte('"')
	}
	if r.XHTML {
		_, _ = w.WriteString(" />")
	} else {
		_ = w.WriteByte('>')
	}
	return ast.WalkSkipChildren, nil
}

func (r *HTMLRenderer) renderAltText(w util.BufWriter, source []byte, n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			r.Writer.Write(w, t.Segment.Value(source))
			if t.SoftLineBreak() {
				_ = w.WriteByte('\n')
			}
		case *ast.String:
			if t.IsCode() {
				r.Writer.RawWrite(w, t.Value)
			} else {
				r.Writer.Write(w, t.Value)
			}
		default:
			r.renderAltText(w, source, c)
		}
	}
}

func attributeValue(v any) (string, bool) {
	switch typed := v.(type) {
	case []byte:
		return string(typed), true
	case string:
		return typed, true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	}
	return "", false
}
