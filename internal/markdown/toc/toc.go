// Package toc assigns heading ids and collects the heading list used to build
// a page's table of contents.
package toc

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Heading is one table-of-contents entry.
type Heading struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Carrier is implemented by nodes whose content was rendered by a separate
// render pass (tab panes, changelog entries). Their headings are merged into
// the document list at the node's position.
type Carrier interface {
	CarriedHeadings() []Heading
}

var (
	whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
	nonSlugChars  = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	dashRun       = regexp.MustCompile(`-{2,}`)
)

// Slugify derives a heading id: lowercase, whitespace runs become "-",
// everything outside [A-Za-z0-9_-] is dropped, dash runs collapse and
// leading/trailing dashes are trimmed. The result may be empty.
func Slugify(s string) string {
	// A Caser keeps state between calls, so each call gets its own.
	slug := cases.Lower(language.Und).String(s)
	slug = whitespaceRun.ReplaceAllString(slug, "-")
	slug = nonSlugChars.ReplaceAllString(slug, "")
	slug = dashRun.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// IDTransformer sets an id attribute on every heading that has none.
//
// The slug is derived from the heading's raw inline source, so markup such as
// emphasis markers never reaches the id. Identical headings get identical ids.
type IDTransformer struct{}

// Transform implements parser.ASTTransformer.
func (IDTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if _, has := h.AttributeString("id"); !has {
			if id := Slugify(rawText(h, source)); id != "" {
				h.SetAttributeString("id", []byte(id))
			}
		}
		return ast.WalkSkipChildren, nil
	})
}

// Collect returns every heading of doc in document order. Headings carried by
// sub-rendered fragments are spliced in where their carrier node sits.
func Collect(doc ast.Node, source []byte) []Heading {
	headings := make([]Heading, 0)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			headings = append(headings, Heading{
				ID:    attributeString(node, "id"),
				Level: node.Level,
				Text:  PlainText(node, source),
			})
			return ast.WalkSkipChildren, nil
		case Carrier:
			headings = append(headings, node.CarriedHeadings()...)
		}
		return ast.WalkContinue, nil
	})
	return headings
}

// PlainText returns the rendered text of an inline container without markup.
func PlainText(n ast.Node, source []byte) string {
	var b strings.Builder
	writePlain(&b, n, source)
	return strings.TrimSpace(b.String())
}

func writePlain(b *strings.Builder, n ast.Node, source []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(source))
		case *ast.RawHTML:
			// tags carry no text
		default:
			writePlain(b, c, source)
		}
	}
}

func rawText(h *ast.Heading, source []byte) string {
	var b strings.Builder
	lines := h.Lines()
	for i := 0; i < lines.Len(); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return strings.TrimSpace(b.String())
}

func attributeString(n ast.Node, name string) string {
	v, ok := n.AttributeString(name)
	if !ok {
		return ""
	}
	switch typed := v.(type) {
	case []byte:
		return string(typed)
	case string:
		return typed
	}
	return ""
}
