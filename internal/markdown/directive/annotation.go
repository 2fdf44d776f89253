package directive

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// KindAnnotation is the node kind of an image attribute annotation.
var KindAnnotation = ast.NewNodeKind("AttributeAnnotation")

// Annotation is a `{...}` attribute block written directly after an image,
// as in `![hero](hero.png){width=100 .rounded #hero}`. It carries the parsed
// attributes until AnnotationTransformer moves them onto the image.
type Annotation struct {
	ast.BaseInline
}

// Kind implements ast.Node.
func (n *Annotation) Kind() ast.NodeKind {
	return KindAnnotation
}

// Dump implements ast.Node.
func (n *Annotation) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

type annotationParser struct{}

// NewAnnotationParser returns an InlineParser for image attribute annotations.
func NewAnnotationParser() parser.InlineParser {
	return annotationParser{}
}

func (annotationParser) Trigger() []byte {
	return []byte{'{'}
}

func (annotationParser) Parse(parent ast.Node, block text.Reader, _ parser.Context) ast.Node {
	if _, ok := parent.LastChild().(*ast.Image); !ok {
		return nil
	}
	attrs, ok := parser.ParseAttributes(block)
	if !ok {
		return nil
	}
	n := &Annotation{}
	for _, attr := range attrs {
		n.SetAttribute(attr.Name, attr.Value)
	}
	return n
}

var classAttr = []byte("class")

// AnnotationTransformer merges every annotation into the image before it and
// removes the annotation from the tree.
type AnnotationTransformer struct{}

// Transform implements parser.ASTTransformer.
func (AnnotationTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	var found []*Annotation
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if a, ok := n.(*Annotation); ok && entering {
			found = append(found, a)
		}
		return ast.WalkContinue, nil
	})
	for _, a := range found {
		if img, ok := a.PreviousSibling().(*ast.Image); ok {
			mergeAttributes(img, a)
		}
		a.Parent().RemoveChild(a.Parent(), a)
	}
}

func mergeAttributes(dst, src ast.Node) {
	for _, attr := range src.Attributes() {
		if bytes.Equal(attr.Name, classAttr) {
			if existing, ok := dst.Attribute(classAttr); ok {
				if prev, isBytes := existing.([]byte); isBytes {
					if add, isBytes := attr.Value.([]byte); isBytes {
						merged := append(append(append([]byte{}, prev...), ' '), add...)
						dst.SetAttribute(classAttr, merged)
						continue
					}
				}
			}
		}
		dst.SetAttribute(attr.Name, attr.Value)
	}
}
