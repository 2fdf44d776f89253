package directive

import (
	"strconv"

	"github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/docmd/internal/markdown/toc"
)

var (
	// KindDirective is the node kind of a registry directive.
	KindDirective = ast.NewNodeKind("Directive")
	// KindPaneSet is the node kind of a split tabs or changelog directive.
	KindPaneSet = ast.NewNodeKind("PaneSet")
	// KindStrayFence is the node kind of a `:::` that closes nothing.
	KindStrayFence = ast.NewNodeKind("StrayFence")
)

// Directive is a registry directive. A container directive holds its parsed
// body as children; a self-closing directive is a leaf.
type Directive struct {
	ast.BaseBlock
	Definition Definition
	Params     string
	// Level is the nesting level, 1 for a directive at the top of a document.
	Level int

	// closeLine is the source line of the matching close fence, -1 when
	// self-closing.
	closeLine int
}

// NewDirective returns a Directive node.
func NewDirective(def Definition, params string, level, closeLine int) *Directive {
	return &Directive{Definition: def, Params: params, Level: level, closeLine: closeLine}
}

// Kind implements ast.Node.
func (n *Directive) Kind() ast.NodeKind {
	return KindDirective
}

// SelfClosing reports whether the directive has no body.
func (n *Directive) SelfClosing() bool {
	return n.Definition.SelfClosing
}

// Dump implements ast.Node.
func (n *Directive) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Name":   n.Definition.Name,
		"Params": n.Params,
		"Level":  strconv.Itoa(n.Level),
	}, nil)
}

// Pane is one tab or changelog entry with its separately rendered body.
type Pane struct {
	// Title is the tab title or the changelog entry meta text.
	Title    string
	HTML     string
	Headings []toc.Heading
}

// PaneSet is a tabs or changelog directive whose body was split on `==`
// markers. The panes are rendered when the node closes.
type PaneSet struct {
	ast.BaseBlock
	Mode Kind
	// Wrapper renders the outer boundary for changelog; unset for tabs.
	Wrapper Definition
	Panes   []Pane
	Level   int

	closeLine int
	indent    int
}

// Kind implements ast.Node.
func (n *PaneSet) Kind() ast.NodeKind {
	return KindPaneSet
}

// IsRaw implements ast.Node. Body lines are kept verbatim for the splitter.
func (n *PaneSet) IsRaw() bool {
	return true
}

// CarriedHeadings implements toc.Carrier.
func (n *PaneSet) CarriedHeadings() []toc.Heading {
	var headings []toc.Heading
	for _, p := range n.Panes {
		headings = append(headings, p.Headings...)
	}
	return headings
}

// Dump implements ast.Node.
func (n *PaneSet) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Mode":  n.Mode.String(),
		"Panes": strconv.Itoa(len(n.Panes)),
		"Level": strconv.Itoa(n.Level),
	}, nil)
}

// StrayFence is a closing fence without an open directive. It renders nothing.
type StrayFence struct {
	ast.BaseBlock
}

// Kind implements ast.Node.
func (n *StrayFence) Kind() ast.NodeKind {
	return KindStrayFence
}

// Dump implements ast.Node.
func (n *StrayFence) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}
