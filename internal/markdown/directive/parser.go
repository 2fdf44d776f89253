package directive

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var baseDepthKey = parser.NewContextKey()

// NewContext returns a parser context for a document rendered inside a
// directive at the given nesting level. Directives in the document start at
// level depth+1.
func NewContext(depth int) parser.Context {
	pc := parser.NewContext()
	pc.Set(baseDepthKey, depth)
	return pc
}

// BaseDepth returns the nesting level the document of pc is rendered at.
func BaseDepth(pc parser.Context) int {
	if pc == nil {
		return 0
	}
	if v, ok := pc.Get(baseDepthKey).(int); ok {
		return v
	}
	return 0
}

// enclosing returns the level a directive opened under parent would get and
// the close line of the nearest enclosing container directive, or -1.
func enclosing(parent ast.Node, pc parser.Context) (level, limit int) {
	level, limit = BaseDepth(pc)+1, -1
	for n := parent; n != nil; n = n.Parent() {
		if d, ok := n.(*Directive); ok {
			level++
			if limit < 0 {
				limit = d.closeLine
			}
		}
	}
	return level, limit
}

// consumeLine advances reader over the current line, leaving the newline.
func consumeLine(reader text.Reader) {
	line, segment := reader.PeekLine()
	if len(line) == 0 {
		return
	}
	newline := 1
	if line[len(line)-1] != '\n' {
		newline = 0
	}
	reader.Advance(segment.Stop - segment.Start - newline + segment.Padding)
}

type directiveParser struct {
	reg      *Registry
	maxDepth int
}

// NewDirectiveParser returns a BlockParser for registry directives.
func NewDirectiveParser(reg *Registry, maxDepth int) parser.BlockParser {
	return &directiveParser{reg: reg, maxDepth: maxDepth}
}

func (p *directiveParser) Trigger() []byte {
	return []byte{':'}
}

func (p *directiveParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	name, params, ok := parseOpener(line)
	if !ok {
		return nil, parser.NoChildren
	}
	def, ok := p.reg.Lookup(name)
	if !ok {
		return nil, parser.NoChildren
	}
	level, limit := enclosing(parent, pc)
	if level > p.maxDepth {
		return nil, parser.NoChildren
	}
	if def.SelfClosing {
		reader.AdvanceToEOL()
		return NewDirective(def, params, level, -1), parser.NoChildren
	}

	lineNum, _ := reader.Position()
	source := reader.Source()
	scan, ok := scanSource(source, segment.Stop, lineNum+1, limit, quoteDepth(source, segment.Start), p.reg)
	if !ok {
		return nil, parser.NoChildren
	}
	reader.AdvanceToEOL()
	return NewDirective(def, params, level, scan.closeLine), parser.HasChildren
}

func (p *directiveParser) Continue(node ast.Node, reader text.Reader, _ parser.Context) parser.State {
	d := node.(*Directive)
	if d.closeLine < 0 {
		return parser.Close
	}
	lineNum, _ := reader.Position()
	if lineNum < d.closeLine {
		return parser.Continue | parser.HasChildren
	}
	if lineNum == d.closeLine {
		consumeLine(reader)
	}
	return parser.Close
}

func (p *directiveParser) Close(ast.Node, text.Reader, parser.Context) {}

func (p *directiveParser) CanInterruptParagraph() bool {
	return true
}

func (p *directiveParser) CanAcceptIndentedLine() bool {
	return false
}

type strayFenceParser struct{}

// NewStrayFenceParser returns a BlockParser that swallows closing fences
// which close nothing.
func NewStrayFenceParser() parser.BlockParser {
	return strayFenceParser{}
}

func (strayFenceParser) Trigger() []byte {
	return []byte{':'}
}

func (strayFenceParser) Open(_ ast.Node, reader text.Reader, _ parser.Context) (ast.Node, parser.State) {
	line, _ := reader.PeekLine()
	if ClassifyLine(line, nil).Type != FenceClose {
		return nil, parser.NoChildren
	}
	reader.AdvanceToEOL()
	return &StrayFence{}, parser.NoChildren
}

func (strayFenceParser) Continue(ast.Node, text.Reader, parser.Context) parser.State {
	return parser.Close
}

func (strayFenceParser) Close(ast.Node, text.Reader, parser.Context) {}

func (strayFenceParser) CanInterruptParagraph() bool {
	return true
}

func (strayFenceParser) CanAcceptIndentedLine() bool {
	return false
}
