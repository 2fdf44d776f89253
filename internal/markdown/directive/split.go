package directive

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
	"git.home.luguber.info/inful/docmd/internal/markdown/toc"
)

// Fragment is an independently rendered piece of markdown.
type Fragment struct {
	HTML     string
	Headings []toc.Heading
}

// SubRenderer renders the body of a pane. depth is the nesting level of the
// directive that owns the pane; directives inside the body start one deeper.
type SubRenderer interface {
	RenderFragment(src []byte, depth int) (Fragment, error)
}

var errNoSubRenderer = errors.NewError(errors.CategoryInternal, "no sub-renderer configured").Build()

var splitOpener = regexp.MustCompile(`^:::\s*(tabs|changelog)(?:\s+.*)?$`)

type splitParser struct {
	reg      *Registry
	sub      SubRenderer
	maxDepth int
}

// NewSplitParser returns a BlockParser for tabs and changelog directives.
// Pane bodies are rendered through sub.
func NewSplitParser(reg *Registry, sub SubRenderer, maxDepth int) parser.BlockParser {
	return &splitParser{reg: reg, sub: sub, maxDepth: maxDepth}
}

func (p *splitParser) Trigger() []byte {
	return []byte{':'}
}

func (p *splitParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	m := splitOpener.FindSubmatch(bytes.TrimSpace(line))
	if m == nil {
		return nil, parser.NoChildren
	}
	node := &PaneSet{Mode: KindOf(string(m[1]))}
	if node.Mode == KindChangelog {
		def, ok := p.reg.Lookup(KindChangelog.String())
		if !ok {
			return nil, parser.NoChildren
		}
		node.Wrapper = def
	}
	level, limit := enclosing(parent, pc)
	if level > p.maxDepth {
		return nil, parser.NoChildren
	}

	lineNum, _ := reader.Position()
	source := reader.Source()
	scan, ok := scanSource(source, segment.Stop, lineNum+1, limit, quoteDepth(source, segment.Start), p.reg)
	if !ok || len(splitPanes(scan.lines, node.Mode, p.reg)) == 0 {
		return nil, parser.NoChildren
	}

	node.Level = level
	node.closeLine = scan.closeLine
	node.indent, _ = util.IndentWidth(line, reader.LineOffset())
	reader.AdvanceToEOL()
	return node, parser.NoChildren
}

func (p *splitParser) Continue(node ast.Node, reader text.Reader, _ parser.Context) parser.State {
	ps := node.(*PaneSet)
	lineNum, _ := reader.Position()
	if lineNum >= ps.closeLine {
		if lineNum == ps.closeLine {
			consumeLine(reader)
		}
		return parser.Close
	}
	line, segment := reader.PeekLine()
	pos, padding := util.IndentPositionPadding(line, reader.LineOffset(), segment.Padding, ps.indent)
	if pos < 0 {
		pos = max(0, util.FirstNonSpacePosition(line)) - segment.Padding
		padding = 0
	}
	ps.Lines().Append(text.NewSegmentPadding(segment.Start+pos, segment.Stop, padding))
	reader.AdvanceToEOL()
	return parser.Continue | parser.NoChildren
}

func (p *splitParser) Close(node ast.Node, reader text.Reader, _ parser.Context) {
	ps := node.(*PaneSet)
	source := reader.Source()
	lines := make([][]byte, 0, ps.Lines().Len())
	for i := 0; i < ps.Lines().Len(); i++ {
		seg := ps.Lines().At(i)
		lines = append(lines, bytes.TrimRight(seg.Value(source), "\r\n"))
	}
	for _, raw := range splitPanes(lines, ps.Mode, p.reg) {
		ps.Panes = append(ps.Panes, Pane{Title: raw.title})
		pane := &ps.Panes[len(ps.Panes)-1]
		body := joinBody(raw.body)
		if body == "" {
			continue
		}
		frag, err := p.render(body, ps.Level)
		if err != nil {
			frag = Fragment{HTML: "<p>" + escape(body) + "</p>\n"}
		}
		pane.HTML = frag.HTML
		pane.Headings = frag.Headings
	}
}

func (p *splitParser) render(body string, depth int) (Fragment, error) {
	if p.sub == nil {
		return Fragment{}, errNoSubRenderer
	}
	return p.sub.RenderFragment([]byte(body), depth)
}

func (p *splitParser) CanInterruptParagraph() bool {
	return true
}

func (p *splitParser) CanAcceptIndentedLine() bool {
	return false
}

type rawPane struct {
	title string
	body  [][]byte
}

// splitPanes splits a directive body on the pane markers of mode. Markers of
// nested directives are left alone. Non-blank lines before the first marker
// go to the first pane. A body without markers yields no panes.
func splitPanes(lines [][]byte, mode Kind, reg *Registry) []rawPane {
	t := NewTracker(reg)
	var (
		panes    []rawPane
		preamble [][]byte
	)
	for _, line := range lines {
		if t.Depth() == 1 {
			if title, ok := markerTitle(line, mode); ok {
				panes = append(panes, rawPane{title: title})
				continue
			}
		}
		t.Feed(line)
		if len(panes) == 0 {
			preamble = append(preamble, line)
			continue
		}
		last := &panes[len(panes)-1]
		last.body = append(last.body, line)
	}
	if len(panes) > 0 && joinBody(preamble) != "" {
		panes[0].body = append(append(preamble, []byte{}), panes[0].body...)
	}
	return panes
}

func markerTitle(line []byte, mode Kind) (string, bool) {
	trimmed := bytes.TrimSpace(line)
	switch mode {
	case KindTabs:
		m := tabMarker.FindSubmatch(trimmed)
		if m == nil {
			return "", false
		}
		if len(m[1]) > 0 {
			return string(m[1]), true
		}
		return string(m[2]), true
	case KindChangelog:
		m := entryMarker.FindSubmatch(trimmed)
		if m == nil {
			return "", false
		}
		return strings.TrimSpace(string(m[1])), true
	}
	return "", false
}

// joinBody joins lines, dropping leading and trailing blank lines.
func joinBody(lines [][]byte) string {
	for len(lines) > 0 && util.IsBlank(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && util.IsBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}
	return string(bytes.Join(lines, []byte{'\n'})) + "\n"
}
