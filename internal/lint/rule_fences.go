package lint

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/emirpasic/gods/stacks/arraystack"

	"git.home.luguber.info/inful/docmd/internal/markdown/directive"
)

// FenceRule checks that every `:::` directive is closed and every close has
// an opener. It counts fences the way the engine's scanner does, so an issue
// here is exactly a directive the engine degrades to text.
//
// Outside any directive, fenced code blocks are skipped: the engine parses
// them as code. Inside a directive every line counts, as it does for the
// scanner.
type FenceRule struct {
	reg         *directive.Registry
	warnUnknown bool
}

// NewFenceRule returns a FenceRule for the directives in reg.
func NewFenceRule(reg *directive.Registry, warnUnknown bool) *FenceRule {
	return &FenceRule{reg: reg, warnUnknown: warnUnknown}
}

// Name returns the rule identifier.
func (r *FenceRule) Name() string {
	return "directive-fences"
}

type openFence struct {
	name  string
	line  int
	panes int
}

var codeFence = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")

// Check scans the page body line by line.
func (r *FenceRule) Check(doc *Document) ([]Issue, error) {
	body := doc.Page.Body
	stack := arraystack.New()
	var (
		issues []Issue
		code   []byte
	)

	lineNo := doc.Page.BodyLine
	for pos := 0; pos < len(body); lineNo++ {
		start := pos
		end := bytes.IndexByte(body[pos:], '\n')
		if end < 0 {
			pos = len(body)
		} else {
			pos += end + 1
		}
		line := bytes.TrimRight(body[start:pos], "\r\n")

		if stack.Empty() {
			if code != nil {
				if closesCode(line, code) {
					code = nil
				}
				continue
			}
			if m := codeFence.FindSubmatch(line); m != nil {
				code = m[1]
				continue
			}
		}

		f := directive.ClassifyLine(line, r.reg)
		switch f.Type {
		case directive.FenceOpen:
			stack.Push(&openFence{name: f.Name, line: lineNo})
			if r.warnUnknown && !r.known(f.Name) {
				issues = append(issues, r.unknown(doc.Path, f.Name, lineNo))
			}
		case directive.FencePaneMarker:
			if top, ok := stack.Peek(); ok {
				top.(*openFence).panes++
			}
		case directive.FenceClose:
			v, ok := stack.Pop()
			if !ok {
				issues = append(issues, r.stray(doc.Path, lineNo, Edit{Start: start, End: pos}))
				continue
			}
			if of := v.(*openFence); of.name == directive.KindTabs.String() && of.panes == 0 {
				issues = append(issues, r.emptyTabs(doc.Path, of.line))
			}
		}
	}

	// Remaining entries are unclosed, innermost on top. One close fence per
	// entry appended at the end of the body repairs all of them.
	closes := stack.Size()
	for !stack.Empty() {
		v, _ := stack.Pop()
		of := v.(*openFence)
		issues = append(issues, r.unclosed(doc.Path, of))
	}
	if closes > 0 {
		fix := closingFences(body, closes)
		for i := range issues {
			if issues[i].Rule == "directive-unclosed" {
				issues[i].Edits = []Edit{{Start: len(body), End: len(body), Replacement: fix}}
				break
			}
		}
	}
	return issues, nil
}

func (r *FenceRule) known(name string) bool {
	if name == directive.KindTabs.String() {
		return true
	}
	_, ok := r.reg.Lookup(name)
	return ok
}

func (r *FenceRule) unclosed(path string, of *openFence) Issue {
	return Issue{
		FilePath: path,
		Severity: SeverityError,
		Rule:     "directive-unclosed",
		Message:  fmt.Sprintf("Directive %q is never closed", of.name),
		Explanation: `No matching ":::" follows this opener, so the opener line and its body
render as plain paragraph text.`,
		Fix:  `Add a closing ":::" line after the directive body`,
		Line: of.line,
	}
}

func (r *FenceRule) stray(path string, line int, edit Edit) Issue {
	return Issue{
		FilePath: path,
		Severity: SeverityWarning,
		Rule:     "directive-stray-close",
		Message:  "Closing fence without an open directive",
		Explanation: `This ":::" closes nothing. It renders as nothing, which usually means an
opener above it is misspelled or was removed.`,
		Fix:   `Remove the ":::" line or restore its opener`,
		Line:  line,
		Edits: []Edit{edit},
	}
}

func (r *FenceRule) unknown(path, name string, line int) Issue {
	return Issue{
		FilePath: path,
		Severity: SeverityWarning,
		Rule:     "directive-unknown",
		Message:  fmt.Sprintf("Unknown directive %q", name),
		Explanation: `The name is not registered. The line still counts as an opener when
matching close fences, but renders as plain text.`,
		Line: line,
	}
}

func (r *FenceRule) emptyTabs(path string, line int) Issue {
	return Issue{
		FilePath: path,
		Severity: SeverityWarning,
		Rule:     "tabs-without-panes",
		Message:  "Tabs directive has no == tab markers",
		Explanation: `A tabs body is split on "== tab Title" lines. Without any marker the
directive renders as plain text.`,
		Fix:  `Start each pane with a line such as == tab "Overview"`,
		Line: line,
	}
}

func closesCode(line, opener []byte) bool {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) < len(opener) || trimmed[0] != opener[0] {
		return false
	}
	return len(bytes.Trim(trimmed, string(opener[:1]))) == 0
}

// closingFences returns n close fences to append to body, starting on a new
// line and using the body's newline style.
func closingFences(body []byte, n int) []byte {
	nl := []byte("\n")
	if bytes.Contains(body, []byte("\r\n")) {
		nl = []byte("\r\n")
	}
	var out []byte
	if len(body) > 0 && body[len(body)-1] != '\n' {
		out = append(out, nl...)
	}
	for range n {
		out = append(out, ":::"...)
		out = append(out, nl...)
	}
	return out
}
