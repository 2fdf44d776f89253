package directive

import (
	"bytes"
	"regexp"
)

// FenceType classifies a source line for fence counting.
type FenceType int

const (
	FenceNone FenceType = iota
	// FenceOpen opens a directive with a body: a registered container,
	// tabs, or any unknown `:::name` line.
	FenceOpen
	// FenceSelf opens a registered self-closing directive.
	FenceSelf
	// FenceClose is a bare `:::`.
	FenceClose
	// FencePaneMarker is a `== tab ...` line. It never changes depth.
	FencePaneMarker
)

// Fence is the classification of one line.
type Fence struct {
	Type   FenceType
	Name   string
	Params string
}

var (
	openerPattern = regexp.MustCompile(`^:::\s*(\w+)(?:\s+(.+))?$`)
	fencePrefix   = regexp.MustCompile(`^:::\s*(\w+)`)
	tabMarker     = regexp.MustCompile(`^==\s*tab\s+(?:"([^"]+)"|(\S+))$`)
	entryMarker   = regexp.MustCompile(`^==\s+(.+)$`)

	closeFence   = []byte(":::")
	tabMarkerTag = []byte("== tab")
)

// ClassifyLine classifies line after trimming surrounding whitespace.
func ClassifyLine(line []byte, reg *Registry) Fence {
	trimmed := bytes.TrimSpace(line)
	if bytes.Equal(trimmed, closeFence) {
		return Fence{Type: FenceClose}
	}
	if bytes.HasPrefix(trimmed, tabMarkerTag) {
		return Fence{Type: FencePaneMarker}
	}
	m := fencePrefix.FindSubmatch(trimmed)
	if m == nil {
		return Fence{}
	}
	f := Fence{Type: FenceOpen, Name: string(m[1])}
	if full := openerPattern.FindSubmatch(trimmed); full != nil {
		f.Name = string(full[1])
		f.Params = string(full[2])
	}
	if reg != nil && reg.selfClosing(f.Name) {
		f.Type = FenceSelf
	}
	return f
}

// parseOpener matches a complete `::: name [params]` line.
func parseOpener(line []byte) (name, params string, ok bool) {
	m := openerPattern.FindSubmatch(bytes.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	return string(m[1]), string(m[2]), true
}

// Tracker counts nested fences below an opening directive. It starts at
// depth 1; the line that brings it to 0 is the matching close.
type Tracker struct {
	reg   *Registry
	depth int
}

// NewTracker returns a Tracker positioned just after an opening fence.
func NewTracker(reg *Registry) *Tracker {
	return &Tracker{reg: reg, depth: 1}
}

// Feed accounts for one line and reports whether it closed the directive.
// After a close the tracker must not be fed again.
func (t *Tracker) Feed(line []byte) (Fence, bool) {
	f := ClassifyLine(line, t.reg)
	switch f.Type {
	case FenceOpen:
		t.depth++
	case FenceClose:
		t.depth--
		return f, t.depth == 0
	}
	return f, false
}

// Depth is the current nesting depth, 1 meaning directly inside the directive.
func (t *Tracker) Depth() int {
	return t.depth
}

// Scan returns the index into lines of the fence that closes a directive
// whose opener precedes lines[0]. ok is false when no such fence exists.
func Scan(lines [][]byte, reg *Registry) (closeIdx int, ok bool) {
	t := NewTracker(reg)
	for i, line := range lines {
		if _, closed := t.Feed(line); closed {
			return i, true
		}
	}
	return -1, false
}

// bodyScan is the result of scanning the source below an opener.
type bodyScan struct {
	closeLine int
	lines     [][]byte
}

// scanSource walks the source lines that follow an opener. from is the byte
// offset of the first body line and line its line number. Lines at or beyond
// limit (when limit >= 0) are outside the enclosing directive. quotes is the
// number of blockquote markers carried by the opener; each body line must
// carry as many and has them stripped.
func scanSource(source []byte, from, line, limit, quotes int, reg *Registry) (bodyScan, bool) {
	t := NewTracker(reg)
	var body [][]byte
	for pos := from; pos < len(source); line++ {
		if limit >= 0 && line >= limit {
			break
		}
		end := bytes.IndexByte(source[pos:], '\n')
		var raw []byte
		if end < 0 {
			raw = source[pos:]
			pos = len(source)
		} else {
			raw = source[pos : pos+end]
			pos += end + 1
		}
		stripped, ok := stripQuotes(raw, quotes)
		if !ok {
			break
		}
		if _, closed := t.Feed(stripped); closed {
			return bodyScan{closeLine: line, lines: body}, true
		}
		body = append(body, stripped)
	}
	return bodyScan{}, false
}

// quoteDepth counts the blockquote markers between the start of the line
// holding offset and offset itself.
func quoteDepth(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	start := bytes.LastIndexByte(source[:offset], '\n') + 1
	return bytes.Count(source[start:offset], []byte{'>'})
}

func stripQuotes(line []byte, n int) ([]byte, bool) {
	for range n {
		i := 0
		for i < len(line) && i < 3 && line[i] == ' ' {
			i++
		}
		if i >= len(line) || line[i] != '>' {
			return line, false
		}
		line = line[i+1:]
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			line = line[1:]
		}
	}
	return line, true
}
