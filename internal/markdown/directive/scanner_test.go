package directive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(s string) [][]byte {
	var out [][]byte
	for _, l := range strings.Split(strings.TrimSuffix(s, "\n"), "\n") {
		out = append(out, []byte(l))
	}
	return out
}

func TestClassifyLine(t *testing.T) {
	reg := DefaultRegistry()
	cases := []struct {
		line string
		want Fence
	}{
		{":::", Fence{Type: FenceClose}},
		{"  :::  ", Fence{Type: FenceClose}},
		{"::: card Title here", Fence{Type: FenceOpen, Name: "card", Params: "Title here"}},
		{":::callout info", Fence{Type: FenceOpen, Name: "callout", Params: "info"}},
		{"::: tabs", Fence{Type: FenceOpen, Name: "tabs"}},
		{"::: unknown", Fence{Type: FenceOpen, Name: "unknown"}},
		{"::: button Go /go", Fence{Type: FenceSelf, Name: "button", Params: "Go /go"}},
		{"== tab One", Fence{Type: FencePaneMarker}},
		{"== v1.0.0", Fence{}},
		{"::::", Fence{}},
		{"text ::: card", Fence{}},
		{"", Fence{}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyLine([]byte(tc.line), reg), "line %q", tc.line)
	}
}

func TestScan(t *testing.T) {
	reg := DefaultRegistry()
	cases := []struct {
		name  string
		body  string
		close int
		ok    bool
	}{
		{"simple", "text\n:::\n", 1, true},
		{"nested same kind", "::: card\ninner\n:::\nouter\n:::\n", 4, true},
		{"nested other kind", "::: callout info\n::: steps\n1. a\n:::\n:::\n:::\n", 5, true},
		{"self-closing does not nest", "::: button Go /go\n:::\n", 1, true},
		{"unknown names nest", "::: sidebar\n:::\n:::\n", 2, true},
		{"pane markers are ignored", "== tab A\n:::\n", 1, true},
		{"unclosed", "::: card\n:::\n", -1, false},
		{"empty", "", -1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body [][]byte
			if tc.body != "" {
				body = lines(tc.body)
			}
			got, ok := Scan(body, reg)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.close, got)
		})
	}
}

func TestTrackerDepth(t *testing.T) {
	tr := NewTracker(DefaultRegistry())
	assert.Equal(t, 1, tr.Depth())
	tr.Feed([]byte("::: card"))
	assert.Equal(t, 2, tr.Depth())
	_, closed := tr.Feed([]byte(":::"))
	assert.False(t, closed)
	_, closed = tr.Feed([]byte(":::"))
	assert.True(t, closed)
}

func TestScanSource_Limit(t *testing.T) {
	src := []byte("::: card\nbody\n:::\n")
	scan, ok := scanSource(src, len("::: card\n"), 1, 2, 0, DefaultRegistry())
	assert.False(t, ok)
	assert.Empty(t, scan.lines)

	scan, ok = scanSource(src, len("::: card\n"), 1, -1, 0, DefaultRegistry())
	require.True(t, ok)
	assert.Equal(t, 2, scan.closeLine)
	assert.Equal(t, [][]byte{[]byte("body")}, scan.lines)
}

func TestScanSource_Blockquote(t *testing.T) {
	src := []byte("> ::: card\n> body\n> :::\n")
	assert.Equal(t, 1, quoteDepth(src, 2))

	scan, ok := scanSource(src, len("> ::: card\n"), 1, -1, 1, DefaultRegistry())
	require.True(t, ok)
	assert.Equal(t, 2, scan.closeLine)
	assert.Equal(t, [][]byte{[]byte("body")}, scan.lines)

	// A line that leaves the quote ends the scan.
	_, ok = scanSource([]byte("> ::: card\nbody\n> :::\n"), len("> ::: card\n"), 1, -1, 1, DefaultRegistry())
	assert.False(t, ok)
}

func TestSplitPanes(t *testing.T) {
	reg := DefaultRegistry()
	body := lines("intro\n== tab \"Long Title\"\none\n::: tabs\n== tab nested\nx\n:::\n\n== tab B\ntwo\n")

	panes := splitPanes(body, KindTabs, reg)
	require.Len(t, panes, 2)
	assert.Equal(t, "Long Title", panes[0].title)
	assert.Equal(t, "intro\n\none\n::: tabs\n== tab nested\nx\n:::\n", joinBody(panes[0].body))
	assert.Equal(t, "B", panes[1].title)
	assert.Equal(t, "two\n", joinBody(panes[1].body))

	entries := splitPanes(lines("== 2024-01-01 v2\nnew\n== v1\nold\n"), KindChangelog, reg)
	require.Len(t, entries, 2)
	assert.Equal(t, "2024-01-01 v2", entries[0].title)
	assert.Equal(t, "v1", entries[1].title)

	assert.Empty(t, splitPanes(lines("no markers\n"), KindTabs, reg))
}

func TestJoinBody(t *testing.T) {
	assert.Equal(t, "", joinBody(lines("\n\n")))
	assert.Equal(t, "a\n\nb\n", joinBody(lines("\na\n\nb\n\n")))
}
