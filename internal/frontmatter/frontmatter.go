// Package frontmatter separates YAML frontmatter from a markdown page.
package frontmatter

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
)

// ErrMissingClosingDelimiter indicates the page started with a frontmatter
// delimiter that is never closed.
var ErrMissingClosingDelimiter = errors.ValidationError("frontmatter start delimiter found but closing delimiter is missing").Build()

// Page is a markdown source split into frontmatter and body.
type Page struct {
	Fields map[string]any
	Body   []byte
	// BodyLine is the 1-based source line the body starts on.
	BodyLine int

	raw   []byte
	had   bool
	style newlineStyle
}

type newlineStyle string

// Parse splits content and decodes its frontmatter. A page without
// frontmatter has empty Fields and its whole content as Body.
func Parse(content []byte) (*Page, error) {
	fm, body, had, style, err := split(content)
	if err != nil {
		return nil, err
	}
	fields, err := parseYAML(fm)
	if err != nil {
		return nil, err
	}
	p := &Page{Fields: fields, Body: body, BodyLine: 1, raw: fm, had: had, style: style}
	if had {
		p.BodyLine = bytes.Count(content[:len(content)-len(body)], []byte{'\n'}) + 1
	}
	return p, nil
}

// Title returns the `title` field when it is a non-empty string.
func (p *Page) Title() string {
	if s, ok := p.Fields["title"].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// WithBody reassembles the page around a replacement body, keeping the
// original frontmatter bytes and newline style.
func (p *Page) WithBody(body []byte) []byte {
	if !p.had {
		return body
	}
	nl := string(p.style)
	out := make([]byte, 0, len(p.raw)+len(body)+2*(3+len(nl)))
	out = append(out, "---"+nl...)
	out = append(out, p.raw...)
	out = append(out, "---"+nl...)
	out = append(out, body...)
	return out
}

func split(content []byte) (frontmatter []byte, body []byte, had bool, style newlineStyle, err error) {
	style = detectStyle(content)

	nl := string(style)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, style, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the last line has no trailing newline.
		if bytes.HasSuffix(content, []byte(nl+"---")) {
			end := len(content) - len("---")
			return content[start:end], []byte{}, true, style, nil
		}
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, style, nil
}

func parseYAML(frontmatter []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid frontmatter").Build()
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectStyle(content []byte) newlineStyle {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
