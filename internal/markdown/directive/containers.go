package directive

import (
	"strings"

	"github.com/aymerick/douceur/parser"
	"github.com/yuin/goldmark/util"
)

const chevronSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" class="lucide lucide-chevron-down"><path d="m6 9 6 6 6-6"/></svg>`

func builtinDefinitions() []Definition {
	return []Definition{
		{Name: "card", Kind: KindCard, Render: renderCard},
		{Name: "callout", Kind: KindCallout, Render: renderCallout},
		{Name: "button", Kind: KindButton, SelfClosing: true, Render: renderButton},
		{Name: "steps", Kind: KindSteps, Render: renderSteps},
		{Name: "collapsible", Kind: KindCollapsible, Render: renderCollapsible},
		{Name: "changelog", Kind: KindChangelog, Render: renderChangelog},
	}
}

func escape(s string) string {
	return string(util.EscapeHTML([]byte(s)))
}

func renderCard(n Nesting, params string) string {
	if n != NestingOpen {
		return "</div></div>"
	}
	var b strings.Builder
	b.WriteString(`<div class="docmd-container card">`)
	if title := strings.TrimSpace(params); title != "" {
		b.WriteString(`<div class="card-title">` + escape(title) + `</div>`)
	}
	b.WriteString(`<div class="card-content">`)
	return b.String()
}

// renderCallout reads params as "<type> [title...]".
func renderCallout(n Nesting, params string) string {
	if n != NestingOpen {
		return "</div></div>"
	}
	typ, title, _ := strings.Cut(strings.TrimSpace(params), " ")
	var b strings.Builder
	b.WriteString(`<div class="docmd-container callout callout-` + escape(typ) + `">`)
	if title = strings.TrimSpace(title); title != "" {
		b.WriteString(`<div class="callout-title">` + escape(title) + `</div>`)
	}
	b.WriteString(`<div class="callout-content">`)
	return b.String()
}

// renderButton reads params as "<Label> [url] [color:<value>]". Underscores in
// the label become spaces and an "external:" url prefix opens a new tab.
func renderButton(n Nesting, params string) string {
	if n == NestingClose {
		return ""
	}
	parts := strings.Fields(params)
	if len(parts) == 0 {
		return `<a class="docmd-button"></a>`
	}
	label := strings.ReplaceAll(parts[0], "_", " ")

	var b strings.Builder
	b.WriteString("<a")
	external := false
	if len(parts) > 1 {
		url := parts[1]
		if rest, ok := strings.CutPrefix(url, "external:"); ok {
			url = rest
			external = true
		}
		b.WriteString(` href="`)
		b.Write(util.EscapeHTML(util.URLEscape([]byte(url), true)))
		b.WriteString(`"`)
	}
	b.WriteString(` class="docmd-button"`)
	if len(parts) > 2 {
		if color, ok := buttonColor(parts[2]); ok {
			b.WriteString(` style="background-color: ` + escape(color) + `"`)
		}
	}
	if external {
		b.WriteString(` target="_blank" rel="noopener noreferrer"`)
	}
	b.WriteString(">" + escape(label) + "</a>")
	return b.String()
}

// buttonColor accepts "color:<value>" when <value> parses as exactly one CSS
// background-color declaration.
func buttonColor(param string) (string, bool) {
	value, ok := strings.CutPrefix(param, "color:")
	if !ok || value == "" || strings.ContainsAny(value, `;{}<>"'`) {
		return "", false
	}
	decls, err := parser.ParseDeclarations("background-color: " + value + ";")
	if err != nil || len(decls) != 1 {
		return "", false
	}
	d := decls[0]
	if d.Property != "background-color" || d.Important || d.Value == "" {
		return "", false
	}
	return d.Value, true
}

func renderSteps(n Nesting, _ string) string {
	if n != NestingOpen {
		return "</div>"
	}
	return `<div class="docmd-container steps steps-reset steps-numbering">`
}

// renderCollapsible opens the section when params start with "open ".
func renderCollapsible(n Nesting, params string) string {
	if n != NestingOpen {
		return "</div></details>"
	}
	title := strings.TrimSpace(params)
	open := false
	if rest, ok := strings.CutPrefix(title, "open "); ok {
		open = true
		title = strings.TrimSpace(rest)
	} else if title == "open" {
		open = true
		title = ""
	}
	if title == "" {
		title = "Click to expand"
	}
	var b strings.Builder
	b.WriteString(`<details class="docmd-container collapsible"`)
	if open {
		b.WriteString(" open")
	}
	b.WriteString(`><summary class="collapsible-summary"><span class="collapsible-title">`)
	b.WriteString(escape(title))
	b.WriteString(`</span><span class="collapsible-arrow">` + chevronSVG + `</span></summary><div class="collapsible-content">`)
	return b.String()
}

func renderChangelog(n Nesting, _ string) string {
	if n != NestingOpen {
		return "</div>"
	}
	return `<div class="docmd-container changelog-timeline">`
}
