package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats linting results for output.
type Formatter interface {
	Format(w io.Writer, result *Result) error
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct {
	red    *color.Color
	yellow *color.Color
	blue   *color.Color
	green  *color.Color
	dim    *color.Color
}

// NewTextFormatter creates a text formatter. Colors are disabled when
// useColor is false.
func NewTextFormatter(useColor bool) *TextFormatter {
	f := &TextFormatter{
		red:    color.New(color.FgRed, color.Bold),
		yellow: color.New(color.FgYellow),
		blue:   color.New(color.FgBlue),
		green:  color.New(color.FgGreen),
		dim:    color.New(color.Faint),
	}
	for _, c := range []*color.Color{f.red, f.yellow, f.blue, f.green, f.dim} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, result *Result) error {
	issues := sortedIssues(result.Issues)
	for _, issue := range issues {
		if err := f.formatIssue(w, issue); err != nil {
			return err
		}
	}

	if len(issues) > 0 {
		if _, err := fmt.Fprintln(w, f.dim.Sprint(strings.Repeat("━", 60))); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%d file%s checked", result.FilesTotal, pluralize(result.FilesTotal)); err != nil {
		return err
	}
	if n := result.ErrorCount(); n > 0 {
		if _, err := fmt.Fprintf(w, ", %s", f.red.Sprintf("%d error%s", n, pluralize(n))); err != nil {
			return err
		}
	}
	if n := result.WarningCount(); n > 0 {
		if _, err := fmt.Fprintf(w, ", %s", f.yellow.Sprintf("%d warning%s", n, pluralize(n))); err != nil {
			return err
		}
	}
	if len(result.Issues) == 0 {
		if _, err := fmt.Fprintf(w, ", %s", f.green.Sprint("no issues")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// formatIssue formats a single issue.
func (f *TextFormatter) formatIssue(w io.Writer, issue Issue) error {
	var label string
	switch issue.Severity {
	case SeverityError:
		label = f.red.Sprint("✗ " + issue.Severity.String())
	case SeverityWarning:
		label = f.yellow.Sprint("⚠ " + issue.Severity.String())
	default:
		label = f.blue.Sprint("ℹ " + issue.Severity.String())
	}

	location := issue.FilePath
	if issue.Line > 0 {
		location = fmt.Sprintf("%s:%d", issue.FilePath, issue.Line)
	}
	if _, err := fmt.Fprintf(w, "%s %s %s %s\n", location, label, issue.Message, f.dim.Sprintf("[%s]", issue.Rule)); err != nil {
		return err
	}

	// Explanation (indented)
	if issue.Explanation != "" {
		for line := range strings.SplitSeq(strings.TrimSpace(issue.Explanation), "\n") {
			if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
				return err
			}
		}
	}

	// Fix suggestion
	if issue.Fix != "" {
		if _, err := fmt.Fprintf(w, "  Fix: %s\n", issue.Fix); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	FilesTotal   int         `json:"files_total"`
	ErrorCount   int         `json:"error_count"`
	WarningCount int         `json:"warning_count"`
	Issues       []JSONIssue `json:"issues"`
}

// JSONIssue represents a single issue in JSON format.
type JSONIssue struct {
	FilePath    string `json:"file_path"`
	Severity    string `json:"severity"`
	Rule        string `json:"rule"`
	Message     string `json:"message"`
	Explanation string `json:"explanation,omitempty"`
	Fix         string `json:"fix,omitempty"`
	Line        int    `json:"line,omitempty"`
	Fixable     bool   `json:"fixable,omitempty"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result) error {
	output := JSONOutput{
		FilesTotal:   result.FilesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		Issues:       []JSONIssue{},
	}

	for _, issue := range sortedIssues(result.Issues) {
		output.Issues = append(output.Issues, JSONIssue{
			FilePath:    issue.FilePath,
			Severity:    issue.Severity.String(),
			Rule:        issue.Rule,
			Message:     issue.Message,
			Explanation: issue.Explanation,
			Fix:         issue.Fix,
			Line:        issue.Line,
			Fixable:     issue.Fixable(),
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string, useColor bool) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter(useColor)
	}
}

func sortedIssues(issues []Issue) []Issue {
	out := append([]Issue(nil), issues...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FilePath != out[j].FilePath {
			return out[i].FilePath < out[j].FilePath
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
