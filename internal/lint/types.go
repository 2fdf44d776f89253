package lint

import (
	"path/filepath"

	"git.home.luguber.info/inful/docmd/internal/frontmatter"
	"git.home.luguber.info/inful/docmd/internal/markdown"
	"git.home.luguber.info/inful/docmd/internal/markdown/directive"
)

// Severity indicates the importance level of a linting issue.
type Severity int

const (
	// SeverityInfo indicates informational messages.
	SeverityInfo Severity = iota
	// SeverityWarning indicates markup that renders, but not as written.
	SeverityWarning
	// SeverityError indicates markup that falls back to plain text.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue represents a single linting problem found in a file.
type Issue struct {
	FilePath    string   // Path to the file as given
	Severity    Severity // Issue severity level
	Rule        string   // Rule identifier (e.g., "directive-unclosed")
	Message     string   // Brief description of the issue
	Explanation string   // Detailed explanation with context
	Fix         string   // Suggested fix
	Line        int      // 1-based source line (0 if file-level issue)

	// Edits repair the issue in the page body when non-empty.
	Edits []Edit
}

// Fixable reports whether the issue carries an automatic repair.
func (i Issue) Fixable() bool {
	return len(i.Edits) > 0
}

// Result contains all issues found during linting.
type Result struct {
	Issues     []Issue
	FilesTotal int // Total files scanned
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool {
	return r.ErrorCount() > 0
}

// HasWarnings returns true if any warning-level issues exist.
func (r *Result) HasWarnings() bool {
	return r.WarningCount() > 0
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	return r.count(SeverityError)
}

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int {
	return r.count(SeverityWarning)
}

func (r *Result) count(s Severity) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			count++
		}
	}
	return count
}

// Document is one markdown file prepared for the rules.
type Document struct {
	Path string
	Page *frontmatter.Page
}

// Rule defines a linting rule that can be applied to documents.
type Rule interface {
	// Name returns the unique identifier for this rule.
	Name() string

	// Check validates a document and returns any issues found.
	Check(doc *Document) ([]Issue, error)
}

// Engine is the markdown engine the rules check against.
type Engine interface {
	Render(src []byte) (*markdown.Result, error)
	Registry() *directive.Registry
}

// Config contains configuration for the linter.
type Config struct {
	// Quiet suppresses warnings, only showing errors.
	Quiet bool

	// Format specifies output format (text, json).
	Format string

	// WarnUnknownDirectives reports `:::name` lines whose name is not registered.
	WarnUnknownDirectives bool
}

// IsDocFile returns true if the file is a markdown file.
func IsDocFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".md" || ext == ".markdown"
}
