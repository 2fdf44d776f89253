package lint

import (
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
	"git.home.luguber.info/inful/docmd/internal/frontmatter"
)

// Linter performs linting operations on markdown files.
type Linter struct {
	cfg   *Config
	rules []Rule
}

// NewLinter creates a new linter checking documents against engine.
func NewLinter(cfg *Config, engine Engine) *Linter {
	if cfg == nil {
		cfg = &Config{Format: "text", WarnUnknownDirectives: true}
	}

	return &Linter{
		cfg: cfg,
		rules: []Rule{
			NewFenceRule(engine.Registry(), cfg.WarnUnknownDirectives),
			NewIdempotenceRule(engine),
		},
	}
}

// LintPath lints all markdown files in the given path (file or directory).
func (l *Linter) LintPath(path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNotFound, "cannot lint path").
			WithContext("path", path).
			Build()
	}

	result := &Result{
		Issues: []Issue{},
	}

	if info.IsDir() {
		err = l.lintDirectory(path, result)
	} else {
		err = l.lintFile(path, result)
		result.FilesTotal = 1
	}

	return result, err
}

// lintDirectory recursively lints all markdown files in a directory.
func (l *Linter) lintDirectory(dirPath string, result *Result) error {
	return filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip hidden directories and files
		if d.Name()[0] == '.' && d.Name() != "." {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() || !IsDocFile(path) {
			return nil
		}

		result.FilesTotal++
		return l.lintFile(path, result)
	})
}

// lintFile applies all rules to a single file.
func (l *Linter) lintFile(filePath string, result *Result) error {
	doc, issue, err := Load(filePath)
	if err != nil {
		return err
	}
	if issue != nil {
		result.Issues = append(result.Issues, *issue)
		return nil
	}
	l.appendIssues(result, l.Check(doc))
	return nil
}

// Check runs every rule over doc. A rule that fails is reported as an error
// issue so the remaining rules still run.
func (l *Linter) Check(doc *Document) []Issue {
	var out []Issue
	for _, rule := range l.rules {
		issues, err := rule.Check(doc)
		if err != nil {
			out = append(out, Issue{
				FilePath: doc.Path,
				Severity: SeverityError,
				Rule:     rule.Name(),
				Message:  "Rule failed: " + err.Error(),
			})
			continue
		}
		out = append(out, issues...)
	}
	return out
}

func (l *Linter) appendIssues(result *Result, issues []Issue) {
	for _, issue := range issues {
		// Skip info and warnings in quiet mode
		if l.cfg.Quiet && issue.Severity != SeverityError {
			continue
		}
		result.Issues = append(result.Issues, issue)
	}
}

// LintFiles lints a specific list of files.
func (l *Linter) LintFiles(files []string) (*Result, error) {
	result := &Result{
		Issues:     []Issue{},
		FilesTotal: 0,
	}

	for _, file := range files {
		if !IsDocFile(file) {
			continue
		}
		result.FilesTotal++
		if err := l.lintFile(file, result); err != nil {
			return result, err
		}
	}

	return result, nil
}

// Load reads a markdown file into a Document. Invalid frontmatter is not an
// error: it is returned as an issue and doc is nil.
func Load(path string) (*Document, *Issue, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read markdown file").
			WithContext("path", path).
			Build()
	}
	page, err := frontmatter.Parse(content)
	if err != nil {
		return nil, &Issue{
			FilePath:    path,
			Severity:    SeverityError,
			Rule:        "frontmatter",
			Message:     "Invalid frontmatter",
			Explanation: err.Error(),
			Line:        1,
		}, nil
	}
	return &Document{Path: path, Page: page}, nil, nil
}

// CollectFiles expands paths into the markdown files they name. Directories
// are walked recursively, skipping hidden entries.
func CollectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryNotFound, "cannot lint path").
				WithContext("path", p).
				Build()
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Name()[0] == '.' && path != p {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !d.IsDir() && IsDocFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk directory").
				WithContext("path", p).
				Build()
		}
	}
	return files, nil
}
