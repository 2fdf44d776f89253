package lint

import (
	"os"

	"github.com/google/renameio"

	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
)

// Fixer repairs fence issues in place.
type Fixer struct {
	linter *Linter
	dryRun bool
}

// NewFixer creates a new fixer. With dryRun set it reports what it would
// change without writing.
func NewFixer(linter *Linter, dryRun bool) *Fixer {
	return &Fixer{linter: linter, dryRun: dryRun}
}

// FixResult contains the results of a fix operation.
type FixResult struct {
	FilesFixed  []string
	IssuesFixed int
	Errors      []error
}

// Fix lints each file and applies the edits of its fixable issues.
func (f *Fixer) Fix(files []string) *FixResult {
	res := &FixResult{}
	for _, path := range files {
		if !IsDocFile(path) {
			continue
		}
		n, err := f.fixFile(path)
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		if n > 0 {
			res.FilesFixed = append(res.FilesFixed, path)
			res.IssuesFixed += n
		}
	}
	return res
}

func (f *Fixer) fixFile(path string) (int, error) {
	doc, issue, err := Load(path)
	if err != nil {
		return 0, err
	}
	if issue != nil {
		return 0, nil
	}

	var (
		edits []Edit
		fixed int
	)
	for _, issue := range f.linter.Check(doc) {
		if issue.Rule == "directive-unclosed" || issue.Fixable() {
			fixed++
		}
		edits = append(edits, issue.Edits...)
	}
	if len(edits) == 0 {
		return 0, nil
	}

	body, err := ApplyEdits(doc.Page.Body, edits)
	if err != nil {
		return 0, err
	}
	if f.dryRun {
		return fixed, nil
	}

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	if err := renameio.WriteFile(path, doc.Page.WithBody(body), mode); err != nil {
		return 0, errors.WrapError(err, errors.CategoryFileSystem, "failed to write fixed file").
			WithContext("path", path).
			Build()
	}
	return fixed, nil
}
