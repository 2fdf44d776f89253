package lint

import (
	"github.com/inful/mdfp"
)

// IdempotenceRule renders each document twice with fresh parses and compares
// content fingerprints of the output. Any difference means rendering depends
// on state left behind by an earlier render.
type IdempotenceRule struct {
	engine Engine
}

// NewIdempotenceRule returns an IdempotenceRule rendering through engine.
func NewIdempotenceRule(engine Engine) *IdempotenceRule {
	return &IdempotenceRule{engine: engine}
}

// Name returns the rule identifier.
func (r *IdempotenceRule) Name() string {
	return "render-idempotence"
}

// Check renders the page body twice.
func (r *IdempotenceRule) Check(doc *Document) ([]Issue, error) {
	var prints [2]string
	for i := range prints {
		res, err := r.engine.Render(doc.Page.Body)
		if err != nil {
			return nil, err
		}
		prints[i] = mdfp.CalculateFingerprintFromParts("", res.HTML)
	}
	if prints[0] == prints[1] {
		return nil, nil
	}
	return []Issue{{
		FilePath: doc.Path,
		Severity: SeverityError,
		Rule:     r.Name(),
		Message:  "Rendering is not deterministic",
		Explanation: "Two renders of the same input produced different HTML.\n" +
			"First:  " + prints[0] + "\nSecond: " + prints[1],
	}}, nil
}
