package lint

import (
	"sort"

	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
)

// Edit is a byte-range replacement in a page body.
//
// Start and End are offsets into the original body, End exclusive. An edit
// with Start == End inserts Replacement.
type Edit struct {
	Start       int
	End         int
	Replacement []byte
}

// ApplyEdits applies non-overlapping edits to source and returns the result.
//
// Edits are applied from the end of the body toward the beginning so earlier
// offsets stay valid.
func ApplyEdits(source []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return source, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End > sorted[j].End
		}
		return sorted[i].Start > sorted[j].Start
	})

	for i, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(source) {
			return nil, errors.InternalError("invalid edit range").
				WithContext("start", e.Start).
				WithContext("end", e.End).
				WithContext("size", len(source)).
				Build()
		}
		// Sorted by Start descending: each edit must end before the next
		// applied one starts.
		if i > 0 && e.End > sorted[i-1].Start {
			return nil, errors.InternalError("overlapping edits").
				WithContext("start", e.Start).
				Build()
		}
	}

	out := append([]byte(nil), source...)
	for _, e := range sorted {
		next := make([]byte, 0, len(out)-(e.End-e.Start)+len(e.Replacement))
		next = append(next, out[:e.Start]...)
		next = append(next, e.Replacement...)
		next = append(next, out[e.End:]...)
		out = next
	}
	return out, nil
}
