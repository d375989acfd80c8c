package roster

import (
	"sort"

	"github.com/admission-sim/admission-sim/engine"
)

// Dedup keeps the best row per normalized candidate within one program.
// Registrars occasionally print the same candidate twice with diverging
// status cells; the row with an original document wins over one with only
// consent, which wins over neither, and the lower priority number breaks the
// remaining ties. Output is re-sorted by printed rank.
func Dedup(rows []Row, labels Labels) (kept []Row, removed int) {
	best := make(map[engine.ID]Row, len(rows))
	for _, row := range rows {
		id := engine.NormalizeID(row.CandidateID)
		prev, ok := best[id]
		if !ok || betterRow(row, prev, labels) {
			best[id] = row
		}
	}
	removed = len(rows) - len(best)

	kept = make([]Row, 0, len(best))
	for _, row := range best {
		kept = append(kept, row)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Rank < kept[j].Rank })
	return kept, removed
}

func betterRow(a, b Row, labels Labels) bool {
	if a.HasOriginalDocument(labels) != b.HasOriginalDocument(labels) {
		return a.HasOriginalDocument(labels)
	}
	if a.HasConsent(labels) != b.HasConsent(labels) {
		return a.HasConsent(labels)
	}
	return a.Priority < b.Priority
}
