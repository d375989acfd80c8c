package engine

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// ExclusionSet is the running set of normalized candidate identifiers no
// longer eligible for allocation because they already hold a seat from a more
// competitive program or an earlier tier. It is owned exclusively by the
// Allocate invocation processing a tier; callers pass a seed and never see
// the set again; final contents are observable only through the admitted
// lists they induced.
type ExclusionSet map[ID]struct{}

// NewExclusionSet returns an empty exclusion set.
func NewExclusionSet() ExclusionSet {
	return make(ExclusionSet)
}

// Add inserts a normalized identifier.
func (e ExclusionSet) Add(id ID) {
	e[id] = struct{}{}
}

// Has reports membership.
func (e ExclusionSet) Has(id ID) bool {
	_, ok := e[id]
	return ok
}

// Len returns the number of excluded identifiers.
func (e ExclusionSet) Len() int {
	return len(e)
}

// Clone returns an independent copy. Used at the tier boundary so secondary
// allocation can never alias primary state.
func (e ExclusionSet) Clone() ExclusionSet {
	c := make(ExclusionSet, len(e))
	for id := range e {
		c[id] = struct{}{}
	}
	return c
}

// RankedApplicant is one eager, non-excluded candidate as considered for a
// program, in ranked order. Kept on the AllocationResult so the reporting
// layer can explain positions without re-deriving the ranking.
type RankedApplicant struct {
	CandidateID ID
	Score       float64
	Priority    int
}

// AllocationResult is the outcome of seat allocation for one program.
type AllocationResult struct {
	ProgramID string
	Admitted  []ID // in admission order (strongest first)
	// Cutoff is the score of the last admitted candidate. It is meaningful
	// only when Filled is true; with seats left over there is no cutoff.
	Cutoff float64
	Filled bool
	Ranked []RankedApplicant // full ranked eager list considered
}

// Allocate performs the sequential seat allocation for one tier. Programs are
// processed strictly in the given popularity order. The order is
// semantically load-bearing: a candidate admitted by program i is excluded
// from every subsequently processed (strictly less popular) program, so
// program i+1 must not be considered until program i's admits are committed.
//
// For each program the eager records whose candidate is not yet excluded are
// ranked by score descending, then priority ascending (lower number = stronger
// declared preference wins the tie), then candidate id ascending as the final
// deterministic tie-break. The top min(Seats, len(ranked)) are admitted.
//
// The exclusion seed is copied, never aliased, so callers may reuse it.
// A program with zero or negative seats admits nobody but is still processed
// and reported; negative counts reach the engine when a roster page prints a
// bogus seat number.
func Allocate(order []ProgramPopularity, byProgram map[string][]ApplicationRecord, programs map[string]Program, seed ExclusionSet) map[string]*AllocationResult {
	excluded := seed.Clone()
	results := make(map[string]*AllocationResult, len(order))

	for _, pop := range order {
		prog := programs[pop.ProgramID]

		ranked := make([]RankedApplicant, 0, len(byProgram[prog.ID]))
		for _, r := range byProgram[prog.ID] {
			if !r.Eager() || excluded.Has(r.CandidateID) {
				continue
			}
			ranked = append(ranked, RankedApplicant{
				CandidateID: r.CandidateID,
				Score:       r.Score,
				Priority:    r.Priority,
			})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Score != ranked[j].Score {
				return ranked[i].Score > ranked[j].Score
			}
			if ranked[i].Priority != ranked[j].Priority {
				return ranked[i].Priority < ranked[j].Priority
			}
			return ranked[i].CandidateID < ranked[j].CandidateID
		})

		n := prog.Seats
		if n < 0 {
			n = 0
		}
		if len(ranked) < n {
			n = len(ranked)
		}
		res := &AllocationResult{
			ProgramID: prog.ID,
			Admitted:  make([]ID, 0, n),
			Ranked:    ranked,
		}
		for _, ra := range ranked[:n] {
			res.Admitted = append(res.Admitted, ra.CandidateID)
			excluded.Add(ra.CandidateID)
		}
		if prog.Seats > 0 && len(res.Admitted) == prog.Seats {
			res.Filled = true
			res.Cutoff = ranked[n-1].Score
		}
		results[prog.ID] = res

		logrus.Debugf("allocated %d/%d seats for %s (%d eager considered, %d excluded so far)",
			len(res.Admitted), prog.Seats, prog.ID, len(ranked), excluded.Len())
	}
	return results
}
