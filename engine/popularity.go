package engine

import (
	"math"
	"sort"
)

// ProgramPopularity is the per-program competitiveness summary used to fix
// the allocation order within a tier.
type ProgramPopularity struct {
	ProgramID           string
	Seats               int
	TotalApplications   int     // eager + non-eager
	EagerCount          int     // eager applications only
	ApplicationsPerSeat float64 // +Inf when Seats == 0 and applications exist
	TopCohortScore      float64 // mean score of the top-Seats eager applicants
}

// RankPrograms computes the competitiveness score for every program and
// returns them most competitive first. The ordering is computed once per
// tier, before any seat is allocated, and is static input to Allocate; it is
// never recomputed as allocation proceeds.
//
// Sort keys, in order:
//  1. applications-per-seat ratio, descending (programs with zero
//     applications sort last regardless of the other keys)
//  2. top-cohort average score, descending
//  3. ProgramID ascending, so score ties cannot reorder between runs
func RankPrograms(records []ApplicationRecord, programs []Program) []ProgramPopularity {
	byProgram := make(map[string][]ApplicationRecord, len(programs))
	for _, r := range records {
		byProgram[r.ProgramID] = append(byProgram[r.ProgramID], r)
	}

	pops := make([]ProgramPopularity, 0, len(programs))
	for _, p := range programs {
		pops = append(pops, programPopularity(p, byProgram[p.ID]))
	}

	sort.Slice(pops, func(i, j int) bool {
		a, b := pops[i], pops[j]
		if (a.TotalApplications == 0) != (b.TotalApplications == 0) {
			return b.TotalApplications == 0
		}
		if a.ApplicationsPerSeat != b.ApplicationsPerSeat {
			return a.ApplicationsPerSeat > b.ApplicationsPerSeat
		}
		if a.TopCohortScore != b.TopCohortScore {
			return a.TopCohortScore > b.TopCohortScore
		}
		return a.ProgramID < b.ProgramID
	})
	return pops
}

func programPopularity(p Program, records []ApplicationRecord) ProgramPopularity {
	pop := ProgramPopularity{
		ProgramID:         p.ID,
		Seats:             p.Seats,
		TotalApplications: len(records),
	}

	eager := make([]ApplicationRecord, 0, len(records))
	for _, r := range records {
		if r.Eager() {
			eager = append(eager, r)
		}
	}
	pop.EagerCount = len(eager)

	switch {
	case len(records) == 0:
		// no demand signal at all; sorts last
	case p.Seats <= 0:
		// oversubscribed by definition: demand with no admissible capacity
		pop.ApplicationsPerSeat = math.Inf(1)
	default:
		pop.ApplicationsPerSeat = float64(len(records)) / float64(p.Seats)
	}

	// Top cohort: the strongest Seats eager applicants by score, or all eager
	// applicants when fewer exist.
	sort.Slice(eager, func(i, j int) bool {
		if eager[i].Score != eager[j].Score {
			return eager[i].Score > eager[j].Score
		}
		return eager[i].CandidateID < eager[j].CandidateID
	})
	cohort := len(eager)
	if p.Seats > 0 && p.Seats < cohort {
		cohort = p.Seats
	}
	if cohort > 0 {
		var sum float64
		for _, r := range eager[:cohort] {
			sum += r.Score
		}
		pop.TopCohortScore = sum / float64(cohort)
	}
	return pop
}
