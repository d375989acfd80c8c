package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// RunParams carries the caller-supplied parameters for one simulation run.
// Everything arrives as plain values; the engine reads no environment or
// global state.
type RunParams struct {
	// Target is the distinguished candidate, already normalized by the caller
	// or not: Run re-normalizes defensively.
	Target ID
	// Tiers selects the funding tiers to simulate. TierSecondary requires
	// TierPrimary in the same run: secondary allocation is undefined without
	// a seed exclusion set.
	Tiers []FundingTier
	// ProgramsOfInterest narrows what the reporting layer shows. It has no
	// effect on allocation, which must consider all competing applicants.
	ProgramsOfInterest []string
}

// TierResult bundles one tier's popularity ordering with its per-program
// allocation results.
type TierResult struct {
	Tier    FundingTier
	Order   []ProgramPopularity // most competitive first
	Results map[string]*AllocationResult
}

// RunResult is the engine's complete output for one run. All values are
// freshly built from the normalized input; nothing persists across runs.
type RunResult struct {
	Primary   *TierResult
	Secondary *TierResult
	Outcomes  []Outcome // for the distinguished candidate, tier then popularity order
	Skipped   int       // malformed records dropped during sanitization
}

// Tier returns the result for the given tier, or nil if it did not run.
func (r *RunResult) Tier(t FundingTier) *TierResult {
	switch t {
	case TierPrimary:
		return r.Primary
	case TierSecondary:
		return r.Secondary
	default:
		return nil
	}
}

// Run executes the full two-stage simulation: sanitize the input, then per
// requested tier partition the records, rank the tier's programs by
// competitiveness, and allocate seats sequentially (the secondary tier's
// exclusion set pre-seeded with every primary admit), and finally classify
// the distinguished candidate's outcomes.
//
// Structural problems (a record referencing a program with no capacity data,
// secondary requested without primary) are returned as errors; per-record
// malformation is dropped and counted in RunResult.Skipped.
func Run(records []ApplicationRecord, programs []Program, p RunParams) (*RunResult, error) {
	wantPrimary, wantSecondary := false, false
	for _, t := range p.Tiers {
		switch t {
		case TierPrimary:
			wantPrimary = true
		case TierSecondary:
			wantSecondary = true
		default:
			return nil, fmt.Errorf("unknown funding tier %v", t)
		}
	}
	if wantSecondary && !wantPrimary {
		return nil, fmt.Errorf("secondary tier requires a primary run in the same invocation: no seed exclusion set")
	}
	if !wantPrimary {
		return nil, fmt.Errorf("no funding tiers requested")
	}

	byID := make(map[string]Program, len(programs))
	for _, prog := range programs {
		byID[prog.ID] = prog
	}

	clean, skipped := SanitizeRecords(records)
	if skipped > 0 {
		logrus.Infof("dropped %d malformed application records", skipped)
	}
	for _, r := range clean {
		if _, ok := byID[r.ProgramID]; !ok {
			return nil, fmt.Errorf("record references program %q with no capacity data", r.ProgramID)
		}
	}

	run := &RunResult{Skipped: skipped}

	run.Primary = runTier(clean, programs, byID, TierPrimary, NewExclusionSet())
	if wantSecondary {
		seed := SeedExclusions(run.Primary.Results)
		logrus.Debugf("seeding secondary tier with %d primary admits", seed.Len())
		run.Secondary = runTier(clean, programs, byID, TierSecondary, seed)
	}

	target := NormalizeID(string(p.Target))
	run.Outcomes = Classify(target, run.Primary, run.Secondary, clean)
	return run, nil
}

// runTier performs partition → rank → allocate for one tier. Strictly
// sequential; the next tier must not start until this one has returned.
func runTier(records []ApplicationRecord, programs []Program, byID map[string]Program, tier FundingTier, seed ExclusionSet) *TierResult {
	tierRecords := PartitionByTier(records, programs, tier)
	tierPrograms := make([]Program, 0, len(programs))
	for _, prog := range programs {
		if prog.Tier == tier {
			tierPrograms = append(tierPrograms, prog)
		}
	}

	order := RankPrograms(tierRecords, tierPrograms)

	byProgram := make(map[string][]ApplicationRecord)
	for _, r := range tierRecords {
		byProgram[r.ProgramID] = append(byProgram[r.ProgramID], r)
	}

	logrus.Infof("allocating %s tier: %d programs, %d records, %d pre-excluded",
		tier, len(tierPrograms), len(tierRecords), seed.Len())
	return &TierResult{
		Tier:    tier,
		Order:   order,
		Results: Allocate(order, byProgram, byID, seed),
	}
}
