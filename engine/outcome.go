package engine

// OutcomeKind enumerates the interpretations the classifier can produce for
// the distinguished candidate at one program.
type OutcomeKind int

const (
	// OutcomeAdmitted: the candidate appears in the program's admitted list.
	OutcomeAdmitted OutcomeKind = iota
	// OutcomeAdmittedByScoreNotPriority: the candidate's score clears the
	// program's bar, but a more competitive program already consumed their
	// seat before this program was reached.
	OutcomeAdmittedByScoreNotPriority
	// OutcomeNotAdmitted: applied, not admitted; RankedAhead counts the eager
	// candidates between the last admitted seat and the candidate.
	OutcomeNotAdmitted
	// OutcomeHypothetical: a prediction for a program the candidate never
	// applied to, derived from their best known score. Never an observed fact.
	OutcomeHypothetical
	// OutcomeIndeterminate: the candidate has no record in the input at all.
	OutcomeIndeterminate
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAdmitted:
		return "admitted"
	case OutcomeAdmittedByScoreNotPriority:
		return "admitted-by-score-not-priority"
	case OutcomeNotAdmitted:
		return "not-admitted"
	case OutcomeHypothetical:
		return "hypothetical"
	case OutcomeIndeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// Outcome is the classifier's verdict for the distinguished candidate at one
// program. For OutcomeIndeterminate the program fields are empty.
type Outcome struct {
	Kind      OutcomeKind
	ProgramID string
	Tier      FundingTier

	Score       float64 // candidate's score used for the comparison (0 if unknown)
	Cutoff      float64 // program cutoff; meaningful only when CutoffKnown
	CutoffKnown bool

	RankedAhead int // OutcomeNotAdmitted: eager candidates between the last seat and the candidate

	PredictedAdmit bool // OutcomeHypothetical: whether the score clears the bar

	// Informational marks secondary-tier outcomes for a candidate already
	// admitted in the primary tier: by construction they were absorbed into
	// the secondary exclusion seed and cannot be admitted there.
	Informational bool
}

// Classify derives one outcome per program the engine has an opinion about,
// primary tier first, each tier in popularity order. A candidate absent from
// the normalized input yields a single Indeterminate outcome and no
// per-program predictions.
func Classify(target ID, primary, secondary *TierResult, records []ApplicationRecord) []Outcome {
	applied := make(map[string]ApplicationRecord)
	bestScore := 0.0
	for _, r := range records {
		if r.CandidateID != target {
			continue
		}
		applied[r.ProgramID] = r
		if r.Score > bestScore {
			bestScore = r.Score
		}
	}
	if len(applied) == 0 {
		return []Outcome{{Kind: OutcomeIndeterminate}}
	}

	primaryAdmit := false
	if primary != nil {
		for _, res := range primary.Results {
			if containsID(res.Admitted, target) {
				primaryAdmit = true
				break
			}
		}
	}

	var outcomes []Outcome
	for _, tr := range []*TierResult{primary, secondary} {
		if tr == nil {
			continue
		}
		informational := tr.Tier == TierSecondary && primaryAdmit
		seatTaken := false // consumed by an earlier-popularity program in this tier
		if tr.Tier == TierSecondary && primaryAdmit {
			seatTaken = true
		}
		for _, pop := range tr.Order {
			res := tr.Results[pop.ProgramID]
			o := classifyProgram(target, tr.Tier, res, applied, bestScore, seatTaken)
			o.Informational = informational
			outcomes = append(outcomes, o)
			if o.Kind == OutcomeAdmitted {
				seatTaken = true
			}
		}
	}
	return outcomes
}

func classifyProgram(target ID, tier FundingTier, res *AllocationResult, applied map[string]ApplicationRecord, bestScore float64, seatTaken bool) Outcome {
	o := Outcome{
		ProgramID:   res.ProgramID,
		Tier:        tier,
		Cutoff:      res.Cutoff,
		CutoffKnown: res.Filled,
	}

	if containsID(res.Admitted, target) {
		o.Kind = OutcomeAdmitted
		o.Score = applied[res.ProgramID].Score
		return o
	}

	rec, hasApp := applied[res.ProgramID]
	if !hasApp {
		o.Kind = OutcomeHypothetical
		o.Score = bestScore
		// unfilled seats admit any eager applicant, so an unknown cutoff
		// predicts admission
		o.PredictedAdmit = !res.Filled || bestScore >= res.Cutoff
		return o
	}

	o.Score = rec.Score
	clears := !res.Filled || rec.Score >= res.Cutoff
	if seatTaken && clears {
		o.Kind = OutcomeAdmittedByScoreNotPriority
		return o
	}

	o.Kind = OutcomeNotAdmitted
	o.RankedAhead = rankedAhead(res, target)
	return o
}

// rankedAhead counts the eager candidates sitting between the last admitted
// seat and the target in the program's ranked list: how many the target would
// have to leapfrog. Zero when the target was never ranked (non-eager or
// already excluded) or sits within the seat count.
func rankedAhead(res *AllocationResult, target ID) int {
	pos := -1
	for i, ra := range res.Ranked {
		if ra.CandidateID == target {
			pos = i
			break
		}
	}
	if pos < 0 {
		return 0
	}
	ahead := pos - len(res.Admitted)
	if ahead < 0 {
		return 0
	}
	return ahead
}

func containsID(ids []ID, target ID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
