package engine

import "fmt"

// FundingTier identifies a disjoint admission pool. Tiers are processed in a
// fixed order: admission in TierPrimary removes the candidate from
// consideration in TierSecondary.
type FundingTier int

const (
	TierPrimary FundingTier = iota
	TierSecondary
)

func (t FundingTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier maps a tier name to its FundingTier. Names are the String()
// forms; anything else is an error.
func ParseTier(name string) (FundingTier, error) {
	switch name {
	case "primary":
		return TierPrimary, nil
	case "secondary":
		return TierSecondary, nil
	default:
		return 0, fmt.Errorf("unknown funding tier %q", name)
	}
}

// ApplicationRecord is one candidate's bid for one program. A given
// (CandidateID, ProgramID) pair appears at most once after SanitizeRecords.
type ApplicationRecord struct {
	CandidateID         ID
	ProgramID           string
	Priority            int // candidate's declared preference order, 1 = most preferred
	HasOriginalDocument bool
	HasConsent          bool
	Score               float64
}

// Eager reports whether the record participates in seat allocation. Non-eager
// records are retained for popularity statistics but never admitted.
func (r ApplicationRecord) Eager() bool {
	return r.HasOriginalDocument || r.HasConsent
}

// Program holds descriptive and capacity data for one program + funding tier +
// study form combination. The same human-readable name under a different tier
// is a different Program. Seats is fixed for the duration of a run; the
// engine never mutates it.
type Program struct {
	ID        string
	Name      string
	Tier      FundingTier
	StudyForm string
	Seats     int
}

// SanitizeRecords re-normalizes candidate identifiers and drops malformed
// records: empty candidate or program id, unusable (non-positive) score,
// priority below 1, and duplicate (candidate, program) pairs. Malformation is
// recovered locally: the dropped count is reported, never a fatal error, and
// the simulation proceeds on the remainder.
func SanitizeRecords(raw []ApplicationRecord) (clean []ApplicationRecord, skipped int) {
	type pairKey struct {
		candidate ID
		program   string
	}
	seen := make(map[pairKey]bool, len(raw))
	clean = make([]ApplicationRecord, 0, len(raw))
	for _, r := range raw {
		r.CandidateID = NormalizeID(string(r.CandidateID))
		if r.CandidateID == "" || r.ProgramID == "" || r.Score <= 0 || r.Priority < 1 {
			skipped++
			continue
		}
		k := pairKey{r.CandidateID, r.ProgramID}
		if seen[k] {
			skipped++
			continue
		}
		seen[k] = true
		clean = append(clean, r)
	}
	return clean, skipped
}
