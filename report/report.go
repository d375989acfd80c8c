// Package report renders engine results for humans: popularity listings,
// admitted-list CSVs, the cutoff analysis for the distinguished candidate,
// and a console summary. All formatting decisions live here; the engine
// returns only structured values.
package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/admission-sim/admission-sim/engine"
)

// Writer renders one run's artifacts under OutputDir, one subdirectory per
// funding tier. Interest narrows which programs appear in the
// target-focused artifacts; it never affects the allocation inputs.
type Writer struct {
	OutputDir string
	Interest  []string // program names or ids; empty shows everything
}

// artifacts cleaned from a tier directory before writing a fresh run.
var staleArtifacts = []string{
	"program_popularity.txt",
	"all_applicants.csv",
	"outcomes.txt",
	"cutoff_analysis.csv",
	"admitted_lists",
}

// Render writes every artifact for the run. records are the sanitized
// application records the run was computed from; they feed the all-applicants
// listing, which shows non-eager and excluded applicants the allocation
// results alone cannot reconstruct.
func (w *Writer) Render(run *engine.RunResult, programs []engine.Program, records []engine.ApplicationRecord, target engine.ID) error {
	byID := make(map[string]engine.Program, len(programs))
	for _, p := range programs {
		byID[p.ID] = p
	}

	for _, tr := range []*engine.TierResult{run.Primary, run.Secondary} {
		if tr == nil {
			continue
		}
		dir := filepath.Join(w.OutputDir, tr.Tier.String())
		if err := cleanTierDir(dir); err != nil {
			return err
		}
		if err := w.writePopularity(dir, tr, byID); err != nil {
			return err
		}
		seed := engine.NewExclusionSet()
		if tr.Tier == engine.TierSecondary && run.Primary != nil {
			seed = engine.SeedExclusions(run.Primary.Results)
		}
		if err := w.writeApplicants(dir, tr, records, seed); err != nil {
			return err
		}
		if err := w.writeAdmittedLists(dir, tr); err != nil {
			return err
		}
	}

	if err := w.writeOutcomes(run, byID, target); err != nil {
		return err
	}
	return w.writeCutoffCSV(run, byID, target)
}

// cleanTierDir removes the previous run's artifacts so a shrinking program
// list cannot leave stale files behind, then recreates the directory.
func cleanTierDir(dir string) error {
	for _, name := range staleArtifacts {
		path := filepath.Join(dir, name)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("clean %s: %w", path, err)
		}
	}
	return os.MkdirAll(dir, 0o755)
}

func (w *Writer) writePopularity(dir string, tr *engine.TierResult, byID map[string]engine.Program) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Program popularity — %s tier (most to least competitive)\n\n", tr.Tier)
	for i, pop := range tr.Order {
		prog := byID[pop.ProgramID]
		fmt.Fprintf(&b, "%d. %s\n", i+1, prog.ID)
		fmt.Fprintf(&b, "   applications per seat: %s\n", formatRatio(pop.ApplicationsPerSeat))
		fmt.Fprintf(&b, "   top cohort average score: %.2f\n", pop.TopCohortScore)
		fmt.Fprintf(&b, "   seats: %d, applications: %d (eager: %d)\n\n",
			pop.Seats, pop.TotalApplications, pop.EagerCount)
	}
	return os.WriteFile(filepath.Join(dir, "program_popularity.txt"), []byte(b.String()), 0o644)
}

// writeApplicants lists every application in the tier, eager or not, grouped
// by program in popularity order and sorted strongest first within a program.
// The excluded column marks eager applicants whose seat was already consumed
// by a more popular program (or by the previous tier, via seed), which is the
// only reason an eager applicant above the cutoff is missing from the
// admitted list. seed is mutated while replaying the allocation order.
func (w *Writer) writeApplicants(dir string, tr *engine.TierResult, records []engine.ApplicationRecord, seed engine.ExclusionSet) error {
	byProgram := make(map[string][]engine.ApplicationRecord)
	for _, r := range records {
		byProgram[r.ProgramID] = append(byProgram[r.ProgramID], r)
	}

	path := filepath.Join(dir, "all_applicants.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	_ = cw.Write([]string{"program", "candidate_id", "score", "priority", "eager", "original_document", "consent", "admitted", "excluded"})
	for _, pop := range tr.Order {
		rows := byProgram[pop.ProgramID]
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Score != rows[j].Score {
				return rows[i].Score > rows[j].Score
			}
			return rows[i].CandidateID < rows[j].CandidateID
		})
		admitted := tr.Results[pop.ProgramID].Admitted
		for _, r := range rows {
			isAdmitted := false
			for _, id := range admitted {
				if id == r.CandidateID {
					isAdmitted = true
					break
				}
			}
			isExcluded := !isAdmitted && r.Eager() && seed.Has(r.CandidateID)
			_ = cw.Write([]string{
				r.ProgramID,
				string(r.CandidateID),
				formatScore(r.Score),
				strconv.Itoa(r.Priority),
				strconv.FormatBool(r.Eager()),
				strconv.FormatBool(r.HasOriginalDocument),
				strconv.FormatBool(r.HasConsent),
				strconv.FormatBool(isAdmitted),
				strconv.FormatBool(isExcluded),
			})
		}
		for _, id := range admitted {
			seed.Add(id)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *Writer) writeAdmittedLists(dir string, tr *engine.TierResult) error {
	listDir := filepath.Join(dir, "admitted_lists")
	if err := os.MkdirAll(listDir, 0o755); err != nil {
		return err
	}
	for _, pop := range tr.Order {
		res := tr.Results[pop.ProgramID]
		path := filepath.Join(listDir, safeName(pop.ProgramID)+".csv")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		cw := csv.NewWriter(f)
		_ = cw.Write([]string{"position", "candidate_id", "score", "priority"})
		for i, id := range res.Admitted {
			ra := rankedEntry(res, id)
			_ = cw.Write([]string{
				strconv.Itoa(i + 1),
				string(id),
				formatScore(ra.Score),
				strconv.Itoa(ra.Priority),
			})
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeOutcomes(run *engine.RunResult, byID map[string]engine.Program, target engine.ID) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Outcomes for candidate %s\n\n", target)
	for _, o := range run.Outcomes {
		if !w.interested(byID[o.ProgramID]) && o.Kind != engine.OutcomeIndeterminate {
			continue
		}
		b.WriteString(describeOutcome(o))
		b.WriteString("\n")
	}
	if run.Skipped > 0 {
		fmt.Fprintf(&b, "\n%d malformed records were skipped during this run.\n", run.Skipped)
	}
	return os.WriteFile(filepath.Join(w.OutputDir, "outcomes.txt"), []byte(b.String()), 0o644)
}

func (w *Writer) writeCutoffCSV(run *engine.RunResult, byID map[string]engine.Program, target engine.ID) error {
	path := filepath.Join(w.OutputDir, "cutoff_analysis.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	_ = cw.Write([]string{"program", "tier", "outcome", "candidate_score", "cutoff_score", "ranked_ahead", "informational"})
	for _, o := range run.Outcomes {
		if o.Kind == engine.OutcomeIndeterminate {
			continue
		}
		if !w.interested(byID[o.ProgramID]) {
			continue
		}
		cutoff := ""
		if o.CutoffKnown {
			cutoff = formatScore(o.Cutoff)
		}
		_ = cw.Write([]string{
			o.ProgramID,
			o.Tier.String(),
			o.Kind.String(),
			formatScore(o.Score),
			cutoff,
			strconv.Itoa(o.RankedAhead),
			strconv.FormatBool(o.Informational),
		})
	}
	cw.Flush()
	return cw.Error()
}

// interested reports whether a program passes the programs-of-interest
// filter. Matches on exact id or on the human-readable name.
func (w *Writer) interested(p engine.Program) bool {
	if len(w.Interest) == 0 {
		return true
	}
	for _, want := range w.Interest {
		if p.ID == want || p.Name == want {
			return true
		}
	}
	return false
}

func describeOutcome(o engine.Outcome) string {
	prefix := ""
	if o.Informational {
		prefix = "[informational] "
	}
	switch o.Kind {
	case engine.OutcomeAdmitted:
		return fmt.Sprintf("%sADMITTED — %s (%s tier), score %s", prefix, o.ProgramID, o.Tier, formatScore(o.Score))
	case engine.OutcomeAdmittedByScoreNotPriority:
		return fmt.Sprintf("%sCLEARS BAR, SEAT TAKEN ELSEWHERE — %s (%s tier): score %s against cutoff %s",
			prefix, o.ProgramID, o.Tier, formatScore(o.Score), formatScore(o.Cutoff))
	case engine.OutcomeNotAdmitted:
		return fmt.Sprintf("%sNOT ADMITTED — %s (%s tier): %d eager candidates took the remaining seats",
			prefix, o.ProgramID, o.Tier, o.RankedAhead)
	case engine.OutcomeHypothetical:
		verdict := "would NOT be admitted"
		if o.PredictedAdmit {
			verdict = "would be admitted"
		}
		return fmt.Sprintf("%sHYPOTHETICAL (prediction, never applied) — %s (%s tier): %s on score %s",
			prefix, o.ProgramID, o.Tier, verdict, formatScore(o.Score))
	case engine.OutcomeIndeterminate:
		return "INDETERMINATE — candidate not present in any roster"
	default:
		return fmt.Sprintf("%s%s — %s", prefix, o.Kind, o.ProgramID)
	}
}

func safeName(programID string) string {
	r := strings.NewReplacer("/", "_", " ", "_", "\\", "_")
	return r.Replace(programID)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "oversubscribed (no seats)"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// rankedEntry finds the ranked entry for an admitted candidate. Admitted ids
// always come from the ranked list, so the lookup cannot miss; the zero value
// guards against a malformed result from a future caller.
func rankedEntry(res *engine.AllocationResult, id engine.ID) engine.RankedApplicant {
	for _, ra := range res.Ranked {
		if ra.CandidateID == id {
			return ra
		}
	}
	logrus.Warnf("admitted candidate %s missing from ranked list of %s", id, res.ProgramID)
	return engine.RankedApplicant{}
}
