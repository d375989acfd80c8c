package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admission-sim/admission-sim/engine"
)

func fixtureRun(t *testing.T) (*engine.RunResult, []engine.Program, []engine.ApplicationRecord) {
	t.Helper()
	programs := []engine.Program{
		{ID: "Nursing / budget", Name: "Nursing", Tier: engine.TierPrimary, Seats: 1},
		{ID: "Pharmacy / budget", Name: "Pharmacy", Tier: engine.TierPrimary, Seats: 1},
	}
	records := []engine.ApplicationRecord{
		{CandidateID: "AAA", ProgramID: "Nursing / budget", Priority: 1, Score: 4.9, HasConsent: true},
		{CandidateID: "BBB", ProgramID: "Nursing / budget", Priority: 1, Score: 4.1, HasConsent: true},
		{CandidateID: "BBB", ProgramID: "Pharmacy / budget", Priority: 2, Score: 4.1, HasConsent: true},
	}
	run, err := engine.Run(records, programs, engine.RunParams{
		Target: "BBB",
		Tiers:  []engine.FundingTier{engine.TierPrimary},
	})
	require.NoError(t, err)
	return run, programs, records
}

func TestRender_WritesTierArtifacts(t *testing.T) {
	run, programs, records := fixtureRun(t)
	w := &Writer{OutputDir: t.TempDir()}
	require.NoError(t, w.Render(run, programs, records, "BBB"))

	primary := filepath.Join(w.OutputDir, "primary")
	for _, f := range []string{
		filepath.Join(primary, "program_popularity.txt"),
		filepath.Join(primary, "all_applicants.csv"),
		filepath.Join(primary, "admitted_lists", "Nursing___budget.csv"),
		filepath.Join(w.OutputDir, "outcomes.txt"),
		filepath.Join(w.OutputDir, "cutoff_analysis.csv"),
	} {
		_, err := os.Stat(f)
		assert.NoError(t, err, "missing artifact %s", f)
	}
}

func TestRender_CutoffCSVContent(t *testing.T) {
	run, programs, records := fixtureRun(t)
	w := &Writer{OutputDir: t.TempDir()}
	require.NoError(t, w.Render(run, programs, records, "BBB"))

	f, err := os.Open(filepath.Join(w.OutputDir, "cutoff_analysis.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + two programs BBB has an opinion about

	assert.Equal(t, []string{"program", "tier", "outcome", "candidate_score", "cutoff_score", "ranked_ahead", "informational"}, rows[0])

	byProgram := map[string][]string{}
	for _, row := range rows[1:] {
		byProgram[row[0]] = row
	}
	require.Contains(t, byProgram, "Pharmacy / budget")
	assert.Equal(t, "admitted", byProgram["Pharmacy / budget"][2])
	require.Contains(t, byProgram, "Nursing / budget")
	assert.Equal(t, "not-admitted", byProgram["Nursing / budget"][2])
}

func TestRender_AllApplicantsListsEveryRecord(t *testing.T) {
	run, programs, records := fixtureRun(t)
	w := &Writer{OutputDir: t.TempDir()}
	require.NoError(t, w.Render(run, programs, records, "BBB"))

	f, err := os.Open(filepath.Join(w.OutputDir, "primary", "all_applicants.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + all three applications

	admittedByCandidate := map[string]string{}
	for _, row := range rows[1:] {
		if row[0] == "Pharmacy / budget" {
			admittedByCandidate[row[1]] = row[7]
		}
	}
	assert.Equal(t, "true", admittedByCandidate["BBB"])
}

func TestRender_AllApplicantsMarksExcluded(t *testing.T) {
	// C wins the hot seat; at cool, C clears the bar but the seat is gone, so
	// the listing has to say why: excluded by a more popular program.
	programs := []engine.Program{
		{ID: "hot", Name: "Hot", Tier: engine.TierPrimary, Seats: 1},
		{ID: "cool", Name: "Cool", Tier: engine.TierPrimary, Seats: 1},
	}
	records := []engine.ApplicationRecord{
		{CandidateID: "C", ProgramID: "hot", Priority: 1, Score: 5.0, HasConsent: true},
		{CandidateID: "X", ProgramID: "hot", Priority: 1, Score: 4.0, HasConsent: true},
		{CandidateID: "Y", ProgramID: "hot", Priority: 1, Score: 3.0, HasConsent: true},
		{CandidateID: "C", ProgramID: "cool", Priority: 2, Score: 5.0, HasConsent: true},
		{CandidateID: "X", ProgramID: "cool", Priority: 2, Score: 4.0, HasConsent: true},
	}
	run, err := engine.Run(records, programs, engine.RunParams{
		Target: "C",
		Tiers:  []engine.FundingTier{engine.TierPrimary},
	})
	require.NoError(t, err)

	w := &Writer{OutputDir: t.TempDir()}
	require.NoError(t, w.Render(run, programs, records, "C"))

	f, err := os.Open(filepath.Join(w.OutputDir, "primary", "all_applicants.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	cell := func(program, candidate string) []string {
		for _, row := range rows[1:] {
			if row[0] == program && row[1] == candidate {
				return row
			}
		}
		t.Fatalf("no row for %s at %s", candidate, program)
		return nil
	}

	atHot := cell("hot", "C")
	assert.Equal(t, "true", atHot[7], "C admitted at hot")
	assert.Equal(t, "false", atHot[8])

	atCool := cell("cool", "C")
	assert.Equal(t, "false", atCool[7])
	assert.Equal(t, "true", atCool[8], "C excluded at cool by the hot admission")

	xAtCool := cell("cool", "X")
	assert.Equal(t, "true", xAtCool[7], "the freed cool seat goes to X")
	assert.Equal(t, "false", xAtCool[8])
}

func TestRender_InterestFilterNarrowsTargetArtifacts(t *testing.T) {
	run, programs, records := fixtureRun(t)
	w := &Writer{OutputDir: t.TempDir(), Interest: []string{"Pharmacy"}}
	require.NoError(t, w.Render(run, programs, records, "BBB"))

	data, err := os.ReadFile(filepath.Join(w.OutputDir, "outcomes.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Pharmacy")
	assert.NotContains(t, string(data), "Nursing")

	// allocation-side artifacts still cover every program
	pop, err := os.ReadFile(filepath.Join(w.OutputDir, "primary", "program_popularity.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(pop), "Nursing")
}

func TestRender_CleansStaleArtifacts(t *testing.T) {
	run, programs, records := fixtureRun(t)
	out := t.TempDir()
	stale := filepath.Join(out, "primary", "admitted_lists", "Removed_Program.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	w := &Writer{OutputDir: out}
	require.NoError(t, w.Render(run, programs, records, "BBB"))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale artifact should have been removed")
}

func TestSummary_MentionsOutcomesAndCutoffs(t *testing.T) {
	run, _, _ := fixtureRun(t)
	s := Summary(run, "BBB")

	assert.Contains(t, s, "primary tier popularity")
	assert.Contains(t, s, "ADMITTED")
	assert.True(t, strings.Contains(s, "Nursing / budget"))
}
