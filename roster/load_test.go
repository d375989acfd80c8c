package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admission-sim/admission-sim/engine"
)

func testTiers() map[string]engine.FundingTier {
	return map[string]engine.FundingTier{
		"Бюджетное финансирование":   engine.TierPrimary,
		"Коммерческое финансирование": engine.TierSecondary,
	}
}

func TestDedup_DocumentBeatsConsentBeatsPriority(t *testing.T) {
	labels := DefaultLabels()
	rows := []Row{
		{Rank: 1, CandidateID: "111-222", Priority: 2, Consent: "Да", Document: "Нет"},
		{Rank: 2, CandidateID: "111222", Priority: 1, Consent: "Нет", Document: "Да"}, // same candidate, has document
		{Rank: 3, CandidateID: "333-444", Priority: 3, Consent: "Нет", Document: "Нет"},
		{Rank: 4, CandidateID: "333 444", Priority: 1, Consent: "Нет", Document: "Нет"}, // same candidate, lower priority
	}
	kept, removed := Dedup(rows, labels)
	require.Len(t, kept, 2)
	assert.Equal(t, 2, removed)

	// document holder won the first pair; priority 1 won the second
	assert.Equal(t, 2, kept[0].Rank)
	assert.Equal(t, 4, kept[1].Rank)
}

func TestMerge_MapsSectionsToEngineTypes(t *testing.T) {
	sections, err := Parse(rosterFixture, DefaultLabels())
	require.NoError(t, err)

	ds := &Dataset{}
	ds.Merge(sections, DefaultLabels(), testTiers())

	require.Len(t, ds.Programs, 2)
	budget := ds.Programs[0]
	assert.Equal(t, engine.TierPrimary, budget.Tier)
	assert.Equal(t, 2, budget.Seats)
	assert.Equal(t, ProgramKey("Nursing", "Бюджетное финансирование", "Очная"), budget.ID)

	// 2 budget rows + 1 commercial row; the malformed row counts as skipped
	assert.Len(t, ds.Records, 3)
	assert.Equal(t, 1, ds.Skipped)

	first := ds.Records[0]
	assert.Equal(t, engine.NormalizeID("123-456-789 00"), first.CandidateID)
	assert.InDelta(t, 4.85, first.Score, 1e-9)
	assert.True(t, first.HasConsent)
	assert.False(t, first.HasOriginalDocument)
}

func TestMerge_UnmappedFundingCountsAsSkipped(t *testing.T) {
	sections, err := Parse(rosterFixture, DefaultLabels())
	require.NoError(t, err)

	onlyPrimary := map[string]engine.FundingTier{
		"Бюджетное финансирование": engine.TierPrimary,
	}
	ds := &Dataset{}
	ds.Merge(sections, DefaultLabels(), onlyPrimary)

	assert.Len(t, ds.Programs, 1)
	assert.Len(t, ds.Records, 2)
	// malformed row + the commercial section's single row
	assert.Equal(t, 2, ds.Skipped)
}

func TestLoadDir_ReadsHTMLFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "list.html"), []byte(rosterFixture), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	ds, err := LoadDir(dir, DefaultLabels(), testTiers())
	require.NoError(t, err)
	assert.Len(t, ds.Programs, 2)
	assert.Len(t, ds.Records, 3)
}

func TestLoadDir_NoPagesIsAnError(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadDir(dir, DefaultLabels(), testTiers())
	assert.Error(t, err)
}
