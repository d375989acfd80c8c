package engine

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SecondaryWithoutPrimaryIsFatal(t *testing.T) {
	programs := []Program{{ID: "S", Tier: TierSecondary, Seats: 1}}
	records := []ApplicationRecord{rec("A", "S", 4.0, 1)}

	_, err := Run(records, programs, RunParams{Target: "A", Tiers: []FundingTier{TierSecondary}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed exclusion set")
}

func TestRun_NoTiersIsAnError(t *testing.T) {
	_, err := Run(nil, nil, RunParams{Target: "A"})
	assert.Error(t, err)
}

func TestRun_MissingCapacityDataIsFatal(t *testing.T) {
	programs := []Program{{ID: "P", Tier: TierPrimary, Seats: 1}}
	records := []ApplicationRecord{
		rec("A", "P", 4.0, 1),
		rec("B", "UNKNOWN", 4.0, 1),
	}
	_, err := Run(records, programs, RunParams{Target: "A", Tiers: []FundingTier{TierPrimary}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNKNOWN")
}

func TestRun_CountsSkippedRecords(t *testing.T) {
	programs := []Program{{ID: "P", Tier: TierPrimary, Seats: 1}}
	records := []ApplicationRecord{
		rec("A", "P", 4.0, 1),
		{CandidateID: "B", ProgramID: "P", Priority: 1, Score: -2, HasConsent: true}, // unusable score
	}
	run, err := Run(records, programs, RunParams{Target: "A", Tiers: []FundingTier{TierPrimary}})
	require.NoError(t, err)
	assert.Equal(t, 1, run.Skipped)
}

func TestRun_TargetNormalizedBeforeMatching(t *testing.T) {
	programs := []Program{{ID: "P", Tier: TierPrimary, Seats: 1}}
	records := []ApplicationRecord{rec("123-456-789 00", "P", 4.0, 1)}

	run, err := Run(records, programs, RunParams{Target: "12345678900", Tiers: []FundingTier{TierPrimary}})
	require.NoError(t, err)
	require.Len(t, run.Outcomes, 1)
	assert.Equal(t, OutcomeAdmitted, run.Outcomes[0].Kind)
}

func TestRun_TwoTierEndToEnd(t *testing.T) {
	programs := []Program{
		{ID: "med-primary", Name: "Medicine", Tier: TierPrimary, Seats: 1},
		{ID: "pharm-primary", Name: "Pharmacy", Tier: TierPrimary, Seats: 1},
		{ID: "med-secondary", Name: "Medicine", Tier: TierSecondary, Seats: 2},
	}
	records := []ApplicationRecord{
		rec("A", "med-primary", 5.0, 1),
		rec("B", "med-primary", 4.8, 1),
		rec("B", "pharm-primary", 4.8, 2),
		rec("C", "pharm-primary", 4.0, 1),
		rec("A", "med-secondary", 5.0, 2),
		rec("B", "med-secondary", 4.8, 3),
		rec("D", "med-secondary", 3.5, 1),
	}
	run, err := Run(records, programs, RunParams{
		Target: "B",
		Tiers:  []FundingTier{TierPrimary, TierSecondary},
	})
	require.NoError(t, err)
	require.NotNil(t, run.Primary)
	require.NotNil(t, run.Secondary)

	// med-primary outranks pharm-primary (2 apps/seat vs 2 apps/seat,
	// stronger top cohort), admits A; B then takes pharm-primary.
	assert.Equal(t, []ID{"A"}, run.Primary.Results["med-primary"].Admitted)
	assert.Equal(t, []ID{"B"}, run.Primary.Results["pharm-primary"].Admitted)

	// Both tier-1 admits are seeded out of the secondary pool.
	assert.Equal(t, []ID{"D"}, run.Secondary.Results["med-secondary"].Admitted)

	// B's secondary outcome is informational: B already holds a primary seat.
	for _, o := range run.Outcomes {
		if o.Tier == TierSecondary {
			assert.True(t, o.Informational)
		}
	}
}

func TestRun_DeterministicAcrossRuns(t *testing.T) {
	programs := []Program{
		{ID: "P1", Tier: TierPrimary, Seats: 2},
		{ID: "P2", Tier: TierPrimary, Seats: 2},
	}
	records := []ApplicationRecord{
		rec("N1", "P1", 4.5, 1), rec("N2", "P1", 4.5, 1), rec("N3", "P1", 4.5, 1),
		rec("N1", "P2", 4.5, 2), rec("N2", "P2", 4.5, 2), rec("N3", "P2", 4.5, 2),
	}
	params := RunParams{Target: "N2", Tiers: []FundingTier{TierPrimary}}

	first, err := Run(records, programs, params)
	require.NoError(t, err)
	second, err := Run(records, programs, params)
	require.NoError(t, err)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical input must reproduce identical results:\n%+v\n%+v", first, second)
	}
}
