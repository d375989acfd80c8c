package engine

// PartitionByTier returns the subset of records whose program belongs to the
// given funding tier. Records referencing a program absent from programs are
// excluded; Run surfaces those as a structural error before partitioning.
func PartitionByTier(records []ApplicationRecord, programs []Program, tier FundingTier) []ApplicationRecord {
	inTier := make(map[string]bool, len(programs))
	for _, p := range programs {
		if p.Tier == tier {
			inTier[p.ID] = true
		}
	}
	out := make([]ApplicationRecord, 0, len(records))
	for _, r := range records {
		if inTier[r.ProgramID] {
			out = append(out, r)
		}
	}
	return out
}

// SeedExclusions collects every admitted candidate across all primary-tier
// allocation results into a fresh ExclusionSet. The returned set is a value:
// mutating it during the secondary tier's run never retroactively affects the
// primary results it was derived from.
func SeedExclusions(primary map[string]*AllocationResult) ExclusionSet {
	seed := NewExclusionSet()
	for _, res := range primary {
		for _, id := range res.Admitted {
			seed.Add(id)
		}
	}
	return seed
}
