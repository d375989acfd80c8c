// Package engine implements the core admission simulation: it ranks programs
// by competitiveness, allocates seats sequentially with cross-program
// exclusion of already-admitted candidates, repeats the allocation for a
// second funding tier seeded with the first tier's admits, and classifies the
// outcome for one distinguished candidate.
//
// # Reading Guide
//
// Start with these three files to understand the allocation kernel:
//   - record.go: ApplicationRecord, Program, and the eligibility predicate
//   - allocate.go: the sequential seat allocation fold and ExclusionSet
//   - engine.go: the two-tier orchestration entry point (Run)
//
// Supporting pieces:
//   - identity.go: the normalized candidate identifier type all set
//     membership is keyed on
//   - popularity.go: the static competitiveness ordering computed per tier
//   - partition.go: funding-tier partitioning and exclusion seeding
//   - outcome.go: the per-program outcome classifier for the target candidate
//
// The engine is single-threaded and performs no I/O. Allocation for a tier is
// a pure sequential fold over the popularity-ordered program list with one
// piece of explicitly threaded mutable state (the exclusion set). Roster
// ingestion, configuration, and report rendering live in sibling packages.
package engine
