package roster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/admission-sim/admission-sim/engine"
)

// Dataset is the merged, engine-ready view of every ingested roster page.
type Dataset struct {
	Programs []engine.Program
	Records  []engine.ApplicationRecord
	// Skipped counts rows dropped during ingestion: malformed table rows,
	// unparseable scores, and funding sources outside the configured tiers.
	Skipped int
	// Duplicates counts same-candidate rows collapsed per program.
	Duplicates int
}

// ProgramKey builds the canonical program identifier. The same program name
// under a different funding source or study form is a different program for
// allocation purposes, so all three parts participate in the key.
func ProgramKey(name, funding, form string) string {
	return strings.Join([]string{name, funding, form}, " / ")
}

// Merge folds parsed sections into the dataset. tiers maps a roster
// funding-source caption to its engine tier; sections with an unmapped
// funding source are counted as skipped rows and otherwise ignored.
func (d *Dataset) Merge(sections []Section, labels Labels, tiers map[string]engine.FundingTier) {
	seen := make(map[string]bool, len(d.Programs))
	for _, p := range d.Programs {
		seen[p.ID] = true
	}

	for _, sec := range sections {
		d.Skipped += sec.SkippedRows

		tier, ok := tiers[sec.Header.Funding]
		if !ok {
			logrus.Debugf("program %q: funding source %q outside configured tiers, skipping %d rows",
				sec.Header.Name, sec.Header.Funding, len(sec.Rows))
			d.Skipped += len(sec.Rows)
			continue
		}

		rows, removed := Dedup(sec.Rows, labels)
		if removed > 0 {
			logrus.Infof("program %q: removed %d duplicate candidate rows", sec.Header.Name, removed)
		}
		d.Duplicates += removed

		key := ProgramKey(sec.Header.Name, sec.Header.Funding, sec.Header.StudyForm)
		if !seen[key] {
			seen[key] = true
			d.Programs = append(d.Programs, engine.Program{
				ID:        key,
				Name:      sec.Header.Name,
				Tier:      tier,
				StudyForm: sec.Header.StudyForm,
				Seats:     sec.Header.Seats,
			})
		}

		for _, row := range rows {
			score, err := row.Score()
			if err != nil {
				d.Skipped++
				continue
			}
			d.Records = append(d.Records, engine.ApplicationRecord{
				CandidateID:         engine.NormalizeID(row.CandidateID),
				ProgramID:           key,
				Priority:            row.Priority,
				HasOriginalDocument: row.HasOriginalDocument(labels),
				HasConsent:          row.HasConsent(labels),
				Score:               score,
			})
		}
	}
}

// LoadDir parses every .html file in dir into one Dataset.
func LoadDir(dir string, labels Labels, tiers map[string]engine.FundingTier) (*Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read roster directory: %w", err)
	}

	ds := &Dataset{}
	parsedAny := false
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".html") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		sections, err := Parse(string(content), labels)
		if err != nil {
			logrus.Errorf("skipping %s: %v", path, err)
			continue
		}
		logrus.Infof("parsed %s: %d program sections", e.Name(), len(sections))
		ds.Merge(sections, labels, tiers)
		parsedAny = true
	}
	if !parsedAny {
		return nil, fmt.Errorf("no parseable roster pages in %s", dir)
	}
	return ds, nil
}
