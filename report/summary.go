package report

import (
	"fmt"
	"strings"

	"github.com/admission-sim/admission-sim/engine"
)

// Summary builds the console summary printed at the end of a run: the
// popularity chain per tier and the target candidate's outcomes.
func Summary(run *engine.RunResult, target engine.ID) string {
	var b strings.Builder
	b.WriteString("SUMMARY\n=======\n")

	for _, tr := range []*engine.TierResult{run.Primary, run.Secondary} {
		if tr == nil {
			continue
		}
		fmt.Fprintf(&b, "\n%s tier popularity (most to least competitive):\n", tr.Tier)
		for i, pop := range tr.Order {
			res := tr.Results[pop.ProgramID]
			cutoff := "unfilled"
			if res.Filled {
				cutoff = formatScore(res.Cutoff)
			}
			fmt.Fprintf(&b, "  %d. %s — %s applications per seat, %d/%d seats taken, cutoff %s\n",
				i+1, pop.ProgramID, formatRatio(pop.ApplicationsPerSeat),
				len(res.Admitted), pop.Seats, cutoff)
		}
	}

	fmt.Fprintf(&b, "\nOutcomes for %s:\n", target)
	for _, o := range run.Outcomes {
		fmt.Fprintf(&b, "  %s\n", describeOutcome(o))
	}
	if run.Skipped > 0 {
		fmt.Fprintf(&b, "\nSkipped %d malformed records.\n", run.Skipped)
	}
	return b.String()
}
