package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/admission-sim/admission-sim/engine"
	"github.com/admission-sim/admission-sim/report"
	"github.com/admission-sim/admission-sim/store"
)

var noPersist bool

// runCmd executes one full simulation: ingest rosters, allocate both tiers,
// render reports, and print the summary.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the admission simulation and render reports",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		ctx := context.Background()

		startTime := time.Now()
		logrus.Infof("Analyzing admission data for candidate %s (tiers: %v, source: %s)",
			cfg.TargetCandidate, cfg.Tiers, cfg.DataSource)

		ds, err := loadDataset(ctx, cfg)
		if err != nil {
			logrus.Fatalf("Roster ingestion failed: %v", err)
		}
		logrus.Infof("Ingested %d programs, %d records (%d skipped, %d duplicates collapsed)",
			len(ds.Programs), len(ds.Records), ds.Skipped, ds.Duplicates)

		run, target, err := simulate(cfg, ds)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		w := &report.Writer{OutputDir: cfg.OutputDir, Interest: cfg.ProgramsOfInterest}
		if err := w.Render(run, ds.Programs, ds.Records, target); err != nil {
			logrus.Fatalf("Report rendering failed: %v", err)
		}

		if cfg.DatabaseURL != "" && !noPersist {
			persistRun(ctx, cfg.DatabaseURL, run, target)
		}

		fmt.Println(report.Summary(run, target))
		logrus.Infof("Simulation complete in %s. Reports written to %s",
			time.Since(startTime).Round(time.Millisecond), cfg.OutputDir)
	},
}

// persistRun writes the run to Postgres. Persistence failures are logged, not
// fatal: the reports on disk are the primary output.
func persistRun(ctx context.Context, databaseURL string, run *engine.RunResult, target engine.ID) {
	st, err := store.Open(ctx, databaseURL)
	if err != nil {
		logrus.Errorf("Postgres unavailable, run not persisted: %v", err)
		return
	}
	defer st.Close()
	if err := st.Init(ctx); err != nil {
		logrus.Errorf("Schema init failed, run not persisted: %v", err)
		return
	}
	if err := st.SaveRun(ctx, run, target); err != nil {
		logrus.Errorf("Persisting run failed: %v", err)
	}
}

func init() {
	runCmd.Flags().BoolVar(&noPersist, "no-persist", false, "Skip writing the run to Postgres even when DATABASE_URL is set")
	rootCmd.AddCommand(runCmd)
}
