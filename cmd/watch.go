package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/admission-sim/admission-sim/report"
)

// watchCmd re-runs the full pipeline on a fixed interval. Registrars refresh
// published rosters several times a day during an admission round; watch mode
// keeps the reports current without operator involvement.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Periodically refresh rosters and re-run the simulation",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cycle := func() {
			ds, err := loadDataset(ctx, cfg)
			if err != nil {
				logrus.Errorf("watch cycle: roster ingestion failed: %v", err)
				return
			}
			run, target, err := simulate(cfg, ds)
			if err != nil {
				logrus.Errorf("watch cycle: simulation failed: %v", err)
				return
			}
			w := &report.Writer{OutputDir: cfg.OutputDir, Interest: cfg.ProgramsOfInterest}
			if err := w.Render(run, ds.Programs, ds.Records, target); err != nil {
				logrus.Errorf("watch cycle: report rendering failed: %v", err)
				return
			}
			if cfg.DatabaseURL != "" {
				persistRun(ctx, cfg.DatabaseURL, run, target)
			}
			logrus.Infof("watch cycle complete; reports refreshed in %s", cfg.OutputDir)
		}

		c := cron.New()
		spec := fmt.Sprintf("@every %dh", cfg.WatchHours)
		if _, err := c.AddFunc(spec, cycle); err != nil {
			logrus.Fatalf("cron.AddFunc: %v", err)
		}

		// First cycle immediately; later ones on the cron tick. Cancellation
		// lands between cycles; a tier mid-allocation is not resumable, so
		// the engine is never interrupted.
		cycle()
		c.Start()
		logrus.Infof("watching: refresh %s, Ctrl-C to stop", spec)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logrus.Info("stopping watch")
		<-c.Stop().Done()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
