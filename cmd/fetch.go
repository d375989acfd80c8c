package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/admission-sim/admission-sim/roster"
)

// fetchCmd downloads the configured roster pages into the data directory so
// subsequent runs can work offline (data_source: local).
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download roster pages into the data directory",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		if len(cfg.URLs) == 0 {
			logrus.Fatalf("No roster urls configured")
		}
		ctx := context.Background()

		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			logrus.Fatalf("Cannot create data directory %s: %v", cfg.DataDir, err)
		}

		fetcher := roster.NewFetcher(newPageCache(ctx, cfg))
		fetched := 0
		for i, url := range cfg.URLs {
			content, err := fetcher.Fetch(ctx, url)
			if err != nil {
				logrus.Errorf("fetch %s failed: %v, continuing", url, err)
				continue
			}
			path := filepath.Join(cfg.DataDir, fmt.Sprintf("roster-%02d.html", i+1))
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				logrus.Fatalf("write %s: %v", path, err)
			}
			logrus.Infof("saved %s (%d bytes)", path, len(content))
			fetched++
		}
		if fetched == 0 {
			logrus.Fatalf("No roster pages could be fetched")
		}
		logrus.Infof("Fetched %d/%d roster pages into %s", fetched, len(cfg.URLs), cfg.DataDir)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
