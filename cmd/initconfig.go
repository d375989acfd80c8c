package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/admission-sim/admission-sim/config"
)

// initCmd writes a configuration scaffold so a first-time operator only has
// to fill in the target candidate and roster locations.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file scaffold",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat(configPath); err == nil {
			logrus.Fatalf("%s already exists, refusing to overwrite", configPath)
		}
		cfg := config.Default()
		if err := cfg.Save(configPath); err != nil {
			logrus.Fatalf("write %s: %v", configPath, err)
		}
		logrus.Infof("Wrote %s. Set target_candidate (and urls for internet mode), then run `admission-sim run`.", configPath)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
