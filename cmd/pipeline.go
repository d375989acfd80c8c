package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/admission-sim/admission-sim/config"
	"github.com/admission-sim/admission-sim/engine"
	"github.com/admission-sim/admission-sim/roster"
)

// mustLoadConfig loads and validates the configuration file or exits.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("Configuration error: %v (run `admission-sim init` to create a scaffold)", err)
	}
	return cfg
}

// newPageCache builds the optional Redis page cache. A missing REDIS_URL
// just disables caching; a configured but unreachable Redis is fatal, since
// the operator asked for it.
func newPageCache(ctx context.Context, cfg *config.Config) roster.PageCache {
	if cfg.RedisURL == "" {
		return nil
	}
	ttl := time.Duration(cfg.FetchTTLHours) * time.Hour
	cache, err := roster.NewCache(ctx, cfg.RedisURL, ttl)
	if err != nil {
		logrus.Fatalf("Roster page cache unavailable: %v", err)
	}
	return cache
}

// loadDataset assembles the full dataset according to the configured data
// source: local roster files, fetched pages, or both merged.
func loadDataset(ctx context.Context, cfg *config.Config) (*roster.Dataset, error) {
	tiers, err := cfg.TierLabels()
	if err != nil {
		return nil, err
	}
	labels := cfg.Labels()

	ds := &roster.Dataset{}
	haveAny := false

	if cfg.DataSource == config.SourceLocal || cfg.DataSource == config.SourceBoth {
		local, err := roster.LoadDir(cfg.DataDir, labels, tiers)
		if err != nil {
			if cfg.DataSource == config.SourceLocal {
				return nil, err
			}
			logrus.Warnf("local rosters unavailable, continuing with fetched pages: %v", err)
		} else {
			ds = local
			haveAny = true
		}
	}

	if cfg.DataSource == config.SourceInternet || cfg.DataSource == config.SourceBoth {
		fetcher := roster.NewFetcher(newPageCache(ctx, cfg))
		for _, url := range cfg.URLs {
			content, err := fetcher.Fetch(ctx, url)
			if err != nil {
				logrus.Errorf("fetch %s failed: %v, continuing", url, err)
				continue
			}
			sections, err := roster.Parse(content, labels)
			if err != nil {
				logrus.Errorf("parse %s failed: %v, continuing", url, err)
				continue
			}
			ds.Merge(sections, labels, tiers)
			haveAny = true
		}
	}

	if !haveAny || len(ds.Programs) == 0 {
		return nil, fmt.Errorf("no roster data available from source %q", cfg.DataSource)
	}
	return ds, nil
}

// simulate runs the engine over the dataset with the configured parameters.
func simulate(cfg *config.Config, ds *roster.Dataset) (*engine.RunResult, engine.ID, error) {
	tiers, err := cfg.EngineTiers()
	if err != nil {
		return nil, "", err
	}
	target := engine.NormalizeID(cfg.TargetCandidate)
	run, err := engine.Run(ds.Records, ds.Programs, engine.RunParams{
		Target:             target,
		Tiers:              tiers,
		ProgramsOfInterest: cfg.ProgramsOfInterest,
	})
	if err != nil {
		return nil, "", err
	}
	run.Skipped += ds.Skipped
	return run, target, nil
}
