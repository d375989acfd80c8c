// Package config loads and validates the run configuration: the
// distinguished candidate, programs of interest, funding tiers, data source
// selection, and optional service endpoints. File values come from strict
// YAML; service endpoints may be overridden by environment variables
// (DATABASE_URL, REDIS_URL) so deployments never commit credentials.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/admission-sim/admission-sim/engine"
	"github.com/admission-sim/admission-sim/roster"
)

// Data source modes.
const (
	SourceLocal    = "local"
	SourceInternet = "internet"
	SourceBoth     = "both"
)

// Config is the full run configuration.
type Config struct {
	// TargetCandidate is the distinguished candidate's identifier, in any
	// formatting; the engine normalizes it.
	TargetCandidate string `yaml:"target_candidate"`
	// ProgramsOfInterest narrows reporting only; empty means all programs.
	ProgramsOfInterest []string `yaml:"programs_of_interest"`
	// Tiers lists the funding tiers to simulate ("primary", "secondary").
	Tiers []string `yaml:"tiers"`
	// FundingLabels maps each tier to the funding-source caption roster
	// pages print for it.
	FundingLabels map[string]string `yaml:"funding_labels"`

	DataSource string   `yaml:"data_source"` // local | internet | both
	DataDir    string   `yaml:"data_dir"`
	URLs       []string `yaml:"urls"`
	OutputDir  string   `yaml:"output_dir"`

	FetchTTLHours int `yaml:"fetch_ttl_hours"` // roster page cache lifetime
	WatchHours    int `yaml:"watch_hours"`     // refresh interval for watch mode

	// Optional service endpoints; environment variables win over file values.
	DatabaseURL string `yaml:"database_url,omitempty"`
	RedisURL    string `yaml:"redis_url,omitempty"`
}

// Default returns the configuration scaffold written by `admission-sim init`.
func Default() *Config {
	return &Config{
		Tiers: []string{"primary"},
		FundingLabels: map[string]string{
			"primary":   "Бюджетное финансирование",
			"secondary": "Коммерческое финансирование",
		},
		DataSource:    SourceLocal,
		DataDir:       "data-source",
		OutputDir:     "output",
		FetchTTLHours: 6,
		WatchHours:    6,
	}
}

// Load reads path with strict field checking (typos must cause errors, not
// silent defaults), applies environment overrides, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks structural consistency. The tier-dependency rule lives in
// the engine too; failing here gives the operator the error before any
// ingestion work happens.
func (c *Config) Validate() error {
	if c.TargetCandidate == "" {
		return fmt.Errorf("target_candidate is required")
	}
	if len(c.Tiers) == 0 {
		return fmt.Errorf("at least one funding tier is required")
	}
	tiers, err := c.EngineTiers()
	if err != nil {
		return err
	}
	hasPrimary := false
	for _, t := range tiers {
		if t == engine.TierPrimary {
			hasPrimary = true
		}
		if _, ok := c.FundingLabels[t.String()]; !ok {
			return fmt.Errorf("no funding label configured for tier %q", t)
		}
	}
	if !hasPrimary {
		return fmt.Errorf("the secondary tier cannot run without the primary tier")
	}

	switch c.DataSource {
	case SourceLocal, SourceInternet, SourceBoth:
	default:
		return fmt.Errorf("data_source must be %q, %q or %q, got %q",
			SourceLocal, SourceInternet, SourceBoth, c.DataSource)
	}
	if c.DataSource != SourceLocal && len(c.URLs) == 0 {
		return fmt.Errorf("data_source %q requires at least one url", c.DataSource)
	}
	return nil
}

// EngineTiers converts the configured tier names.
func (c *Config) EngineTiers() ([]engine.FundingTier, error) {
	out := make([]engine.FundingTier, 0, len(c.Tiers))
	for _, name := range c.Tiers {
		t, err := engine.ParseTier(name)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// TierLabels inverts FundingLabels into the caption → tier map the roster
// loader consumes, restricted to the tiers selected for this run.
func (c *Config) TierLabels() (map[string]engine.FundingTier, error) {
	tiers, err := c.EngineTiers()
	if err != nil {
		return nil, err
	}
	out := make(map[string]engine.FundingTier, len(tiers))
	for _, t := range tiers {
		out[c.FundingLabels[t.String()]] = t
	}
	return out, nil
}

// Labels returns the roster field captions, which follow the registrar
// defaults. Funding-source captions are the configurable part, via
// FundingLabels and TierLabels.
func (c *Config) Labels() roster.Labels {
	return roster.DefaultLabels()
}
