// Package config loads the engine's YAML configuration: per-mode speed
// tables by road classification, per-entity cutoff/top-k settings with a
// "_defaults" fallback, K for T_hex, resolutions, batch size, and worker
// count. Loaded once at startup. The cmd/hexproxy drivers overwrite the
// cutoff, K and resolution fields from their flags right after Load, before
// any engine starts; nothing mutates the config after that (Design Note
// "Global mutable state").
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/hexproxy/engine/internal/errs"
)

// Mode is a travel mode recognized by GraphBuilder.
type Mode string

const (
	ModeDrive Mode = "drive"
	ModeWalk  Mode = "walk"
)

// EntityCutoff bounds per-entity DAnchorEngine work: how far (in minutes) to
// search and how many nearest sources' top-K to keep (always 1 for
// D_anchor, but top_k is kept general so the table can be reused by other
// future factorizations without a schema change).
type EntityCutoff struct {
	MaxMinutes int `yaml:"max_minutes"`
	TopK       int `yaml:"top_k"`
}

// SpeedTable maps a highway classification tag to a free-flow speed in
// meters/second. Classification values absent from the table are dropped
// with a counted warning.
type SpeedTable map[string]float64

// Config is the fully-resolved engine configuration.
type Config struct {
	// Speeds holds one SpeedTable per mode ("drive", "walk").
	Speeds map[Mode]SpeedTable `yaml:"speeds"`

	// PedestrianSpeedMPS is the fixed walking speed used for every
	// walk-admissible edge, overriding per-classification speeds for that
	// mode.
	PedestrianSpeedMPS float64 `yaml:"pedestrian_speed_mps"`

	// MotorwayClasses lists classification tags filtered out of the walk
	// mode graph.
	MotorwayClasses []string `yaml:"motorway_classes"`

	// KBest is the K in T_hex's top-K per cell.
	KBest int `yaml:"k_best"`

	// Resolutions lists the H3 resolutions T_hex is aggregated at, typically
	// {7, 8}.
	Resolutions []int `yaml:"resolutions"`

	// BatchSize is the number of anchors processed per KBestEngine batch.
	BatchSize int `yaml:"batch_size"`

	// Workers bounds the worker pool degree; 0 means runtime.NumCPU().
	Workers int `yaml:"workers"`

	// CutoffSeconds is the primary T_hex/D_anchor cutoff.
	CutoffSeconds uint16 `yaml:"cutoff_seconds"`

	// OverflowCutoffSeconds is the secondary, looser cutoff.
	OverflowCutoffSeconds uint16 `yaml:"overflow_cutoff_seconds"`

	// CategoryCutoffs maps category_id -> EntityCutoff, with "_defaults" as
	// the fallback entry.
	CategoryCutoffs map[string]EntityCutoff `yaml:"category_cutoffs"`

	// BrandCutoffs maps brand_id -> EntityCutoff, with "_defaults" as the
	// fallback entry.
	BrandCutoffs map[string]EntityCutoff `yaml:"brand_cutoffs"`
}

const defaultsKey = "_defaults"

// Load reads and validates a YAML config file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Input(path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errs.Schema(path, fmt.Errorf("config: %w", err))
	}

	if err := cfg.validate(); err != nil {
		return nil, errs.Schema(path, err)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.KBest <= 0 {
		return fmt.Errorf("config: k_best must be positive, got %d", c.KBest)
	}
	if len(c.Resolutions) == 0 {
		return fmt.Errorf("config: resolutions must not be empty")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("config: batch_size must be positive, got %d", c.BatchSize)
	}
	if c.CutoffSeconds == 0 || c.CutoffSeconds == 65535 {
		return fmt.Errorf("config: cutoff_seconds must be in (0, 65535), got %d", c.CutoffSeconds)
	}
	if c.OverflowCutoffSeconds < c.CutoffSeconds {
		return fmt.Errorf("config: overflow_cutoff_seconds (%d) must be >= cutoff_seconds (%d)",
			c.OverflowCutoffSeconds, c.CutoffSeconds)
	}
	if _, ok := c.CategoryCutoffs[defaultsKey]; len(c.CategoryCutoffs) > 0 && !ok {
		return fmt.Errorf("config: category_cutoffs missing %q fallback entry", defaultsKey)
	}
	if _, ok := c.BrandCutoffs[defaultsKey]; len(c.BrandCutoffs) > 0 && !ok {
		return fmt.Errorf("config: brand_cutoffs missing %q fallback entry", defaultsKey)
	}
	return nil
}

// CutoffFor resolves the {max_minutes, top_k} for a category or brand id,
// falling back to "_defaults" when the specific entity has no entry. The
// caller selects which table (category vs brand).
func CutoffFor(table map[string]EntityCutoff, entityID string) (EntityCutoff, bool) {
	if ec, ok := table[entityID]; ok {
		return ec, true
	}
	ec, ok := table[defaultsKey]
	return ec, ok
}
