package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tmh-gis/sewertrace/pkg/record"
)

// Config is the engine configuration, loaded from YAML. Everything has
// a working default; a missing config file means "trace the standard
// merged sewer layers upstream".
type Config struct {
	LogLevel  string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Direction string `yaml:"direction" validate:"omitempty,oneof=upstream downstream"`

	// Budget caps pipes visited per trace. Zero disables the cap.
	Budget int `yaml:"budget" validate:"gte=0"`

	// NullNodes lists node-reference values that mean "not surveyed",
	// e.g. the 0_CWW / 0_WW placeholders in merged extracts.
	NullNodes []string `yaml:"null_nodes"`

	// SwapNodes lists pipe ids whose start/end nodes are known to be
	// reversed in the source data.
	SwapNodes []string `yaml:"swap_nodes"`

	Fields   record.FieldMap `yaml:"fields"`
	Snapshot SnapshotConfig  `yaml:"snapshot"`
	Postgres PostgresConfig  `yaml:"postgres"`
}

// SnapshotConfig controls the graph snapshot cache.
type SnapshotConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Bucket  string `yaml:"bucket"` // if set, S3 wins over Dir
	Prefix  string `yaml:"prefix"`
	Region  string `yaml:"region" validate:"required_with=Bucket"`
}

// PostgresConfig points the record adapter at database-hosted layers
// instead of CSV exports.
type PostgresConfig struct {
	URL           string `yaml:"url"`
	PipesTable    string `yaml:"pipes_table"`
	BranchesTable string `yaml:"branches_table"`
	ParcelsTable  string `yaml:"parcels_table"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		LogLevel:  "info",
		Direction: "upstream",
		NullNodes: []string{"0", "0_CWW", "0_WW"},
		Fields:    record.DefaultFieldMap(),
		Snapshot: SnapshotConfig{
			Dir: ".sewertrace",
		},
		Postgres: PostgresConfig{
			PipesTable:    "sewer_pipes",
			BranchesTable: "sewer_branches",
			ParcelsTable:  "parcels",
		},
	}
}

// Load reads a YAML config file over the defaults and validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyDefaults backfills empty field names so a partial fields: block
// does not wipe the standard column mapping.
func (c *Config) applyDefaults() {
	def := record.DefaultFieldMap()
	if c.Fields.PipeID == "" {
		c.Fields.PipeID = def.PipeID
	}
	if c.Fields.StartNode == "" {
		c.Fields.StartNode = def.StartNode
	}
	if c.Fields.EndNode == "" {
		c.Fields.EndNode = def.EndNode
	}
	if c.Fields.BranchID == "" {
		c.Fields.BranchID = def.BranchID
	}
	if c.Fields.ParcelGID == "" {
		c.Fields.ParcelGID = def.ParcelGID
	}
	if c.Fields.GID == "" {
		c.Fields.GID = def.GID
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
