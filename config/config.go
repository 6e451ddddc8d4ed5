// Package config loads the planner configuration from JSON or YAML files,
// with environment variable overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/shopfloor/shiftplan/core/metrics"
	"github.com/shopfloor/shiftplan/core/orchestrator"
	"github.com/shopfloor/shiftplan/core/scheduling"
)

type Config struct {
	Machines []MachineConfig          `json:"machines"`
	Shift    ShiftConfig              `json:"shift"`
	Weights  orchestrator.Weights     `json:"weights"`
	Balance  scheduling.BalanceConfig `json:"balance"`
	Metrics  metrics.Config           `json:"metrics"`
	Logging  LoggingConfig            `json:"logging"`
}

// Load reads the file at path, applies K_ environment overrides (with "__"
// as the section separator) and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Weights.SetDefaults()
	cfg.Balance.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Shift.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Balance.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	for _, m := range cfg.Machines {
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
