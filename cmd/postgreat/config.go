package main

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// InstanceConfig is one target PostgreSQL instance to analyze.
type InstanceConfig struct {
	Name           string `koanf:"name" yaml:"name"`
	DSN            string `koanf:"dsn" yaml:"dsn"`
	Tier           string `koanf:"tier" yaml:"tier"`
	ComputeProfile string `koanf:"compute_profile" yaml:"compute_profile"`
	WorkloadHint   string `koanf:"workload_hint" yaml:"workload_hint"`
}

// Config is the full instance configuration file the CLI loads: which
// targets to analyze and how to run and render each report. Mirrors the
// teacher's defaults-then-env-then-file koanf layering in pkg/config.go,
// without the generated-schema validation step the teacher uses for its
// own Postgres parameter config (out of scope here; see DESIGN.md).
type Config struct {
	Instances     []InstanceConfig `koanf:"instances" yaml:"instances"`
	Format        string           `koanf:"format" yaml:"format"`
	WorkloadLimit int              `koanf:"workload_limit" yaml:"workload_limit"`
	SeverityFloor string           `koanf:"severity_floor" yaml:"severity_floor"`
}

func defaultConfig() Config {
	return Config{
		Format:        "text",
		WorkloadLimit: 20,
		SeverityFloor: "info",
	}
}

// LoadConfig loads instance configuration with the layering order
// defaults -> environment (POSTGREAT_ prefixed) -> YAML file, the same
// override order the teacher's pkg.LoadConfig uses.
func LoadConfig(configFile string) (Config, error) {
	k := koanf.New(".")
	cfg := defaultConfig()

	if err := k.Load(env.Provider("POSTGREAT_", ".", envKeyToKoanf), nil); err != nil {
		return cfg, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.WorkloadLimit == 0 {
		cfg.WorkloadLimit = 20
	}
	if cfg.SeverityFloor == "" {
		cfg.SeverityFloor = "info"
	}

	return cfg, nil
}

// envKeyToKoanf maps POSTGREAT_WORKLOAD_LIMIT to the koanf key workload_limit.
func envKeyToKoanf(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "POSTGREAT_"))
}
