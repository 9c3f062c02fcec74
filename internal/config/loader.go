package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nesting levels: RUNNER_COMPARISON__LOOKBACK_DAYS.
const EnvPrefix = "RUNNER_"

// flagKeys maps CLI flag names onto config keys where they differ
var flagKeys = map[string]string{
	"database":      "database_path",
	"lookback-days": "comparison.lookback_days",
	"cache-ttl":     "comparison.cache_ttl_days",
	"distance-unit": "display.distance_unit",
	"pace-unit":     "display.pace_unit",
}

// Load builds a Config by layering, lowest precedence first:
//  1. defaults
//  2. YAML file: cfgFile, else $RUNNER_CONFIG, else ~/.runner/config.yaml if present
//  3. env (prefix RUNNER_)
//  4. flags that were explicitly set
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := k.Load(confmap.Provider(map[string]any{
		"log_level":                      defaults.LogLevel,
		"database_path":                  defaults.DatabasePath,
		"metrics_file":                   defaults.MetricsFile,
		"comparison.lookback_days":       defaults.Comparison.LookbackDays,
		"comparison.distance_tolerance":  defaults.Comparison.DistanceTolerance,
		"comparison.candidate_limit":     defaults.Comparison.CandidateLimit,
		"comparison.min_similarity":      defaults.Comparison.MinSimilarity,
		"comparison.max_comparables":     defaults.Comparison.MaxComparables,
		"comparison.cache_ttl_days":      defaults.Comparison.CacheTTLDays,
		"comparison.route_history_limit": defaults.Comparison.RouteHistoryLimit,
		"display.distance_unit":          defaults.Display.DistanceUnit,
		"display.pace_unit":              defaults.Display.PaceUnit,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("%w: loading defaults: %w", ErrLoadConfig, err)
	}

	path, err := resolveConfigFile(cfgFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: reading config file %s: %w", ErrLoadConfig, path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("%w: loading env vars: %w", ErrLoadConfig, err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("%w: loading flags: %w", ErrLoadConfig, err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decoding config: %w", ErrLoadConfig, err)
	}

	cfg.DatabasePath, err = expandHome(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps RUNNER_COMPARISON__LOOKBACK_DAYS to comparison.lookback_days.
// RUNNER_CONFIG names the file itself and is not a setting.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if key == "config" {
		return ""
	}
	return strings.ReplaceAll(key, "__", ".")
}

// resolveConfigFile picks the YAML file to load. An explicitly named file
// must exist; the default location is optional.
func resolveConfigFile(explicit string) (string, error) {
	if explicit == "" {
		explicit = os.Getenv(EnvPrefix + "CONFIG")
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
		return explicit, nil
	}

	dir, err := GetConfigDir()
	if err != nil {
		return "", nil
	}
	candidate := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", nil
}
