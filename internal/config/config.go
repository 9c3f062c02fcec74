package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	LogLevel     string           `koanf:"log_level"`
	DatabasePath string           `koanf:"database_path"`
	MetricsFile  string           `koanf:"metrics_file"` // Prometheus textfile, empty to disable
	Comparison   ComparisonConfig `koanf:"comparison"`
	Display      DisplayConfig    `koanf:"display"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `koanf:"distance_unit"`
	PaceUnit     string `koanf:"pace_unit"`
}

// ComparisonConfig tunes comparable-run matching and caching
type ComparisonConfig struct {
	LookbackDays      int     `koanf:"lookback_days"`
	DistanceTolerance float64 `koanf:"distance_tolerance"` // fraction of target distance
	CandidateLimit    int     `koanf:"candidate_limit"`
	MinSimilarity     float64 `koanf:"min_similarity"`
	MaxComparables    int     `koanf:"max_comparables"`
	CacheTTLDays      int     `koanf:"cache_ttl_days"`
	RouteHistoryLimit int     `koanf:"route_history_limit"`
}

// CacheTTL returns the cache lifetime as a duration
func (c ComparisonConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLDays) * 24 * time.Hour
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		LogLevel:     "info",
		DatabasePath: filepath.Join("~", ".runner", "data.db"),
		Comparison: ComparisonConfig{
			LookbackDays:      365,
			DistanceTolerance: 0.10,
			CandidateLimit:    100,
			MinSimilarity:     0.5,
			MaxComparables:    20,
			CacheTTLDays:      7,
			RouteHistoryLimit: 10,
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
			PaceUnit:     "min/km",
		},
	}
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks that every setting is usable
func (c *Config) Validate() error {
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("%w: log_level must be one of debug, info, warn, error, got %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database_path is required", ErrInvalidConfig)
	}

	cmp := c.Comparison
	positive := []struct {
		key   string
		value int
	}{
		{"comparison.lookback_days", cmp.LookbackDays},
		{"comparison.candidate_limit", cmp.CandidateLimit},
		{"comparison.max_comparables", cmp.MaxComparables},
		{"comparison.cache_ttl_days", cmp.CacheTTLDays},
		{"comparison.route_history_limit", cmp.RouteHistoryLimit},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.key, p.value)
		}
	}

	if cmp.DistanceTolerance <= 0 || cmp.DistanceTolerance >= 1 {
		return fmt.Errorf("%w: comparison.distance_tolerance must be between 0 and 1, got %v", ErrInvalidConfig, cmp.DistanceTolerance)
	}
	if cmp.MinSimilarity < 0 || cmp.MinSimilarity >= 1 {
		return fmt.Errorf("%w: comparison.min_similarity must be in [0, 1), got %v", ErrInvalidConfig, cmp.MinSimilarity)
	}

	// Validate display units
	if c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("%w: display.distance_unit must be \"km\" or \"mi\", got %q", ErrInvalidConfig, c.Display.DistanceUnit)
	}
	if c.Display.PaceUnit != "min/km" && c.Display.PaceUnit != "min/mi" {
		return fmt.Errorf("%w: display.pace_unit must be \"min/km\" or \"min/mi\", got %q", ErrInvalidConfig, c.Display.PaceUnit)
	}

	return nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".runner"), nil
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
