// Package config holds engine tuning knobs loaded from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"revtrace/internal/encoding"
)

// Config tunes the ingestion engine. The zero value is not usable;
// start from Default.
type Config struct {
	// PerformanceThresholdMS is the "big gap" duration threshold in
	// milliseconds. Operations slower than this categorize as
	// Performance.
	PerformanceThresholdMS int `yaml:"performance_threshold_ms"`

	// EncodingFallbacks is the ordered list of legacy code pages tried
	// after UTF-8 validation fails.
	EncodingFallbacks []string `yaml:"encoding_fallbacks"`

	// LoadWorkerLog controls whether the associated worker log is
	// located and merged.
	LoadWorkerLog bool `yaml:"load_worker_log"`
}

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		PerformanceThresholdMS: 5000,
		EncodingFallbacks:      encoding.DefaultFallbacks,
		LoadWorkerLog:          true,
	}
}

// LoadFile reads a YAML config file over the defaults. Fields absent
// from the file keep their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.PerformanceThresholdMS <= 0 {
		return cfg, fmt.Errorf("config %s: performance_threshold_ms must be positive", path)
	}
	return cfg, nil
}

// Threshold returns the performance threshold as a duration.
func (c Config) Threshold() time.Duration {
	return time.Duration(c.PerformanceThresholdMS) * time.Millisecond
}
