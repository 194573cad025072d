package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"compendium/domain/catalog"
)

// BaselineMode selects how the compendium baseline for physical variables is
// computed. The per-study-mean baseline keeps large studies from dominating;
// the pooled baseline uses raw sample values. The rank-sum significance test
// always runs on raw pooled values, independent of this setting.
type BaselineMode string

const (
	BaselineStudyMeans BaselineMode = "study_means"
	BaselinePooled     BaselineMode = "pooled"
)

// CacheBackend selects the durable store behind the analysis cache.
type CacheBackend string

const (
	CacheBackendFiles  CacheBackend = "files"
	CacheBackendSQLite CacheBackend = "sqlite"
)

// Config represents the complete application configuration
type Config struct {
	DataDir      string
	CacheDir     string
	CacheBackend CacheBackend

	// Analysis parameters.
	Alpha             float64
	TopK              int
	HistogramBins     int
	Baseline          BaselineMode
	PhysicalVariables []string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:           getEnvOrDefault("DATA_DIR", "./data"),
		CacheDir:          getEnvOrDefault("CACHE_DIR", "./processed_data/analysis_cache"),
		CacheBackend:      CacheBackend(getEnvOrDefault("CACHE_BACKEND", string(CacheBackendFiles))),
		Alpha:             getEnvFloatOrDefault("SIGNIFICANCE_ALPHA", 0.05),
		TopK:              getEnvIntOrDefault("TOP_K", 10),
		HistogramBins:     getEnvIntOrDefault("HISTOGRAM_BINS", 50),
		Baseline:          BaselineMode(getEnvOrDefault("COMPENDIUM_BASELINE", string(BaselineStudyMeans))),
		PhysicalVariables: loadPhysicalVariables(),
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadPhysicalVariables() []string {
	raw := os.Getenv("PHYSICAL_VARIABLES")
	if raw == "" {
		return catalog.DefaultPhysicalVariables()
	}
	var vars []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			vars = append(vars, v)
		}
	}
	return vars
}

func validate(cfg *Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if cfg.CacheDir == "" {
		return fmt.Errorf("CACHE_DIR is required")
	}
	if cfg.CacheBackend != CacheBackendFiles && cfg.CacheBackend != CacheBackendSQLite {
		return fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q",
			CacheBackendFiles, CacheBackendSQLite, cfg.CacheBackend)
	}
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		return fmt.Errorf("SIGNIFICANCE_ALPHA must be in (0, 1), got %g", cfg.Alpha)
	}
	if cfg.TopK < 1 {
		return fmt.Errorf("TOP_K must be positive, got %d", cfg.TopK)
	}
	if cfg.HistogramBins < 1 {
		return fmt.Errorf("HISTOGRAM_BINS must be positive, got %d", cfg.HistogramBins)
	}
	if cfg.Baseline != BaselineStudyMeans && cfg.Baseline != BaselinePooled {
		return fmt.Errorf("COMPENDIUM_BASELINE must be %q or %q, got %q",
			BaselineStudyMeans, BaselinePooled, cfg.Baseline)
	}
	if len(cfg.PhysicalVariables) == 0 {
		return fmt.Errorf("at least one physical variable must be configured")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
