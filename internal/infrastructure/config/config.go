// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Matching weights and thresholds live here so test suites and
// deployments can pin them instead of relying on hard-coded
// constants.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/finwell/planmatch/internal/application/budget"
	"github.com/finwell/planmatch/internal/domain/matcher"
	"github.com/finwell/planmatch/internal/domain/transfer"
)

// Config represents the entire application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Matching      MatchingConfig      `yaml:"matching"`
	Transfers     TransfersConfig     `yaml:"transfers"`
	Budget        BudgetConfig        `yaml:"budget"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// MatchingConfig holds the matching engine's weights and thresholds.
type MatchingConfig struct {
	AmountWeight      float64 `yaml:"amount_weight"`
	DateWeight        float64 `yaml:"date_weight"`
	TextWeight        float64 `yaml:"text_weight"`
	DateFloor         float64 `yaml:"date_floor"`
	AutoThreshold     int     `yaml:"auto_threshold"`
	ReviewThreshold   int     `yaml:"review_threshold"`
	DefaultWindowDays int     `yaml:"default_window_days"`
	MaxCandidates     int     `yaml:"max_candidates"`
}

// MatcherConfig converts to the matching engine's config type.
func (c MatchingConfig) MatcherConfig() matcher.Config {
	return matcher.Config{
		AmountWeight:      c.AmountWeight,
		DateWeight:        c.DateWeight,
		TextWeight:        c.TextWeight,
		DateFloor:         c.DateFloor,
		AutoThreshold:     c.AutoThreshold,
		ReviewThreshold:   c.ReviewThreshold,
		DefaultWindowDays: c.DefaultWindowDays,
		MaxCandidates:     c.MaxCandidates,
	}
}

// TransfersConfig holds transfer detection tolerances.
type TransfersConfig struct {
	AmountTolerance float64 `yaml:"amount_tolerance"`
	MaxDaysApart    int     `yaml:"max_days_apart"`
	MinConfidence   int     `yaml:"min_confidence"`
}

// TransferConfig converts to the detector's config type.
func (c TransfersConfig) TransferConfig() transfer.Config {
	return transfer.Config{
		AmountTolerance: decimal.NewFromFloat(c.AmountTolerance),
		MaxDaysApart:    c.MaxDaysApart,
		MinConfidence:   c.MinConfidence,
	}
}

// BudgetConfig holds budget status thresholds.
type BudgetConfig struct {
	OnTrackAt float64 `yaml:"on_track_at"`
	WarningAt float64 `yaml:"warning_at"`
}

// StatusConfig converts to the budget service's config type.
func (c BudgetConfig) StatusConfig() budget.Config {
	return budget.Config{OnTrackAt: c.OnTrackAt, WarningAt: c.WarningAt}
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${PLANMATCH_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	cfg := defaults()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := defaults()
	cfg.Storage.DatabasePath = getEnv("PLANMATCH_DB_PATH", cfg.Storage.DatabasePath)
	cfg.Server.Port = getEnvInt("PLANMATCH_PORT", cfg.Server.Port)
	cfg.Matching.AutoThreshold = getEnvInt("PLANMATCH_AUTO_THRESHOLD", cfg.Matching.AutoThreshold)
	cfg.Matching.ReviewThreshold = getEnvInt("PLANMATCH_REVIEW_THRESHOLD", cfg.Matching.ReviewThreshold)
	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", cfg.Observability.Logging.Format)
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func defaults() *Config {
	m := matcher.DefaultConfig()
	t := transfer.DefaultConfig()
	b := budget.DefaultConfig()
	tolerance, _ := t.AmountTolerance.Float64()
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Storage: StorageConfig{
			DatabasePath: "planmatch.db",
		},
		Matching: MatchingConfig{
			AmountWeight:      m.AmountWeight,
			DateWeight:        m.DateWeight,
			TextWeight:        m.TextWeight,
			DateFloor:         m.DateFloor,
			AutoThreshold:     m.AutoThreshold,
			ReviewThreshold:   m.ReviewThreshold,
			DefaultWindowDays: m.DefaultWindowDays,
			MaxCandidates:     m.MaxCandidates,
		},
		Transfers: TransfersConfig{
			AmountTolerance: tolerance,
			MaxDaysApart:    t.MaxDaysApart,
			MinConfidence:   t.MinConfidence,
		},
		Budget: BudgetConfig{
			OnTrackAt: b.OnTrackAt,
			WarningAt: b.WarningAt,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "text",
			},
		},
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
