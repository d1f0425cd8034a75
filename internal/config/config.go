package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"

	"virusscope/internal/scorer"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Models  ModelsConfig  `yaml:"models"`
	Scoring ScoringConfig `yaml:"scoring"`
	Batch   BatchConfig   `yaml:"batch"`
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port   string `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type ModelsConfig struct {
	BinaryPath     string `yaml:"binary_path"`
	MulticlassPath string `yaml:"multiclass_path"`
}

type ScoringConfig struct {
	GatedLabel            string  `yaml:"gated_label"`
	ThresholdMode         string  `yaml:"threshold_mode"`
	FixedThresholdPercent float64 `yaml:"fixed_threshold_percent"`
}

type BatchConfig struct {
	MaxParallel int `yaml:"max_parallel"`
	MaxItems    int `yaml:"max_items"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Models: ModelsConfig{
			BinaryPath:     "models/binary_model.gob",
			MulticlassPath: "models/multiclass_model.gob",
		},
		Scoring: ScoringConfig{
			GatedLabel:            "Dengue",
			ThresholdMode:         string(scorer.ModeAdaptive),
			FixedThresholdPercent: 50,
		},
		Batch: BatchConfig{MaxParallel: 8, MaxItems: 500},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads an optional YAML file over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.APIKey = getEnv("API_KEY", cfg.Server.APIKey)
	cfg.Models.BinaryPath = getEnv("BINARY_MODEL_PATH", cfg.Models.BinaryPath)
	cfg.Models.MulticlassPath = getEnv("MULTICLASS_MODEL_PATH", cfg.Models.MulticlassPath)
	cfg.Scoring.GatedLabel = getEnv("GATED_LABEL", cfg.Scoring.GatedLabel)
	cfg.Scoring.ThresholdMode = getEnv("THRESHOLD_MODE", cfg.Scoring.ThresholdMode)
	if v, err := strconv.ParseFloat(os.Getenv("THRESHOLD_PERCENT"), 64); err == nil {
		cfg.Scoring.FixedThresholdPercent = v
	}
	if v, err := strconv.Atoi(os.Getenv("BATCH_MAX_PARALLEL")); err == nil {
		cfg.Batch.MaxParallel = v
	}
	cfg.Store.Path = getEnv("STORE_PATH", cfg.Store.Path)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
}

func (c *Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if c.Scoring.GatedLabel == "" {
		return fmt.Errorf("scoring: gated_label must not be empty")
	}
	if c.Batch.MaxParallel < 1 {
		return fmt.Errorf("batch: max_parallel must be at least 1, got %d", c.Batch.MaxParallel)
	}
	if c.Batch.MaxItems < 1 {
		return fmt.Errorf("batch: max_items must be at least 1, got %d", c.Batch.MaxItems)
	}
	return nil
}

func (c *Config) Policy() (scorer.ThresholdPolicy, error) {
	return scorer.ParsePolicy(c.Scoring.ThresholdMode, c.Scoring.FixedThresholdPercent)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
