package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScanConfig controls the directory walk used to enumerate file segments
type ScanConfig struct {
	// ExcludeDirs lists directory names the walker skips (e.g. ".git") unless
	// the include glob names them below its first wildcard
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// SkipHidden skips directories whose name starts with "."
	SkipHidden bool `yaml:"skip_hidden"`
}

// HistoryConfig represents fingerprint history configuration
type HistoryConfig struct {
	// Enabled records every computed fingerprint in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`
}

// Config represents cachekey configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written (empty = no file log)
	LogDir string `yaml:"log_dir"`

	// HashAlgorithm digests file contents (sha256, xxhash)
	HashAlgorithm string `yaml:"hash_algorithm"`

	// MaxConcurrency is the maximum number of files digested at once (0 = number of CPUs)
	MaxConcurrency int `yaml:"max_concurrency"`

	// PatternCacheSize is the number of compiled globs kept in memory
	PatternCacheSize int `yaml:"pattern_cache_size"`

	// Scan contains directory walk configuration
	Scan ScanConfig `yaml:"scan"`

	// History contains fingerprint history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:         "info",
		LogDir:           "",
		HashAlgorithm:    "sha256",
		MaxConcurrency:   0,
		PatternCacheSize: 256,
		Scan: ScanConfig{
			ExcludeDirs: []string{".git"},
			SkipHidden:  false,
		},
		History: HistoryConfig{
			Enabled: false,
			DBPath:  filepath.Join(".cachekey", "history.db"),
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Pointer fields tell "unset" apart from an explicit zero value
	type yamlConfig struct {
		LogLevel         string  `yaml:"log_level"`
		LogDir           *string `yaml:"log_dir"`
		HashAlgorithm    string  `yaml:"hash_algorithm"`
		MaxConcurrency   *int    `yaml:"max_concurrency"`
		PatternCacheSize *int    `yaml:"pattern_cache_size"`
		Scan             struct {
			ExcludeDirs *[]string `yaml:"exclude_dirs"`
			SkipHidden  *bool     `yaml:"skip_hidden"`
		} `yaml:"scan"`
		History struct {
			Enabled *bool   `yaml:"enabled"`
			DBPath  *string `yaml:"db_path"`
		} `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(yamlCfg.LogLevel)
	}
	if yamlCfg.LogDir != nil {
		cfg.LogDir = *yamlCfg.LogDir
	}
	if yamlCfg.HashAlgorithm != "" {
		cfg.HashAlgorithm = strings.ToLower(yamlCfg.HashAlgorithm)
	}
	if yamlCfg.MaxConcurrency != nil {
		cfg.MaxConcurrency = *yamlCfg.MaxConcurrency
	}
	if yamlCfg.PatternCacheSize != nil {
		cfg.PatternCacheSize = *yamlCfg.PatternCacheSize
	}
	if yamlCfg.Scan.ExcludeDirs != nil {
		cfg.Scan.ExcludeDirs = *yamlCfg.Scan.ExcludeDirs
	}
	if yamlCfg.Scan.SkipHidden != nil {
		cfg.Scan.SkipHidden = *yamlCfg.Scan.SkipHidden
	}
	if yamlCfg.History.Enabled != nil {
		cfg.History.Enabled = *yamlCfg.History.Enabled
	}
	if yamlCfg.History.DBPath != nil {
		// Explicitly set db_path, even if empty string
		cfg.History.DBPath = *yamlCfg.History.DBPath
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .cachekey/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".cachekey", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(logLevel *string, logDir *string, hashAlgorithm *string, maxConcurrency *int, recordHistory *bool) {
	if logLevel != nil {
		c.LogLevel = strings.ToLower(*logLevel)
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if hashAlgorithm != nil {
		c.HashAlgorithm = strings.ToLower(*hashAlgorithm)
	}
	if maxConcurrency != nil {
		c.MaxConcurrency = *maxConcurrency
	}
	if recordHistory != nil {
		c.History.Enabled = *recordHistory
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	switch c.HashAlgorithm {
	case "sha256", "xxhash":
	default:
		return fmt.Errorf("invalid hash_algorithm %q, must be one of: sha256, xxhash", c.HashAlgorithm)
	}

	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0, got %d", c.MaxConcurrency)
	}

	if c.PatternCacheSize <= 0 {
		return fmt.Errorf("pattern_cache_size must be > 0, got %d", c.PatternCacheSize)
	}

	for _, dir := range c.Scan.ExcludeDirs {
		if dir == "" || strings.ContainsAny(dir, `/\`) {
			return fmt.Errorf("scan.exclude_dirs entries must be plain directory names, got %q", dir)
		}
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}
