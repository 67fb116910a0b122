package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds global configuration loaded from ~/.codeatlas/config.yaml.
// CODEATLAS_* environment variables (populated from .env by main) take
// precedence over the file. Zero values mean "use the built-in default".
type Config struct {
	// Analyzer inclusion rules
	ExcludeDirs  []string `yaml:"exclude_dirs"`
	ExcludeGlobs []string `yaml:"exclude_globs"`
	MaxFileSize  int64    `yaml:"max_file_size"`
	Workers      int      `yaml:"workers"`

	// Processor budgets
	ChunkSize      int `yaml:"chunk_size"`
	MaxNodes       int `yaml:"max_nodes"`
	DepthCeiling   int `yaml:"depth_ceiling"`
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Cache
	CacheDir string `yaml:"cache_dir"`
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".codeatlas", "config.yaml")
}

// DefaultCacheDir returns the default cache directory.
func DefaultCacheDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".codeatlas", "cache")
}

// Load reads the default YAML config file. A missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom reads a specific YAML config file, then overlays CODEATLAS_*
// environment variables on top.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overrides config fields from environment variables. Values that
// fail to parse are ignored, keeping the file's value.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CODEATLAS_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	envInt("CODEATLAS_WORKERS", &cfg.Workers)
	envInt64("CODEATLAS_MAX_FILE_SIZE", &cfg.MaxFileSize)
	envInt("CODEATLAS_CHUNK_SIZE", &cfg.ChunkSize)
	envInt("CODEATLAS_MAX_NODES", &cfg.MaxNodes)
	envInt("CODEATLAS_DEPTH_CEILING", &cfg.DepthCeiling)
	envInt("CODEATLAS_TIMEOUT_SECONDS", &cfg.TimeoutSeconds)
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envInt64(key string, dst *int64) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

// Timeout converts the configured budget to a duration, 0 when unset.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
