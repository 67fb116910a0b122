package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `exclude_dirs:
  - .git
  - generated
exclude_globs:
  - "*.min.js"
max_file_size: 1048576
workers: 4
chunk_size: 500
max_nodes: 2000
depth_ceiling: 2
timeout_seconds: 10
cache_dir: /tmp/atlas-cache
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if len(cfg.ExcludeDirs) != 2 || cfg.ExcludeDirs[1] != "generated" {
		t.Errorf("ExcludeDirs = %v", cfg.ExcludeDirs)
	}
	if len(cfg.ExcludeGlobs) != 1 || cfg.ExcludeGlobs[0] != "*.min.js" {
		t.Errorf("ExcludeGlobs = %v", cfg.ExcludeGlobs)
	}
	if cfg.MaxFileSize != 1048576 {
		t.Errorf("MaxFileSize = %d", cfg.MaxFileSize)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if cfg.ChunkSize != 500 || cfg.MaxNodes != 2000 || cfg.DepthCeiling != 2 {
		t.Errorf("processor budgets = %d/%d/%d", cfg.ChunkSize, cfg.MaxNodes, cfg.DepthCeiling)
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout())
	}
	if cfg.CacheDir != "/tmp/atlas-cache" {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
	if cfg.Workers != 0 || cfg.Timeout() != 0 {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `workers: 4
cache_dir: /from/file
timeout_seconds: 10
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CODEATLAS_WORKERS", "8")
	t.Setenv("CODEATLAS_CACHE_DIR", "/from/env")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want env override 8", cfg.Workers)
	}
	if cfg.CacheDir != "/from/env" {
		t.Errorf("CacheDir = %q, want env override", cfg.CacheDir)
	}
	// Untouched by env: the file's value stands.
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("Timeout = %v, want file value 10s", cfg.Timeout())
	}
}

func TestEnvAppliesWithoutConfigFile(t *testing.T) {
	t.Setenv("CODEATLAS_MAX_NODES", "2500")
	t.Setenv("CODEATLAS_MAX_FILE_SIZE", "4096")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.MaxNodes != 2500 {
		t.Errorf("MaxNodes = %d, want 2500", cfg.MaxNodes)
	}
	if cfg.MaxFileSize != 4096 {
		t.Errorf("MaxFileSize = %d, want 4096", cfg.MaxFileSize)
	}
}

func TestEnvInvalidIntIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workers: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CODEATLAS_WORKERS", "lots")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want file value 4 when env is unparsable", cfg.Workers)
	}
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("exclude_dirs: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}
