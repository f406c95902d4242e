package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test terrain defaults
	if cfg.Terrain.Driver != "quad" {
		t.Errorf("expected driver 'quad', got %s", cfg.Terrain.Driver)
	}
	if cfg.Terrain.TileSize != 256 {
		t.Errorf("expected tile size 256, got %d", cfg.Terrain.TileSize)
	}
	if cfg.Terrain.HeightfieldSize != 17 {
		t.Errorf("expected heightfield size 17, got %d", cfg.Terrain.HeightfieldSize)
	}
	if cfg.Terrain.VerticalScale != 1 {
		t.Errorf("expected vertical scale 1, got %f", cfg.Terrain.VerticalScale)
	}

	// Test build defaults
	if cfg.Build.MinLevel != 0 {
		t.Errorf("expected min level 0, got %d", cfg.Build.MinLevel)
	}
	if cfg.Build.MaxLevel != 4 {
		t.Errorf("expected max level 4, got %d", cfg.Build.MaxLevel)
	}
	if cfg.Build.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Build.Workers)
	}
	if cfg.Build.OutputDir != "tiles" {
		t.Errorf("expected output dir 'tiles', got %s", cfg.Build.OutputDir)
	}

	// Test source defaults
	if cfg.Source.FetchTimeout != 30*time.Second {
		t.Errorf("expected fetch timeout 30s, got %v", cfg.Source.FetchTimeout)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
terrain:
  driver: "quad"
  tile_size: 512
  heightfield_size: 33
  vertical_scale: 1.5
  first_lod: 2

build:
  min_level: 1
  max_level: 8
  workers: 8
  output_dir: "out"

cache:
  path: "cache.db"

source:
  fetch_timeout: 5s

logging:
  level: "debug"
  log_file: "build.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Terrain.TileSize != 512 {
		t.Errorf("expected tile size 512, got %d", cfg.Terrain.TileSize)
	}
	if cfg.Terrain.HeightfieldSize != 33 {
		t.Errorf("expected heightfield size 33, got %d", cfg.Terrain.HeightfieldSize)
	}
	if cfg.Terrain.VerticalScale != 1.5 {
		t.Errorf("expected vertical scale 1.5, got %f", cfg.Terrain.VerticalScale)
	}
	if cfg.Terrain.FirstLOD != 2 {
		t.Errorf("expected first lod 2, got %d", cfg.Terrain.FirstLOD)
	}

	if cfg.Build.MinLevel != 1 {
		t.Errorf("expected min level 1, got %d", cfg.Build.MinLevel)
	}
	if cfg.Build.MaxLevel != 8 {
		t.Errorf("expected max level 8, got %d", cfg.Build.MaxLevel)
	}
	if cfg.Build.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Build.Workers)
	}
	if cfg.Build.OutputDir != "out" {
		t.Errorf("expected output dir 'out', got %s", cfg.Build.OutputDir)
	}

	if cfg.Cache.Path != "cache.db" {
		t.Errorf("expected cache path 'cache.db', got %s", cfg.Cache.Path)
	}
	if cfg.Source.FetchTimeout != 5*time.Second {
		t.Errorf("expected fetch timeout 5s, got %v", cfg.Source.FetchTimeout)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "build.log" {
		t.Errorf("expected log file 'build.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
terrain:
  tile_size: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("build:\n  workers: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}

	// A project-local tellus.yaml takes precedence over config.yaml.
	if err := os.WriteFile(filepath.Join(tmpDir, "tellus.yaml"), []byte("build:\n  workers: 3\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	path = findConfigFile()
	if path != "tellus.yaml" {
		t.Errorf("expected tellus.yaml to win, got %s", path)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config) error
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) error {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				return nil
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "driver flag",
			setup: func() {
				*flagDriver = "custom"
			},
			verify: func(cfg *Config) error {
				if cfg.Terrain.Driver != "custom" {
					t.Errorf("expected driver 'custom', got %s", cfg.Terrain.Driver)
				}
				return nil
			},
			teardown: func() {
				*flagDriver = ""
			},
		},
		{
			name: "level flags",
			setup: func() {
				*flagMinLevel = 2
				*flagMaxLevel = 10
			},
			verify: func(cfg *Config) error {
				if cfg.Build.MinLevel != 2 {
					t.Errorf("expected min level 2, got %d", cfg.Build.MinLevel)
				}
				if cfg.Build.MaxLevel != 10 {
					t.Errorf("expected max level 10, got %d", cfg.Build.MaxLevel)
				}
				return nil
			},
			teardown: func() {
				*flagMinLevel = -1
				*flagMaxLevel = -1
			},
		},
		{
			name: "workers flag",
			setup: func() {
				*flagWorkers = 16
			},
			verify: func(cfg *Config) error {
				if cfg.Build.Workers != 16 {
					t.Errorf("expected 16 workers, got %d", cfg.Build.Workers)
				}
				return nil
			},
			teardown: func() {
				*flagWorkers = 0
			},
		},
		{
			name: "output flag",
			setup: func() {
				*flagOutput = "/tmp/tiles"
			},
			verify: func(cfg *Config) error {
				if cfg.Build.OutputDir != "/tmp/tiles" {
					t.Errorf("expected output dir '/tmp/tiles', got %s", cfg.Build.OutputDir)
				}
				return nil
			},
			teardown: func() {
				*flagOutput = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
build:
  min_level: 3
  max_level: 6
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagMaxLevel = 12
	defer func() {
		*flagConfig = ""
		*flagMaxLevel = -1
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Max level should be from flag (12), not file (6)
	if cfg.Build.MaxLevel != 12 {
		t.Errorf("expected max level 12 from flag, got %d", cfg.Build.MaxLevel)
	}

	// Min level should be from file (3) since no flag override
	if cfg.Build.MinLevel != 3 {
		t.Errorf("expected min level 3 from file, got %d", cfg.Build.MinLevel)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Terrain.Driver = "quad"
	cfg.Build.MaxLevel = 9
	cfg.Cache.Path = "cache/tiles.db"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Terrain.Driver != "quad" {
		t.Errorf("expected driver quad, got %s", loaded.Terrain.Driver)
	}
	if loaded.Build.MaxLevel != 9 {
		t.Errorf("expected max level 9, got %d", loaded.Build.MaxLevel)
	}
	if loaded.Cache.Path != "cache/tiles.db" {
		t.Errorf("expected cache path preserved, got %s", loaded.Cache.Path)
	}
}
