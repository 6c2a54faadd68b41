package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"ringkeeper/pkg/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("/non/existent/path")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ring.VirtualNodesPerWeight != 128 {
		t.Errorf("expected default vnpw 128, got %d", cfg.Ring.VirtualNodesPerWeight)
	}
	if cfg.Cache.Replication != 2 {
		t.Errorf("expected default cache replication 2, got %d", cfg.Cache.Replication)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	yamlContent := `
node:
  id: test-node

ring:
  virtual_nodes_per_weight: 256
  seed: 2025

cache:
  replication: 3
  multiprobe: 2
  max_memory_bytes: 1048576
  default_ttl: 30m

logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ring.Seed != 2025 {
		t.Errorf("expected seed 2025, got %d", cfg.Ring.Seed)
	}
	if cfg.Ring.VirtualNodesPerWeight != 256 {
		t.Errorf("expected vnpw 256, got %d", cfg.Ring.VirtualNodesPerWeight)
	}
	if cfg.Cache.Replication != 3 {
		t.Errorf("expected cache replication 3, got %d", cfg.Cache.Replication)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Replication = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero replication")
	}
}
