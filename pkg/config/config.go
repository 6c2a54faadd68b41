// Package config loads and validates the YAML-backed process configuration
// for a ringkeeper deployment: ring tuning, per-router-kind replication, and
// the three reference adapters' settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	Node     NodeConfig           `yaml:"node"`
	Ring     RingConfig           `yaml:"ring"`
	Cache    CacheRouterConfig    `yaml:"cache"`
	Vector   VectorRouterConfig   `yaml:"vector"`
	Artifact ArtifactRouterConfig `yaml:"artifact"`
	Logging  LoggingConfig        `yaml:"logging"`
}

// NodeConfig identifies the local process.
type NodeConfig struct {
	ID string `yaml:"id"`
}

// RingConfig holds the parameters that determine token layout. Seed and
// VirtualNodesPerWeight MUST match between any two rings compared by the
// rebalance planner.
type RingConfig struct {
	VirtualNodesPerWeight int    `yaml:"virtual_nodes_per_weight"`
	Seed                  uint64 `yaml:"seed"`
}

// CacheRouterConfig configures the cache router and its in-memory nodes.
type CacheRouterConfig struct {
	Replication    int           `yaml:"replication"`
	Multiprobe     int           `yaml:"multiprobe"`
	MaxMemoryBytes int64         `yaml:"max_memory_bytes"`
	DefaultTTL     time.Duration `yaml:"default_ttl"`
}

// VectorRouterConfig configures the vector router and its shards.
type VectorRouterConfig struct {
	Replication int `yaml:"replication"`
	Multiprobe  int `yaml:"multiprobe"`
	Dimension   int `yaml:"dimension"`
}

// ArtifactRouterConfig configures the artifact router and its hosts.
type ArtifactRouterConfig struct {
	Replication int    `yaml:"replication"`
	Multiprobe  int    `yaml:"multiprobe"`
	RootDir     string `yaml:"root_dir"`
}

// LoggingConfig mirrors the teacher's own logging.Config shape.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	EnableConsole bool   `yaml:"enable_console"`
	EnableFile    bool   `yaml:"enable_file"`
	LogFile       string `yaml:"log_file"`
	BufferSize    int    `yaml:"buffer_size"`
}

// Default returns a production-ready default configuration.
func Default() *Config {
	return &Config{
		Node: NodeConfig{ID: "ringkeeper-node-1"},
		Ring: RingConfig{
			VirtualNodesPerWeight: 128,
			Seed:                  42,
		},
		Cache: CacheRouterConfig{
			Replication:    2,
			Multiprobe:     3,
			MaxMemoryBytes: 1 << 30, // 1GB
			DefaultTTL:     time.Hour,
		},
		Vector: VectorRouterConfig{
			Replication: 1,
			Multiprobe:  2,
			Dimension:   768,
		},
		Artifact: ArtifactRouterConfig{
			Replication: 1,
			Multiprobe:  2,
			RootDir:     "/tmp/ringkeeper/artifacts",
		},
		Logging: LoggingConfig{
			Level:         "info",
			EnableConsole: true,
			EnableFile:    false,
			BufferSize:    1000,
		},
	}
}

// Load reads and parses the configuration file at path, falling back to
// Default() if it does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Node.ID == "" {
		return fmt.Errorf("node.id cannot be empty")
	}
	if c.Ring.VirtualNodesPerWeight < 1 {
		return fmt.Errorf("ring.virtual_nodes_per_weight must be >= 1")
	}
	for name, rep := range map[string]int{
		"cache.replication":    c.Cache.Replication,
		"vector.replication":   c.Vector.Replication,
		"artifact.replication": c.Artifact.Replication,
	} {
		if rep < 1 {
			return fmt.Errorf("%s must be >= 1", name)
		}
	}
	if c.Cache.MaxMemoryBytes <= 0 {
		return fmt.Errorf("cache.max_memory_bytes must be > 0")
	}
	if c.Artifact.RootDir == "" {
		return fmt.Errorf("artifact.root_dir cannot be empty")
	}
	return nil
}
