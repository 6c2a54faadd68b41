package logging

import (
	"strings"
)

// LogLevelFromString converts string to LogLevel
func LogLevelFromString(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// InitializeFromConfig initializes the global logger from configuration and
// registers it as the package-level default.
func InitializeFromConfig(nodeID string, logConfig LogConfig) (*Logger, error) {
	config := Config{
		Level:         LogLevelFromString(logConfig.Level),
		NodeID:        nodeID,
		LogFile:       logConfig.LogFile,
		EnableConsole: logConfig.EnableConsole,
		EnableFile:    logConfig.EnableFile,
		BufferSize:    logConfig.BufferSize,
	}

	logger := NewLogger(config)
	SetGlobalLogger(logger)

	return logger, nil
}

// LogConfig mirrors config.LoggingConfig's shape without importing it, so
// this package has no dependency on pkg/config.
type LogConfig struct {
	Level         string
	EnableConsole bool
	EnableFile    bool
	LogFile       string
	BufferSize    int
}

// ComponentNames for structured logging across the ring placement core.
const (
	ComponentRing        = "ring"
	ComponentRouter      = "placement.router"
	ComponentRebalance   = "rebalance"
	ComponentCacheStore  = "store.cache"
	ComponentVectorStore = "store.vector"
	ComponentArtifact    = "store.artifact"
	ComponentConfig      = "config"
	ComponentMain        = "main"
)

// ActionNames for structured logging.
const (
	ActionStart      = "start"
	ActionStop       = "stop"
	ActionAddNode    = "add_node"
	ActionRemoveNode = "remove_node"
	ActionPlan       = "plan"
	ActionExecute    = "execute"
	ActionValidation = "validation"
	ActionRetry      = "retry"
)
