package config

import (
	"fmt"
	"path/filepath"
)

const (
	// DefaultHTTPAddr is used when the host runtime does not inject an
	// explicit control API address.
	DefaultHTTPAddr   = "127.0.0.1:8080"
	DefaultHealthAddr = "127.0.0.1:50051"
	DefaultLogLevel   = "info"
	DefaultDataDir    = "data"
	DefaultDBFile     = "bridge.db"
	DefaultLanguage   = "auto"
)

// Config captures bootstrap configuration extracted from a YAML file, the
// injected JSON payload (`BRIDGE_HOST_CONFIG`), and environment overrides.
type Config struct {
	HTTPAddr        string
	HealthAddr      string
	LogLevel        string
	DataDir         string
	DBPath          string
	Language        string
	UseStubCore     bool
	CoreLibraryPath string
	// BatteryThreshold overrides the low-battery percent used by the
	// strategy engine; nil keeps the built-in default.
	BatteryThreshold *int
	// APIKeyRequired gates the control API behind key auth.
	APIKeyRequired bool
	// AdminPassword, when set, is bcrypt-hashed at boot and stored for the
	// key-management endpoints. Never persisted in plaintext.
	AdminPassword string
}

// Validate applies defaults, checks required fields, and rejects
// out-of-range values.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("config: http listen address is required")
	}
	if c.HealthAddr == "" {
		c.HealthAddr = DefaultHealthAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, DefaultDBFile)
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.BatteryThreshold != nil {
		if *c.BatteryThreshold < 0 || *c.BatteryThreshold > 100 {
			return fmt.Errorf("config: battery_threshold must be within [0,100], got %d", *c.BatteryThreshold)
		}
	}
	return nil
}
