package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader loads configuration from a YAML file, an injected JSON payload, and
// environment variables, in that precedence order. Tests can override Lookup
// and ReadFile to inject deterministic inputs.
type Loader struct {
	Lookup   func(string) (string, bool)
	ReadFile func(string) ([]byte, error)
}

// Load retrieves the bridge configuration and validates it.
func (l Loader) Load() (Config, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}
	if l.ReadFile == nil {
		l.ReadFile = os.ReadFile
	}

	cfg := Config{
		HTTPAddr: DefaultHTTPAddr,
	}

	if path, ok := l.Lookup("BRIDGE_CONFIG_FILE"); ok && strings.TrimSpace(path) != "" {
		if err := l.applyYAML(strings.TrimSpace(path), &cfg); err != nil {
			return Config{}, err
		}
	}

	if raw, ok := l.Lookup("BRIDGE_HOST_CONFIG"); ok && strings.TrimSpace(raw) != "" {
		if err := applyJSON(raw, &cfg); err != nil {
			return Config{}, err
		}
	}

	overrideString(l.Lookup, "BRIDGE_HTTP_ADDR", &cfg.HTTPAddr)
	overrideString(l.Lookup, "BRIDGE_HEALTH_ADDR", &cfg.HealthAddr)
	overrideString(l.Lookup, "BRIDGE_LOG_LEVEL", &cfg.LogLevel)
	overrideString(l.Lookup, "BRIDGE_DATA_DIR", &cfg.DataDir)
	overrideString(l.Lookup, "BRIDGE_DB_PATH", &cfg.DBPath)
	overrideString(l.Lookup, "BRIDGE_LANGUAGE_HINT", &cfg.Language)
	overrideString(l.Lookup, "BRIDGE_CORE_LIBRARY", &cfg.CoreLibraryPath)
	overrideBool(l.Lookup, "BRIDGE_USE_STUB_CORE", &cfg.UseStubCore)
	overrideBool(l.Lookup, "BRIDGE_API_KEY_REQUIRED", &cfg.APIKeyRequired)
	overrideInt(l.Lookup, "BRIDGE_BATTERY_THRESHOLD", &cfg.BatteryThreshold)
	overrideString(l.Lookup, "BRIDGE_ADMIN_PASSWORD", &cfg.AdminPassword)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type filePayload struct {
	HTTPAddr         string `yaml:"http_addr" json:"http_addr"`
	HealthAddr       string `yaml:"health_addr" json:"health_addr"`
	LogLevel         string `yaml:"log_level" json:"log_level"`
	DataDir          string `yaml:"data_dir" json:"data_dir"`
	DBPath           string `yaml:"db_path" json:"db_path"`
	Language         string `yaml:"language" json:"language"`
	UseStubCore      *bool  `yaml:"use_stub_core" json:"use_stub_core"`
	CoreLibraryPath  string `yaml:"core_library" json:"core_library"`
	BatteryThreshold *int   `yaml:"battery_threshold" json:"battery_threshold"`
	APIKeyRequired   *bool  `yaml:"api_key_required" json:"api_key_required"`
	AdminPassword    string `yaml:"admin_password" json:"admin_password"`
}

func (l Loader) applyYAML(path string, cfg *Config) error {
	raw, err := l.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var payload filePayload
	if err := yaml.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	payload.apply(cfg)
	return nil
}

func applyJSON(raw string, cfg *Config) error {
	var payload filePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return fmt.Errorf("config: decode BRIDGE_HOST_CONFIG: %w", err)
	}
	payload.apply(cfg)
	return nil
}

func (p filePayload) apply(cfg *Config) {
	if p.HTTPAddr != "" {
		cfg.HTTPAddr = p.HTTPAddr
	}
	if p.HealthAddr != "" {
		cfg.HealthAddr = p.HealthAddr
	}
	if p.LogLevel != "" {
		cfg.LogLevel = p.LogLevel
	}
	if p.DataDir != "" {
		cfg.DataDir = p.DataDir
	}
	if p.DBPath != "" {
		cfg.DBPath = p.DBPath
	}
	if p.Language != "" {
		cfg.Language = p.Language
	}
	if p.CoreLibraryPath != "" {
		cfg.CoreLibraryPath = p.CoreLibraryPath
	}
	if p.UseStubCore != nil {
		cfg.UseStubCore = *p.UseStubCore
	}
	if p.BatteryThreshold != nil {
		cfg.BatteryThreshold = p.BatteryThreshold
	}
	if p.APIKeyRequired != nil {
		cfg.APIKeyRequired = *p.APIKeyRequired
	}
	if p.AdminPassword != "" {
		cfg.AdminPassword = p.AdminPassword
	}
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if lookup == nil || target == nil {
		return
	}
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func overrideBool(lookup func(string) (string, bool), key string, target *bool) {
	if lookup == nil || target == nil {
		return
	}
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			*target = parsed
		}
	}
}

func overrideInt(lookup func(string) (string, bool), key string, target **int) {
	if lookup == nil || target == nil {
		return
	}
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			*target = &parsed
		}
	}
}
