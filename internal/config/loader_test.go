package config_test

import (
	"fmt"
	"testing"

	"github.com/arvik-ai/runtime-bridge/internal/config"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoaderDefaults(t *testing.T) {
	loader := config.Loader{Lookup: lookupFrom(nil)}
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.HTTPAddr != config.DefaultHTTPAddr {
		t.Fatalf("expected http addr %q, got %q", config.DefaultHTTPAddr, cfg.HTTPAddr)
	}
	if cfg.HealthAddr != config.DefaultHealthAddr {
		t.Fatalf("expected health addr %q, got %q", config.DefaultHealthAddr, cfg.HealthAddr)
	}
	if cfg.LogLevel != config.DefaultLogLevel {
		t.Fatalf("expected log level %q, got %q", config.DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.DataDir != config.DefaultDataDir {
		t.Fatalf("expected data dir %q, got %q", config.DefaultDataDir, cfg.DataDir)
	}
	if cfg.DBPath != "data/bridge.db" {
		t.Fatalf("expected derived db path, got %q", cfg.DBPath)
	}
	if cfg.UseStubCore {
		t.Fatalf("expected stub core disabled by default")
	}
	if cfg.BatteryThreshold != nil {
		t.Fatalf("expected battery threshold default (nil), got %v", *cfg.BatteryThreshold)
	}
}

func TestLoaderJSONPayload(t *testing.T) {
	env := map[string]string{
		"BRIDGE_HOST_CONFIG": `{"http_addr":"127.0.0.1:9999","log_level":"debug","use_stub_core":true,"battery_threshold":30}`,
	}
	cfg, err := config.Loader{Lookup: lookupFrom(env)}.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9999" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel)
	}
	if !cfg.UseStubCore {
		t.Fatalf("expected stub core forced")
	}
	if cfg.BatteryThreshold == nil || *cfg.BatteryThreshold != 30 {
		t.Fatalf("unexpected battery threshold: %v", cfg.BatteryThreshold)
	}
}

func TestLoaderEnvOverridesPayload(t *testing.T) {
	env := map[string]string{
		"BRIDGE_HOST_CONFIG": `{"http_addr":"127.0.0.1:9999","log_level":"debug"}`,
		"BRIDGE_HTTP_ADDR":   "0.0.0.0:7070",
		"BRIDGE_LOG_LEVEL":   " warn ",
	}
	cfg, err := config.Loader{Lookup: lookupFrom(env)}.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.HTTPAddr != "0.0.0.0:7070" {
		t.Fatalf("expected env override, got %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected trimmed env override, got %q", cfg.LogLevel)
	}
}

func TestLoaderYAMLFile(t *testing.T) {
	env := map[string]string{"BRIDGE_CONFIG_FILE": "/etc/bridge/config.yaml"}
	loader := config.Loader{
		Lookup: lookupFrom(env),
		ReadFile: func(path string) ([]byte, error) {
			if path != "/etc/bridge/config.yaml" {
				return nil, fmt.Errorf("unexpected path %s", path)
			}
			return []byte("http_addr: 127.0.0.1:8181\ndb_path: /var/lib/bridge/state.db\nuse_stub_core: true\n"), nil
		},
	}
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:8181" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTPAddr)
	}
	if cfg.DBPath != "/var/lib/bridge/state.db" {
		t.Fatalf("unexpected db path: %q", cfg.DBPath)
	}
	if !cfg.UseStubCore {
		t.Fatalf("expected stub core from file")
	}
}

func TestLoaderBatteryThresholdEnvOverride(t *testing.T) {
	env := map[string]string{
		"BRIDGE_HOST_CONFIG":       `{"battery_threshold":30}`,
		"BRIDGE_BATTERY_THRESHOLD": "45",
	}
	cfg, err := config.Loader{Lookup: lookupFrom(env)}.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.BatteryThreshold == nil || *cfg.BatteryThreshold != 45 {
		t.Fatalf("expected env override 45, got %v", cfg.BatteryThreshold)
	}

	env = map[string]string{"BRIDGE_BATTERY_THRESHOLD": "not-a-number"}
	cfg, err = config.Loader{Lookup: lookupFrom(env)}.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.BatteryThreshold != nil {
		t.Fatalf("expected unparsable override ignored, got %v", *cfg.BatteryThreshold)
	}
}

func TestLoaderRejectsBadJSON(t *testing.T) {
	env := map[string]string{"BRIDGE_HOST_CONFIG": "{not json"}
	if _, err := (config.Loader{Lookup: lookupFrom(env)}).Load(); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	threshold := 150
	cfg := config.Config{HTTPAddr: "127.0.0.1:8080", BatteryThreshold: &threshold}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}
