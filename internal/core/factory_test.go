package core

import (
	"io"
	"log/slog"
	"testing"

	"github.com/arvik-ai/runtime-bridge/internal/config"
	"github.com/arvik-ai/runtime-bridge/internal/errcode"
)

func TestNewUsesStubWhenForced(t *testing.T) {
	cfg := config.Config{UseStubCore: true}
	c, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, ok := c.(*StubCore); !ok {
		t.Fatalf("expected stub core")
	}
}

func TestNewFallsBackWhenNativeUnavailable(t *testing.T) {
	if NativeAvailable() {
		t.Skip("native backend compiled in")
	}
	cfg := config.Config{CoreLibraryPath: "/opt/bridge/libcore.so"}
	c, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if errcode.FromErr(err) != errcode.CoreUnavailable {
		t.Fatalf("expected CoreUnavailable, got %v", err)
	}
	if _, ok := c.(*StubCore); !ok {
		t.Fatalf("expected stub core when native unavailable")
	}
}
