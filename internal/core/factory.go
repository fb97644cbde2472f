package core

import (
	"log/slog"

	"github.com/arvik-ai/runtime-bridge/internal/config"
	"github.com/arvik-ai/runtime-bridge/internal/errcode"
)

// New resolves the core backend for the current configuration. The stub is
// returned whenever the native backend is forced off, not compiled in, or
// fails to initialise; the error reports why the stub was chosen so the
// caller can log it, and is nil only when the requested backend came up.
func New(cfg config.Config, logger *slog.Logger) (Core, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.UseStubCore {
		logger.Warn("stub core forced by configuration")
		return NewStubCore(logger), nil
	}

	if !NativeAvailable() {
		logger.Warn("native core disabled at build time; using stub")
		return NewStubCore(logger), errcode.Err(errcode.CoreUnavailable, "native core not built")
	}

	native, err := NewNativeCore(cfg.CoreLibraryPath)
	if err != nil {
		logger.Error("native core initialisation failed; using stub", "error", err, "library_path", cfg.CoreLibraryPath)
		return NewStubCore(logger), err
	}
	logger.Info("native core ready", "library_path", cfg.CoreLibraryPath)
	return native, nil
}
