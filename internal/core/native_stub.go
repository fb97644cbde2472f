//go:build !nativebridge

package core

import (
	"context"

	"github.com/arvik-ai/runtime-bridge/internal/errcode"
)

// NativeAvailable reports whether the native core backend is compiled in.
func NativeAvailable() bool { return false }

// NewNativeCore returns an error when the native backend is not built.
func NewNativeCore(libraryPath string) (Core, error) {
	return nil, errcode.Err(errcode.CoreUnavailable, "native core not built")
}

// NativeCore satisfies the Core interface when the native backend is absent.
type NativeCore struct{}

func (c *NativeCore) Create(ctx context.Context, componentType string) (Handle, error) {
	return "", errcode.Err(errcode.CoreUnavailable, "native core not built")
}

func (c *NativeCore) Load(ctx context.Context, h Handle, req LoadRequest) error {
	return errcode.Err(errcode.CoreUnavailable, "native core not built")
}

func (c *NativeCore) Infer(ctx context.Context, h Handle, req InferRequest) (InferResult, error) {
	return InferResult{}, errcode.Err(errcode.CoreUnavailable, "native core not built")
}

func (c *NativeCore) Transcribe(ctx context.Context, h Handle, req TranscribeRequest) (TranscribeResult, error) {
	return TranscribeResult{}, errcode.Err(errcode.CoreUnavailable, "native core not built")
}

func (c *NativeCore) Cancel(h Handle) bool { return false }

func (c *NativeCore) Unload(ctx context.Context, h Handle) error {
	return errcode.Err(errcode.CoreUnavailable, "native core not built")
}

func (c *NativeCore) Destroy(ctx context.Context, h Handle) error {
	return errcode.Err(errcode.CoreUnavailable, "native core not built")
}

func (c *NativeCore) Close() error { return nil }
