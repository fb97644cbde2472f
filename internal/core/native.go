//go:build nativebridge

package core

/*
#cgo LDFLAGS: -ldl

#include <dlfcn.h>
#include <stdlib.h>

// The native core exports a single JSON entry point plus a free routine:
//
//   const char *arvik_bridge_call(const char *op, const char *handle, const char *payload);
//   void arvik_bridge_free(const char *result);
//
// Results are JSON envelopes: {"code":<int>,"message":"...","data":{...}}.

typedef const char *(*bridge_call_fn)(const char *, const char *, const char *);
typedef void (*bridge_free_fn)(const char *);

static const char *bridge_call(void *fn, const char *op, const char *handle, const char *payload) {
	return ((bridge_call_fn)fn)(op, handle, payload);
}

static void bridge_free(void *fn, const char *result) {
	((bridge_free_fn)fn)(result);
}
*/
import "C"

import (
	"context"
	"encoding/json"
	"sync"
	"unsafe"

	"github.com/arvik-ai/runtime-bridge/internal/errcode"
)

// NativeAvailable reports whether the native core backend is compiled in.
func NativeAvailable() bool { return true }

// NativeCore drives a core implementation loaded from a shared library.
type NativeCore struct {
	mu     sync.Mutex
	lib    unsafe.Pointer
	callFn unsafe.Pointer
	freeFn unsafe.Pointer
	closed bool
}

// NewNativeCore loads the core library and resolves its entry points.
func NewNativeCore(libraryPath string) (Core, error) {
	if libraryPath == "" {
		return nil, errcode.Err(errcode.InvalidArgument, "core library path required")
	}
	cPath := C.CString(libraryPath)
	defer C.free(unsafe.Pointer(cPath))

	lib := C.dlopen(cPath, C.RTLD_NOW|C.RTLD_LOCAL)
	if lib == nil {
		return nil, errcode.Errf(errcode.CoreUnavailable, "dlopen %s: %s", libraryPath, C.GoString(C.dlerror()))
	}

	callSym := C.CString("arvik_bridge_call")
	defer C.free(unsafe.Pointer(callSym))
	freeSym := C.CString("arvik_bridge_free")
	defer C.free(unsafe.Pointer(freeSym))

	callFn := C.dlsym(lib, callSym)
	freeFn := C.dlsym(lib, freeSym)
	if callFn == nil || freeFn == nil {
		C.dlclose(lib)
		return nil, errcode.Errf(errcode.CoreUnavailable, "missing bridge symbols in %s", libraryPath)
	}

	return &NativeCore{lib: lib, callFn: callFn, freeFn: freeFn}, nil
}

// envelope is the wire frame every core response arrives in.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// call marshals the payload, invokes the core, and decodes the response
// envelope into out when out is non-nil.
func (c *NativeCore) call(ctx context.Context, op string, h Handle, payload any, out any) error {
	if err := ctx.Err(); err != nil {
		return errcode.Err(errcode.Canceled, "call aborted before dispatch")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return errcode.Errf(errcode.InvalidArgument, "encode %s payload: %v", op, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errcode.Err(errcode.CoreUnavailable, "core is closed")
	}
	callFn, freeFn := c.callFn, c.freeFn
	c.mu.Unlock()

	cOp := C.CString(op)
	defer C.free(unsafe.Pointer(cOp))
	cHandle := C.CString(string(h))
	defer C.free(unsafe.Pointer(cHandle))
	cPayload := C.CString(string(raw))
	defer C.free(unsafe.Pointer(cPayload))

	result := C.bridge_call(callFn, cOp, cHandle, cPayload)
	if result == nil {
		return errcode.Errf(errcode.Internal, "core returned no response for %s", op)
	}
	body := C.GoString(result)
	C.bridge_free(freeFn, result)

	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return errcode.Errf(errcode.Internal, "decode %s response: %v", op, err)
	}
	if env.Code != int(errcode.OK) {
		return errcode.Err(errcode.Code(env.Code), env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errcode.Errf(errcode.Internal, "decode %s result: %v", op, err)
		}
	}
	return nil
}

func (c *NativeCore) Create(ctx context.Context, componentType string) (Handle, error) {
	var result struct {
		Handle string `json:"handle"`
	}
	payload := map[string]string{"component_type": componentType}
	if err := c.call(ctx, "create", "", payload, &result); err != nil {
		return "", err
	}
	if result.Handle == "" {
		return "", errcode.Err(errcode.Internal, "core returned empty handle")
	}
	return Handle(result.Handle), nil
}

func (c *NativeCore) Load(ctx context.Context, h Handle, req LoadRequest) error {
	return c.call(ctx, "load", h, req, nil)
}

func (c *NativeCore) Infer(ctx context.Context, h Handle, req InferRequest) (InferResult, error) {
	var result InferResult
	if err := c.call(ctx, "infer", h, req, &result); err != nil {
		return InferResult{}, err
	}
	return result, nil
}

func (c *NativeCore) Transcribe(ctx context.Context, h Handle, req TranscribeRequest) (TranscribeResult, error) {
	var result TranscribeResult
	if err := c.call(ctx, "transcribe", h, req, &result); err != nil {
		return TranscribeResult{}, err
	}
	return result, nil
}

func (c *NativeCore) Cancel(h Handle) bool {
	var result struct {
		Known bool `json:"known"`
	}
	if err := c.call(context.Background(), "cancel", h, struct{}{}, &result); err != nil {
		return false
	}
	return result.Known
}

func (c *NativeCore) Unload(ctx context.Context, h Handle) error {
	return c.call(ctx, "unload", h, struct{}{}, nil)
}

func (c *NativeCore) Destroy(ctx context.Context, h Handle) error {
	return c.call(ctx, "destroy", h, struct{}{}, nil)
}

// Close unloads the shared library. Further calls fail with CoreUnavailable.
func (c *NativeCore) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.lib != nil {
		C.dlclose(c.lib)
		c.lib = nil
	}
	return nil
}
