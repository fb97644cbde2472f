// Package core defines the boundary to the native inference core. The core
// itself is an opaque collaborator; this package carries the call surface,
// the JSON payloads exchanged with it, a deterministic stub, and the
// build-tagged slot for the real backend.
package core

import "context"

// Handle identifies a created component instance inside the core.
type Handle string

// LoadRequest asks the core to load a model into a created instance.
type LoadRequest struct {
	ModelID   string            `json:"model_id"`
	ModelPath string            `json:"model_path,omitempty"`
	Options   map[string]string `json:"options,omitempty"`
}

// InferRequest carries a generic inference call.
type InferRequest struct {
	RequestID string            `json:"request_id,omitempty"`
	Input     string            `json:"input"`
	Options   map[string]string `json:"options,omitempty"`
}

// InferResult is the core's answer to an InferRequest.
type InferResult struct {
	RequestID string  `json:"request_id"`
	Output    string  `json:"output"`
	Tokens    int     `json:"tokens,omitempty"`
	Latency   float64 `json:"latency_ms,omitempty"`
}

// TranscribeRequest carries audio for speech-to-text components.
type TranscribeRequest struct {
	RequestID string `json:"request_id,omitempty"`
	Audio     []byte `json:"audio"`
	Language  string `json:"language,omitempty"`
	Final     bool   `json:"final,omitempty"`
}

// TranscribeResult is the core's answer to a TranscribeRequest.
type TranscribeResult struct {
	RequestID  string  `json:"request_id"`
	Text       string  `json:"text"`
	Confidence float32 `json:"confidence,omitempty"`
	Final      bool    `json:"final"`
}

// Core is the native call surface. Blocking calls take a context;
// implementations must return promptly when it is cancelled. All methods are
// safe for concurrent use.
type Core interface {
	// Create instantiates a component inside the core and returns its handle.
	Create(ctx context.Context, componentType string) (Handle, error)
	// Load binds a model to a previously created handle.
	Load(ctx context.Context, h Handle, req LoadRequest) error
	// Infer runs a generic inference call against a loaded handle.
	Infer(ctx context.Context, h Handle, req InferRequest) (InferResult, error)
	// Transcribe runs speech recognition against a loaded handle.
	Transcribe(ctx context.Context, h Handle, req TranscribeRequest) (TranscribeResult, error)
	// Cancel flags in-flight work on a handle for abortion. It reports
	// whether the handle was known.
	Cancel(h Handle) bool
	// Unload releases the model bound to a handle, keeping the handle alive.
	Unload(ctx context.Context, h Handle) error
	// Destroy tears the handle down.
	Destroy(ctx context.Context, h Handle) error
	// Close releases the core.
	Close() error
}
