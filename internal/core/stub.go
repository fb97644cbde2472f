package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/arvik-ai/runtime-bridge/internal/errcode"
)

// StubCore is a deterministic in-memory core. It tracks handle lifecycles
// faithfully and answers inference calls with placeholder output, which lets
// the bridge and its host integration run before a real core is wired in.
type StubCore struct {
	log *slog.Logger

	mu       sync.Mutex
	sessions map[Handle]*stubSession
	closed   bool
}

type stubSession struct {
	componentType string
	modelID       string
	loaded        bool
	canceled      bool
	inferCalls    int
}

// NewStubCore returns an empty stub core.
func NewStubCore(logger *slog.Logger) *StubCore {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubCore{
		log:      logger.With("component", "core.stub"),
		sessions: map[Handle]*stubSession{},
	}
}

// Create implements the Core interface.
func (c *StubCore) Create(ctx context.Context, componentType string) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", errcode.Err(errcode.Canceled, "create aborted")
	}
	if componentType == "" {
		return "", errcode.Err(errcode.InvalidArgument, "component type required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", errcode.Err(errcode.CoreUnavailable, "core closed")
	}

	h := Handle(uuid.NewString())
	c.sessions[h] = &stubSession{componentType: componentType}
	c.log.Debug("stub handle created", "handle", h, "type", componentType)
	return h, nil
}

// Load implements the Core interface.
func (c *StubCore) Load(ctx context.Context, h Handle, req LoadRequest) error {
	if req.ModelID == "" {
		return errcode.Err(errcode.InvalidArgument, "model id required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[h]
	if !ok {
		return errcode.Errf(errcode.NotFound, "unknown handle %s", h)
	}
	s.modelID = req.ModelID
	s.loaded = true
	s.canceled = false
	c.log.Debug("stub model loaded", "handle", h, "model_id", req.ModelID)
	return nil
}

// Infer implements the Core interface.
func (c *StubCore) Infer(ctx context.Context, h Handle, req InferRequest) (InferResult, error) {
	s, err := c.loadedSession(h)
	if err != nil {
		return InferResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return InferResult{}, errcode.Err(errcode.Canceled, "infer aborted")
	}

	c.mu.Lock()
	if s.canceled {
		s.canceled = false
		c.mu.Unlock()
		return InferResult{}, errcode.Err(errcode.Canceled, "infer canceled")
	}
	s.inferCalls++
	calls := s.inferCalls
	modelID := s.modelID
	c.mu.Unlock()

	reqID := req.RequestID
	if reqID == "" {
		reqID = uuid.NewString()
	}
	return InferResult{
		RequestID: reqID,
		Output:    fmt.Sprintf("[stub:%s] call %d: %s", modelID, calls, req.Input),
		Tokens:    len(req.Input),
	}, nil
}

// Transcribe implements the Core interface.
func (c *StubCore) Transcribe(ctx context.Context, h Handle, req TranscribeRequest) (TranscribeResult, error) {
	s, err := c.loadedSession(h)
	if err != nil {
		return TranscribeResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return TranscribeResult{}, errcode.Err(errcode.Canceled, "transcribe aborted")
	}

	c.mu.Lock()
	if s.canceled {
		s.canceled = false
		c.mu.Unlock()
		return TranscribeResult{}, errcode.Err(errcode.Canceled, "transcribe canceled")
	}
	modelID := s.modelID
	c.mu.Unlock()

	reqID := req.RequestID
	if reqID == "" {
		reqID = uuid.NewString()
	}
	return TranscribeResult{
		RequestID:  reqID,
		Text:       fmt.Sprintf("[stub:%s] received %d bytes", modelID, len(req.Audio)),
		Confidence: 0.42,
		Final:      req.Final,
	}, nil
}

// Cancel implements the Core interface.
func (c *StubCore) Cancel(h Handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[h]
	if !ok {
		return false
	}
	s.canceled = true
	return true
}

// Unload implements the Core interface.
func (c *StubCore) Unload(ctx context.Context, h Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[h]
	if !ok {
		return errcode.Errf(errcode.NotFound, "unknown handle %s", h)
	}
	if !s.loaded {
		return errcode.Errf(errcode.ModelNotLoaded, "handle %s has no model", h)
	}
	s.loaded = false
	s.modelID = ""
	return nil
}

// Destroy implements the Core interface.
func (c *StubCore) Destroy(ctx context.Context, h Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[h]; !ok {
		return errcode.Errf(errcode.NotFound, "unknown handle %s", h)
	}
	delete(c.sessions, h)
	c.log.Debug("stub handle destroyed", "handle", h)
	return nil
}

// Close implements the Core interface.
func (c *StubCore) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.sessions = map[Handle]*stubSession{}
	return nil
}

// loadedSession fetches a session that must have a model loaded.
func (c *StubCore) loadedSession(h Handle) (*stubSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[h]
	if !ok {
		return nil, errcode.Errf(errcode.NotFound, "unknown handle %s", h)
	}
	if !s.loaded {
		return nil, errcode.Errf(errcode.ModelNotLoaded, "handle %s has no model", h)
	}
	return s, nil
}
