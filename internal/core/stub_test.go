package core

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/arvik-ai/runtime-bridge/internal/errcode"
)

func newTestCore() *StubCore {
	return NewStubCore(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStubLifecycle(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	h, err := c.Create(ctx, "llm")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if h == "" {
		t.Fatalf("expected non-empty handle")
	}

	if err := c.Load(ctx, h, LoadRequest{ModelID: "llama-7b"}); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	res, err := c.Infer(ctx, h, InferRequest{Input: "hello"})
	if err != nil {
		t.Fatalf("Infer error: %v", err)
	}
	if !strings.Contains(res.Output, "llama-7b") || !strings.Contains(res.Output, "hello") {
		t.Fatalf("unexpected output: %q", res.Output)
	}
	if res.RequestID == "" {
		t.Fatalf("expected generated request id")
	}

	if err := c.Unload(ctx, h); err != nil {
		t.Fatalf("Unload error: %v", err)
	}
	if err := c.Destroy(ctx, h); err != nil {
		t.Fatalf("Destroy error: %v", err)
	}
	if err := c.Destroy(ctx, h); errcode.FromErr(err) != errcode.NotFound {
		t.Fatalf("expected NotFound on double destroy, got %v", err)
	}
}

func TestStubLoadBeforeCreate(t *testing.T) {
	c := newTestCore()
	err := c.Load(context.Background(), Handle("missing"), LoadRequest{ModelID: "m"})
	if errcode.FromErr(err) != errcode.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestStubInferBeforeLoad(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()
	h, err := c.Create(ctx, "stt")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	_, err = c.Infer(ctx, h, InferRequest{Input: "x"})
	if errcode.FromErr(err) != errcode.ModelNotLoaded {
		t.Fatalf("expected ModelNotLoaded, got %v", err)
	}
}

func TestStubLoadRequiresModelID(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()
	h, _ := c.Create(ctx, "tts")
	err := c.Load(ctx, h, LoadRequest{})
	if errcode.FromErr(err) != errcode.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestStubCancel(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()
	h, _ := c.Create(ctx, "stt")
	_ = c.Load(ctx, h, LoadRequest{ModelID: "whisper-base"})

	if c.Cancel(Handle("missing")) {
		t.Fatalf("expected cancel of unknown handle to report false")
	}
	if !c.Cancel(h) {
		t.Fatalf("expected cancel to report known handle")
	}

	_, err := c.Transcribe(ctx, h, TranscribeRequest{Audio: []byte{1, 2, 3}})
	if errcode.FromErr(err) != errcode.Canceled {
		t.Fatalf("expected Canceled, got %v", err)
	}

	// The cancel flag is consumed by the aborted call.
	res, err := c.Transcribe(ctx, h, TranscribeRequest{Audio: []byte{1, 2, 3}, Final: true})
	if err != nil {
		t.Fatalf("Transcribe after consumed cancel: %v", err)
	}
	if !res.Final || !strings.Contains(res.Text, "3 bytes") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestStubContextCancellation(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()
	h, _ := c.Create(ctx, "llm")
	_ = c.Load(ctx, h, LoadRequest{ModelID: "m"})

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := c.Infer(canceled, h, InferRequest{Input: "x"}); errcode.FromErr(err) != errcode.Canceled {
		t.Fatalf("expected Canceled from dead context, got %v", err)
	}
}

func TestStubClose(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()
	h, _ := c.Create(ctx, "vad")
	if err := c.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if _, err := c.Create(ctx, "vad"); errcode.FromErr(err) != errcode.CoreUnavailable {
		t.Fatalf("expected CoreUnavailable after close, got %v", err)
	}
	if err := c.Load(ctx, h, LoadRequest{ModelID: "m"}); errcode.FromErr(err) != errcode.NotFound {
		t.Fatalf("expected sessions dropped on close, got %v", err)
	}
}
