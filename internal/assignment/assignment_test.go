package assignment

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/arvik-ai/runtime-bridge/internal/component"
)

func newTestRegistry() *Registry {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAssignThenGet(t *testing.T) {
	r := newTestRegistry()
	r.Assign(component.TypeSTT, "whisper-base")

	e, ok := r.Get(component.TypeSTT)
	if !ok {
		t.Fatalf("expected entry for stt")
	}
	if e.ModelID != "whisper-base" {
		t.Fatalf("unexpected model id: %q", e.ModelID)
	}
	if e.Status != StatusAssigned {
		t.Fatalf("unexpected status: %q", e.Status)
	}
	if e.AssignedAt.IsZero() || e.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps set")
	}
}

func TestGetUnknownComponent(t *testing.T) {
	r := newTestRegistry()
	if _, ok := r.Get(component.TypeVAD); ok {
		t.Fatalf("expected not found for unassigned component")
	}
}

func TestLastWriteWins(t *testing.T) {
	r := newTestRegistry()
	r.Assign(component.TypeLLM, "llama-7b")
	r.Assign(component.TypeLLM, "llama-13b")

	e, ok := r.Get(component.TypeLLM)
	if !ok || e.ModelID != "llama-13b" {
		t.Fatalf("expected last write to win, got %+v ok=%v", e, ok)
	}
	if len(r.Snapshot()) != 1 {
		t.Fatalf("expected single entry per component")
	}
}

func TestUpdateStatus(t *testing.T) {
	r := newTestRegistry()
	r.Assign(component.TypeTTS, "piper-medium")

	e, ok := r.UpdateStatus(component.TypeTTS, StatusFailed, "model file corrupt")
	if !ok {
		t.Fatalf("expected update to succeed")
	}
	if e.Status != StatusFailed || e.FailureReason != "model file corrupt" {
		t.Fatalf("unexpected entry: %+v", e)
	}

	e, ok = r.UpdateStatus(component.TypeTTS, StatusReady, "")
	if !ok || e.FailureReason != "" {
		t.Fatalf("expected failure reason cleared, got %+v", e)
	}

	if _, ok := r.UpdateStatus(component.TypeVAD, StatusLoading, ""); ok {
		t.Fatalf("expected update of unassigned component to fail")
	}
}

func TestUnassign(t *testing.T) {
	r := newTestRegistry()
	r.Assign(component.TypeEmbedding, "minilm")
	if !r.Unassign(component.TypeEmbedding) {
		t.Fatalf("expected unassign to report existing entry")
	}
	if _, ok := r.Get(component.TypeEmbedding); ok {
		t.Fatalf("expected entry removed")
	}
	if r.Unassign(component.TypeEmbedding) {
		t.Fatalf("expected second unassign to report missing entry")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	r := newTestRegistry()
	r.Assign(component.TypeLLM, "llama-7b")

	snap := r.Snapshot()
	delete(snap, component.TypeLLM)

	if _, ok := r.Get(component.TypeLLM); !ok {
		t.Fatalf("mutating a snapshot must not touch the registry")
	}
}

func TestListenersObserveMutations(t *testing.T) {
	r := newTestRegistry()

	var events []Entry
	id := r.Subscribe(func(e Entry) { events = append(events, e) })

	r.Assign(component.TypeSTT, "whisper-base")
	r.UpdateStatus(component.TypeSTT, StatusLoading, "")
	r.Unassign(component.TypeSTT)

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Status != StatusAssigned {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Status != StatusLoading {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if events[2].Status != StatusUnassigned {
		t.Fatalf("unexpected third event: %+v", events[2])
	}

	r.Unsubscribe(id)
	r.Assign(component.TypeSTT, "whisper-small")
	if len(events) != 3 {
		t.Fatalf("expected no events after unsubscribe, got %d", len(events))
	}
}

func TestClearStopsDispatch(t *testing.T) {
	r := newTestRegistry()

	var calls int
	r.Subscribe(func(Entry) {
		calls++
		// First callback tears the registry down mid-dispatch.
		r.Clear()
	})
	r.Subscribe(func(Entry) { calls++ })

	r.Assign(component.TypeLLM, "llama-7b")

	if calls != 1 {
		t.Fatalf("expected dispatch to stop after Clear, got %d calls", calls)
	}
	if len(r.Snapshot()) != 0 {
		t.Fatalf("expected registry emptied")
	}
}

func TestTimestampsAdvance(t *testing.T) {
	r := newTestRegistry()
	fake := time.Unix(1000, 0)
	r.now = func() time.Time { return fake }

	e := r.Assign(component.TypeLLM, "llama-7b")
	if !e.UpdatedAt.Equal(fake) {
		t.Fatalf("expected injected clock, got %v", e.UpdatedAt)
	}

	fake = fake.Add(5 * time.Second)
	e, _ = r.UpdateStatus(component.TypeLLM, StatusReady, "")
	if !e.UpdatedAt.Equal(time.Unix(1005, 0)) {
		t.Fatalf("expected UpdatedAt to advance, got %v", e.UpdatedAt)
	}
	if !e.AssignedAt.Equal(time.Unix(1000, 0)) {
		t.Fatalf("expected AssignedAt preserved, got %v", e.AssignedAt)
	}
}
