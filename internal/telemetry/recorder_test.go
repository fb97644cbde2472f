package telemetry

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/arvik-ai/runtime-bridge/internal/strategy"
)

func TestRecorderSnapshot(t *testing.T) {
	recorder := NewRecorder(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if snapshot := recorder.Snapshot(); snapshot.TotalDecisions != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}

	recorder.RecordAssignment(false)
	recorder.RecordAssignment(false)
	recorder.RecordAssignment(true)
	recorder.RecordStatusUpdate()
	recorder.RecordRegistryOp()

	recorder.RecordDecision(strategy.Decision{Strategy: strategy.StrategyOnDevice, Reason: strategy.ReasonAutoDecision})
	recorder.RecordDecision(strategy.Decision{Strategy: strategy.StrategyCloud, Reason: strategy.ReasonLowBattery})
	recorder.RecordDecision(strategy.Decision{Strategy: strategy.StrategyOnDevice, Reason: strategy.ReasonModelNotDownloaded, Degraded: true})

	recorder.RecordCoreCall(nil)
	recorder.RecordCoreCall(errors.New("boom"))

	snapshot := recorder.Snapshot()
	if snapshot.TotalAssignments != 2 {
		t.Fatalf("unexpected TotalAssignments: %d", snapshot.TotalAssignments)
	}
	if snapshot.TotalUnassignments != 1 {
		t.Fatalf("unexpected TotalUnassignments: %d", snapshot.TotalUnassignments)
	}
	if snapshot.TotalStatusUpdates != 1 {
		t.Fatalf("unexpected TotalStatusUpdates: %d", snapshot.TotalStatusUpdates)
	}
	if snapshot.TotalRegistryOps != 1 {
		t.Fatalf("unexpected TotalRegistryOps: %d", snapshot.TotalRegistryOps)
	}
	if snapshot.TotalDecisions != 3 {
		t.Fatalf("unexpected TotalDecisions: %d", snapshot.TotalDecisions)
	}
	if snapshot.OnDeviceDecisions != 2 || snapshot.CloudDecisions != 1 {
		t.Fatalf("unexpected decision split: %+v", snapshot)
	}
	if snapshot.DegradedDecisions != 1 {
		t.Fatalf("unexpected DegradedDecisions: %d", snapshot.DegradedDecisions)
	}
	if snapshot.TotalCoreCalls != 2 || snapshot.TotalCoreFailures != 1 {
		t.Fatalf("unexpected core counters: %+v", snapshot)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.RecordAssignment(false)
	r.RecordDecision(strategy.Decision{})
	r.RecordCoreCall(nil)
	if snapshot := r.Snapshot(); snapshot != (Snapshot{}) {
		t.Fatalf("expected zero snapshot from nil recorder")
	}
}
