// Package telemetry tracks bridge-level counters that can be forwarded to
// the host runtime or dumped at shutdown.
package telemetry

import (
	"log/slog"
	"sync/atomic"

	"github.com/arvik-ai/runtime-bridge/internal/strategy"
)

// Recorder accumulates cumulative bridge metrics. All methods are safe for
// concurrent use.
type Recorder struct {
	log *slog.Logger

	totalAssignments   atomic.Uint64
	totalUnassignments atomic.Uint64
	totalStatusUpdates atomic.Uint64
	totalRegistryOps   atomic.Uint64
	totalDecisions     atomic.Uint64
	onDeviceDecisions  atomic.Uint64
	cloudDecisions     atomic.Uint64
	degradedDecisions  atomic.Uint64
	totalCoreCalls     atomic.Uint64
	totalCoreFailures  atomic.Uint64
}

// Snapshot captures cumulative metrics recorded so far.
type Snapshot struct {
	TotalAssignments   uint64
	TotalUnassignments uint64
	TotalStatusUpdates uint64
	TotalRegistryOps   uint64
	TotalDecisions     uint64
	OnDeviceDecisions  uint64
	CloudDecisions     uint64
	DegradedDecisions  uint64
	TotalCoreCalls     uint64
	TotalCoreFailures  uint64
}

// NewRecorder constructs a Recorder using the provided logger.
func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		log: logger.With("component", "telemetry.Recorder"),
	}
}

// RecordAssignment counts an assign or unassign mutation.
func (r *Recorder) RecordAssignment(unassigned bool) {
	if r == nil {
		return
	}
	if unassigned {
		r.totalUnassignments.Add(1)
		return
	}
	r.totalAssignments.Add(1)
}

// RecordStatusUpdate counts an assignment status transition.
func (r *Recorder) RecordStatusUpdate() {
	if r == nil {
		return
	}
	r.totalStatusUpdates.Add(1)
}

// RecordRegistryOp counts a service registry write.
func (r *Recorder) RecordRegistryOp() {
	if r == nil {
		return
	}
	r.totalRegistryOps.Add(1)
}

// RecordDecision counts a strategy evaluation by outcome.
func (r *Recorder) RecordDecision(d strategy.Decision) {
	if r == nil {
		return
	}
	r.totalDecisions.Add(1)
	switch d.Strategy {
	case strategy.StrategyOnDevice:
		r.onDeviceDecisions.Add(1)
	case strategy.StrategyCloud:
		r.cloudDecisions.Add(1)
	}
	if d.Degraded {
		r.degradedDecisions.Add(1)
	}
	r.log.Debug("decision recorded",
		"strategy", d.Strategy,
		"reason", d.Reason,
		"degraded", d.Degraded,
	)
}

// RecordCoreCall counts a native core invocation and whether it failed.
func (r *Recorder) RecordCoreCall(err error) {
	if r == nil {
		return
	}
	r.totalCoreCalls.Add(1)
	if err != nil {
		r.totalCoreFailures.Add(1)
	}
}

// Snapshot returns an immutable view of the recorder totals.
func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	return Snapshot{
		TotalAssignments:   r.totalAssignments.Load(),
		TotalUnassignments: r.totalUnassignments.Load(),
		TotalStatusUpdates: r.totalStatusUpdates.Load(),
		TotalRegistryOps:   r.totalRegistryOps.Load(),
		TotalDecisions:     r.totalDecisions.Load(),
		OnDeviceDecisions:  r.onDeviceDecisions.Load(),
		CloudDecisions:     r.cloudDecisions.Load(),
		DegradedDecisions:  r.degradedDecisions.Load(),
		TotalCoreCalls:     r.totalCoreCalls.Load(),
		TotalCoreFailures:  r.totalCoreFailures.Load(),
	}
}
