// Package strategy decides where a request should execute: on the device or
// in the cloud. The decision is a pure function of a device capability
// snapshot and is safe to call from any goroutine.
package strategy

// Strategy is the chosen execution target.
type Strategy string

const (
	StrategyOnDevice Strategy = "on_device"
	StrategyCloud    Strategy = "cloud"
	// StrategyNone marks an absent fallback.
	StrategyNone Strategy = ""
)

// Reason explains why a decision was made.
type Reason string

const (
	ReasonNetworkUnavailable    Reason = "network_unavailable"
	ReasonModelNotDownloaded    Reason = "model_not_downloaded"
	ReasonLowBattery            Reason = "low_battery"
	ReasonAutoDecision          Reason = "auto_decision"
	ReasonInsufficientResources Reason = "insufficient_resources"
	ReasonUserPreference        Reason = "user_preference"
)

// LowBatteryPercent is the threshold below which an uncharged device prefers
// offloading to the cloud.
const LowBatteryPercent = 20

// Snapshot captures the device capabilities the rules evaluate. It is read
// once per decision and never mutated.
type Snapshot struct {
	NetworkAvailable  bool `json:"network_available"`
	BatteryPercent    int  `json:"battery_percent"`
	Charging          bool `json:"charging"`
	LocalModelPresent bool `json:"local_model_present"`
	CloudCapable      bool `json:"cloud_capable"`
}

// Decision is the outcome of a strategy evaluation.
type Decision struct {
	Strategy Strategy `json:"strategy"`
	Fallback Strategy `json:"fallback,omitempty"`
	Reason   Reason   `json:"reason"`
	// Degraded marks a decision that picked a target known to be impaired,
	// e.g. on-device execution without a local model.
	Degraded bool `json:"degraded,omitempty"`
}

// Decide evaluates the rule table against a snapshot. Rules are ordered;
// the first matching row wins.
func Decide(s Snapshot) Decision {
	return decideWith(s, LowBatteryPercent)
}

func decideWith(s Snapshot, lowBattery int) Decision {
	// Offline: the cloud is unreachable, so on-device is the only option,
	// degraded when no local model backs it.
	if !s.NetworkAvailable {
		if s.LocalModelPresent {
			return Decision{Strategy: StrategyOnDevice, Reason: ReasonNetworkUnavailable}
		}
		return Decision{Strategy: StrategyOnDevice, Reason: ReasonModelNotDownloaded, Degraded: true}
	}

	// Low battery, not charging: offload when the cloud can take it.
	if s.BatteryPercent < lowBattery && !s.Charging && s.CloudCapable {
		d := Decision{Strategy: StrategyCloud, Reason: ReasonLowBattery}
		if s.LocalModelPresent {
			d.Fallback = StrategyOnDevice
		}
		return d
	}

	// Local model available: run on-device, keep the cloud behind it.
	if s.LocalModelPresent {
		d := Decision{Strategy: StrategyOnDevice, Reason: ReasonAutoDecision}
		if s.CloudCapable {
			d.Fallback = StrategyCloud
		}
		return d
	}

	// No local model but the cloud is viable.
	if s.CloudCapable {
		return Decision{Strategy: StrategyCloud, Reason: ReasonModelNotDownloaded}
	}

	// Nothing usable; run on-device and let the core report its own failure.
	return Decision{Strategy: StrategyOnDevice, Reason: ReasonInsufficientResources, Degraded: true}
}

// cloudViable reports whether a cloud preference can be honoured at all.
func cloudViable(s Snapshot) bool {
	return s.NetworkAvailable && s.CloudCapable
}
