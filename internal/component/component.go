// Package component defines the enum vocabulary shared by the bridge:
// component types, service types, capability flags, and service states.
package component

import (
	"fmt"
	"strings"
)

// Type identifies an inference subsystem managed through the bridge.
type Type string

const (
	TypeLLM       Type = "llm"
	TypeSTT       Type = "stt"
	TypeTTS       Type = "tts"
	TypeVAD       Type = "vad"
	TypeEmbedding Type = "embedding"
)

// Types lists every known component type in declaration order.
var Types = []Type{TypeLLM, TypeSTT, TypeTTS, TypeVAD, TypeEmbedding}

// ParseType maps a case-insensitive name to a Type.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeLLM:
		return TypeLLM, nil
	case TypeSTT:
		return TypeSTT, nil
	case TypeTTS:
		return TypeTTS, nil
	case TypeVAD:
		return TypeVAD, nil
	case TypeEmbedding:
		return TypeEmbedding, nil
	default:
		return "", fmt.Errorf("component: unknown type %q", s)
	}
}

func (t Type) String() string { return string(t) }

// ServiceType keys the service registry.
type ServiceType string

const (
	ServiceInference     ServiceType = "inference"
	ServiceTranscription ServiceType = "transcription"
	ServiceSynthesis     ServiceType = "synthesis"
	ServiceWakeWord      ServiceType = "wake_word"
	ServiceTelemetry     ServiceType = "telemetry"
)

// ServiceTypes lists every known service type in declaration order.
var ServiceTypes = []ServiceType{
	ServiceInference,
	ServiceTranscription,
	ServiceSynthesis,
	ServiceWakeWord,
	ServiceTelemetry,
}

// ParseServiceType maps a case-insensitive name to a ServiceType.
func ParseServiceType(s string) (ServiceType, error) {
	switch ServiceType(strings.ToLower(strings.TrimSpace(s))) {
	case ServiceInference:
		return ServiceInference, nil
	case ServiceTranscription:
		return ServiceTranscription, nil
	case ServiceSynthesis:
		return ServiceSynthesis, nil
	case ServiceWakeWord:
		return ServiceWakeWord, nil
	case ServiceTelemetry:
		return ServiceTelemetry, nil
	default:
		return "", fmt.Errorf("component: unknown service type %q", s)
	}
}

func (t ServiceType) String() string { return string(t) }

// Capability is a bitmask describing what a registered service can do.
type Capability uint32

const (
	CapOnDevice Capability = 1 << iota
	CapCloud
	CapStreaming
	CapBatch
	CapGPU
)

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapOnDevice, "on_device"},
	{CapCloud, "cloud"},
	{CapStreaming, "streaming"},
	{CapBatch, "batch"},
	{CapGPU, "gpu"},
}

// Has reports whether every flag in want is set.
func (c Capability) Has(want Capability) bool { return c&want == want }

// Names expands the mask into its flag names, in declaration order.
func (c Capability) Names() []string {
	var out []string
	for _, e := range capabilityNames {
		if c.Has(e.cap) {
			out = append(out, e.name)
		}
	}
	return out
}

func (c Capability) String() string {
	names := c.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ServiceState describes the lifecycle of a registered service.
type ServiceState string

const (
	StateUnavailable ServiceState = "unavailable"
	StateStarting    ServiceState = "starting"
	StateReady       ServiceState = "ready"
	StateDegraded    ServiceState = "degraded"
	StateStopped     ServiceState = "stopped"
)

// ParseServiceState maps a case-insensitive name to a ServiceState.
func ParseServiceState(s string) (ServiceState, error) {
	switch ServiceState(strings.ToLower(strings.TrimSpace(s))) {
	case StateUnavailable:
		return StateUnavailable, nil
	case StateStarting:
		return StateStarting, nil
	case StateReady:
		return StateReady, nil
	case StateDegraded:
		return StateDegraded, nil
	case StateStopped:
		return StateStopped, nil
	default:
		return "", fmt.Errorf("component: unknown service state %q", s)
	}
}

func (s ServiceState) String() string { return string(s) }
