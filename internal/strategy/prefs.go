package strategy

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/arvik-ai/runtime-bridge/internal/component"
)

// Override is a user-selected strategy preference.
type Override string

const (
	OverrideAuto     Override = "auto"
	OverrideOnDevice Override = "on_device"
	OverrideCloud    Override = "cloud"
)

// ParseOverride maps a case-insensitive name to an Override.
func ParseOverride(s string) (Override, error) {
	switch Override(strings.ToLower(strings.TrimSpace(s))) {
	case OverrideAuto:
		return OverrideAuto, nil
	case OverrideOnDevice:
		return OverrideOnDevice, nil
	case OverrideCloud:
		return OverrideCloud, nil
	default:
		return "", fmt.Errorf("strategy: unknown override %q", s)
	}
}

// Target names what a preference optimises for.
type Target string

const (
	TargetLatency Target = "latency"
	TargetQuality Target = "quality"
	TargetBattery Target = "battery"
)

// ParseTarget maps a case-insensitive name to a Target.
func ParseTarget(s string) (Target, error) {
	switch Target(strings.ToLower(strings.TrimSpace(s))) {
	case TargetLatency:
		return TargetLatency, nil
	case TargetQuality:
		return TargetQuality, nil
	case TargetBattery:
		return TargetBattery, nil
	default:
		return "", fmt.Errorf("strategy: unknown target %q", s)
	}
}

// Preference is the per-component strategy preference mirror entry.
type Preference struct {
	Override Override `json:"override"`
	Target   Target   `json:"target"`
}

// Engine combines the rule table with per-component preferences.
// Safe for concurrent use.
type Engine struct {
	log *slog.Logger

	mu        sync.RWMutex
	prefs     map[component.Type]Preference
	threshold int
}

// NewEngine returns an engine with no preferences set and the default
// low-battery threshold.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		log:       logger.With("component", "strategy.Engine"),
		prefs:     map[component.Type]Preference{},
		threshold: LowBatteryPercent,
	}
}

// SetBatteryThreshold overrides the low-battery percent used by Resolve.
func (e *Engine) SetBatteryThreshold(percent int) {
	e.mu.Lock()
	e.threshold = percent
	e.mu.Unlock()
}

func (e *Engine) batteryThreshold() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.threshold
}

// SetPreference stores the preference for a component, replacing any
// previous value.
func (e *Engine) SetPreference(typ component.Type, p Preference) {
	if p.Override == "" {
		p.Override = OverrideAuto
	}
	if p.Target == "" {
		p.Target = TargetLatency
	}
	e.mu.Lock()
	e.prefs[typ] = p
	e.mu.Unlock()
	e.log.Info("preference set", "type", typ, "override", p.Override, "target", p.Target)
}

// Preference returns the stored preference, reporting false when none is set.
func (e *Engine) Preference(typ component.Type) (Preference, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.prefs[typ]
	return p, ok
}

// RemovePreference drops the preference for a component.
func (e *Engine) RemovePreference(typ component.Type) bool {
	e.mu.Lock()
	_, ok := e.prefs[typ]
	delete(e.prefs, typ)
	e.mu.Unlock()
	return ok
}

// Preferences returns a copy of every stored preference.
func (e *Engine) Preferences() map[component.Type]Preference {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[component.Type]Preference, len(e.prefs))
	for k, v := range e.prefs {
		out[k] = v
	}
	return out
}

// Resolve merges the component's preference with the rule table. A hard
// override short-circuits the table when it is satisfiable; an unsatisfiable
// override falls back to the table and marks the decision degraded.
func (e *Engine) Resolve(typ component.Type, s Snapshot) Decision {
	pref, ok := e.Preference(typ)
	if !ok || pref.Override == OverrideAuto {
		return decideWith(s, e.batteryThreshold())
	}

	switch pref.Override {
	case OverrideOnDevice:
		return Decision{
			Strategy: StrategyOnDevice,
			Reason:   ReasonUserPreference,
			Degraded: !s.LocalModelPresent,
		}
	case OverrideCloud:
		if cloudViable(s) {
			d := Decision{Strategy: StrategyCloud, Reason: ReasonUserPreference}
			if s.LocalModelPresent {
				d.Fallback = StrategyOnDevice
			}
			return d
		}
		e.log.Debug("cloud preference not satisfiable", "type", typ)
		d := decideWith(s, e.batteryThreshold())
		d.Degraded = true
		return d
	}
	return decideWith(s, e.batteryThreshold())
}
