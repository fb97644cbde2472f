package server

import (
	"net/http"

	"github.com/arvik-ai/runtime-bridge/internal/errcode"
	"github.com/arvik-ai/runtime-bridge/internal/hostinfo"
	"github.com/arvik-ai/runtime-bridge/internal/store"
	"github.com/arvik-ai/runtime-bridge/internal/strategy"
)

type decideRequest struct {
	Component string `json:"component"`
	Snapshot  struct {
		NetworkAvailable  bool  `json:"network_available"`
		BatteryPercent    int   `json:"battery_percent"`
		Charging          bool  `json:"charging"`
		LocalModelPresent *bool `json:"local_model_present,omitempty"`
		CloudCapable      bool  `json:"cloud_capable"`
	} `json:"snapshot"`
}

type decideResponse struct {
	Decision strategy.Decision `json:"decision"`
	Metadata map[string]string `json:"metadata"`
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var body decideRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	typ, err := parseComponent(body.Component)
	if err != nil {
		writeError(w, err)
		return
	}

	snap := strategy.Snapshot{
		NetworkAvailable: body.Snapshot.NetworkAvailable,
		BatteryPercent:   body.Snapshot.BatteryPercent,
		Charging:         body.Snapshot.Charging,
		CloudCapable:     body.Snapshot.CloudCapable,
	}
	if body.Snapshot.LocalModelPresent != nil {
		snap.LocalModelPresent = *body.Snapshot.LocalModelPresent
	} else if s.store != nil {
		// Caller left the probe to us; consult the model catalog.
		present, err := s.store.HasLocalModel(r.Context(), typ.String())
		if err != nil {
			s.log.Warn("model catalog probe failed", "type", typ, "error", err)
		}
		snap.LocalModelPresent = present
	}

	d := s.engine.Resolve(typ, snap)
	s.metrics.RecordDecision(d)
	s.log.Info("strategy decided",
		"type", typ,
		"strategy", d.Strategy,
		"reason", d.Reason,
		"fallback", d.Fallback,
		"degraded", d.Degraded,
	)
	writeJSON(w, http.StatusOK, decideResponse{
		Decision: d,
		Metadata: hostinfo.DecisionMetadata(typ.String(), string(d.Strategy)),
	})
}

func (s *Server) handleListPreferences(w http.ResponseWriter, r *http.Request) {
	prefs := s.engine.Preferences()
	out := make(map[string]strategy.Preference, len(prefs))
	for typ, p := range prefs {
		out[typ.String()] = p
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetPreference(w http.ResponseWriter, r *http.Request) {
	typ, err := componentFromPath(r)
	if err != nil {
		writeError(w, errcode.Err(errcode.InvalidArgument, err.Error()))
		return
	}

	var body struct {
		Override string `json:"override"`
		Target   string `json:"target,omitempty"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	override, err := strategy.ParseOverride(body.Override)
	if err != nil {
		writeError(w, errcode.Err(errcode.InvalidArgument, err.Error()))
		return
	}
	target := strategy.TargetLatency
	if body.Target != "" {
		target, err = strategy.ParseTarget(body.Target)
		if err != nil {
			writeError(w, errcode.Err(errcode.InvalidArgument, err.Error()))
			return
		}
	}

	pref := strategy.Preference{Override: override, Target: target}
	s.engine.SetPreference(typ, pref)
	s.persistPreference(r, typ.String(), pref)
	writeJSON(w, http.StatusOK, pref)
}

func (s *Server) handleRemovePreference(w http.ResponseWriter, r *http.Request) {
	typ, err := componentFromPath(r)
	if err != nil {
		writeError(w, errcode.Err(errcode.InvalidArgument, err.Error()))
		return
	}
	if !s.engine.RemovePreference(typ) {
		writeError(w, errcode.Errf(errcode.NotFound, "no preference for %s", typ))
		return
	}
	if s.store != nil {
		if err := s.store.DeletePreference(r.Context(), typ.String()); err != nil {
			s.log.Warn("preference delete not persisted", "type", typ, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// persistPreference mirrors an in-memory preference write into the store.
// Persistence failures are logged, never surfaced: the live mirror stays
// authoritative.
func (s *Server) persistPreference(r *http.Request, componentType string, p strategy.Preference) {
	if s.store == nil {
		return
	}
	rec := store.PreferenceRecord{
		Component: componentType,
		Override:  string(p.Override),
		Target:    string(p.Target),
	}
	if err := s.store.UpsertPreference(r.Context(), rec); err != nil {
		s.log.Warn("preference not persisted", "type", componentType, "error", err)
	}
}
