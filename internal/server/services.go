package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/arvik-ai/runtime-bridge/internal/component"
	"github.com/arvik-ai/runtime-bridge/internal/errcode"
	"github.com/arvik-ai/runtime-bridge/internal/registry"
)

type serviceView struct {
	Service      string    `json:"service"`
	State        string    `json:"state"`
	Capabilities []string  `json:"capabilities"`
	Version      string    `json:"version,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toServiceView(e registry.Entry) serviceView {
	caps := e.Capabilities.Names()
	if caps == nil {
		caps = []string{}
	}
	return serviceView{
		Service:      e.Service.String(),
		State:        e.State.String(),
		Capabilities: caps,
		Version:      e.Version,
		LastError:    e.LastError,
		UpdatedAt:    e.UpdatedAt,
	}
}

func serviceFromPath(r *http.Request) (component.ServiceType, error) {
	return component.ParseServiceType(r.PathValue("type"))
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	list := s.services.List()
	out := make(map[string]serviceView, len(list))
	for typ, e := range list {
		out[typ.String()] = toServiceView(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetService(w http.ResponseWriter, r *http.Request) {
	svc, err := serviceFromPath(r)
	if err != nil {
		writeError(w, errcode.Err(errcode.InvalidArgument, err.Error()))
		return
	}
	e, ok := s.services.Get(svc)
	if !ok {
		writeError(w, errcode.Errf(errcode.NotFound, "service %s not registered", svc))
		return
	}
	writeJSON(w, http.StatusOK, toServiceView(e))
}

func (s *Server) handleSetService(w http.ResponseWriter, r *http.Request) {
	svc, err := serviceFromPath(r)
	if err != nil {
		writeError(w, errcode.Err(errcode.InvalidArgument, err.Error()))
		return
	}

	var body struct {
		State        string   `json:"state"`
		Capabilities []string `json:"capabilities,omitempty"`
		Version      string   `json:"version,omitempty"`
		LastError    string   `json:"last_error,omitempty"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	state, err := component.ParseServiceState(body.State)
	if err != nil {
		writeError(w, errcode.Err(errcode.InvalidArgument, err.Error()))
		return
	}
	caps, err := parseCapabilities(body.Capabilities)
	if err != nil {
		writeError(w, err)
		return
	}

	e := s.services.Set(svc, state, caps, body.Version, body.LastError)
	writeJSON(w, http.StatusOK, toServiceView(e))
}

func (s *Server) handleRemoveService(w http.ResponseWriter, r *http.Request) {
	svc, err := serviceFromPath(r)
	if err != nil {
		writeError(w, errcode.Err(errcode.InvalidArgument, err.Error()))
		return
	}
	if !s.services.Remove(svc) {
		writeError(w, errcode.Errf(errcode.NotFound, "service %s not registered", svc))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseCapabilities(names []string) (component.Capability, error) {
	var mask component.Capability
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "on_device":
			mask |= component.CapOnDevice
		case "cloud":
			mask |= component.CapCloud
		case "streaming":
			mask |= component.CapStreaming
		case "batch":
			mask |= component.CapBatch
		case "gpu":
			mask |= component.CapGPU
		default:
			return 0, errcode.Errf(errcode.InvalidArgument, "unknown capability %q", name)
		}
	}
	return mask, nil
}
