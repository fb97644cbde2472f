package server

import (
	"net/http"

	"github.com/arvik-ai/runtime-bridge/internal/component"
	"github.com/arvik-ai/runtime-bridge/internal/core"
	"github.com/arvik-ai/runtime-bridge/internal/errcode"
)

// handleCoreOp dispatches the per-component native lifecycle operations.
// The bridge holds one live handle per component type; create replaces any
// previous handle for that component.
func (s *Server) handleCoreOp(w http.ResponseWriter, r *http.Request) {
	typ, err := componentFromPath(r)
	if err != nil {
		writeError(w, errcode.Err(errcode.InvalidArgument, err.Error()))
		return
	}

	switch r.PathValue("op") {
	case "create":
		s.coreCreate(w, r, typ)
	case "load":
		s.coreLoad(w, r, typ)
	case "infer":
		s.coreInfer(w, r, typ)
	case "transcribe":
		s.coreTranscribe(w, r, typ)
	case "cancel":
		s.coreCancel(w, r, typ)
	case "unload":
		s.coreUnload(w, r, typ)
	case "destroy":
		s.coreDestroy(w, r, typ)
	default:
		writeError(w, errcode.Errf(errcode.InvalidArgument, "unknown core op %q", r.PathValue("op")))
	}
}

func (s *Server) handleOf(typ component.Type) (core.Handle, bool) {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	h, ok := s.handles[typ]
	return h, ok
}

func (s *Server) coreCreate(w http.ResponseWriter, r *http.Request, typ component.Type) {
	h, err := s.core.Create(r.Context(), typ.String())
	s.metrics.RecordCoreCall(err)
	if err != nil {
		writeError(w, err)
		return
	}

	s.hmu.Lock()
	prev, had := s.handles[typ]
	s.handles[typ] = h
	s.hmu.Unlock()

	if had {
		// Tear the orphaned instance down; the core logs its own failures.
		if derr := s.core.Destroy(r.Context(), prev); derr != nil {
			s.log.Warn("previous handle not destroyed", "type", typ, "error", derr)
		}
	}

	s.log.Info("core handle created", "type", typ, "handle", h)
	writeJSON(w, http.StatusOK, map[string]string{"handle": string(h)})
}

func (s *Server) coreLoad(w http.ResponseWriter, r *http.Request, typ component.Type) {
	h, ok := s.handleOf(typ)
	if !ok {
		writeError(w, errcode.Errf(errcode.NotFound, "no handle for %s; call create first", typ))
		return
	}

	var req core.LoadRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	err := s.core.Load(r.Context(), h, req)
	s.metrics.RecordCoreCall(err)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) coreInfer(w http.ResponseWriter, r *http.Request, typ component.Type) {
	h, ok := s.handleOf(typ)
	if !ok {
		writeError(w, errcode.Errf(errcode.NotFound, "no handle for %s; call create first", typ))
		return
	}

	var req core.InferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.core.Infer(r.Context(), h, req)
	s.metrics.RecordCoreCall(err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) coreTranscribe(w http.ResponseWriter, r *http.Request, typ component.Type) {
	h, ok := s.handleOf(typ)
	if !ok {
		writeError(w, errcode.Errf(errcode.NotFound, "no handle for %s; call create first", typ))
		return
	}

	var req core.TranscribeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Language == "" {
		req.Language = s.cfg.Language
	}

	res, err := s.core.Transcribe(r.Context(), h, req)
	s.metrics.RecordCoreCall(err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) coreCancel(w http.ResponseWriter, r *http.Request, typ component.Type) {
	h, ok := s.handleOf(typ)
	if !ok {
		writeError(w, errcode.Errf(errcode.NotFound, "no handle for %s", typ))
		return
	}
	if !s.core.Cancel(h) {
		err := errcode.Errf(errcode.NotFound, "handle %s unknown to core", h)
		s.metrics.RecordCoreCall(err)
		writeError(w, err)
		return
	}
	s.metrics.RecordCoreCall(nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) coreUnload(w http.ResponseWriter, r *http.Request, typ component.Type) {
	h, ok := s.handleOf(typ)
	if !ok {
		writeError(w, errcode.Errf(errcode.NotFound, "no handle for %s", typ))
		return
	}
	err := s.core.Unload(r.Context(), h)
	s.metrics.RecordCoreCall(err)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) coreDestroy(w http.ResponseWriter, r *http.Request, typ component.Type) {
	s.hmu.Lock()
	h, ok := s.handles[typ]
	if ok {
		delete(s.handles, typ)
	}
	s.hmu.Unlock()

	if !ok {
		writeError(w, errcode.Errf(errcode.NotFound, "no handle for %s", typ))
		return
	}

	err := s.core.Destroy(r.Context(), h)
	s.metrics.RecordCoreCall(err)
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("core handle destroyed", "type", typ, "handle", h)
	w.WriteHeader(http.StatusNoContent)
}
