package server

import (
	"net/http"
	"strings"

	"github.com/arvik-ai/runtime-bridge/internal/errcode"
	"github.com/arvik-ai/runtime-bridge/internal/store"
)

type modelView struct {
	ModelID   string `json:"model_id"`
	Component string `json:"component"`
	LocalPath string `json:"local_path,omitempty"`
	Present   bool   `json:"present"`
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []modelView{})
		return
	}
	records, err := s.store.ListModels(r.Context())
	if err != nil {
		writeError(w, errcode.Errf(errcode.Internal, "list models: %v", err))
		return
	}
	out := make([]modelView, 0, len(records))
	for _, m := range records {
		out = append(out, modelView{
			ModelID:   m.ModelID,
			Component: m.Component,
			LocalPath: m.LocalPath,
			Present:   m.Present,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpsertModel(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errcode.Err(errcode.CoreUnavailable, "model catalog disabled"))
		return
	}
	modelID := strings.TrimSpace(r.PathValue("id"))
	if modelID == "" {
		writeError(w, errcode.Err(errcode.InvalidArgument, "model id required"))
		return
	}

	var body struct {
		Component string `json:"component"`
		LocalPath string `json:"local_path,omitempty"`
		Present   bool   `json:"present"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	typ, err := parseComponent(body.Component)
	if err != nil {
		writeError(w, err)
		return
	}

	rec := store.ModelRecord{
		ModelID:   modelID,
		Component: typ.String(),
		LocalPath: body.LocalPath,
		Present:   body.Present,
	}
	if err := s.store.UpsertModel(r.Context(), rec); err != nil {
		writeError(w, errcode.Errf(errcode.Internal, "upsert model: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, modelView{
		ModelID:   rec.ModelID,
		Component: rec.Component,
		LocalPath: rec.LocalPath,
		Present:   rec.Present,
	})
}

func (s *Server) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errcode.Err(errcode.CoreUnavailable, "model catalog disabled"))
		return
	}
	modelID := strings.TrimSpace(r.PathValue("id"))
	if modelID == "" {
		writeError(w, errcode.Err(errcode.InvalidArgument, "model id required"))
		return
	}
	if err := s.store.DeleteModel(r.Context(), modelID); err != nil {
		writeError(w, errcode.Errf(errcode.Internal, "delete model: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
