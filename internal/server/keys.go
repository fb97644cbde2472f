package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/arvik-ai/runtime-bridge/internal/errcode"
	"github.com/arvik-ai/runtime-bridge/internal/store"
)

type keyView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func toKeyView(r store.APIKeyRecord) keyView {
	return keyView{
		ID:         r.ID,
		Name:       r.Name,
		Prefix:     r.Prefix,
		CreatedAt:  r.CreatedAt,
		LastUsedAt: r.LastUsedAt,
	}
}

// issuedKeyView carries the plaintext key, returned exactly once at issue
// time.
type issuedKeyView struct {
	keyView
	Key string `json:"key"`
}

func (s *Server) handleIssueKey(w http.ResponseWriter, r *http.Request) {
	if s.authn == nil || s.store == nil {
		writeError(w, errcode.Err(errcode.CoreUnavailable, "key management disabled"))
		return
	}

	var body struct {
		Name string `json:"name,omitempty"`
	}
	// The name is optional; an empty body is fine.
	if r.ContentLength != 0 {
		if err := decodeBody(r, &body); err != nil {
			writeError(w, err)
			return
		}
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		name = "unnamed"
	}

	key, record, err := s.authn.GenerateKey(r.Context(), name)
	if err != nil {
		writeError(w, errcode.Errf(errcode.Internal, "issue key: %v", err))
		return
	}
	s.log.Info("api key issued", "id", record.ID, "name", record.Name, "prefix", record.Prefix)
	writeJSON(w, http.StatusOK, issuedKeyView{keyView: toKeyView(record), Key: key})
}

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []keyView{})
		return
	}
	records, err := s.store.ListAPIKeys(r.Context())
	if err != nil {
		writeError(w, errcode.Errf(errcode.Internal, "list keys: %v", err))
		return
	}
	out := make([]keyView, 0, len(records))
	for _, rec := range records {
		out = append(out, toKeyView(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRevokeKey(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errcode.Err(errcode.CoreUnavailable, "key management disabled"))
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, errcode.Err(errcode.InvalidArgument, "key id required"))
		return
	}
	if err := s.store.DeleteAPIKey(r.Context(), id); err != nil {
		writeError(w, errcode.Errf(errcode.Internal, "revoke key: %v", err))
		return
	}
	s.log.Info("api key revoked", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
