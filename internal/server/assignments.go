package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/arvik-ai/runtime-bridge/internal/assignment"
	"github.com/arvik-ai/runtime-bridge/internal/errcode"
)

type assignmentView struct {
	Component     string    `json:"component"`
	ModelID       string    `json:"model_id"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	AssignedAt    time.Time `json:"assigned_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toAssignmentView(e assignment.Entry) assignmentView {
	return assignmentView{
		Component:     e.Component.String(),
		ModelID:       e.ModelID,
		Status:        string(e.Status),
		FailureReason: e.FailureReason,
		AssignedAt:    e.AssignedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	snap := s.assignments.Snapshot()
	out := make(map[string]assignmentView, len(snap))
	for typ, e := range snap {
		out[typ.String()] = toAssignmentView(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	typ, err := componentFromPath(r)
	if err != nil {
		writeError(w, errcode.Err(errcode.InvalidArgument, err.Error()))
		return
	}
	e, ok := s.assignments.Get(typ)
	if !ok {
		writeError(w, errcode.Errf(errcode.NotFound, "no assignment for %s", typ))
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentView(e))
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	typ, err := componentFromPath(r)
	if err != nil {
		writeError(w, errcode.Err(errcode.InvalidArgument, err.Error()))
		return
	}

	var body struct {
		ModelID string `json:"model_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(body.ModelID) == "" {
		writeError(w, errcode.Err(errcode.InvalidArgument, "model_id required"))
		return
	}

	e := s.assignments.Assign(typ, strings.TrimSpace(body.ModelID))
	writeJSON(w, http.StatusOK, toAssignmentView(e))
}

func (s *Server) handleUnassign(w http.ResponseWriter, r *http.Request) {
	typ, err := componentFromPath(r)
	if err != nil {
		writeError(w, errcode.Err(errcode.InvalidArgument, err.Error()))
		return
	}
	if !s.assignments.Unassign(typ) {
		writeError(w, errcode.Errf(errcode.NotFound, "no assignment for %s", typ))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	typ, err := componentFromPath(r)
	if err != nil {
		writeError(w, errcode.Err(errcode.InvalidArgument, err.Error()))
		return
	}

	var body struct {
		Status string `json:"status"`
		Reason string `json:"reason,omitempty"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	status, ok := parseStatus(body.Status)
	if !ok {
		writeError(w, errcode.Errf(errcode.InvalidArgument, "unknown status %q", body.Status))
		return
	}

	e, ok := s.assignments.UpdateStatus(typ, status, body.Reason)
	if !ok {
		writeError(w, errcode.Errf(errcode.NotFound, "no assignment for %s", typ))
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentView(e))
}

func parseStatus(s string) (assignment.Status, bool) {
	switch assignment.Status(strings.ToLower(strings.TrimSpace(s))) {
	case assignment.StatusAssigned:
		return assignment.StatusAssigned, true
	case assignment.StatusLoading:
		return assignment.StatusLoading, true
	case assignment.StatusReady:
		return assignment.StatusReady, true
	case assignment.StatusFailed:
		return assignment.StatusFailed, true
	default:
		return "", false
	}
}
