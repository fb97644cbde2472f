// Package server exposes the bridge state mirrors, the strategy engine, and
// the native core lifecycle over a JSON control API.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/arvik-ai/runtime-bridge/internal/assignment"
	"github.com/arvik-ai/runtime-bridge/internal/auth"
	"github.com/arvik-ai/runtime-bridge/internal/component"
	"github.com/arvik-ai/runtime-bridge/internal/config"
	"github.com/arvik-ai/runtime-bridge/internal/core"
	"github.com/arvik-ai/runtime-bridge/internal/errcode"
	"github.com/arvik-ai/runtime-bridge/internal/hostinfo"
	"github.com/arvik-ai/runtime-bridge/internal/registry"
	"github.com/arvik-ai/runtime-bridge/internal/store"
	"github.com/arvik-ai/runtime-bridge/internal/strategy"
	"github.com/arvik-ai/runtime-bridge/internal/telemetry"
)

// Server wires the bridge pieces behind the control API.
type Server struct {
	cfg         config.Config
	log         *slog.Logger
	assignments *assignment.Registry
	services    *registry.Registry
	engine      *strategy.Engine
	core        core.Core
	store       *store.Store
	metrics     *telemetry.Recorder
	authn       *auth.Authenticator

	// One live core handle per component type.
	hmu     sync.Mutex
	handles map[component.Type]core.Handle
}

// New returns a Server. The store may be nil; persistence is then skipped.
// The authenticator may be nil; key management is then disabled.
func New(cfg config.Config, logger *slog.Logger, assignments *assignment.Registry, services *registry.Registry, engine *strategy.Engine, c core.Core, st *store.Store, metrics *telemetry.Recorder, authn *auth.Authenticator) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		panic("server: core must not be nil")
	}
	return &Server{
		cfg:         cfg,
		log:         logger.With("component", "server"),
		assignments: assignments,
		services:    services,
		engine:      engine,
		core:        c,
		store:       st,
		metrics:     metrics,
		authn:       authn,
		handles:     map[component.Type]core.Handle{},
	}
}

// Register installs every route on the mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/telemetry", s.handleTelemetry)

	mux.HandleFunc("GET /v1/assignments", s.handleListAssignments)
	mux.HandleFunc("GET /v1/assignments/{type}", s.handleGetAssignment)
	mux.HandleFunc("PUT /v1/assignments/{type}", s.handleAssign)
	mux.HandleFunc("DELETE /v1/assignments/{type}", s.handleUnassign)
	mux.HandleFunc("POST /v1/assignments/{type}/status", s.handleAssignmentStatus)

	mux.HandleFunc("GET /v1/services", s.handleListServices)
	mux.HandleFunc("GET /v1/services/{type}", s.handleGetService)
	mux.HandleFunc("PUT /v1/services/{type}", s.handleSetService)
	mux.HandleFunc("DELETE /v1/services/{type}", s.handleRemoveService)

	mux.HandleFunc("POST /v1/strategy/decide", s.handleDecide)
	mux.HandleFunc("GET /v1/strategy/preferences", s.handleListPreferences)
	mux.HandleFunc("PUT /v1/strategy/preferences/{type}", s.handleSetPreference)
	mux.HandleFunc("DELETE /v1/strategy/preferences/{type}", s.handleRemovePreference)

	mux.HandleFunc("POST /v1/auth/keys", s.handleIssueKey)
	mux.HandleFunc("GET /v1/auth/keys", s.handleListKeys)
	mux.HandleFunc("DELETE /v1/auth/keys/{id}", s.handleRevokeKey)

	mux.HandleFunc("GET /v1/models", s.handleListModels)
	mux.HandleFunc("PUT /v1/models/{id}", s.handleUpsertModel)
	mux.HandleFunc("DELETE /v1/models/{id}", s.handleDeleteModel)

	mux.HandleFunc("POST /v1/core/{type}/{op}", s.handleCoreOp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"name":    hostinfo.Info.Name,
		"version": hostinfo.Info.Version,
	})
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

// componentFromPath parses the {type} path value.
func componentFromPath(r *http.Request) (component.Type, error) {
	return component.ParseType(r.PathValue("type"))
}

// parseComponent parses a component name from a request body, wrapping the
// failure into an errcode so handlers map it to a 400.
func parseComponent(name string) (component.Type, error) {
	typ, err := component.ParseType(name)
	if err != nil {
		return "", errcode.Err(errcode.InvalidArgument, err.Error())
	}
	return typ, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the error envelope every failing endpoint returns.
type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errcode.FromErr(err)
	writeJSON(w, httpStatus(code), errorBody{Code: errcode.Name(code), Error: err.Error()})
}

func httpStatus(code errcode.Code) int {
	switch code {
	case errcode.InvalidArgument:
		return http.StatusBadRequest
	case errcode.NotFound:
		return http.StatusNotFound
	case errcode.AlreadyExists, errcode.Canceled:
		return http.StatusConflict
	case errcode.ModelNotLoaded:
		return http.StatusConflict
	case errcode.CoreUnavailable:
		return http.StatusServiceUnavailable
	case errcode.Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errcode.Errf(errcode.InvalidArgument, "decode request: %v", err)
	}
	return nil
}
