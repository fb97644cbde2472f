package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/arvik-ai/runtime-bridge/internal/assignment"
	"github.com/arvik-ai/runtime-bridge/internal/auth"
	"github.com/arvik-ai/runtime-bridge/internal/component"
	"github.com/arvik-ai/runtime-bridge/internal/config"
	"github.com/arvik-ai/runtime-bridge/internal/core"
	"github.com/arvik-ai/runtime-bridge/internal/hostinfo"
	"github.com/arvik-ai/runtime-bridge/internal/httpx"
	"github.com/arvik-ai/runtime-bridge/internal/registry"
	"github.com/arvik-ai/runtime-bridge/internal/server"
	"github.com/arvik-ai/runtime-bridge/internal/store"
	"github.com/arvik-ai/runtime-bridge/internal/strategy"
	"github.com/arvik-ai/runtime-bridge/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Loader{}.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("starting bridge host",
		"name", hostinfo.Info.Name,
		"version", hostinfo.Info.Version,
		"http_addr", cfg.HTTPAddr,
		"health_addr", cfg.HealthAddr,
		"data_dir", cfg.DataDir,
	)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data dir", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open state store", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close state store", "error", err)
		}
	}()

	recorder := telemetry.NewRecorder(logger)

	assignments := assignment.New(logger)
	services := registry.New(logger)
	engine := strategy.NewEngine(logger)
	if cfg.BatteryThreshold != nil {
		engine.SetBatteryThreshold(*cfg.BatteryThreshold)
	}

	// Mirror mutations into the telemetry recorder.
	assignments.Subscribe(func(e assignment.Entry) {
		switch e.Status {
		case assignment.StatusAssigned:
			recorder.RecordAssignment(false)
		case assignment.StatusUnassigned:
			recorder.RecordAssignment(true)
		default:
			recorder.RecordStatusUpdate()
		}
	})
	services.Subscribe(func(registry.Entry) {
		recorder.RecordRegistryOp()
	})

	seedPreferences(ctx, st, engine, logger)

	bridgeCore, coreErr := core.New(cfg, logger)
	if coreErr != nil {
		logger.Warn("core initialised with warnings", "error", coreErr)
	}
	defer func() {
		if err := bridgeCore.Close(); err != nil {
			logger.Warn("failed to close core", "error", err)
		}
	}()

	// gRPC health endpoint probed by the host runtime.
	healthLis, err := net.Listen("tcp", cfg.HealthAddr)
	if err != nil {
		logger.Error("failed to bind health listener", "error", err)
		os.Exit(1)
	}
	defer healthLis.Close()

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthgrpc.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthgrpc.HealthCheckResponse_SERVING)

	go func() {
		if err := grpcServer.Serve(healthLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("health server terminated with error", "error", err)
		}
	}()

	// HTTP control API.
	authenticator := auth.NewAuthenticator(st, cfg.APIKeyRequired)
	if cfg.AdminPassword != "" {
		if err := authenticator.SetAdminPassword(ctx, cfg.AdminPassword); err != nil {
			logger.Error("failed to store admin password", "error", err)
			os.Exit(1)
		}
	}
	api := server.New(cfg, logger, assignments, services, engine, bridgeCore, st, recorder, authenticator)

	apiMux := http.NewServeMux()
	api.Register(apiMux)

	// Key management is gated by the admin password rather than an API key,
	// so operators can mint the first key with enforcement already on.
	mux := http.NewServeMux()
	mux.Handle("/healthz", apiMux)
	mux.Handle("/v1/auth/", authenticator.AdminMiddleware(apiMux))
	mux.Handle("/v1/", authenticator.Middleware(apiMux))

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.CORS{AllowOrigin: "*"}.Wrap(mux),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutdown requested")
		healthServer.SetServingStatus("", healthgrpc.HealthCheckResponse_NOT_SERVING)

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			logger.Warn("graceful stop timed out, forcing stop")
			grpcServer.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown incomplete", "error", err)
		}

		// State mirrors live for the process lifetime only.
		assignments.Clear()
		services.Clear()
	}()

	logger.Info("control API listening", "addr", cfg.HTTPAddr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server terminated with error", "error", err)
		os.Exit(1)
	}

	snapshot := recorder.Snapshot()
	logger.Info("telemetry totals",
		"assignments", snapshot.TotalAssignments,
		"unassignments", snapshot.TotalUnassignments,
		"status_updates", snapshot.TotalStatusUpdates,
		"registry_ops", snapshot.TotalRegistryOps,
		"decisions", snapshot.TotalDecisions,
		"on_device_decisions", snapshot.OnDeviceDecisions,
		"cloud_decisions", snapshot.CloudDecisions,
		"core_calls", snapshot.TotalCoreCalls,
		"core_failures", snapshot.TotalCoreFailures,
	)
	logger.Info("bridge host stopped")
}

// seedPreferences loads persisted strategy preferences into the engine.
func seedPreferences(ctx context.Context, st *store.Store, engine *strategy.Engine, logger *slog.Logger) {
	records, err := st.ListPreferences(ctx)
	if err != nil {
		logger.Warn("failed to load persisted preferences", "error", err)
		return
	}
	for _, rec := range records {
		typ, err := component.ParseType(rec.Component)
		if err != nil {
			logger.Warn("skipping persisted preference", "error", err)
			continue
		}
		override, err := strategy.ParseOverride(rec.Override)
		if err != nil {
			logger.Warn("skipping persisted preference", "error", err)
			continue
		}
		target, err := strategy.ParseTarget(rec.Target)
		if err != nil {
			target = strategy.TargetLatency
		}
		engine.SetPreference(typ, strategy.Preference{Override: override, Target: target})
	}
	if len(records) > 0 {
		logger.Info("preferences restored", "count", len(records))
	}
}

func newLogger(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler)
}

func parseLevel(value string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
