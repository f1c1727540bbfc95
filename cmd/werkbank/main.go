package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-arndt/werkbank/internal/api"
	"github.com/p-arndt/werkbank/internal/config"
	"github.com/p-arndt/werkbank/internal/lifecycle"
	"github.com/p-arndt/werkbank/internal/provider"
	"github.com/p-arndt/werkbank/internal/reaper"
	"github.com/p-arndt/werkbank/internal/relay"
	"github.com/p-arndt/werkbank/internal/sandbox"
	"github.com/p-arndt/werkbank/internal/store"
)

func main() {
	cfgPath := flag.String("config", "", "path to werkbank.yaml")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	if cfg.APIKey == "" {
		logger.Warn("no API key configured — running in open access mode")
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	backend, err := newBackend(cfg, logger)
	if err != nil {
		logger.Error("sandbox backend", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := backend.Ping(ctx); err != nil {
		logger.Warn("sandbox backend not reachable yet", "backend", cfg.Backend, "error", err)
	} else {
		logger.Info("sandbox backend OK", "backend", cfg.Backend)
	}

	sessions := provider.NewSessionRegistry()
	systemPrompt := provider.LoadSystemPrompt(cfg.SystemPromptPath, logger)

	registry := provider.NewRegistry(cfg.DefaultProvider)
	registry.Register(provider.NewClaudeAdapter(backend, sessions, provider.ClaudeOptions{
		SystemPrompt: systemPrompt,
		DefaultModel: cfg.DefaultModel,
	}, logger))

	rl := relay.New(logger)

	mgr := lifecycle.NewManager(backend, registry, st, rl, lifecycle.Options{
		ProjectsRoot:     cfg.ProjectsRoot,
		PreviewPort:      cfg.PreviewPort,
		CommandTimeoutMs: cfg.CommandTimeoutMs,
		DefaultProvider:  cfg.DefaultProvider,
	}, logger)
	defer mgr.Close()

	ttl := time.Duration(cfg.SandboxTTLSeconds) * time.Second
	rpr := reaper.New(mgr, st, ttl, time.Minute, logger)
	go rpr.Run(ctx)

	srv := api.NewServer(cfg, mgr, registry, rl, logger)

	httpServer := &http.Server{
		Addr:         cfg.Listen,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // event streams stay open indefinitely
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigCh
		logger.Info("shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.Listen)
	fmt.Fprintf(os.Stderr, "\n  werkbank daemon ready at http://%s\n\n", cfg.Listen)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newBackend(cfg *config.Config, logger *slog.Logger) (sandbox.Backend, error) {
	switch cfg.Backend {
	case "docker":
		return sandbox.NewDockerBackend(cfg.Docker, logger)
	case "bridge", "":
		return sandbox.NewBridgeClient(cfg.BridgeURL, logger), nil
	default:
		return nil, fmt.Errorf("unknown sandbox backend %q", cfg.Backend)
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
