package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deepfamily/identity-zk/config"
	"github.com/deepfamily/identity-zk/prover"
	"github.com/deepfamily/identity-zk/server/api"
)

type ServeConfig struct {
	// Server settings
	Host string
	Port int

	// Artifact search, toolchain and per-circuit overrides
	App *config.Config

	// Circuit settings
	Circuits []string // Specific circuits to load (empty = all)

	// Performance settings
	MaxRequestSize  int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Security settings
	EnableCORS  bool
	CorsOrigins []string

	// Observability
	EnablePprof   bool
	EnableMetrics bool
	LogLevel      string
	LogFormat     string // "json" or "text"

	// TLS settings
	EnableTLS bool
	CertFile  string
	KeyFile   string
}

func Run(cfg *ServeConfig) error {
	// Validate configuration
	if err := validateServeConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Setup structured logging
	logger := SetupLogger(cfg.LogLevel, cfg.LogFormat)

	r, err := NewHandler(cfg, logger)
	if err != nil {
		return err
	}

	// Configure HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:           addr,
		Handler:        r,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", addr, "tls", cfg.EnableTLS)

		var err error
		if cfg.EnableTLS {
			err = httpServer.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("Shutting down server gracefully...")
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

// NewHandler wires registry, engine, metrics and router
func NewHandler(cfg *ServeConfig, logger Logger) (http.Handler, error) {
	app := cfg.App
	if app == nil {
		d := config.Default()
		app = &d
	}

	src, err := api.NewArtifactSource(app)
	if err != nil {
		return nil, err
	}

	// Initialize circuit registry
	registry := api.NewCircuitRegistry()
	if err := loadCircuits(registry, src, cfg, logger); err != nil {
		return nil, fmt.Errorf("failed to load circuits: %w", err)
	}

	var metrics *Metrics
	engineOpts := []prover.Option{prover.WithLogger(logger)}
	serverOpts := []api.ServerOption{}
	if cfg.EnableMetrics {
		metrics = NewMetrics()
		engineOpts = append(engineOpts, prover.WithObserver(metrics.ObserveProof))
		serverOpts = append(serverOpts, api.WithMismatchHook(metrics.SignalMismatch))
	}

	tc := prover.NewSnarkJS(app.Toolchain.SnarkJS...)
	tc.TempDir = app.Toolchain.TempDir
	engine := prover.NewEngine(tc, engineOpts...)

	// Create server
	server := api.NewServer(registry, engine, serverOpts...)

	// Setup router with middleware
	return setupRouter(server, metrics, cfg, logger), nil
}

func loadCircuits(registry *api.CircuitRegistry, src *api.ArtifactSource, cfg *ServeConfig, logger Logger) error {
	circuitsToLoad := cfg.Circuits
	if len(circuitsToLoad) == 0 {
		circuitsToLoad = api.CircuitNames()
	}

	loaded := 0
	for _, name := range circuitsToLoad {
		ci, ok := api.CircuitList[name]
		if !ok {
			logger.Warn("Unknown circuit", "circuit", name)
			continue
		}

		if err := registry.LoadCircuit(ci, src); err != nil {
			logger.Warn("Failed to load circuit", "circuit", name, "error", err)
			continue
		}
		loaded++

		if _, err := src.ProvingArtifacts(name); err != nil {
			logger.Warn("Proving artifacts missing, /prove will fail until they are built", "circuit", name, "error", err)
		}
		logger.Info("Loaded circuit", "circuit", name)
	}

	if loaded == 0 {
		return fmt.Errorf("no circuits loaded")
	}

	logger.Info("Circuit loading complete", "loaded", loaded, "total", len(circuitsToLoad))
	return nil
}

func validateServeConfig(cfg *ServeConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Port)
	}

	if cfg.EnableTLS {
		if cfg.CertFile == "" || cfg.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert-file or key-file not provided")
		}
		if _, err := os.Stat(cfg.CertFile); err != nil {
			return fmt.Errorf("cert file not found: %s", cfg.CertFile)
		}
		if _, err := os.Stat(cfg.KeyFile); err != nil {
			return fmt.Errorf("key file not found: %s", cfg.KeyFile)
		}
	}

	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}

	return nil
}
