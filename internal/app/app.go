// Package app wires configuration, logging, the store and the TCP
// server into one runnable unit.
package app

import (
	"fmt"
	"log/slog"

	"linguahub/internal/config"
	"linguahub/internal/logging"
	"linguahub/internal/server"
	"linguahub/internal/store"
)

// Application owns the server-side component graph.
type Application struct {
	cfg *config.Config
	log *slog.Logger

	store  *store.Store
	server *server.Server
}

// New builds the component graph from a validated configuration.
func New(cfg *config.Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: logging.ParseFormat(cfg.Logging.Format),
	})

	st := store.New(store.Options{
		Logger:        log,
		SessionPolicy: cfg.Server.SessionPolicy,
	})

	srv, err := server.New(server.Options{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		IdleTimeout:   cfg.Server.IdleTimeout,
		SweepInterval: cfg.Server.SweepInterval,
		WriteTimeout:  cfg.Server.WriteTimeout,
		Logger:        log,
		Store:         st,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build server: %w", err)
	}

	return &Application{cfg: cfg, log: log, store: st, server: srv}, nil
}

// Start begins accepting connections.
func (a *Application) Start() error {
	a.log.Info("starting",
		"host", a.cfg.Server.Host,
		"port", a.cfg.Server.Port,
		"session_policy", string(a.cfg.Server.SessionPolicy))
	return a.server.Start()
}

// Stop shuts the server down and waits for its goroutines.
func (a *Application) Stop() {
	a.server.Stop()
}

// Logger exposes the process logger for the CLI layer.
func (a *Application) Logger() *slog.Logger { return a.log }

// Addr returns the bound listen address. Valid after Start.
func (a *Application) Addr() string { return a.server.Addr() }
