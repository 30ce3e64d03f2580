// Package app wires the server process together: content catalog, world, hub,
// and the HTTP/websocket surface.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	servernet "dust-and-lead/server/internal/net"
	"dust-and-lead/server/internal/net/ws"
	"dust-and-lead/server/internal/sim"
	"dust-and-lead/server/logging"
	loggingsinks "dust-and-lead/server/logging/sinks"
)

// Config carries the process-level knobs; zero values get sane defaults.
type Config struct {
	Addr      string
	Seed      string
	ClientDir string
	Logger    *log.Logger
}

// newHub assembles the authoritative match exactly as the server process
// runs it: default catalog, seeded world, and the full gameplay pipeline.
func newHub(seed string, publisher logging.Publisher, logger *log.Logger) (*servernet.Hub, error) {
	world, err := sim.NewWorld(sim.Config{Seed: seed}, DefaultCatalog(), publisher)
	if err != nil {
		return nil, fmt.Errorf("failed to build world: %w", err)
	}
	return servernet.NewHub(world, sim.NewGameplayPipeline(), servernet.HubConfig{Logger: logger}), nil
}

// Run builds the world and serves until the context is cancelled.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	var publisher logging.Publisher = loggingsinks.NewConsoleSink(logging.SeverityInfo)
	if os.Getenv("QUIET_EVENTS") != "" {
		publisher = logging.NopPublisher()
	}

	hub, err := newHub(cfg.Seed, publisher, logger)
	if err != nil {
		return err
	}
	stop := make(chan struct{})
	go hub.Run(stop)
	defer close(stop)

	mux := http.NewServeMux()
	mux.Handle("/", servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		ClientDir: cfg.ClientDir,
		Logger:    logger,
	}))
	wsHandler := ws.NewHandler(hub, ws.HandlerConfig{Logger: logger})
	mux.HandleFunc("/ws", wsHandler.Handle)

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Printf("server listening on %s", cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx := context.Background()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}
