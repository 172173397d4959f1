// Package daemon wires storage, the day-processing engine and the HTTP
// API together and runs them until the process is told to stop.
package daemon

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/streax-app/streax/internal/api"
	"github.com/streax-app/streax/internal/app/engine"
	"github.com/streax-app/streax/internal/infra/sqlite"
)

// Daemon is the long-running server process.
type Daemon struct {
	cfg    Config
	db     *sqlite.DB
	engine *engine.Service
	server *http.Server
}

// New opens the database and builds the engine and API server.
func New(cfg Config) (*Daemon, error) {
	db, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	eng := engine.New(db, cfg.Bonus())

	srv := api.NewServer(eng)
	hub := api.NewResultHub()
	srv.SetResultHub(hub)
	eng.SetBroadcaster(hub)
	if cfg.Metrics.Enabled {
		srv.EnableMetrics()
	}

	return &Daemon{
		cfg:    cfg,
		db:     db,
		engine: eng,
		server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves the API until ctx is canceled or SIGINT/SIGTERM arrives,
// then shuts down gracefully.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("streax daemon listening on http://%s", d.server.Addr)
		if err := d.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		d.db.Close()
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	<-errCh
	return d.db.Close()
}
