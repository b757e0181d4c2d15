// Package server provides the datalink backend: a command endpoint
// dispatching records to registered services, a pure-read endpoint serving
// named tables, and an SSE side channel announcing data changes.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/datalink/internal/dispatch"
	"github.com/leapstack-labs/datalink/internal/notifier"
	"golang.org/x/sync/errgroup"
)

// Server is the backend HTTP server.
type Server struct {
	registry *dispatch.Registry
	store    *Store
	port     int
	watch    bool
	dataDir  string
	logger   *slog.Logger
	notifier *notifier.Notifier
}

// Config holds configuration for the backend server.
type Config struct {
	// Registry dispatches "Service.method" commands.
	Registry *dispatch.Registry
	// DataDir is the directory of JSON row files served by name.
	DataDir string
	// Port is the listen port.
	Port int
	// Watch re-reads the data directory and pings the side channel on
	// file changes.
	Watch bool
	// Logger is the structured logger (discard if nil).
	Logger *slog.Logger
}

// New creates a backend server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		registry: cfg.Registry,
		store:    NewStore(cfg.DataDir),
		port:     cfg.Port,
		watch:    cfg.Watch,
		dataDir:  cfg.DataDir,
		logger:   logger,
		notifier: notifier.New(),
	}
}

// Notifier returns the side-channel fan-out.
func (s *Server) Notifier() *notifier.Notifier { return s.notifier }

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Post("/api/command", s.handleCommand)
	r.Get("/api/data", s.handleDataNames)
	r.Get("/api/data/{name}", s.handleData)
	r.Post("/api/notify", s.handleNotify)
	r.Get("/events", s.handleEvents)
	return r
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting backend server", "addr", addr, "data_dir", s.dataDir)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchData(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down backend server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchData pings the side channel when a data file changes.
func (s *Server) watchData(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.dataDir); err != nil {
		s.logger.Error("failed to watch data directory", "dir", s.dataDir, "error", err)
		// Continue without watching rather than failing the server.
		<-ctx.Done()
		return nil
	}

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("data changed", "file", event.Name)
				s.store.Invalidate()
				s.notifier.Broadcast()
			})

		case err := <-watcher.Errors:
			s.logger.Error("watch error", "error", err)
		}
	}
}
