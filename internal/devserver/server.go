// Package devserver serves a built site locally, rebuilds it when its
// sources change and reloads connected browsers.
package devserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/radovskyb/watcher"
)

// Options configure a Server.
type Options struct {
	// Rebuild regenerates the site; it runs after every detected change.
	Rebuild func(ctx context.Context) error
	// Watch lists the directories to watch recursively.
	Watch []string
	// Debounce is the watcher's poll interval. Changes within one interval
	// cause a single rebuild.
	Debounce time.Duration
	// Metrics, if set, is served on /metrics.
	Metrics http.Handler
}

type Server struct {
	dir  string
	opts Options
	hub  *hub
}

func New(dir string, opts Options) *Server {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	return &Server{dir: dir, opts: opts, hub: newHub()}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle(reloadPath, s.hub).Methods("GET")
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics).Methods("GET")
	}
	r.PathPrefix("/").Handler(injectReload(http.FileServer(http.Dir(s.dir)))).Methods("GET", "HEAD")
	return r
}

// Reload tells every connected browser to reload.
func (s *Server) Reload() {
	n := s.hub.broadcast()
	slog.Debug("Reloading browsers", "clients", n)
}

// ListenAndServe serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutting down server", "error", err)
		}
	}()

	slog.Info("Serving site", "dir", s.dir, "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Watch rebuilds and reloads on every change below the watched directories
// until ctx is done. A failed rebuild is logged and the browsers are left
// alone.
func (s *Server) Watch(ctx context.Context) error {
	w := watcher.New()
	w.SetMaxEvents(1)

	for _, dir := range s.opts.Watch {
		if err := w.AddRecursive(dir); err != nil {
			return err
		}
		slog.Info("Watching for changes", "dir", dir)
	}

	go func() {
		for {
			select {
			case ev := <-w.Event:
				slog.Info("Change detected", "path", ev.Path, "op", ev.Op.String())
				s.rebuild(ctx)
			case err := <-w.Error:
				slog.Error("Watcher error", "error", err)
			case <-w.Closed:
				return
			}
		}
	}()

	go func() {
		<-ctx.Done()
		w.Wait()
		w.Close()
	}()

	return w.Start(s.opts.Debounce)
}

func (s *Server) rebuild(ctx context.Context) {
	if s.opts.Rebuild == nil {
		s.Reload()
		return
	}
	if err := s.opts.Rebuild(ctx); err != nil {
		slog.Error("Rebuild failed", "error", err)
		return
	}
	s.Reload()
}
