// Package server serves the browser family tree viewer.
//
// Each browser gets its own viewer state, keyed by a session cookie. The
// page is rendered on the server: the current frame is inlined as SVG and
// every node links to /select/{id}, so the viewer works without scripts.
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/httputil"
	"github.com/matzehuels/famtree/pkg/layout"
	"github.com/matzehuels/famtree/pkg/pipeline"
	"github.com/matzehuels/famtree/pkg/render/svg"
	"github.com/matzehuels/famtree/pkg/session"
	"github.com/matzehuels/famtree/pkg/viewer"
)

const shutdownTimeout = 5 * time.Second

// Config holds configuration for the viewer server.
type Config struct {
	Addr        string
	Canvas      layout.Canvas
	ShowZeroAge bool

	SessionTTL      time.Duration
	MaxSessions     int
	CleanupInterval time.Duration

	// Runner renders exports for /frame.svg?format=. Nil uses an uncached
	// runner.
	Runner *pipeline.Runner

	// Fetcher loads documents named by the upload form's url field. Nil
	// disables URL uploads.
	Fetcher *httputil.Fetcher

	Logger *log.Logger
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Canvas == (layout.Canvas{}) {
		c.Canvas = layout.DefaultCanvas()
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = time.Minute
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	if c.Runner == nil {
		c.Runner = pipeline.NewRunner(nil, nil, c.Logger)
	}
}

// Server is the viewer HTTP server.
type Server struct {
	cfg    Config
	store  *session.Store
	logger *log.Logger
	router chi.Router
}

// New creates a server and its routes.
func New(cfg Config) *Server {
	cfg.setDefaults()
	s := &Server{cfg: cfg, logger: cfg.Logger}
	s.store = session.NewStore(session.Options{
		TTL:         cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		NewState:    s.newState,
		Logger:      cfg.Logger,
	})

	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		requestLogger(cfg.Logger),
		middleware.Recoverer,
		middleware.Compress(5),
	)
	SetupRoutes(r, s)
	s.router = r
	return s
}

// newState builds the viewer behind one session.
func (s *Server) newState() *viewer.State {
	return viewer.New(viewer.Options{
		Canvas:        s.cfg.Canvas,
		ShowZeroAge:   s.cfg.ShowZeroAge,
		DefaultImage:  family.DefaultImage,
		SelectHandler: svg.SelectFunc(selectURL),
		Logger:        s.logger,
	})
}

func selectURL(m *family.Member) string { return fmt.Sprintf("/select/%d", m.ID) }

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Sessions returns the session store.
func (s *Server) Sessions() *session.Store { return s.store }

// Serve listens on the configured address and blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting viewer", "addr", "http://"+ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.router,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		return s.store.Run(egctx, s.cfg.CleanupInterval)
	})

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down viewer")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
