// Package api serves boards, questions and stored benchmark results over
// HTTP. It is read-only: games are played by the CLI runner.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/MJE43/cognitive-gauntlet/internal/questions"
	"github.com/MJE43/cognitive-gauntlet/internal/store"
)

// Options configures a Server. A nil DB disables the run endpoints.
type Options struct {
	DB      store.DB
	Catalog *questions.Catalog
	Policy  *questions.Policy
	Logger  logrus.FieldLogger
}

// Server handles HTTP requests
type Server struct {
	db      store.DB
	catalog *questions.Catalog
	policy  questions.Policy
	logger  logrus.FieldLogger
	started time.Time

	mu         sync.Mutex
	httpServer *http.Server
	addr       net.Addr
}

// NewServer creates a server, filling defaults for the catalog, answer
// policy and logger.
func NewServer(opts Options) *Server {
	s := &Server{
		db:      opts.DB,
		catalog: opts.Catalog,
		policy:  questions.DefaultPolicy,
		logger:  opts.Logger,
		started: time.Now(),
	}
	if s.catalog == nil {
		s.catalog = questions.Default()
	}
	if opts.Policy != nil {
		s.policy = *opts.Policy
	}
	if s.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.logger = l
	}
	return s
}

// Routes sets up the HTTP routes
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/avatars", s.handleAvatars)
		r.Get("/boards/{seed}", s.handleBoard)
		r.Get("/boards/{seed}/render", s.handleBoardRender)
		r.Get("/questions/stats", s.handleQuestionStats)
		r.Post("/answers/validate", s.handleValidateAnswer)

		r.Group(func(r chi.Router) {
			r.Use(s.requireDB)
			r.Get("/runs", s.handleListRuns)
			r.Get("/runs/{id}", s.handleGetRun)
			r.Get("/leaderboard", s.handleLeaderboard)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound,
			NewError(ErrTypeNotFound, "route not found").WithContext("path", r.URL.Path).Build(r))
	})
	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Warn("encode response")
	}
}

// Start binds addr and serves in a goroutine. It returns once the socket is
// bound; use Addr for the resolved address when addr ends in ":0".
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer != nil {
		return errors.New("api: server already started")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("api: listen %s: %w", addr, err)
	}
	s.addr = ln.Addr()
	s.httpServer = &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      40 * time.Second,
	}
	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("api server stopped")
		}
	}(s.httpServer)

	s.logger.WithField("addr", s.addr.String()).Info("api server listening")
	return nil
}

// Addr is the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
