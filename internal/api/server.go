package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/reelsmith/reelsmith/internal/job"
	"github.com/reelsmith/reelsmith/internal/pipeline"
)

// JobRunner executes one render job to completion.
type JobRunner interface {
	Process(ctx context.Context, req job.Request) (pipeline.Result, error)
}

// FailureNotifier posts failure notices to the downstream webhook.
type FailureNotifier interface {
	DeliverFailed(ctx context.Context, videoID, errMsg string) error
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port      int
	AuthToken string
	Runner    JobRunner
	Notifier  FailureNotifier
	Logger    *slog.Logger
	StartTime time.Time
	Version   string
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf(":%d", cfg.Port),
			Handler:     router,
			ReadTimeout: 15 * time.Second,
			// Jobs run synchronously inside the request, so writes stay
			// unbounded and idle connections are reaped instead.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
