// Package server exposes a Scanner over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/idelchi/foldersize/internal/log"
	"github.com/idelchi/foldersize/internal/scan"
)

const shutdownTimeout = 10 * time.Second

// DefaultTopK is used when /api/top is called without k.
const DefaultTopK = 10

// Server serves directory listings, top-K queries and deletes.
type Server struct {
	echo           *echo.Echo
	scanner        *scan.Scanner
	gatherer       prometheus.Gatherer
	allowPermanent bool
}

// New creates a Server. gatherer backs /metrics and may be nil.
// allowPermanent is the default for deletes that do not set "permanent".
func New(scanner *scan.Scanner, gatherer prometheus.Gatherer, allowPermanent bool) *Server {
	s := &Server{
		echo:           echo.New(),
		scanner:        scanner,
		gatherer:       gatherer,
		allowPermanent: allowPermanent,
	}

	s.setupRoutes()

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", addr).Msg("Starting server")

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")

		return err
	}

	log.Info().Msg("Server gracefully stopped")

	return nil
}

func (s *Server) setupRoutes() {
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())

	api := s.echo.Group("/api")
	api.GET("/contents", s.listContents)
	api.GET("/folders", s.listFolders)
	api.GET("/top", s.topK)
	api.DELETE("/entries", s.deleteEntry)
	api.DELETE("/cache", s.clearCache)
	api.DELETE("/cache/entry", s.invalidate)

	if s.gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
}

func errorJSON(ctx echo.Context, status int, msg string) error {
	return ctx.JSON(status, map[string]string{"error": msg})
}
