// Package api exposes similarity queries, search and the research agent
// as a small JSON API over HTTP, built on gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
	"github.com/custodia-labs/rostrum/internal/logger"
)

// ErrMissingSimilarityService is returned when the similarity service is
// not provided.
var ErrMissingSimilarityService = errors.New("api: similarity service is required")

// AgentFactory builds a fresh agent for one request.
type AgentFactory func() (driving.AgentService, error)

// Ports aggregates the driving ports the API serves.
type Ports struct {
	// Similarity answers similarity queries (required).
	Similarity driving.SimilarityService

	// Search provides full-text search. Optional.
	Search driving.SearchService

	// Agents creates research agents. Optional.
	Agents AgentFactory
}

// Server is the HTTP API.
type Server struct {
	ports  Ports
	router *gin.Engine
}

// New creates the API server and registers its routes.
func New(ports Ports) (*Server, error) {
	if ports.Similarity == nil {
		return nil, ErrMissingSimilarityService
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{ports: ports, router: router}
	s.registerRoutes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the API on addr until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("API shutdown: %v", err)
		}
	}()

	logger.Info("API listening on http://%s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
