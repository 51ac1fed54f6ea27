package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"RelativeStrength/internal/model"

	"github.com/gin-gonic/gin"
)

// ReportSource provides the latest completed report.
type ReportSource interface {
	Last() *model.Report
}

// Server exposes the latest scan report over HTTP.
type Server struct {
	addr    string
	source  ReportSource
	engine  *gin.Engine
	started time.Time
}

// New creates a Server listening on addr once Start is called.
func New(addr string, source ReportSource) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		addr:    addr,
		source:  source,
		engine:  gin.New(),
		started: time.Now(),
	}
	s.engine.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/rankings", s.getRankings)
	s.engine.GET("/api/evaluations", s.getEvaluations)
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] HTTP API listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Println("[INFO] HTTP API stopped")
	return nil
}

func (s *Server) getHealth(c *gin.Context) {
	resp := gin.H{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	}
	if r := s.source.Last(); r != nil {
		resp["last_scan"] = r.GeneratedAt
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getRankings(c *gin.Context) {
	r := s.source.Last()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no scan has completed yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"base":         r.Base,
		"start":        r.Start,
		"end":          r.End,
		"params":       r.Params,
		"generated_at": r.GeneratedAt,
		"rankings":     r.Rankings,
	})
}

// getEvaluations supports ?reason=<reason> and ?qualified=true|false filters.
func (s *Server) getEvaluations(c *gin.Context) {
	r := s.source.Last()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no scan has completed yet"})
		return
	}
	reason := strings.TrimSpace(c.Query("reason"))
	qualified := c.Query("qualified")
	if qualified != "" && qualified != "true" && qualified != "false" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "qualified must be true or false"})
		return
	}

	out := make([]model.TickerEvaluation, 0, len(r.Evaluations))
	for _, e := range r.Evaluations {
		if reason != "" && string(e.Reason) != reason {
			continue
		}
		if qualified != "" && e.Qualified != (qualified == "true") {
			continue
		}
		out = append(out, e)
	}
	c.JSON(http.StatusOK, gin.H{"evaluations": out})
}
